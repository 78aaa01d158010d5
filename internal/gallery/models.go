// Package gallery implements the image listing surface of the platform:
// GORM models, a store with cursor and page based listings, and the HTTP
// handlers serving them.
package gallery

import (
	"time"

	"github.com/google/uuid"
)

// User is a profile that owns images.
type User struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"uniqueIndex;not null" json:"username"`
	DisplayName string    `json:"displayName"`
	Bio         string    `json:"bio"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Image is a single gallery entry. PublicID is the identifier exposed in
// URLs; the numeric ID stays internal and serves as the unique pagination
// tie-breaker.
type Image struct {
	ID        uint64    `gorm:"primaryKey" json:"-"`
	PublicID  uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"id"`
	OwnerID   uint64    `gorm:"index;not null" json:"ownerId"`
	Caption   string    `json:"caption"`
	Score     int64     `gorm:"index" json:"score"`
	LikeCount int64     `json:"likeCount"`
	Published bool      `gorm:"index" json:"published"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// imageSortColumns is the allowlist of client-sortable image columns. Scalar
// cursors carry numeric values only, so every entry here must be numeric.
var imageSortColumns = map[string]string{
	"id":    "id",
	"score": "score",
	"likes": "like_count",
}
