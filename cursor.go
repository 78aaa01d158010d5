package keyset

import (
	"encoding/base64"
	"errors"

	"gorm.io/gorm"
)

var _encoder = base64.RawURLEncoding

// Validation failures surfaced to the request layer. Both indicate bad client
// input and must not be retried.
var (
	// ErrInvalidSortSpec reports a malformed sort string (empty field name,
	// unknown alias or unsupported direction token).
	ErrInvalidSortSpec = errors.New("invalid sort spec")

	// ErrInvalidCursor reports a cursor that cannot be mapped onto the
	// requested ordering (non-numeric segment, segment count mismatch).
	ErrInvalidCursor = errors.New("invalid cursor")
)

type Cursor interface {
	String() string
	IsEmpty() bool
	Apply(*gorm.DB) *gorm.DB
	validate(orderings Orderings) error
}

// PaginationResult is a generic paginated result container.
type PaginationResult[T any, CursorType Cursor] struct {
	// Items result elements.
	Items []T
	// Total number of elements.
	Total int64
	// AppliedLimit effective limit used for the query.
	AppliedLimit int
	// NextPageToken token for the next page.
	NextPageToken CursorType
}
