package gallery

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/glimmerhub/keyset"
	"github.com/glimmerhub/keyset/internal/moderation"
)

// ErrCaptionRejected reports that the moderation service flagged a caption.
// The violated categories are attached to the error message.
var ErrCaptionRejected = errors.New("caption rejected by moderation")

const defaultImageSort = "score desc, id"

// Store runs gallery queries against GORM with pagination driven by the
// keyset package.
type Store struct {
	db          *gorm.DB
	moderation  moderation.Client
	maxPageSize int
}

func NewStore(db *gorm.DB, moderationClient moderation.Client, maxPageSize int) *Store {
	if maxPageSize <= 0 {
		maxPageSize = keyset.MaxLimit
	}

	return &Store{
		db:          db,
		moderation:  moderationClient,
		maxPageSize: maxPageSize,
	}
}

// ListImagesParams are the client-facing parameters of the cursor listing.
type ListImagesParams struct {
	// Limit - maximum number of images per page, normalized by the store.
	Limit int
	// Cursor - scalar cursor from the previous page's NextCursor, empty for
	// the first page.
	Cursor string
	// Sort - sort spec string ("score desc, id"), allowlisted columns only.
	// Empty means the default ranking order.
	Sort string
}

// ImagePage is one page of the cursor listing.
type ImagePage struct {
	Items        []Image `json:"items"`
	NextCursor   string  `json:"nextCursor,omitempty"`
	AppliedLimit int     `json:"appliedLimit"`
	Total        int64   `json:"total"`
}

var imageGetters = keyset.Getters[Image]{
	"id":         func(i Image) any { return i.ID },
	"score":      func(i Image) any { return i.Score },
	"like_count": func(i Image) any { return i.LikeCount },
}

// ListImages returns published images ordered by the requested sort, one
// page per call. Lookahead is always enabled: an empty NextCursor means the
// listing is exhausted.
func (s *Store) ListImages(ctx context.Context, params ListImagesParams) (*ImagePage, error) {
	sort := params.Sort
	if sort == "" {
		sort = defaultImageSort
	}

	orderings, err := keyset.ParseSortSpec(sort, imageSortColumns)
	if err != nil {
		return nil, err
	}

	// A unique column must terminate the ordering, otherwise iteration may
	// skip or repeat rows on ties.
	orderings = ensureUniqueTieBreaker(orderings)

	var cursor any
	if params.Cursor != "" {
		cursor = params.Cursor
	}

	pager, err := keyset.DecodeScalarCursorPager(
		keyset.NormalizeLimitMax(params.Limit, s.maxPageSize),
		cursor,
		orderings...,
	)
	if err != nil {
		return nil, err
	}
	pager = pager.WithLookahead()

	base := s.db.WithContext(ctx).Model(&Image{}).Where("published = ?", true)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count images: %w", err)
	}

	paged, err := pager.Paginate(base.Session(&gorm.Session{}))
	if err != nil {
		return nil, err
	}

	var items []Image
	if err := paged.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	items, nextCursor, err := keyset.NextPageScalarCursor(pager, items, imageGetters)
	if err != nil {
		return nil, err
	}

	return &ImagePage{
		Items:        items,
		NextCursor:   nextCursor,
		AppliedLimit: pager.GetLimit(),
		Total:        total,
	}, nil
}

// ensureUniqueTieBreaker appends the primary key to the ordering when the
// client sort does not already include it.
func ensureUniqueTieBreaker(orderings keyset.Orderings) keyset.Orderings {
	for _, orderBy := range orderings {
		if orderBy.Column == "id" {
			return orderings
		}
	}

	return append(orderings, keyset.OrderBy{Column: "id", Direction: keyset.DirectionASC})
}

// GetUser fetches a profile by id. Returns gorm.ErrRecordNotFound when the
// user does not exist.
func (s *Store) GetUser(ctx context.Context, id uint64) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

// ListUserImages returns one page of a user's published images using
// page/limit pagination, newest first, with response metadata assembled by
// the keyset package.
func (s *Store) ListUserImages(ctx context.Context, userID uint64, limit, page int) (keyset.PagingData[Image], error) {
	base := s.db.WithContext(ctx).
		Model(&Image{}).
		Where("owner_id = ? AND published = ?", userID, true)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return keyset.PagingData[Image]{}, fmt.Errorf("count user images: %w", err)
	}

	query := base.Session(&gorm.Session{}).Order("created_at DESC, id DESC")

	pagination := keyset.GetPagination(limit, page)
	if pagination.Take != nil {
		query = query.Limit(*pagination.Take).Offset(*pagination.Skip)
	}

	var items []Image
	if err := query.Find(&items).Error; err != nil {
		return keyset.PagingData[Image]{}, fmt.Errorf("list user images: %w", err)
	}

	return keyset.GetPagingData(items, total, limit, page), nil
}

// UpdateCaption screens the new caption through moderation and stores it.
// Returns ErrCaptionRejected when the text is flagged.
func (s *Store) UpdateCaption(ctx context.Context, publicID string, caption string) (*Image, error) {
	result, err := s.moderation.Moderate(ctx, caption)
	if err != nil {
		return nil, fmt.Errorf("moderate caption: %w", err)
	}
	if result.Flagged {
		return nil, fmt.Errorf("%w: %v", ErrCaptionRejected, result.Categories)
	}

	var image Image
	if err := s.db.WithContext(ctx).First(&image, "public_id = ?", publicID).Error; err != nil {
		return nil, err
	}

	image.Caption = caption
	if err := s.db.WithContext(ctx).Model(&image).Update("caption", caption).Error; err != nil {
		return nil, fmt.Errorf("update caption: %w", err)
	}

	return &image, nil
}
