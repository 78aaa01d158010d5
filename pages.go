package keyset

import (
	"net/url"
	"strconv"

	"github.com/samber/lo"
)

// Offset-style page/limit pagination for endpoints that expose page numbers
// instead of cursors, plus response metadata and page link construction.

// Pagination holds the LIMIT/OFFSET pair derived from page/limit query
// parameters. Nil Take and Skip mean no pagination: the caller returns the
// full result set, ordered only.
type Pagination struct {
	// Take - maximum number of records to fetch (LIMIT).
	Take *int
	// Skip - number of records to skip (OFFSET).
	Skip *int
}

// GetPagination derives LIMIT/OFFSET from page/limit parameters:
// skip = (page - 1) * take. When either parameter is not positive, both Take
// and Skip are nil and no pagination applies.
func GetPagination(limit, page int) Pagination {
	if limit <= 0 || page <= 0 {
		return Pagination{}
	}

	return Pagination{
		Take: lo.ToPtr(limit),
		Skip: lo.ToPtr((page - 1) * limit),
	}
}

// PagingData is the paginated response envelope for page/limit endpoints.
type PagingData[T any] struct {
	Items       []T   `json:"items"`
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
}

// GetPagingData assembles the response envelope from a fetched result set and
// the original page/limit parameters. TotalPages is
// ceil(totalItems / pageSize) when both are known and non-zero, otherwise 1.
func GetPagingData[T any](items []T, totalItems int64, limit, page int) PagingData[T] {
	totalPages := 1
	if limit > 0 && totalItems > 0 {
		totalPages = int((totalItems + int64(limit) - 1) / int64(limit))
	}

	return PagingData[T]{
		Items:       items,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		CurrentPage: page,
		PageSize:    limit,
	}
}

// PageLinks carries absolute URLs of the neighboring pages. Nil means the
// neighbor does not exist.
type PageLinks struct {
	NextPage *string `json:"nextPage,omitempty"`
	PrevPage *string `json:"prevPage,omitempty"`
}

// GetPageLinks builds next/prev page links by cloning the request URL and
// rewriting its "page" query parameter to currentPage ± 1.
//
//   - currentPage below 1 is treated as page 1.
//   - NextPage is omitted when currentPage >= totalPages.
//   - PrevPage is omitted when currentPage <= 1 or totalPages <= 1.
func GetPageLinks(requestURL *url.URL, currentPage, totalPages int) PageLinks {
	var links PageLinks
	if requestURL == nil {
		return links
	}

	if currentPage < 1 {
		currentPage = 1
	}

	if currentPage < totalPages {
		links.NextPage = lo.ToPtr(withPageParam(requestURL, currentPage+1))
	}

	if currentPage > 1 && totalPages > 1 {
		links.PrevPage = lo.ToPtr(withPageParam(requestURL, currentPage-1))
	}

	return links
}

// withPageParam clones the URL and rewrites its "page" query parameter.
// The original URL is never mutated.
func withPageParam(requestURL *url.URL, page int) string {
	cloned := *requestURL

	query := cloned.Query()
	query.Set("page", strconv.Itoa(page))
	cloned.RawQuery = query.Encode()

	return cloned.String()
}
