// Package keyset provides cursor-based pagination primitives for GORM,
// built for the listing APIs of the glimmerhub gallery platform.
//
// Overview
//
// keyset implements two cursor strategies:
//   - KeysetCursor: keyset pagination using comparison operators against the
//     last element of the previous page. This scales well on large datasets and
//     requires a deterministic ordering with at least one unique column.
//   - OffsetCursor: a compatibility layer over LIMIT/OFFSET when true cursors
//     are not possible.
//
// Key concepts
//   - CursorPager: orchestrates pagination, lookahead, sorting and applying
//     cursors to GORM queries.
//   - Orderings: multi-column ordering with explicit directions, parsed from
//     client sort strings through a column allowlist.
//   - Getters: maps model fields to values for building the next page cursor.
//   - Scalar cursors: the compact colon-delimited cursor format used by the
//     platform's listing endpoints, convertible to and from KeysetCursor.
//
// Offset-style page/limit pagination with response metadata and page links
// lives in pages.go.
package keyset
