package keyset

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Scalar cursors are the compact cursor format of the platform's listing
// endpoints: the raw sort-key value of the last row for a single-column sort,
// or the colon-joined values for a multi-column sort ("123:45"), one segment
// per ordering in declared order.
//
// Unlike KeysetCursor tokens, scalar cursors carry values only. Columns and
// operators are recovered from the orderings they are decoded against, which
// keeps the format short but ties a cursor to one specific sort.

const scalarCursorSeparator = ":"

// DecodeScalarCursor maps a scalar cursor onto the given orderings and returns
// the equivalent *KeysetCursor. A nil or empty raw value decodes to a nil
// cursor (first page).
//
// Two input shapes are accepted:
//   - A numeric value (any integer or float kind, or json.Number). This is the
//     single-column fast path: the value binds to the FIRST ordering only and
//     the remaining orderings contribute no condition.
//   - A string of colon-separated numeric segments, bound positionally.
//     Segment count MUST match the ordering count; a mismatch is rejected with
//     ErrInvalidCursor rather than partially mapped.
func DecodeScalarCursor(orderings Orderings, raw any) (*KeysetCursor, error) {
	if raw == nil {
		return nil, nil
	}

	if err := orderings.validate(); err != nil {
		return nil, fmt.Errorf("cannot decode scalar cursor: %w", err)
	}

	if value, ok := scalarNumericValue(raw); ok {
		return NewKeysetCursor(CursorElement{
			Column:   orderings[0].Column,
			Value:    value,
			Operator: orderings[0].Direction.ForOperator(),
		}), nil
	}

	rawString, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported scalar cursor type %T", ErrInvalidCursor, raw)
	}
	if rawString == "" {
		return nil, nil
	}

	segments := strings.Split(rawString, scalarCursorSeparator)
	if len(segments) != len(orderings) {
		return nil, fmt.Errorf(
			"%w: cursor has %d segments, ordering has %d columns",
			ErrInvalidCursor, len(segments), len(orderings),
		)
	}

	elements := make([]CursorElement, 0, len(segments))
	for i, segment := range segments {
		value, err := parseScalarSegment(segment)
		if err != nil {
			return nil, err
		}

		elements = append(elements, CursorElement{
			Column:   orderings[i].Column,
			Value:    value,
			Operator: orderings[i].Direction.ForOperator(),
		})
	}

	return NewKeysetCursor(elements...), nil
}

// EncodeScalarCursor renders sort-key values as a scalar cursor string. A
// single value renders bare, multiple values are colon-joined in the given
// order. The inverse of DecodeScalarCursor for matching orderings.
func EncodeScalarCursor(values ...any) string {
	segments := make([]string, 0, len(values))
	for _, value := range values {
		segments = append(segments, formatScalarValue(value))
	}

	return strings.Join(segments, scalarCursorSeparator)
}

// ScalarString renders the cursor's values as a scalar cursor string,
// discarding columns and operators.
func (c *KeysetCursor) ScalarString() string {
	if c.IsEmpty() {
		return ""
	}

	values := make([]any, 0, len(c.elements))
	for _, element := range c.elements {
		values = append(values, element.Value)
	}

	return EncodeScalarCursor(values...)
}

// NextPageScalarCursor builds the scalar cursor for the next page of the
// dataset. Semantics follow NextPageCursor; the returned cursor is "" on the
// last page.
func NextPageScalarCursor[T any](
	initialPager *CursorPager[*KeysetCursor],
	resultSet []T,
	getters Getters[T],
) ([]T, string, error) {
	resultSet, cursor, err := NextPageCursor(initialPager, resultSet, getters)
	if err != nil {
		return nil, "", err
	}

	return resultSet, cursor.ScalarString(), nil
}

// SortKeyExpression returns the SQL expression whose value identifies a row's
// position under the given orderings: the bare column for a single-column
// sort, a colon-separated CONCAT for a multi-column sort. Reading this
// expression off the last row of a page yields that page's scalar cursor.
func SortKeyExpression(orderings Orderings) string {
	if len(orderings) == 1 {
		return orderings[0].Column
	}

	args := make([]string, 0, len(orderings)*2-1)
	for i, orderBy := range orderings {
		if i > 0 {
			args = append(args, fmt.Sprintf("'%s'", scalarCursorSeparator))
		}

		args = append(args, orderBy.Column)
	}

	return fmt.Sprintf("CONCAT(%s)", strings.Join(args, ", "))
}

// scalarNumericValue reports whether raw is a numeric scalar and normalizes
// integer kinds to int64 (uint64 past the int64 range stays uint64) and float
// kinds to float64.
func scalarNumericValue(raw any) (any, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return scalarNumericValue(uint64(v))
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		// Values past the int64 range keep their own type instead of
		// wrapping negative.
		if v > math.MaxInt64 {
			return v, true
		}
		return int64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case json.Number:
		value, err := parseScalarSegment(v.String())
		if err != nil {
			return nil, false
		}
		return value, true
	default:
		return nil, false
	}
}

func parseScalarSegment(segment string) (any, error) {
	if intValue, err := strconv.ParseInt(segment, 10, 64); err == nil {
		return intValue, nil
	}

	floatValue, err := strconv.ParseFloat(segment, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: non-numeric segment '%s'", ErrInvalidCursor, segment)
	}

	return floatValue, nil
}

func formatScalarValue(value any) string {
	switch v := value.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
