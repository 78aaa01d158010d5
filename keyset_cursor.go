package keyset

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// KeysetCursor is a pagination token describing the position from which the
// requested page starts. An empty token means the beginning of the dataset.
//
// IMPORTANT:
// The token MUST always carry a condition on a unique column, otherwise
// iteration may skip or repeat rows on ties.
//
// The token is a list of conditions of the form:
//
//	[(C1, O1, V1), (C2, O2, V2)... (Cn, On, Vn)]
type KeysetCursor struct {
	elements []CursorElement
}

func NewCursor(elements ...CursorElement) *KeysetCursor {
	return NewKeysetCursor(elements...)
}

func NewKeysetCursor(elements ...CursorElement) *KeysetCursor {
	return &KeysetCursor{
		elements: elements,
	}
}

// DecodeCursor attempts to parse a base64-encoded string into *KeysetCursor.
// An empty string decodes to a nil cursor (first page).
func DecodeCursor(b64String string) (*KeysetCursor, error) {
	if len(b64String) == 0 {
		return nil, nil
	}

	jsonData, err := _encoder.DecodeString(b64String)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode base64 encoded cursor: %w", ErrInvalidCursor, err)
	}

	var elems []CursorElement
	if err = json.Unmarshal(jsonData, &elems); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal json encoded cursor: %w", ErrInvalidCursor, err)
	}

	return &KeysetCursor{
		elements: elems,
	}, nil
}

// String - implements fmt.Stringer.
func (c *KeysetCursor) String() string {
	if c == nil || len(c.elements) == 0 {
		return ""
	}

	jTok, err := json.Marshal(c.elements)
	if err != nil {
		panic(fmt.Errorf("cannot marshal cursor value: %w", err))
	}

	var buf bytes.Buffer
	if err = json.Compact(&buf, jTok); err != nil {
		panic(fmt.Errorf("cannot compact cursor value: %w", err))
	}

	return _encoder.EncodeToString(buf.Bytes())
}

// IsEmpty - implements Cursor.
func (c *KeysetCursor) IsEmpty() bool {
	return c == nil || len(c.elements) == 0
}

// GetElements returns the token elements. Elements are a compressed set of
// filtering conditions.
//
// IMPORTANT:
// These conditions cannot be applied to data directly because they are not
// complete. During pagination they are inflated into the full filter, see toDNF.
func (c *KeysetCursor) GetElements() []CursorElement {
	if c == nil {
		return nil
	}

	return c.elements
}

// WithElements sets the token elements explicitly.
func (c *KeysetCursor) WithElements(elements []CursorElement) *KeysetCursor {
	if c == nil {
		c = new(KeysetCursor)
	}

	c.elements = elements

	return c
}

// Apply - implements Cursor. Applies the position filter to a gorm query.
func (c *KeysetCursor) Apply(db *gorm.DB) *gorm.DB {
	exp := c.toDNF().toGORMExpression()
	if exp == nil {
		return db
	}

	return db.Clauses(exp)
}

// ToSQL returns the string form of the filter as an SQL expression.
//
// Usage:
//
//	query := fmt.Sprintf("SELECT * FROM table WHERE %s", c.ToSQL())
func (c *KeysetCursor) ToSQL() (string, []driver.Value) {
	if c.IsEmpty() {
		return "TRUE", nil
	}

	return c.toDNF().toSQLClause()
}

// toDNF inflates the token elements into a full keyset predicate.
//
// For elements [(C1, O1, V1), (C2, O2, V2)] the resulting filter is:
//
//	(C1 O1 V1) or (C1 = V1 and C2 O2 V2)
//
// Each disjunct pins all higher-priority columns with equality (the tie-break
// clause) and applies the strict comparison at its own rank. The DNF selects
// exactly the rows strictly after the cursor position in the requested order.
func (c *KeysetCursor) toDNF() tDNF {
	if c.IsEmpty() {
		return nil
	}

	dnf := make(tDNF, 0, len(c.elements))
	for i := range c.elements {
		previousElementsWithEqualityCondition := lo.Map(c.elements[:i], func(item CursorElement, _ int) tConjunct {
			return item.toConjunctWithEqualityCondition()
		})

		disjunct := make([]tConjunct, 0, len(previousElementsWithEqualityCondition)+1)
		disjunct = append(disjunct, previousElementsWithEqualityCondition...)
		disjunct = append(disjunct, tConjunct(c.elements[i]))

		dnf = append(dnf, disjunct)
	}

	return dnf
}

// validate - implements Cursor. A non-empty token must match a prefix of the
// orderings column for column: same names in the same order, and operators
// consistent with each ordering direction. A token shorter than the ordering
// is allowed (the trailing columns contribute no condition); this is how
// single-value scalar cursors position against a multi-column sort.
func (c *KeysetCursor) validate(orderings Orderings) error {
	if c.IsEmpty() {
		return nil
	}

	if len(c.elements) > len(orderings) {
		return fmt.Errorf("cursor column number mismatch")
	}

	for i := range c.elements {
		cond := c.elements[i]
		orderBy := orderings[i]

		if cond.Column != orderBy.Column {
			return fmt.Errorf("unexpected cursor column '%s'", cond.Column)
		}

		if !cond.Operator.Valid() {
			return fmt.Errorf("invalid cursor operator '%s'", cond.Operator)
		} else if cond.Operator.ForOrdering() != orderBy.Direction {
			return fmt.Errorf("unexpected cursor operator '%s'", cond.Operator)
		}
	}

	return nil
}

var (
	_ Cursor       = (*KeysetCursor)(nil)
	_ fmt.Stringer = (*KeysetCursor)(nil)
)

// Getters maps ordering columns to field accessors for a model. List the
// columns pagination is based on.
//
// Example:
//
//	keyset.Getters[gallery.Image]{
//		"id":         func(last gallery.Image) any { return last.ID },
//		"created_at": func(last gallery.Image) any { return last.CreatedAt },
//	}
type Getters[T any] map[string]func(T) any

// NextPageCursor builds the cursor for the next page of the dataset from the
// last element of the (possibly lookahead-trimmed) result set. Returns a nil
// cursor on the last page.
func NextPageCursor[T any](
	initialPager *CursorPager[*KeysetCursor],
	resultSet []T,
	getters Getters[T],
) ([]T, *KeysetCursor, error) {
	err := initialPager.validate()
	if err != nil {
		return nil, nil, fmt.Errorf("cannot build next page cursor: %w", err)
	}

	if IsLastPage(initialPager, resultSet) {
		return resultSet, nil, nil
	}
	resultSet = TrimResultSet(initialPager, resultSet)
	last := lo.LastOrEmpty(resultSet)

	ret := KeysetCursor{elements: nil}
	for _, orderBy := range initialPager.sort {
		getter, ok := getters[orderBy.Column]
		if !ok {
			return nil, nil, fmt.Errorf("cannot find getter for column '%s' met in ordering", orderBy.Column)
		}

		value := getter(last)
		ret.elements = append(ret.elements, CursorElement{
			Column:   orderBy.Column,
			Value:    value,
			Operator: orderBy.Direction.ForOperator(),
		})
	}

	return resultSet, &ret, nil
}

// CursorElement is a triple (c v o) where:
//
//   - "c" - model column.
//   - "v" - value the column is compared against.
//   - "o" - operator applied to the pair (c, v).
type CursorElement struct {
	Column   string   `json:"c"`
	Value    any      `json:"v"`
	Operator Operator `json:"o"`
}

func (c *CursorElement) toConjunctWithEqualityCondition() tConjunct {
	return tConjunct{
		Column:   c.Column,
		Value:    c.Value,
		Operator: operatorEq,
	}
}
