// Package schema describes the ordered, typed columns of a table.
package schema

import (
	"strings"

	"github.com/hexbee-net/colfile/format"
	"github.com/hexbee-net/errors"
)

const (
	errEmptySchema   = errors.Error("schema has no column")
	errEmptyName     = errors.Error("column name is empty")
	errDuplicateName = errors.Error("duplicate column name")
	errInvalidType   = errors.Error("invalid column type")
	errInvalidValue  = errors.Error("invalid value")
	errNullValue     = errors.Error("null value in a non nullable column")
)

// Schema is an ordered list of uniquely named columns.
type Schema struct {
	columns []*Column
	byName  map[string]int
}

// New creates a schema. The columns are copied, later changes to the
// arguments do not affect the schema.
func New(columns ...*Column) (*Schema, error) {
	if len(columns) == 0 {
		return nil, errors.WithStack(errEmptySchema)
	}

	s := &Schema{
		columns: make([]*Column, 0, len(columns)),
		byName:  make(map[string]int, len(columns)),
	}

	for i, c := range columns {
		if c == nil {
			return nil, errors.WithFields(
				errors.New("column is nil"),
				errors.Fields{
					"index": i,
				})
		}

		if err := c.validate(); err != nil {
			return nil, err
		}

		if _, ok := s.byName[c.name]; ok {
			return nil, errors.WithFields(
				errors.WithStack(errDuplicateName),
				errors.Fields{
					"column": c.name,
				})
		}

		cpy := *c
		cpy.index = i

		s.byName[c.name] = i
		s.columns = append(s.columns, &cpy)
	}

	return s, nil
}

// MustNew is like New but panics on error.
func MustNew(columns ...*Column) *Schema {
	s, err := New(columns...)
	if err != nil {
		panic(err)
	}

	return s
}

// FromElements rebuilds a schema from the footer description.
func FromElements(elements []*format.SchemaElement) (*Schema, error) {
	columns := make([]*Column, 0, len(elements))

	for _, el := range elements {
		c, err := FromElement(el)
		if err != nil {
			return nil, err
		}

		columns = append(columns, c)
	}

	return New(columns...)
}

// Len returns the number of columns.
func (s *Schema) Len() int {
	return len(s.columns)
}

// Columns returns the columns in order.
func (s *Schema) Columns() []*Column {
	ret := make([]*Column, len(s.columns))
	copy(ret, s.columns)

	return ret
}

// Column returns the column at index i.
func (s *Schema) Column(i int) *Column {
	return s.columns[i]
}

// ColumnByName returns the column with the provided name.
func (s *Schema) ColumnByName(name string) (*Column, bool) {
	i, ok := s.byName[name]
	if !ok {
		return nil, false
	}

	return s.columns[i], true
}

// Names returns the column names in order.
func (s *Schema) Names() []string {
	ret := make([]string, len(s.columns))
	for i, c := range s.columns {
		ret[i] = c.name
	}

	return ret
}

// Elements returns the footer description of the schema.
func (s *Schema) Elements() []*format.SchemaElement {
	ret := make([]*format.SchemaElement, len(s.columns))
	for i, c := range s.columns {
		ret[i] = c.Element()
	}

	return ret
}

// Select returns the indices of the named columns, in schema order. Duplicate
// names are ignored. A nil or empty list selects every column.
func (s *Schema) Select(names []string) ([]int, error) {
	if len(names) == 0 {
		ret := make([]int, len(s.columns))
		for i := range ret {
			ret[i] = i
		}

		return ret, nil
	}

	selected := make([]bool, len(s.columns))

	for _, name := range names {
		i, ok := s.byName[name]
		if !ok {
			return nil, errors.WithFields(
				errors.WithStack(format.ErrUnknownColumn),
				errors.Fields{
					"column": name,
				})
		}

		selected[i] = true
	}

	ret := make([]int, 0, len(names))

	for i, ok := range selected {
		if ok {
			ret = append(ret, i)
		}
	}

	return ret, nil
}

// Project returns a schema holding the columns at the provided indices.
func (s *Schema) Project(indices []int) (*Schema, error) {
	columns := make([]*Column, 0, len(indices))

	for _, i := range indices {
		if i < 0 || i >= len(s.columns) {
			return nil, errors.WithFields(
				errors.WithStack(format.ErrUnknownColumn),
				errors.Fields{
					"index": i,
				})
		}

		columns = append(columns, s.columns[i])
	}

	return New(columns...)
}

// Equal returns true if both schemas hold the same columns in the same order.
func (s *Schema) Equal(other *Schema) bool {
	if s == nil || other == nil {
		return s == other
	}

	if len(s.columns) != len(other.columns) {
		return false
	}

	for i := range s.columns {
		if !s.columns[i].equal(other.columns[i]) {
			return false
		}
	}

	return true
}

func (s *Schema) String() string {
	parts := make([]string, len(s.columns))
	for i, c := range s.columns {
		parts[i] = c.String()
	}

	return "(" + strings.Join(parts, ", ") + ")"
}
