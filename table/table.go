// Package table holds the in-memory representation of tabular data that is
// written to and read from column files.
package table

import (
	"math"
	"time"

	"github.com/hexbee-net/colfile/format"
	"github.com/hexbee-net/colfile/schema"
	"github.com/hexbee-net/errors"
)

const (
	errColumnCount    = errors.Error("column count does not match the schema")
	errLengthMismatch = errors.Error("columns have different lengths")
	errNilSchema      = errors.Error("schema is nil")
)

// Table is an immutable set of equally sized columns described by a schema.
// Values are stored with their Go type, nil being null.
type Table struct {
	schema  *schema.Schema
	columns [][]interface{}
	rows    int
}

// New validates the values of every column against the schema and returns
// a table holding a normalized copy of them.
func New(s *schema.Schema, columns ...[]interface{}) (*Table, error) {
	if s == nil {
		return nil, errors.WithStack(errNilSchema)
	}

	if len(columns) != s.Len() {
		return nil, errors.WithFields(
			errors.WithStack(errColumnCount),
			errors.Fields{
				"expected": s.Len(),
				"actual":   len(columns),
			})
	}

	t := &Table{
		schema:  s,
		columns: make([][]interface{}, len(columns)),
	}

	if len(columns) > 0 {
		t.rows = len(columns[0])
	}

	for i, values := range columns {
		col := s.Column(i)

		if len(values) != t.rows {
			return nil, errors.WithFields(
				errors.WithStack(errLengthMismatch),
				errors.Fields{
					"column":   col.Name(),
					"expected": t.rows,
					"actual":   len(values),
				})
		}

		normalized := make([]interface{}, len(values))

		for j, v := range values {
			nv, err := col.Normalize(v)
			if err != nil {
				return nil, errors.WithFields(
					errors.Wrap(err, "invalid value"),
					errors.Fields{
						"row": j,
					})
			}

			normalized[j] = nv
		}

		t.columns[i] = normalized
	}

	return t, nil
}

// Empty returns a table without rows.
func Empty(s *schema.Schema) *Table {
	return &Table{
		schema:  s,
		columns: make([][]interface{}, s.Len()),
	}
}

func (t *Table) Schema() *schema.Schema {
	return t.schema
}

func (t *Table) NumRows() int {
	return t.rows
}

func (t *Table) NumColumns() int {
	return len(t.columns)
}

// Column returns the values of the i-th column. The slice must not be
// modified.
func (t *Table) Column(i int) []interface{} {
	return t.columns[i]
}

// ColumnByName returns the values of the named column.
func (t *Table) ColumnByName(name string) ([]interface{}, bool) {
	col, ok := t.schema.ColumnByName(name)
	if !ok {
		return nil, false
	}

	return t.columns[col.Index()], true
}

// Row returns the values of row i in schema order.
func (t *Table) Row(i int) []interface{} {
	row := make([]interface{}, len(t.columns))
	for c := range t.columns {
		row[c] = t.columns[c][i]
	}

	return row
}

// Slice returns the rows [from, to).
func (t *Table) Slice(from, to int) (*Table, error) {
	if from < 0 || to < from || to > t.rows {
		return nil, errors.WithFields(
			errors.WithStack(format.ErrRangeOutOfBounds),
			errors.Fields{
				"from": from,
				"to":   to,
				"rows": t.rows,
			})
	}

	res := &Table{
		schema:  t.schema,
		columns: make([][]interface{}, len(t.columns)),
		rows:    to - from,
	}

	for i, values := range t.columns {
		res.columns[i] = append([]interface{}{}, values[from:to]...)
	}

	return res, nil
}

// Select returns a table with the named columns, in schema order.
func (t *Table) Select(names ...string) (*Table, error) {
	indices, err := t.schema.Select(names)
	if err != nil {
		return nil, err
	}

	s, err := t.schema.Project(indices)
	if err != nil {
		return nil, err
	}

	res := &Table{
		schema:  s,
		columns: make([][]interface{}, len(indices)),
		rows:    t.rows,
	}

	for i, idx := range indices {
		res.columns[i] = t.columns[idx]
	}

	return res, nil
}

// Filter returns the rows for which keep is true.
func (t *Table) Filter(keep []bool) (*Table, error) {
	if len(keep) != t.rows {
		return nil, errors.WithFields(
			errors.WithStack(errLengthMismatch),
			errors.Fields{
				"expected": t.rows,
				"actual":   len(keep),
			})
	}

	res := &Table{
		schema:  t.schema,
		columns: make([][]interface{}, len(t.columns)),
	}

	for _, k := range keep {
		if k {
			res.rows++
		}
	}

	for i, values := range t.columns {
		col := make([]interface{}, 0, res.rows)

		for j, v := range values {
			if keep[j] {
				col = append(col, v)
			}
		}

		res.columns[i] = col
	}

	return res, nil
}

// Equal returns true if both tables have the same schema and values.
// Timestamps compare by instant and floats bit for bit.
func (t *Table) Equal(other *Table) bool {
	if t == nil || other == nil {
		return t == other
	}

	if t.rows != other.rows || !t.schema.Equal(other.schema) {
		return false
	}

	for i := range t.columns {
		for j := range t.columns[i] {
			if !valueEqual(t.columns[i][j], other.columns[i][j]) {
				return false
			}
		}
	}

	return true
}

func valueEqual(a, b interface{}) bool {
	switch x := a.(type) {
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	case float32:
		y, ok := b.(float32)
		return ok && math.Float32bits(x) == math.Float32bits(y)
	case float64:
		y, ok := b.(float64)
		return ok && math.Float64bits(x) == math.Float64bits(y)
	}

	return a == b
}
