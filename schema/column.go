package schema

import (
	"github.com/hexbee-net/colfile/format"
	"github.com/hexbee-net/errors"
)

// Column describes one column of a schema. Columns are immutable.
type Column struct {
	index    int
	name     string
	typ      format.LogicalType
	unit     format.TimeUnit
	nullable bool
}

// NewColumn creates a column of the provided logical type. Use
// NewTimestampColumn for timestamps with a unit other than microseconds.
func NewColumn(name string, typ format.LogicalType, nullable bool) *Column {
	return &Column{
		index:    -1,
		name:     name,
		typ:      typ,
		unit:     format.TimeUnit_MICROS,
		nullable: nullable,
	}
}

// NewTimestampColumn creates a timestamp column stored with the provided
// precision.
func NewTimestampColumn(name string, unit format.TimeUnit, nullable bool) *Column {
	c := NewColumn(name, format.LogicalType_TIMESTAMP, nullable)
	c.unit = unit

	return c
}

// FromElement creates a column from its footer description.
func FromElement(el *format.SchemaElement) (*Column, error) {
	if el == nil {
		return nil, errors.New("schema element is nil")
	}

	c := &Column{
		index:    -1,
		name:     el.Name,
		typ:      el.LogicalType,
		unit:     el.TimeUnit,
		nullable: el.Nullable,
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	if c.Type() != el.Type {
		return nil, errors.WithFields(
			errors.WithStack(errInvalidType),
			errors.Fields{
				"column":        el.Name,
				"logical-type":  el.LogicalType.String(),
				"physical-type": el.Type.String(),
			})
	}

	return c, nil
}

// Name returns the column name.
func (c *Column) Name() string {
	return c.name
}

// Index returns the index of the column in its schema, zero based.
func (c *Column) Index() int {
	return c.index
}

// LogicalType returns the user facing type of the column.
func (c *Column) LogicalType() format.LogicalType {
	return c.typ
}

// TimeUnit returns the precision of a timestamp column.
func (c *Column) TimeUnit() format.TimeUnit {
	return c.unit
}

// Nullable returns true if the column accepts null values.
func (c *Column) Nullable() bool {
	return c.nullable
}

// Type returns the physical type the column is stored as.
func (c *Column) Type() format.Type {
	switch c.typ {
	case format.LogicalType_BOOLEAN:
		return format.Type_BOOLEAN
	case format.LogicalType_INT8, format.LogicalType_INT16, format.LogicalType_INT32:
		return format.Type_INT32
	case format.LogicalType_INT64, format.LogicalType_TIMESTAMP:
		return format.Type_INT64
	case format.LogicalType_FLOAT32:
		return format.Type_FLOAT
	case format.LogicalType_FLOAT64:
		return format.Type_DOUBLE
	case format.LogicalType_STRING:
		return format.Type_BYTE_ARRAY
	}

	return format.Type(-1)
}

// IsInteger returns true for the columns stored as integers.
func (c *Column) IsInteger() bool {
	t := c.Type()

	return t == format.Type_INT32 || t == format.Type_INT64
}

// Element returns the footer description of the column.
func (c *Column) Element() *format.SchemaElement {
	return &format.SchemaElement{
		Name:        c.name,
		Type:        c.Type(),
		LogicalType: c.typ,
		TimeUnit:    c.unit,
		Nullable:    c.nullable,
	}
}

func (c *Column) String() string {
	s := c.name + " " + c.typ.String()
	if c.typ == format.LogicalType_TIMESTAMP {
		s += "(" + c.unit.String() + ")"
	}

	if c.nullable {
		s += " NULL"
	}

	return s
}

func (c *Column) equal(other *Column) bool {
	return c.name == other.name &&
		c.typ == other.typ &&
		c.nullable == other.nullable &&
		(c.typ != format.LogicalType_TIMESTAMP || c.unit == other.unit)
}

func (c *Column) validate() error {
	if c.name == "" {
		return errors.WithStack(errEmptyName)
	}

	switch c.typ {
	case format.LogicalType_BOOLEAN,
		format.LogicalType_INT8, format.LogicalType_INT16, format.LogicalType_INT32, format.LogicalType_INT64,
		format.LogicalType_FLOAT32, format.LogicalType_FLOAT64,
		format.LogicalType_STRING:
	case format.LogicalType_TIMESTAMP:
		switch c.unit {
		case format.TimeUnit_MILLIS, format.TimeUnit_MICROS, format.TimeUnit_NANOS:
		default:
			return errors.WithFields(
				errors.WithStack(errInvalidType),
				errors.Fields{
					"column":    c.name,
					"time-unit": c.unit.String(),
				})
		}
	default:
		return errors.WithFields(
			errors.WithStack(errInvalidType),
			errors.Fields{
				"column":       c.name,
				"logical-type": c.typ.String(),
			})
	}

	return nil
}
