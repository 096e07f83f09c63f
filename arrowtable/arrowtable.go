// Package arrowtable converts tables to and from Apache Arrow records.
package arrowtable

import (
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/hexbee-net/colfile/format"
	"github.com/hexbee-net/colfile/schema"
	"github.com/hexbee-net/colfile/table"
	"github.com/hexbee-net/errors"
)

const errUnsupportedType = errors.Error("unsupported arrow type")

var arrowUnits = map[format.TimeUnit]arrow.TimeUnit{
	format.TimeUnit_MILLIS: arrow.Millisecond,
	format.TimeUnit_MICROS: arrow.Microsecond,
	format.TimeUnit_NANOS:  arrow.Nanosecond,
}

// ToArrowSchema returns the arrow schema of s. Timestamps are in UTC.
func ToArrowSchema(s *schema.Schema) *arrow.Schema {
	fields := make([]arrow.Field, s.Len())

	for i, col := range s.Columns() {
		fields[i] = arrow.Field{
			Name:     col.Name(),
			Type:     arrowType(col),
			Nullable: col.Nullable(),
		}
	}

	return arrow.NewSchema(fields, nil)
}

func arrowType(col *schema.Column) arrow.DataType {
	switch col.LogicalType() {
	case format.LogicalType_BOOLEAN:
		return arrow.FixedWidthTypes.Boolean
	case format.LogicalType_INT8:
		return arrow.PrimitiveTypes.Int8
	case format.LogicalType_INT16:
		return arrow.PrimitiveTypes.Int16
	case format.LogicalType_INT32:
		return arrow.PrimitiveTypes.Int32
	case format.LogicalType_INT64:
		return arrow.PrimitiveTypes.Int64
	case format.LogicalType_FLOAT32:
		return arrow.PrimitiveTypes.Float32
	case format.LogicalType_FLOAT64:
		return arrow.PrimitiveTypes.Float64
	case format.LogicalType_TIMESTAMP:
		return &arrow.TimestampType{Unit: arrowUnits[col.TimeUnit()], TimeZone: "UTC"}
	}

	return arrow.BinaryTypes.String
}

// FromArrowSchema returns the schema of an arrow schema. Only the arrow
// types having a column type counterpart are supported.
func FromArrowSchema(as *arrow.Schema) (*schema.Schema, error) {
	columns := make([]*schema.Column, 0, len(as.Fields()))

	for _, f := range as.Fields() {
		var col *schema.Column

		switch f.Type.ID() {
		case arrow.BOOL:
			col = schema.NewColumn(f.Name, format.LogicalType_BOOLEAN, f.Nullable)
		case arrow.INT8:
			col = schema.NewColumn(f.Name, format.LogicalType_INT8, f.Nullable)
		case arrow.INT16:
			col = schema.NewColumn(f.Name, format.LogicalType_INT16, f.Nullable)
		case arrow.INT32:
			col = schema.NewColumn(f.Name, format.LogicalType_INT32, f.Nullable)
		case arrow.INT64:
			col = schema.NewColumn(f.Name, format.LogicalType_INT64, f.Nullable)
		case arrow.FLOAT32:
			col = schema.NewColumn(f.Name, format.LogicalType_FLOAT32, f.Nullable)
		case arrow.FLOAT64:
			col = schema.NewColumn(f.Name, format.LogicalType_FLOAT64, f.Nullable)
		case arrow.STRING:
			col = schema.NewColumn(f.Name, format.LogicalType_STRING, f.Nullable)
		case arrow.TIMESTAMP:
			for unit, au := range arrowUnits {
				if f.Type.(*arrow.TimestampType).Unit == au {
					col = schema.NewTimestampColumn(f.Name, unit, f.Nullable)
				}
			}
		}

		if col == nil {
			return nil, errors.WithFields(
				errors.WithStack(errUnsupportedType),
				errors.Fields{
					"field": f.Name,
					"type":  f.Type.String(),
				})
		}

		columns = append(columns, col)
	}

	return schema.New(columns...)
}

// ToRecord copies t into an arrow record. The caller must release it.
func ToRecord(t *table.Table, mem memory.Allocator) arrow.Record {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	b := array.NewRecordBuilder(mem, ToArrowSchema(t.Schema()))
	defer b.Release()

	for i, col := range t.Schema().Columns() {
		appendColumn(b.Field(i), col, t.Column(i))
	}

	return b.NewRecord()
}

func appendColumn(fb array.Builder, col *schema.Column, values []interface{}) {
	fb.Reserve(len(values))

	for _, v := range values {
		if v == nil {
			fb.AppendNull()

			continue
		}

		switch b := fb.(type) {
		case *array.BooleanBuilder:
			b.Append(v.(bool))
		case *array.Int8Builder:
			b.Append(v.(int8))
		case *array.Int16Builder:
			b.Append(v.(int16))
		case *array.Int32Builder:
			b.Append(v.(int32))
		case *array.Int64Builder:
			b.Append(v.(int64))
		case *array.Float32Builder:
			b.Append(v.(float32))
		case *array.Float64Builder:
			b.Append(v.(float64))
		case *array.StringBuilder:
			b.Append(v.(string))
		case *array.TimestampBuilder:
			b.Append(arrow.Timestamp(toUnit(v.(time.Time), col.TimeUnit())))
		}
	}
}

// FromRecord copies an arrow record into a table.
func FromRecord(rec arrow.Record) (*table.Table, error) {
	s, err := FromArrowSchema(rec.Schema())
	if err != nil {
		return nil, err
	}

	columns := make([][]interface{}, s.Len())

	for i, col := range s.Columns() {
		arr := rec.Column(i)
		values := make([]interface{}, arr.Len())

		for j := range values {
			if arr.IsNull(j) {
				continue
			}

			switch a := arr.(type) {
			case *array.Boolean:
				values[j] = a.Value(j)
			case *array.Int8:
				values[j] = a.Value(j)
			case *array.Int16:
				values[j] = a.Value(j)
			case *array.Int32:
				values[j] = a.Value(j)
			case *array.Int64:
				values[j] = a.Value(j)
			case *array.Float32:
				values[j] = a.Value(j)
			case *array.Float64:
				values[j] = a.Value(j)
			case *array.String:
				values[j] = a.Value(j)
			case *array.Timestamp:
				values[j] = fromUnit(int64(a.Value(j)), col.TimeUnit())
			}
		}

		columns[i] = values
	}

	return table.New(s, columns...)
}

func toUnit(t time.Time, unit format.TimeUnit) int64 {
	switch unit {
	case format.TimeUnit_MILLIS:
		return t.UnixMilli()
	case format.TimeUnit_MICROS:
		return t.UnixMicro()
	}

	return t.UnixNano()
}

func fromUnit(v int64, unit format.TimeUnit) time.Time {
	switch unit {
	case format.TimeUnit_MILLIS:
		return time.UnixMilli(v).UTC()
	case format.TimeUnit_MICROS:
		return time.UnixMicro(v).UTC()
	}

	return time.Unix(0, v).UTC()
}
