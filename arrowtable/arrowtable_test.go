package arrowtable

import (
	"testing"
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/hexbee-net/colfile/format"
	"github.com/hexbee-net/colfile/schema"
	"github.com/hexbee-net/colfile/table"
	"github.com/hexbee-net/errors"
	"github.com/stretchr/testify/require"
	"github.com/tj/assert"
)

func TestRecordRoundTrip(t *testing.T) {
	t.Parallel()

	s := schema.MustNew(
		schema.NewColumn("b", format.LogicalType_BOOLEAN, true),
		schema.NewColumn("i8", format.LogicalType_INT8, false),
		schema.NewColumn("i16", format.LogicalType_INT16, true),
		schema.NewColumn("i32", format.LogicalType_INT32, false),
		schema.NewColumn("i64", format.LogicalType_INT64, true),
		schema.NewColumn("f32", format.LogicalType_FLOAT32, false),
		schema.NewColumn("f64", format.LogicalType_FLOAT64, true),
		schema.NewColumn("s", format.LogicalType_STRING, true),
		schema.NewTimestampColumn("ms", format.TimeUnit_MILLIS, true),
		schema.NewTimestampColumn("us", format.TimeUnit_MICROS, false),
		schema.NewTimestampColumn("ns", format.TimeUnit_NANOS, false),
	)

	ts := time.Date(2020, 10, 13, 15, 15, 28, 123456789, time.UTC)

	tbl, err := table.New(s,
		[]interface{}{true, nil, false},
		[]interface{}{int8(-1), int8(0), int8(127)},
		[]interface{}{nil, int16(-300), int16(300)},
		[]interface{}{int32(1), int32(2), int32(3)},
		[]interface{}{int64(1) << 40, nil, int64(-5)},
		[]interface{}{float32(1.5), float32(0), float32(-2.25)},
		[]interface{}{nil, 3.14, -1e300},
		[]interface{}{"a", "", nil},
		[]interface{}{ts, nil, ts.Add(time.Hour)},
		[]interface{}{ts, ts, ts},
		[]interface{}{ts, ts.Add(time.Nanosecond), ts},
	)
	require.NoError(t, err)

	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	rec := ToRecord(tbl, mem)
	defer rec.Release()

	assert.Equal(t, int64(3), rec.NumRows())
	assert.Equal(t, int64(11), rec.NumCols())
	assert.True(t, arrow.TypeEqual(&arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}, rec.Schema().Field(9).Type))

	got, err := FromRecord(rec)
	require.NoError(t, err)
	assert.True(t, got.Equal(tbl))
}

func TestFromArrowSchema_Unsupported(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		typ  arrow.DataType
	}{
		{name: "uint8", typ: arrow.PrimitiveTypes.Uint8},
		{name: "binary", typ: arrow.BinaryTypes.Binary},
		{name: "seconds", typ: &arrow.TimestampType{Unit: arrow.Second}},
		{name: "list", typ: arrow.ListOf(arrow.PrimitiveTypes.Int32)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := FromArrowSchema(arrow.NewSchema([]arrow.Field{{Name: "x", Type: tt.typ}}, nil))
			assert.Equal(t, errUnsupportedType, errors.Cause(err))
		})
	}
}
