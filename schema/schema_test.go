package schema

import (
	"math"
	"testing"
	"time"

	"github.com/hexbee-net/colfile/format"
	"github.com/hexbee-net/errors"
	"github.com/stretchr/testify/require"
	"github.com/tj/assert"
)

func TestNew(t *testing.T) {
	t.Parallel()

	id := NewColumn("id", format.LogicalType_INT64, false)
	s, err := New(id, NewColumn("name", format.LogicalType_STRING, true))
	require.NoError(t, err)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"id", "name"}, s.Names())
	assert.Equal(t, 1, s.Column(1).Index())
	assert.Equal(t, -1, id.Index(), "the input column is copied")

	c, ok := s.ColumnByName("name")
	require.True(t, ok)
	assert.Equal(t, format.Type_BYTE_ARRAY, c.Type())
	assert.True(t, c.Nullable())

	_, ok = s.ColumnByName("missing")
	assert.False(t, ok)
}

func TestNew_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		columns []*Column
		err     error
	}{
		{name: "empty", columns: nil, err: errEmptySchema},
		{name: "empty name", columns: []*Column{NewColumn("", format.LogicalType_INT32, false)}, err: errEmptyName},
		{
			name: "duplicate",
			columns: []*Column{
				NewColumn("a", format.LogicalType_INT32, false),
				NewColumn("a", format.LogicalType_STRING, false),
			},
			err: errDuplicateName,
		},
		{name: "unknown type", columns: []*Column{NewColumn("a", format.LogicalType(99), false)}, err: errInvalidType},
		{name: "unknown unit", columns: []*Column{NewTimestampColumn("a", format.TimeUnit(7), false)}, err: errInvalidType},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(tt.columns...)
			assert.EqualError(t, errors.Cause(err), tt.err.Error())
		})
	}
}

func TestFromElements(t *testing.T) {
	t.Parallel()

	s := MustNew(
		NewColumn("id", format.LogicalType_INT16, false),
		NewTimestampColumn("ts", format.TimeUnit_NANOS, true),
	)

	out, err := FromElements(s.Elements())
	require.NoError(t, err)
	assert.True(t, s.Equal(out))

	elements := s.Elements()
	elements[0].Type = format.Type_DOUBLE

	_, err = FromElements(elements)
	assert.EqualError(t, errors.Cause(err), errInvalidType.Error())
}

func TestSchema_Select(t *testing.T) {
	t.Parallel()

	s := MustNew(
		NewColumn("a", format.LogicalType_INT32, false),
		NewColumn("b", format.LogicalType_INT32, false),
		NewColumn("c", format.LogicalType_INT32, false),
	)

	idx, err := s.Select([]string{"c", "a", "c"})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, idx)

	idx, err = s.Select(nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, idx)

	_, err = s.Select([]string{"d"})
	assert.EqualError(t, errors.Cause(err), format.ErrUnknownColumn.Error())

	p, err := s.Project([]int{0, 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, p.Names())
	assert.Equal(t, "(a INT32, c INT32)", p.String())
}

func TestColumn_Normalize(t *testing.T) {
	t.Parallel()

	c := NewColumn("v", format.LogicalType_INT8, false)

	v, err := c.Normalize(int8(3))
	require.NoError(t, err)
	assert.Equal(t, int8(3), v)

	_, err = c.Normalize(3)
	assert.EqualError(t, errors.Cause(err), errInvalidValue.Error())

	_, err = c.Normalize(nil)
	assert.EqualError(t, errors.Cause(err), errNullValue.Error())

	nullable := NewColumn("v", format.LogicalType_STRING, true)
	v, err = nullable.Normalize(nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	ts := NewTimestampColumn("ts", format.TimeUnit_MILLIS, false)
	loc := time.FixedZone("plus2", 2*3600)
	in := time.Date(2020, 5, 17, 10, 11, 12, 123456789, loc)

	v, err = ts.Normalize(in)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 5, 17, 8, 11, 12, 123000000, time.UTC), v)
}

func TestColumn_Normalize_TimestampRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		unit    format.TimeUnit
		value   time.Time
		invalid bool
	}{
		{"nanos after 2262", format.TimeUnit_NANOS, time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"nanos before 1677", format.TimeUnit_NANOS, time.Date(1600, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"nanos last day", format.TimeUnit_NANOS, time.Date(2262, 4, 11, 0, 0, 0, 0, time.UTC), false},
		{"nanos first day", format.TimeUnit_NANOS, time.Date(1677, 9, 22, 0, 0, 0, 0, time.UTC), false},
		{"nanos max", format.TimeUnit_NANOS, time.Unix(0, math.MaxInt64).UTC(), false},
		{"micros after 2262", format.TimeUnit_MICROS, time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"micros after 294246", format.TimeUnit_MICROS, time.Date(300000, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"micros before -290307", format.TimeUnit_MICROS, time.Date(-300000, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"millis far future", format.TimeUnit_MILLIS, time.Date(300000, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"millis out of range", format.TimeUnit_MILLIS, time.Date(300000000, 1, 1, 0, 0, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := NewTimestampColumn("ts", tt.unit, false)

			v, err := c.Normalize(tt.value)
			if tt.invalid {
				assert.EqualError(t, errors.Cause(err), errInvalidValue.Error())

				return
			}

			require.NoError(t, err)

			back, err := c.FromPhysical(c.ToPhysical(v))
			require.NoError(t, err)
			assert.True(t, tt.value.Equal(back.(time.Time)))
		})
	}
}

func TestColumn_PhysicalRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		column   *Column
		value    interface{}
		physical interface{}
	}{
		{NewColumn("b", format.LogicalType_BOOLEAN, false), true, true},
		{NewColumn("i8", format.LogicalType_INT8, false), int8(-7), int32(-7)},
		{NewColumn("i16", format.LogicalType_INT16, false), int16(300), int32(300)},
		{NewColumn("i32", format.LogicalType_INT32, false), int32(-1), int32(-1)},
		{NewColumn("i64", format.LogicalType_INT64, false), int64(1 << 40), int64(1 << 40)},
		{NewColumn("f32", format.LogicalType_FLOAT32, false), float32(1.5), float32(1.5)},
		{NewColumn("f64", format.LogicalType_FLOAT64, false), 2.25, 2.25},
		{NewColumn("s", format.LogicalType_STRING, false), "héllo", []byte("héllo")},
		{NewTimestampColumn("ms", format.TimeUnit_MILLIS, false), time.UnixMilli(-1500).UTC(), int64(-1500)},
		{NewColumn("us", format.LogicalType_TIMESTAMP, false), time.UnixMicro(42).UTC(), int64(42)},
		{NewTimestampColumn("ns", format.TimeUnit_NANOS, false), time.Unix(0, 7).UTC(), int64(7)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.column.Name(), func(t *testing.T) {
			t.Parallel()

			p := tt.column.ToPhysical(tt.value)
			assert.Equal(t, tt.physical, p)

			v, err := tt.column.FromPhysical(p)
			require.NoError(t, err)
			assert.Equal(t, tt.value, v)
		})
	}
}

func TestColumn_FromPhysical_OutOfRange(t *testing.T) {
	t.Parallel()

	_, err := NewColumn("i8", format.LogicalType_INT8, false).FromPhysical(int32(200))
	assert.EqualError(t, errors.Cause(err), errInvalidValue.Error())

	_, err = NewColumn("i16", format.LogicalType_INT16, false).FromPhysical(int32(1 << 20))
	assert.EqualError(t, errors.Cause(err), errInvalidValue.Error())

	_, err = NewColumn("s", format.LogicalType_STRING, false).FromPhysical(int32(1))
	assert.EqualError(t, errors.Cause(err), errInvalidValue.Error())
}
