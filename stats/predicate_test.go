package stats

import (
	"math"
	"testing"
	"time"

	"github.com/hexbee-net/colfile/format"
	"github.com/hexbee-net/colfile/schema"
	"github.com/hexbee-net/colfile/types"
	"github.com/hexbee-net/errors"
	"github.com/stretchr/testify/require"
	"github.com/tj/assert"
)

func testSchema() *schema.Schema {
	return schema.MustNew(
		schema.NewColumn("id", format.LogicalType_INT32, false),
		schema.NewColumn("name", format.LogicalType_STRING, true),
		schema.NewColumn("score", format.LogicalType_FLOAT64, true),
		schema.NewColumn("flag", format.LogicalType_BOOLEAN, true),
		schema.NewColumn("small", format.LogicalType_INT8, false),
		schema.NewTimestampColumn("ts", format.TimeUnit_MILLIS, false),
	)
}

func statistics(t *testing.T, nulls int64, min, max interface{}) *format.Statistics {
	t.Helper()

	st := &format.Statistics{NullCount: nulls}

	if min != nil {
		var err error

		st.Min, err = types.EncodeStatValue(min)
		require.NoError(t, err)
		st.Max, err = types.EncodeStatValue(max)
		require.NoError(t, err)
	}

	return st
}

func TestParsePredicate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		expr    string
		want    *Predicate
		wantErr bool
	}{
		{expr: "id >= 10", want: &Predicate{Column: "id", Op: GtEq, Value: "10"}},
		{expr: "id<=10", want: &Predicate{Column: "id", Op: LtEq, Value: "10"}},
		{expr: "id != 3", want: &Predicate{Column: "id", Op: NotEq, Value: "3"}},
		{expr: "id < -3", want: &Predicate{Column: "id", Op: Lt, Value: "-3"}},
		{expr: "id > 3", want: &Predicate{Column: "id", Op: Gt, Value: "3"}},
		{expr: "name = 'bob'", want: &Predicate{Column: "name", Op: Eq, Value: "bob"}},
		{expr: `name = "a=b"`, want: &Predicate{Column: "name", Op: Eq, Value: "a=b"}},
		{expr: "name > b=c", want: &Predicate{Column: "name", Op: Gt, Value: "b=c"}},
		{expr: "flag is null", want: &Predicate{Column: "flag", Op: IsNull}},
		{expr: "flag IS NOT NULL", want: &Predicate{Column: "flag", Op: IsNotNull}},
		{expr: "flag", wantErr: true},
		{expr: "= 3", wantErr: true},
		{expr: " is null", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.expr, func(t *testing.T) {
			t.Parallel()

			got, err := ParsePredicate(tt.expr)
			if tt.wantErr {
				assert.Equal(t, errInvalidPredicate, errors.Cause(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPredicate_Compile(t *testing.T) {
	t.Parallel()

	s := testSchema()
	ts := time.Date(2020, 1, 2, 3, 4, 5, 6000000, time.UTC)

	tests := []struct {
		name    string
		pred    Predicate
		want    interface{}
		wantErr error
	}{
		{name: "typed value", pred: Predicate{Column: "id", Op: Eq, Value: int32(4)}, want: int32(4)},
		{name: "int literal", pred: Predicate{Column: "id", Op: Eq, Value: "4"}, want: int32(4)},
		{name: "string", pred: Predicate{Column: "name", Op: Eq, Value: "4"}, want: []byte("4")},
		{name: "float literal", pred: Predicate{Column: "score", Op: Gt, Value: "1.5"}, want: 1.5},
		{name: "bool literal", pred: Predicate{Column: "flag", Op: Eq, Value: "true"}, want: true},
		{name: "int8 literal", pred: Predicate{Column: "small", Op: Eq, Value: "-4"}, want: int32(-4)},
		{name: "timestamp", pred: Predicate{Column: "ts", Op: Lt, Value: ts}, want: ts.UnixMilli()},
		{name: "timestamp literal", pred: Predicate{Column: "ts", Op: Lt, Value: "2020-01-02T03:04:05.006Z"}, want: ts.UnixMilli()},
		{name: "null check", pred: Predicate{Column: "name", Op: IsNull}, want: nil},
		{name: "unknown column", pred: Predicate{Column: "nope", Op: Eq, Value: "1"}, wantErr: format.ErrUnknownColumn},
		{name: "bad literal", pred: Predicate{Column: "id", Op: Eq, Value: "x"}, wantErr: errInvalidPredicate},
		{name: "int8 overflow", pred: Predicate{Column: "small", Op: Eq, Value: "300"}, wantErr: errInvalidPredicate},
		{name: "wrong type", pred: Predicate{Column: "id", Op: Eq, Value: int64(4)}, wantErr: errInvalidPredicate},
		{name: "null value", pred: Predicate{Column: "id", Op: Eq}, wantErr: errInvalidPredicate},
		{name: "unknown op", pred: Predicate{Column: "id", Op: Op(42), Value: int32(1)}, wantErr: errInvalidPredicate},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, err := tt.pred.Compile(s)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, errors.Cause(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.pred.Column, m.Column().Name())
			assert.Equal(t, tt.want, m.value)
		})
	}
}

func compile(t *testing.T, column string, op Op, value interface{}) *Matcher {
	t.Helper()

	m, err := Predicate{Column: column, Op: op, Value: value}.Compile(testSchema())
	require.NoError(t, err)

	return m
}

func TestMatcher_Match(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		m     *Matcher
		value interface{}
		want  bool
	}{
		{name: "eq", m: compile(t, "id", Eq, int32(5)), value: int32(5), want: true},
		{name: "eq miss", m: compile(t, "id", Eq, int32(5)), value: int32(6), want: false},
		{name: "not eq", m: compile(t, "id", NotEq, int32(5)), value: int32(6), want: true},
		{name: "lt", m: compile(t, "id", Lt, int32(5)), value: int32(4), want: true},
		{name: "lt equal", m: compile(t, "id", Lt, int32(5)), value: int32(5), want: false},
		{name: "lteq", m: compile(t, "id", LtEq, int32(5)), value: int32(5), want: true},
		{name: "gt", m: compile(t, "id", Gt, int32(5)), value: int32(5), want: false},
		{name: "gteq", m: compile(t, "id", GtEq, int32(5)), value: int32(5), want: true},
		{name: "string", m: compile(t, "name", Gt, "bob"), value: []byte("carl"), want: true},
		{name: "null eq", m: compile(t, "name", Eq, "bob"), value: nil, want: false},
		{name: "null not eq", m: compile(t, "name", NotEq, "bob"), value: nil, want: false},
		{name: "is null", m: compile(t, "name", IsNull, nil), value: nil, want: true},
		{name: "is null miss", m: compile(t, "name", IsNull, nil), value: []byte("a"), want: false},
		{name: "is not null", m: compile(t, "name", IsNotNull, nil), value: []byte("a"), want: true},
		{name: "nan eq", m: compile(t, "score", Eq, 1.0), value: math.NaN(), want: false},
		{name: "nan not eq", m: compile(t, "score", NotEq, 1.0), value: math.NaN(), want: true},
		{name: "nan gt", m: compile(t, "score", Gt, 1.0), value: math.NaN(), want: false},
		{name: "bool", m: compile(t, "flag", Gt, false), value: true, want: true},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.m.Match(tt.value))
		})
	}
}

func TestMatcher_CanSkip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		m      *Matcher
		stats  *format.Statistics
		values int64
		want   bool
	}{
		{name: "no stats", m: compile(t, "id", Eq, int32(5)), stats: nil, values: 10, want: false},
		{name: "eq below", m: compile(t, "id", Eq, int32(5)), stats: statistics(t, 0, int32(6), int32(9)), values: 10, want: true},
		{name: "eq above", m: compile(t, "id", Eq, int32(10)), stats: statistics(t, 0, int32(6), int32(9)), values: 10, want: true},
		{name: "eq inside", m: compile(t, "id", Eq, int32(7)), stats: statistics(t, 0, int32(6), int32(9)), values: 10, want: false},
		{name: "eq bound", m: compile(t, "id", Eq, int32(9)), stats: statistics(t, 0, int32(6), int32(9)), values: 10, want: false},
		{name: "not eq constant", m: compile(t, "id", NotEq, int32(6)), stats: statistics(t, 0, int32(6), int32(6)), values: 10, want: true},
		{name: "not eq range", m: compile(t, "id", NotEq, int32(6)), stats: statistics(t, 0, int32(6), int32(7)), values: 10, want: false},
		{name: "not eq float", m: compile(t, "score", NotEq, 1.0), stats: statistics(t, 0, 1.0, 1.0), values: 10, want: false},
		{name: "lt skip", m: compile(t, "id", Lt, int32(6)), stats: statistics(t, 0, int32(6), int32(9)), values: 10, want: true},
		{name: "lt keep", m: compile(t, "id", Lt, int32(7)), stats: statistics(t, 0, int32(6), int32(9)), values: 10, want: false},
		{name: "lteq skip", m: compile(t, "id", LtEq, int32(5)), stats: statistics(t, 0, int32(6), int32(9)), values: 10, want: true},
		{name: "lteq keep", m: compile(t, "id", LtEq, int32(6)), stats: statistics(t, 0, int32(6), int32(9)), values: 10, want: false},
		{name: "gt skip", m: compile(t, "id", Gt, int32(9)), stats: statistics(t, 0, int32(6), int32(9)), values: 10, want: true},
		{name: "gt keep", m: compile(t, "id", Gt, int32(8)), stats: statistics(t, 0, int32(6), int32(9)), values: 10, want: false},
		{name: "gteq skip", m: compile(t, "id", GtEq, int32(10)), stats: statistics(t, 0, int32(6), int32(9)), values: 10, want: true},
		{name: "gteq keep", m: compile(t, "id", GtEq, int32(9)), stats: statistics(t, 0, int32(6), int32(9)), values: 10, want: false},
		{name: "string", m: compile(t, "name", Eq, "zed"), stats: statistics(t, 0, []byte("alice"), []byte("bob")), values: 10, want: true},
		{name: "all nulls comparison", m: compile(t, "name", Eq, "a"), stats: statistics(t, 4, nil, nil), values: 4, want: true},
		{name: "no bounds", m: compile(t, "name", Eq, "a"), stats: statistics(t, 1, nil, nil), values: 4, want: false},
		{name: "is null without nulls", m: compile(t, "name", IsNull, nil), stats: statistics(t, 0, []byte("a"), []byte("b")), values: 4, want: true},
		{name: "is null with nulls", m: compile(t, "name", IsNull, nil), stats: statistics(t, 1, []byte("a"), []byte("b")), values: 4, want: false},
		{name: "is not null all nulls", m: compile(t, "name", IsNotNull, nil), stats: statistics(t, 4, nil, nil), values: 4, want: true},
		{name: "is not null", m: compile(t, "name", IsNotNull, nil), stats: statistics(t, 3, nil, nil), values: 4, want: false},
		{name: "corrupt bound", m: compile(t, "id", Eq, int32(5)), stats: &format.Statistics{Min: []byte{1}, Max: []byte{2}}, values: 4, want: false},
		{name: "nan eq", m: compile(t, "score", Eq, math.NaN()), stats: statistics(t, 0, 1.0, 2.0), values: 4, want: true},
		{name: "nan not eq", m: compile(t, "score", NotEq, math.NaN()), stats: statistics(t, 0, 1.0, 2.0), values: 4, want: false},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.m.CanSkip(tt.stats, tt.values))
		})
	}
}

func TestPredicate_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `name = "bob"`, Predicate{Column: "name", Op: Eq, Value: "bob"}.String())
	assert.Equal(t, "id >= 4", Predicate{Column: "id", Op: GtEq, Value: int32(4)}.String())
	assert.Equal(t, "id is not null", Predicate{Column: "id", Op: IsNotNull}.String())
	assert.Equal(t, "Op(42)", Op(42).String())
}
