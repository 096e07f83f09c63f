package stats

import (
	"strconv"
	"strings"
	"time"

	"github.com/hexbee-net/colfile/format"
	"github.com/hexbee-net/colfile/schema"
	"github.com/hexbee-net/colfile/types"
	"github.com/hexbee-net/errors"
)

const (
	errInvalidPredicate = errors.Error("invalid predicate")
)

// Op is a comparison operator.
type Op int

const (
	Eq Op = iota
	NotEq
	Lt
	LtEq
	Gt
	GtEq
	IsNull
	IsNotNull
)

var opSymbols = map[Op]string{
	Eq:        "=",
	NotEq:     "!=",
	Lt:        "<",
	LtEq:      "<=",
	Gt:        ">",
	GtEq:      ">=",
	IsNull:    "is null",
	IsNotNull: "is not null",
}

func (o Op) String() string {
	if s, ok := opSymbols[o]; ok {
		return s
	}

	return "Op(" + strconv.Itoa(int(o)) + ")"
}

// Predicate is a condition on a single column. Value holds a value of the
// column type, or its textual form, and is ignored by the null checks.
//
// Comparisons never match a null value.
type Predicate struct {
	Column string
	Op     Op
	Value  interface{}
}

func (p Predicate) String() string {
	if p.Op == IsNull || p.Op == IsNotNull {
		return p.Column + " " + p.Op.String()
	}

	return p.Column + " " + p.Op.String() + " " + formatValue(p.Value)
}

// ParsePredicate parses expressions like "id >= 10", "name = bob" or
// "flag is null". The value is kept as text until the predicate is compiled
// against a schema.
func ParsePredicate(expr string) (*Predicate, error) {
	expr = strings.TrimSpace(expr)

	lower := strings.ToLower(expr)
	for _, op := range []Op{IsNotNull, IsNull} {
		suffix := " " + op.String()
		if strings.HasSuffix(lower, suffix) {
			column := strings.TrimSpace(expr[:len(expr)-len(suffix)])
			if column == "" {
				break
			}

			return &Predicate{Column: column, Op: op}, nil
		}
	}

	// Two character operators first, "<=" must not parse as "<".
	for _, op := range []Op{NotEq, LtEq, GtEq, Eq, Lt, Gt} {
		sym := op.String()

		i := strings.Index(expr, sym)
		if i <= 0 {
			continue
		}

		column := strings.TrimSpace(expr[:i])
		value := strings.TrimSpace(expr[i+len(sym):])

		if column == "" || strings.ContainsAny(column, "<>=!") {
			continue
		}

		return &Predicate{Column: column, Op: op, Value: unquote(value)}, nil
	}

	return nil, errors.WithFields(
		errors.WithStack(errInvalidPredicate),
		errors.Fields{
			"expression": expr,
		})
}

// Compile binds the predicate to a schema column.
func (p Predicate) Compile(s *schema.Schema) (*Matcher, error) {
	col, ok := s.ColumnByName(p.Column)
	if !ok {
		return nil, errors.WithFields(
			errors.WithStack(format.ErrUnknownColumn),
			errors.Fields{
				"column": p.Column,
			})
	}

	m := &Matcher{
		column: col,
		op:     p.Op,
	}

	if _, ok := opSymbols[p.Op]; !ok {
		return nil, errors.WithFields(
			errors.WithStack(errInvalidPredicate),
			errors.Fields{
				"op": int(p.Op),
			})
	}

	if p.Op == IsNull || p.Op == IsNotNull {
		return m, nil
	}

	v := p.Value
	if str, ok := v.(string); ok && col.LogicalType() != format.LogicalType_STRING {
		var err error
		if v, err = parseLiteral(col, str); err != nil {
			return nil, err
		}
	}

	if v == nil {
		return nil, errors.WithFields(
			errors.WithStack(errInvalidPredicate),
			errors.Fields{
				"column": p.Column,
				"reason": "comparison with null",
			})
	}

	nv, err := col.Normalize(v)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(errInvalidPredicate, err.Error()),
			errors.Fields{
				"column": p.Column,
			})
	}

	m.value = col.ToPhysical(nv)

	return m, nil
}

func parseLiteral(col *schema.Column, s string) (interface{}, error) {
	var (
		v   interface{}
		err error
	)

	switch col.LogicalType() {
	case format.LogicalType_BOOLEAN:
		v, err = strconv.ParseBool(s)
	case format.LogicalType_INT8:
		var i int64
		i, err = strconv.ParseInt(s, 10, 8)
		v = int8(i)
	case format.LogicalType_INT16:
		var i int64
		i, err = strconv.ParseInt(s, 10, 16)
		v = int16(i)
	case format.LogicalType_INT32:
		var i int64
		i, err = strconv.ParseInt(s, 10, 32)
		v = int32(i)
	case format.LogicalType_INT64:
		v, err = strconv.ParseInt(s, 10, 64)
	case format.LogicalType_FLOAT32:
		var f float64
		f, err = strconv.ParseFloat(s, 32)
		v = float32(f)
	case format.LogicalType_FLOAT64:
		v, err = strconv.ParseFloat(s, 64)
	case format.LogicalType_TIMESTAMP:
		v, err = time.Parse(time.RFC3339Nano, s)
	default:
		v = s
	}

	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(errInvalidPredicate, err.Error()),
			errors.Fields{
				"column": col.Name(),
				"value":  s,
			})
	}

	return v, nil
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}

	return s
}

func formatValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strconv.Quote(t)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case []byte:
		return strconv.Quote(string(t))
	case nil:
		return "null"
	}

	return toString(v)
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case bool:
		return strconv.FormatBool(t)
	case int8:
		return strconv.FormatInt(int64(t), 10)
	case int16:
		return strconv.FormatInt(int64(t), 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	}

	return "?"
}

// Matcher is a predicate bound to a column, comparing physical values.
type Matcher struct {
	column *schema.Column
	op     Op
	value  interface{}
}

// Column returns the column the predicate applies to.
func (m *Matcher) Column() *schema.Column {
	return m.column
}

func (m *Matcher) isFloat() bool {
	t := m.column.Type()

	return t == format.Type_FLOAT || t == format.Type_DOUBLE
}

// Match evaluates the predicate on a physical value, nil being null.
func (m *Matcher) Match(v interface{}) bool {
	switch m.op {
	case IsNull:
		return v == nil
	case IsNotNull:
		return v != nil
	}

	if v == nil {
		return false
	}

	// NaN compares false with everything, like the Go operators do.
	if types.IsNaN(v) || types.IsNaN(m.value) {
		return m.op == NotEq
	}

	c := types.Compare(v, m.value)

	switch m.op {
	case Eq:
		return c == 0
	case NotEq:
		return c != 0
	case Lt:
		return c < 0
	case LtEq:
		return c <= 0
	case Gt:
		return c > 0
	case GtEq:
		return c >= 0
	}

	return false
}

// CanSkip returns true only when no value described by st can match the
// predicate. numValues is the number of values, nulls included. The answer
// is conservative: whenever the statistics are missing or unreadable the
// values must be read.
func (m *Matcher) CanSkip(st *format.Statistics, numValues int64) bool {
	if st == nil {
		return false
	}

	nonNull := numValues - st.NullCount

	switch m.op {
	case IsNull:
		return st.NullCount == 0
	case IsNotNull:
		return nonNull <= 0
	}

	if nonNull <= 0 {
		return true
	}

	if !st.HasMinMax() {
		return false
	}

	min, err := types.DecodeStatValue(m.column.Type(), st.Min)
	if err != nil {
		return false
	}

	max, err := types.DecodeStatValue(m.column.Type(), st.Max)
	if err != nil {
		return false
	}

	if types.IsNaN(m.value) {
		// Only != can match, and it matches every non null value.
		return m.op != NotEq
	}

	switch m.op {
	case Eq:
		return types.Compare(m.value, min) < 0 || types.Compare(m.value, max) > 0
	case NotEq:
		// NaN values are not part of the bounds but match !=.
		if m.isFloat() {
			return false
		}

		return types.Compare(min, m.value) == 0 && types.Compare(max, m.value) == 0
	case Lt:
		return types.Compare(min, m.value) >= 0
	case LtEq:
		return types.Compare(min, m.value) > 0
	case Gt:
		return types.Compare(max, m.value) <= 0
	case GtEq:
		return types.Compare(max, m.value) < 0
	}

	return false
}
