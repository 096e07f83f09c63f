package schema

import (
	"math"
	"time"

	"github.com/hexbee-net/colfile/format"
	"github.com/hexbee-net/errors"
)

// Normalize checks that v can be stored in the column and returns the value
// as it reads back: timestamps are converted to UTC and truncated to the
// column unit. nil is the null value.
func (c *Column) Normalize(v interface{}) (interface{}, error) {
	if v == nil {
		if !c.nullable {
			return nil, errors.WithFields(
				errors.WithStack(errNullValue),
				errors.Fields{
					"column": c.name,
				})
		}

		return nil, nil
	}

	ok := false

	switch c.typ {
	case format.LogicalType_BOOLEAN:
		_, ok = v.(bool)
	case format.LogicalType_INT8:
		_, ok = v.(int8)
	case format.LogicalType_INT16:
		_, ok = v.(int16)
	case format.LogicalType_INT32:
		_, ok = v.(int32)
	case format.LogicalType_INT64:
		_, ok = v.(int64)
	case format.LogicalType_FLOAT32:
		_, ok = v.(float32)
	case format.LogicalType_FLOAT64:
		_, ok = v.(float64)
	case format.LogicalType_STRING:
		_, ok = v.(string)
	case format.LogicalType_TIMESTAMP:
		var t time.Time
		if t, ok = v.(time.Time); ok {
			t = t.UTC().Truncate(unitDuration(c.unit))

			lo, hi := unitRange(c.unit)
			if t.Before(lo) || t.After(hi) {
				return nil, c.outOfRange(v)
			}

			return t, nil
		}
	}

	if !ok {
		return nil, errors.WithFields(
			errors.WithStack(errInvalidValue),
			errors.Fields{
				"column": c.name,
				"type":   c.typ.String(),
				"value":  v,
			})
	}

	return v, nil
}

// ToPhysical converts a non null normalized value to its storage
// representation: int32, int64, float32, float64, bool or []byte.
func (c *Column) ToPhysical(v interface{}) interface{} {
	switch t := v.(type) {
	case int8:
		return int32(t)
	case int16:
		return int32(t)
	case string:
		return []byte(t)
	case time.Time:
		switch c.unit {
		case format.TimeUnit_MILLIS:
			return t.UnixMilli()
		case format.TimeUnit_NANOS:
			return t.UnixNano()
		default:
			return t.UnixMicro()
		}
	}

	return v
}

// FromPhysical converts a decoded storage value back to the column type.
func (c *Column) FromPhysical(v interface{}) (interface{}, error) {
	var ok bool

	switch c.typ {
	case format.LogicalType_INT8, format.LogicalType_INT16:
		var i int32
		if i, ok = v.(int32); !ok {
			break
		}

		if c.typ == format.LogicalType_INT8 {
			if i < math.MinInt8 || i > math.MaxInt8 {
				return nil, c.outOfRange(v)
			}

			return int8(i), nil
		}

		if i < math.MinInt16 || i > math.MaxInt16 {
			return nil, c.outOfRange(v)
		}

		return int16(i), nil

	case format.LogicalType_STRING:
		var b []byte
		if b, ok = v.([]byte); ok {
			return string(b), nil
		}

	case format.LogicalType_TIMESTAMP:
		var i int64
		if i, ok = v.(int64); ok {
			switch c.unit {
			case format.TimeUnit_MILLIS:
				return time.UnixMilli(i).UTC(), nil
			case format.TimeUnit_NANOS:
				return time.Unix(0, i).UTC(), nil
			default:
				return time.UnixMicro(i).UTC(), nil
			}
		}

	case format.LogicalType_INT32:
		_, ok = v.(int32)
	case format.LogicalType_INT64:
		_, ok = v.(int64)
	case format.LogicalType_FLOAT32:
		_, ok = v.(float32)
	case format.LogicalType_FLOAT64:
		_, ok = v.(float64)
	case format.LogicalType_BOOLEAN:
		_, ok = v.(bool)
	}

	if !ok {
		return nil, errors.WithFields(
			errors.WithStack(errInvalidValue),
			errors.Fields{
				"column": c.name,
				"type":   c.typ.String(),
				"value":  v,
			})
	}

	return v, nil
}

func (c *Column) outOfRange(v interface{}) error {
	return errors.WithFields(
		errors.WithStack(errInvalidValue),
		errors.Fields{
			"column": c.name,
			"type":   c.typ.String(),
			"value":  v,
			"reason": "out of range",
		})
}

func unitDuration(unit format.TimeUnit) time.Duration {
	switch unit {
	case format.TimeUnit_MILLIS:
		return time.Millisecond
	case format.TimeUnit_NANOS:
		return time.Nanosecond
	default:
		return time.Microsecond
	}
}

// unitRange returns the first and last instants whose count of units since
// the epoch fits in an int64.
func unitRange(unit format.TimeUnit) (time.Time, time.Time) {
	switch unit {
	case format.TimeUnit_MILLIS:
		return time.UnixMilli(math.MinInt64).UTC(), time.UnixMilli(math.MaxInt64).UTC()
	case format.TimeUnit_NANOS:
		return time.Unix(0, math.MinInt64).UTC(), time.Unix(0, math.MaxInt64).UTC()
	default:
		return time.UnixMicro(math.MinInt64).UTC(), time.UnixMicro(math.MaxInt64).UTC()
	}
}
