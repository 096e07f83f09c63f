package types

import (
	"bytes"
	"cmp"
	"encoding/binary"
	"math"

	"github.com/hexbee-net/colfile/format"
	"github.com/hexbee-net/errors"
)

// Key returns a comparable representation of a physical value, two values
// share a key only if they are bit for bit identical.
func Key(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case int32, int64, bool:
		return t, nil
	case float32:
		return math.Float32bits(t), nil
	case float64:
		return math.Float64bits(t), nil
	case []byte:
		return string(t), nil
	}

	return nil, invalidType("physical value", v)
}

// IsNaN returns true for floating point NaN values.
func IsNaN(v interface{}) bool {
	switch t := v.(type) {
	case float32:
		return t != t
	case float64:
		return math.IsNaN(t)
	}

	return false
}

// Compare returns -1, 0 or 1 depending on the natural order of two physical
// values of the same type. Booleans order false before true, byte arrays
// compare lexicographically. NaN values must be filtered out by the caller.
func Compare(a, b interface{}) int {
	switch x := a.(type) {
	case int32:
		return cmp.Compare(x, b.(int32))
	case int64:
		return cmp.Compare(x, b.(int64))
	case float32:
		return cmp.Compare(x, b.(float32))
	case float64:
		return cmp.Compare(x, b.(float64))
	case []byte:
		return bytes.Compare(x, b.([]byte))
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	}

	panic("types: unsupported value type")
}

// EncodeStatValue serializes a statistics bound. Fixed width values are
// little endian, byte arrays are stored as is.
func EncodeStatValue(v interface{}) ([]byte, error) {
	switch t := v.(type) {
	case bool:
		if t {
			return []byte{1}, nil
		}

		return []byte{0}, nil
	case int32:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(t))

		return b, nil
	case int64:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, uint64(t))

		return b, nil
	case float32:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, math.Float32bits(t))

		return b, nil
	case float64:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, math.Float64bits(t))

		return b, nil
	case []byte:
		return append([]byte{}, t...), nil
	}

	return nil, invalidType("physical value", v)
}

// DecodeStatValue parses a statistics bound of the provided physical type.
func DecodeStatValue(typ format.Type, b []byte) (interface{}, error) {
	size := 0

	switch typ {
	case format.Type_BOOLEAN:
		size = 1
	case format.Type_INT32, format.Type_FLOAT:
		size = 4
	case format.Type_INT64, format.Type_DOUBLE:
		size = 8
	case format.Type_BYTE_ARRAY:
		return append([]byte{}, b...), nil
	default:
		return nil, errors.WithFields(
			errors.WithStack(errInvalidType),
			errors.Fields{
				"type": typ.String(),
			})
	}

	if len(b) != size {
		return nil, errors.WithFields(
			errors.WithStack(errInvalidSize),
			errors.Fields{
				"type":     typ.String(),
				"expected": size,
				"actual":   len(b),
			})
	}

	switch typ {
	case format.Type_BOOLEAN:
		return b[0] != 0, nil
	case format.Type_INT32:
		return int32(binary.LittleEndian.Uint32(b)), nil
	case format.Type_FLOAT:
		return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
	case format.Type_INT64:
		return int64(binary.LittleEndian.Uint64(b)), nil
	default:
		return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
	}
}
