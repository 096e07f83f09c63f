// Package types holds the value encoders and decoders of every physical type.
//
// Encoders take non null physical values: int32, int64, float32, float64,
// bool and []byte.
package types

import (
	"fmt"
	"io"

	"github.com/hexbee-net/colfile/format"
	"github.com/hexbee-net/errors"
)

const (
	errInvalidType  = errors.Error("invalid type")
	errNilWriter    = errors.Error("writer is nil")
	errNilReader    = errors.Error("reader is nil")
	errInvalidIndex = errors.Error("dictionary index out of range")
	errInvalidSize  = errors.Error("invalid size")
)

// decodeBatchSize is the number of values decoded per call to a decoder.
const decodeBatchSize = 4096

type ValuesEncoder interface {
	io.Closer

	Init(io.Writer) error
	EncodeValues(values []interface{}) error
}

type ValuesDecoder interface {
	Init(io.Reader) error

	// DecodeValues fills dest. Fewer values than len(dest) always come with an
	// error.
	DecodeValues(dest []interface{}) (count int, err error)
}

// NewEncoder returns the encoder of typ values with the provided encoding.
func NewEncoder(typ format.Type, enc format.Encoding) (ValuesEncoder, error) {
	switch enc {
	case format.Encoding_PLAIN:
		return newPlainEncoder(typ)

	case format.Encoding_RLE:
		if typ == format.Type_BOOLEAN {
			return &BooleanRLEEncoder{}, nil
		}

	case format.Encoding_DELTA_BINARY_PACKED:
		switch typ {
		case format.Type_INT32:
			return &Int32DeltaBPEncoder{}, nil
		case format.Type_INT64:
			return &Int64DeltaBPEncoder{}, nil
		}

	case format.Encoding_RLE_DICTIONARY:
		if plain, err := newPlainEncoder(typ); err == nil {
			return &DictEncoder{Plain: plain}, nil
		}
	}

	return nil, unsupported(typ, enc)
}

// NewDecoder returns the decoder of typ values with the provided encoding.
func NewDecoder(typ format.Type, enc format.Encoding) (ValuesDecoder, error) {
	switch enc {
	case format.Encoding_PLAIN:
		return newPlainDecoder(typ)

	case format.Encoding_RLE:
		if typ == format.Type_BOOLEAN {
			return &BooleanRLEDecoder{}, nil
		}

	case format.Encoding_DELTA_BINARY_PACKED:
		switch typ {
		case format.Type_INT32:
			return &Int32DeltaBPDecoder{}, nil
		case format.Type_INT64:
			return &Int64DeltaBPDecoder{}, nil
		}

	case format.Encoding_RLE_DICTIONARY:
		if plain, err := newPlainDecoder(typ); err == nil {
			return &DictDecoder{Plain: plain}, nil
		}
	}

	return nil, unsupported(typ, enc)
}

func newPlainEncoder(typ format.Type) (ValuesEncoder, error) {
	switch typ {
	case format.Type_BOOLEAN:
		return &BooleanPlainEncoder{}, nil
	case format.Type_INT32:
		return &Int32PlainEncoder{}, nil
	case format.Type_INT64:
		return &Int64PlainEncoder{}, nil
	case format.Type_FLOAT:
		return &FloatPlainEncoder{}, nil
	case format.Type_DOUBLE:
		return &DoublePlainEncoder{}, nil
	case format.Type_BYTE_ARRAY:
		return &ByteArrayPlainEncoder{}, nil
	}

	return nil, unsupported(typ, format.Encoding_PLAIN)
}

func newPlainDecoder(typ format.Type) (ValuesDecoder, error) {
	switch typ {
	case format.Type_BOOLEAN:
		return &BooleanPlainDecoder{}, nil
	case format.Type_INT32:
		return &Int32PlainDecoder{}, nil
	case format.Type_INT64:
		return &Int64PlainDecoder{}, nil
	case format.Type_FLOAT:
		return &FloatPlainDecoder{}, nil
	case format.Type_DOUBLE:
		return &DoublePlainDecoder{}, nil
	case format.Type_BYTE_ARRAY:
		return &ByteArrayPlainDecoder{}, nil
	}

	return nil, unsupported(typ, format.Encoding_PLAIN)
}

func unsupported(typ format.Type, enc format.Encoding) error {
	return errors.WithFields(
		errors.WithStack(format.ErrUnsupportedEncoding),
		errors.Fields{
			"type":     typ.String(),
			"encoding": enc.String(),
		})
}

func invalidType(expected string, actual interface{}) error {
	return errors.WithFields(
		errors.WithStack(errInvalidType),
		errors.Fields{
			"expected": expected,
			"actual":   fmt.Sprintf("%T", actual),
		})
}

// EncodeValues runs a whole encoder over values.
func EncodeValues(w io.Writer, enc ValuesEncoder, values []interface{}) error {
	if err := enc.Init(w); err != nil {
		return err
	}

	if err := enc.EncodeValues(values); err != nil {
		return err
	}

	return enc.Close()
}

// DecodeValues initializes dec on r and reads exactly count values.
func DecodeValues(r io.Reader, dec ValuesDecoder, count int) ([]interface{}, error) {
	if err := dec.Init(r); err != nil {
		return nil, err
	}

	// count comes from the page header, the slice grows with the values
	// actually decoded.
	dest := make([]interface{}, 0, min(count, decodeBatchSize))

	for len(dest) < count {
		batch := make([]interface{}, min(count-len(dest), decodeBatchSize))

		n, err := dec.DecodeValues(batch)
		if err != nil {
			return nil, errors.WithFields(
				errors.Wrap(err, "failed to decode values"),
				errors.Fields{
					"expected": count,
					"actual":   len(dest) + n,
				})
		}

		dest = append(dest, batch...)
	}

	return dest, nil
}
