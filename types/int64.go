package types //nolint:dupl // it's cleaner to keep each type separate, even with duplication

import (
	"encoding/binary"
	"io"

	"github.com/hexbee-net/colfile/encoding"
	"github.com/hexbee-net/errors"
)

// Encoding_PLAIN //////////////////////////////////////////////////////////////

// Encoder /////////////////////////////

type Int64PlainEncoder struct {
	writer io.Writer
}

func (e *Int64PlainEncoder) Init(writer io.Writer) error {
	if writer == nil {
		return errors.WithStack(errNilWriter)
	}

	e.writer = writer

	return nil
}

func (e *Int64PlainEncoder) EncodeValues(values []interface{}) error {
	d := make([]int64, len(values))

	for i := range values {
		v, ok := values[i].(int64)
		if !ok {
			return invalidType("int64", values[i])
		}

		d[i] = v
	}

	return binary.Write(e.writer, binary.LittleEndian, d)
}

func (e *Int64PlainEncoder) Close() error {
	return nil
}

// Decoder /////////////////////////////

type Int64PlainDecoder struct {
	reader io.Reader
}

func (d *Int64PlainDecoder) Init(reader io.Reader) error {
	if reader == nil {
		return errors.WithStack(errNilReader)
	}

	d.reader = reader

	return nil
}

func (d *Int64PlainDecoder) DecodeValues(dest []interface{}) (count int, err error) {
	var n int64

	for i := range dest {
		if err := binary.Read(d.reader, binary.LittleEndian, &n); err != nil {
			return i, err
		}

		dest[i] = n
	}

	return len(dest), nil
}

// Encoding_DELTA_BINARY_PACKED ////////////////////////////////////////////////

// Encoder /////////////////////////////

type Int64DeltaBPEncoder struct {
	encoder *encoding.DeltaBinaryPackEncoder
}

func (e *Int64DeltaBPEncoder) Init(writer io.Writer) error {
	e.encoder = encoding.NewDeltaBinaryPackEncoder(encoding.DefaultDeltaBlockSize, encoding.DefaultDeltaMiniBlockCount)

	return e.encoder.Init(writer)
}

func (e *Int64DeltaBPEncoder) EncodeValues(values []interface{}) error {
	for i := range values {
		v, ok := values[i].(int64)
		if !ok {
			return invalidType("int64", values[i])
		}

		if err := e.encoder.AddInt64(v); err != nil {
			return err
		}
	}

	return nil
}

func (e *Int64DeltaBPEncoder) Close() error {
	return e.encoder.Close()
}

// Decoder /////////////////////////////

type Int64DeltaBPDecoder struct {
	decoder encoding.DeltaBinaryPackDecoder
}

func (d *Int64DeltaBPDecoder) Init(reader io.Reader) error {
	return d.decoder.Init(reader)
}

func (d *Int64DeltaBPDecoder) DecodeValues(dest []interface{}) (count int, err error) {
	if int(d.decoder.ValuesCount) != len(dest) {
		return 0, errors.WithFields(
			errors.WithStack(errInvalidSize),
			errors.Fields{
				"expected": len(dest),
				"actual":   d.decoder.ValuesCount,
			})
	}

	for i := range dest {
		v, err := d.decoder.Next()
		if err != nil {
			return i, err
		}

		dest[i] = v
	}

	return len(dest), nil
}
