package types //nolint:dupl // it's cleaner to keep each type separate, even with duplication

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/hexbee-net/errors"
)

// Encoder /////////////////////////////

type DoublePlainEncoder struct {
	writer io.Writer
}

func (f *DoublePlainEncoder) Init(writer io.Writer) error {
	if writer == nil {
		return errors.WithStack(errNilWriter)
	}

	f.writer = writer

	return nil
}

func (f *DoublePlainEncoder) EncodeValues(values []interface{}) error {
	data := make([]uint64, len(values))

	for i := range values {
		v, ok := values[i].(float64)
		if !ok {
			return invalidType("float64", values[i])
		}

		data[i] = math.Float64bits(v)
	}

	return binary.Write(f.writer, binary.LittleEndian, data)
}

func (f *DoublePlainEncoder) Close() error {
	return nil
}

// Decoder /////////////////////////////

type DoublePlainDecoder struct {
	reader io.Reader
}

func (d *DoublePlainDecoder) Init(reader io.Reader) error {
	if reader == nil {
		return errors.WithStack(errNilReader)
	}

	d.reader = reader

	return nil
}

func (d *DoublePlainDecoder) DecodeValues(dest []interface{}) (int, error) {
	var data uint64

	for i := range dest {
		if err := binary.Read(d.reader, binary.LittleEndian, &data); err != nil {
			return i, errors.Wrap(err, "failed to read values data")
		}

		dest[i] = math.Float64frombits(data)
	}

	return len(dest), nil
}
