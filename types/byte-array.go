package types

import (
	"encoding/binary"
	"io"

	"github.com/hexbee-net/errors"
)

// maxByteArrayLen caps the length read from a value prefix.
const maxByteArrayLen = 1 << 30

// Encoding_PLAIN //////////////////////////////////////////////////////////////

// Encoder /////////////////////////////

// ByteArrayPlainEncoder writes every value prefixed with its length as a 4
// bytes little endian integer.
type ByteArrayPlainEncoder struct {
	writer io.Writer
}

func (e *ByteArrayPlainEncoder) Init(writer io.Writer) error {
	if writer == nil {
		return errors.WithStack(errNilWriter)
	}

	e.writer = writer

	return nil
}

func (e *ByteArrayPlainEncoder) EncodeValues(values []interface{}) error {
	for i := range values {
		data, ok := values[i].([]byte)
		if !ok {
			return invalidType("[]byte", values[i])
		}

		if err := binary.Write(e.writer, binary.LittleEndian, uint32(len(data))); err != nil {
			return err
		}

		if err := writeFull(e.writer, data); err != nil {
			return err
		}
	}

	return nil
}

func (e *ByteArrayPlainEncoder) Close() error {
	return nil
}

// Decoder /////////////////////////////

type ByteArrayPlainDecoder struct {
	reader io.Reader
}

func (d *ByteArrayPlainDecoder) Init(reader io.Reader) error {
	if reader == nil {
		return errors.WithStack(errNilReader)
	}

	d.reader = reader

	return nil
}

func (d *ByteArrayPlainDecoder) DecodeValues(dest []interface{}) (count int, err error) {
	for i := range dest {
		if dest[i], err = d.next(); err != nil {
			return i, err
		}
	}

	return len(dest), nil
}

func (d *ByteArrayPlainDecoder) next() ([]byte, error) {
	var l uint32
	if err := binary.Read(d.reader, binary.LittleEndian, &l); err != nil {
		return nil, err
	}

	if l > maxByteArrayLen {
		return nil, errors.WithFields(
			errors.WithStack(errInvalidSize),
			errors.Fields{
				"length": l,
			})
	}

	if lr, ok := d.reader.(interface{ Len() int }); ok && int(l) > lr.Len() {
		return nil, io.ErrUnexpectedEOF
	}

	buf := make([]byte, l)

	if _, err := io.ReadFull(d.reader, buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}

		return nil, err
	}

	return buf, nil
}
