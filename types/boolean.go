package types

import (
	"io"

	"github.com/hexbee-net/colfile/encoding"
	"github.com/hexbee-net/errors"
)

// Encoding_PLAIN //////////////////////////////////////////////////////////////

// Encoder /////////////////////////////

// BooleanPlainEncoder bit-packs the values, least significant bit first.
type BooleanPlainEncoder struct {
	writer io.Writer
	data   *encoding.PackedArray
}

func (e *BooleanPlainEncoder) Init(writer io.Writer) error {
	if writer == nil {
		return errors.WithStack(errNilWriter)
	}

	e.writer = writer
	e.data = &encoding.PackedArray{}

	return e.data.Reset(1)
}

func (e *BooleanPlainEncoder) EncodeValues(values []interface{}) error {
	for i := range values {
		b, ok := values[i].(bool)
		if !ok {
			return invalidType("bool", values[i])
		}

		var v int32
		if b {
			v = 1
		}

		e.data.AppendSingle(v)
	}

	return nil
}

func (e *BooleanPlainEncoder) Close() error {
	e.data.Flush()

	return e.data.Write(e.writer)
}

// Decoder /////////////////////////////

type BooleanPlainDecoder struct {
	reader io.Reader
	left   []bool
}

func (d *BooleanPlainDecoder) Init(reader io.Reader) error {
	if reader == nil {
		return errors.WithStack(errNilReader)
	}

	d.reader = reader
	d.left = nil

	return nil
}

func (d *BooleanPlainDecoder) DecodeValues(dest []interface{}) (count int, err error) {
	start := 0

	if len(d.left) > 0 {
		// there is a leftover from the last run
		d.left, start = copyLeftOvers(dest, d.left)

		if d.left != nil {
			return len(dest), nil
		}
	}

	buf := make([]byte, 1)

	for i := start; i < len(dest); i += 8 {
		if _, err := io.ReadFull(d.reader, buf); err != nil {
			return i, err
		}

		for j := 0; j < 8; j++ {
			v := (buf[0]>>uint(j))&1 == 1

			if i+j < len(dest) {
				dest[i+j] = v
			} else {
				d.left = append(d.left, v)
			}
		}
	}

	return len(dest), nil
}

// copyLeftOvers copies the values left over by the previous call. The
// returned slice is nil once everything was consumed, so the backing array
// can be released.
func copyLeftOvers(dest []interface{}, src []bool) (leftOver []bool, readCount int) {
	size := len(dest)
	clean := false

	if len(src) <= size {
		size = len(src)
		clean = true
	}

	for i := 0; i < size; i++ {
		dest[i] = src[i]
	}

	if clean {
		return nil, size
	}

	return src[size:], size
}

// Encoding_RLE ////////////////////////////////////////////////////////////////

// Encoder /////////////////////////////

type BooleanRLEEncoder struct {
	writer  io.Writer
	encoder *encoding.HybridEncoder
}

func (e *BooleanRLEEncoder) Init(writer io.Writer) (err error) {
	if writer == nil {
		return errors.WithStack(errNilWriter)
	}

	e.writer = writer
	e.encoder, err = encoding.NewHybridEncoder(1)

	return err
}

func (e *BooleanRLEEncoder) EncodeValues(values []interface{}) error {
	for i := range values {
		b, ok := values[i].(bool)
		if !ok {
			return invalidType("bool", values[i])
		}

		var v int32
		if b {
			v = 1
		}

		if err := e.encoder.AppendSingle(v); err != nil {
			return err
		}
	}

	return nil
}

func (e *BooleanRLEEncoder) Close() error {
	return e.encoder.Write(e.writer)
}

// Decoder /////////////////////////////

type BooleanRLEDecoder struct {
	decoder *encoding.HybridDecoder
}

func (d *BooleanRLEDecoder) Init(reader io.Reader) (err error) {
	if d.decoder, err = encoding.NewHybridDecoder(1); err != nil {
		return err
	}

	return d.decoder.Init(reader)
}

func (d *BooleanRLEDecoder) DecodeValues(dest []interface{}) (count int, err error) {
	for i := range dest {
		n, err := d.decoder.Next()
		if err != nil {
			return i, err
		}

		dest[i] = n == 1
	}

	return len(dest), nil
}
