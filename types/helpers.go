package types

import (
	"io"

	"github.com/hexbee-net/errors"
)

type byteReader interface {
	io.Reader
	io.ByteReader
}

// asByteReader avoids the one byte reads of binary.ReadUvarint going
// through an allocation on plain readers.
func asByteReader(r io.Reader) byteReader {
	if b, ok := r.(byteReader); ok {
		return b
	}

	return &simpleByteReader{Reader: r}
}

type simpleByteReader struct {
	io.Reader
}

func (r *simpleByteReader) ReadByte() (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r.Reader, buf[:]); err != nil {
		return 0, err
	}

	return buf[0], nil
}

func writeFull(w io.Writer, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}

	cnt, err := w.Write(buf)
	if err != nil {
		return err
	}

	if cnt != len(buf) {
		return errors.WithFields(
			errors.New("invalid number of bytes written"),
			errors.Fields{
				"expected": len(buf),
				"actual":   cnt,
			})
	}

	return nil
}
