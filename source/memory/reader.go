package memory

import (
	"bytes"
)

type Reader struct {
	*bytes.Reader
}

func NewReader(data []byte) *Reader {
	return &Reader{
		Reader: bytes.NewReader(data),
	}
}

func (r *Reader) Close() error {
	return nil
}
