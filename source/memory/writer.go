// Package memory keeps files in memory.
package memory

import (
	"bytes"
)

type Writer struct {
	bytes.Buffer

	closed bool
}

func NewWriter(buf []byte) *Writer {
	return &Writer{
		Buffer: *bytes.NewBuffer(buf),
	}
}

func (w *Writer) Close() error {
	w.closed = true

	return nil
}

// Closed returns true once Close was called.
func (w *Writer) Closed() bool {
	return w.closed
}
