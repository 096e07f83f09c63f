// Package source abstracts the storages column files are read from and
// written to.
package source

import "io"

// Reader gives random access to a whole file. Reads may happen concurrently.
type Reader interface {
	io.ReaderAt
	io.Closer

	Size() int64
}
