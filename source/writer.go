package source

import "io"

// Writer receives a file sequentially. Close flushes and commits the file.
type Writer interface {
	io.Writer
	io.Closer
}
