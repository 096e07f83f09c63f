// Package local reads and writes files on the local file system.
package local

import (
	"os"

	"github.com/hexbee-net/errors"
)

type File struct {
	FilePath string

	file *os.File
	size int64
}

// NewReader opens a local file for reading.
func NewReader(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open source file")
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()

		return nil, errors.WithFields(
			errors.Wrap(err, "failed to stat source file"),
			errors.Fields{
				"path": path,
			})
	}

	return &File{
		FilePath: path,
		file:     f,
		size:     info.Size(),
	}, nil
}

// NewWriter creates or truncates a local file for writing.
func NewWriter(path string) (*File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create target file")
	}

	return &File{
		FilePath: path,
		file:     f,
	}, nil
}

// Reader //////////////////////////////

func (f *File) ReadAt(p []byte, off int64) (int, error) {
	return f.file.ReadAt(p, off)
}

func (f *File) Size() int64 {
	return f.size
}

// Writer //////////////////////////////

func (f *File) Write(p []byte) (n int, err error) {
	n, err = f.file.Write(p)
	f.size += int64(n)

	return n, err
}

func (f *File) Close() error {
	return f.file.Close()
}
