package gcs

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"github.com/hexbee-net/errors"
	"google.golang.org/api/option"
)

// Reader reads byte ranges of a GCS object.
type Reader struct {
	file

	fileSize int64
}

// NewReader creates a GCS Reader. The options configure the client, for
// instance its credentials or endpoint.
func NewReader(ctx context.Context, bucketName, name string, opts ...option.ClientOption) (*Reader, error) {
	client, err := newClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	reader := &Reader{file: newFile(ctx, client, false, bucketName, name)}

	if err := reader.open(ctx); err != nil {
		_ = reader.Close()

		return nil, err
	}

	return reader, nil
}

// NewReaderWithClient is the same as NewReader but allows passing your own GCS client.
func NewReaderWithClient(ctx context.Context, client *storage.Client, bucketName, name string) (*Reader, error) {
	reader := &Reader{file: newFile(ctx, client, true, bucketName, name)}

	if err := reader.open(ctx); err != nil {
		return nil, err
	}

	return reader, nil
}

func (r *Reader) Size() int64 {
	return r.fileSize
}

func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.WithFields(
			errors.WithStack(errInvalidOffset),
			errors.Fields{
				"offset": off,
			})
	}

	if off >= r.fileSize {
		return 0, io.EOF
	}

	length := int64(len(p))
	if off+length > r.fileSize {
		length = r.fileSize - off
	}

	reader, err := r.Object.NewRangeReader(r.ctx, off, length)
	if err != nil {
		return 0, errors.WithFields(
			errors.Wrap(err, "failed to open object range"),
			errors.Fields{
				"offset": off,
				"length": length,
			})
	}

	defer func() { _ = reader.Close() }()

	n, err := io.ReadFull(reader, p[:length])
	if err != nil {
		return n, errors.Wrap(err, "failed to read file data")
	}

	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}

func (r *Reader) open(ctx context.Context) error {
	objAttrs, err := r.Object.Attrs(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get object attributes")
	}

	r.fileSize = objAttrs.Size

	return nil
}
