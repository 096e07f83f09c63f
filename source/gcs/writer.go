package gcs

import (
	"context"

	"cloud.google.com/go/storage"
	"github.com/hexbee-net/errors"
	"google.golang.org/api/option"
)

// Writer uploads a GCS object. The object is committed on Close.
type Writer struct {
	file

	fileWriter *storage.Writer
}

// NewWriter creates an GCS Writer.
func NewWriter(ctx context.Context, bucketName, name string, opts ...option.ClientOption) (*Writer, error) {
	client, err := newClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return newWriter(ctx, client, false, bucketName, name), nil
}

// NewWriterWithClient is the same as NewWriter but allows passing your own GCS client.
func NewWriterWithClient(ctx context.Context, client *storage.Client, bucketName, name string) (*Writer, error) {
	return newWriter(ctx, client, true, bucketName, name), nil
}

func newWriter(ctx context.Context, client *storage.Client, external bool, bucketName, name string) *Writer {
	w := &Writer{file: newFile(ctx, client, external, bucketName, name)}
	w.fileWriter = w.Object.NewWriter(ctx)
	w.fileWriter.ContentType = "application/octet-stream"

	return w
}

func (w *Writer) Write(p []byte) (n int, err error) {
	return w.fileWriter.Write(p)
}

func (w *Writer) Close() error {
	if w.fileWriter != nil {
		if err := w.fileWriter.Close(); err != nil {
			return errors.Wrap(err, "failed to close GCS writer")
		}
	}

	return w.file.Close()
}
