package azblob

import (
	"context"
	"io"

	"github.com/Azure/azure-storage-blob-go/azblob"
	"github.com/hexbee-net/errors"
)

// Writer streams a file to a block blob.
type Writer struct {
	blob

	writeDone  chan error
	pipeReader *io.PipeReader
	pipeWriter *io.PipeWriter
}

// NewWriter creates an Azure Blob Writer. The blob is committed on Close.
func NewWriter(ctx context.Context, rawURL string, credential azblob.Credential, options BlobOptions) (*Writer, error) {
	w := &Writer{
		blob: blob{
			ctx:        ctx,
			credential: credential,
		},
		writeDone: make(chan error, 1),
	}

	if err := w.blob.open(rawURL, options); err != nil {
		return nil, err
	}

	w.pipeReader, w.pipeWriter = io.Pipe()

	go func(blobURL azblob.BlockBlobURL, reader *io.PipeReader, done chan<- error) {
		defer close(done)

		_, err := azblob.UploadStreamToBlockBlob(w.ctx, reader, blobURL, azblob.UploadStreamToBlockBlobOptions{
			MaxBuffers: options.Parallelism,
		})
		if err != nil {
			_ = reader.CloseWithError(err)
		}

		done <- err
	}(*w.blockBlobURL, w.pipeReader, w.writeDone)

	return w, nil
}

func (w *Writer) Write(p []byte) (int, error) {
	if w.blockBlobURL == nil {
		return 0, errors.WithStack(errURLNotOpened)
	}

	n, err := w.pipeWriter.Write(p)
	if err != nil {
		_ = w.pipeWriter.CloseWithError(err)

		return n, errors.Wrap(err, "failed to upload blob data")
	}

	return n, nil
}

func (w *Writer) Close() error {
	if w.pipeWriter == nil {
		return nil
	}

	if err := w.pipeWriter.Close(); err != nil {
		return errors.Wrap(err, "failed to close pipe writer")
	}

	if err := <-w.writeDone; err != nil {
		return errors.Wrap(err, "failed to upload blob")
	}

	return nil
}
