package azblob

import (
	"context"
	"io"

	"github.com/Azure/azure-storage-blob-go/azblob"
	"github.com/hexbee-net/errors"
)

// Reader reads byte ranges of a block blob.
type Reader struct {
	blob

	fileSize int64
}

// NewReader creates an Azure Blob Reader.
func NewReader(ctx context.Context, rawURL string, credential azblob.Credential, options BlobOptions) (*Reader, error) {
	r := &Reader{
		blob: blob{
			ctx:        ctx,
			credential: credential,
		},
	}

	if err := r.blob.open(rawURL, options); err != nil {
		return nil, err
	}

	props, err := r.blockBlobURL.GetProperties(r.ctx, azblob.BlobAccessConditions{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get blob properties")
	}

	r.fileSize = props.ContentLength()

	return r, nil
}

func (r *Reader) Size() int64 {
	return r.fileSize
}

func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
	if r.blockBlobURL == nil {
		return 0, errors.WithStack(errURLNotOpened)
	}

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

	count := int64(len(p))
	if off+count > r.fileSize {
		count = r.fileSize - off
	}

	resp, err := r.blockBlobURL.Download(r.ctx, off, count, azblob.BlobAccessConditions{}, false)
	if err != nil {
		return 0, errors.WithFields(
			errors.Wrap(err, "failed to download blob range"),
			errors.Fields{
				"offset": off,
				"length": count,
			})
	}

	body := resp.Body(azblob.RetryReaderOptions{})
	defer func() { _ = body.Close() }()

	n, err := io.ReadFull(body, p[:count])
	if err != nil {
		return n, errors.Wrap(err, "failed to read data")
	}

	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}

func (r *Reader) Close() error {
	return nil
}
