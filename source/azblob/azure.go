// Package azblob reads and writes files stored in Azure Blob Storage.
package azblob

import (
	"context"
	"net/url"

	"github.com/Azure/azure-pipeline-go/pipeline"
	"github.com/Azure/azure-storage-blob-go/azblob"
	"github.com/hexbee-net/errors"
)

const (
	errInvalidOffset = errors.Error("invalid offset")
	errURLNotOpened  = errors.Error("url not opened")
)

type blob struct {
	ctx          context.Context
	URL          *url.URL
	credential   azblob.Credential
	blockBlobURL *azblob.BlockBlobURL
}

// BlobOptions configures the HTTP pipeline used to reach the blob.
type BlobOptions struct {
	// HTTPSender configures the sender of HTTP requests.
	HTTPSender pipeline.Factory
	// RetryOptions configures the built-in retry policy behavior.
	RetryOptions azblob.RetryOptions
	// Log configures the pipeline's logging infrastructure indicating what information is logged and where.
	Log pipeline.LogOptions
	// Parallelism limits the number of buffers used to upload blob content (0 = default).
	Parallelism int
}

func (b *blob) open(rawURL string, options BlobOptions) (err error) {
	if b.URL, err = url.Parse(rawURL); err != nil {
		return errors.Wrap(err, "failed to parse URL")
	}

	if b.credential == nil {
		b.credential = azblob.NewAnonymousCredential()
	}

	blobURL := azblob.NewBlockBlobURL(*b.URL, azblob.NewPipeline(b.credential, azblob.PipelineOptions{
		HTTPSender: options.HTTPSender,
		Retry:      options.RetryOptions,
		Log:        options.Log,
	}))

	b.blockBlobURL = &blobURL

	return nil
}
