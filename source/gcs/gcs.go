// Package gcs reads and writes files stored in Google Cloud Storage.
package gcs

import (
	"context"

	"cloud.google.com/go/storage"
	"github.com/hexbee-net/errors"
	"google.golang.org/api/option"
)

const (
	errInstantiate   = errors.Error("failed to instantiate GCS client")
	errInvalidOffset = errors.Error("invalid offset")
)

type file struct {
	BucketName string
	FilePath   string

	ctx            context.Context
	externalClient bool
	Client         *storage.Client
	Object         *storage.ObjectHandle
}

func newFile(ctx context.Context, client *storage.Client, external bool, bucketName, name string) file {
	return file{
		BucketName:     bucketName,
		FilePath:       name,
		ctx:            ctx,
		externalClient: external,
		Client:         client,
		Object:         client.Bucket(bucketName).Object(name),
	}
}

func newClient(ctx context.Context, opts ...option.ClientOption) (*storage.Client, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(errInstantiate, err.Error())
	}

	return client, nil
}

func (f *file) Close() error {
	if f.Client != nil && !f.externalClient {
		err := f.Client.Close()
		f.Client = nil

		if err != nil {
			return errors.Wrap(err, "failed to close GCS client")
		}
	}

	return nil
}
