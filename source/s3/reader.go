package s3

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/client"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/hexbee-net/errors"
)

const rangeHeader = "bytes=%d-%d"

// Reader reads byte ranges of an S3 object.
type Reader struct {
	file

	fileSize int64
}

// NewReader creates an S3 Reader.
func NewReader(ctx context.Context, bucket, key string, configProvider client.ConfigProvider, configs ...*aws.Config) (*Reader, error) {
	return NewReaderWithClient(ctx, s3.New(configProvider, configs...), bucket, key)
}

// NewReaderWithClient is the same as NewReader but allows passing your own S3 client.
func NewReaderWithClient(ctx context.Context, s3Client s3iface.S3API, bucket, key string) (*Reader, error) {
	reader := Reader{
		file: file{
			ctx:        ctx,
			client:     s3Client,
			BucketName: bucket,
			Key:        key,
		},
	}

	input := &s3.HeadObjectInput{
		Bucket: aws.String(reader.BucketName),
		Key:    aws.String(reader.Key),
	}

	headObject, err := reader.client.HeadObjectWithContext(reader.ctx, input)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch file description")
	}

	if headObject.ContentLength == nil {
		return nil, errors.WithFields(
			errors.WithStack(errUnknownSize),
			errors.Fields{
				"bucket": bucket,
				"key":    key,
			})
	}

	reader.fileSize = *headObject.ContentLength

	return &reader, nil
}

func (r *Reader) Size() int64 {
	return r.fileSize
}

// ReadAt fetches len(p) bytes at off with a ranged GetObject request.
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

	if len(p) == 0 {
		return 0, nil
	}

	end := off + int64(len(p))
	if end > r.fileSize {
		end = r.fileSize
	}

	out, err := r.client.GetObjectWithContext(r.ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.BucketName),
		Key:    aws.String(r.Key),
		Range:  aws.String(fmt.Sprintf(rangeHeader, off, end-1)),
	})
	if err != nil {
		return 0, errors.WithFields(
			errors.Wrap(err, "failed to fetch object range"),
			errors.Fields{
				"offset": off,
				"length": len(p),
			})
	}

	defer func() { _ = out.Body.Close() }()

	n, err := io.ReadFull(out.Body, p[:end-off])
	if err != nil {
		return n, errors.Wrap(err, "failed to read object range")
	}

	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}

func (r *Reader) Close() error {
	return nil
}
