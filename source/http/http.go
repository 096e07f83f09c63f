// Package http reads files served over HTTP with range requests, and files
// uploaded to an HTTP server as multipart forms.
package http

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/UltimateTournament/backoff/v4"
	"github.com/hexbee-net/errors"
)

const (
	errUnknownSize   = errors.Error("remote file size is unknown")
	errStatus        = errors.Error("unexpected HTTP status")
	errInvalidOffset = errors.Error("invalid offset")

	rangeHeader = "bytes=%d-%d"
)

// Reader reads a remote file with HTTP range requests. Failed requests are
// retried with an exponential backoff, client errors are not retried.
type Reader struct {
	ctx     context.Context
	client  *http.Client
	url     string
	header  http.Header
	size    int64
	maxWait time.Duration
}

type Option func(r *Reader)

// WithClient sets the HTTP client used for the requests.
func WithClient(client *http.Client) Option {
	return func(r *Reader) {
		r.client = client
	}
}

// WithHeader adds a header to every request, for instance an authorization.
func WithHeader(key, value string) Option {
	return func(r *Reader) {
		r.header.Add(key, value)
	}
}

// WithMaxRetryTime bounds the time spent retrying a request.
func WithMaxRetryTime(d time.Duration) Option {
	return func(r *Reader) {
		r.maxWait = d
	}
}

// NewReader creates an HTTP Reader. The file size is fetched with a HEAD
// request.
func NewReader(ctx context.Context, url string, options ...Option) (*Reader, error) {
	r := &Reader{
		ctx:     ctx,
		client:  http.DefaultClient,
		url:     url,
		header:  http.Header{},
		maxWait: 30 * time.Second,
	}

	for _, opt := range options {
		opt(r)
	}

	var resp *http.Response

	err := r.retry(func() (err error) {
		resp, err = r.do(http.MethodHead, "")
		if err != nil {
			return err
		}

		_ = resp.Body.Close()

		return checkStatus(resp, http.StatusOK)
	})
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, "failed to fetch file description"),
			errors.Fields{
				"url": url,
			})
	}

	if resp.ContentLength < 0 {
		return nil, errors.WithFields(
			errors.WithStack(errUnknownSize),
			errors.Fields{
				"url": url,
			})
	}

	r.size = resp.ContentLength

	return r, nil
}

func (r *Reader) Size() int64 {
	return r.size
}

func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.WithFields(
			errors.WithStack(errInvalidOffset),
			errors.Fields{
				"offset": off,
			})
	}

	if off >= r.size {
		return 0, io.EOF
	}

	length := int64(len(p))
	if off+length > r.size {
		length = r.size - off
	}

	n := 0

	err := r.retry(func() error {
		resp, err := r.do(http.MethodGet, fmt.Sprintf(rangeHeader, off, off+length-1))
		if err != nil {
			return err
		}

		defer func() { _ = resp.Body.Close() }()

		if err := checkStatus(resp, http.StatusPartialContent); err != nil {
			return err
		}

		n, err = io.ReadFull(resp.Body, p[:length])

		return err
	})
	if err != nil {
		return n, errors.WithFields(
			errors.Wrap(err, "failed to read remote range"),
			errors.Fields{
				"url":    r.url,
				"offset": off,
				"length": length,
			})
	}

	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}

func (r *Reader) Close() error {
	return nil
}

func (r *Reader) do(method, byteRange string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(r.ctx, method, r.url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	for k, v := range r.header {
		req.Header[k] = v
	}

	if byteRange != "" {
		req.Header.Set("Range", byteRange)
	}

	return r.client.Do(req)
}

func (r *Reader) retry(op backoff.Operation) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = r.maxWait

	return backoff.Retry(op, backoff.WithContext(b, r.ctx))
}

// checkStatus accepts the expected status. Server errors are retried,
// anything else is permanent.
func checkStatus(resp *http.Response, expected int) error {
	if resp.StatusCode == expected {
		return nil
	}

	err := errors.WithFields(
		errors.WithStack(errStatus),
		errors.Fields{
			"expected": expected,
			"status":   strconv.Itoa(resp.StatusCode),
		})

	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return err
	}

	return backoff.Permanent(err)
}

// MultipartReader reads a file uploaded in a multipart form.
type MultipartReader struct {
	fileHeader *multipart.FileHeader
	file       multipart.File
}

func NewMultipartReader(header *multipart.FileHeader) (*MultipartReader, error) {
	file, err := header.Open()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open HTTP stream")
	}

	return &MultipartReader{
		fileHeader: header,
		file:       file,
	}, nil
}

func (r *MultipartReader) ReadAt(p []byte, off int64) (int, error) {
	return r.file.ReadAt(p, off)
}

func (r *MultipartReader) Size() int64 {
	return r.fileHeader.Size
}

func (r *MultipartReader) Close() error {
	return r.file.Close()
}
