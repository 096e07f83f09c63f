package main

import (
	"context"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/hexbee-net/colfile/source"
	"github.com/hexbee-net/colfile/source/azblob"
	"github.com/hexbee-net/colfile/source/gcs"
	"github.com/hexbee-net/colfile/source/hdfs"
	httpsource "github.com/hexbee-net/colfile/source/http"
	"github.com/hexbee-net/colfile/source/local"
	s3source "github.com/hexbee-net/colfile/source/s3"
	"github.com/hexbee-net/errors"
)

const errUnsupportedScheme = errors.Error("unsupported storage scheme")

const azblobScheme = "azblob+"

// location is a parsed storage URI. Paths without a scheme are local files.
type location struct {
	raw    string
	scheme string
	host   string
	path   string
	user   string
}

func parseLocation(raw string) (*location, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Windows drive letters parse as a one letter scheme.
		return &location{raw: raw, scheme: "file", path: raw}, nil
	}

	loc := &location{
		raw:    raw,
		scheme: strings.ToLower(u.Scheme),
		host:   u.Host,
		path:   u.Path,
	}

	if u.User != nil {
		loc.user = u.User.Username()
	}

	if loc.scheme == "file" && u.Opaque != "" {
		loc.path = u.Opaque
	}

	return loc, nil
}

// key returns the object name within its bucket.
func (l *location) key() string {
	return strings.TrimPrefix(l.path, "/")
}

func (l *location) hdfsUser() string {
	if l.user != "" {
		return l.user
	}

	return os.Getenv("HADOOP_USER_NAME")
}

func (l *location) unsupported() error {
	return errors.WithFields(
		errors.WithStack(errUnsupportedScheme),
		errors.Fields{
			"uri":    l.raw,
			"scheme": l.scheme,
		})
}

// openSource opens the file at uri for reading.
func openSource(ctx context.Context, uri string) (source.Reader, error) {
	loc, err := parseLocation(uri)
	if err != nil {
		return nil, err
	}

	switch loc.scheme {
	case "file":
		return local.NewReader(loc.path)

	case "s3":
		sess, err := session.NewSession()
		if err != nil {
			return nil, errors.Wrap(err, "failed to create AWS session")
		}

		return s3source.NewReader(ctx, loc.host, loc.key(), sess)

	case "gs":
		return gcs.NewReader(ctx, loc.host, loc.key())

	case "hdfs":
		return hdfs.NewReader([]string{loc.host}, loc.hdfsUser(), loc.path)

	case "http", "https":
		return httpsource.NewReader(ctx, uri)
	}

	if strings.HasPrefix(loc.scheme, azblobScheme) {
		return azblob.NewReader(ctx, strings.TrimPrefix(uri, azblobScheme), nil, azblob.BlobOptions{})
	}

	return nil, loc.unsupported()
}

// createSink creates the file at uri for writing.
func createSink(ctx context.Context, uri string) (source.Writer, error) {
	loc, err := parseLocation(uri)
	if err != nil {
		return nil, err
	}

	switch loc.scheme {
	case "file":
		return local.NewWriter(loc.path)

	case "s3":
		sess, err := session.NewSession()
		if err != nil {
			return nil, errors.Wrap(err, "failed to create AWS session")
		}

		return s3source.NewWriter(ctx, loc.host, loc.key(), nil, sess)

	case "gs":
		return gcs.NewWriter(ctx, loc.host, loc.key())

	case "hdfs":
		return hdfs.NewWriter([]string{loc.host}, loc.hdfsUser(), loc.path)
	}

	if strings.HasPrefix(loc.scheme, azblobScheme) {
		return azblob.NewWriter(ctx, strings.TrimPrefix(uri, azblobScheme), nil, azblob.BlobOptions{})
	}

	return nil, loc.unsupported()
}
