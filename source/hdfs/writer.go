package hdfs

import (
	"github.com/colinmarc/hdfs/v2"
	"github.com/hexbee-net/errors"
)

type Writer struct {
	file

	writer *hdfs.FileWriter
}

func NewWriter(hosts []string, user string, name string) (*Writer, error) {
	client, err := newClient(hosts, user)
	if err != nil {
		return nil, err
	}

	w, err := newWriter(client, false, hosts, user, name)
	if err != nil {
		_ = client.Close()

		return nil, err
	}

	return w, nil
}

func NewWriterWithClient(client *hdfs.Client, hosts []string, user string, name string) (*Writer, error) {
	return newWriter(client, true, hosts, user, name)
}

func newWriter(client *hdfs.Client, external bool, hosts []string, user string, name string) (*Writer, error) {
	writer, err := client.Create(name)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, "failed to create HDFS writer"),
			errors.Fields{
				"path": name,
			})
	}

	return &Writer{
		file: file{
			Hosts:          hosts,
			User:           user,
			FilePath:       name,
			client:         client,
			externalClient: external,
		},
		writer: writer,
	}, nil
}

func (w *Writer) Write(p []byte) (n int, err error) {
	return w.writer.Write(p)
}

func (w *Writer) Close() (err error) {
	if w.writer != nil {
		err = w.writer.Close()
		w.writer = nil

		if err != nil {
			return errors.Wrap(err, "failed to close HDFS writer")
		}
	}

	return w.file.Close()
}
