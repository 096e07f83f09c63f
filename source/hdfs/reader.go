package hdfs

import (
	"sync"

	"github.com/colinmarc/hdfs/v2"
	"github.com/hexbee-net/errors"
)

type Reader struct {
	file

	mu     sync.Mutex
	reader *hdfs.FileReader
}

func NewReader(hosts []string, user string, name string) (*Reader, error) {
	client, err := newClient(hosts, user)
	if err != nil {
		return nil, err
	}

	r, err := newReader(client, false, hosts, user, name)
	if err != nil {
		_ = client.Close()

		return nil, err
	}

	return r, nil
}

func NewReaderWithClient(client *hdfs.Client, hosts []string, user string, name string) (*Reader, error) {
	return newReader(client, true, hosts, user, name)
}

func newReader(client *hdfs.Client, external bool, hosts []string, user string, name string) (*Reader, error) {
	reader, err := client.Open(name)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, "failed to create HDFS reader"),
			errors.Fields{
				"path": name,
			})
	}

	return &Reader{
		file: file{
			Hosts:          hosts,
			User:           user,
			FilePath:       name,
			client:         client,
			externalClient: external,
		},
		reader: reader,
	}, nil
}

// ReadAt serializes the reads on the underlying HDFS reader.
func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.reader.ReadAt(p, off)
}

func (r *Reader) Size() int64 {
	return r.reader.Stat().Size()
}

func (r *Reader) Close() (err error) {
	if r.reader != nil {
		err = r.reader.Close()
		r.reader = nil

		if err != nil {
			return errors.Wrap(err, "failed to close HDFS reader")
		}
	}

	return r.file.Close()
}
