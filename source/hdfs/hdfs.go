// Package hdfs reads and writes files stored in HDFS.
package hdfs

import (
	"github.com/colinmarc/hdfs/v2"
	"github.com/hexbee-net/errors"
)

type file struct {
	Hosts    []string
	User     string
	FilePath string

	client         *hdfs.Client
	externalClient bool
}

func newClient(hosts []string, user string) (*hdfs.Client, error) {
	client, err := hdfs.NewClient(hdfs.ClientOptions{
		Addresses: hosts,
		User:      user,
	})
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, "failed to create HDFS client"),
			errors.Fields{
				"hosts": hosts,
				"user":  user,
			})
	}

	return client, nil
}

func (f *file) Close() error {
	if f.client != nil && !f.externalClient {
		err := f.client.Close()
		f.client = nil

		if err != nil {
			return errors.Wrap(err, "failed to close HDFS client")
		}
	}

	return nil
}
