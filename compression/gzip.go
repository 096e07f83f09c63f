package compression

import (
	"bytes"

	"github.com/hexbee-net/errors"
	"github.com/klauspost/compress/gzip"
)

type GZip struct {
}

func (c GZip) CompressBlock(block []byte) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := gzip.NewWriter(buf)

	if _, err := w.Write(block); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (c GZip) DecompressBlock(block []byte, size int) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(block))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open GZIP data")
	}

	ret, err := readLimited(r, block, size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decompress GZIP data")
	}

	return ret, r.Close()
}
