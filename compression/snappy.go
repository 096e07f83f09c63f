package compression

import (
	"github.com/golang/snappy"
	"github.com/hexbee-net/errors"
)

type Snappy struct {
}

func (c Snappy) CompressBlock(block []byte) ([]byte, error) {
	return snappy.Encode(nil, block), nil
}

func (c Snappy) DecompressBlock(block []byte, size int) ([]byte, error) {
	n, err := snappy.DecodedLen(block)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decompress Snappy data")
	}

	if n != size {
		return nil, errors.WithFields(
			errors.WithStack(errLengthMismatch),
			errors.Fields{
				"expected": size,
				"actual":   n,
			})
	}

	ret, err := snappy.Decode(make([]byte, n), block)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decompress Snappy data")
	}

	return ret, nil
}
