// Package compression holds the block compressors applied to encoded pages.
package compression

import (
	"strings"

	"github.com/hexbee-net/colfile/format"
	"github.com/hexbee-net/errors"
)

// errLengthMismatch is returned by a compressor that can tell the output
// length from the compressed block before inflating it.
const errLengthMismatch = errors.Error("decompressed length mismatch")

type BlockCompressor interface {
	CompressBlock(block []byte) ([]byte, error)
	// DecompressBlock inflates block. size is the expected output length, an
	// implementation never produces more than size+1 bytes.
	DecompressBlock(block []byte, size int) ([]byte, error)
}

var compressors = map[format.CompressionCodec]BlockCompressor{
	format.CompressionCodec_UNCOMPRESSED: Uncompressed{},
	format.CompressionCodec_SNAPPY:       Snappy{},
	format.CompressionCodec_GZIP:         GZip{},
	format.CompressionCodec_BROTLI:       Brotli{},
	format.CompressionCodec_LZ4:          LZ4{},
	format.CompressionCodec_ZSTD:         ZStd{},
}

var codecNames = map[string]format.CompressionCodec{
	"none":         format.CompressionCodec_UNCOMPRESSED,
	"uncompressed": format.CompressionCodec_UNCOMPRESSED,
	"snappy":       format.CompressionCodec_SNAPPY,
	"gzip":         format.CompressionCodec_GZIP,
	"brotli":       format.CompressionCodec_BROTLI,
	"lz4":          format.CompressionCodec_LZ4,
	"zstd":         format.CompressionCodec_ZSTD,
}

// ParseCodec returns the codec for a configuration name such as "snappy".
func ParseCodec(name string) (format.CompressionCodec, error) {
	codec, ok := codecNames[strings.ToLower(name)]
	if !ok {
		return 0, errors.WithFields(
			errors.WithStack(format.ErrUnsupportedCodec),
			errors.Fields{
				"codec": name,
			})
	}

	return codec, nil
}

func getCompressor(codec format.CompressionCodec) (BlockCompressor, error) {
	c, ok := compressors[codec]
	if !ok {
		return nil, errors.WithFields(
			errors.WithStack(format.ErrUnsupportedCodec),
			errors.Fields{
				"codec": int32(codec),
			})
	}

	return c, nil
}

// Compress compresses an encoded page payload.
func Compress(codec format.CompressionCodec, block []byte) ([]byte, error) {
	c, err := getCompressor(codec)
	if err != nil {
		return nil, err
	}

	ret, err := c.CompressBlock(block)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, "failed to compress block"),
			errors.Fields{
				"codec": codec.String(),
			})
	}

	return ret, nil
}

// Decompress inflates block and checks the result is exactly size bytes long.
func Decompress(codec format.CompressionCodec, block []byte, size int) ([]byte, error) {
	c, err := getCompressor(codec)
	if err != nil {
		return nil, err
	}

	if size < 0 {
		return nil, errors.WithFields(
			errors.WithStack(format.ErrSizeMismatch),
			errors.Fields{
				"expected": size,
			})
	}

	ret, err := c.DecompressBlock(block, size)
	if err != nil {
		cause := format.ErrCorruptPage
		if errors.Cause(err) == errLengthMismatch {
			cause = format.ErrSizeMismatch
		}

		return nil, errors.WithFields(
			errors.WithStack(cause),
			errors.Fields{
				"codec":  codec.String(),
				"reason": err.Error(),
			})
	}

	if len(ret) != size {
		return nil, errors.WithFields(
			errors.WithStack(format.ErrSizeMismatch),
			errors.Fields{
				"codec":    codec.String(),
				"expected": size,
				"actual":   len(ret),
			})
	}

	return ret, nil
}
