package compression

import (
	"math"
	"sync"

	"github.com/hexbee-net/errors"
	"github.com/klauspost/compress/zstd"
)

// The zstd encoder and decoder are safe for concurrent EncodeAll/DecodeAll
// calls and expensive to build, one of each is shared.
var (
	zstdOnce    sync.Once
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
	zstdErr     error
)

func zstdCodecs() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		if zstdEncoder, zstdErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression)); zstdErr != nil {
			return
		}

		// Page sizes are int32 in the page header.
		zstdDecoder, zstdErr = zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(0),
			zstd.WithDecoderMaxMemory(math.MaxInt32))
	})

	return zstdEncoder, zstdDecoder, zstdErr
}

type ZStd struct {
}

func (c ZStd) CompressBlock(block []byte) ([]byte, error) {
	enc, _, err := zstdCodecs()
	if err != nil {
		return nil, err
	}

	return enc.EncodeAll(block, nil), nil
}

func (c ZStd) DecompressBlock(block []byte, size int) ([]byte, error) {
	_, dec, err := zstdCodecs()
	if err != nil {
		return nil, err
	}

	if len(block) > 0 {
		var h zstd.Header
		if err := h.Decode(block); err != nil {
			return nil, errors.Wrap(err, "failed to read ZSTD frame header")
		}

		if !h.Skippable && h.HasFCS && h.FrameContentSize != uint64(size) {
			return nil, errors.WithFields(
				errors.WithStack(errLengthMismatch),
				errors.Fields{
					"expected": size,
					"actual":   h.FrameContentSize,
				})
		}
	}

	ret, err := dec.DecodeAll(block, make([]byte, 0, initialCap(block, size)))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decompress ZSTD data")
	}

	return ret, nil
}
