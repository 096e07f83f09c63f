// Package encoding implements the integer level encodings shared by the value
// encoders: bit-packing, the RLE/bit-packing hybrid and delta binary packing.
package encoding

import (
	"github.com/hexbee-net/errors"
)

const (
	errNilWriter             = errors.Error("writer is nil")
	errNilReader             = errors.Error("reader is nil")
	errInvalidBlockSize      = errors.Error("invalid block size")
	errInvalidMiniblockCount = errors.Error("invalid mini block count")
	errInvalidBitWidth       = errors.Error("invalid bit-width")
	errOutOfRange            = errors.Error("out of range")
	errEmptyRun              = errors.Error("empty run")
	errValueTooLarge         = errors.Error("value does not fit in bit-width")
	errInvalidValueCount     = errors.Error("invalid value count")
)

// MaxBitWidth32 is the largest bit-width the 32 bits packers accept.
const MaxBitWidth32 = 32

// MaxBitWidth64 is the largest bit-width the 64 bits packers accept.
const MaxBitWidth64 = 64

// decodeBatchSize bounds the first allocation made for a decoded run of
// values whose count is read from untrusted input.
const decodeBatchSize = 4096
