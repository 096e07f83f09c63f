package format

import "github.com/hexbee-net/errors"

// Error conditions surfaced by the engine. Callers compare them against
// errors.Cause(err).
const (
	// ErrCorruptPage means a page payload length or decoded count disagrees with its header.
	ErrCorruptPage = errors.Error("corrupt page")
	// ErrSizeMismatch means a decompressed block does not have the declared length.
	ErrSizeMismatch = errors.Error("decompressed size mismatch")
	// ErrCorruptFile means the footer failed structural validation or the magic marker is wrong.
	ErrCorruptFile = errors.Error("corrupt file")
	// ErrUnknownColumn means a requested column is not part of the schema.
	ErrUnknownColumn = errors.Error("unknown column")
	// ErrRangeOutOfBounds means a requested row range is outside of the file rows.
	ErrRangeOutOfBounds = errors.Error("row range out of bounds")
	// ErrClosedHandle means the writer was finalized or the reader released.
	ErrClosedHandle = errors.Error("handle is closed")
	// ErrUnsupportedEncoding means the file declares an encoding this package does not know.
	ErrUnsupportedEncoding = errors.Error("unsupported encoding")
	// ErrUnsupportedCodec means the file declares a compression codec this package does not know.
	ErrUnsupportedCodec = errors.Error("unsupported compression codec")
)
