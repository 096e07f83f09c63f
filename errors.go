package colfile

import "github.com/hexbee-net/colfile/format"

// Error conditions returned by readers and writers. Compare them with
// errors.Cause(err).
const (
	ErrCorruptPage         = format.ErrCorruptPage
	ErrSizeMismatch        = format.ErrSizeMismatch
	ErrCorruptFile         = format.ErrCorruptFile
	ErrUnknownColumn       = format.ErrUnknownColumn
	ErrRangeOutOfBounds    = format.ErrRangeOutOfBounds
	ErrClosedHandle        = format.ErrClosedHandle
	ErrUnsupportedEncoding = format.ErrUnsupportedEncoding
	ErrUnsupportedCodec    = format.ErrUnsupportedCodec
)
