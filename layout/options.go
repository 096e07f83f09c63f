package layout

import (
	"github.com/hexbee-net/colfile/format"
	"github.com/hexbee-net/colfile/schema"
	"github.com/hexbee-net/colfile/types"
)

// EncodingMode selects how page values are encoded.
type EncodingMode int

const (
	// EncodingAuto picks dictionary encoding for pages with few distinct
	// values and the fallback encoding otherwise.
	EncodingAuto EncodingMode = iota
	// EncodingPlain always uses the plain encoding.
	EncodingPlain
	// EncodingDictionary always uses dictionary encoding.
	EncodingDictionary
)

const (
	DefaultPageRows            = 8192
	DefaultPageBytes           = 1 << 20
	DefaultDictionaryThreshold = 0.5
)

// Options drives the page layout of column chunks.
type Options struct {
	Codec     format.CompressionCodec
	PageRows  int
	PageBytes int
	Mode      EncodingMode
	// IntegerDelta makes integer and timestamp columns fall back to the
	// delta binary packed encoding instead of plain.
	IntegerDelta bool
	// DictionaryThreshold is the distinct to total values ratio under which
	// a page is dictionary encoded.
	DictionaryThreshold float64
}

// DefaultOptions returns uncompressed pages with the automatic encoding.
func DefaultOptions() Options {
	return Options{
		Codec:               format.CompressionCodec_UNCOMPRESSED,
		PageRows:            DefaultPageRows,
		PageBytes:           DefaultPageBytes,
		Mode:                EncodingAuto,
		DictionaryThreshold: DefaultDictionaryThreshold,
	}
}

func (o Options) fallbackEncoding(col *schema.Column) format.Encoding {
	switch {
	case col.Type() == format.Type_BOOLEAN:
		return format.Encoding_RLE
	case col.IsInteger() && o.IntegerDelta:
		return format.Encoding_DELTA_BINARY_PACKED
	}

	return format.Encoding_PLAIN
}

// ChooseEncoding returns the encoding of a page holding the provided non
// null physical values.
func (o Options) ChooseEncoding(col *schema.Column, values []interface{}) (format.Encoding, error) {
	switch o.Mode {
	case EncodingPlain:
		return format.Encoding_PLAIN, nil
	case EncodingDictionary:
		return format.Encoding_RLE_DICTIONARY, nil
	}

	if len(values) == 0 {
		return o.fallbackEncoding(col), nil
	}

	distinct := make(map[interface{}]struct{})

	for _, v := range values {
		k, err := types.Key(v)
		if err != nil {
			return 0, err
		}

		distinct[k] = struct{}{}
	}

	if float64(len(distinct)) < o.DictionaryThreshold*float64(len(values)) {
		return format.Encoding_RLE_DICTIONARY, nil
	}

	return o.fallbackEncoding(col), nil
}
