package format

import "fmt"

const (
	Magic         = "CLF1"
	MagicLen      = len(Magic)
	FooterLenSize = 4

	// Version is the current footer layout version.
	Version int32 = 1
)

// Type is the physical storage type of a column.
type Type int32

const (
	Type_BOOLEAN    Type = 0
	Type_INT32      Type = 1
	Type_INT64      Type = 2
	Type_FLOAT      Type = 4
	Type_DOUBLE     Type = 5
	Type_BYTE_ARRAY Type = 6
)

func (t Type) String() string {
	switch t {
	case Type_BOOLEAN:
		return "BOOLEAN"
	case Type_INT32:
		return "INT32"
	case Type_INT64:
		return "INT64"
	case Type_FLOAT:
		return "FLOAT"
	case Type_DOUBLE:
		return "DOUBLE"
	case Type_BYTE_ARRAY:
		return "BYTE_ARRAY"
	}

	return fmt.Sprintf("Type(%d)", int32(t))
}

// IsValid returns true for the physical types known by this package.
func (t Type) IsValid() bool {
	switch t {
	case Type_BOOLEAN, Type_INT32, Type_INT64, Type_FLOAT, Type_DOUBLE, Type_BYTE_ARRAY:
		return true
	}

	return false
}

// LogicalType is the user facing type of a column.
type LogicalType int32

const (
	LogicalType_BOOLEAN   LogicalType = 0
	LogicalType_INT8      LogicalType = 1
	LogicalType_INT16     LogicalType = 2
	LogicalType_INT32     LogicalType = 3
	LogicalType_INT64     LogicalType = 4
	LogicalType_FLOAT32   LogicalType = 5
	LogicalType_FLOAT64   LogicalType = 6
	LogicalType_STRING    LogicalType = 7
	LogicalType_TIMESTAMP LogicalType = 8
)

func (t LogicalType) String() string {
	switch t {
	case LogicalType_BOOLEAN:
		return "BOOLEAN"
	case LogicalType_INT8:
		return "INT8"
	case LogicalType_INT16:
		return "INT16"
	case LogicalType_INT32:
		return "INT32"
	case LogicalType_INT64:
		return "INT64"
	case LogicalType_FLOAT32:
		return "FLOAT32"
	case LogicalType_FLOAT64:
		return "FLOAT64"
	case LogicalType_STRING:
		return "STRING"
	case LogicalType_TIMESTAMP:
		return "TIMESTAMP"
	}

	return fmt.Sprintf("LogicalType(%d)", int32(t))
}

// TimeUnit is the precision of a timestamp column.
type TimeUnit int32

const (
	TimeUnit_MILLIS TimeUnit = 0
	TimeUnit_MICROS TimeUnit = 1
	TimeUnit_NANOS  TimeUnit = 2
)

func (u TimeUnit) String() string {
	switch u {
	case TimeUnit_MILLIS:
		return "MILLIS"
	case TimeUnit_MICROS:
		return "MICROS"
	case TimeUnit_NANOS:
		return "NANOS"
	}

	return fmt.Sprintf("TimeUnit(%d)", int32(u))
}

// Encoding identifies how the values of a page are encoded.
type Encoding int32

const (
	Encoding_PLAIN               Encoding = 0
	Encoding_RLE                 Encoding = 3
	Encoding_DELTA_BINARY_PACKED Encoding = 5
	Encoding_RLE_DICTIONARY      Encoding = 8
)

func (e Encoding) String() string {
	switch e {
	case Encoding_PLAIN:
		return "PLAIN"
	case Encoding_RLE:
		return "RLE"
	case Encoding_DELTA_BINARY_PACKED:
		return "DELTA_BINARY_PACKED"
	case Encoding_RLE_DICTIONARY:
		return "RLE_DICTIONARY"
	}

	return fmt.Sprintf("Encoding(%d)", int32(e))
}

// CompressionCodec identifies the block compressor applied to a page.
type CompressionCodec int32

const (
	CompressionCodec_UNCOMPRESSED CompressionCodec = 0
	CompressionCodec_SNAPPY       CompressionCodec = 1
	CompressionCodec_GZIP         CompressionCodec = 2
	CompressionCodec_BROTLI       CompressionCodec = 4
	CompressionCodec_LZ4          CompressionCodec = 5
	CompressionCodec_ZSTD         CompressionCodec = 6
)

func (c CompressionCodec) String() string {
	switch c {
	case CompressionCodec_UNCOMPRESSED:
		return "UNCOMPRESSED"
	case CompressionCodec_SNAPPY:
		return "SNAPPY"
	case CompressionCodec_GZIP:
		return "GZIP"
	case CompressionCodec_BROTLI:
		return "BROTLI"
	case CompressionCodec_LZ4:
		return "LZ4"
	case CompressionCodec_ZSTD:
		return "ZSTD"
	}

	return fmt.Sprintf("CompressionCodec(%d)", int32(c))
}

// PageType identifies the kind of page that follows a page header.
type PageType int32

const (
	PageType_DATA_PAGE PageType = 0
)

func (t PageType) String() string {
	if t == PageType_DATA_PAGE {
		return "DATA_PAGE"
	}

	return fmt.Sprintf("PageType(%d)", int32(t))
}
