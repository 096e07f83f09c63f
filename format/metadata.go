package format

import (
	"context"

	"github.com/apache/thrift/lib/go/thrift"
)

// SchemaElement describes one column of the file schema.
type SchemaElement struct {
	Name        string
	Type        Type
	LogicalType LogicalType
	TimeUnit    TimeUnit
	Nullable    bool
}

func (s *SchemaElement) Write(ctx context.Context, p thrift.TProtocol) error {
	w := newStructWriter(ctx, p, "SchemaElement")
	w.string("name", 1, s.Name)
	w.i32("type", 2, int32(s.Type))
	w.i32("logical_type", 3, int32(s.LogicalType))
	w.i32("time_unit", 4, int32(s.TimeUnit))
	w.bool("nullable", 5, s.Nullable)

	return w.end()
}

func (s *SchemaElement) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, func(id int16, typ thrift.TType) (bool, error) {
		var (
			err error
			v   int32
		)

		switch {
		case id == 1 && typ == thrift.STRING:
			s.Name, err = p.ReadString(ctx)
		case id == 2 && typ == thrift.I32:
			v, err = p.ReadI32(ctx)
			s.Type = Type(v)
		case id == 3 && typ == thrift.I32:
			v, err = p.ReadI32(ctx)
			s.LogicalType = LogicalType(v)
		case id == 4 && typ == thrift.I32:
			v, err = p.ReadI32(ctx)
			s.TimeUnit = TimeUnit(v)
		case id == 5 && typ == thrift.BOOL:
			s.Nullable, err = p.ReadBool(ctx)
		default:
			return false, nil
		}

		return true, err
	})
}

// Statistics holds the plain encoded bounds of a page or a column chunk.
// Max and Min are nil when every value is null.
type Statistics struct {
	Max           []byte
	Min           []byte
	NullCount     int64
	DistinctCount int64
}

// HasMinMax returns true when both bounds are set.
func (s *Statistics) HasMinMax() bool {
	return s != nil && s.Max != nil && s.Min != nil
}

func (s *Statistics) Write(ctx context.Context, p thrift.TProtocol) error {
	w := newStructWriter(ctx, p, "Statistics")
	if s.Max != nil {
		w.binary("max", 1, s.Max)
	}

	if s.Min != nil {
		w.binary("min", 2, s.Min)
	}

	w.i64("null_count", 3, s.NullCount)
	w.i64("distinct_count", 4, s.DistinctCount)

	return w.end()
}

func (s *Statistics) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, func(id int16, typ thrift.TType) (bool, error) {
		var err error

		switch {
		case id == 1 && typ == thrift.STRING:
			s.Max, err = p.ReadBinary(ctx)
		case id == 2 && typ == thrift.STRING:
			s.Min, err = p.ReadBinary(ctx)
		case id == 3 && typ == thrift.I64:
			s.NullCount, err = p.ReadI64(ctx)
		case id == 4 && typ == thrift.I64:
			s.DistinctCount, err = p.ReadI64(ctx)
		default:
			return false, nil
		}

		return true, err
	})
}

// PageLocation addresses one page of a column chunk.
type PageLocation struct {
	// Offset is the absolute position of the page header in the file.
	Offset int64
	// CompressedPageSize is the size of the page header and its payload.
	CompressedPageSize int32
	// FirstRowIndex is the index of the first row of the page, relative to
	// the row group.
	FirstRowIndex int64
	// NumRows is the number of rows held by the page.
	NumRows int32
}

func (l *PageLocation) Write(ctx context.Context, p thrift.TProtocol) error {
	w := newStructWriter(ctx, p, "PageLocation")
	w.i64("offset", 1, l.Offset)
	w.i32("compressed_page_size", 2, l.CompressedPageSize)
	w.i64("first_row_index", 3, l.FirstRowIndex)
	w.i32("num_rows", 4, l.NumRows)

	return w.end()
}

func (l *PageLocation) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, func(id int16, typ thrift.TType) (bool, error) {
		var err error

		switch {
		case id == 1 && typ == thrift.I64:
			l.Offset, err = p.ReadI64(ctx)
		case id == 2 && typ == thrift.I32:
			l.CompressedPageSize, err = p.ReadI32(ctx)
		case id == 3 && typ == thrift.I64:
			l.FirstRowIndex, err = p.ReadI64(ctx)
		case id == 4 && typ == thrift.I32:
			l.NumRows, err = p.ReadI32(ctx)
		default:
			return false, nil
		}

		return true, err
	})
}

// ColumnChunk describes the pages of one column within a row group.
type ColumnChunk struct {
	FileOffset            int64
	TotalCompressedSize   int64
	TotalUncompressedSize int64
	NumValues             int64
	Codec                 CompressionCodec
	Encodings             []Encoding
	Statistics            *Statistics
	Pages                 []*PageLocation
}

func (c *ColumnChunk) Write(ctx context.Context, p thrift.TProtocol) error {
	w := newStructWriter(ctx, p, "ColumnChunk")
	w.i64("file_offset", 1, c.FileOffset)
	w.i64("total_compressed_size", 2, c.TotalCompressedSize)
	w.i64("total_uncompressed_size", 3, c.TotalUncompressedSize)
	w.i64("num_values", 4, c.NumValues)
	w.i32("codec", 5, int32(c.Codec))
	w.list("encodings", 6, thrift.I32, len(c.Encodings), func(i int) error {
		return p.WriteI32(ctx, int32(c.Encodings[i]))
	})

	if c.Statistics != nil {
		w.structure("statistics", 7, c.Statistics)
	}

	w.list("pages", 8, thrift.STRUCT, len(c.Pages), func(i int) error {
		return c.Pages[i].Write(ctx, p)
	})

	return w.end()
}

func (c *ColumnChunk) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, func(id int16, typ thrift.TType) (bool, error) {
		var (
			err error
			v   int32
		)

		switch {
		case id == 1 && typ == thrift.I64:
			c.FileOffset, err = p.ReadI64(ctx)
		case id == 2 && typ == thrift.I64:
			c.TotalCompressedSize, err = p.ReadI64(ctx)
		case id == 3 && typ == thrift.I64:
			c.TotalUncompressedSize, err = p.ReadI64(ctx)
		case id == 4 && typ == thrift.I64:
			c.NumValues, err = p.ReadI64(ctx)
		case id == 5 && typ == thrift.I32:
			v, err = p.ReadI32(ctx)
			c.Codec = CompressionCodec(v)
		case id == 6 && typ == thrift.LIST:
			c.Encodings = nil
			err = readList(ctx, p, func() error {
				e, err := p.ReadI32(ctx)
				c.Encodings = append(c.Encodings, Encoding(e))

				return err
			})
		case id == 7 && typ == thrift.STRUCT:
			c.Statistics = &Statistics{}
			err = c.Statistics.Read(ctx, p)
		case id == 8 && typ == thrift.LIST:
			c.Pages = nil
			err = readList(ctx, p, func() error {
				l := &PageLocation{}
				c.Pages = append(c.Pages, l)

				return l.Read(ctx, p)
			})
		default:
			return false, nil
		}

		return true, err
	})
}

// RowGroup holds one column chunk per schema column, in schema order.
type RowGroup struct {
	Columns       []*ColumnChunk
	NumRows       int64
	TotalByteSize int64
	FileOffset    int64
}

func (r *RowGroup) Write(ctx context.Context, p thrift.TProtocol) error {
	w := newStructWriter(ctx, p, "RowGroup")
	w.list("columns", 1, thrift.STRUCT, len(r.Columns), func(i int) error {
		return r.Columns[i].Write(ctx, p)
	})
	w.i64("num_rows", 2, r.NumRows)
	w.i64("total_byte_size", 3, r.TotalByteSize)
	w.i64("file_offset", 4, r.FileOffset)

	return w.end()
}

func (r *RowGroup) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, func(id int16, typ thrift.TType) (bool, error) {
		var err error

		switch {
		case id == 1 && typ == thrift.LIST:
			r.Columns = nil
			err = readList(ctx, p, func() error {
				c := &ColumnChunk{}
				r.Columns = append(r.Columns, c)

				return c.Read(ctx, p)
			})
		case id == 2 && typ == thrift.I64:
			r.NumRows, err = p.ReadI64(ctx)
		case id == 3 && typ == thrift.I64:
			r.TotalByteSize, err = p.ReadI64(ctx)
		case id == 4 && typ == thrift.I64:
			r.FileOffset, err = p.ReadI64(ctx)
		default:
			return false, nil
		}

		return true, err
	})
}

type KeyValue struct {
	Key   string
	Value string
}

func (kv *KeyValue) Write(ctx context.Context, p thrift.TProtocol) error {
	w := newStructWriter(ctx, p, "KeyValue")
	w.string("key", 1, kv.Key)
	w.string("value", 2, kv.Value)

	return w.end()
}

func (kv *KeyValue) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, func(id int16, typ thrift.TType) (bool, error) {
		var err error

		switch {
		case id == 1 && typ == thrift.STRING:
			kv.Key, err = p.ReadString(ctx)
		case id == 2 && typ == thrift.STRING:
			kv.Value, err = p.ReadString(ctx)
		default:
			return false, nil
		}

		return true, err
	})
}

// FileMetaData is the footer of a file.
type FileMetaData struct {
	Version          int32
	Schema           []*SchemaElement
	NumRows          int64
	RowGroups        []*RowGroup
	KeyValueMetadata []*KeyValue
	CreatedBy        string
}

func (m *FileMetaData) Write(ctx context.Context, p thrift.TProtocol) error {
	w := newStructWriter(ctx, p, "FileMetaData")
	w.i32("version", 1, m.Version)
	w.list("schema", 2, thrift.STRUCT, len(m.Schema), func(i int) error {
		return m.Schema[i].Write(ctx, p)
	})
	w.i64("num_rows", 3, m.NumRows)
	w.list("row_groups", 4, thrift.STRUCT, len(m.RowGroups), func(i int) error {
		return m.RowGroups[i].Write(ctx, p)
	})
	w.list("key_value_metadata", 5, thrift.STRUCT, len(m.KeyValueMetadata), func(i int) error {
		return m.KeyValueMetadata[i].Write(ctx, p)
	})

	if m.CreatedBy != "" {
		w.string("created_by", 6, m.CreatedBy)
	}

	return w.end()
}

func (m *FileMetaData) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, func(id int16, typ thrift.TType) (bool, error) {
		var err error

		switch {
		case id == 1 && typ == thrift.I32:
			m.Version, err = p.ReadI32(ctx)
		case id == 2 && typ == thrift.LIST:
			m.Schema = nil
			err = readList(ctx, p, func() error {
				s := &SchemaElement{}
				m.Schema = append(m.Schema, s)

				return s.Read(ctx, p)
			})
		case id == 3 && typ == thrift.I64:
			m.NumRows, err = p.ReadI64(ctx)
		case id == 4 && typ == thrift.LIST:
			m.RowGroups = nil
			err = readList(ctx, p, func() error {
				r := &RowGroup{}
				m.RowGroups = append(m.RowGroups, r)

				return r.Read(ctx, p)
			})
		case id == 5 && typ == thrift.LIST:
			m.KeyValueMetadata = nil
			err = readList(ctx, p, func() error {
				kv := &KeyValue{}
				m.KeyValueMetadata = append(m.KeyValueMetadata, kv)

				return kv.Read(ctx, p)
			})
		case id == 6 && typ == thrift.STRING:
			m.CreatedBy, err = p.ReadString(ctx)
		default:
			return false, nil
		}

		return true, err
	})
}

// PageHeader precedes every page payload.
type PageHeader struct {
	Type                 PageType
	UncompressedPageSize int32
	CompressedPageSize   int32
	NumValues            int32
	NumNulls             int32
	Encoding             Encoding
	Codec                CompressionCodec
	Statistics           *Statistics
}

func (h *PageHeader) Write(ctx context.Context, p thrift.TProtocol) error {
	w := newStructWriter(ctx, p, "PageHeader")
	w.i32("type", 1, int32(h.Type))
	w.i32("uncompressed_page_size", 2, h.UncompressedPageSize)
	w.i32("compressed_page_size", 3, h.CompressedPageSize)
	w.i32("num_values", 4, h.NumValues)
	w.i32("num_nulls", 5, h.NumNulls)
	w.i32("encoding", 6, int32(h.Encoding))
	w.i32("codec", 7, int32(h.Codec))

	if h.Statistics != nil {
		w.structure("statistics", 8, h.Statistics)
	}

	return w.end()
}

func (h *PageHeader) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, func(id int16, typ thrift.TType) (bool, error) {
		var (
			err error
			v   int32
		)

		switch {
		case id == 1 && typ == thrift.I32:
			v, err = p.ReadI32(ctx)
			h.Type = PageType(v)
		case id == 2 && typ == thrift.I32:
			h.UncompressedPageSize, err = p.ReadI32(ctx)
		case id == 3 && typ == thrift.I32:
			h.CompressedPageSize, err = p.ReadI32(ctx)
		case id == 4 && typ == thrift.I32:
			h.NumValues, err = p.ReadI32(ctx)
		case id == 5 && typ == thrift.I32:
			h.NumNulls, err = p.ReadI32(ctx)
		case id == 6 && typ == thrift.I32:
			v, err = p.ReadI32(ctx)
			h.Encoding = Encoding(v)
		case id == 7 && typ == thrift.I32:
			v, err = p.ReadI32(ctx)
			h.Codec = CompressionCodec(v)
		case id == 8 && typ == thrift.STRUCT:
			h.Statistics = &Statistics{}
			err = h.Statistics.Read(ctx, p)
		default:
			return false, nil
		}

		return true, err
	})
}

// ReadPageHeader parses the header at the beginning of page and returns it
// along with the bytes that follow it.
func ReadPageHeader(page []byte) (*PageHeader, []byte, error) {
	h := &PageHeader{}

	n, err := Unmarshal(page, h)
	if err != nil {
		return nil, nil, err
	}

	return h, page[n:], nil
}
