package layout

import (
	"bytes"
	"context"

	"github.com/hexbee-net/colfile/format"
	"github.com/hexbee-net/colfile/schema"
	"github.com/hexbee-net/colfile/stats"
	"github.com/hexbee-net/errors"
)

// ChunkResult is an encoded column chunk. Page offsets are relative to the
// beginning of the chunk until the chunk is placed in a file.
type ChunkResult struct {
	Bytes            []byte
	Pages            []*format.PageLocation
	Stats            *stats.Collector
	Encodings        []format.Encoding
	UncompressedSize int64
	NumValues        int64
	Codec            format.CompressionCodec
}

// ColumnChunk returns the footer description of the chunk once written at
// offset.
func (r *ChunkResult) ColumnChunk(offset int64) (*format.ColumnChunk, error) {
	st, err := r.Stats.Statistics()
	if err != nil {
		return nil, err
	}

	pages := make([]*format.PageLocation, len(r.Pages))
	for i, p := range r.Pages {
		loc := *p
		loc.Offset += offset
		pages[i] = &loc
	}

	return &format.ColumnChunk{
		FileOffset:            offset,
		TotalCompressedSize:   int64(len(r.Bytes)),
		TotalUncompressedSize: r.UncompressedSize,
		NumValues:             r.NumValues,
		Codec:                 r.Codec,
		Encodings:             r.Encodings,
		Statistics:            st,
		Pages:                 pages,
	}, nil
}

// ChunkWriter encodes the values of a column within a row group.
type ChunkWriter struct {
	opts Options
}

func NewChunkWriter(opts Options) *ChunkWriter {
	if opts.PageRows <= 0 {
		opts.PageRows = DefaultPageRows
	}

	if opts.PageBytes <= 0 {
		opts.PageBytes = DefaultPageBytes
	}

	return &ChunkWriter{opts: opts}
}

// WriteChunk encodes values, given in the column type with nil as null, into
// pages of at most PageRows rows and about PageBytes bytes.
func (w *ChunkWriter) WriteChunk(ctx context.Context, col *schema.Column, values []interface{}) (*ChunkResult, error) {
	res := &ChunkResult{
		Stats:     stats.NewCollector(),
		NumValues: int64(len(values)),
		Codec:     w.opts.Codec,
	}

	physical := make([]interface{}, len(values))

	for i, v := range values {
		nv, err := col.Normalize(v)
		if err != nil {
			return nil, errors.WithFields(
				errors.Wrap(err, "invalid column value"),
				errors.Fields{
					"row": i,
				})
		}

		if nv != nil {
			physical[i] = col.ToPhysical(nv)
		}
	}

	buf := &bytes.Buffer{}
	seen := make(map[format.Encoding]bool)

	for start := 0; start < len(physical); {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := w.pageEnd(physical, start)

		page, err := EncodePage(col, physical[start:end], w.opts)
		if err != nil {
			return nil, errors.WithFields(
				errors.Wrap(err, "failed to encode page"),
				errors.Fields{
					"column":    col.Name(),
					"first-row": start,
				})
		}

		res.Pages = append(res.Pages, &format.PageLocation{
			Offset:             int64(buf.Len()),
			CompressedPageSize: int32(len(page.Data)),
			FirstRowIndex:      int64(start),
			NumRows:            int32(end - start),
		})

		buf.Write(page.Data)

		res.UncompressedSize += int64(len(page.Data)) -
			int64(page.Header.CompressedPageSize) + int64(page.Header.UncompressedPageSize)
		res.Stats.Merge(page.Stats)

		if !seen[page.Header.Encoding] {
			seen[page.Header.Encoding] = true
			res.Encodings = append(res.Encodings, page.Header.Encoding)
		}

		start = end
	}

	res.Bytes = buf.Bytes()

	return res, nil
}

// pageEnd returns the end of the page starting at row start. A page holds
// at least one row.
func (w *ChunkWriter) pageEnd(values []interface{}, start int) int {
	size := 0
	end := start

	for end < len(values) && end-start < w.opts.PageRows {
		size += valueSize(values[end])
		end++

		if size >= w.opts.PageBytes {
			break
		}
	}

	return end
}

// valueSize approximates the encoded size of a physical value.
func valueSize(v interface{}) int {
	switch t := v.(type) {
	case nil, bool:
		return 1
	case int32, float32:
		return 4
	case int64, float64:
		return 8
	case []byte:
		return 4 + len(t)
	}

	return 8
}
