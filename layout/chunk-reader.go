package layout

import (
	"context"
	"io"

	"github.com/hexbee-net/colfile/format"
	"github.com/hexbee-net/colfile/schema"
	"github.com/hexbee-net/colfile/stats"
	"github.com/hexbee-net/errors"
	"golang.org/x/sync/semaphore"
)

// ReadRequest selects the rows [From, To) of a column chunk, relative to
// its row group. When the predicate applies to the column being read, pages
// it proves empty are not decoded.
type ReadRequest struct {
	From      int64
	To        int64
	Predicate *stats.Matcher
}

// ChunkData holds the rows read from a column chunk, converted to the
// column type.
type ChunkData struct {
	Values []interface{}
	// Skipped marks the rows of the pages excluded by the predicate
	// statistics. It is nil when no page was skipped.
	Skipped      []bool
	PagesRead    int
	PagesSkipped int
}

// ChunkReader reads the pages of column chunks through an io.ReaderAt.
type ChunkReader struct {
	pages *semaphore.Weighted
}

// NewChunkReader returns a reader keeping at most maxPages pages in memory
// across all the goroutines sharing it. maxPages <= 0 means no limit.
func NewChunkReader(maxPages int64) *ChunkReader {
	r := &ChunkReader{}
	if maxPages > 0 {
		r.pages = semaphore.NewWeighted(maxPages)
	}

	return r
}

// ReadChunk reads the requested rows of chunk. Only the pages overlapping
// the row range are fetched. Cancellation is checked between pages.
func (r *ChunkReader) ReadChunk(ctx context.Context, src io.ReaderAt, col *schema.Column, chunk *format.ColumnChunk, req ReadRequest) (*ChunkData, error) {
	if req.From < 0 || req.To < req.From || req.To > chunk.NumValues {
		return nil, errors.WithFields(
			errors.WithStack(format.ErrRangeOutOfBounds),
			errors.Fields{
				"column": col.Name(),
				"from":   req.From,
				"to":     req.To,
				"rows":   chunk.NumValues,
			})
	}

	rows := int(req.To - req.From)
	data := &ChunkData{
		Values: make([]interface{}, rows),
	}

	pred := req.Predicate
	if pred != nil && pred.Column().Name() != col.Name() {
		pred = nil
	}

	if pred != nil && pred.CanSkip(chunk.Statistics, chunk.NumValues) {
		data.Skipped = make([]bool, rows)
		for i := range data.Skipped {
			data.Skipped[i] = true
		}

		return data, nil
	}

	for _, loc := range chunk.Pages {
		first := loc.FirstRowIndex
		last := first + int64(loc.NumRows)

		if last <= req.From || first >= req.To {
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := r.readPage(ctx, src, col, loc, req, pred, data); err != nil {
			return nil, errors.WithFields(
				errors.Wrap(err, "failed to read page"),
				errors.Fields{
					"offset":    loc.Offset,
					"first-row": loc.FirstRowIndex,
				})
		}
	}

	return data, nil
}

func (r *ChunkReader) readPage(ctx context.Context, src io.ReaderAt, col *schema.Column, loc *format.PageLocation, req ReadRequest, pred *stats.Matcher, data *ChunkData) error {
	if r.pages != nil {
		if err := r.pages.Acquire(ctx, 1); err != nil {
			return err
		}
		defer r.pages.Release(1)
	}

	if loc.CompressedPageSize <= 0 {
		return errors.WithFields(
			errors.WithStack(format.ErrCorruptPage),
			errors.Fields{
				"column": col.Name(),
				"reason": "invalid page size",
				"size":   loc.CompressedPageSize,
			})
	}

	buf := make([]byte, loc.CompressedPageSize)

	if n, err := src.ReadAt(buf, loc.Offset); n != len(buf) {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}

		return errors.Wrap(err, "failed to read page bytes")
	}

	// From here on the page is completed even if ctx is canceled.
	from := max(loc.FirstRowIndex, req.From)
	to := min(loc.FirstRowIndex+int64(loc.NumRows), req.To)

	header, _, err := format.ReadPageHeader(buf)
	if err != nil {
		return corruptPage(col, "invalid page header", err)
	}

	if header.NumValues != loc.NumRows {
		return errors.WithFields(
			errors.WithStack(format.ErrCorruptPage),
			errors.Fields{
				"column":   col.Name(),
				"reason":   "page row count does not match its location",
				"expected": loc.NumRows,
				"actual":   header.NumValues,
			})
	}

	if pred != nil && pred.CanSkip(header.Statistics, int64(header.NumValues)) {
		if data.Skipped == nil {
			data.Skipped = make([]bool, len(data.Values))
		}

		for i := from; i < to; i++ {
			data.Skipped[i-req.From] = true
		}

		data.PagesSkipped++

		return nil
	}

	values, _, err := DecodePage(col, buf)
	if err != nil {
		return err
	}

	data.PagesRead++

	for i := from; i < to; i++ {
		v := values[i-loc.FirstRowIndex]
		if v == nil {
			continue
		}

		if v, err = col.FromPhysical(v); err != nil {
			return corruptPage(col, "invalid value", err)
		}

		data.Values[i-req.From] = v
	}

	return nil
}
