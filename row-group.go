package colfile

import (
	"context"

	"github.com/hexbee-net/colfile/format"
	"github.com/hexbee-net/colfile/layout"
	"github.com/hexbee-net/colfile/schema"
	"github.com/hexbee-net/colfile/table"
	"github.com/hexbee-net/errors"
	"golang.org/x/sync/errgroup"
)

// span is a half-open range of rows.
type span struct {
	from int64
	to   int64
}

// partitionRows splits the rows of t into row groups of at most maxRows rows
// and about maxBytes bytes. A row group holds at least one row.
func partitionRows(t *table.Table, maxRows int, maxBytes int64) []span {
	var ret []span

	n := int64(t.NumRows())
	start := int64(0)
	size := int64(0)

	for i := int64(0); i < n; i++ {
		rs := rowSize(t, int(i))

		if i > start && ((maxRows > 0 && i-start >= int64(maxRows)) || (maxBytes > 0 && size+rs > maxBytes)) {
			ret = append(ret, span{from: start, to: i})
			start = i
			size = 0
		}

		size += rs
	}

	if start < n {
		ret = append(ret, span{from: start, to: n})
	}

	return ret
}

func rowSize(t *table.Table, row int) int64 {
	var size int64

	for c := 0; c < t.NumColumns(); c++ {
		switch v := t.Column(c)[row].(type) {
		case nil, bool, int8:
			size++
		case int16:
			size += 2
		case int32, float32:
			size += 4
		case string:
			size += 4 + int64(len(v))
		default:
			size += 8
		}
	}

	return size
}

// encodeRowGroup encodes one chunk per column of t, in parallel. The chunks
// are returned in schema order.
func encodeRowGroup(ctx context.Context, w *layout.ChunkWriter, t *table.Table, parallelism int) ([]*layout.ChunkResult, error) {
	columns := t.Schema().Columns()
	results := make([]*layout.ChunkResult, len(columns))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for i, col := range columns {
		i, col := i, col

		g.Go(func() error {
			res, err := w.WriteChunk(ctx, col, t.Column(i))
			if err != nil {
				return errors.WithFields(
					errors.Wrap(err, "failed to encode column chunk"),
					errors.Fields{
						"column": col.Name(),
					})
			}

			results[i] = res

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// rowGroupSlice is the part of a row group overlapping a read range.
type rowGroupSlice struct {
	index int
	// first is the file index of the first row of the row group.
	first int64
	// from and to are relative to the row group.
	from int64
	to   int64
	// skipped is set when the statistics prove no row matches the filter.
	skipped bool
}

// selectRowGroups returns the row groups overlapping [from, to), in file
// order.
func selectRowGroups(groups []*format.RowGroup, from, to int64) []*rowGroupSlice {
	var ret []*rowGroupSlice

	first := int64(0)

	for i, rg := range groups {
		last := first + rg.NumRows

		if rg.NumRows > 0 && last > from && first < to {
			ret = append(ret, &rowGroupSlice{
				index: i,
				first: first,
				from:  max(from, first) - first,
				to:    min(to, last) - first,
			})
		}

		first = last
	}

	return ret
}

// decodeTask reads one column of one row group slice.
type decodeTask struct {
	slice  int
	column *schema.Column
	pos    int
}

// decodeChunks runs one task per (row group slice, column) pair with at most
// parallelism tasks at a time. data[slice][pos] holds the rows read.
func (f *FileReader) decodeChunks(ctx context.Context, slices []*rowGroupSlice, columns []*schema.Column, req layout.ReadRequest, parallelism int) ([][]*layout.ChunkData, error) {
	data := make([][]*layout.ChunkData, len(slices))

	var tasks []decodeTask

	for s, sl := range slices {
		data[s] = make([]*layout.ChunkData, len(columns))

		if sl.skipped {
			continue
		}

		for pos, col := range columns {
			tasks = append(tasks, decodeTask{slice: s, column: col, pos: pos})
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for _, task := range tasks {
		task := task
		sl := slices[task.slice]

		g.Go(func() error {
			chunk := f.meta.RowGroups[sl.index].Columns[task.column.Index()]

			r := req
			r.From = sl.from
			r.To = sl.to

			cd, err := f.chunkReader.ReadChunk(ctx, f.src, task.column, chunk, r)
			if err != nil {
				return errors.WithFields(
					errors.Wrap(err, "failed to read column chunk"),
					errors.Fields{
						"row-group": sl.index,
						"column":    task.column.Name(),
					})
			}

			f.stats.addChunk(task.column.Name(), cd)
			data[task.slice][task.pos] = cd

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return data, nil
}
