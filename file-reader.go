// Package colfile reads and writes tables in a columnar file format. Files
// hold row groups of column chunks described by a footer, which lets readers
// fetch only the columns, rows and pages they need.
package colfile

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/hexbee-net/colfile/format"
	"github.com/hexbee-net/colfile/layout"
	"github.com/hexbee-net/colfile/metadata"
	"github.com/hexbee-net/colfile/schema"
	"github.com/hexbee-net/colfile/source"
	"github.com/hexbee-net/colfile/source/local"
	"github.com/hexbee-net/colfile/stats"
	"github.com/hexbee-net/colfile/table"
	"github.com/hexbee-net/errors"
)

// RowRange selects the rows [From, To) of a file.
type RowRange struct {
	From int64
	To   int64
}

// ReadOptions selects what ReadTable returns. The zero value reads the
// whole file.
type ReadOptions struct {
	// Columns are the names of the columns to read. The result holds them in
	// file schema order. Empty means all the columns.
	Columns []string
	// RowRange limits the rows read. Nil means all the rows.
	RowRange *RowRange
	// Filter keeps only the rows matching the predicate. Row groups and
	// pages whose statistics prove no row matches are not decoded.
	Filter *stats.Predicate
}

// ReadStats counts the work done by a reader since it was opened.
type ReadStats struct {
	RowGroupsRead    int64
	RowGroupsSkipped int64
	ChunksDecoded    int64
	PagesDecoded     int64
	PagesSkipped     int64
	// ColumnChunksDecoded is the number of decoded chunks per column name.
	ColumnChunksDecoded map[string]int64
}

type readCounters struct {
	rowGroupsRead    int64
	rowGroupsSkipped int64
	chunksDecoded    int64
	pagesDecoded     int64
	pagesSkipped     int64

	mu      sync.Mutex
	columns map[string]int64
}

func (c *readCounters) addChunk(column string, cd *layout.ChunkData) {
	atomic.AddInt64(&c.pagesDecoded, int64(cd.PagesRead))
	atomic.AddInt64(&c.pagesSkipped, int64(cd.PagesSkipped))

	if cd.PagesRead == 0 {
		return
	}

	atomic.AddInt64(&c.chunksDecoded, 1)

	c.mu.Lock()
	c.columns[column]++
	c.mu.Unlock()
}

func (c *readCounters) snapshot() ReadStats {
	c.mu.Lock()
	columns := make(map[string]int64, len(c.columns))
	for k, v := range c.columns {
		columns[k] = v
	}
	c.mu.Unlock()

	return ReadStats{
		RowGroupsRead:       atomic.LoadInt64(&c.rowGroupsRead),
		RowGroupsSkipped:    atomic.LoadInt64(&c.rowGroupsSkipped),
		ChunksDecoded:       atomic.LoadInt64(&c.chunksDecoded),
		PagesDecoded:        atomic.LoadInt64(&c.pagesDecoded),
		PagesSkipped:        atomic.LoadInt64(&c.pagesSkipped),
		ColumnChunksDecoded: columns,
	}
}

// FileReader reads tables from a column file. The footer is parsed when the
// reader is created. ReadTable can be called concurrently.
// Always use NewFileReader or Open to create such an object.
type FileReader struct {
	src    source.Reader
	cfg    Config
	meta   *format.FileMetaData
	schema *schema.Schema

	chunkReader *layout.ChunkReader
	stats       *readCounters

	closed int32
}

// Open opens the local file at path.
func Open(path string, cfg Config) (*FileReader, error) {
	src, err := local.NewReader(path)
	if err != nil {
		return nil, err
	}

	r, err := NewFileReader(src, cfg)
	if err != nil {
		_ = src.Close()

		return nil, err
	}

	return r, nil
}

// NewFileReader parses and validates the footer of src. The reader owns src
// and closes it in Close.
func NewFileReader(src source.Reader, cfg Config) (*FileReader, error) {
	cfg = cfg.withDefaults()

	meta, err := metadata.ReadFooter(src)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read file footer")
	}

	s, err := schema.FromElements(meta.Schema)
	if err != nil {
		return nil, errors.Wrap(errors.WithStack(ErrCorruptFile), err.Error())
	}

	cfg.logger(context.Background()).Debug().
		Int64("size", src.Size()).
		Int("row-groups", len(meta.RowGroups)).
		Int64("rows", meta.NumRows).
		Str("schema", s.String()).
		Msg("footer parsed")

	return &FileReader{
		src:         src,
		cfg:         cfg,
		meta:        meta,
		schema:      s,
		chunkReader: layout.NewChunkReader(cfg.MaxInFlightPages),
		stats:       &readCounters{columns: make(map[string]int64)},
	}, nil
}

// Schema returns the schema of the file.
func (f *FileReader) Schema() *schema.Schema {
	return f.schema
}

// NumRows returns the number of rows in the file. This information is
// directly taken from the footer.
func (f *FileReader) NumRows() int64 {
	return f.meta.NumRows
}

// RowGroupCount returns the number of row groups in the file.
func (f *FileReader) RowGroupCount() int {
	return len(f.meta.RowGroups)
}

// Metadata returns the key/value pairs stored in the footer.
func (f *FileReader) Metadata() map[string]string {
	return metadata.KeyValues(f.meta)
}

// Footer returns the parsed footer. It must not be modified.
func (f *FileReader) Footer() *format.FileMetaData {
	return f.meta
}

// Stats returns the work done by the reader so far.
func (f *FileReader) Stats() ReadStats {
	return f.stats.snapshot()
}

// Close releases the source. The reader can not be used afterwards.
func (f *FileReader) Close() error {
	if !atomic.CompareAndSwapInt32(&f.closed, 0, 1) {
		return errors.WithStack(ErrClosedHandle)
	}

	return f.src.Close()
}

// ReadTable reads the selected columns and rows. Rows are returned in file
// order whatever the parallelism.
func (f *FileReader) ReadTable(ctx context.Context, opts ReadOptions) (*table.Table, error) {
	if atomic.LoadInt32(&f.closed) != 0 {
		return nil, errors.WithStack(ErrClosedHandle)
	}

	selected, err := f.schema.Select(opts.Columns)
	if err != nil {
		return nil, err
	}

	outSchema, err := f.schema.Project(selected)
	if err != nil {
		return nil, err
	}

	from, to := int64(0), f.meta.NumRows
	if opts.RowRange != nil {
		from, to = opts.RowRange.From, opts.RowRange.To
	}

	if from < 0 || to < from || to > f.meta.NumRows {
		return nil, errors.WithFields(
			errors.WithStack(ErrRangeOutOfBounds),
			errors.Fields{
				"from": from,
				"to":   to,
				"rows": f.meta.NumRows,
			})
	}

	var matcher *stats.Matcher

	if opts.Filter != nil {
		if matcher, err = opts.Filter.Compile(f.schema); err != nil {
			return nil, err
		}
	}

	columns := make([]*schema.Column, 0, len(selected)+1)
	for _, i := range selected {
		columns = append(columns, f.schema.Column(i))
	}

	// The filter column is decoded even when it is not returned.
	predPos := -1

	if matcher != nil {
		for pos, col := range columns {
			if col.Index() == matcher.Column().Index() {
				predPos = pos
			}
		}

		if predPos < 0 {
			predPos = len(columns)
			columns = append(columns, matcher.Column())
		}
	}

	slices := selectRowGroups(f.meta.RowGroups, from, to)
	logger := f.cfg.logger(ctx)

	for _, sl := range slices {
		if matcher == nil {
			atomic.AddInt64(&f.stats.rowGroupsRead, 1)

			continue
		}

		chunk := f.meta.RowGroups[sl.index].Columns[matcher.Column().Index()]
		if matcher.CanSkip(chunk.Statistics, chunk.NumValues) {
			sl.skipped = true
			atomic.AddInt64(&f.stats.rowGroupsSkipped, 1)

			logger.Debug().
				Int("row-group", sl.index).
				Str("filter", opts.Filter.String()).
				Msg("row group skipped by statistics")

			continue
		}

		atomic.AddInt64(&f.stats.rowGroupsRead, 1)
	}

	data, err := f.decodeChunks(ctx, slices, columns, layout.ReadRequest{Predicate: matcher}, f.cfg.parallelism())
	if err != nil {
		return nil, err
	}

	out := make([][]interface{}, len(selected))

	for s, sl := range slices {
		if sl.skipped {
			continue
		}

		chunks := data[s]

		for row := 0; row < int(sl.to-sl.from); row++ {
			if matcher != nil && !matchRow(matcher, chunks[predPos], row) {
				continue
			}

			for c := range out {
				out[c] = append(out[c], chunks[c].Values[row])
			}
		}
	}

	for c := range out {
		if out[c] == nil {
			out[c] = []interface{}{}
		}
	}

	return table.New(outSchema, out...)
}

func matchRow(m *stats.Matcher, cd *layout.ChunkData, row int) bool {
	if cd.Skipped != nil && cd.Skipped[row] {
		return false
	}

	v := cd.Values[row]
	if v != nil {
		v = m.Column().ToPhysical(v)
	}

	return m.Match(v)
}
