package colfile

import (
	"context"
	"io"

	"github.com/hexbee-net/colfile/format"
	"github.com/hexbee-net/colfile/layout"
	"github.com/hexbee-net/colfile/metadata"
	"github.com/hexbee-net/colfile/schema"
	"github.com/hexbee-net/colfile/source"
	"github.com/hexbee-net/colfile/source/local"
	"github.com/hexbee-net/colfile/table"
	"github.com/hexbee-net/errors"
)

const errSchemaMismatch = errors.Error("table schema does not match the file schema")

// FileWriter writes tables to a column file. Row groups are appended as
// they are written and the footer is written by Close.
// Always use NewFileWriter or Create to create such an object.
type FileWriter struct {
	dst    source.Writer
	schema *schema.Schema
	cfg    Config

	chunkWriter *layout.ChunkWriter
	builder     *metadata.Builder

	// err is set once a write failed, leaving the file unusable.
	err    error
	closed bool
}

// Create creates or truncates the local file at path and returns a writer
// for it.
func Create(path string, s *schema.Schema, cfg Config) (*FileWriter, error) {
	dst, err := local.NewWriter(path)
	if err != nil {
		return nil, err
	}

	w, err := NewFileWriter(dst, s, cfg)
	if err != nil {
		_ = dst.Close()

		return nil, err
	}

	return w, nil
}

// NewFileWriter writes the file header to dst and returns a writer. The
// writer owns dst and closes it in Close.
func NewFileWriter(dst source.Writer, s *schema.Schema, cfg Config) (*FileWriter, error) {
	if s == nil {
		return nil, errors.New("schema is nil")
	}

	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts, err := cfg.layoutOptions()
	if err != nil {
		return nil, err
	}

	// The schema is immutable, sharing it keeps the file schema fixed.
	b := metadata.NewBuilder(s)
	for k, v := range cfg.Metadata {
		b.SetKeyValue(k, v)
	}

	if _, err := io.WriteString(dst, format.Magic); err != nil {
		return nil, errors.Wrap(err, "failed to write file header")
	}

	return &FileWriter{
		dst:         dst,
		schema:      s,
		cfg:         cfg,
		chunkWriter: layout.NewChunkWriter(opts),
		builder:     b,
	}, nil
}

// Schema returns the schema of the file.
func (w *FileWriter) Schema() *schema.Schema {
	return w.schema
}

// FileID returns the unique id stored in the footer.
func (w *FileWriter) FileID() string {
	return w.builder.FileID()
}

// NumRows returns the number of rows written so far.
func (w *FileWriter) NumRows() int64 {
	return w.builder.NumRows()
}

// Write splits t into row groups of the configured size and writes them.
func (w *FileWriter) Write(ctx context.Context, t *table.Table) error {
	if err := w.check(); err != nil {
		return err
	}

	if t == nil {
		return errors.New("table is nil")
	}

	for _, s := range partitionRows(t, w.cfg.RowGroupRows, w.cfg.RowGroupBytes) {
		slice, err := t.Slice(int(s.from), int(s.to))
		if err != nil {
			return err
		}

		if err := w.WriteRowGroup(ctx, slice); err != nil {
			return err
		}
	}

	return nil
}

// WriteRowGroup writes all the rows of t as a single row group. The column
// chunks are encoded in parallel then appended in schema order. An empty
// table writes nothing.
func (w *FileWriter) WriteRowGroup(ctx context.Context, t *table.Table) error {
	if err := w.check(); err != nil {
		return err
	}

	if t == nil {
		return errors.New("table is nil")
	}

	if !t.Schema().Equal(w.schema) {
		return errors.WithFields(
			errors.WithStack(errSchemaMismatch),
			errors.Fields{
				"expected": w.schema.String(),
				"actual":   t.Schema().String(),
			})
	}

	if t.NumRows() == 0 {
		return nil
	}

	chunks, err := encodeRowGroup(ctx, w.chunkWriter, t, w.cfg.parallelism())
	if err != nil {
		return err
	}

	rg := &format.RowGroup{
		NumRows:    int64(t.NumRows()),
		FileOffset: w.builder.Offset(),
	}

	for i, res := range chunks {
		chunk, err := res.ColumnChunk(w.builder.Reserve(int64(len(res.Bytes))))
		if err != nil {
			w.err = err

			return errors.Wrap(err, "failed to describe column chunk")
		}

		if _, err := w.dst.Write(res.Bytes); err != nil {
			w.err = err

			return errors.WithFields(
				errors.Wrap(err, "failed to write column chunk"),
				errors.Fields{
					"column": w.schema.Column(i).Name(),
				})
		}

		rg.Columns = append(rg.Columns, chunk)
		rg.TotalByteSize += chunk.TotalUncompressedSize
	}

	if err := w.builder.AddRowGroup(rg); err != nil {
		w.err = err

		return err
	}

	w.cfg.logger(ctx).Debug().
		Int("row-group", len(w.builder.RowGroups())-1).
		Int64("rows", rg.NumRows).
		Int64("offset", rg.FileOffset).
		Int64("size", w.builder.Offset()-rg.FileOffset).
		Msg("row group written")

	return nil
}

// Close writes the footer and closes the destination. The writer can not be
// used afterwards.
func (w *FileWriter) Close() error {
	if w.closed {
		return errors.WithStack(ErrClosedHandle)
	}

	w.closed = true

	if w.err != nil {
		_ = w.dst.Close()

		return errors.Wrap(w.err, "file is incomplete")
	}

	footer, err := w.builder.Finish()
	if err != nil {
		_ = w.dst.Close()

		return err
	}

	if _, err := w.dst.Write(footer); err != nil {
		_ = w.dst.Close()

		return errors.Wrap(err, "failed to write footer")
	}

	if err := w.dst.Close(); err != nil {
		return errors.Wrap(err, "failed to close file")
	}

	w.cfg.logger(context.Background()).Debug().
		Str("file-id", w.builder.FileID()).
		Int("row-groups", len(w.builder.RowGroups())).
		Int64("rows", w.builder.NumRows()).
		Int("footer-size", len(footer)).
		Msg("footer written")

	return nil
}

func (w *FileWriter) check() error {
	if w.closed {
		return errors.WithStack(ErrClosedHandle)
	}

	if w.err != nil {
		return errors.Wrap(w.err, "a previous write failed")
	}

	return nil
}
