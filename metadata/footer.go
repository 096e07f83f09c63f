package metadata

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/hexbee-net/colfile/format"
	"github.com/hexbee-net/colfile/schema"
	"github.com/hexbee-net/errors"
)

// Source is a random access view of a whole file.
type Source interface {
	io.ReaderAt
	Size() int64
}

// ReadFooter reads and validates the footer of src. Any structural problem
// is reported as format.ErrCorruptFile.
func ReadFooter(src Source) (*format.FileMetaData, error) {
	size := src.Size()

	if size < int64(format.MagicLen)+TrailerLen {
		return nil, corruptFile("file too small", errors.Fields{"size": size})
	}

	header := make([]byte, format.MagicLen)
	if err := readAt(src, header, 0); err != nil {
		return nil, errors.Wrap(err, "failed to read file magic header")
	}

	if !bytes.Equal(header, []byte(format.Magic)) {
		return nil, corruptFile("invalid file header", errors.Fields{"magic": string(header)})
	}

	trailer := make([]byte, TrailerLen)
	if err := readAt(src, trailer, size-TrailerLen); err != nil {
		return nil, errors.Wrap(err, "failed to read file trailer")
	}

	if !bytes.Equal(trailer[format.FooterLenSize:], []byte(format.Magic)) {
		return nil, corruptFile("invalid file footer", errors.Fields{"magic": string(trailer[format.FooterLenSize:])})
	}

	footerLen := int64(binary.LittleEndian.Uint32(trailer))
	footerStart := size - TrailerLen - footerLen

	if footerLen == 0 || footerStart < int64(format.MagicLen) {
		return nil, corruptFile("invalid footer length", errors.Fields{
			"length": footerLen,
			"size":   size,
		})
	}

	data := make([]byte, footerLen)
	if err := readAt(src, data, footerStart); err != nil {
		return nil, errors.Wrap(err, "failed to read file meta data")
	}

	meta := &format.FileMetaData{}

	n, err := format.Unmarshal(data, meta)
	if err != nil {
		return nil, corruptFile("invalid file meta data", errors.Fields{"error": err.Error()})
	}

	if int64(n) != footerLen {
		return nil, corruptFile("footer length does not match the file meta data", errors.Fields{
			"length":   footerLen,
			"consumed": n,
		})
	}

	if err := Validate(meta, int64(format.MagicLen), footerStart); err != nil {
		return nil, err
	}

	return meta, nil
}

// Validate checks the consistency of a footer whose row groups must lie in
// [dataStart, dataEnd).
func Validate(meta *format.FileMetaData, dataStart, dataEnd int64) error {
	if meta.Version < 1 || meta.Version > format.Version {
		return corruptFile("unsupported version", errors.Fields{"version": meta.Version})
	}

	s, err := schema.FromElements(meta.Schema)
	if err != nil {
		return corruptFile("invalid schema", errors.Fields{"error": err.Error()})
	}

	if meta.NumRows < 0 {
		return corruptFile("negative row count", errors.Fields{"rows": meta.NumRows})
	}

	var rows int64

	for i, rg := range meta.RowGroups {
		if rg == nil {
			return corruptFile("missing row group", errors.Fields{"row-group": i})
		}

		if err := validateRowGroup(s, rg, dataStart, dataEnd); err != nil {
			return errors.WithFields(err, errors.Fields{"row-group": i})
		}

		rows += rg.NumRows
	}

	if rows != meta.NumRows {
		return corruptFile("row groups do not add up to the file row count", errors.Fields{
			"expected": meta.NumRows,
			"actual":   rows,
		})
	}

	return nil
}

func validateRowGroup(s *schema.Schema, rg *format.RowGroup, dataStart, dataEnd int64) error {
	if rg.NumRows < 0 {
		return corruptFile("negative row count", errors.Fields{"rows": rg.NumRows})
	}

	if len(rg.Columns) != s.Len() {
		return corruptFile("column count does not match the schema", errors.Fields{
			"expected": s.Len(),
			"actual":   len(rg.Columns),
		})
	}

	for i, chunk := range rg.Columns {
		if chunk == nil {
			return corruptFile("missing column chunk", errors.Fields{"column": s.Column(i).Name()})
		}

		if err := validateChunk(chunk, rg.NumRows, dataStart, dataEnd); err != nil {
			return errors.WithFields(err, errors.Fields{"column": s.Column(i).Name()})
		}
	}

	return nil
}

func validateChunk(chunk *format.ColumnChunk, rows, dataStart, dataEnd int64) error {
	start := chunk.FileOffset
	end := chunk.FileOffset + chunk.TotalCompressedSize

	if chunk.TotalCompressedSize < 0 || start < dataStart || end > dataEnd {
		return corruptFile("column chunk outside of the data section", errors.Fields{
			"offset": chunk.FileOffset,
			"size":   chunk.TotalCompressedSize,
		})
	}

	if chunk.NumValues != rows {
		return corruptFile("column chunk row count does not match its row group", errors.Fields{
			"expected": rows,
			"actual":   chunk.NumValues,
		})
	}

	next := int64(0)

	for i, p := range chunk.Pages {
		if p == nil {
			return corruptFile("missing page location", errors.Fields{"page": i})
		}

		if p.Offset < start || p.CompressedPageSize <= 0 || p.Offset+int64(p.CompressedPageSize) > end {
			return corruptFile("page outside of its column chunk", errors.Fields{
				"page":   i,
				"offset": p.Offset,
				"size":   p.CompressedPageSize,
			})
		}

		if p.FirstRowIndex != next || p.NumRows < 0 {
			return corruptFile("page rows are not contiguous", errors.Fields{
				"page":      i,
				"first-row": p.FirstRowIndex,
				"expected":  next,
			})
		}

		next += int64(p.NumRows)
	}

	if next != rows {
		return corruptFile("pages do not add up to the column chunk row count", errors.Fields{
			"expected": rows,
			"actual":   next,
		})
	}

	return nil
}

func corruptFile(reason string, fields errors.Fields) error {
	fields["reason"] = reason

	return errors.WithFields(errors.WithStack(format.ErrCorruptFile), fields)
}

func readAt(src io.ReaderAt, buf []byte, offset int64) error {
	n, err := src.ReadAt(buf, offset)
	if n == len(buf) {
		return nil
	}

	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}

	return err
}
