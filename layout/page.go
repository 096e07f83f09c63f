// Package layout turns column values into pages and column chunks, and back.
//
// A page is a thrift PageHeader followed by its compressed payload. The
// payload of a nullable column starts with the definition levels, a length
// prefixed hybrid section of bit width 1 holding one level per row, followed
// by the encoded non null values.
package layout

import (
	"bytes"
	"encoding/binary"

	"github.com/hexbee-net/colfile/compression"
	"github.com/hexbee-net/colfile/encoding"
	"github.com/hexbee-net/colfile/format"
	"github.com/hexbee-net/colfile/schema"
	"github.com/hexbee-net/colfile/stats"
	"github.com/hexbee-net/colfile/types"
	"github.com/hexbee-net/errors"
)

const levelsSizeLen = 4

// Page is an encoded page, ready to be written.
type Page struct {
	Header *format.PageHeader
	// Data holds the serialized header followed by the payload.
	Data []byte
	// Stats holds the statistics of the page values.
	Stats *stats.Collector
}

// EncodePage encodes physical values, nil being null, into a single page.
func EncodePage(col *schema.Column, values []interface{}, opts Options) (*Page, error) {
	collector := stats.NewCollector()
	nonNull := make([]interface{}, 0, len(values))

	for _, v := range values {
		if err := collector.Add(v); err != nil {
			return nil, err
		}

		if v != nil {
			nonNull = append(nonNull, v)
		}
	}

	nulls := len(values) - len(nonNull)
	if nulls > 0 && !col.Nullable() {
		return nil, errors.WithFields(
			errors.New("null value in a required column"),
			errors.Fields{
				"column": col.Name(),
			})
	}

	enc, err := opts.ChooseEncoding(col, nonNull)
	if err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}

	if col.Nullable() {
		if err := writeLevels(buf, values); err != nil {
			return nil, errors.Wrap(err, "failed to write definition levels")
		}
	}

	encoder, err := types.NewEncoder(col.Type(), enc)
	if err != nil {
		return nil, err
	}

	if err := types.EncodeValues(buf, encoder, nonNull); err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, "failed to encode values"),
			errors.Fields{
				"column":   col.Name(),
				"encoding": enc.String(),
			})
	}

	payload, err := compression.Compress(opts.Codec, buf.Bytes())
	if err != nil {
		return nil, err
	}

	st, err := collector.Statistics()
	if err != nil {
		return nil, err
	}

	header := &format.PageHeader{
		Type:                 format.PageType_DATA_PAGE,
		UncompressedPageSize: int32(buf.Len()),
		CompressedPageSize:   int32(len(payload)),
		NumValues:            int32(len(values)),
		NumNulls:             int32(nulls),
		Encoding:             enc,
		Codec:                opts.Codec,
		Statistics:           st,
	}

	data, err := format.Marshal(header)
	if err != nil {
		return nil, err
	}

	return &Page{
		Header: header,
		Data:   append(data, payload...),
		Stats:  collector,
	}, nil
}

// DecodePage parses a whole page and returns its physical values, nil being
// null. page must hold exactly one page.
func DecodePage(col *schema.Column, page []byte) ([]interface{}, *format.PageHeader, error) {
	header, payload, err := format.ReadPageHeader(page)
	if err != nil {
		return nil, nil, corruptPage(col, "invalid page header", err)
	}

	if err := checkHeader(col, header, len(payload)); err != nil {
		return nil, nil, err
	}

	raw, err := compression.Decompress(header.Codec, payload, int(header.UncompressedPageSize))
	if err != nil {
		return nil, nil, errors.WithFields(
			errors.Wrap(err, "failed to decompress page"),
			errors.Fields{
				"column": col.Name(),
			})
	}

	count := int(header.NumValues)
	nonNull := count - int(header.NumNulls)

	var defined []bool

	if col.Nullable() {
		if defined, raw, err = readLevels(raw, count); err != nil {
			return nil, nil, corruptPage(col, "invalid definition levels", err)
		}

		n := 0
		for _, d := range defined {
			if d {
				n++
			}
		}

		if n != nonNull {
			return nil, nil, errors.WithFields(
				errors.WithStack(format.ErrCorruptPage),
				errors.Fields{
					"column":   col.Name(),
					"reason":   "null count does not match the definition levels",
					"expected": nonNull,
					"actual":   n,
				})
		}
	}

	decoder, err := types.NewDecoder(col.Type(), header.Encoding)
	if err != nil {
		return nil, nil, err
	}

	reader := bytes.NewReader(raw)

	decoded, err := types.DecodeValues(reader, decoder, nonNull)
	if err != nil {
		return nil, nil, corruptPage(col, "invalid values", err)
	}

	if reader.Len() != 0 {
		return nil, nil, errors.WithFields(
			errors.WithStack(format.ErrCorruptPage),
			errors.Fields{
				"column":   col.Name(),
				"reason":   "trailing bytes after the page values",
				"trailing": reader.Len(),
			})
	}

	if defined == nil {
		return decoded, header, nil
	}

	values := make([]interface{}, count)
	next := 0

	for i, d := range defined {
		if d {
			values[i] = decoded[next]
			next++
		}
	}

	return values, header, nil
}

func checkHeader(col *schema.Column, h *format.PageHeader, payloadLen int) error {
	reason := ""

	switch {
	case h.Type != format.PageType_DATA_PAGE:
		reason = "unsupported page type"
	case h.CompressedPageSize < 0 || int(h.CompressedPageSize) != payloadLen:
		reason = "payload size does not match the header"
	case h.UncompressedPageSize < 0:
		reason = "negative uncompressed size"
	case h.NumValues < 0 || h.NumNulls < 0 || h.NumNulls > h.NumValues:
		reason = "invalid value count"
	case h.NumNulls > 0 && !col.Nullable():
		reason = "null values in a required column"
	default:
		return nil
	}

	return errors.WithFields(
		errors.WithStack(format.ErrCorruptPage),
		errors.Fields{
			"column":            col.Name(),
			"reason":            reason,
			"page-type":         h.Type.String(),
			"compressed-size":   h.CompressedPageSize,
			"uncompressed-size": h.UncompressedPageSize,
			"payload-size":      payloadLen,
			"num-values":        h.NumValues,
			"num-nulls":         h.NumNulls,
		})
}

func corruptPage(col *schema.Column, reason string, err error) error {
	return errors.WithFields(
		errors.WithStack(format.ErrCorruptPage),
		errors.Fields{
			"column": col.Name(),
			"reason": reason,
			"error":  err.Error(),
		})
}

func writeLevels(buf *bytes.Buffer, values []interface{}) error {
	enc, err := encoding.NewHybridEncoder(1)
	if err != nil {
		return err
	}

	for _, v := range values {
		level := int32(0)
		if v != nil {
			level = 1
		}

		if err := enc.AppendSingle(level); err != nil {
			return err
		}
	}

	return enc.WriteSize(buf)
}

// readLevels decodes count definition levels from the beginning of data and
// returns the bytes that follow the levels section.
func readLevels(data []byte, count int) ([]bool, []byte, error) {
	if len(data) < levelsSizeLen {
		return nil, nil, errors.New("missing definition levels size")
	}

	size := int(binary.LittleEndian.Uint32(data))
	data = data[levelsSizeLen:]

	if size > len(data) {
		return nil, nil, errors.WithFields(
			errors.New("definition levels section exceeds the page"),
			errors.Fields{
				"size":      size,
				"remaining": len(data),
			})
	}

	dec, err := encoding.NewHybridDecoder(1)
	if err != nil {
		return nil, nil, err
	}

	if err := dec.Init(bytes.NewReader(data[:size])); err != nil {
		return nil, nil, err
	}

	levels, err := dec.Decode(count)
	if err != nil {
		return nil, nil, err
	}

	defined := make([]bool, count)
	for i, l := range levels {
		defined[i] = l == 1
	}

	return defined, data[size:], nil
}
