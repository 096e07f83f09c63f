package types

import (
	"io"

	"github.com/hexbee-net/colfile/encoding"
	"github.com/hexbee-net/errors"
)

// A dictionary encoded section is self-contained:
//
//	uvarint(dictionary size) plain(dictionary values) byte(bit-width) hybrid(indices)

// Encoder /////////////////////////////

type DictEncoder struct {
	Plain ValuesEncoder

	w       io.Writer
	values  []interface{}
	indices map[interface{}]int32
	keys    []int32
}

func (e *DictEncoder) Init(writer io.Writer) error {
	if writer == nil {
		return errors.WithStack(errNilWriter)
	}

	if e.Plain == nil {
		return errors.New("dictionary encoder has no value encoder")
	}

	e.w = writer
	e.values = nil
	e.indices = make(map[interface{}]int32)
	e.keys = nil

	return nil
}

func (e *DictEncoder) EncodeValues(values []interface{}) error {
	for _, v := range values {
		k, err := Key(v)
		if err != nil {
			return err
		}

		idx, ok := e.indices[k]
		if !ok {
			idx = int32(len(e.values))
			e.indices[k] = idx
			e.values = append(e.values, v)
		}

		e.keys = append(e.keys, idx)
	}

	return nil
}

// DictionarySize returns the number of distinct values seen so far.
func (e *DictEncoder) DictionarySize() int {
	return len(e.values)
}

func (e *DictEncoder) Close() error {
	if err := encoding.WriteUVarInt64(e.w, uint64(len(e.values))); err != nil {
		return err
	}

	if err := EncodeValues(e.w, e.Plain, e.values); err != nil {
		return errors.Wrap(err, "failed to write dictionary values")
	}

	bw := 0
	if len(e.values) > 1 {
		bw = encoding.BitWidth(uint32(len(e.values) - 1))
	}

	if err := writeFull(e.w, []byte{byte(bw)}); err != nil {
		return err
	}

	keys, err := encoding.NewHybridEncoder(bw)
	if err != nil {
		return err
	}

	if err := keys.Append(e.keys); err != nil {
		return err
	}

	return keys.Write(e.w)
}

// Decoder /////////////////////////////

type DictDecoder struct {
	Plain ValuesDecoder

	values []interface{}
	keys   *encoding.HybridDecoder
}

func (d *DictDecoder) Init(reader io.Reader) error {
	if reader == nil {
		return errors.WithStack(errNilReader)
	}

	if d.Plain == nil {
		return errors.New("dictionary decoder has no value decoder")
	}

	r := asByteReader(reader)

	size, err := encoding.ReadUVarInt32(r)
	if err != nil {
		return errors.Wrap(err, "failed to read dictionary size")
	}

	// A plain encoded value takes at least one bit.
	if lr, ok := reader.(interface{ Len() int }); ok && int(size) > lr.Len()*8 {
		return errors.WithFields(
			errors.WithStack(errInvalidSize),
			errors.Fields{
				"dictionary-size": size,
			})
	}

	if d.values, err = DecodeValues(r, d.Plain, int(size)); err != nil {
		return errors.Wrap(err, "failed to read dictionary values")
	}

	bw, err := r.ReadByte()
	if err != nil {
		return errors.Wrap(err, "failed to read dictionary bit-width")
	}

	if d.keys, err = encoding.NewHybridDecoder(int(bw)); err != nil {
		return err
	}

	return d.keys.Init(r)
}

func (d *DictDecoder) DecodeValues(dest []interface{}) (count int, err error) {
	if d.keys == nil {
		return 0, errors.New("dictionary decoder is not initialized")
	}

	size := int32(len(d.values))

	for i := range dest {
		key, err := d.keys.Next()
		if err != nil {
			return i, err
		}

		if key < 0 || key >= size {
			return i, errors.WithFields(
				errors.WithStack(errInvalidIndex),
				errors.Fields{
					"index":        key,
					"values-count": size,
				})
		}

		dest[i] = d.values[key]
	}

	return len(dest), nil
}
