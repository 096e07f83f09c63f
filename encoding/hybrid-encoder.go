package encoding

import (
	"bytes"
	"encoding/binary"
	"io"
	"math/bits"

	"github.com/hexbee-net/errors"
)

// minRLERun is the shortest run worth encoding as an RLE run. Shorter runs go
// into bit-packed groups.
const minRLERun = 8

// HybridEncoder writes the RLE/bit-packing hybrid encoding:
//
//	run     := rle-run | bit-packed-run
//	rle-run := varint(count << 1) value(ceil(bw / 8) bytes LE)
//	bp-run  := varint(groups << 1 | 1) groups * bw bytes
//
// A bit-packed run may only be padded at the very end of the stream, the
// decoder stops once it produced the expected number of values.
type HybridEncoder struct {
	bitWidth int
	values   []int32

	packed *PackedArray
}

func NewHybridEncoder(bitWidth int) (*HybridEncoder, error) {
	packed := &PackedArray{}
	if err := packed.Reset(bitWidth); err != nil {
		return nil, err
	}

	return &HybridEncoder{
		bitWidth: bitWidth,
		packed:   packed,
	}, nil
}

// BitWidth returns the number of bits needed to represent v.
func BitWidth(v uint32) int {
	return bits.Len32(v)
}

func (e *HybridEncoder) AppendSingle(v int32) error {
	if bits.Len32(uint32(v)) > e.bitWidth {
		return errors.WithFields(
			errors.WithStack(errValueTooLarge),
			errors.Fields{
				"value":     v,
				"bit-width": e.bitWidth,
			})
	}

	e.values = append(e.values, v)

	return nil
}

func (e *HybridEncoder) Append(values []int32) error {
	for _, v := range values {
		if err := e.AppendSingle(v); err != nil {
			return err
		}
	}

	return nil
}

// Count returns the number of values appended.
func (e *HybridEncoder) Count() int {
	return len(e.values)
}

// Write encodes the appended values into writer.
func (e *HybridEncoder) Write(writer io.Writer) error {
	if writer == nil {
		return errors.WithStack(errNilWriter)
	}

	values := e.values

	for i := 0; i < len(values); {
		if e.packed.Count()%packedArrayBufSize == 0 {
			if run := runLength(values[i:]); run >= minRLERun {
				if err := e.flushPacked(writer); err != nil {
					return err
				}

				if err := e.writeRLE(writer, values[i], run); err != nil {
					return err
				}

				i += run

				continue
			}
		}

		e.packed.AppendSingle(values[i])
		i++
	}

	return e.flushPacked(writer)
}

// WriteSize encodes the appended values prefixed with their byte length as a
// 4 bytes little endian integer.
func (e *HybridEncoder) WriteSize(writer io.Writer) error {
	if writer == nil {
		return errors.WithStack(errNilWriter)
	}

	buf := &bytes.Buffer{}
	if err := e.Write(buf); err != nil {
		return err
	}

	if err := binary.Write(writer, binary.LittleEndian, uint32(buf.Len())); err != nil {
		return err
	}

	return WriteFull(writer, buf.Bytes())
}

func (e *HybridEncoder) writeRLE(w io.Writer, value int32, count int) error {
	if err := WriteUVarInt64(w, uint64(count)<<1); err != nil {
		return err
	}

	return writeIntLittleEndian(w, (e.bitWidth+7)/8, value)
}

func (e *HybridEncoder) flushPacked(w io.Writer) error {
	if e.packed.Count() == 0 {
		return nil
	}

	e.packed.Flush()

	header := uint64(e.packed.Groups())<<1 | 1
	if err := WriteUVarInt64(w, header); err != nil {
		return err
	}

	if err := e.packed.Write(w); err != nil {
		return err
	}

	return e.packed.Reset(e.bitWidth)
}

func runLength(values []int32) int {
	n := 1
	for n < len(values) && values[n] == values[0] {
		n++
	}

	return n
}
