package encoding

import (
	"bytes"
	"io"
	"math"
	"math/bits"

	"github.com/hexbee-net/errors"
)

const (
	DefaultDeltaBlockSize      = 128
	DefaultDeltaMiniBlockCount = 4
)

// DeltaBinaryPackEncoder writes integers as a first value followed by blocks
// of bit-packed deltas:
//
//	header := varint(block size) varint(mini block count) varint(count) zigzag(first value)
//	block  := zigzag(min delta) bit-widths(mini block count bytes) mini blocks
//
// Mini blocks that hold no value have a zero bit-width. Arithmetic wraps, so
// the full int64 range round trips.
type DeltaBinaryPackEncoder struct {
	w io.Writer

	blockSize           int
	miniBlockCount      int
	miniBlockValueCount int

	valuesCount   int
	firstValue    int64
	previousValue int64
	minDelta      int64
	deltas        []int64

	buffer *bytes.Buffer
}

func NewDeltaBinaryPackEncoder(blockSize, miniBlockCount int) *DeltaBinaryPackEncoder {
	return &DeltaBinaryPackEncoder{
		blockSize:      blockSize,
		miniBlockCount: miniBlockCount,
	}
}

func (e *DeltaBinaryPackEncoder) Init(writer io.Writer) error {
	if writer == nil {
		return errors.WithStack(errNilWriter)
	}

	if e.blockSize <= 0 || e.blockSize%128 != 0 {
		return errors.WithFields(
			errors.WithStack(errInvalidBlockSize),
			errors.Fields{
				"block-size": e.blockSize,
			})
	}

	if e.miniBlockCount <= 0 || e.blockSize%e.miniBlockCount != 0 || (e.blockSize/e.miniBlockCount)%8 != 0 {
		return errors.WithFields(
			errors.WithStack(errInvalidMiniblockCount),
			errors.Fields{
				"miniblock-count": e.miniBlockCount,
			})
	}

	e.w = writer
	e.miniBlockValueCount = e.blockSize / e.miniBlockCount
	e.valuesCount = 0
	e.firstValue = 0
	e.previousValue = 0
	e.minDelta = math.MaxInt64
	e.deltas = make([]int64, 0, e.blockSize)
	e.buffer = &bytes.Buffer{}

	return nil
}

func (e *DeltaBinaryPackEncoder) AddInt64(n int64) error {
	e.valuesCount++
	if e.valuesCount == 1 {
		e.firstValue = n
		e.previousValue = n

		return nil
	}

	delta := n - e.previousValue
	e.previousValue = n
	e.deltas = append(e.deltas, delta)

	if delta < e.minDelta {
		e.minDelta = delta
	}

	if len(e.deltas) == e.blockSize {
		return e.flush()
	}

	return nil
}

func (e *DeltaBinaryPackEncoder) AddInt32(n int32) error {
	return e.AddInt64(int64(n))
}

// Close flushes the pending block and writes the whole stream.
func (e *DeltaBinaryPackEncoder) Close() error {
	if len(e.deltas) > 0 {
		if err := e.flush(); err != nil {
			return err
		}
	}

	if err := WriteUVarInt64(e.w, uint64(e.blockSize)); err != nil {
		return err
	}

	if err := WriteUVarInt64(e.w, uint64(e.miniBlockCount)); err != nil {
		return err
	}

	if err := WriteUVarInt64(e.w, uint64(e.valuesCount)); err != nil {
		return err
	}

	if err := WriteVarInt64(e.w, e.firstValue); err != nil {
		return err
	}

	return WriteFull(e.w, e.buffer.Bytes())
}

func (e *DeltaBinaryPackEncoder) flush() error {
	// Deltas are stored relative to the block minimum. The subtraction may
	// wrap, the values are then reinterpreted as unsigned.
	for i := range e.deltas {
		e.deltas[i] -= e.minDelta
	}

	if err := WriteVarInt64(e.buffer, e.minDelta); err != nil {
		return err
	}

	widths := make([]byte, e.miniBlockCount)
	packed := make([][]byte, 0, e.miniBlockCount)

	for m := 0; m < e.miniBlockCount; m++ {
		start := m * e.miniBlockValueCount
		if start >= len(e.deltas) {
			break
		}

		end := start + e.miniBlockValueCount
		if end > len(e.deltas) {
			end = len(e.deltas)
		}

		var max uint64
		for _, d := range e.deltas[start:end] {
			if uint64(d) > max {
				max = uint64(d)
			}
		}

		bw := bits.Len64(max)
		widths[m] = byte(bw)

		groups := make([][8]int64, e.miniBlockValueCount/8)
		for j := start; j < end; j++ {
			t := j - start
			groups[t/8][t%8] = e.deltas[j]
		}

		data := make([]byte, 0, bw*len(groups))
		packer := pack8Int64FuncByWidth[bw]

		for j := range groups {
			data = append(data, packer(groups[j])...)
		}

		packed = append(packed, data)
	}

	if err := WriteFull(e.buffer, widths); err != nil {
		return err
	}

	for i := range packed {
		if err := WriteFull(e.buffer, packed[i]); err != nil {
			return err
		}
	}

	e.minDelta = math.MaxInt64
	e.deltas = e.deltas[:0]

	return nil
}
