package encoding

import (
	"io"

	"github.com/hexbee-net/errors"
)

const packedArrayBufSize = 8

// PackedArray is an append only array of small integers stored bit-packed,
// 8 values per group. It backs the bit-packed runs of the hybrid encoder.
type PackedArray struct {
	count int
	bw    int
	data  []byte

	buf    [packedArrayBufSize]int32
	bufPos int

	writer pack8int32Func
	reader unpack8int32Func
}

// Reset empties the array and sets its bit-width.
func (a *PackedArray) Reset(bitWidth int) error {
	if bitWidth < 0 || bitWidth > MaxBitWidth32 {
		return errors.WithFields(
			errors.WithStack(errInvalidBitWidth),
			errors.Fields{
				"bit-width": bitWidth,
			})
	}

	a.bw = bitWidth
	a.count = 0
	a.bufPos = 0
	a.data = a.data[:0]
	a.writer = pack8Int32FuncByWidth[bitWidth]
	a.reader = unpack8Int32FuncByWidth[bitWidth]

	return nil
}

// Flush packs the pending values, padding the group with zeros.
func (a *PackedArray) Flush() {
	if a.bufPos == 0 {
		return
	}

	for i := a.bufPos; i < packedArrayBufSize; i++ {
		a.buf[i] = 0
	}

	a.data = append(a.data, a.writer(a.buf)...)
	a.bufPos = 0
}

func (a *PackedArray) AppendSingle(v int32) {
	if a.bufPos == packedArrayBufSize {
		a.Flush()
	}

	a.buf[a.bufPos] = v
	a.bufPos++
	a.count++
}

func (a *PackedArray) AppendArray(other *PackedArray) error {
	if other == nil {
		return errors.New("source array is nil")
	}

	if a.bw != other.bw {
		return errors.WithFields(
			errors.New("cannot append array with different bit-width"),
			errors.Fields{
				"this":  a.bw,
				"other": other.bw,
			})
	}

	for i := 0; i < other.count; i++ {
		v, err := other.At(i)
		if err != nil {
			return err
		}

		a.AppendSingle(v)
	}

	return nil
}

// Count returns the number of values appended since the last reset.
func (a *PackedArray) Count() int {
	return a.count
}

// Groups returns the number of 8 values groups needed to hold the array.
func (a *PackedArray) Groups() int {
	return (a.count + packedArrayBufSize - 1) / packedArrayBufSize
}

// Write writes the packed groups. Pending values must be flushed first.
func (a *PackedArray) Write(writer io.Writer) error {
	return WriteFull(writer, a.data)
}

func (a *PackedArray) At(pos int) (int32, error) {
	if pos < 0 || pos >= a.count {
		return 0, errors.WithFields(
			errors.WithStack(errOutOfRange),
			errors.Fields{
				"pos":   pos,
				"count": a.count,
			})
	}

	if a.bw == 0 {
		return 0, nil
	}

	block := (pos / packedArrayBufSize) * a.bw
	idx := pos % packedArrayBufSize

	if block >= len(a.data) {
		return a.buf[idx], nil
	}

	buf := a.reader(a.data[block : block+a.bw])

	return buf[idx], nil
}
