package encoding

import (
	"io"

	"github.com/hexbee-net/errors"
)

// maxDeltaBlockSize caps the block size accepted from a stream, a corrupt
// header must not trigger huge allocations.
const maxDeltaBlockSize = 1 << 16

type DeltaBinaryPackDecoder struct {
	r io.Reader

	blockSize           int32
	miniBlockCount      int32
	miniBlockValueCount int32
	ValuesCount         int32

	position      int32
	previousValue int64
	minDelta      int64

	miniBlockBitWidth []uint8
	currentMiniBlock  int32
	miniBlock         []int64
	miniBlockPos      int32
}

func (d *DeltaBinaryPackDecoder) Init(reader io.Reader) (err error) {
	if reader == nil {
		return errors.WithStack(errNilReader)
	}

	d.r = reader
	d.position = 0

	if d.blockSize, err = ReadUVarInt32(d.r); err != nil {
		return errors.Wrap(err, "failed to read block size")
	}

	if d.blockSize <= 0 || d.blockSize%128 != 0 || d.blockSize > maxDeltaBlockSize {
		return errors.WithFields(
			errors.WithStack(errInvalidBlockSize),
			errors.Fields{
				"block-size": d.blockSize,
			})
	}

	if d.miniBlockCount, err = ReadUVarInt32(d.r); err != nil {
		return errors.Wrap(err, "failed to read number of mini blocks")
	}

	if d.miniBlockCount <= 0 || d.blockSize%d.miniBlockCount != 0 || (d.blockSize/d.miniBlockCount)%8 != 0 {
		return errors.WithFields(
			errors.WithStack(errInvalidMiniblockCount),
			errors.Fields{
				"miniblock-count": d.miniBlockCount,
			})
	}

	d.miniBlockValueCount = d.blockSize / d.miniBlockCount
	d.miniBlock = make([]int64, d.miniBlockValueCount)
	d.miniBlockBitWidth = make([]uint8, d.miniBlockCount)
	d.currentMiniBlock = d.miniBlockCount
	d.miniBlockPos = d.miniBlockValueCount

	if d.ValuesCount, err = ReadUVarInt32(d.r); err != nil {
		return errors.Wrap(err, "failed to read total value count")
	}

	if d.previousValue, err = ReadVarInt64(d.r); err != nil {
		return errors.Wrap(err, "failed to read first value")
	}

	return nil
}

func (d *DeltaBinaryPackDecoder) Next() (int64, error) {
	if d.r == nil {
		return 0, errors.New("reader is not initialized")
	}

	if d.position >= d.ValuesCount {
		return 0, io.EOF
	}

	ret := d.previousValue
	d.position++

	// Deltas are read one value ahead, the last value has no delta.
	if d.position < d.ValuesCount {
		delta, err := d.nextDelta()
		if err != nil {
			return 0, err
		}

		d.previousValue += delta
	}

	return ret, nil
}

func (d *DeltaBinaryPackDecoder) NextInt32() (int32, error) {
	v, err := d.Next()
	if err != nil {
		return 0, err
	}

	if int64(int32(v)) != v {
		return 0, errors.WithFields(
			errors.WithStack(errOutOfRange),
			errors.Fields{
				"value": v,
			})
	}

	return int32(v), nil
}

func (d *DeltaBinaryPackDecoder) nextDelta() (int64, error) {
	if d.miniBlockPos >= d.miniBlockValueCount {
		if d.currentMiniBlock >= d.miniBlockCount {
			if err := d.readBlockHeader(); err != nil {
				return 0, err
			}
		}

		if err := d.readMiniBlock(); err != nil {
			return 0, err
		}
	}

	delta := d.miniBlock[d.miniBlockPos] + d.minDelta
	d.miniBlockPos++

	return delta, nil
}

func (d *DeltaBinaryPackDecoder) readBlockHeader() (err error) {
	if d.minDelta, err = ReadVarInt64(d.r); err != nil {
		return errors.Wrap(err, "failed to read min delta")
	}

	if _, err := io.ReadFull(d.r, d.miniBlockBitWidth); err != nil {
		return errors.Wrap(err, "not enough data to read all miniblock bit widths")
	}

	for i, bw := range d.miniBlockBitWidth {
		if bw > MaxBitWidth64 {
			return errors.WithFields(
				errors.WithStack(errInvalidBitWidth),
				errors.Fields{
					"miniblock-index": i,
					"bit-width":       bw,
				})
		}
	}

	d.currentMiniBlock = 0

	return nil
}

func (d *DeltaBinaryPackDecoder) readMiniBlock() error {
	bw := int(d.miniBlockBitWidth[d.currentMiniBlock])
	unpack := unpack8Int64FuncByWidth[bw]

	buf := make([]byte, bw)
	for g := int32(0); g < d.miniBlockValueCount/8; g++ {
		if _, err := io.ReadFull(d.r, buf); err != nil {
			return errors.Wrap(err, "failed to read mini block")
		}

		values := unpack(buf)
		copy(d.miniBlock[g*8:], values[:])
	}

	d.currentMiniBlock++
	d.miniBlockPos = 0

	return nil
}
