package encoding

import (
	"encoding/binary"
	"io"
	"math/bits"

	"github.com/hexbee-net/errors"
)

type HybridDecoder struct {
	r io.Reader

	bitWidth     int
	unpackerFn   unpack8int32Func
	rleValueSize int

	bpRun [8]int32

	rleCount uint32
	rleValue int32

	bpCount  uint32
	bpRunPos uint8
}

func NewHybridDecoder(bitWidth int) (*HybridDecoder, error) {
	if bitWidth < 0 || bitWidth > MaxBitWidth32 {
		return nil, errors.WithFields(
			errors.WithStack(errInvalidBitWidth),
			errors.Fields{
				"bit-width": bitWidth,
			})
	}

	return &HybridDecoder{
		bitWidth:     bitWidth,
		unpackerFn:   unpack8Int32FuncByWidth[bitWidth],
		rleValueSize: (bitWidth + 7) / 8,
	}, nil
}

func (d *HybridDecoder) Init(reader io.Reader) error {
	if reader == nil {
		return errors.WithStack(errNilReader)
	}

	d.r = reader
	d.rleCount = 0
	d.bpCount = 0
	d.bpRunPos = 0

	return nil
}

// InitSize reads the 4 bytes length prefix written by HybridEncoder.WriteSize
// and limits the decoder to that many bytes.
func (d *HybridDecoder) InitSize(reader io.Reader) error {
	if reader == nil {
		return errors.WithStack(errNilReader)
	}

	var size uint32
	if err := binary.Read(reader, binary.LittleEndian, &size); err != nil {
		return errors.Wrap(err, "failed to read hybrid section size")
	}

	return d.Init(io.LimitReader(reader, int64(size)))
}

func (d *HybridDecoder) Next() (int32, error) {
	var next int32

	if d.r == nil {
		return 0, errors.New("reader is not initialized")
	}

	if d.rleCount == 0 && d.bpCount == 0 && d.bpRunPos == 0 {
		if err := d.readRunHeader(); err != nil {
			return 0, err
		}
	}

	switch {
	case d.rleCount > 0:
		next = d.rleValue
		d.rleCount--

	case d.bpCount > 0 || d.bpRunPos > 0:
		if d.bpRunPos == 0 {
			if err := d.readBitPackedRun(); err != nil {
				return 0, err
			}
			d.bpCount--
		}

		next = d.bpRun[d.bpRunPos]
		d.bpRunPos = (d.bpRunPos + 1) % 8

	default:
		return 0, io.EOF
	}

	return next, nil
}

// Decode reads exactly count values.
func (d *HybridDecoder) Decode(count int) ([]int32, error) {
	out := make([]int32, 0, min(count, decodeBatchSize))

	for i := 0; i < count; i++ {
		v, err := d.Next()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}

			return nil, errors.WithFields(
				errors.Wrap(err, "failed to read hybrid value"),
				errors.Fields{
					"index": i,
					"count": count,
				})
		}

		out = append(out, v)
	}

	return out, nil
}

func (d *HybridDecoder) readRunHeader() error {
	h, err := ReadUVarInt64(d.r)
	if err != nil {
		return err
	}

	// The lower bit indicates a bit-packed run.
	if h&1 == 1 {
		groups := h >> 1
		if groups == 0 {
			return errors.Wrap(errEmptyRun, "bit-packed run")
		}

		if groups > 1<<31 {
			return errors.WithFields(
				errors.WithStack(errOutOfRange),
				errors.Fields{
					"groups": groups,
				})
		}

		d.bpCount = uint32(groups)
		d.bpRunPos = 0

		return nil
	}

	count := h >> 1
	if count == 0 {
		return errors.Wrap(errEmptyRun, "rle run")
	}

	if count > 1<<31 {
		return errors.WithFields(
			errors.WithStack(errOutOfRange),
			errors.Fields{
				"count": count,
			})
	}

	d.rleCount = uint32(count)

	return d.readRLERunValue()
}

func (d *HybridDecoder) readBitPackedRun() error {
	data := make([]byte, d.bitWidth)

	if _, err := io.ReadFull(d.r, data); err != nil {
		return err
	}

	d.bpRun = d.unpackerFn(data)

	return nil
}

func (d *HybridDecoder) readRLERunValue() error {
	v, err := readIntLittleEndian(d.r, d.rleValueSize)
	if err != nil {
		return err
	}

	if bits.Len32(uint32(v)) > d.bitWidth {
		return errors.WithFields(
			errors.WithStack(errValueTooLarge),
			errors.Fields{
				"value":     v,
				"bit-width": d.bitWidth,
			})
	}

	d.rleValue = v

	return nil
}
