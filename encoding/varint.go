package encoding

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/hexbee-net/errors"
)

type byteReader struct {
	io.Reader
}

func (r byteReader) ReadByte() (byte, error) {
	buf := make([]byte, 1)
	if _, err := io.ReadFull(r.Reader, buf); err != nil {
		return 0, err
	}

	return buf[0], nil
}

func asByteReader(r io.Reader) io.ByteReader {
	if b, ok := r.(io.ByteReader); ok {
		return b
	}

	return &byteReader{Reader: r}
}

// ReadUVarInt32 reads an unsigned varint that must fit in an int32.
func ReadUVarInt32(r io.Reader) (int32, error) {
	i, err := binary.ReadUvarint(asByteReader(r))
	if err != nil {
		return 0, err
	}

	if i > math.MaxInt32 {
		return 0, errors.WithFields(
			errors.WithStack(errOutOfRange),
			errors.Fields{
				"value": i,
			})
	}

	return int32(i), nil
}

// ReadUVarInt64 reads an unsigned varint.
func ReadUVarInt64(r io.Reader) (uint64, error) {
	return binary.ReadUvarint(asByteReader(r))
}

// ReadVarInt64 reads a zigzag encoded varint.
func ReadVarInt64(r io.Reader) (int64, error) {
	return binary.ReadVarint(asByteReader(r))
}

// WriteVarInt64 writes a zigzag encoded varint.
func WriteVarInt64(w io.Writer, in int64) error {
	buf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutVarint(buf, in)

	return WriteFull(w, buf[:n])
}

// WriteUVarInt64 writes an unsigned varint.
func WriteUVarInt64(w io.Writer, in uint64) error {
	buf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(buf, in)

	return WriteFull(w, buf[:n])
}

// WriteFull writes the whole buffer or fails.
func WriteFull(w io.Writer, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}

	cnt, err := w.Write(buf)
	if err != nil {
		return err
	}

	if cnt != len(buf) {
		return errors.WithFields(
			errors.New("invalid number of bytes written"),
			errors.Fields{
				"expected": len(buf),
				"actual":   cnt,
			})
	}

	return nil
}

func readIntLittleEndian(r io.Reader, size int) (int32, error) {
	b := make([]byte, size)
	if _, err := io.ReadFull(r, b); err != nil {
		return 0, err
	}

	var v uint32
	for i := size - 1; i >= 0; i-- {
		v = v<<8 | uint32(b[i])
	}

	return int32(v), nil
}

func writeIntLittleEndian(w io.Writer, size int, in int32) error {
	b := make([]byte, size)
	for i := range b {
		b[i] = byte(uint32(in) >> (8 * uint(i)))
	}

	return WriteFull(w, b)
}
