package encoding

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func FuzzHybridRoundTrip(f *testing.F) {
	f.Add(uint8(1), []byte{0, 1, 1, 1, 0, 0, 0, 0, 1})
	f.Add(uint8(7), []byte{0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 3, 4})
	f.Add(uint8(32), []byte{0xff, 0xff, 0xff, 0xff, 0, 0, 0, 0})

	f.Fuzz(func(t *testing.T, width uint8, data []byte) {
		bitWidth := int(width % (MaxBitWidth32 + 1))

		mask := int32(-1)
		if bitWidth < 32 {
			mask = int32(uint32(1)<<uint(bitWidth) - 1)
		}

		values := make([]int32, len(data)/4)
		for i := range values {
			values[i] = int32(binary.LittleEndian.Uint32(data[i*4:])) & mask
		}

		enc, err := NewHybridEncoder(bitWidth)
		require.NoError(t, err)
		require.NoError(t, enc.Append(values))

		buf := &bytes.Buffer{}
		require.NoError(t, enc.Write(buf))

		dec, err := NewHybridDecoder(bitWidth)
		require.NoError(t, err)
		require.NoError(t, dec.Init(bytes.NewReader(buf.Bytes())))

		got, err := dec.Decode(len(values))
		require.NoError(t, err)
		require.Equal(t, values, got)
	})
}

func FuzzHybridDecoderCorrupt(f *testing.F) {
	f.Add(uint8(1), uint8(8), []byte{0x10, 0x01})
	f.Add(uint8(3), uint8(16), []byte{0x05, 0xff, 0xff, 0xff})

	f.Fuzz(func(t *testing.T, width, count uint8, data []byte) {
		dec, err := NewHybridDecoder(int(width % (MaxBitWidth32 + 1)))
		require.NoError(t, err)
		require.NoError(t, dec.Init(bytes.NewReader(data)))

		// Corrupt input returns an error, it never panics.
		_, _ = dec.Decode(int(count))
	})
}

func FuzzDeltaBinaryPackRoundTrip(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{1, 0, 0, 0, 0, 0, 0, 0, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f})

	f.Fuzz(func(t *testing.T, data []byte) {
		values := make([]int64, len(data)/8)
		for i := range values {
			values[i] = int64(binary.LittleEndian.Uint64(data[i*8:]))
		}

		buf := &bytes.Buffer{}

		enc := NewDeltaBinaryPackEncoder(DefaultDeltaBlockSize, DefaultDeltaMiniBlockCount)
		require.NoError(t, enc.Init(buf))

		for _, v := range values {
			require.NoError(t, enc.AddInt64(v))
		}

		require.NoError(t, enc.Close())

		dec := &DeltaBinaryPackDecoder{}
		require.NoError(t, dec.Init(bytes.NewReader(buf.Bytes())))
		require.Equal(t, int32(len(values)), dec.ValuesCount)

		for i, want := range values {
			got, err := dec.Next()
			require.NoError(t, err)
			require.Equal(t, want, got, "value %d", i)
		}
	})
}

func FuzzDeltaBinaryPackDecoderCorrupt(f *testing.F) {
	f.Add([]byte{0x80, 0x01, 0x04, 0x03, 0x02, 0x00})

	f.Fuzz(func(t *testing.T, data []byte) {
		dec := &DeltaBinaryPackDecoder{}
		if err := dec.Init(bytes.NewReader(data)); err != nil {
			return
		}

		for i := int32(0); i < dec.ValuesCount && i < 1<<12; i++ {
			if _, err := dec.Next(); err != nil {
				return
			}
		}
	})
}
