package encoding

import (
	"bytes"
	"io"
	"testing"

	"github.com/hexbee-net/errors"
	"github.com/stretchr/testify/require"
	"github.com/tj/assert"
)

func TestHybridDecoder_GroupBoundary(t *testing.T) {
	t.Parallel()

	b := []byte{
		(1 << 1) | 1,
		(1 << 0) | (2 << 2) | (3 << 4),
		0,
	}

	d, err := NewHybridDecoder(2)
	require.NoError(t, err)

	reader := bytes.NewReader(b)
	require.NoError(t, d.Init(reader))

	v, err := d.Next()
	assert.Equal(t, int32(1), v)
	assert.NoError(t, err)

	v, err = d.Next()
	assert.Equal(t, int32(2), v)
	assert.NoError(t, err)

	v, err = d.Next()
	assert.Equal(t, int32(3), v)
	assert.NoError(t, err)

	assert.Equal(t, 0, reader.Len())
}

func TestHybridDecoder_EmptyRun(t *testing.T) {
	t.Parallel()

	for _, header := range []byte{0, 1} {
		d, err := NewHybridDecoder(2)
		require.NoError(t, err)
		require.NoError(t, d.Init(bytes.NewReader([]byte{header, 0})))

		_, err = d.Next()
		assert.EqualError(t, errors.Cause(err), errEmptyRun.Error())
	}
}

func TestHybridDecoder_RLEValueTooLarge(t *testing.T) {
	t.Parallel()

	d, err := NewHybridDecoder(2)
	require.NoError(t, err)
	require.NoError(t, d.Init(bytes.NewReader([]byte{4 << 1, 7})))

	_, err = d.Next()
	assert.EqualError(t, errors.Cause(err), errValueTooLarge.Error())
}

func TestHybridDecoder_Decode_Truncated(t *testing.T) {
	t.Parallel()

	d, err := NewHybridDecoder(3)
	require.NoError(t, err)
	require.NoError(t, d.Init(bytes.NewReader([]byte{10 << 1, 2})))

	_, err = d.Decode(11)
	assert.EqualError(t, errors.Cause(err), io.ErrUnexpectedEOF.Error())
}

func TestHybridDecoder_InitSize_Truncated(t *testing.T) {
	t.Parallel()

	d, err := NewHybridDecoder(1)
	require.NoError(t, err)

	err = d.InitSize(bytes.NewReader([]byte{1, 0}))
	assert.Error(t, err)
}

func FuzzHybridDecoder(f *testing.F) {
	f.Add(3, []byte{200, 1, 4, 200, 1, 5})
	f.Add(2, []byte{3, 0b111001, 0})

	f.Fuzz(func(t *testing.T, bitWidth int, data []byte) {
		if bitWidth < 0 || bitWidth > MaxBitWidth32 {
			return
		}

		d, err := NewHybridDecoder(bitWidth)
		require.NoError(t, err)
		require.NoError(t, d.Init(bytes.NewReader(data)))

		_, _ = d.Decode(len(data) * 8)
	})
}
