package encoding

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/hexbee-net/colfile/source/memory"
	"github.com/hexbee-net/errors"
	"github.com/stretchr/testify/require"
	"github.com/tj/assert"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("write failed")
}

func TestDeltaBinaryPackEncoder(t *testing.T) {
	t.Run("Init", TestDeltaBinaryPackEncoder_Init)
	t.Run("Init - NilWriter", TestDeltaBinaryPackEncoder_Init_NilWriter)
	t.Run("Init - InvalidBlockSize", TestDeltaBinaryPackEncoder_Init_InvalidBlockSize)
	t.Run("Init - InvalidBlockCount", TestDeltaBinaryPackEncoder_Init_InvalidBlockCount)
	t.Run("Close", TestDeltaBinaryPackEncoder_Close)
	t.Run("Close - WriteFail", TestDeltaBinaryPackEncoder_Close_WriteFail)
}

func TestDeltaBinaryPackEncoder_Init(t *testing.T) {
	t.Parallel()

	encoder := NewDeltaBinaryPackEncoder(128, 4)
	err := encoder.Init(memory.NewWriter(nil))

	assert.NoError(t, err)
}

func TestDeltaBinaryPackEncoder_Init_NilWriter(t *testing.T) {
	t.Parallel()

	encoder := NewDeltaBinaryPackEncoder(128, 4)

	err := encoder.Init(nil)

	assert.EqualError(t, errors.Cause(err), errNilWriter.Error())
}

func TestDeltaBinaryPackEncoder_Init_InvalidBlockSize(t *testing.T) {
	t.Parallel()

	for _, size := range []int{-1, 0, 129} {
		encoder := NewDeltaBinaryPackEncoder(size, 4)

		err := encoder.Init(memory.NewWriter(nil))

		assert.EqualError(t, errors.Cause(err), errInvalidBlockSize.Error())
	}
}

func TestDeltaBinaryPackEncoder_Init_InvalidBlockCount(t *testing.T) {
	t.Parallel()

	for _, count := range []int{-1, 3, 32} {
		encoder := NewDeltaBinaryPackEncoder(128, count)

		err := encoder.Init(memory.NewWriter(nil))

		assert.EqualError(t, errors.Cause(err), errInvalidMiniblockCount.Error())
	}
}

func TestDeltaBinaryPackEncoder_Close(t *testing.T) {
	t.Parallel()

	values := []int64{7, 5, 3, 1, 2, 3, 4, 5}

	writer := memory.NewWriter(nil)
	encoder := NewDeltaBinaryPackEncoder(128, 4)
	require.NoError(t, encoder.Init(writer))

	for _, v := range values {
		require.NoError(t, encoder.AddInt64(v))
	}

	require.NoError(t, encoder.Close())

	assert.Equal(t, []byte{
		128, 1, 4, 8, 14,
		3, 2, 0, 0, 0, 192, 63, 0, 0, 0, 0, 0, 0,
	}, writer.Bytes())
}

func TestDeltaBinaryPackEncoder_Close_WriteFail(t *testing.T) {
	t.Parallel()

	encoder := NewDeltaBinaryPackEncoder(128, 4)
	require.NoError(t, encoder.Init(failingWriter{}))

	err := encoder.Close()
	assert.EqualError(t, errors.Cause(err), "write failed")
}

func TestDeltaBinaryPack_RoundTrip(t *testing.T) {
	t.Parallel()

	long := make([]int64, 1000)
	for i := range long {
		long[i] = int64(i*i) - 5000
	}

	tests := []struct {
		name   string
		values []int64
	}{
		{name: "empty", values: []int64{}},
		{name: "single", values: []int64{42}},
		{name: "constant", values: []int64{3, 3, 3, 3, 3, 3, 3, 3, 3}},
		{name: "decreasing", values: []int64{100, 90, 80, 70, 60, 50, -1}},
		{name: "multi block", values: long},
		{name: "extremes", values: []int64{math.MinInt64, math.MaxInt64, 0, math.MinInt64, -1, math.MaxInt64}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			buf := &bytes.Buffer{}
			encoder := NewDeltaBinaryPackEncoder(DefaultDeltaBlockSize, DefaultDeltaMiniBlockCount)
			require.NoError(t, encoder.Init(buf))

			for _, v := range tt.values {
				require.NoError(t, encoder.AddInt64(v))
			}

			require.NoError(t, encoder.Close())

			reader := bytes.NewReader(buf.Bytes())
			decoder := &DeltaBinaryPackDecoder{}
			require.NoError(t, decoder.Init(reader))
			assert.Equal(t, int32(len(tt.values)), decoder.ValuesCount)

			got := make([]int64, 0, len(tt.values))
			for range tt.values {
				v, err := decoder.Next()
				require.NoError(t, err)
				got = append(got, v)
			}

			assert.Equal(t, tt.values, got)
			assert.Equal(t, 0, reader.Len())

			_, err := decoder.Next()
			assert.Equal(t, io.EOF, err)
		})
	}
}

func TestDeltaBinaryPackDecoder_NextInt32_OutOfRange(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	encoder := NewDeltaBinaryPackEncoder(128, 4)
	require.NoError(t, encoder.Init(buf))
	require.NoError(t, encoder.AddInt64(math.MaxInt32+1))
	require.NoError(t, encoder.Close())

	decoder := &DeltaBinaryPackDecoder{}
	require.NoError(t, decoder.Init(bytes.NewReader(buf.Bytes())))

	_, err := decoder.NextInt32()
	assert.EqualError(t, errors.Cause(err), errOutOfRange.Error())
}

func TestDeltaBinaryPackDecoder_Truncated(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	encoder := NewDeltaBinaryPackEncoder(128, 4)
	require.NoError(t, encoder.Init(buf))

	for i := int64(0); i < 20; i++ {
		require.NoError(t, encoder.AddInt64(i*7))
	}

	require.NoError(t, encoder.Close())

	data := buf.Bytes()[:buf.Len()-3]

	decoder := &DeltaBinaryPackDecoder{}
	require.NoError(t, decoder.Init(bytes.NewReader(data)))

	var err error
	for i := 0; i < 20 && err == nil; i++ {
		_, err = decoder.Next()
	}

	assert.Error(t, err)
}

func TestDeltaBinaryPackDecoder_InvalidHeader(t *testing.T) {
	t.Parallel()

	decoder := &DeltaBinaryPackDecoder{}

	err := decoder.Init(bytes.NewReader([]byte{3, 4, 8, 14}))
	assert.EqualError(t, errors.Cause(err), errInvalidBlockSize.Error())

	err = decoder.Init(bytes.NewReader([]byte{128, 1, 3, 8, 14}))
	assert.EqualError(t, errors.Cause(err), errInvalidMiniblockCount.Error())

	err = decoder.Init(nil)
	assert.EqualError(t, errors.Cause(err), errNilReader.Error())
}

func FuzzDeltaBinaryPackDecoder(f *testing.F) {
	f.Add([]byte{128, 1, 4, 8, 14, 3, 2, 0, 0, 0, 192, 63, 0, 0, 0, 0, 0, 0})
	f.Add([]byte{128, 1, 4, 0})

	f.Fuzz(func(t *testing.T, data []byte) {
		d := DeltaBinaryPackDecoder{}
		if err := d.Init(bytes.NewReader(data)); err != nil {
			return
		}

		for i := 0; i < len(data)*8; i++ {
			if _, err := d.Next(); err != nil {
				return
			}
		}
	})
}
