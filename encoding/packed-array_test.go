package encoding

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/hexbee-net/errors"
	"github.com/stretchr/testify/require"
	"github.com/tj/assert"
)

func newPackedArray(t *testing.T, bitWidth int, values ...int32) *PackedArray {
	t.Helper()

	a := &PackedArray{}
	require.NoError(t, a.Reset(bitWidth))

	for _, v := range values {
		a.AppendSingle(v)
	}

	return a
}

func TestPackedArray_Reset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bitWidth int
		invalid  bool
	}{
		{bitWidth: -1, invalid: true},
		{bitWidth: 0},
		{bitWidth: 1},
		{bitWidth: 17},
		{bitWidth: MaxBitWidth32},
		{bitWidth: MaxBitWidth32 + 1, invalid: true},
		{bitWidth: 48, invalid: true},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(strconv.Itoa(tt.bitWidth), func(t *testing.T) {
			t.Parallel()

			a := PackedArray{}
			err := a.Reset(tt.bitWidth)

			if tt.invalid {
				assert.EqualError(t, errors.Cause(err), errInvalidBitWidth.Error())

				return
			}

			require.NoError(t, err)
			assert.Equal(t, 0, a.Count())
			assert.Equal(t, 0, a.Groups())
		})
	}
}

func TestPackedArray_Reset_Reuse(t *testing.T) {
	t.Parallel()

	a := newPackedArray(t, 4, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	a.Flush()

	require.NoError(t, a.Reset(2))
	assert.Equal(t, 0, a.Count())
	assert.Equal(t, 0, a.Groups())

	buf := &bytes.Buffer{}
	require.NoError(t, a.Write(buf))
	assert.Equal(t, 0, buf.Len())

	_, err := a.At(0)
	assert.EqualError(t, errors.Cause(err), errOutOfRange.Error())
}

func TestPackedArray_CountGroups(t *testing.T) {
	t.Parallel()

	tests := []struct {
		count  int
		groups int
	}{
		{count: 0, groups: 0},
		{count: 1, groups: 1},
		{count: 7, groups: 1},
		{count: 8, groups: 1},
		{count: 9, groups: 2},
		{count: 17, groups: 3},
		{count: 64, groups: 8},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(strconv.Itoa(tt.count), func(t *testing.T) {
			t.Parallel()

			a := newPackedArray(t, 5)
			for i := 0; i < tt.count; i++ {
				a.AppendSingle(int32(i % 32))
			}

			assert.Equal(t, tt.count, a.Count())
			assert.Equal(t, tt.groups, a.Groups())

			a.Flush()

			buf := &bytes.Buffer{}
			require.NoError(t, a.Write(buf))
			assert.Equal(t, tt.groups*5, buf.Len())
		})
	}
}

func TestPackedArray_At(t *testing.T) {
	t.Parallel()

	for _, bitWidth := range []int{0, 1, 3, 8, 13, MaxBitWidth32} {
		bitWidth := bitWidth

		t.Run(strconv.Itoa(bitWidth), func(t *testing.T) {
			t.Parallel()

			mask := int32(-1)
			if bitWidth < 32 {
				mask = int32(uint32(1)<<uint(bitWidth) - 1)
			}

			var values []int32
			for i := 0; i < 21; i++ {
				values = append(values, int32(i*7919)&mask)
			}

			a := newPackedArray(t, bitWidth, values...)

			check := func() {
				for i, want := range values {
					got, err := a.At(i)
					require.NoError(t, err)
					assert.Equal(t, want, got, "value %d", i)
				}
			}

			// The last group is still pending.
			check()

			a.Flush()
			check()
		})
	}
}

func TestPackedArray_At_OutOfRange(t *testing.T) {
	t.Parallel()

	a := newPackedArray(t, 8, 1, 2, 3)

	for _, pos := range []int{-1, 3, 100} {
		v, err := a.At(pos)
		assert.EqualError(t, errors.Cause(err), errOutOfRange.Error())
		assert.Zero(t, v)
	}
}

func TestPackedArray_AppendArray(t *testing.T) {
	t.Parallel()

	src := newPackedArray(t, 6, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11)
	dst := newPackedArray(t, 6, 63)

	require.NoError(t, dst.AppendArray(src))
	assert.Equal(t, 12, dst.Count())
	assert.Equal(t, 2, dst.Groups())

	for i := 0; i < dst.Count(); i++ {
		v, err := dst.At(i)
		require.NoError(t, err)

		if i == 0 {
			assert.Equal(t, int32(63), v)

			continue
		}

		assert.Equal(t, int32(i), v)
	}
}

func TestPackedArray_AppendArray_Errors(t *testing.T) {
	t.Parallel()

	a := newPackedArray(t, 32)

	err := a.AppendArray(nil)
	assert.EqualError(t, errors.Cause(err), "source array is nil")

	err = a.AppendArray(newPackedArray(t, 16, 1))
	assert.EqualError(t, errors.Cause(err), "cannot append array with different bit-width")
	assert.Equal(t, 0, a.Count())
}

func TestPackedArray_Write(t *testing.T) {
	t.Parallel()

	a := newPackedArray(t, 3, 0, 1, 2, 3, 4, 5, 6, 7)
	a.Flush()

	buf := &bytes.Buffer{}
	require.NoError(t, a.Write(buf))
	assert.Equal(t, []byte{0b10001000, 0b11000110, 0b11111010}, buf.Bytes())
}

func TestPackedArray_Write_Padding(t *testing.T) {
	t.Parallel()

	a := newPackedArray(t, 8, 1, 2, 3)
	a.Flush()

	buf := &bytes.Buffer{}
	require.NoError(t, a.Write(buf))
	assert.Equal(t, []byte{1, 2, 3, 0, 0, 0, 0, 0}, buf.Bytes())
}
