package stats

import (
	"math"
	"strconv"
	"testing"

	"github.com/hexbee-net/colfile/format"
	"github.com/hexbee-net/colfile/types"
	"github.com/stretchr/testify/require"
	"github.com/tj/assert"
)

func TestCollector_Add(t *testing.T) {
	t.Parallel()

	c := NewCollector()
	for _, v := range []interface{}{int32(3), nil, int32(-7), int32(3), nil, int32(12)} {
		require.NoError(t, c.Add(v))
	}

	assert.Equal(t, int64(6), c.Count())
	assert.Equal(t, int64(2), c.NullCount())
	assert.Equal(t, int32(-7), c.Min())
	assert.Equal(t, int32(12), c.Max())
	assert.Equal(t, int64(3), c.DistinctCount())

	st, err := c.Statistics()
	require.NoError(t, err)

	min, err := types.DecodeStatValue(format.Type_INT32, st.Min)
	require.NoError(t, err)
	max, err := types.DecodeStatValue(format.Type_INT32, st.Max)
	require.NoError(t, err)

	assert.Equal(t, int32(-7), min)
	assert.Equal(t, int32(12), max)
	assert.Equal(t, int64(2), st.NullCount)
	assert.Equal(t, int64(3), st.DistinctCount)
}

func TestCollector_AllNulls(t *testing.T) {
	t.Parallel()

	c := NewCollector()
	require.NoError(t, c.Add(nil))
	require.NoError(t, c.Add(nil))

	st, err := c.Statistics()
	require.NoError(t, err)

	assert.False(t, st.HasMinMax())
	assert.Equal(t, int64(2), st.NullCount)
	assert.Equal(t, int64(0), st.DistinctCount)
}

func TestCollector_NaN(t *testing.T) {
	t.Parallel()

	c := NewCollector()
	for _, v := range []interface{}{math.NaN(), 1.5, -2.0, math.NaN()} {
		require.NoError(t, c.Add(v))
	}

	assert.Equal(t, -2.0, c.Min())
	assert.Equal(t, 1.5, c.Max())
	assert.Equal(t, int64(3), c.DistinctCount())
}

func TestCollector_InvalidValue(t *testing.T) {
	t.Parallel()

	c := NewCollector()
	assert.Error(t, c.Add("not a physical value"))
}

func TestCollector_Merge(t *testing.T) {
	t.Parallel()

	a := NewCollector()
	b := NewCollector()

	for _, v := range []string{"m", "c", "x"} {
		require.NoError(t, a.Add([]byte(v)))
	}

	for _, v := range []string{"b", "c"} {
		require.NoError(t, b.Add([]byte(v)))
	}

	require.NoError(t, b.Add(nil))

	a.Merge(b)

	assert.Equal(t, int64(6), a.Count())
	assert.Equal(t, int64(1), a.NullCount())
	assert.Equal(t, []byte("b"), a.Min())
	assert.Equal(t, []byte("x"), a.Max())
	assert.Equal(t, int64(4), a.DistinctCount())
}

func TestSketch_Estimate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		distinct int
		repeat   int
	}{
		{name: "empty", distinct: 0, repeat: 1},
		{name: "small", distinct: 100, repeat: 3},
		{name: "exact limit", distinct: exactLimit, repeat: 2},
		{name: "large", distinct: 100000, repeat: 1},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := NewSketch()
			for r := 0; r < tt.repeat; r++ {
				for i := 0; i < tt.distinct; i++ {
					s.AddBytes([]byte(strconv.Itoa(i)))
				}
			}

			got := s.Estimate()
			if tt.distinct <= exactLimit {
				assert.Equal(t, int64(tt.distinct), got)

				return
			}

			// A 16384 registers HyperLogLog has a standard error of about 0.8%.
			assert.InEpsilon(t, float64(tt.distinct), float64(got), 0.08)
		})
	}
}

func TestSketch_Merge(t *testing.T) {
	t.Parallel()

	a := NewSketch()
	b := NewSketch()

	for i := 0; i < 50000; i++ {
		a.AddBytes([]byte(strconv.Itoa(i)))
	}

	for i := 25000; i < 30000; i++ {
		b.AddBytes([]byte(strconv.Itoa(i)))
	}

	b.Merge(a)
	a.Merge(nil)

	assert.InEpsilon(t, 50000.0, float64(b.Estimate()), 0.08)
	assert.Equal(t, a.Estimate(), b.Estimate())
}
