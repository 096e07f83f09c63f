// Package stats computes column statistics and decides, from statistics
// alone, whether a predicate may match any value of a page or column chunk.
package stats

import (
	"github.com/hexbee-net/colfile/format"
	"github.com/hexbee-net/colfile/types"
)

// Collector accumulates the statistics of a stream of physical values.
type Collector struct {
	min, max interface{}
	values   int64
	nulls    int64
	sketch   *Sketch
}

func NewCollector() *Collector {
	return &Collector{
		sketch: NewSketch(),
	}
}

// Add records a physical value, nil being the null value.
func (c *Collector) Add(v interface{}) error {
	c.values++

	if v == nil {
		c.nulls++

		return nil
	}

	b, err := types.EncodeStatValue(v)
	if err != nil {
		return err
	}

	c.sketch.AddBytes(b)

	// NaN never satisfies a comparison, it is left out of the bounds.
	if types.IsNaN(v) {
		return nil
	}

	if c.min == nil || types.Compare(v, c.min) < 0 {
		c.min = v
	}

	if c.max == nil || types.Compare(v, c.max) > 0 {
		c.max = v
	}

	return nil
}

// Merge adds the values seen by other.
func (c *Collector) Merge(other *Collector) {
	c.values += other.values
	c.nulls += other.nulls
	c.sketch.Merge(other.sketch)

	if other.min != nil && (c.min == nil || types.Compare(other.min, c.min) < 0) {
		c.min = other.min
	}

	if other.max != nil && (c.max == nil || types.Compare(other.max, c.max) > 0) {
		c.max = other.max
	}
}

func (c *Collector) Count() int64 {
	return c.values
}

func (c *Collector) NullCount() int64 {
	return c.nulls
}

func (c *Collector) Min() interface{} {
	return c.min
}

func (c *Collector) Max() interface{} {
	return c.max
}

// DistinctCount returns the estimated number of distinct non null values.
func (c *Collector) DistinctCount() int64 {
	return c.sketch.Estimate()
}

// Statistics returns the serialized statistics.
func (c *Collector) Statistics() (*format.Statistics, error) {
	s := &format.Statistics{
		NullCount:     c.nulls,
		DistinctCount: c.DistinctCount(),
	}

	if c.min != nil {
		var err error

		if s.Min, err = types.EncodeStatValue(c.min); err != nil {
			return nil, err
		}

		if s.Max, err = types.EncodeStatValue(c.max); err != nil {
			return nil, err
		}
	}

	return s, nil
}
