package stats

import (
	"github.com/axiomhq/hyperloglog"
	"github.com/cespare/xxhash/v2"
)

// exactLimit is the number of distinct hashes kept before switching to the
// HyperLogLog sketch.
const exactLimit = 2048

// Sketch estimates the number of distinct values it has seen. Small sets
// are counted exactly, larger ones with a HyperLogLog of 16384 registers.
type Sketch struct {
	exact map[uint64]struct{}
	hll   *hyperloglog.Sketch
}

func NewSketch() *Sketch {
	return &Sketch{
		exact: make(map[uint64]struct{}),
	}
}

// AddBytes records the value identified by b.
func (s *Sketch) AddBytes(b []byte) {
	s.AddHash(xxhash.Sum64(b))
}

func (s *Sketch) AddHash(h uint64) {
	if s.hll == nil {
		s.exact[h] = struct{}{}
		if len(s.exact) > exactLimit {
			s.toHLL()
		}

		return
	}

	s.hll.InsertHash(h)
}

// Merge adds every value seen by other.
func (s *Sketch) Merge(other *Sketch) {
	if other == nil {
		return
	}

	if other.hll == nil {
		for h := range other.exact {
			s.AddHash(h)
		}

		return
	}

	if s.hll == nil {
		s.toHLL()
	}

	// Both sketches use the same precision, Merge can not fail.
	_ = s.hll.Merge(other.hll)
}

// Estimate returns the approximate number of distinct values.
func (s *Sketch) Estimate() int64 {
	if s.hll == nil {
		return int64(len(s.exact))
	}

	return int64(s.hll.Estimate())
}

func (s *Sketch) toHLL() {
	s.hll = hyperloglog.NewNoSparse()

	for h := range s.exact {
		s.hll.InsertHash(h)
	}

	s.exact = nil
}
