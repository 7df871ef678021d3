package diag

import (
	"math"

	"github.com/onnwee/gravity-sim/internal/phys"
)

// EntropyGrid accumulates body positions into an occupancy grid and
// reports the normalized Shannon entropy of the distribution. Samples
// accumulate across steps until Reset.
type EntropyGrid struct {
	size    int
	minX    float64
	minY    float64
	invDx   float64
	invDy   float64
	counts  []int
	samples int
}

// NewEntropyGrid creates a size x size grid over the given extent.
func NewEntropyGrid(size int, minX, maxX, minY, maxY float64) *EntropyGrid {
	return &EntropyGrid{
		size:   size,
		minX:   minX,
		minY:   minY,
		invDx:  float64(size) / (maxX - minX),
		invDy:  float64(size) / (maxY - minY),
		counts: make([]int, size*size),
	}
}

// Update bins the bodies' current positions; positions outside the extent
// are ignored.
func (e *EntropyGrid) Update(bodies []phys.Body) {
	for k := range bodies {
		p := bodies[k].Pos
		i := int(math.Floor((p[0] - e.minX) * e.invDx))
		j := int(math.Floor((p[1] - e.minY) * e.invDy))
		if i >= 0 && i < e.size && j >= 0 && j < e.size {
			e.counts[i*e.size+j]++
			e.samples++
		}
	}
}

// Normalized returns the Shannon entropy of the occupancy distribution
// scaled into [0, 1] by the maximum (uniform) entropy.
func (e *EntropyGrid) Normalized() float64 {
	if e.samples == 0 {
		return 0
	}
	var entropy float64
	total := float64(e.samples)
	for _, c := range e.counts {
		if c > 0 {
			p := float64(c) / total
			entropy -= p * math.Log(p)
		}
	}
	max := math.Log(float64(e.size * e.size))
	if max <= 0 {
		return 0
	}
	return entropy / max
}

// Reset clears the accumulated counts.
func (e *EntropyGrid) Reset() {
	for i := range e.counts {
		e.counts[i] = 0
	}
	e.samples = 0
}
