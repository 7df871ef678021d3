package solver

import (
	"github.com/onnwee/gravity-sim/internal/direct"
	"github.com/onnwee/gravity-sim/internal/fmm"
	"github.com/onnwee/gravity-sim/internal/par"
	"github.com/onnwee/gravity-sim/internal/phys"
	"github.com/onnwee/gravity-sim/internal/quadtree"
)

// Engine is the capability the solver needs from a force engine: rebuild
// from a body snapshot, then set per-body accelerations, optionally
// evaluate the potential at a point. Engines are queried read-only between
// builds, so Accelerate may run its per-body work in parallel.
type Engine interface {
	Name() string
	Build(bodies []phys.Body) error
	Accelerate(bodies []phys.Body)
	PotentialAt(p phys.Vec) (float64, bool)
	// Excluded reports how many bodies the last Build left outside the
	// universe.
	Excluded() int
}

// BHEngine runs force queries against a Barnes-Hut quadtree rebuilt every
// step.
type BHEngine struct {
	Universe  quadtree.Quad
	Theta     float64
	MaxDepth  int
	MaxLeaves int
	Softening float64
	G         float64
	Workers   int

	tree     *quadtree.BHTree
	excluded int
}

// Name implements Engine.
func (e *BHEngine) Name() string { return "bh" }

// Build inserts every in-universe body into a fresh tree.
func (e *BHEngine) Build(bodies []phys.Body) error {
	tree := quadtree.NewBHTree(e.Universe, e.MaxDepth, e.MaxLeaves)
	e.excluded = 0
	for i := range bodies {
		if e.Universe.Contains(bodies[i].Pos) {
			tree.Insert(bodies[i])
		} else {
			e.excluded++
		}
	}
	e.tree = tree
	return nil
}

// Accelerate resets and recomputes every body's acceleration. Bodies
// outside the universe keep zero acceleration for the step.
func (e *BHEngine) Accelerate(bodies []phys.Body) {
	par.ForEach(len(bodies), e.Workers, func(i int) {
		b := &bodies[i]
		b.ResetAcceleration()
		if !e.Universe.Contains(b.Pos) {
			return
		}
		e.tree.UpdateForce(b, e.Theta, e.G, e.Softening)
	})
}

// PotentialAt evaluates the Newtonian potential under the same opening
// criterion.
func (e *BHEngine) PotentialAt(p phys.Vec) (float64, bool) {
	if e.tree == nil {
		return 0, false
	}
	return e.tree.PotentialAt(p, e.Theta, e.G), true
}

// Excluded implements Engine.
func (e *BHEngine) Excluded() int { return e.excluded }

// FMMEngine runs force queries against a balanced FMM tree rebuilt every
// step; expansion coefficients are never updated incrementally.
type FMMEngine struct {
	Universe     quadtree.Quad
	ItemsPerCell int
	Eps          float64
	Softening    float64
	G            float64
	Workers      int

	tree     *fmm.Tree
	excluded int
}

// Name implements Engine.
func (e *FMMEngine) Name() string { return "fmm" }

// Build constructs the balanced tree over the in-universe bodies.
func (e *FMMEngine) Build(bodies []phys.Body) error {
	included := make([]phys.Body, 0, len(bodies))
	for i := range bodies {
		if e.Universe.Contains(bodies[i].Pos) {
			included = append(included, bodies[i])
		}
	}
	e.excluded = len(bodies) - len(included)
	if len(included) == 0 {
		e.tree = nil
		return nil
	}
	tree, err := fmm.NewTree(included, fmm.Params{
		ItemsPerCell: e.ItemsPerCell,
		Eps:          e.Eps,
		Soft:         e.Softening,
		Workers:      e.Workers,
	})
	if err != nil {
		return err
	}
	e.tree = tree
	return nil
}

// Accelerate sets a_i = G * field(x_i); the body's own contribution is
// excluded by the kernel's coincidence guard.
func (e *FMMEngine) Accelerate(bodies []phys.Body) {
	par.ForEach(len(bodies), e.Workers, func(i int) {
		b := &bodies[i]
		b.ResetAcceleration()
		if e.tree == nil || !e.Universe.Contains(b.Pos) {
			return
		}
		a := e.tree.EvaluateForcefield(b.Pos).Scale(e.G)
		if a.IsFinite() {
			b.Acc = a
		}
	})
}

// PotentialAt evaluates the planar potential at p.
func (e *FMMEngine) PotentialAt(p phys.Vec) (float64, bool) {
	if e.tree == nil {
		return 0, false
	}
	return e.G * e.tree.EvaluatePotential(p), true
}

// Excluded implements Engine.
func (e *FMMEngine) Excluded() int { return e.excluded }

// DirectEngine is the O(N^2) oracle used as a substitute engine for small
// N, with the same Newtonian kernel as the Barnes-Hut tree.
type DirectEngine struct {
	Universe  quadtree.Quad
	G         float64
	Softening float64
	Workers   int

	snapshot []phys.Body
	index    []int // snapshot position of each body, -1 if excluded
	accel    []phys.Vec
	excluded int
}

// Name implements Engine.
func (e *DirectEngine) Name() string { return "direct" }

// Build snapshots the in-universe bodies and computes all pairwise
// accelerations once.
func (e *DirectEngine) Build(bodies []phys.Body) error {
	e.snapshot = e.snapshot[:0]
	e.index = make([]int, len(bodies))
	for i := range bodies {
		if e.Universe.Contains(bodies[i].Pos) {
			e.index[i] = len(e.snapshot)
			e.snapshot = append(e.snapshot, bodies[i])
		} else {
			e.index[i] = -1
		}
	}
	e.excluded = len(bodies) - len(e.snapshot)
	e.accel = direct.AccelerationsNewtonian(e.snapshot, e.G, e.Softening, e.Workers)
	return nil
}

// Accelerate copies the precomputed accelerations back onto the bodies.
func (e *DirectEngine) Accelerate(bodies []phys.Body) {
	par.ForEach(len(bodies), e.Workers, func(i int) {
		b := &bodies[i]
		b.ResetAcceleration()
		if k := e.index[i]; k >= 0 {
			b.Acc = e.accel[k]
		}
	})
}

// PotentialAt sums the Newtonian potential over the snapshot.
func (e *DirectEngine) PotentialAt(p phys.Vec) (float64, bool) {
	var pot float64
	for i := range e.snapshot {
		r := e.snapshot[i].Pos.Sub(p).Norm()
		if r == 0 {
			continue
		}
		pot -= e.G * e.snapshot[i].Mass / r
	}
	return pot, true
}

// Excluded implements Engine.
func (e *DirectEngine) Excluded() int { return e.excluded }
