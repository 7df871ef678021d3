package fmm

import (
	"math"

	"github.com/onnwee/gravity-sim/internal/phys"
)

// EvaluatePotential returns the potential at p: the containing leaf's local
// expansion plus direct contributions from every body in the near
// neighbourhood. A source coinciding with p is skipped.
func (t *Tree) EvaluatePotential(p phys.Vec) float64 {
	leaf := t.leaf(p)
	pot := leaf.LE.Potential(p)
	for _, ni := range leaf.Near {
		bodies := t.leafBodies[int(ni)-t.leafStart]
		for i := range bodies {
			r := bodies[i].Pos.Sub(p).Norm()
			if r == 0 {
				continue
			}
			pot += bodies[i].SourceStrength() * math.Log(r)
		}
	}
	return pot
}

// EvaluateForcefield returns the force field at p: the local expansion's
// field plus softened direct contributions from the near neighbourhood.
func (t *Tree) EvaluateForcefield(p phys.Vec) phys.Vec {
	leaf := t.leaf(p)
	f := leaf.LE.Field(p)
	softSq := t.soft * t.soft
	for _, ni := range leaf.Near {
		bodies := t.leafBodies[int(ni)-t.leafStart]
		for i := range bodies {
			diff := bodies[i].Pos.Sub(p)
			rSq := diff.NormSq()
			if rSq == 0 {
				continue
			}
			f = f.Add(diff.Scale(bodies[i].SourceStrength() / (rSq + softSq)))
		}
	}
	return f
}

// ParticlePotentials evaluates the potential at every body position in
// parallel.
func (t *Tree) ParticlePotentials(bodies []phys.Body) []float64 {
	out := make([]float64, len(bodies))
	t.parallel(len(bodies), func(i int) {
		out[i] = t.EvaluatePotential(bodies[i].Pos)
	})
	return out
}

// ParticleForces evaluates the force field at every body position in
// parallel.
func (t *Tree) ParticleForces(bodies []phys.Body) []phys.Vec {
	out := make([]phys.Vec, len(bodies))
	t.parallel(len(bodies), func(i int) {
		out[i] = t.EvaluateForcefield(bodies[i].Pos)
	})
	return out
}
