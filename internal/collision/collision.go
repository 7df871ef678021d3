// Package collision resolves pairwise swept sphere-sphere collisions within
// a single timestep with an impulse exchange along the contact normal.
package collision

import (
	"math"

	"github.com/onnwee/gravity-sim/internal/phys"
)

const (
	// ContactDistance is the separation at which two bodies collide.
	ContactDistance = 1e-6
	// remainderEps suppresses a post-collision advance shorter than float
	// noise.
	remainderEps = 1e-8
)

// Resolver performs elastic collision resolution. Restitution 1 is fully
// elastic.
type Resolver struct {
	Restitution float64
}

// NewResolver returns a fully elastic resolver.
func NewResolver() *Resolver {
	return &Resolver{Restitution: 1}
}

// contactTime solves |dr + t dv|^2 = ContactDistance^2 for the earliest
// non-negative root within [0, dt]. Separating pairs are rejected up front.
func contactTime(a, b *phys.Body, dt float64) (float64, bool) {
	dr := a.Pos.Sub(b.Pos)
	dv := a.Vel.Sub(b.Vel)

	if dr.Dot(dv) >= 0 {
		return 0, false
	}

	qa := dv.Dot(dv)
	qb := 2 * dr.Dot(dv)
	qc := dr.Dot(dr) - ContactDistance*ContactDistance

	disc := qb*qb - 4*qa*qc
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := (-qb - sq) / (2 * qa)
	if t < 0 {
		t = (-qb + sq) / (2 * qa)
	}
	if t < 0 || t > dt {
		return 0, false
	}
	return t, true
}

// exchangedVelocity returns a's velocity after the 1-D along-normal
// exchange with b, preserving the tangential component.
func exchangedVelocity(a, b *phys.Body, e float64) phys.Vec {
	n := a.Pos.Sub(b.Pos)
	n = n.Div(n.Norm())

	van := a.Vel.Dot(n)
	vbn := b.Vel.Dot(n)

	vanNew := (a.Mass*van + b.Mass*vbn + b.Mass*e*(vbn-van)) / (a.Mass + b.Mass)

	tangential := a.Vel.Sub(n.Scale(van))
	return tangential.Add(n.Scale(vanNew))
}

// resolvePair handles at most one collision between a and b inside the
// step: advance to contact, exchange momentum along the normal, advance
// for the remaining time. Reports whether a collision occurred.
func (r *Resolver) resolvePair(a, b *phys.Body, dt float64) bool {
	tc, ok := contactTime(a, b, dt)
	if !ok {
		return false
	}

	a.Drift(a.Vel.Scale(tc))
	b.Drift(b.Vel.Scale(tc))

	vaNew := exchangedVelocity(a, b, r.Restitution)
	vbNew := exchangedVelocity(b, a, r.Restitution)
	a.Vel = vaNew
	b.Vel = vbNew

	if remaining := dt - tc; remaining > remainderEps {
		a.Drift(a.Vel.Scale(remaining))
		b.Drift(b.Vel.Scale(remaining))
	}
	return true
}

// Resolve sweeps all unordered pairs in ascending (i, j) order, at most one
// collision per pair per step. The sequential order is the reproducibility
// convention: overlapping collisions are not commutative. Returns the
// number of collisions resolved.
func (r *Resolver) Resolve(bodies []phys.Body, dt float64) int {
	var resolved int
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			if r.resolvePair(&bodies[i], &bodies[j], dt) {
				resolved++
			}
		}
	}
	return resolved
}
