// Package gen creates seeded, reproducible initial conditions: a uniform
// square cloud and a stable ring around a heavy central mass.
package gen

import (
	"math"
	"math/rand"

	"github.com/onnwee/gravity-sim/internal/phys"
)

// UniformSquare places n bodies uniformly in the square
// [-extent/2, extent/2]^2 with equal masses summing to totalMass and zero
// velocities.
func UniformSquare(n int, extent, totalMass float64, seed int64) []phys.Body {
	rng := rand.New(rand.NewSource(seed))
	mass := totalMass / float64(n)
	bodies := make([]phys.Body, n)
	for i := range bodies {
		bodies[i] = phys.NewBody(mass,
			phys.V((rng.Float64()-0.5)*extent, (rng.Float64()-0.5)*extent),
			phys.Vec{})
	}
	return bodies
}

// StableRing builds a heavy central body surrounded by n ring bodies on
// near-circular orbits: 60% of the total mass in the center, the rest
// spread over a perturbed ring at ~0.4 extent radius with tangential
// velocities for the central mass's circular speed.
func StableRing(n int, extent, totalMass float64, seed int64, g float64) []phys.Body {
	rng := rand.New(rand.NewSource(seed))

	centralMass := 0.6 * totalMass
	ringMass := totalMass - centralMass
	ringRadius := 0.4 * extent
	ringWidth := 0.2 * extent
	innerHole := 0.2 * extent

	bodies := make([]phys.Body, 0, n+1)
	bodies = append(bodies, phys.NewBody(centralMass, phys.Vec{}, phys.Vec{}))

	for i := 0; i < n; i++ {
		angle := 2*math.Pi*float64(i)/float64(n) + rng.NormFloat64()*0.1
		r := ringRadius + rng.NormFloat64()*ringWidth*0.3
		r = math.Max(r, innerHole+0.05*extent)
		r = math.Min(r, ringRadius+ringWidth)

		pos := phys.V(r*math.Cos(angle), r*math.Sin(angle))
		actualR := pos.Norm()
		vCirc := math.Sqrt(g * centralMass / actualR)
		vel := phys.V(-pos[1]/actualR, pos[0]/actualR).Scale(vCirc)

		bodies = append(bodies, phys.NewBody(ringMass/float64(n), pos, vel))
	}
	return bodies
}
