// Package diag computes the conserved-quantity and distribution
// diagnostics of a body set: total energy, per-body energy bookkeeping and
// the occupancy-grid entropy.
package diag

import (
	"github.com/onnwee/gravity-sim/internal/par"
	"github.com/onnwee/gravity-sim/internal/phys"
)

// TotalEnergy returns kinetic plus pairwise Newtonian potential energy,
// each pair counted once in ascending (i, j) order. Coincident pairs are
// skipped.
func TotalEnergy(bodies []phys.Body, g float64) float64 {
	var k float64
	for i := range bodies {
		k += 0.5 * bodies[i].Mass * bodies[i].Vel.NormSq()
	}

	var u float64
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			r := bodies[i].Pos.Sub(bodies[j].Pos).Norm()
			if r == 0 {
				continue
			}
			u -= g * bodies[i].Mass * bodies[j].Mass / r
		}
	}
	return k + u
}

// AssignEnergies stores each body's energy: kinetic plus half its summed
// pair potential, so the per-body energies add up to the total.
func AssignEnergies(bodies []phys.Body, g float64, workers int) {
	par.ForEach(len(bodies), workers, func(i int) {
		b := &bodies[i]
		e := 0.5 * b.Mass * b.Vel.NormSq()
		for j := range bodies {
			if j == i {
				continue
			}
			r := b.Pos.Sub(bodies[j].Pos).Norm()
			if r == 0 {
				continue
			}
			e -= 0.5 * g * b.Mass * bodies[j].Mass / r
		}
		b.Energy = e
	})
}
