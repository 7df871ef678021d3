// Package direct provides the O(N^2) reference kernels the hierarchical
// engines are validated against, and a small-N substitute engine kernel.
//
// Two force laws coexist deliberately. The planar kernel (log potential,
// field ~ 1/r) is the ground truth for the FMM's complex expansions; the
// Newtonian kernel (1/r^2 with the same floor and softening as the
// Barnes-Hut tree) is the ground truth for BH and drives the integrator.
//
// All kernels iterate pairs in ascending (i, j) order and exploit
// F_ij = -F_ji; parallel variants accumulate into per-worker buffers that
// are reduced in worker order, so results are reproducible for a fixed
// worker count.
package direct

import (
	"math"
	"runtime"
	"sync"

	"github.com/onnwee/gravity-sim/internal/phys"
)

const minDistance = 1e-5

// Potentials returns the planar potential at every body position:
// phi_i = sum_{j != i} q_j ln r_ij.
func Potentials(bodies []phys.Body, workers int) []float64 {
	n := len(bodies)
	out := make([]float64, n)
	reducePairs(n, workers, out, func(i, j int, buf []float64) {
		r := bodies[j].Pos.Sub(bodies[i].Pos).Norm()
		if r == 0 {
			return
		}
		l := math.Log(r)
		buf[i] += bodies[j].SourceStrength() * l
		buf[j] += bodies[i].SourceStrength() * l
	})
	return out
}

// PotentialEnergies returns q_i * phi_i for every body, each pair counted
// into both members.
func PotentialEnergies(bodies []phys.Body, workers int) []float64 {
	n := len(bodies)
	out := make([]float64, n)
	reducePairs(n, workers, out, func(i, j int, buf []float64) {
		r := bodies[j].Pos.Sub(bodies[i].Pos).Norm()
		if r == 0 {
			return
		}
		e := bodies[i].SourceStrength() * bodies[j].SourceStrength() * math.Log(r)
		buf[i] += e
		buf[j] += e
	})
	return out
}

// Forces returns the planar force on every body,
// F_i = sum_{j != i} r_ij q_i q_j / (r^2 + soft^2), the law the FMM's
// near field uses.
func Forces(bodies []phys.Body, soft float64, workers int) []phys.Vec {
	n := len(bodies)
	softSq := soft * soft
	out := make([]phys.Vec, n)
	reducePairsVec(n, workers, out, func(i, j int, buf []phys.Vec) {
		diff := bodies[j].Pos.Sub(bodies[i].Pos)
		rSq := diff.NormSq()
		if rSq == 0 {
			return
		}
		f := diff.Scale(bodies[i].SourceStrength() * bodies[j].SourceStrength() / (rSq + softSq))
		buf[i] = buf[i].Add(f)
		buf[j] = buf[j].Sub(f)
	})
	return out
}

// AccelerationsNewtonian returns per-body accelerations under the softened
// Newtonian law used by the Barnes-Hut tree: distance floored at 1e-5,
// F = G m_i m_j / (d^2 + soft^2), non-finite contributions dropped.
func AccelerationsNewtonian(bodies []phys.Body, g, soft float64, workers int) []phys.Vec {
	n := len(bodies)
	out := make([]phys.Vec, n)
	reducePairsVec(n, workers, out, func(i, j int, buf []phys.Vec) {
		r := bodies[j].Pos.Sub(bodies[i].Pos)
		d := r.Norm()
		if d == 0 {
			return
		}
		if d < minDistance {
			d = minDistance
		}
		force := g * bodies[i].Mass * bodies[j].Mass / (d*d + soft*soft)
		fv := r.Scale(force / d)
		if !fv.IsFinite() {
			return
		}
		buf[i] = buf[i].Add(fv.Div(bodies[i].Mass))
		buf[j] = buf[j].Sub(fv.Div(bodies[j].Mass))
	})
	return out
}

// reducePairs runs fn over all pairs i < j with the outer loop split
// across workers, each with a private buffer, and reduces the buffers in
// worker order.
func reducePairs(n, workers int, out []float64, fn func(i, j int, buf []float64)) {
	workers = clampWorkers(n, workers)
	if workers == 1 {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				fn(i, j, out)
			}
		}
		return
	}

	bufs := make([][]float64, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		bufs[w] = make([]float64, n)
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < n; i += workers {
				for j := i + 1; j < n; j++ {
					fn(i, j, bufs[w])
				}
			}
		}(w)
	}
	wg.Wait()
	for w := 0; w < workers; w++ {
		for i := 0; i < n; i++ {
			out[i] += bufs[w][i]
		}
	}
}

func reducePairsVec(n, workers int, out []phys.Vec, fn func(i, j int, buf []phys.Vec)) {
	workers = clampWorkers(n, workers)
	if workers == 1 {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				fn(i, j, out)
			}
		}
		return
	}

	bufs := make([][]phys.Vec, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		bufs[w] = make([]phys.Vec, n)
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < n; i += workers {
				for j := i + 1; j < n; j++ {
					fn(i, j, bufs[w])
				}
			}
		}(w)
	}
	wg.Wait()
	for w := 0; w < workers; w++ {
		for i := 0; i < n; i++ {
			out[i] = out[i].Add(bufs[w][i])
		}
	}
}

func clampWorkers(n, workers int) int {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}
