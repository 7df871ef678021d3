package quadtree

import (
	"math/rand"
	"testing"

	"github.com/onnwee/gravity-sim/internal/phys"
)

func benchBodies(n int) []phys.Body {
	rng := rand.New(rand.NewSource(1))
	bodies := make([]phys.Body, n)
	for i := range bodies {
		bodies[i] = phys.NewBody(1, phys.V(rng.Float64()*10, rng.Float64()*10), phys.Vec{})
	}
	return bodies
}

func BenchmarkBHTreeBuild(b *testing.B) {
	for _, n := range []int{100, 1000, 10000} {
		bodies := benchBodies(n)
		b.Run(sizeLabel(n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				tree := NewBHTree(NewQuad(phys.V(0, 0), 10), 0, 0)
				for k := range bodies {
					tree.Insert(bodies[k])
				}
			}
		})
	}
}

func BenchmarkBHTreeForce(b *testing.B) {
	for _, n := range []int{100, 1000, 10000} {
		bodies := benchBodies(n)
		tree := NewBHTree(NewQuad(phys.V(0, 0), 10), 0, 0)
		for k := range bodies {
			tree.Insert(bodies[k])
		}
		b.Run(sizeLabel(n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				body := bodies[i%len(bodies)]
				body.ResetAcceleration()
				tree.UpdateForce(&body, 0.5, 1, 0.01)
			}
		})
	}
}

func sizeLabel(n int) string {
	switch {
	case n >= 1000000:
		return "1M"
	case n >= 10000:
		return "10k"
	case n >= 1000:
		return "1k"
	default:
		return "100"
	}
}
