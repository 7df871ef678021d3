package quadtree

import (
	"math/rand"
	"testing"

	"github.com/onnwee/gravity-sim/internal/phys"
)

// TestTreeShapeInvariantUnderInsertionOrder pins the tie-break contract:
// permuting the body vector produces the same tree shape, differing only in
// per-leaf body ordering.
func TestTreeShapeInvariantUnderInsertionOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	bodies := make([]phys.Body, 120)
	for i := range bodies {
		bodies[i] = phys.NewBody(0.5+rng.Float64(),
			phys.V(rng.Float64()*8, rng.Float64()*8), phys.Vec{})
	}

	build := func(order []int) *BHTree {
		tree := NewBHTree(NewQuad(phys.V(0, 0), 8), 8, 2)
		for _, i := range order {
			tree.Insert(bodies[i])
		}
		return tree
	}

	forward := make([]int, len(bodies))
	for i := range forward {
		forward[i] = i
	}
	shuffled := append([]int(nil), forward...)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	compareShapes(t, build(forward), build(shuffled))
}

func compareShapes(t *testing.T, a, b *BHTree) {
	t.Helper()
	if a.External() != b.External() {
		t.Fatalf("shape differs at quad %+v: external %v vs %v", a.Quad(), a.External(), b.External())
	}
	if a.Quad() != b.Quad() {
		t.Fatalf("quads differ: %+v vs %+v", a.Quad(), b.Quad())
	}
	if a.External() {
		if len(a.Bodies()) != len(b.Bodies()) {
			t.Fatalf("leaf at %+v holds %d vs %d bodies", a.Quad(), len(a.Bodies()), len(b.Bodies()))
		}
		// Same multiset of positions, ordering free.
		seen := make(map[phys.Vec]int)
		for _, body := range a.Bodies() {
			seen[body.Pos]++
		}
		for _, body := range b.Bodies() {
			seen[body.Pos]--
		}
		for pos, n := range seen {
			if n != 0 {
				t.Fatalf("leaf at %+v body multisets differ at %v", a.Quad(), pos)
			}
		}
		return
	}
	ac, bc := a.Children(), b.Children()
	for i := range ac {
		compareShapes(t, ac[i], bc[i])
	}
}
