package quadtree

import (
	"testing"

	"github.com/onnwee/gravity-sim/internal/phys"
)

func TestQuadContains(t *testing.T) {
	q := NewQuad(phys.V(0, 0), 4)

	inside := []phys.Vec{{0, 0}, {4, 4}, {2, 2}, {0, 4}, {4, 0}, {1e-9, 3.999}}
	for _, p := range inside {
		if !q.Contains(p) {
			t.Errorf("Contains(%v) = false, want true", p)
		}
	}
	outside := []phys.Vec{{-0.001, 2}, {4.001, 2}, {2, -0.001}, {2, 4.001}}
	for _, p := range outside {
		if q.Contains(p) {
			t.Errorf("Contains(%v) = true, want false", p)
		}
	}
}

func TestQuadSubQuadrants(t *testing.T) {
	q := NewQuad(phys.V(1, 1), 2)

	cases := []struct {
		name string
		got  Quad
		want Quad
	}{
		{"SW", q.SW(), NewQuad(phys.V(1, 1), 1)},
		{"SE", q.SE(), NewQuad(phys.V(2, 1), 1)},
		{"NW", q.NW(), NewQuad(phys.V(1, 2), 1)},
		{"NE", q.NE(), NewQuad(phys.V(2, 2), 1)},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("%s = %+v, want %+v", c.name, c.got, c.want)
		}
	}
}

func TestQuadCenter(t *testing.T) {
	q := NewQuad(phys.V(-1, -1), 2)
	if got := q.Center(); got != phys.V(0, 0) {
		t.Errorf("Center = %v, want (0,0)", got)
	}
}

func TestQuadChildForTieBreak(t *testing.T) {
	q := NewQuad(phys.V(0, 0), 2)

	cases := []struct {
		p    phys.Vec
		want int
	}{
		// Interior points.
		{phys.V(0.5, 1.5), childNW},
		{phys.V(1.5, 1.5), childNE},
		{phys.V(0.5, 0.5), childSW},
		{phys.V(1.5, 0.5), childSE},
		// The exact center touches all four quadrants; NW wins.
		{phys.V(1, 1), childNW},
		// Vertical midline in the lower half touches SW and SE; NW and NE do
		// not contain it, SW comes first.
		{phys.V(1, 0.5), childSW},
		// Horizontal midline in the left half touches NW and SW; NW wins.
		{phys.V(0.5, 1), childNW},
		// Horizontal midline in the right half: NE before SE.
		{phys.V(1.5, 1), childNE},
	}
	for _, c := range cases {
		if got := q.childFor(c.p); got != c.want {
			t.Errorf("childFor(%v) = %d, want %d", c.p, got, c.want)
		}
	}
}

func TestQuadChildMatchesConstructor(t *testing.T) {
	q := NewQuad(phys.V(-3, 2), 8)
	if q.child(childNW) != q.NW() || q.child(childNE) != q.NE() ||
		q.child(childSW) != q.SW() || q.child(childSE) != q.SE() {
		t.Error("child index order does not match the named constructors")
	}
}
