// Package quadtree implements the hierarchical space decomposition used by
// the Barnes-Hut force engine: an axis-aligned square region type and a
// recursive quadtree of body clusters.
package quadtree

import "github.com/onnwee/gravity-sim/internal/phys"

// Quad is an immutable axis-aligned square [ox, ox+L] x [oy, oy+L], with the
// origin at the lower-left corner.
type Quad struct {
	Origin phys.Vec
	Length float64
}

// NewQuad constructs a square region from its lower-left corner and side
// length.
func NewQuad(origin phys.Vec, length float64) Quad {
	return Quad{Origin: origin, Length: length}
}

// Contains reports whether p lies in the closed box.
func (q Quad) Contains(p phys.Vec) bool {
	return p[0] >= q.Origin[0] && p[0] <= q.Origin[0]+q.Length &&
		p[1] >= q.Origin[1] && p[1] <= q.Origin[1]+q.Length
}

// NW returns the north-west sub-quadrant.
func (q Quad) NW() Quad {
	h := q.Length / 2
	return Quad{Origin: phys.V(q.Origin[0], q.Origin[1]+h), Length: h}
}

// NE returns the north-east sub-quadrant.
func (q Quad) NE() Quad {
	h := q.Length / 2
	return Quad{Origin: phys.V(q.Origin[0]+h, q.Origin[1]+h), Length: h}
}

// SW returns the south-west sub-quadrant.
func (q Quad) SW() Quad {
	return Quad{Origin: q.Origin, Length: q.Length / 2}
}

// SE returns the south-east sub-quadrant.
func (q Quad) SE() Quad {
	h := q.Length / 2
	return Quad{Origin: phys.V(q.Origin[0]+h, q.Origin[1]), Length: h}
}

// Center returns the midpoint of the square.
func (q Quad) Center() phys.Vec {
	h := q.Length / 2
	return phys.V(q.Origin[0]+h, q.Origin[1]+h)
}

// childIndex identifies a sub-quadrant. The numeric order NW, NE, SW, SE is
// the tie-break order for boundary points: a point on a shared edge belongs
// to the first sub-quadrant that contains it.
const (
	childNW = iota
	childNE
	childSW
	childSE
)

// childFor returns the index of the sub-quadrant a point belongs to,
// applying the NW, NE, SW, SE tie-break. The point must lie inside q;
// otherwise -1 is returned.
func (q Quad) childFor(p phys.Vec) int {
	if q.NW().Contains(p) {
		return childNW
	}
	if q.NE().Contains(p) {
		return childNE
	}
	if q.SW().Contains(p) {
		return childSW
	}
	if q.SE().Contains(p) {
		return childSE
	}
	return -1
}

// child returns the sub-quadrant for index i in tie-break order.
func (q Quad) child(i int) Quad {
	switch i {
	case childNW:
		return q.NW()
	case childNE:
		return q.NE()
	case childSW:
		return q.SW()
	default:
		return q.SE()
	}
}
