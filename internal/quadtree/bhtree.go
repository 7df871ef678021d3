package quadtree

import "github.com/onnwee/gravity-sim/internal/phys"

const (
	// DefaultMaxDepth bounds subdivision depth.
	DefaultMaxDepth = 6
	// DefaultMaxLeaves is the number of bodies a leaf holds before it splits.
	DefaultMaxLeaves = 4

	// minDistance floors the raw source-target distance so the kernel stays
	// total at exact overlap.
	minDistance = 1e-5
)

// BHTree is a node of the Barnes-Hut quadtree. Each node aggregates the
// bodies below it into a cluster (total mass, mass-weighted center of mass
// and velocity). A node is either external, holding up to maxLeaves bodies
// (more at maxDepth), or internal with exactly four children.
type BHTree struct {
	quad    Quad
	cluster phys.Body

	nw, ne, sw, se *BHTree
	external       bool

	depth     int
	maxDepth  int
	maxLeaves int
	bodies    []phys.Body
}

// NewBHTree creates an empty tree covering quad. maxDepth and maxLeaves
// fall back to the defaults when non-positive.
func NewBHTree(quad Quad, maxDepth, maxLeaves int) *BHTree {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if maxLeaves <= 0 {
		maxLeaves = DefaultMaxLeaves
	}
	return &BHTree{quad: quad, external: true, maxDepth: maxDepth, maxLeaves: maxLeaves}
}

func (t *BHTree) childNode(i int) *BHTree {
	switch i {
	case childNW:
		return t.nw
	case childNE:
		return t.ne
	case childSW:
		return t.sw
	default:
		return t.se
	}
}

// Insert adds a body to the subtree. The body's position must lie inside
// the node's quad; the caller filters out-of-universe bodies.
func (t *BHTree) Insert(b phys.Body) {
	if t.external {
		t.bodies = append(t.bodies, b)
		if len(t.bodies) <= t.maxLeaves || t.depth >= t.maxDepth {
			t.refold()
			return
		}

		// Overfull: subdivide and push the stored bodies down. The cluster
		// is refolded first so it already accounts for every body below.
		t.refold()
		t.external = false
		t.nw = &BHTree{quad: t.quad.NW(), external: true, depth: t.depth + 1, maxDepth: t.maxDepth, maxLeaves: t.maxLeaves}
		t.ne = &BHTree{quad: t.quad.NE(), external: true, depth: t.depth + 1, maxDepth: t.maxDepth, maxLeaves: t.maxLeaves}
		t.sw = &BHTree{quad: t.quad.SW(), external: true, depth: t.depth + 1, maxDepth: t.maxDepth, maxLeaves: t.maxLeaves}
		t.se = &BHTree{quad: t.quad.SE(), external: true, depth: t.depth + 1, maxDepth: t.maxDepth, maxLeaves: t.maxLeaves}
		for _, stored := range t.bodies {
			t.childNode(t.quad.childFor(stored.Pos)).Insert(stored)
		}
		t.bodies = nil
		return
	}

	t.cluster = phys.Combine(t.cluster, b)
	t.childNode(t.quad.childFor(b.Pos)).Insert(b)
}

// refold recomputes the cluster as a mass-weighted fold over the stored
// bodies, in insertion order.
func (t *BHTree) refold() {
	cluster := t.bodies[0]
	for _, b := range t.bodies[1:] {
		cluster = phys.Combine(cluster, b)
	}
	t.cluster = cluster
}

// UpdateForce accumulates onto b the acceleration exerted by the subtree,
// opening nodes whose aperture L/d is at least theta.
func (t *BHTree) UpdateForce(b *phys.Body, theta, g, soft float64) {
	if t.external {
		for i := range t.bodies {
			if t.bodies[i].Mass > 0 {
				accumulate(b, &t.bodies[i], g, soft)
			}
		}
		return
	}

	d := t.cluster.Pos.Sub(b.Pos).Norm()
	if t.quad.Length/d < theta {
		accumulate(b, &t.cluster, g, soft)
		return
	}
	t.nw.UpdateForce(b, theta, g, soft)
	t.ne.UpdateForce(b, theta, g, soft)
	t.sw.UpdateForce(b, theta, g, soft)
	t.se.UpdateForce(b, theta, g, soft)
}

// accumulate adds the softened Newtonian contribution of src onto b.
// Coincident bodies (the target itself included) contribute nothing, and
// non-finite intermediates are dropped.
func accumulate(b, src *phys.Body, g, soft float64) {
	if b.Mass <= 0 {
		return
	}
	r := src.Pos.Sub(b.Pos)
	d := r.Norm()
	if d == 0 {
		return
	}
	if d < minDistance {
		d = minDistance
	}
	softened := d*d + soft*soft
	force := g * src.Mass * b.Mass / softened
	da := r.Scale(force / d / b.Mass)
	if !da.IsFinite() {
		return
	}
	b.AddAcceleration(da)
}

// Cluster returns the node's aggregate body.
func (t *BHTree) Cluster() phys.Body { return t.cluster }

// Quad returns the region the node covers.
func (t *BHTree) Quad() Quad { return t.quad }

// External reports whether the node is a leaf.
func (t *BHTree) External() bool { return t.external }

// Bodies returns the bodies stored at an external node.
func (t *BHTree) Bodies() []phys.Body { return t.bodies }

// Children returns the four children of an internal node in NW, NE, SW, SE
// order, or nil for an external node.
func (t *BHTree) Children() []*BHTree {
	if t.external {
		return nil
	}
	return []*BHTree{t.nw, t.ne, t.sw, t.se}
}

// Depth returns the node's depth from the root.
func (t *BHTree) Depth() int { return t.depth }

// PotentialAt evaluates the Newtonian potential at p under the same opening
// criterion used for forces.
func (t *BHTree) PotentialAt(p phys.Vec, theta, g float64) float64 {
	if t.external {
		var pot float64
		for i := range t.bodies {
			s := &t.bodies[i]
			if s.Mass <= 0 {
				continue
			}
			d := s.Pos.Sub(p).Norm()
			if d == 0 {
				continue
			}
			if d < minDistance {
				d = minDistance
			}
			pot -= g * s.Mass / d
		}
		return pot
	}
	d := t.cluster.Pos.Sub(p).Norm()
	if t.quad.Length/d < theta {
		if d < minDistance {
			d = minDistance
		}
		return -g * t.cluster.Mass / d
	}
	return t.nw.PotentialAt(p, theta, g) + t.ne.PotentialAt(p, theta, g) +
		t.sw.PotentialAt(p, theta, g) + t.se.PotentialAt(p, theta, g)
}
