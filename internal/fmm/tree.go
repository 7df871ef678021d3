// Package fmm implements the fast multipole method on a balanced quadtree.
//
// The tree is a complete quadtree of fixed height H laid out in a single
// arena, depth-major and Morton-ordered within each level, so parent/child
// and peer relationships are index arithmetic instead of pointers. Each
// node carries a multipole expansion (its subtree's far field) and a local
// expansion (the field of everything well-separated from it); leaves own
// their slice of the particle set.
package fmm

import (
	"math"

	"github.com/onnwee/gravity-sim/internal/expansion"
	"github.com/onnwee/gravity-sim/internal/par"
	"github.com/onnwee/gravity-sim/internal/phys"
	"github.com/onnwee/gravity-sim/internal/simerr"
)

const (
	// boundsPad keeps extremal bodies off the outer grid lines.
	boundsPad = 1e-5
	// adjacencyTol loosens the center-distance adjacency test against
	// floating point error in child center computation.
	adjacencyTol = 1.01
	// separationFloor is the fatal well-separation check on interaction
	// partners, in units of the box length.
	separationFloor = 1.99
)

// Node is one cell of the balanced quadtree.
type Node struct {
	Center phys.Vec
	Length float64
	Depth  int

	ME expansion.Multipole
	LE expansion.Local

	// Near and Interaction hold arena indices of same-depth peers.
	Near        []int32
	Interaction []int32
}

// Tree is a balanced FMM quadtree over a snapshot of the body set.
type Tree struct {
	Order  int
	Height int

	eps  float64
	soft float64

	origin phys.Vec // lower-left corner of the root cell
	length float64  // root side length

	nodes      []Node
	leafStart  int           // arena offset of the leaf level
	leafBodies [][]phys.Body // indexed by leaf Morton ordinal

	workers int
}

// levelOffset returns the arena offset of depth d: (4^d - 1) / 3.
func levelOffset(d int) int {
	return ((1 << (2 * d)) - 1) / 3
}

// Params configure tree construction.
type Params struct {
	// ItemsPerCell sets the target leaf occupancy that determines the
	// tree height.
	ItemsPerCell int
	// Eps is the fault tolerance the expansion order is derived from.
	Eps float64
	// Soft is the softening length of the near-field force kernel.
	Soft float64
	// Workers bounds the parallelism of the passes; <= 0 uses GOMAXPROCS.
	Workers int
}

// NewTree builds the tree, assigns bodies to leaves and runs the upward and
// downward passes. The bodies slice is copied into the leaves; the tree
// never aliases caller memory.
func NewTree(bodies []phys.Body, p Params) (*Tree, error) {
	if p.ItemsPerCell <= 0 || p.Eps <= 0 {
		return nil, simerr.Newf(simerr.ErrBuildBadParams,
			"items per cell %d and eps %g must be positive", p.ItemsPerCell, p.Eps)
	}
	if len(bodies) == 0 {
		return nil, simerr.New(simerr.ErrBuildEmptyUniverse, "no bodies to build over")
	}

	t := &Tree{eps: p.Eps, soft: p.Soft, workers: p.Workers}

	// Expansion order from the accuracy target and total absolute charge.
	var abs float64
	for i := range bodies {
		abs += math.Abs(bodies[i].SourceStrength())
	}
	t.Order = int(math.Ceil(math.Log2(abs / t.eps)))
	if t.Order < 1 {
		t.Order = 1
	}

	// Height from the target leaf occupancy.
	if n := len(bodies); n > p.ItemsPerCell {
		t.Height = int(math.Ceil(math.Log(float64(n)/float64(p.ItemsPerCell)) / math.Log(4)))
	}

	t.computeBounds(bodies)
	t.allocate()
	t.distribute(bodies)
	if err := t.computeNeighbourhoods(); err != nil {
		return nil, err
	}
	t.upwardPass()
	t.downwardPass()
	return t, nil
}

// computeBounds derives the root cell from the body extents, padded so no
// body sits exactly on the outer boundary.
func (t *Tree) computeBounds(bodies []phys.Body) {
	lo := phys.V(math.Inf(1), math.Inf(1))
	hi := phys.V(math.Inf(-1), math.Inf(-1))
	for i := range bodies {
		p := bodies[i].Pos
		for d := 0; d < 2; d++ {
			if p[d] < lo[d] {
				lo[d] = p[d]
			}
			if p[d] > hi[d] {
				hi[d] = p[d]
			}
		}
	}
	extent := math.Max(hi[0]-lo[0], hi[1]-lo[1])
	if extent == 0 {
		extent = 1
	}
	pad := boundsPad * extent
	t.length = extent + 2*pad
	center := lo.Add(hi).Scale(0.5)
	t.origin = center.Sub(phys.V(t.length/2, t.length/2))
}

// allocate lays out the complete arena and fills in the geometry of every
// node, breadth-first in Morton order.
func (t *Tree) allocate() {
	total := levelOffset(t.Height + 1)
	t.nodes = make([]Node, total)
	t.leafStart = levelOffset(t.Height)
	t.leafBodies = make([][]phys.Body, 1<<(2*t.Height))

	t.nodes[0] = Node{
		Center: t.origin.Add(phys.V(t.length/2, t.length/2)),
		Length: t.length,
		Depth:  0,
	}
	for d := 0; d < t.Height; d++ {
		off := levelOffset(d)
		childOff := levelOffset(d + 1)
		count := 1 << (2 * d)
		for m := 0; m < count; m++ {
			parent := &t.nodes[off+m]
			half := parent.Length / 2
			quarter := parent.Length / 4
			for j := 0; j < 4; j++ {
				dx, dy := -quarter, -quarter
				if j&1 != 0 {
					dx = quarter
				}
				if j&2 != 0 {
					dy = quarter
				}
				t.nodes[childOff+4*m+j] = Node{
					Center: parent.Center.Add(phys.V(dx, dy)),
					Length: half,
					Depth:  d + 1,
				}
			}
		}
	}

	// Every node needs a zeroed local expansion so the downward pass can
	// shift parents unconditionally, and a multipole slot for the upward
	// pass to fill.
	for i := range t.nodes {
		n := &t.nodes[i]
		n.LE = expansion.NewLocal(n.Center.Complex(), t.Order)
	}
}

// leafOrdinal maps a position to the Morton index of its containing leaf,
// clamped to the grid.
func (t *Tree) leafOrdinal(p phys.Vec) int {
	cells := 1 << t.Height
	cell := t.length / float64(cells)
	ix := int((p[0] - t.origin[0]) / cell)
	iy := int((p[1] - t.origin[1]) / cell)
	if ix < 0 {
		ix = 0
	} else if ix >= cells {
		ix = cells - 1
	}
	if iy < 0 {
		iy = 0
	} else if iy >= cells {
		iy = cells - 1
	}
	return int(morton(uint32(ix), uint32(iy)))
}

// morton interleaves the bits of x (even positions) and y (odd positions).
func morton(x, y uint32) uint64 {
	return spreadBits(x) | spreadBits(y)<<1
}

func spreadBits(v uint32) uint64 {
	x := uint64(v)
	x = (x | x<<16) & 0x0000ffff0000ffff
	x = (x | x<<8) & 0x00ff00ff00ff00ff
	x = (x | x<<4) & 0x0f0f0f0f0f0f0f0f
	x = (x | x<<2) & 0x3333333333333333
	x = (x | x<<1) & 0x5555555555555555
	return x
}

// distribute copies each body into its containing leaf.
func (t *Tree) distribute(bodies []phys.Body) {
	for i := range bodies {
		ord := t.leafOrdinal(bodies[i].Pos)
		t.leafBodies[ord] = append(t.leafBodies[ord], bodies[i])
	}
}

// computeNeighbourhoods fills every node's near-neighbour and interaction
// lists, reusing the parent's near list: the candidates at a depth are
// exactly the children of the parent's near neighbours.
func (t *Tree) computeNeighbourhoods() error {
	t.nodes[0].Near = []int32{0}
	for d := 1; d <= t.Height; d++ {
		off := levelOffset(d)
		parentOff := levelOffset(d - 1)
		childOff := levelOffset(d)
		count := 1 << (2 * d)
		for m := 0; m < count; m++ {
			idx := off + m
			node := &t.nodes[idx]
			parent := &t.nodes[parentOff+m/4]
			for _, pn := range parent.Near {
				pnMorton := int(pn) - parentOff
				for j := 0; j < 4; j++ {
					cand := int32(childOff + 4*pnMorton + j)
					c := &t.nodes[cand]
					if adjacent(node, c) {
						node.Near = append(node.Near, cand)
						continue
					}
					dist := node.Center.Sub(c.Center).Norm()
					if dist < separationFloor*node.Length {
						return simerr.Newf(simerr.ErrGeometryInteractionTooClose,
							"interaction partner at distance %g < %g x box length %g at depth %d",
							dist, separationFloor, node.Length, d)
					}
					node.Interaction = append(node.Interaction, cand)
				}
			}
		}
	}
	return nil
}

// adjacent reports whether two same-depth cells share an edge or vertex
// (or are the same cell): Chebyshev center distance within one box length.
func adjacent(a, b *Node) bool {
	dx := math.Abs(a.Center[0] - b.Center[0])
	dy := math.Abs(a.Center[1] - b.Center[1])
	return math.Max(dx, dy) <= adjacencyTol*a.Length
}

// leaf returns the arena node of the leaf containing p.
func (t *Tree) leaf(p phys.Vec) *Node {
	return &t.nodes[t.leafStart+t.leafOrdinal(p)]
}

// Nodes exposes the arena for inspection.
func (t *Tree) Nodes() []Node { return t.nodes }

// LeafBodies returns the bodies assigned to leaf ordinal i.
func (t *Tree) LeafBodies(i int) []phys.Body { return t.leafBodies[i] }

// LeafCount returns the number of leaves.
func (t *Tree) LeafCount() int { return len(t.leafBodies) }

func (t *Tree) parallel(n int, fn func(i int)) {
	par.ForEach(n, t.workers, fn)
}
