package fmm

import "github.com/onnwee/gravity-sim/internal/expansion"

// upwardPass builds multipole expansions at the leaves and shifts them up
// level by level. Nodes within a level are independent; levels are
// barriers.
func (t *Tree) upwardPass() {
	t.parallel(len(t.leafBodies), func(i int) {
		n := &t.nodes[t.leafStart+i]
		n.ME = expansion.NewMultipole(n.Center.Complex(), t.Order, t.leafBodies[i])
	})

	// Internal expansions are only consumed by interaction lists, which are
	// empty above depth 2.
	for d := t.Height - 1; d >= 2; d-- {
		off := levelOffset(d)
		childOff := levelOffset(d + 1)
		count := 1 << (2 * d)
		t.parallel(count, func(m int) {
			n := &t.nodes[off+m]
			children := []*expansion.Multipole{
				&t.nodes[childOff+4*m].ME,
				&t.nodes[childOff+4*m+1].ME,
				&t.nodes[childOff+4*m+2].ME,
				&t.nodes[childOff+4*m+3].ME,
			}
			n.ME = expansion.CombineMultipoles(n.Center.Complex(), children)
		})
	}
}

// downwardPass pushes local expansions from parents to children (L2L) and
// assimilates well-separated far fields (M2L), level by level from depth 2
// down to the leaves. Depths 0 and 1 have empty interaction lists and stay
// zero.
func (t *Tree) downwardPass() {
	for d := 2; d <= t.Height; d++ {
		off := levelOffset(d)
		parentOff := levelOffset(d - 1)
		count := 1 << (2 * d)
		t.parallel(count, func(m int) {
			n := &t.nodes[off+m]
			n.LE.AddShifted(&t.nodes[parentOff+m/4].LE)
			for _, pi := range n.Interaction {
				n.LE.AddMultipole(&t.nodes[pi].ME)
			}
		})
	}
}
