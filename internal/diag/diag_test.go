package diag

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/onnwee/gravity-sim/internal/phys"
)

func TestTotalEnergyTwoBody(t *testing.T) {
	bodies := []phys.Body{
		phys.NewBody(1, phys.V(0, 0), phys.V(0, 1)),
		phys.NewBody(2, phys.V(3, 4), phys.Vec{}),
	}
	// K = 0.5*1*1, U = -G*1*2/5
	want := 0.5 - 2.0/5.0
	if got := TotalEnergy(bodies, 1); !scalar.EqualWithinAbs(got, want, 1e-12) {
		t.Errorf("TotalEnergy = %v, want %v", got, want)
	}
}

func TestTotalEnergySkipsCoincident(t *testing.T) {
	bodies := []phys.Body{
		phys.NewBody(1, phys.V(1, 1), phys.Vec{}),
		phys.NewBody(1, phys.V(1, 1), phys.Vec{}),
	}
	if got := TotalEnergy(bodies, 1); got != 0 {
		t.Errorf("coincident pair energy = %v, want 0", got)
	}
}

func TestAssignEnergiesSumsToTotal(t *testing.T) {
	bodies := []phys.Body{
		phys.NewBody(1, phys.V(0, 0), phys.V(1, 0)),
		phys.NewBody(2, phys.V(2, 0), phys.V(0, 0.5)),
		phys.NewBody(0.5, phys.V(-1, 3), phys.V(-0.2, 0)),
	}
	AssignEnergies(bodies, 1, 1)
	var sum float64
	for i := range bodies {
		sum += bodies[i].Energy
	}
	if total := TotalEnergy(bodies, 1); !scalar.EqualWithinAbs(sum, total, 1e-12) {
		t.Errorf("per-body energies sum to %v, total is %v", sum, total)
	}
}

func TestAssignEnergiesParallelMatchesSequential(t *testing.T) {
	mk := func() []phys.Body {
		return []phys.Body{
			phys.NewBody(1, phys.V(0, 0), phys.V(1, 0)),
			phys.NewBody(2, phys.V(2, 0), phys.Vec{}),
			phys.NewBody(3, phys.V(0, 5), phys.V(0, -1)),
			phys.NewBody(0.5, phys.V(-4, 1), phys.Vec{}),
		}
	}
	a, b := mk(), mk()
	AssignEnergies(a, 1, 1)
	AssignEnergies(b, 1, 4)
	for i := range a {
		if a[i].Energy != b[i].Energy {
			t.Errorf("energy[%d] differs: %v vs %v", i, a[i].Energy, b[i].Energy)
		}
	}
}

func TestEntropyGrid(t *testing.T) {
	g := NewEntropyGrid(4, -1, 1, -1, 1)
	if g.Normalized() != 0 {
		t.Error("empty grid entropy should be 0")
	}

	// All bodies in one cell: minimum entropy.
	clumped := make([]phys.Body, 16)
	for i := range clumped {
		clumped[i] = phys.NewBody(1, phys.V(-0.9, -0.9), phys.Vec{})
	}
	g.Update(clumped)
	if e := g.Normalized(); e != 0 {
		t.Errorf("clumped entropy = %v, want 0", e)
	}

	// One body per cell: maximum entropy.
	g.Reset()
	var spread []phys.Body
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			spread = append(spread, phys.NewBody(1,
				phys.V(-1+(float64(i)+0.5)/2, -1+(float64(j)+0.5)/2), phys.Vec{}))
		}
	}
	g.Update(spread)
	if e := g.Normalized(); !scalar.EqualWithinAbs(e, 1, 1e-12) {
		t.Errorf("uniform entropy = %v, want 1", e)
	}

	// Out-of-extent positions are ignored.
	g.Reset()
	g.Update([]phys.Body{phys.NewBody(1, phys.V(5, 5), phys.Vec{})})
	if g.Normalized() != 0 {
		t.Error("out-of-extent body should not be binned")
	}
}
