package solver

import (
	"context"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/onnwee/gravity-sim/internal/diag"
	"github.com/onnwee/gravity-sim/internal/direct"
	"github.com/onnwee/gravity-sim/internal/phys"
	"github.com/onnwee/gravity-sim/internal/quadtree"
)

func bhEngine(universe quadtree.Quad, theta, soft float64) *BHEngine {
	return &BHEngine{
		Universe:  universe,
		Theta:     theta,
		MaxDepth:  6,
		MaxLeaves: 4,
		Softening: soft,
		G:         1,
		Workers:   1,
	}
}

func TestStepZeroBodiesIsNoOp(t *testing.T) {
	universe := quadtree.NewQuad(phys.V(-1, -1), 2)
	s := New(Config{Universe: universe, TimeStep: 0.1, Workers: 1}, bhEngine(universe, 0.2, 0))
	if err := s.Step(context.Background()); err != nil {
		t.Fatalf("empty step errored: %v", err)
	}
	if s.StepCount() != 1 {
		t.Errorf("step count = %d, want 1", s.StepCount())
	}
}

func TestStepSingleBodyDriftsLinearly(t *testing.T) {
	universe := quadtree.NewQuad(phys.V(-10, -10), 20)
	s := New(Config{Universe: universe, TimeStep: 0.5, Workers: 1}, bhEngine(universe, 0.2, 0))
	s.AddBody(phys.NewBody(1, phys.V(0, 0), phys.V(1, -0.5)))

	for i := 0; i < 4; i++ {
		if err := s.Step(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	b := s.Bodies()[0]
	if b.Acc != (phys.Vec{}) {
		t.Errorf("single body acceleration = %v, want zero", b.Acc)
	}
	want := phys.V(2, -1) // x + v * (4 * 0.5)
	if b.Pos.Sub(want).Norm() > 1e-12 {
		t.Errorf("position = %v, want %v", b.Pos, want)
	}
}

func TestStepTwoBodiesAtRestLeadingOrder(t *testing.T) {
	universe := quadtree.NewQuad(phys.V(-4, -4), 8)
	dt := 1e-3
	s := New(Config{Universe: universe, TimeStep: dt, Workers: 1}, bhEngine(universe, 0.2, 0))
	s.AddBody(phys.NewBody(1, phys.V(-1, 0), phys.Vec{}))
	s.AddBody(phys.NewBody(1, phys.V(1, 0), phys.Vec{}))

	if err := s.Step(context.Background()); err != nil {
		t.Fatal(err)
	}

	// After one KDK step each body has moved (dt^2/2) G m / d^2 toward the
	// other, exactly, with d = 2.
	want := dt * dt / 2 * 1 / 4
	b0, b1 := s.Bodies()[0], s.Bodies()[1]
	if !scalar.EqualWithinAbs(b0.Pos[0], -1+want, 1e-15) {
		t.Errorf("body 0 x = %v, want %v", b0.Pos[0], -1+want)
	}
	if !scalar.EqualWithinAbs(b1.Pos[0], 1-want, 1e-15) {
		t.Errorf("body 1 x = %v, want %v", b1.Pos[0], 1-want)
	}
	if b0.Pos[1] != 0 || b1.Pos[1] != 0 {
		t.Error("motion must stay on the x axis")
	}
	// Symmetric around the midpoint.
	if !scalar.EqualWithinAbs(b0.Pos[0]+b1.Pos[0], 0, 1e-15) {
		t.Error("bodies must move symmetrically")
	}
}

func TestTwoBodyOrbitEnergyDrift(t *testing.T) {
	universe := quadtree.NewQuad(phys.V(-4, -4), 8)
	v := math.Sqrt(0.5) / math.Sqrt(2)
	s := New(Config{Universe: universe, TimeStep: 1e-4, Workers: 1}, bhEngine(universe, 0.1, 0))
	s.AddBody(phys.NewBody(1, phys.V(-0.5, 0), phys.V(0, -v)))
	s.AddBody(phys.NewBody(1, phys.V(0.5, 0), phys.V(0, v)))

	e0 := diag.TotalEnergy(s.Bodies(), 1)
	for i := 0; i < 10000; i++ {
		if err := s.Step(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	e1 := diag.TotalEnergy(s.Bodies(), 1)
	drift := math.Abs((e1 - e0) / e0)
	if drift > 0.01 {
		t.Errorf("relative energy drift over 1e4 steps = %g, want <= 0.01", drift)
	}
	for i, b := range s.Bodies() {
		if b.Pos.Norm() > 2 {
			t.Errorf("body %d escaped the bound orbit: %v", i, b.Pos)
		}
	}
}

// TestLeapfrogBeatsForwardEuler pins the symplectic property: over the same
// bound orbit the KDK integrator's energy drift stays bounded while forward
// Euler's grows without bound.
func TestLeapfrogBeatsForwardEuler(t *testing.T) {
	const dt = 1e-3
	const steps = 5000

	universe := quadtree.NewQuad(phys.V(-4, -4), 8)
	s := New(Config{Universe: universe, TimeStep: dt, Workers: 1}, bhEngine(universe, 0.05, 0))
	s.AddBody(phys.NewBody(1, phys.V(-0.5, 0), phys.V(0, -math.Sqrt(0.5))))
	s.AddBody(phys.NewBody(1, phys.V(0.5, 0), phys.V(0, math.Sqrt(0.5))))
	e0 := diag.TotalEnergy(s.Bodies(), 1)
	for i := 0; i < steps; i++ {
		if err := s.Step(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	kdkDrift := math.Abs((diag.TotalEnergy(s.Bodies(), 1) - e0) / e0)

	// Forward Euler on the same initial conditions.
	euler := []phys.Body{
		phys.NewBody(1, phys.V(-0.5, 0), phys.V(0, -math.Sqrt(0.5))),
		phys.NewBody(1, phys.V(0.5, 0), phys.V(0, math.Sqrt(0.5))),
	}
	for i := 0; i < steps; i++ {
		acc := direct.AccelerationsNewtonian(euler, 1, 0, 1)
		for k := range euler {
			euler[k].Pos = euler[k].Pos.Add(euler[k].Vel.Scale(dt))
			euler[k].Vel = euler[k].Vel.Add(acc[k].Scale(dt))
		}
	}
	eulerDrift := math.Abs((diag.TotalEnergy(euler, 1) - e0) / e0)

	if kdkDrift > 0.01 {
		t.Errorf("KDK drift = %g, want bounded below 1%%", kdkDrift)
	}
	if eulerDrift < 10*kdkDrift {
		t.Errorf("forward Euler drift %g should dwarf KDK drift %g", eulerDrift, kdkDrift)
	}
}

func TestOutOfUniverseBodyIsSkippedNotRemoved(t *testing.T) {
	universe := quadtree.NewQuad(phys.V(-1, -1), 2)
	s := New(Config{Universe: universe, TimeStep: 0.25, Workers: 1}, bhEngine(universe, 0.2, 0))
	s.AddBody(phys.NewBody(1, phys.V(0, 0), phys.Vec{}))
	s.AddBody(phys.NewBody(1, phys.V(0.5, 0), phys.Vec{}))
	s.AddBody(phys.NewBody(1, phys.V(5, 5), phys.V(1, 0))) // outside

	if err := s.Step(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(s.Bodies()) != 3 {
		t.Fatalf("body count = %d, want 3", len(s.Bodies()))
	}
	out := s.Bodies()[2]
	if out.Acc != (phys.Vec{}) {
		t.Errorf("out-of-universe body acceleration = %v, want zero", out.Acc)
	}
	if want := phys.V(5.25, 5); out.Pos.Sub(want).Norm() > 1e-12 {
		t.Errorf("out-of-universe body position = %v, want ballistic %v", out.Pos, want)
	}
	if got := s.Engine().Excluded(); got != 1 {
		t.Errorf("excluded = %d, want 1", got)
	}
}

func TestStepWithCollisionsEnabled(t *testing.T) {
	universe := quadtree.NewQuad(phys.V(-100, -100), 200)
	s := New(Config{
		Universe:          universe,
		TimeStep:          0.1,
		CollisionsEnabled: true,
		Workers:           1,
	}, bhEngine(universe, 0.2, 0.1))
	s.AddBody(phys.NewBody(1, phys.V(-1, 0), phys.V(1, 0)))
	s.AddBody(phys.NewBody(1, phys.V(1, 0), phys.V(-1, 0)))
	if err := s.Step(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestEnergyTrackingAssignsPerBodyEnergy(t *testing.T) {
	universe := quadtree.NewQuad(phys.V(-4, -4), 8)
	s := New(Config{Universe: universe, TimeStep: 1e-3, EnergyTracking: true, Workers: 1},
		bhEngine(universe, 0.2, 0))
	s.AddBody(phys.NewBody(1, phys.V(-1, 0), phys.V(0, 0.5)))
	s.AddBody(phys.NewBody(1, phys.V(1, 0), phys.V(0, -0.5)))
	if err := s.Step(context.Background()); err != nil {
		t.Fatal(err)
	}
	var sum float64
	for _, b := range s.Bodies() {
		sum += b.Energy
	}
	if total := diag.TotalEnergy(s.Bodies(), 1); !scalar.EqualWithinAbs(sum, total, 1e-9) {
		t.Errorf("tracked energies sum to %v, total is %v", sum, total)
	}
}

func TestFMMEngineDrivesStableStep(t *testing.T) {
	universe := quadtree.NewQuad(phys.V(-10, -10), 20)
	engine := &FMMEngine{
		Universe:     universe,
		ItemsPerCell: 8,
		Eps:          1e-3,
		Softening:    0.05,
		G:            1,
		Workers:      1,
	}
	s := New(Config{Universe: universe, TimeStep: 1e-3, Workers: 1}, engine)
	for i := 0; i < 8; i++ {
		angle := 2 * math.Pi * float64(i) / 8
		s.AddBody(phys.NewBody(1, phys.V(2*math.Cos(angle), 2*math.Sin(angle)), phys.Vec{}))
	}
	var p0 phys.Vec
	for _, b := range s.Bodies() {
		p0 = p0.Add(b.Vel.Scale(b.Mass))
	}
	for i := 0; i < 10; i++ {
		if err := s.Step(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	var p1 phys.Vec
	for _, b := range s.Bodies() {
		p1 = p1.Add(b.Vel.Scale(b.Mass))
	}
	if p1.Sub(p0).Norm() > 1e-6 {
		t.Errorf("momentum drifted from %v to %v", p0, p1)
	}
	// The symmetric ring must contract symmetrically: center of mass stays
	// at the origin.
	var com phys.Vec
	for _, b := range s.Bodies() {
		com = com.Add(b.Pos)
	}
	if com.Norm() > 1e-6 {
		t.Errorf("center of mass moved to %v", com)
	}
}

func TestDirectEngineMatchesBHAtTinyTheta(t *testing.T) {
	universe := quadtree.NewQuad(phys.V(-4, -4), 8)
	mk := func() []phys.Body {
		return []phys.Body{
			phys.NewBody(1, phys.V(-1, 0), phys.V(0, 0.3)),
			phys.NewBody(2, phys.V(1, 0.5), phys.V(0, -0.1)),
			phys.NewBody(0.5, phys.V(0, -1), phys.V(0.2, 0)),
		}
	}

	sb := New(Config{Universe: universe, TimeStep: 1e-3, Workers: 1}, bhEngine(universe, 1e-9, 0.01))
	sb.AddBodies(mk())
	sd := New(Config{Universe: universe, TimeStep: 1e-3, Workers: 1}, &DirectEngine{
		Universe: universe, G: 1, Softening: 0.01, Workers: 1,
	})
	sd.AddBodies(mk())

	for i := 0; i < 50; i++ {
		if err := sb.Step(context.Background()); err != nil {
			t.Fatal(err)
		}
		if err := sd.Step(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	for i := range sb.Bodies() {
		if d := sb.Bodies()[i].Pos.Sub(sd.Bodies()[i].Pos).Norm(); d > 1e-9 {
			t.Errorf("body %d diverged between fully-opened BH and direct: %g", i, d)
		}
	}
}
