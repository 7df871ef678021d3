// Package solver drives the simulation: a velocity-Verlet (kick-drift-kick)
// integrator over a polymorphic force engine, with optional collision
// resolution and energy bookkeeping per step.
package solver

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/onnwee/gravity-sim/internal/collision"
	"github.com/onnwee/gravity-sim/internal/diag"
	"github.com/onnwee/gravity-sim/internal/metrics"
	"github.com/onnwee/gravity-sim/internal/par"
	"github.com/onnwee/gravity-sim/internal/phys"
	"github.com/onnwee/gravity-sim/internal/quadtree"
	"github.com/onnwee/gravity-sim/internal/tracing"
)

// Config enumerates every solver parameter.
type Config struct {
	Universe quadtree.Quad
	TimeStep float64
	// G defaults to 1 when zero.
	G                 float64
	CollisionsEnabled bool
	EnergyTracking    bool
	// Workers bounds the parallel phases; <= 0 uses GOMAXPROCS.
	Workers int
}

// Solver owns the body vector and advances it step by step.
type Solver struct {
	cfg      Config
	engine   Engine
	resolver *collision.Resolver
	bodies   []phys.Body
	step     int
}

// New creates a solver over the given engine.
func New(cfg Config, engine Engine) *Solver {
	if cfg.G == 0 {
		cfg.G = 1
	}
	return &Solver{cfg: cfg, engine: engine, resolver: collision.NewResolver()}
}

// AddBody appends a body to the simulation.
func (s *Solver) AddBody(b phys.Body) {
	s.bodies = append(s.bodies, b)
	metrics.BodiesSimulated.Set(float64(len(s.bodies)))
}

// AddBodies appends a batch of bodies.
func (s *Solver) AddBodies(bodies []phys.Body) {
	s.bodies = append(s.bodies, bodies...)
	metrics.BodiesSimulated.Set(float64(len(s.bodies)))
}

// Bodies exposes the body vector. Callers must not mutate it during a
// Step.
func (s *Solver) Bodies() []phys.Body { return s.bodies }

// StepCount returns the number of completed steps.
func (s *Solver) StepCount() int { return s.step }

// Config returns the solver configuration.
func (s *Solver) Config() Config { return s.cfg }

// Engine returns the force engine.
func (s *Solver) Engine() Engine { return s.engine }

// Step advances the simulation by one kick-drift-kick cycle:
//
//  1. build the engine and set accelerations at the current positions
//  2. half kick, full drift
//  3. rebuild and recompute accelerations at the new positions
//  4. half kick
//  5. optionally resolve collisions and refresh per-body energies
//
// With no bodies the step is a no-op.
func (s *Solver) Step(ctx context.Context) error {
	if len(s.bodies) == 0 {
		s.step++
		return nil
	}

	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "solver.step")
	span.SetAttributes(
		attribute.Int("step", s.step),
		attribute.Int("bodies", len(s.bodies)),
		attribute.String("engine", s.engine.Name()),
	)
	defer span.End()

	dt := s.cfg.TimeStep
	half := dt / 2

	if err := s.buildAndAccelerate(ctx); err != nil {
		tracing.RecordError(span, err)
		return err
	}

	par.ForEach(len(s.bodies), s.cfg.Workers, func(i int) {
		b := &s.bodies[i]
		b.Kick(b.Acc.Scale(half))
		b.Drift(b.Vel.Scale(dt))
	})

	if err := s.buildAndAccelerate(ctx); err != nil {
		tracing.RecordError(span, err)
		return err
	}

	par.ForEach(len(s.bodies), s.cfg.Workers, func(i int) {
		b := &s.bodies[i]
		b.Kick(b.Acc.Scale(half))
	})

	if s.cfg.CollisionsEnabled {
		_, cspan := tracing.StartSpan(ctx, "solver.collisions")
		resolved := s.resolver.Resolve(s.bodies, dt)
		cspan.End()
		metrics.CollisionsResolved.Add(float64(resolved))
	}

	if s.cfg.EnergyTracking {
		_, espan := tracing.StartSpan(ctx, "solver.energy")
		diag.AssignEnergies(s.bodies, s.cfg.G, s.cfg.Workers)
		metrics.TotalEnergy.Set(diag.TotalEnergy(s.bodies, s.cfg.G))
		espan.End()
	}

	s.step++
	metrics.StepsTotal.Inc()
	metrics.StepDuration.Observe(time.Since(start).Seconds())
	return nil
}

// buildAndAccelerate rebuilds the engine over the current positions and
// refreshes every body's acceleration.
func (s *Solver) buildAndAccelerate(ctx context.Context) error {
	_, span := tracing.StartSpan(ctx, "engine.build")
	buildStart := time.Now()
	err := s.engine.Build(s.bodies)
	metrics.TreeBuildDuration.WithLabelValues(s.engine.Name()).Observe(time.Since(buildStart).Seconds())
	if err != nil {
		tracing.RecordError(span, err)
		span.End()
		return err
	}
	span.End()
	metrics.OutOfUniverseBodies.Set(float64(s.engine.Excluded()))

	_, span = tracing.StartSpan(ctx, "engine.accelerate")
	s.engine.Accelerate(s.bodies)
	span.End()
	metrics.ForceEvaluations.WithLabelValues(s.engine.Name()).Add(float64(len(s.bodies)))
	return nil
}

// Run advances the simulation n steps, invoking onStep after each when
// non-nil.
func (s *Solver) Run(ctx context.Context, n int, onStep func(step int) error) error {
	for i := 0; i < n; i++ {
		if err := s.Step(ctx); err != nil {
			return err
		}
		if onStep != nil {
			if err := onStep(s.step); err != nil {
				return err
			}
		}
	}
	return nil
}
