// Command simulate runs an N-body simulation from an initial-conditions
// file or a built-in generator and writes trajectory, positions and energy
// dumps.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/onnwee/gravity-sim/internal/config"
	"github.com/onnwee/gravity-sim/internal/diag"
	"github.com/onnwee/gravity-sim/internal/dump"
	"github.com/onnwee/gravity-sim/internal/errorreporting"
	"github.com/onnwee/gravity-sim/internal/gen"
	"github.com/onnwee/gravity-sim/internal/ingest"
	"github.com/onnwee/gravity-sim/internal/logger"
	"github.com/onnwee/gravity-sim/internal/phys"
	"github.com/onnwee/gravity-sim/internal/quadtree"
	"github.com/onnwee/gravity-sim/internal/solver"
	"github.com/onnwee/gravity-sim/internal/tracing"
)

func main() {
	_ = godotenv.Load()
	ctx := context.Background()
	cfg := config.Load()

	logger.Init(cfg.LogLevel)
	logger.Info("Initializing simulation", "log_level", cfg.LogLevel)

	if err := errorreporting.Init(cfg.SentryEnvironment); err != nil {
		logger.Warn("Failed to initialize error reporting", "error", err)
	} else if errorreporting.IsSentryEnabled() {
		defer errorreporting.Flush(2 * time.Second)
	}

	shutdownTracing, err := tracing.Init("gravity-sim-simulate")
	if err != nil {
		logger.Warn("Failed to initialize tracing", "error", err)
	} else {
		defer func() {
			if err := shutdownTracing(ctx); err != nil {
				logger.Error("Failed to shutdown tracer", "error", err)
			}
		}()
	}

	var (
		input      = flag.String("input", "", "initial conditions file (count-prefixed layout)")
		flat       = flag.Bool("flat", false, "input uses the flat m x y vx vy layout")
		generator  = flag.String("gen", "", "generator: ring or square (used when -input is empty)")
		n          = flag.Int("n", 1000, "generated body count")
		extent     = flag.Float64("extent", 10, "generated extent")
		totalMass  = flag.Float64("mass", 1000, "generated total mass")
		seed       = flag.Int64("seed", 12345, "generator seed")
		engineName = flag.String("engine", cfg.Engine, "force engine: bh, fmm or direct")
		steps      = flag.Int("steps", cfg.Steps, "number of integration steps")
		dt         = flag.Float64("dt", cfg.TimeStep, "time step")
		universe   = flag.Float64("universe", 0, "universe side length centered at the origin (0 = derive from bodies)")
		trajectory = flag.String("trajectory", "", "trajectory CSV output path")
		positions  = flag.String("positions", "", "positions text output path")
		energyLog  = flag.String("energy", "", "energy log output path")
	)
	flag.Parse()

	bodies, err := loadBodies(*input, *flat, *generator, *n, *extent, *totalMass, *seed, cfg.G)
	if err != nil {
		logger.Error("Failed to load bodies", "error", err)
		errorreporting.CaptureError(err, "simulate")
		os.Exit(1)
	}
	logger.Info("Loaded bodies", "count", len(bodies))

	quad := universeQuad(*universe, bodies)
	s := solver.New(solver.Config{
		Universe:          quad,
		TimeStep:          *dt,
		G:                 cfg.G,
		CollisionsEnabled: cfg.CollisionsEnabled,
		EnergyTracking:    cfg.EnergyTracking,
		Workers:           cfg.Workers,
	}, buildEngine(*engineName, quad, cfg))
	s.AddBodies(bodies)

	sinks, err := openSinks(*trajectory, *positions, *energyLog, cfg)
	if err != nil {
		logger.Error("Failed to open output files", "error", err)
		os.Exit(1)
	}
	defer sinks.close()

	logger.Info("Starting run",
		"engine", *engineName, "steps", *steps, "dt", *dt,
		"universe", quad.Length, "collisions", cfg.CollisionsEnabled)

	start := time.Now()
	err = s.Run(ctx, *steps, func(step int) error {
		if cfg.DumpEvery > 0 && step%cfg.DumpEvery == 0 {
			if err := sinks.dump(step, s); err != nil {
				return err
			}
			if step%(cfg.DumpEvery*10) == 0 {
				elapsed := time.Since(start)
				logger.Info("Progress", "step", step,
					"steps_per_sec", fmt.Sprintf("%.0f", float64(step)/elapsed.Seconds()))
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Simulation failed", "error", err)
		errorreporting.CaptureError(err, "simulate")
		os.Exit(2)
	}
	logger.Info("Run complete", "steps", *steps, "elapsed", time.Since(start).Truncate(time.Millisecond))
}

// loadBodies reads the initial conditions from a file or a generator.
func loadBodies(input string, flat bool, generator string, n int, extent, mass float64, seed int64, g float64) ([]phys.Body, error) {
	if input != "" {
		if flat {
			f, err := os.Open(input)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			return ingest.ReadBodiesFlat(f, os.Stderr)
		}
		return ingest.ReadBodiesFile(input)
	}
	switch generator {
	case "ring":
		return gen.StableRing(n, extent, mass, seed, g), nil
	case "square", "":
		return gen.UniformSquare(n, extent, mass, seed), nil
	default:
		return nil, fmt.Errorf("unknown generator %q", generator)
	}
}

// universeQuad derives the simulation domain: either the explicit size or
// three times the body bounding square, centered on the origin.
func universeQuad(side float64, bodies []phys.Body) quadtree.Quad {
	if side <= 0 {
		var max float64 = 1
		for i := range bodies {
			for d := 0; d < 2; d++ {
				if v := bodies[i].Pos[d]; v > max {
					max = v
				} else if -v > max {
					max = -v
				}
			}
		}
		side = 6 * max
	}
	return quadtree.NewQuad(phys.V(-side/2, -side/2), side)
}

func buildEngine(name string, universe quadtree.Quad, cfg *config.Config) solver.Engine {
	switch name {
	case "fmm":
		return &solver.FMMEngine{
			Universe:     universe,
			ItemsPerCell: cfg.ItemsPerCell,
			Eps:          cfg.Eps,
			Softening:    cfg.Softening,
			G:            cfg.G,
			Workers:      cfg.Workers,
		}
	case "direct":
		return &solver.DirectEngine{
			Universe:  universe,
			G:         cfg.G,
			Softening: cfg.Softening,
			Workers:   cfg.Workers,
		}
	default:
		return &solver.BHEngine{
			Universe:  universe,
			Theta:     cfg.Theta,
			MaxDepth:  cfg.MaxDepth,
			MaxLeaves: cfg.MaxLeaves,
			Softening: cfg.Softening,
			G:         cfg.G,
			Workers:   cfg.Workers,
		}
	}
}

// sinks bundles the optional output writers.
type sinks struct {
	trajFile  *os.File
	traj      *dump.TrajectoryWriter
	trajBr    *dump.CompressedTrajectory
	posFile   *os.File
	energy    *dump.EnergyLog
	energyF   *os.File
	withG     float64
	trackArgs bool
}

func openSinks(trajectory, positions, energyPath string, cfg *config.Config) (*sinks, error) {
	s := &sinks{withG: cfg.G, trackArgs: cfg.EnergyTracking}
	if trajectory != "" {
		f, err := dump.CreateFile(trajectory)
		if err != nil {
			return nil, err
		}
		s.trajFile = f
		if cfg.DumpCompressed {
			w, err := dump.NewCompressedTrajectory(f)
			if err != nil {
				return nil, err
			}
			s.trajBr = w
		} else {
			w, err := dump.NewTrajectoryWriter(f)
			if err != nil {
				return nil, err
			}
			s.traj = w
		}
	}
	if positions != "" {
		f, err := dump.CreateFile(positions)
		if err != nil {
			return nil, err
		}
		s.posFile = f
	}
	if energyPath != "" {
		f, err := dump.CreateFile(energyPath)
		if err != nil {
			return nil, err
		}
		s.energyF = f
		log, err := dump.NewEnergyLog(f)
		if err != nil {
			return nil, err
		}
		s.energy = log
	}
	return s, nil
}

func (s *sinks) dump(step int, sv *solver.Solver) error {
	bodies := sv.Bodies()
	if s.trajBr != nil {
		if err := s.trajBr.Frame(step, bodies); err != nil {
			return err
		}
	} else if s.traj != nil {
		if err := s.traj.Frame(step, bodies); err != nil {
			return err
		}
	}
	if s.posFile != nil {
		if err := dump.WritePositionsFrame(s.posFile, step, bodies, s.trackArgs); err != nil {
			return err
		}
	}
	if s.energy != nil {
		if err := s.energy.Record(step, diag.TotalEnergy(bodies, s.withG)); err != nil {
			return err
		}
	}
	return nil
}

func (s *sinks) close() {
	if s.trajBr != nil {
		if err := s.trajBr.Close(); err != nil {
			log.Printf("closing compressed trajectory: %v", err)
		}
	}
	if s.trajFile != nil {
		s.trajFile.Close()
	}
	if s.posFile != nil {
		s.posFile.Close()
	}
	if s.energyF != nil {
		s.energyF.Close()
	}
}
