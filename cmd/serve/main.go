// Command serve runs a simulation and exposes it live over HTTP: REST
// snapshots, a WebSocket frame stream and Prometheus metrics.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"github.com/onnwee/gravity-sim/internal/config"
	"github.com/onnwee/gravity-sim/internal/diag"
	"github.com/onnwee/gravity-sim/internal/errorreporting"
	"github.com/onnwee/gravity-sim/internal/gen"
	"github.com/onnwee/gravity-sim/internal/ingest"
	"github.com/onnwee/gravity-sim/internal/logger"
	"github.com/onnwee/gravity-sim/internal/phys"
	"github.com/onnwee/gravity-sim/internal/quadtree"
	"github.com/onnwee/gravity-sim/internal/solver"
	"github.com/onnwee/gravity-sim/internal/tracing"
	"github.com/onnwee/gravity-sim/internal/viewer"
)

func main() {
	_ = godotenv.Load()
	ctx := context.Background()
	cfg := config.Load()

	logger.Init(cfg.LogLevel)
	logger.Info("Initializing viewer server", "addr", cfg.ViewerAddr, "log_level", cfg.LogLevel)

	if err := errorreporting.Init(cfg.SentryEnvironment); err != nil {
		logger.Warn("Failed to initialize error reporting", "error", err)
	} else if errorreporting.IsSentryEnabled() {
		defer errorreporting.Flush(2 * time.Second)
	}

	shutdownTracing, err := tracing.Init("gravity-sim-serve")
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
		input     = flag.String("input", "", "initial conditions file (count-prefixed layout)")
		generator = flag.String("gen", "ring", "generator when -input is empty: ring or square")
		n         = flag.Int("n", 500, "generated body count")
		extent    = flag.Float64("extent", 10, "generated extent")
		totalMass = flag.Float64("mass", 500, "generated total mass")
		seed      = flag.Int64("seed", 12345, "generator seed")
		frameEach = flag.Int("frame-every", 10, "publish a frame every k steps")
	)
	flag.Parse()

	var bodies []phys.Body
	if *input != "" {
		bodies, err = ingest.ReadBodiesFile(*input)
		if err != nil {
			logger.Error("Failed to load bodies", "error", err)
			log.Fatalf("load bodies: %v", err)
		}
	} else if *generator == "square" {
		bodies = gen.UniformSquare(*n, *extent, *totalMass, *seed)
	} else {
		bodies = gen.StableRing(*n, *extent, *totalMass, *seed, cfg.G)
	}

	side := 6 * *extent
	universe := quadtree.NewQuad(phys.V(-side/2, -side/2), side)
	s := solver.New(solver.Config{
		Universe:          universe,
		TimeStep:          cfg.TimeStep,
		G:                 cfg.G,
		CollisionsEnabled: cfg.CollisionsEnabled,
		EnergyTracking:    cfg.EnergyTracking,
		Workers:           cfg.Workers,
	}, engineFromConfig(universe, cfg))
	s.AddBodies(bodies)

	srv, err := viewer.NewServer(cfg.ViewerFPS, cfg.FrameCacheMB)
	if err != nil {
		logger.Error("Failed to create viewer server", "error", err)
		log.Fatalf("viewer: %v", err)
	}
	defer srv.Close()

	go srv.Hub().Run(ctx)
	go simulationLoop(ctx, s, srv, cfg, *frameEach)

	logger.Info("Viewer running", "address", cfg.ViewerAddr, "bodies", len(bodies), "engine", s.Engine().Name())
	log.Fatal(http.ListenAndServe(cfg.ViewerAddr, srv.Router()))
}

func engineFromConfig(universe quadtree.Quad, cfg *config.Config) solver.Engine {
	switch cfg.Engine {
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

// simulationLoop steps the solver forever, publishing frames every
// frameEach steps.
func simulationLoop(ctx context.Context, s *solver.Solver, srv *viewer.Server, cfg *config.Config, frameEach int) {
	if frameEach <= 0 {
		frameEach = 1
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if err := s.Step(ctx); err != nil {
			logger.Error("Step failed", "error", err)
			errorreporting.CaptureError(err, "serve")
			return
		}
		step := s.StepCount()
		if step%frameEach != 0 {
			continue
		}
		t := float64(step) * cfg.TimeStep
		frame := viewer.NewFrame(step, t, s.Bodies())
		st := viewer.State{
			Step:   step,
			Bodies: len(s.Bodies()),
			Engine: s.Engine().Name(),
			Time:   t,
		}
		if cfg.EnergyTracking {
			e := diag.TotalEnergy(s.Bodies(), cfg.G)
			frame.Energy = e
			st.Energy = e
		}
		if err := srv.Publish(frame, st); err != nil {
			logger.Warn("Frame publish failed", "error", err)
		}
	}
}
