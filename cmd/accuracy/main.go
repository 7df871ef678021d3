// Command accuracy sweeps the approximation parameters of both
// hierarchical engines against the direct oracle and writes TSV reports:
// FMM potential error vs fault tolerance and items-per-cell, and
// Barnes-Hut force error vs theta.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"

	"github.com/onnwee/gravity-sim/internal/config"
	"github.com/onnwee/gravity-sim/internal/direct"
	"github.com/onnwee/gravity-sim/internal/fmm"
	"github.com/onnwee/gravity-sim/internal/gen"
	"github.com/onnwee/gravity-sim/internal/logger"
	"github.com/onnwee/gravity-sim/internal/phys"
	"github.com/onnwee/gravity-sim/internal/quadtree"
)

type errorStats struct {
	absTot float64
	relTot float64
	absMax float64
	relMax float64
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger.Init(cfg.LogLevel)

	var (
		n      = flag.Int("n", 1000, "body count")
		extent = flag.Float64("extent", 10, "cloud extent")
		seed   = flag.Int64("seed", 42, "generator seed")
		outDir = flag.String("out", ".", "output directory for TSV reports")
	)
	flag.Parse()

	bodies := gen.UniformSquare(*n, *extent, float64(*n), *seed)
	logger.Info("Computing direct reference", "bodies", *n)
	start := time.Now()
	phiDirect := direct.Potentials(bodies, cfg.Workers)
	logger.Info("Direct potentials done", "elapsed", time.Since(start).Truncate(time.Millisecond))

	if err := sweepFaultTolerance(bodies, phiDirect, cfg, *outDir); err != nil {
		logger.Error("Fault-tolerance sweep failed", "error", err)
		os.Exit(2)
	}
	if err := sweepItemsPerLeaf(bodies, phiDirect, cfg, *outDir); err != nil {
		logger.Error("Items-per-leaf sweep failed", "error", err)
		os.Exit(2)
	}
	if err := sweepTheta(bodies, cfg, *outDir); err != nil {
		logger.Error("Theta sweep failed", "error", err)
		os.Exit(2)
	}
	logger.Info("Accuracy sweeps complete", "dir", *outDir)
}

func potentialError(bodies []phys.Body, phiDirect []float64, itemsPerCell int, eps float64, cfg *config.Config) (errorStats, error) {
	tree, err := fmm.NewTree(bodies, fmm.Params{
		ItemsPerCell: itemsPerCell,
		Eps:          eps,
		Soft:         cfg.Softening,
		Workers:      cfg.Workers,
	})
	if err != nil {
		return errorStats{}, err
	}
	phi := tree.ParticlePotentials(bodies)

	var stats errorStats
	var sumSqErr, sumSqRef float64
	for i := range phi {
		diff := phiDirect[i] - phi[i]
		sumSqErr += diff * diff
		sumSqRef += phiDirect[i] * phiDirect[i]
		abs := math.Abs(diff)
		if abs > stats.absMax {
			stats.absMax = abs
		}
		if math.Abs(phiDirect[i]) > 1e-12 {
			if rel := abs / math.Abs(phiDirect[i]); rel > stats.relMax {
				stats.relMax = rel
			}
		}
	}
	stats.absTot = math.Sqrt(sumSqErr)
	stats.relTot = math.Sqrt(sumSqErr) / math.Sqrt(sumSqRef)
	return stats, nil
}

func sweepFaultTolerance(bodies []phys.Body, phiDirect []float64, cfg *config.Config, dir string) error {
	f, err := os.Create(dir + "/fmm_error_vs_eps.tsv")
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintln(f, "fault_tolerance_eps\tE_abs_tot\tE_rel_tot\tE_abs_max\tE_rel_max")
	for _, eps := range []float64{1, 0.1, 0.01, 1e-3, 1e-4, 1e-5} {
		stats, err := potentialError(bodies, phiDirect, cfg.ItemsPerCell, eps, cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(f, "%g\t%.16g\t%.16g\t%.16g\t%.16g\n",
			eps, stats.absTot, stats.relTot, stats.absMax, stats.relMax)
	}
	return nil
}

func sweepItemsPerLeaf(bodies []phys.Body, phiDirect []float64, cfg *config.Config, dir string) error {
	f, err := os.Create(dir + "/fmm_error_vs_items.tsv")
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintln(f, "items_per_leaf\tE_abs_tot\tE_rel_tot\tE_abs_max\tE_rel_max")
	for _, items := range []int{16, 32, 64, 128, 256} {
		stats, err := potentialError(bodies, phiDirect, items, cfg.Eps, cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(f, "%d\t%.16g\t%.16g\t%.16g\t%.16g\n",
			items, stats.absTot, stats.relTot, stats.absMax, stats.relMax)
	}
	return nil
}

func sweepTheta(bodies []phys.Body, cfg *config.Config, dir string) error {
	f, err := os.Create(dir + "/bh_error_vs_theta.tsv")
	if err != nil {
		return err
	}
	defer f.Close()

	ref := direct.AccelerationsNewtonian(bodies, cfg.G, cfg.Softening, cfg.Workers)

	// Bounding square with margin, matching universeQuad in cmd/simulate.
	var max float64 = 1
	for i := range bodies {
		for d := 0; d < 2; d++ {
			if v := math.Abs(bodies[i].Pos[d]); v > max {
				max = v
			}
		}
	}
	quad := quadtree.NewQuad(phys.V(-3*max, -3*max), 6*max)

	fmt.Fprintln(f, "theta\tE_rel_median\tE_rel_max")
	for _, theta := range []float64{0.9, 0.7, 0.5, 0.3, 0.2, 0.1, 0.05} {
		tree := quadtree.NewBHTree(quad, cfg.MaxDepth, cfg.MaxLeaves)
		for i := range bodies {
			tree.Insert(bodies[i])
		}
		rels := make([]float64, 0, len(bodies))
		var relMax float64
		for i := range bodies {
			b := bodies[i]
			b.ResetAcceleration()
			tree.UpdateForce(&b, theta, cfg.G, cfg.Softening)
			rel := b.Acc.Sub(ref[i]).Norm() / ref[i].Norm()
			rels = append(rels, rel)
			if rel > relMax {
				relMax = rel
			}
		}
		sort.Float64s(rels)
		fmt.Fprintf(f, "%g\t%.16g\t%.16g\n", theta, rels[len(rels)/2], relMax)
	}
	return nil
}
