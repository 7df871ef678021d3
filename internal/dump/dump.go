// Package dump writes the simulator's output formats: CSV trajectories
// (optionally brotli-compressed), the tab-separated positions text and the
// energy log.
package dump

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/andybalholm/brotli"

	"github.com/onnwee/gravity-sim/internal/phys"
)

// TrajectoryWriter emits one CSV row per body per dumped step:
// step,id,x0,x1.
type TrajectoryWriter struct {
	w io.Writer
}

// NewTrajectoryWriter writes the header and returns the writer.
func NewTrajectoryWriter(w io.Writer) (*TrajectoryWriter, error) {
	if _, err := io.WriteString(w, "step,id,x0,x1\n"); err != nil {
		return nil, err
	}
	return &TrajectoryWriter{w: w}, nil
}

// Frame appends one row per body for the given step.
func (t *TrajectoryWriter) Frame(step int, bodies []phys.Body) error {
	for i := range bodies {
		_, err := fmt.Fprintf(t.w, "%d,%d,%s,%s\n", step, i,
			formatFloat(bodies[i].Pos[0]), formatFloat(bodies[i].Pos[1]))
		if err != nil {
			return err
		}
	}
	return nil
}

// CompressedTrajectory couples a TrajectoryWriter with a brotli stream.
// Close flushes the compressor; the underlying file is the caller's.
type CompressedTrajectory struct {
	*TrajectoryWriter
	bw *brotli.Writer
}

// NewCompressedTrajectory wraps w in a brotli stream and writes the CSV
// header through it.
func NewCompressedTrajectory(w io.Writer) (*CompressedTrajectory, error) {
	bw := brotli.NewWriter(w)
	tw, err := NewTrajectoryWriter(bw)
	if err != nil {
		return nil, err
	}
	return &CompressedTrajectory{TrajectoryWriter: tw, bw: bw}, nil
}

// Close flushes and terminates the compressed stream.
func (c *CompressedTrajectory) Close() error {
	return c.bw.Close()
}

// WritePositionsFrame writes the positions text block for one step:
//
//	# Timestep <k>
//	<id>\t<x>\t<y>[\t<energy>]
//	<blank>
func WritePositionsFrame(w io.Writer, step int, bodies []phys.Body, withEnergy bool) error {
	if _, err := fmt.Fprintf(w, "# Timestep %d\n", step); err != nil {
		return err
	}
	for i := range bodies {
		var err error
		if withEnergy {
			_, err = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i,
				formatFloat(bodies[i].Pos[0]), formatFloat(bodies[i].Pos[1]),
				formatFloat(bodies[i].Energy))
		} else {
			_, err = fmt.Fprintf(w, "%d\t%s\t%s\n", i,
				formatFloat(bodies[i].Pos[0]), formatFloat(bodies[i].Pos[1]))
		}
		if err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// EnergyLog writes the plain-text energy history.
type EnergyLog struct {
	w io.Writer
}

// NewEnergyLog writes the header and returns the log.
func NewEnergyLog(w io.Writer) (*EnergyLog, error) {
	if _, err := io.WriteString(w, "# Step\tTotalEnergy\n"); err != nil {
		return nil, err
	}
	return &EnergyLog{w: w}, nil
}

// Record appends one step's total energy.
func (e *EnergyLog) Record(step int, energy float64) error {
	_, err := fmt.Fprintf(e.w, "%d\t%s\n", step, formatFloat(energy))
	return err
}

// CreateFile is a small convenience that creates path for writing.
func CreateFile(path string) (*os.File, error) {
	return os.Create(path)
}

func formatFloat(v float64) string {
	// Shortest representation that round-trips the float64 exactly.
	return strconv.FormatFloat(v, 'g', -1, 64)
}
