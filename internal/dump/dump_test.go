package dump

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"

	"github.com/onnwee/gravity-sim/internal/phys"
)

func sampleBodies() []phys.Body {
	a := phys.NewBody(1, phys.V(-0.5, 0.25), phys.Vec{})
	a.Energy = -1.25
	b := phys.NewBody(2, phys.V(1, -1), phys.Vec{})
	b.Energy = 0.5
	return []phys.Body{a, b}
}

func TestTrajectoryCSV(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewTrajectoryWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Frame(0, sampleBodies()); err != nil {
		t.Fatal(err)
	}
	if err := w.Frame(10, sampleBodies()[:1]); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "step,id,x0,x1" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(lines))
	}
	if !strings.HasPrefix(lines[1], "0,0,-0.5,0.25") {
		t.Errorf("row = %q", lines[1])
	}
	if !strings.HasPrefix(lines[3], "10,0,") {
		t.Errorf("row = %q", lines[3])
	}
}

func TestCompressedTrajectoryRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewCompressedTrajectory(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Frame(3, sampleBodies()); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r := brotli.NewReader(&buf)
	raw, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	text := string(raw)
	if !strings.HasPrefix(text, "step,id,x0,x1\n") {
		t.Errorf("decompressed header missing: %q", text)
	}
	if !strings.Contains(text, "3,1,1,-1") {
		t.Errorf("decompressed rows missing: %q", text)
	}
}

func TestPositionsFrame(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePositionsFrame(&buf, 7, sampleBodies(), false); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	if !strings.HasPrefix(got, "# Timestep 7\n0\t-0.5\t0.25\n1\t1\t-1\n") {
		t.Errorf("frame = %q", got)
	}
	if !strings.HasSuffix(got, "\n\n") {
		t.Error("frame must end with a blank line")
	}
}

func TestPositionsFrameWithEnergy(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePositionsFrame(&buf, 0, sampleBodies(), true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "0\t-0.5\t0.25\t-1.25\n") {
		t.Errorf("energy column missing: %q", buf.String())
	}
}

func TestEnergyLog(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewEnergyLog(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := log.Record(0, -0.5); err != nil {
		t.Fatal(err)
	}
	if err := log.Record(100, -0.50001); err != nil {
		t.Fatal(err)
	}
	want := "# Step\tTotalEnergy\n0\t-0.5\n100\t-0.50001\n"
	if buf.String() != want {
		t.Errorf("log = %q, want %q", buf.String(), want)
	}
}
