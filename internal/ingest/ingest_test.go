package ingest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/onnwee/gravity-sim/internal/phys"
	"github.com/onnwee/gravity-sim/internal/simerr"
)

func TestReadBodiesCountPrefixed(t *testing.T) {
	input := `2
1.5
-1 0
0.25 -0.25

2.5
1 0
0 0.5
`
	bodies, err := ReadBodies(strings.NewReader(input), nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []phys.Body{
		phys.NewBody(1.5, phys.V(-1, 0), phys.V(0.25, -0.25)),
		phys.NewBody(2.5, phys.V(1, 0), phys.V(0, 0.5)),
	}
	if diff := cmp.Diff(want, bodies); diff != "" {
		t.Errorf("bodies mismatch (-want +got):\n%s", diff)
	}
}

func TestReadBodiesIgnoresBlankLines(t *testing.T) {
	input := "\n1\n\n1\n\n0 0\n\n1 1\n\n"
	bodies, err := ReadBodies(strings.NewReader(input), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(bodies) != 1 || bodies[0].Vel != phys.V(1, 1) {
		t.Errorf("parsed %+v", bodies)
	}
}

func TestReadBodiesMissingCount(t *testing.T) {
	_, err := ReadBodies(strings.NewReader("not-a-number\n1\n0 0\n0 0\n"), nil)
	if !simerr.IsCode(err, simerr.ErrIngestMissingCount) {
		t.Errorf("err = %v, want INGEST_MISSING_COUNT", err)
	}
	_, err = ReadBodies(strings.NewReader(""), nil)
	if !simerr.IsCode(err, simerr.ErrIngestMissingCount) {
		t.Errorf("empty input err = %v, want INGEST_MISSING_COUNT", err)
	}
}

func TestReadBodiesShortRecord(t *testing.T) {
	_, err := ReadBodies(strings.NewReader("2\n1\n0 0\n0 0\n1\n0 0\n"), nil)
	if !simerr.IsCode(err, simerr.ErrIngestShortRecord) {
		t.Errorf("err = %v, want INGEST_SHORT_RECORD", err)
	}
}

func TestReadBodiesBadVectorLine(t *testing.T) {
	_, err := ReadBodies(strings.NewReader("1\n1\n0 zero\n0 0\n"), nil)
	if !simerr.IsCode(err, simerr.ErrIngestShortRecord) {
		t.Errorf("err = %v, want INGEST_SHORT_RECORD", err)
	}
}

func TestReadBodiesFlat(t *testing.T) {
	input := `1 0 0 0.5 0
garbage line here
2 1 1 0 0
3 2 2
`
	var diag bytes.Buffer
	bodies, err := ReadBodiesFlat(strings.NewReader(input), &diag)
	if err != nil {
		t.Fatal(err)
	}
	if len(bodies) != 2 {
		t.Fatalf("parsed %d bodies, want 2", len(bodies))
	}
	if bodies[0].Mass != 1 || bodies[1].Pos != phys.V(1, 1) {
		t.Errorf("bodies = %+v", bodies)
	}
	out := diag.String()
	if !strings.Contains(out, "line 2") || !strings.Contains(out, "line 4") {
		t.Errorf("diagnostics should mention both skipped lines, got %q", out)
	}
}

func TestReadBodiesFileMissing(t *testing.T) {
	_, err := ReadBodiesFile("/nonexistent/bodies.txt")
	if !simerr.IsCode(err, simerr.ErrIngestOpen) {
		t.Errorf("err = %v, want INGEST_OPEN_FAILED", err)
	}
}
