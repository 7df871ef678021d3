// Package ingest parses the initial-conditions text formats: the
// count-prefixed block layout (mass, position and velocity on separate
// lines) and the flat one-body-per-line layout.
package ingest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/onnwee/gravity-sim/internal/phys"
	"github.com/onnwee/gravity-sim/internal/simerr"
)

// ReadBodiesFile opens path and parses the count-prefixed layout.
func ReadBodiesFile(path string) ([]phys.Body, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, simerr.Wrap(simerr.ErrIngestOpen, "cannot open "+path, err)
	}
	defer f.Close()
	return ReadBodies(f, os.Stderr)
}

// ReadBodies parses the count-prefixed block layout:
//
//	N
//	m1
//	x1 y1
//	vx1 vy1
//	m2
//	...
//
// Blank lines are ignored. A missing count or a record cut short aborts
// with a structured error.
func ReadBodies(r io.Reader, diag io.Writer) ([]phys.Body, error) {
	lines, err := nonBlankLines(r)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, simerr.New(simerr.ErrIngestMissingCount, "empty input: missing body count")
	}

	count, err := strconv.Atoi(strings.Fields(lines[0])[0])
	if err != nil {
		return nil, simerr.Wrap(simerr.ErrIngestMissingCount, "first line is not a body count", err)
	}

	bodies := make([]phys.Body, 0, count)
	pos := 1
	for i := 0; i < count; i++ {
		if pos+3 > len(lines) {
			return nil, simerr.Newf(simerr.ErrIngestShortRecord,
				"body %d: input ends mid-record (%d of 3 lines present)", i, len(lines)-pos)
		}
		mass, err := strconv.ParseFloat(strings.TrimSpace(lines[pos]), 64)
		if err != nil {
			return nil, simerr.Newf(simerr.ErrIngestShortRecord, "body %d: bad mass line %q", i, lines[pos])
		}
		p, err := parseVec(lines[pos+1])
		if err != nil {
			return nil, simerr.Newf(simerr.ErrIngestShortRecord, "body %d: bad position line %q", i, lines[pos+1])
		}
		v, err := parseVec(lines[pos+2])
		if err != nil {
			return nil, simerr.Newf(simerr.ErrIngestShortRecord, "body %d: bad velocity line %q", i, lines[pos+2])
		}
		bodies = append(bodies, phys.NewBody(mass, p, v))
		pos += 3
	}
	return bodies, nil
}

// ReadBodiesFlat parses the flat layout, one body per line:
//
//	m x y vx vy
//
// Unparseable lines are reported to diag and skipped.
func ReadBodiesFlat(r io.Reader, diag io.Writer) ([]phys.Body, error) {
	scanner := bufio.NewScanner(r)
	var bodies []phys.Body
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 5 {
			reportSkip(diag, lineNo, line)
			continue
		}
		vals := make([]float64, 5)
		ok := true
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				ok = false
				break
			}
			vals[i] = v
		}
		if !ok {
			reportSkip(diag, lineNo, line)
			continue
		}
		bodies = append(bodies, phys.NewBody(vals[0], phys.V(vals[1], vals[2]), phys.V(vals[3], vals[4])))
	}
	if err := scanner.Err(); err != nil {
		return nil, simerr.Wrap(simerr.ErrIngestOpen, "read failed", err)
	}
	return bodies, nil
}

func reportSkip(diag io.Writer, lineNo int, line string) {
	if diag != nil {
		fmt.Fprintf(diag, "ingest: skipping unparseable line %d: %q\n", lineNo, line)
	}
}

func parseVec(line string) (phys.Vec, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return phys.Vec{}, fmt.Errorf("want 2 components, got %d", len(fields))
	}
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return phys.Vec{}, err
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return phys.Vec{}, err
	}
	return phys.V(x, y), nil
}

func nonBlankLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, simerr.Wrap(simerr.ErrIngestOpen, "read failed", err)
	}
	return lines, nil
}
