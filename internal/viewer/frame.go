// Package viewer serves a running simulation over HTTP: REST snapshots,
// a WebSocket frame stream, and Prometheus metrics.
package viewer

import (
	"encoding/json"

	"github.com/onnwee/gravity-sim/internal/phys"
)

// Frame is one renderable snapshot of the simulation.
type Frame struct {
	Step     int         `json:"step"`
	Time     float64     `json:"time"`
	Bodies   []FrameBody `json:"bodies"`
	Energy   float64     `json:"energy,omitempty"`
	Entropy  float64     `json:"entropy,omitempty"`
	Excluded int         `json:"excluded,omitempty"`
}

// FrameBody is the per-body payload of a frame.
type FrameBody struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	VX   float64 `json:"vx"`
	VY   float64 `json:"vy"`
	Mass float64 `json:"m"`
}

// NewFrame snapshots the body set at the given step.
func NewFrame(step int, time float64, bodies []phys.Body) *Frame {
	f := &Frame{Step: step, Time: time, Bodies: make([]FrameBody, len(bodies))}
	for i := range bodies {
		f.Bodies[i] = FrameBody{
			X:    bodies[i].Pos[0],
			Y:    bodies[i].Pos[1],
			VX:   bodies[i].Vel[0],
			VY:   bodies[i].Vel[1],
			Mass: bodies[i].Mass,
		}
	}
	return f
}

// Encode serializes the frame once for caching and broadcast.
func (f *Frame) Encode() ([]byte, error) {
	return json.Marshal(f)
}
