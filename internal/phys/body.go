package phys

// Body is a point mass with kinematic state. It is mutated only by the
// solver's kick/drift/set-acceleration operations and by the collision
// resolver; force engines treat bodies as read-only sources.
type Body struct {
	Mass   float64
	Pos    Vec
	Vel    Vec
	Acc    Vec
	Energy float64
}

// NewBody creates a body with the given mass, position and velocity.
func NewBody(mass float64, pos, vel Vec) Body {
	return Body{Mass: mass, Pos: pos, Vel: vel}
}

// SourceStrength returns the body's charge in the field equations. For
// gravity this is the mass.
func (b *Body) SourceStrength() float64 { return b.Mass }

// Kick applies a velocity increment.
func (b *Body) Kick(dv Vec) { b.Vel = b.Vel.Add(dv) }

// Drift applies a position increment.
func (b *Body) Drift(dx Vec) { b.Pos = b.Pos.Add(dx) }

// AddAcceleration accumulates an acceleration contribution.
func (b *Body) AddAcceleration(da Vec) { b.Acc = b.Acc.Add(da) }

// ResetAcceleration zeroes the accumulated acceleration.
func (b *Body) ResetAcceleration() { b.Acc = Vec{} }

// Combine merges two aggregate bodies into one cluster: total mass,
// mass-weighted center of mass and mass-weighted mean velocity.
func Combine(a, b Body) Body {
	m := a.Mass + b.Mass
	return Body{
		Mass: m,
		Pos:  a.Pos.Scale(a.Mass).Add(b.Pos.Scale(b.Mass)).Div(m),
		Vel:  a.Vel.Scale(a.Mass).Add(b.Vel.Scale(b.Mass)).Div(m),
	}
}
