// Package phys provides the value types the simulation core is built on:
// fixed-dimension real vectors and point-mass bodies.
package phys

import "math"

// Vec is a 2D vector with float64 components. It is a value type; all
// operations return new values.
type Vec [2]float64

// V constructs a Vec from its components.
func V(x, y float64) Vec { return Vec{x, y} }

// Add returns the componentwise sum v + w.
func (v Vec) Add(w Vec) Vec {
	return Vec{v[0] + w[0], v[1] + w[1]}
}

// Sub returns the componentwise difference v - w.
func (v Vec) Sub(w Vec) Vec {
	return Vec{v[0] - w[0], v[1] - w[1]}
}

// Scale returns v scaled by s.
func (v Vec) Scale(s float64) Vec {
	return Vec{v[0] * s, v[1] * s}
}

// Div returns v divided by s.
func (v Vec) Div(s float64) Vec {
	return Vec{v[0] / s, v[1] / s}
}

// Dot returns the dot product of v and w.
func (v Vec) Dot(w Vec) float64 {
	return v[0]*w[0] + v[1]*w[1]
}

// NormSq returns the squared Euclidean norm of v.
func (v Vec) NormSq() float64 {
	return v[0]*v[0] + v[1]*v[1]
}

// Norm returns the Euclidean norm of v.
func (v Vec) Norm() float64 {
	return math.Sqrt(v.NormSq())
}

// At returns the i-th component.
func (v Vec) At(i int) float64 { return v[i] }

// Complex returns v as a point in the complex plane, x + iy.
func (v Vec) Complex() complex128 { return complex(v[0], v[1]) }

// FromComplex converts a complex number back to a Vec.
func FromComplex(z complex128) Vec { return Vec{real(z), imag(z)} }

// IsFinite reports whether both components are finite.
func (v Vec) IsFinite() bool {
	return !math.IsNaN(v[0]) && !math.IsInf(v[0], 0) &&
		!math.IsNaN(v[1]) && !math.IsInf(v[1], 0)
}
