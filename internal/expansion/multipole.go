package expansion

import (
	"math/cmplx"

	"github.com/onnwee/gravity-sim/internal/phys"
)

// Multipole is a series converging in the exterior of a ball around its
// center; it represents the far field of the sources inside that ball.
type Multipole struct {
	Series
}

// NewMultipole builds the order-p multipole expansion of the given sources
// about center:
//
//	a_0 = sum q_i
//	a_k = -(1/k) sum q_i (z_i - z0)^k
func NewMultipole(center complex128, order int, sources []phys.Body) Multipole {
	m := Multipole{newSeries(center, order)}
	for i := range sources {
		src := &sources[i]
		q := complex(src.SourceStrength(), 0)
		zRel := src.Pos.Complex() - center
		m.Coeffs[0] += q
		pow := zRel
		for k := 1; k <= order; k++ {
			m.Coeffs[k] -= q * pow
			pow *= zRel
		}
	}
	for k := 1; k <= order; k++ {
		m.Coeffs[k] /= complex(float64(k), 0)
	}
	return m
}

// CombineMultipoles re-expresses each part about center and sums them.
// This is the M2M step of the upward pass.
func CombineMultipoles(center complex128, parts []*Multipole) Multipole {
	m := Multipole{newSeries(center, parts[0].Order)}
	for _, p := range parts {
		m.addCoeffs(p.Shifted(p.Center - center))
	}
	return m
}

// Shifted returns the coefficients of the expansion re-centered such that
// delta is the old center relative to the new one:
//
//	b_0 = a_0
//	b_l = -(a_0/l) delta^l + sum_{k=1..l} a_k delta^(l-k) C(l-1, k-1)
func (m *Multipole) Shifted(delta complex128) []complex128 {
	pow := newPowTable(delta, m.Order)
	out := make([]complex128, m.Order+1)
	q := m.Coeffs[0]
	out[0] = q
	for l := 1; l <= m.Order; l++ {
		b := -q * pow.at(l) / complex(float64(l), 0)
		for k := 1; k <= l; k++ {
			b += m.Coeffs[k] * pow.at(l-k) * complex(Binomial(l-1, k-1), 0)
		}
		out[l] = b
	}
	return out
}

// Potential evaluates the real potential at a point outside the convergence
// ball: Re[a_0 log(w) + sum a_k / w^k] with w = z - z0.
func (m *Multipole) Potential(at phys.Vec) float64 {
	w := at.Complex() - m.Center
	res := m.Coeffs[0] * cmplx.Log(w)
	inv := 1 / w
	invPow := inv
	for k := 1; k <= m.Order; k++ {
		res += m.Coeffs[k] * invPow
		invPow *= inv
	}
	return real(res)
}

// Field evaluates the force field at a point outside the convergence ball,
// from the derivative a_0/w - sum k a_k / w^(k+1).
func (m *Multipole) Field(at phys.Vec) phys.Vec {
	w := at.Complex() - m.Center
	res := m.Coeffs[0] / w
	inv := 1 / w
	invPow := inv * inv
	for k := 1; k <= m.Order; k++ {
		res -= complex(float64(k), 0) * m.Coeffs[k] * invPow
		invPow *= inv
	}
	return fieldVec(res)
}
