package expansion

import (
	"math/cmplx"

	"github.com/onnwee/gravity-sim/internal/phys"
)

// Local is a series converging in the interior of a ball around its center;
// it tabulates the field produced by sources outside that ball.
type Local struct {
	Series
}

// NewLocal allocates a zeroed local expansion.
func NewLocal(center complex128, order int) Local {
	return Local{newSeries(center, order)}
}

// NewLocalFromSources builds the local expansion of distant sources about
// center directly:
//
//	c_0 = sum q_i log(-(z_i - z0))
//	c_k = -(1/k) sum q_i / (z_i - z0)^k
func NewLocalFromSources(center complex128, order int, sources []phys.Body) Local {
	l := Local{newSeries(center, order)}
	for i := range sources {
		src := &sources[i]
		q := complex(src.SourceStrength(), 0)
		zRel := src.Pos.Complex() - center
		l.Coeffs[0] += q * cmplx.Log(-zRel)
		inv := 1 / zRel
		invPow := inv
		for k := 1; k <= order; k++ {
			l.Coeffs[k] -= q * invPow
			invPow *= inv
		}
	}
	for k := 1; k <= order; k++ {
		l.Coeffs[k] /= complex(float64(k), 0)
	}
	return l
}

// AddMultipole converts a well-separated multipole expansion into a local
// expansion about l's center and accumulates it (the M2L operator). With
// delta = z0_src - z0_dst:
//
//	c_0 = a_0 log(-delta) + sum_{k=1..p} (-1)^k a_k / delta^k
//	c_l = [-a_0/l + sum_{k=1..p-1} (-1)^k a_k / delta^k C(l+k-1, k-1)] / delta^l
func (l *Local) AddMultipole(me *Multipole) {
	delta := me.Center - l.Center
	invPow := newPowTable(1/delta, l.Order)

	c0 := me.Coeffs[0] * cmplx.Log(-delta)
	for k := 1; k <= l.Order; k++ {
		if k%2 == 0 {
			c0 += me.Coeffs[k] * invPow.at(k)
		} else {
			c0 -= me.Coeffs[k] * invPow.at(k)
		}
	}
	l.Coeffs[0] += c0

	for n := 1; n <= l.Order; n++ {
		c := -me.Coeffs[0] / complex(float64(n), 0)
		for k := 1; k < l.Order; k++ {
			term := me.Coeffs[k] * invPow.at(k) * complex(Binomial(n+k-1, k-1), 0)
			if k%2 == 0 {
				c += term
			} else {
				c -= term
			}
		}
		l.Coeffs[n] += c * invPow.at(n)
	}
}

// AddShifted re-centers parent about l's center with the Horner sweep and
// accumulates it (the L2L operator).
func (l *Local) AddShifted(parent *Local) {
	shift := parent.Center - l.Center
	shifted := make([]complex128, len(parent.Coeffs))
	copy(shifted, parent.Coeffs)
	p := parent.Order
	for j := 0; j < p; j++ {
		for k := p - j - 1; k < p; k++ {
			shifted[k] -= shift * shifted[k+1]
		}
	}
	l.addCoeffs(shifted)
}

// Potential evaluates Re[sum c_k w^k] with w = z - z0.
func (l *Local) Potential(at phys.Vec) float64 {
	w := at.Complex() - l.Center
	var res complex128
	pow := complex(1, 0)
	for k := 0; k <= l.Order; k++ {
		res += l.Coeffs[k] * pow
		pow *= w
	}
	return real(res)
}

// Field evaluates the force field inside the convergence ball, from the
// derivative sum_{k>=1} k c_k w^(k-1).
func (l *Local) Field(at phys.Vec) phys.Vec {
	w := at.Complex() - l.Center
	var res complex128
	pow := complex(1, 0)
	for k := 1; k <= l.Order; k++ {
		res += complex(float64(k), 0) * l.Coeffs[k] * pow
		pow *= w
	}
	return fieldVec(res)
}
