// Package expansion implements the complex-analytic series algebra of the
// fast multipole method in the plane: multipole expansions for the exterior
// field of a cluster, local expansions for the interior field produced by
// distant sources, and the shift/convert operators between them.
//
// Positions are represented as points in the complex plane (x + iy). A
// series of order p stores coefficients a_0..a_p about a complex center.
package expansion

import (
	"fmt"

	"github.com/onnwee/gravity-sim/internal/phys"
)

// Series is the common state of multipole and local expansions.
type Series struct {
	Order  int
	Center complex128
	Coeffs []complex128
}

// newSeries allocates a zeroed series and grows the shared binomial table.
// The multipole-to-local conversion reads C(l+k-1, k-1) with l and k up to
// the order, so the table is grown to twice the order.
func newSeries(center complex128, order int) Series {
	EnsureBinomial(2 * order)
	return Series{Order: order, Center: center, Coeffs: make([]complex128, order+1)}
}

// At returns coefficient a_n.
func (s *Series) At(n int) complex128 { return s.Coeffs[n] }

// Add accumulates rhs into s. Expansions can only be added when they share
// a center and an order.
func (s *Series) Add(rhs *Series) error {
	if s.Order != rhs.Order || s.Center != rhs.Center {
		return fmt.Errorf("expansion: cannot add series of order %d about %v to order %d about %v",
			rhs.Order, rhs.Center, s.Order, s.Center)
	}
	s.addCoeffs(rhs.Coeffs)
	return nil
}

func (s *Series) addCoeffs(c []complex128) {
	for i := range s.Coeffs {
		s.Coeffs[i] += c[i]
	}
}

// fieldVec converts the complex derivative of a potential series into the
// real force-field vector, reading the gradient of the real part as
// (-Re, +Im).
func fieldVec(deriv complex128) phys.Vec {
	return phys.V(-real(deriv), imag(deriv))
}
