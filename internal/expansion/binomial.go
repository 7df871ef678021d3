package expansion

import (
	"sync"
	"sync/atomic"
)

// The binomial table is a process-wide read-mostly resource. Trees grow it
// to the order they need during their build preamble (single-threaded), and
// the parallel passes afterwards only read it. Reads go through an
// atomic.Value so a concurrent grow from another tree build never tears.
type binomialTable struct {
	max   int
	coeff []float64
}

func (t *binomialTable) at(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	return t.coeff[n*(n+1)/2+k]
}

var (
	binomialMu  sync.Mutex
	binomialVal atomic.Value
)

func init() {
	binomialVal.Store(&binomialTable{max: 0, coeff: []float64{1}})
}

// EnsureBinomial grows the shared table so that C(n, k) is available for all
// n <= order. The maximum order only ever increases.
func EnsureBinomial(order int) {
	if order <= binomialVal.Load().(*binomialTable).max {
		return
	}
	binomialMu.Lock()
	defer binomialMu.Unlock()
	cur := binomialVal.Load().(*binomialTable)
	if order <= cur.max {
		return
	}
	t := &binomialTable{max: order, coeff: make([]float64, (order+1)*(order+2)/2)}
	for n := 0; n <= order; n++ {
		base := n * (n + 1) / 2
		t.coeff[base] = 1
		t.coeff[base+n] = 1
		for k := 1; k < n; k++ {
			prev := (n - 1) * n / 2
			t.coeff[base+k] = t.coeff[prev+k-1] + t.coeff[prev+k]
		}
	}
	binomialVal.Store(t)
}

// Binomial returns C(n, k) from the shared table. Callers grow the table
// with EnsureBinomial during setup; reading beyond the grown order is a bug.
func Binomial(n, k int) float64 {
	return binomialVal.Load().(*binomialTable).at(n, k)
}

// powTable caches [1, x, x^2, ... x^nmax] for a complex base.
type powTable struct {
	pow []complex128
}

func newPowTable(x complex128, nmax int) powTable {
	t := powTable{pow: make([]complex128, nmax+1)}
	p := complex(1, 0)
	for n := 0; n <= nmax; n++ {
		t.pow[n] = p
		p *= x
	}
	return t
}

func (t powTable) at(n int) complex128 { return t.pow[n] }
