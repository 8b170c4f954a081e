package transport

import (
	"errors"
	"math/cmplx"
)

var errSingular = errors.New("matrix is singular")

// cmat is a dense complex matrix in row-major order.
type cmat struct {
	n, m int
	d    []complex128
}

func newCmat(n, m int) *cmat {
	return &cmat{n: n, m: m, d: make([]complex128, n*m)}
}

func (a *cmat) at(i, j int) complex128     { return a.d[i*a.m+j] }
func (a *cmat) set(i, j int, v complex128) { a.d[i*a.m+j] = v }
func (a *cmat) add(i, j int, v complex128) { a.d[i*a.m+j] += v }

func (a *cmat) clone() *cmat {
	out := newCmat(a.n, a.m)
	copy(out.d, a.d)
	return out
}

func (a *cmat) mul(b *cmat) *cmat {
	out := newCmat(a.n, b.m)
	for i := 0; i < a.n; i++ {
		for k := 0; k < a.m; k++ {
			aik := a.at(i, k)
			if aik == 0 {
				continue
			}
			row := b.d[k*b.m : (k+1)*b.m]
			dst := out.d[i*out.m : (i+1)*out.m]
			for j, v := range row {
				dst[j] += aik * v
			}
		}
	}
	return out
}

// block returns the leading n x n block.
func (a *cmat) block(n int) *cmat {
	out := newCmat(n, n)
	for i := 0; i < n; i++ {
		copy(out.d[i*n:(i+1)*n], a.d[i*a.m:i*a.m+n])
	}
	return out
}

func (a *cmat) plus(b *cmat) *cmat {
	out := a.clone()
	for i, v := range b.d {
		out.d[i] += v
	}
	return out
}

// adjoint returns the conjugate transpose.
func (a *cmat) adjoint() *cmat {
	out := newCmat(a.m, a.n)
	for i := 0; i < a.n; i++ {
		for j := 0; j < a.m; j++ {
			out.set(j, i, cmplx.Conj(a.at(i, j)))
		}
	}
	return out
}

func (a *cmat) maxAbs() float64 {
	var m float64
	for _, v := range a.d {
		m = max(m, cmplx.Abs(v))
	}
	return m
}

// inverse inverts a square matrix by Gauss-Jordan elimination with partial
// pivoting.
func (a *cmat) inverse() (*cmat, error) {
	n := a.n
	w := a.clone()
	inv := newCmat(n, n)
	for i := 0; i < n; i++ {
		inv.set(i, i, 1)
	}
	for c := 0; c < n; c++ {
		p, best := c, cmplx.Abs(w.at(c, c))
		for r := c + 1; r < n; r++ {
			if v := cmplx.Abs(w.at(r, c)); v > best {
				p, best = r, v
			}
		}
		if best == 0 {
			return nil, errSingular
		}
		if p != c {
			w.swapRows(p, c)
			inv.swapRows(p, c)
		}
		piv := 1 / w.at(c, c)
		for j := 0; j < n; j++ {
			w.set(c, j, w.at(c, j)*piv)
			inv.set(c, j, inv.at(c, j)*piv)
		}
		for r := 0; r < n; r++ {
			f := w.at(r, c)
			if r == c || f == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				w.add(r, j, -f*w.at(c, j))
				inv.add(r, j, -f*inv.at(c, j))
			}
		}
	}
	return inv, nil
}

func (a *cmat) swapRows(i, j int) {
	ri := a.d[i*a.m : (i+1)*a.m]
	rj := a.d[j*a.m : (j+1)*a.m]
	for k := range ri {
		ri[k], rj[k] = rj[k], ri[k]
	}
}

// bandSolve solves a x = b in place for a matrix whose non-zeros satisfy
// -kl <= j-i <= ku. a is overwritten by its LU factors and b by the
// solution. Partial pivoting widens the upper band to kl+ku.
func bandSolve(a *cmat, b *cmat, kl, ku int) error {
	n := a.n
	uw := kl + ku
	for c := 0; c < n; c++ {
		last := min(n-1, c+kl)
		p, best := c, cmplx.Abs(a.at(c, c))
		for r := c + 1; r <= last; r++ {
			if v := cmplx.Abs(a.at(r, c)); v > best {
				p, best = r, v
			}
		}
		if best == 0 {
			return errSingular
		}
		if p != c {
			a.swapRows(p, c)
			b.swapRows(p, c)
		}
		right := min(n-1, c+uw)
		piv := a.at(c, c)
		for r := c + 1; r <= last; r++ {
			f := a.at(r, c) / piv
			if f == 0 {
				continue
			}
			a.set(r, c, 0)
			for j := c + 1; j <= right; j++ {
				a.add(r, j, -f*a.at(c, j))
			}
			for j := 0; j < b.m; j++ {
				b.add(r, j, -f*b.at(c, j))
			}
		}
	}
	for c := n - 1; c >= 0; c-- {
		right := min(n-1, c+uw)
		piv := a.at(c, c)
		for j := 0; j < b.m; j++ {
			s := b.at(c, j)
			for k := c + 1; k <= right; k++ {
				s -= a.at(c, k) * b.at(k, j)
			}
			b.set(c, j, s/piv)
		}
	}
	return nil
}
