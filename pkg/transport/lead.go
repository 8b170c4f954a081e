package transport

import (
	"fmt"
	"math/cmplx"

	"github.com/matzehuels/tipscan/pkg/device"
)

const (
	// maxSupercell bounds the cell multiples tried by decimation.
	maxSupercell = 3
	// residualTol bounds the relative Dyson residual of an accepted
	// decimation result.
	residualTol = 1e-6
)

// surfaceGreen returns the Green's function of the first cell of a
// semi-infinite lead with unit-cell Hamiltonian blk.H0 and hopping blk.H1
// towards the bulk.
//
// When the cells are coupled by a uniform hopping t (H1 = t·1) the lead
// splits into independent chains along the transverse eigenmodes of H0,
// each with a closed-form surface Green's function. Other leads are
// decimated; a decimation result is accepted only if it satisfies
// g = (z - H0 - H1 g H1†)^-1.
func surfaceGreen(z complex128, blk *device.LeadBlocks, tol float64, maxIter int) (*cmat, error) {
	if t, ok := uniformHopping(blk.H1); ok {
		if g, err := modeSurface(z, blk.H0, t); err == nil {
			return g, nil
		}
	}
	return decimatedSurface(z, toCmat(blk.H0), toCmat(blk.H1), tol, maxIter)
}

// uniformHopping reports whether h is t times the identity with t != 0.
func uniformHopping(h *device.Matrix) (float64, bool) {
	if h.Rows != h.Cols || h.Rows == 0 {
		return 0, false
	}
	t := h.At(0, 0)
	if t == 0 {
		return 0, false
	}
	for i := 0; i < h.Rows; i++ {
		for j := 0; j < h.Cols; j++ {
			want := 0.0
			if i == j {
				want = t
			}
			if h.At(i, j) != want {
				return 0, false
			}
		}
	}
	return t, true
}

// modeSurface computes the surface Green's function of a lead with
// inter-cell hopping t·1 in the eigenbasis of h0.
func modeSurface(z complex128, h0 *device.Matrix, t float64) (*cmat, error) {
	vals, vecs, err := symEigen(h0)
	if err != nil {
		return nil, err
	}
	n := h0.Rows
	gm := make([]complex128, n)
	for k, e := range vals {
		gm[k] = chainSurface(z-complex(e, 0), t)
	}
	g := newCmat(n, n)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			var s complex128
			for k := 0; k < n; k++ {
				s += complex(vecs[i*n+k]*vecs[j*n+k], 0) * gm[k]
			}
			g.set(i, j, s)
			g.set(j, i, s)
		}
	}
	return g, nil
}

// chainSurface is the surface Green's function of a semi-infinite chain
// with hopping t at energy d measured from the on-site energy. Of the two
// roots of t²g² - dg + 1 = 0 it returns the decaying one, |tg| < 1; on the
// real axis inside the band, where both have |tg| = 1, the retarded one.
func chainSurface(d complex128, t float64) complex128 {
	t2 := complex(t*t, 0)
	s := cmplx.Sqrt(d*d - 4*t2)
	g1, g2 := (d-s)/(2*t2), (d+s)/(2*t2)
	a1, a2 := cmplx.Abs(g1), cmplx.Abs(g2)
	if a1 < a2 || (a1 == a2 && imag(g1) <= 0) {
		return g1
	}
	return g2
}

// decimatedSurface runs Lopez Sancho decimation on k-cell supercells of the
// lead, k = 1..maxSupercell, and returns the first result that satisfies
// the Dyson equation of the unit cell.
func decimatedSurface(z complex128, h0, h1 *cmat, tol float64, maxIter int) (*cmat, error) {
	var lastErr error
	for k := 1; k <= maxSupercell; k++ {
		sh0, sh1 := supercell(h0, h1, k)
		gs, err := decimate(z, sh0, sh1, tol, maxIter)
		if err != nil {
			lastErr = err
			continue
		}
		g := gs.block(h0.n)
		r, err := dysonResidual(z, h0, h1, g)
		if err != nil {
			lastErr = err
			continue
		}
		if r <= residualTol*(1+g.maxAbs()) {
			return g, nil
		}
		lastErr = fmt.Errorf("decimation over %d-cell supercells is inaccurate (residual %.3g)", k, r)
	}
	return nil, fmt.Errorf("surface Green's function at E=%g: %w", real(z), lastErr)
}

// supercell groups k consecutive lead cells into one.
func supercell(h0, h1 *cmat, k int) (*cmat, *cmat) {
	if k == 1 {
		return h0, h1
	}
	n := h0.n
	sh0 := newCmat(n*k, n*k)
	sh1 := newCmat(n*k, n*k)
	h1d := h1.adjoint()
	for c := 0; c < k; c++ {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				sh0.set(c*n+i, c*n+j, h0.at(i, j))
				if c+1 < k {
					sh0.set(c*n+i, (c+1)*n+j, h1.at(i, j))
					sh0.set((c+1)*n+i, c*n+j, h1d.at(i, j))
				}
			}
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sh1.set((k-1)*n+i, j, h1.at(i, j))
		}
	}
	return sh0, sh1
}

// decimate is the Lopez Sancho iteration. It returns the surface Green's
// function of the lead with cell Hamiltonian h0 and hopping h1.
func decimate(z complex128, h0, h1 *cmat, tol float64, maxIter int) (*cmat, error) {
	zi := identity(h0.n, z)
	eps := h0.clone()
	epsS := h0.clone()
	alpha := h1.clone()
	beta := h1.adjoint()
	scale := 1 + h1.maxAbs()

	for iter := 0; ; iter++ {
		if iter == maxIter {
			return nil, fmt.Errorf("decimation did not converge after %d iterations", maxIter)
		}
		g, err := zi.plus(neg(eps)).inverse()
		if err != nil {
			return nil, err
		}
		ag := alpha.mul(g)
		bg := beta.mul(g)
		agb := ag.mul(beta)
		bga := bg.mul(alpha)
		epsS = epsS.plus(agb)
		eps = eps.plus(agb).plus(bga)
		alpha = ag.mul(alpha)
		beta = bg.mul(beta)
		if alpha.maxAbs() < tol*scale && beta.maxAbs() < tol*scale {
			break
		}
	}
	return zi.plus(neg(epsS)).inverse()
}

// dysonResidual measures how far g is from (z - h0 - h1 g h1†)^-1.
func dysonResidual(z complex128, h0, h1, g *cmat) (float64, error) {
	lhs := identity(h0.n, z).plus(neg(h0)).plus(neg(h1.mul(g).mul(h1.adjoint())))
	want, err := lhs.inverse()
	if err != nil {
		return 0, err
	}
	return want.plus(neg(g)).maxAbs(), nil
}

func identity(n int, z complex128) *cmat {
	out := newCmat(n, n)
	for i := 0; i < n; i++ {
		out.set(i, i, z)
	}
	return out
}
