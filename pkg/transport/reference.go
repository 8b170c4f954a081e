package transport

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"math/cmplx"
	"slices"

	"github.com/matzehuels/tipscan/pkg/device"
	errs "github.com/matzehuels/tipscan/pkg/errors"
)

// Defaults for the reference solver.
const (
	DefaultEta     = 1e-8
	DefaultTol     = 1e-12
	DefaultMaxIter = 200
)

// ReferenceScope prefixes cache keys of points solved by Reference. Bump it
// whenever a change to the solver alters its results.
const ReferenceScope = "reference/v2:"

// Reference is a Green's function solver for real, symmetric
// nearest-neighbour models. The zero value uses the package defaults.
type Reference struct {
	Eta     float64 // Imaginary part added to the energy
	Tol     float64 // Decimation stops when the renormalized hoppings fall below Tol
	MaxIter int     // Decimation iteration limit per lead and supercell size
}

// NewReference returns a reference solver with default settings.
func NewReference() *Reference {
	return &Reference{Eta: DefaultEta, Tol: DefaultTol, MaxIter: DefaultMaxIter}
}

func (r *Reference) settings() (eta, tol float64, maxIter int) {
	eta, tol, maxIter = r.Eta, r.Tol, r.MaxIter
	if eta <= 0 {
		eta = DefaultEta
	}
	if tol <= 0 {
		tol = DefaultTol
	}
	if maxIter <= 0 {
		maxIter = DefaultMaxIter
	}
	return eta, tol, maxIter
}

type leadCoupling struct {
	sites []int // scattering-region indices coupled to the lead
	sigma *cmat // self-energy over sites
	gamma *cmat // broadening i(Σ - Σ†)
}

// Solve implements [Solver].
func (r *Reference) Solve(ctx context.Context, m *device.Model, energy float64, p device.Params) (SMatrix, error) {
	if err := errs.ValidateFinite("energy", energy); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	eta, tol, maxIter := r.settings()
	z := complex(energy, eta)

	h, err := m.Hamiltonian(p)
	if err != nil {
		return nil, err
	}
	leads := make([]leadCoupling, m.NumLeads())
	for i := range leads {
		blk, err := m.LeadBlocks(i, p)
		if err != nil {
			return nil, err
		}
		lc, err := selfEnergy(z, blk, tol, maxIter)
		if err != nil {
			return nil, fmt.Errorf("lead %d: %w", i, err)
		}
		leads[i] = lc
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := h.Rows
	pos, bw := bandOrder(m, leads)
	a := newCmat(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if v := h.At(i, j); v != 0 {
				a.set(pos[i], pos[j], complex(-v, 0))
			}
		}
		a.add(pos[i], pos[i], z)
	}
	for _, lc := range leads {
		for x, si := range lc.sites {
			for y, sj := range lc.sites {
				a.add(pos[si], pos[sj], -lc.sigma.at(x, y))
			}
		}
	}

	var cols []int
	colOf := make(map[int]int)
	for _, lc := range leads {
		for _, s := range lc.sites {
			if _, ok := colOf[s]; !ok {
				colOf[s] = len(cols)
				cols = append(cols, s)
			}
		}
	}
	rhs := newCmat(n, len(cols))
	for c, s := range cols {
		rhs.set(pos[s], c, 1)
	}
	if err := bandSolve(a, rhs, bw, bw); err != nil {
		return nil, fmt.Errorf("scattering region at E=%g: %w", energy, err)
	}
	g := newCmat(len(cols), len(cols))
	for row, s := range cols {
		for c := range cols {
			g.set(row, c, rhs.at(pos[s], c))
		}
	}
	return &greenSMatrix{leads: leads, index: colOf, g: g}, nil
}

// selfEnergy computes the lead self-energy projected on the scattering
// region sites the lead couples to.
func selfEnergy(z complex128, blk *device.LeadBlocks, tol float64, maxIter int) (leadCoupling, error) {
	h1 := toCmat(blk.H1)
	gs, err := surfaceGreen(z, blk, tol, maxIter)
	if err != nil {
		return leadCoupling{}, err
	}

	var rows []int
	var lc leadCoupling
	for i, s := range blk.Interface {
		if s >= 0 {
			rows = append(rows, i)
			lc.sites = append(lc.sites, s)
		}
	}
	v := newCmat(len(rows), h1.m)
	for x, i := range rows {
		for j := 0; j < h1.m; j++ {
			v.set(x, j, h1.at(i, j))
		}
	}
	lc.sigma = v.mul(gs).mul(v.adjoint())
	lc.gamma = newCmat(len(rows), len(rows))
	for i := range rows {
		for j := range rows {
			lc.gamma.set(i, j, 1i*(lc.sigma.at(i, j)-cmplx.Conj(lc.sigma.at(j, i))))
		}
	}
	return lc, nil
}

// bandOrder picks a site ordering that keeps the system matrix banded and
// returns the position of every site and the resulting half bandwidth.
func bandOrder(m *device.Model, leads []leadCoupling) (pos []int, bw int) {
	sites := m.Sites()
	hops := m.Hoppings()
	keys := []func(a, b int) int{
		func(a, b int) int {
			return cmp.Or(cmp.Compare(sites[a].X(), sites[b].X()), cmp.Compare(sites[a].Y(), sites[b].Y()))
		},
		func(a, b int) int {
			return cmp.Or(cmp.Compare(sites[a].Y(), sites[b].Y()), cmp.Compare(sites[a].X(), sites[b].X()))
		},
	}
	bw = math.MaxInt
	for _, key := range keys {
		order := make([]int, len(sites))
		for i := range order {
			order[i] = i
		}
		slices.SortStableFunc(order, key)
		p := make([]int, len(sites))
		for at, i := range order {
			p[i] = at
		}
		w := 0
		for _, h := range hops {
			w = max(w, abs(p[h.I]-p[h.J]))
		}
		for _, lc := range leads {
			for _, a := range lc.sites {
				for _, b := range lc.sites {
					w = max(w, abs(p[a]-p[b]))
				}
			}
		}
		if w < bw {
			pos, bw = p, w
		}
	}
	return pos, bw
}

type greenSMatrix struct {
	leads []leadCoupling
	index map[int]int // scattering-region index to row of g
	g     *cmat       // retarded Green's function between lead-coupled sites
}

func (s *greenSMatrix) NumLeads() int { return len(s.leads) }

// Transmission evaluates Tr[Γ_to G Γ_from G†]. Round-off below zero is
// clamped.
func (s *greenSMatrix) Transmission(to, from int) (float64, error) {
	n := len(s.leads)
	if to < 0 || to >= n || from < 0 || from >= n {
		return 0, errs.New(errs.ErrCodeInvalidInput, "lead pair (%d, %d) out of range for %d leads", to, from, n)
	}
	if to == from {
		return 0, errs.New(errs.ErrCodeInvalidInput, "transmission needs two distinct leads, got %d twice", to)
	}
	lt, lf := s.leads[to], s.leads[from]
	gtf := newCmat(len(lt.sites), len(lf.sites))
	for i, a := range lt.sites {
		for j, b := range lf.sites {
			gtf.set(i, j, s.g.at(s.index[a], s.index[b]))
		}
	}
	prod := lt.gamma.mul(gtf).mul(lf.gamma).mul(gtf.adjoint())
	var tr complex128
	for i := 0; i < prod.n; i++ {
		tr += prod.at(i, i)
	}
	t := real(tr)
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return 0, fmt.Errorf("transmission %d->%d is not finite", from, to)
	}
	return max(t, 0), nil
}

func toCmat(m *device.Matrix) *cmat {
	out := newCmat(m.Rows, m.Cols)
	for i, v := range m.Data {
		out.d[i] = complex(v, 0)
	}
	return out
}

func neg(a *cmat) *cmat {
	out := newCmat(a.n, a.m)
	for i, v := range a.d {
		out.d[i] = -v
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
