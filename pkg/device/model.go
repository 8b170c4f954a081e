package device

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/tipscan/pkg/lattice"
)

// Hopping is a finalized hopping between the sites with indices I and J.
type Hopping struct {
	I, J  int
	Value Value
}

// AttachedLead is the frozen description of an attached lead.
//
// Cell holds the sites of the first lead unit cell, placed just outside the
// scattering region. Inter hoppings connect Cell[I] to Cell[J] shifted by
// one further Period. Interface[i] is the scattering-region index of the
// site one period inwards from Cell[i], or -1 if that site does not couple
// to the lead.
type AttachedLead struct {
	Index     int
	Period    lattice.Vec
	Cell      []lattice.Site
	Onsite    []Value
	Intra     []Hopping
	Inter     []Hopping
	Interface []int
}

// LeadBlocks holds the evaluated matrices of a lead: the unit-cell
// Hamiltonian H0, the hopping H1 from cell n to cell n+1 (H1[i][j] couples
// Cell[i] in cell n to Cell[j] in cell n+1), and the interface map.
type LeadBlocks struct {
	H0, H1    *Matrix
	Interface []int
}

// Model is a finalized, immutable open system.
type Model struct {
	sites       []lattice.Site
	index       map[lattice.Site]int
	onsite      []Value
	hops        []Hopping
	leads       []AttachedLead
	params      []Param
	fingerprint string
}

// Finalize validates the builder and freezes it into a Model. It fails with
// [ErrIncompleteModel] when a site has no value, a hopping references a
// site that does not exist, or a lead lost its interface sites after being
// attached. Every problem found is reported.
func (b *Builder) Finalize() (*Model, error) {
	var problems []error
	for _, s := range b.order {
		if !b.sites[s].IsSet() {
			problems = append(problems, fmt.Errorf("site %s has no value", s))
		}
	}
	for _, k := range b.hopOrder {
		e := b.hops[k]
		for _, s := range []lattice.Site{e.a, e.b} {
			if !b.HasSite(s) {
				problems = append(problems, fmt.Errorf("%w: hopping %s-%s references %s", ErrUnknownSite, e.a, e.b, s))
			}
		}
		if !e.value.IsSet() {
			problems = append(problems, fmt.Errorf("hopping %s-%s has no value", e.a, e.b))
		}
	}
	for i, at := range b.leads {
		l := at.lead
		for _, k := range l.interOrder {
			if s := l.place(k.a, at.first-1); !b.HasSite(s) {
				problems = append(problems, fmt.Errorf("%w: lead %d interface site %s is missing", ErrLeadMismatch, i, s))
			}
		}
		for _, s := range b.order {
			if l.has(l.fold(s)) && l.domain(s) >= at.first {
				problems = append(problems, fmt.Errorf("%w: site %s overlaps lead %d", ErrLeadMismatch, s, i))
			}
		}
		for _, r := range l.order {
			if !l.sites[r].IsSet() {
				problems = append(problems, fmt.Errorf("lead %d site %s has no value", i, r))
			}
		}
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrIncompleteModel, errors.Join(problems...))
	}

	m := &Model{
		sites:  slices.Clone(b.order),
		index:  make(map[lattice.Site]int, len(b.order)),
		onsite: make([]Value, len(b.order)),
		hops:   make([]Hopping, 0, len(b.hopOrder)),
	}
	for i, s := range m.sites {
		m.index[s] = i
		m.onsite[i] = b.sites[s]
	}
	for _, k := range b.hopOrder {
		e := b.hops[k]
		m.hops = append(m.hops, Hopping{I: m.index[e.a], J: m.index[e.b], Value: e.value})
	}
	for i, at := range b.leads {
		m.leads = append(m.leads, m.freezeLead(i, at))
	}
	m.params = m.collectParams()
	m.fingerprint = m.computeFingerprint()
	return m, nil
}

func (m *Model) freezeLead(idx int, at attachment) AttachedLead {
	l := at.lead
	pos := make(map[lattice.Site]int, len(l.order))
	out := AttachedLead{
		Index:     idx,
		Period:    l.period,
		Cell:      make([]lattice.Site, len(l.order)),
		Onsite:    make([]Value, len(l.order)),
		Interface: make([]int, len(l.order)),
	}
	coupled := make(map[lattice.Site]bool, len(l.interOrder))
	for _, k := range l.interOrder {
		coupled[k.a] = true
	}
	for i, r := range l.order {
		pos[r] = i
		out.Cell[i] = l.place(r, at.first)
		out.Onsite[i] = l.sites[r]
		out.Interface[i] = -1
		if coupled[r] {
			out.Interface[i] = m.index[l.place(r, at.first-1)]
		}
	}
	for _, k := range l.intraOrder {
		e := l.intra[k]
		out.Intra = append(out.Intra, Hopping{I: pos[e.a], J: pos[e.b], Value: e.value})
	}
	for _, k := range l.interOrder {
		out.Inter = append(out.Inter, Hopping{I: pos[k.a], J: pos[k.b], Value: l.inter[k].value})
	}
	return out
}

func (m *Model) collectParams() []Param {
	seen := make(map[string]Param)
	add := func(v Value) {
		for _, p := range v.params {
			if prev, ok := seen[p.Name]; !ok || (!prev.HasDefault && p.HasDefault) {
				seen[p.Name] = p
			}
		}
	}
	for _, v := range m.onsite {
		add(v)
	}
	for _, h := range m.hops {
		add(h.Value)
	}
	for _, l := range m.leads {
		for _, v := range l.Onsite {
			add(v)
		}
		for _, h := range l.Intra {
			add(h.Value)
		}
		for _, h := range l.Inter {
			add(h.Value)
		}
	}
	out := make([]Param, 0, len(seen))
	for _, p := range seen {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b Param) int { return strings.Compare(a.Name, b.Name) })
	return out
}

func (m *Model) computeFingerprint() string {
	h := sha256.New()
	for i, s := range m.sites {
		fmt.Fprintf(h, "site %s %g %d %d %s\n", s.Lattice.Name, s.Lattice.A, s.X(), s.Y(), m.onsite[i])
	}
	for _, hp := range m.hops {
		fmt.Fprintf(h, "hop %d %d %s\n", hp.I, hp.J, hp.Value)
	}
	for _, l := range m.leads {
		fmt.Fprintf(h, "lead %d %s\n", l.Index, l.Period)
		for i, s := range l.Cell {
			fmt.Fprintf(h, "cell %d %d %s %d\n", s.X(), s.Y(), l.Onsite[i], l.Interface[i])
		}
		for _, hp := range l.Intra {
			fmt.Fprintf(h, "intra %d %d %s\n", hp.I, hp.J, hp.Value)
		}
		for _, hp := range l.Inter {
			fmt.Fprintf(h, "inter %d %d %s\n", hp.I, hp.J, hp.Value)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint returns a SHA-256 digest of the model structure and value
// descriptors. Two models built from the same operations share it.
func (m *Model) Fingerprint() string { return m.fingerprint }

// NumSites returns the number of scattering-region sites.
func (m *Model) NumSites() int { return len(m.sites) }

// Sites returns the scattering-region sites ordered by index.
func (m *Model) Sites() []lattice.Site { return slices.Clone(m.sites) }

// Site returns the site with index i.
func (m *Model) Site(i int) lattice.Site { return m.sites[i] }

// Index returns the index of s.
func (m *Model) Index(s lattice.Site) (int, bool) {
	i, ok := m.index[s]
	return i, ok
}

// Onsite returns the value bound to site i.
func (m *Model) Onsite(i int) Value { return m.onsite[i] }

// Hoppings returns the scattering-region hoppings.
func (m *Model) Hoppings() []Hopping { return slices.Clone(m.hops) }

// NumLeads returns the number of attached leads.
func (m *Model) NumLeads() int { return len(m.leads) }

// Lead returns a copy of the description of lead i.
func (m *Model) Lead(i int) (AttachedLead, error) {
	if i < 0 || i >= len(m.leads) {
		return AttachedLead{}, fmt.Errorf("%w: lead %d out of range [0, %d)", ErrInvalidInput, i, len(m.leads))
	}
	l := m.leads[i]
	l.Cell = slices.Clone(l.Cell)
	l.Onsite = slices.Clone(l.Onsite)
	l.Intra = slices.Clone(l.Intra)
	l.Inter = slices.Clone(l.Inter)
	l.Interface = slices.Clone(l.Interface)
	return l, nil
}

// Parameters returns the union of parameters declared by all values,
// sorted by name. A parameter declared both with and without default keeps
// the default.
func (m *Model) Parameters() []Param { return slices.Clone(m.params) }

// Defaults returns the declared parameters that carry a default.
func (m *Model) Defaults() Params {
	out := make(Params)
	for _, p := range m.params {
		if p.HasDefault {
			out[p.Name] = p.Default
		}
	}
	return out
}

// Resolve fills in defaults and checks that every declared parameter is
// bound. Undeclared entries of p are passed through.
func (m *Model) Resolve(p Params) (Params, error) {
	out := p.Clone()
	var missing []string
	for _, d := range m.params {
		if _, ok := out[d.Name]; ok {
			continue
		}
		if d.HasDefault {
			out[d.Name] = d.Default
			continue
		}
		missing = append(missing, d.Name)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingParameter, strings.Join(missing, ", "))
	}
	return out, nil
}

// CheckParams reports whether p binds every required parameter.
func (m *Model) CheckParams(p Params) error {
	_, err := m.Resolve(p)
	return err
}

// Hamiltonian evaluates the symmetric scattering-region Hamiltonian.
func (m *Model) Hamiltonian(p Params) (*Matrix, error) {
	rp, err := m.Resolve(p)
	if err != nil {
		return nil, err
	}
	n := len(m.sites)
	h := NewMatrix(n, n)
	for i, s := range m.sites {
		x, err := m.onsite[i].Onsite(s, rp)
		if err != nil {
			return nil, err
		}
		h.Set(i, i, x)
	}
	for _, hp := range m.hops {
		x, err := hp.Value.Hopping(m.sites[hp.I], m.sites[hp.J], rp)
		if err != nil {
			return nil, err
		}
		h.Set(hp.I, hp.J, x)
		h.Set(hp.J, hp.I, x)
	}
	return h, nil
}

// LeadBlocks evaluates the unit-cell matrices of lead i.
func (m *Model) LeadBlocks(i int, p Params) (*LeadBlocks, error) {
	if i < 0 || i >= len(m.leads) {
		return nil, fmt.Errorf("%w: lead %d out of range [0, %d)", ErrInvalidInput, i, len(m.leads))
	}
	rp, err := m.Resolve(p)
	if err != nil {
		return nil, err
	}
	l := &m.leads[i]
	n := len(l.Cell)
	out := &LeadBlocks{H0: NewMatrix(n, n), H1: NewMatrix(n, n), Interface: slices.Clone(l.Interface)}
	for j, s := range l.Cell {
		x, err := l.Onsite[j].Onsite(s, rp)
		if err != nil {
			return nil, err
		}
		out.H0.Set(j, j, x)
	}
	for _, hp := range l.Intra {
		x, err := hp.Value.Hopping(l.Cell[hp.I], l.Cell[hp.J], rp)
		if err != nil {
			return nil, err
		}
		out.H0.Set(hp.I, hp.J, x)
		out.H0.Set(hp.J, hp.I, x)
	}
	for _, hp := range l.Inter {
		x, err := hp.Value.Hopping(l.Cell[hp.I], l.Cell[hp.J].Add(l.Period), rp)
		if err != nil {
			return nil, err
		}
		out.H1.Set(hp.I, hp.J, x)
	}
	return out, nil
}
