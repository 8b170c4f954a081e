package device

import (
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/tipscan/pkg/lattice"
)

// cellPair is an inter-cell hopping: a in cell n to b in cell n+1, both
// stored as their representative in the lead's reference cell.
type cellPair struct {
	a, b lattice.Site
}

// Lead is a semi-infinite lead template: one unit cell of sites, the
// hoppings inside it, and the hoppings towards the next cell along the
// period. Sites are folded into the reference cell when assigned, so any
// translate of the cell may be used to describe it.
type Lead struct {
	period  lattice.Vec
	cell    int
	hasCell bool

	sites map[lattice.Site]Value
	order []lattice.Site

	intra      map[bond]*hopEntry
	intraOrder []bond
	inter      map[cellPair]*hopEntry
	interOrder []cellPair
}

// NewLead creates an empty lead repeating along period, which must be a
// unit step along one lattice axis. The lead extends away from the
// scattering region in the direction of period.
func NewLead(period lattice.Vec) (*Lead, error) {
	if !period.IsAxis() || period.Dot(period) != 1 {
		return nil, fmt.Errorf("%w: lead period %s must be a unit axis vector", ErrInvalidInput, period)
	}
	return &Lead{
		period: period,
		sites:  make(map[lattice.Site]Value),
		intra:  make(map[bond]*hopEntry),
		inter:  make(map[cellPair]*hopEntry),
	}, nil
}

// Period returns the translation vector.
func (l *Lead) Period() lattice.Vec { return l.period }

// Cell returns the unit-cell sites in insertion order.
func (l *Lead) Cell() []lattice.Site { return slices.Clone(l.order) }

// NumSites returns the number of sites per unit cell.
func (l *Lead) NumSites() int { return len(l.order) }

// NumHoppings returns the number of intra-cell and inter-cell hoppings.
func (l *Lead) NumHoppings() (intra, inter int) { return len(l.intraOrder), len(l.interOrder) }

// domain returns the cell index of s along the period.
func (l *Lead) domain(s lattice.Site) int { return lattice.Vec(s.Tag).Dot(l.period) }

// fold maps s into the reference cell.
func (l *Lead) fold(s lattice.Site) lattice.Site {
	return s.Add(l.period.Scale(l.cell - l.domain(s)))
}

// place maps the reference-cell site r into cell dom.
func (l *Lead) place(r lattice.Site, dom int) lattice.Site {
	return r.Add(l.period.Scale(dom - l.cell))
}

// SetSites binds v to the sites of p, folded into the unit cell.
func (l *Lead) SetSites(p SitePattern, v Value) error {
	if p == nil {
		return fmt.Errorf("%w: nil site pattern", ErrInvalidInput)
	}
	if !v.usableForSite() {
		return fmt.Errorf("%w: %s cannot be bound to a site", ErrInvalidInput, v)
	}
	var sites []lattice.Site
	for s := range p.Sites() {
		if !s.Valid() {
			return fmt.Errorf("%w: site without lattice in %s", ErrInvalidInput, p)
		}
		sites = append(sites, s)
	}
	for _, s := range sites {
		if !l.hasCell {
			l.cell, l.hasCell = l.domain(s), true
		}
		r := l.fold(s)
		if _, ok := l.sites[r]; !ok {
			l.order = append(l.order, r)
		}
		l.sites[r] = v
	}
	return nil
}

// SetHoppings binds v to the hoppings selected by p. Explicit pairs may
// connect sites of the same cell or of adjacent cells; both endpoints must
// already be lead sites.
func (l *Lead) SetHoppings(p HoppingPattern, v Value) error {
	if p == nil {
		return fmt.Errorf("%w: nil hopping pattern", ErrInvalidInput)
	}
	if !v.usableForHopping() {
		return fmt.Errorf("%w: %s cannot be bound to a hopping", ErrInvalidInput, v)
	}
	switch p := p.(type) {
	case pairPattern:
		type resolved struct {
			a, b  lattice.Site
			shift int
		}
		var rs []resolved
		for _, pr := range p.pairs {
			a, b := pr[0], pr[1]
			if !a.Valid() || !b.Valid() {
				return fmt.Errorf("%w: hopping endpoint without lattice", ErrInvalidInput)
			}
			if a == b {
				return fmt.Errorf("%w: self-hopping at %s", ErrInvalidInput, a)
			}
			if !l.hasCell || !l.has(l.fold(a)) || !l.has(l.fold(b)) {
				return fmt.Errorf("%w: lead hopping %s-%s needs both sites in the unit cell", ErrUnknownSite, a, b)
			}
			shift := l.domain(b) - l.domain(a)
			if shift < -1 || shift > 1 {
				return fmt.Errorf("%w: hopping %s-%s spans more than one period", ErrInvalidInput, a, b)
			}
			rs = append(rs, resolved{a: l.fold(a), b: l.fold(b), shift: shift})
		}
		for _, r := range rs {
			l.link(r.a, r.b, r.shift, v)
		}
	case neighborPattern:
		for _, s := range l.order {
			if s.Lattice != p.lat {
				continue
			}
			for _, d := range p.lat.Neighbors() {
				t := s.Add(d)
				shift := l.domain(t) - l.cell
				if r := l.fold(t); l.has(r) {
					l.link(s, r, shift, v)
				}
			}
		}
	default:
		return fmt.Errorf("%w: unsupported hopping pattern %T", ErrInvalidInput, p)
	}
	return nil
}

// Hopping returns the value of the hopping from a in the reference cell to
// b in the cell shifted by shift periods (-1, 0 or 1).
func (l *Lead) Hopping(a, b lattice.Site, shift int) (Value, bool) {
	var e *hopEntry
	var ok bool
	switch shift {
	case 0:
		e, ok = l.intra[newBond(a, b)]
	case 1:
		e, ok = l.inter[cellPair{a: a, b: b}]
	case -1:
		e, ok = l.inter[cellPair{a: b, b: a}]
	}
	if !ok {
		return Value{}, false
	}
	return e.value, true
}

func (l *Lead) has(r lattice.Site) bool {
	_, ok := l.sites[r]
	return ok
}

// link records a hopping between reference-cell sites a and b, where b
// sits shift cells further along the period.
func (l *Lead) link(a, b lattice.Site, shift int, v Value) {
	switch shift {
	case 0:
		k := newBond(a, b)
		if e, ok := l.intra[k]; ok {
			e.a, e.b, e.value = a, b, v
			return
		}
		l.intra[k] = &hopEntry{a: a, b: b, value: v}
		l.intraOrder = append(l.intraOrder, k)
	case -1:
		l.link(b, a, 1, v)
	case 1:
		k := cellPair{a: a, b: b}
		if e, ok := l.inter[k]; ok {
			e.value = v
			return
		}
		l.inter[k] = &hopEntry{a: a, b: b, value: v}
		l.interOrder = append(l.interOrder, k)
	}
}

func (l *Lead) clone() *Lead {
	out := &Lead{
		period:     l.period,
		cell:       l.cell,
		hasCell:    l.hasCell,
		sites:      maps.Clone(l.sites),
		order:      slices.Clone(l.order),
		intra:      make(map[bond]*hopEntry, len(l.intra)),
		intraOrder: slices.Clone(l.intraOrder),
		inter:      make(map[cellPair]*hopEntry, len(l.inter)),
		interOrder: slices.Clone(l.interOrder),
	}
	for k, e := range l.intra {
		c := *e
		out.intra[k] = &c
	}
	for k, e := range l.inter {
		c := *e
		out.inter[k] = &c
	}
	return out
}

// Reversed returns a copy of the lead extending in the opposite direction.
// Attaching a lead and its reverse yields the two contacts of a two-terminal
// device.
func (l *Lead) Reversed() *Lead {
	out := l.clone()
	out.period = l.period.Neg()
	out.cell = -l.cell
	out.inter = make(map[cellPair]*hopEntry, len(l.inter))
	out.interOrder = make([]cellPair, 0, len(l.interOrder))
	for _, k := range l.interOrder {
		e := l.inter[k]
		rk := cellPair{a: k.b, b: k.a}
		out.inter[rk] = &hopEntry{a: e.b, b: e.a, value: e.value}
		out.interOrder = append(out.interOrder, rk)
	}
	return out
}

type leadLink struct {
	to    lattice.Site
	shift int
	value Value
}

func (l *Lead) adjacency() map[lattice.Site][]leadLink {
	adj := make(map[lattice.Site][]leadLink, len(l.order))
	for _, k := range l.intraOrder {
		e := l.intra[k]
		adj[e.a] = append(adj[e.a], leadLink{to: e.b, value: e.value})
		adj[e.b] = append(adj[e.b], leadLink{to: e.a, value: e.value})
	}
	for _, k := range l.interOrder {
		e := l.inter[k]
		adj[k.a] = append(adj[k.a], leadLink{to: k.b, shift: 1, value: e.value})
		adj[k.b] = append(adj[k.b], leadLink{to: k.a, shift: -1, value: e.value})
	}
	return adj
}

// AttachLead attaches a snapshot of lead to the scattering region and
// returns its index. Later changes to lead do not affect the builder.
//
// The lead is placed in the first cell beyond the outermost region site
// congruent to the lead's unit cell. Lead sites missing between the region
// and that cell are added with the lead's values, flood-filling from the
// lead inwards; extraCells further unit cells are added to the region
// before the lead starts.
func (b *Builder) AttachLead(lead *Lead, extraCells int) (int, error) {
	if lead == nil || len(lead.order) == 0 {
		return -1, fmt.Errorf("%w: lead has no sites", ErrLeadMismatch)
	}
	if len(lead.interOrder) == 0 {
		return -1, fmt.Errorf("%w: lead has no hoppings between unit cells", ErrLeadMismatch)
	}
	if extraCells < 0 {
		return -1, fmt.Errorf("%w: extra cells must be non-negative, got %d", ErrInvalidInput, extraCells)
	}
	l := lead.clone()

	var minDom, maxDom int
	found := false
	for _, s := range b.order {
		if !l.has(l.fold(s)) {
			continue
		}
		d := l.domain(s)
		if !found {
			minDom, maxDom, found = d, d, true
			continue
		}
		minDom, maxDom = min(minDom, d), max(maxDom, d)
	}
	if !found {
		return -1, fmt.Errorf("%w: no region site is congruent to the lead cell along %s", ErrLeadMismatch, l.period)
	}
	maxDom += extraCells
	first := maxDom + 1

	adj := l.adjacency()
	var queue []lattice.Site
	visit := func(s lattice.Site) {
		if b.HasSite(s) {
			return
		}
		b.setSite(s, l.sites[l.fold(s)])
		queue = append(queue, s)
	}
	for _, k := range l.interOrder {
		visit(l.place(k.a, maxDom))
	}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		du := l.domain(u)
		for _, ln := range adj[l.fold(u)] {
			dw := du + ln.shift
			if dw > maxDom || dw < minDom {
				continue
			}
			w := l.place(ln.to, dw)
			visit(w)
			if _, ok := b.hops[newBond(u, w)]; !ok {
				b.setHopping(u, w, ln.value)
			}
		}
	}

	idx := len(b.leads)
	b.leads = append(b.leads, attachment{lead: l, first: first, extra: extraCells})
	b.ops = append(b.ops, attachOp{index: idx, period: l.period, extra: extraCells})
	return idx, nil
}
