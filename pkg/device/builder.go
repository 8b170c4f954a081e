package device

import (
	"fmt"
	"slices"

	"github.com/matzehuels/tipscan/pkg/lattice"
)

// bond is an unordered pair of sites, stored with a.Less(b).
type bond struct {
	a, b lattice.Site
}

func newBond(a, b lattice.Site) bond {
	if b.Less(a) {
		a, b = b, a
	}
	return bond{a: a, b: b}
}

type hopEntry struct {
	a, b  lattice.Site // orientation of the latest assignment
	value Value
}

type attachment struct {
	lead  *Lead
	first int // domain index of the first lead cell
	extra int
}

// Builder accumulates the scattering region and attached leads.
//
// Operations are applied eagerly and in call order. The builder keeps a log
// of every applied operation, see [Builder.Ops].
type Builder struct {
	sites    map[lattice.Site]Value
	order    []lattice.Site
	hops     map[bond]*hopEntry
	hopOrder []bond
	leads    []attachment
	ops      []Op
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		sites: make(map[lattice.Site]Value),
		hops:  make(map[bond]*hopEntry),
	}
}

// Op is a single assignment operation: [SitesOp], [HoppingsOp] or
// [DeleteOp].
type Op interface {
	String() string
	apply(b *Builder) error
}

// SitesOp binds Value to every site of Pattern.
type SitesOp struct {
	Pattern SitePattern
	Value   Value
}

func (o SitesOp) String() string { return fmt.Sprintf("sites %s = %s", o.Pattern, o.Value) }

func (o SitesOp) apply(b *Builder) error {
	if o.Pattern == nil {
		return fmt.Errorf("%w: nil site pattern", ErrInvalidInput)
	}
	if !o.Value.usableForSite() {
		return fmt.Errorf("%w: %s cannot be bound to a site", ErrInvalidInput, o.Value)
	}
	var sites []lattice.Site
	for s := range o.Pattern.Sites() {
		if !s.Valid() {
			return fmt.Errorf("%w: site without lattice in %s", ErrInvalidInput, o.Pattern)
		}
		sites = append(sites, s)
	}
	for _, s := range sites {
		b.setSite(s, o.Value)
	}
	return nil
}

// HoppingsOp binds Value to every hopping selected by Pattern.
type HoppingsOp struct {
	Pattern HoppingPattern
	Value   Value
}

func (o HoppingsOp) String() string { return fmt.Sprintf("hoppings %s = %s", o.Pattern, o.Value) }

func (o HoppingsOp) apply(b *Builder) error {
	if o.Pattern == nil {
		return fmt.Errorf("%w: nil hopping pattern", ErrInvalidInput)
	}
	if !o.Value.usableForHopping() {
		return fmt.Errorf("%w: %s cannot be bound to a hopping", ErrInvalidInput, o.Value)
	}
	switch p := o.Pattern.(type) {
	case pairPattern:
		for _, pr := range p.pairs {
			if err := b.checkPair(pr[0], pr[1]); err != nil {
				return err
			}
		}
		for _, pr := range p.pairs {
			b.setHopping(pr[0], pr[1], o.Value)
		}
	case neighborPattern:
		for _, pr := range b.neighborPairs(p.lat) {
			b.setHopping(pr[0], pr[1], o.Value)
		}
	default:
		return fmt.Errorf("%w: unsupported hopping pattern %T", ErrInvalidInput, o.Pattern)
	}
	return nil
}

// DeleteOp removes every site of Pattern. Hoppings touching a removed site
// are kept, so [Builder.Finalize] reports them unless the site is assigned
// again.
type DeleteOp struct {
	Pattern SitePattern
}

func (o DeleteOp) String() string { return fmt.Sprintf("delete %s", o.Pattern) }

func (o DeleteOp) apply(b *Builder) error {
	if o.Pattern == nil {
		return fmt.Errorf("%w: nil site pattern", ErrInvalidInput)
	}
	for s := range o.Pattern.Sites() {
		if _, ok := b.sites[s]; !ok {
			continue
		}
		delete(b.sites, s)
		b.order = slices.DeleteFunc(b.order, func(x lattice.Site) bool { return x == s })
	}
	return nil
}

type attachOp struct {
	index  int
	period lattice.Vec
	extra  int
}

func (o attachOp) String() string {
	return fmt.Sprintf("attach lead %d along %s with %d extra cells", o.index, o.period, o.extra)
}

func (attachOp) apply(*Builder) error { return nil }

// Apply runs ops in order. It stops at the first failing operation; the
// operations before it stay applied.
func (b *Builder) Apply(ops ...Op) error {
	for _, op := range ops {
		if op == nil {
			return fmt.Errorf("op %d: %w: nil operation", len(b.ops), ErrInvalidInput)
		}
		if err := op.apply(b); err != nil {
			return fmt.Errorf("op %d (%s): %w", len(b.ops), op, err)
		}
		b.ops = append(b.ops, op)
	}
	return nil
}

// SetSites binds v to every site of p.
func (b *Builder) SetSites(p SitePattern, v Value) error {
	return b.Apply(SitesOp{Pattern: p, Value: v})
}

// SetHoppings binds v to every hopping selected by p.
func (b *Builder) SetHoppings(p HoppingPattern, v Value) error {
	return b.Apply(HoppingsOp{Pattern: p, Value: v})
}

// DeleteSites removes the sites of p.
func (b *Builder) DeleteSites(p SitePattern) error {
	return b.Apply(DeleteOp{Pattern: p})
}

// Ops returns the log of applied operations, including lead attachments.
func (b *Builder) Ops() []string {
	out := make([]string, len(b.ops))
	for i, op := range b.ops {
		out[i] = op.String()
	}
	return out
}

// HasSite reports whether s has been assigned.
func (b *Builder) HasSite(s lattice.Site) bool {
	_, ok := b.sites[s]
	return ok
}

// Site returns the value bound to s.
func (b *Builder) Site(s lattice.Site) (Value, bool) {
	v, ok := b.sites[s]
	return v, ok
}

// Hopping returns the value bound to the hopping between a and c, in
// either orientation.
func (b *Builder) Hopping(a, c lattice.Site) (Value, bool) {
	e, ok := b.hops[newBond(a, c)]
	if !ok {
		return Value{}, false
	}
	return e.value, true
}

// Sites returns the assigned sites in insertion order.
func (b *Builder) Sites() []lattice.Site { return slices.Clone(b.order) }

// NumSites returns the number of assigned sites.
func (b *Builder) NumSites() int { return len(b.order) }

// NumHoppings returns the number of assigned hoppings.
func (b *Builder) NumHoppings() int { return len(b.hopOrder) }

// NumLeads returns the number of attached leads.
func (b *Builder) NumLeads() int { return len(b.leads) }

func (b *Builder) setSite(s lattice.Site, v Value) {
	if _, ok := b.sites[s]; !ok {
		b.order = append(b.order, s)
	}
	b.sites[s] = v
}

func (b *Builder) setHopping(a, c lattice.Site, v Value) {
	k := newBond(a, c)
	if e, ok := b.hops[k]; ok {
		e.a, e.b, e.value = a, c, v
		return
	}
	b.hops[k] = &hopEntry{a: a, b: c, value: v}
	b.hopOrder = append(b.hopOrder, k)
}

// checkPair validates an explicit hopping. A pair where only one endpoint
// exists is accepted here and reported by Finalize.
func (b *Builder) checkPair(a, c lattice.Site) error {
	if !a.Valid() || !c.Valid() {
		return fmt.Errorf("%w: hopping endpoint without lattice", ErrInvalidInput)
	}
	if a == c {
		return fmt.Errorf("%w: self-hopping at %s", ErrInvalidInput, a)
	}
	if !b.HasSite(a) && !b.HasSite(c) {
		return fmt.Errorf("%w: neither %s nor %s has been assigned", ErrUnknownSite, a, c)
	}
	return nil
}

func (b *Builder) neighborPairs(lat *lattice.Square) [][2]lattice.Site {
	var out [][2]lattice.Site
	for _, s := range b.order {
		if s.Lattice != lat {
			continue
		}
		for _, d := range lat.Neighbors() {
			if t := s.Add(d); b.HasSite(t) {
				out = append(out, [2]lattice.Site{s, t})
			}
		}
	}
	return out
}
