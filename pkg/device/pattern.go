package device

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/matzehuels/tipscan/pkg/lattice"
)

// SitePattern is a lazily enumerated set of sites. Patterns are expanded
// when the operation using them is applied, in enumeration order.
type SitePattern interface {
	Sites() iter.Seq[lattice.Site]
	String() string
}

type siteList []lattice.Site

// Sites returns a pattern matching exactly the given sites, in order.
func Sites(sites ...lattice.Site) SitePattern { return siteList(slices.Clone(sites)) }

func (l siteList) Sites() iter.Seq[lattice.Site] { return slices.Values(l) }

func (l siteList) String() string {
	if len(l) == 1 {
		return l[0].String()
	}
	parts := make([]string, len(l))
	for i, s := range l {
		parts[i] = s.String()
	}
	return "{" + strings.Join(parts, " ") + "}"
}

type rect struct {
	lat            *lattice.Square
	x0, x1, y0, y1 int
}

// Column matches the sites (x, y) for y0 <= y < y1.
func Column(lat *lattice.Square, x, y0, y1 int) SitePattern {
	return rect{lat: lat, x0: x, x1: x + 1, y0: y0, y1: y1}
}

// Rect matches the sites (x, y) for x0 <= x < x1 and y0 <= y < y1,
// enumerated with x in the outer loop.
func Rect(lat *lattice.Square, x0, x1, y0, y1 int) SitePattern {
	return rect{lat: lat, x0: x0, x1: x1, y0: y0, y1: y1}
}

func (r rect) Sites() iter.Seq[lattice.Site] {
	return func(yield func(lattice.Site) bool) {
		for x := r.x0; x < r.x1; x++ {
			for y := r.y0; y < r.y1; y++ {
				if !yield(r.lat.Site(x, y)) {
					return
				}
			}
		}
	}
}

func (r rect) String() string {
	return fmt.Sprintf("%s[x=%d..%d, y=%d..%d)", r.lat, r.x0, r.x1, r.y0, r.y1)
}

// HoppingPattern selects hoppings. It is implemented by [Pair], [Pairs] and
// [Neighbors].
type HoppingPattern interface {
	String() string
	isHoppingPattern()
}

type pairPattern struct {
	pairs [][2]lattice.Site
}

// Pair selects the hopping between a and b explicitly.
func Pair(a, b lattice.Site) HoppingPattern {
	return pairPattern{pairs: [][2]lattice.Site{{a, b}}}
}

// Pairs selects several explicit hoppings, applied in order.
func Pairs(pairs ...[2]lattice.Site) HoppingPattern {
	return pairPattern{pairs: slices.Clone(pairs)}
}

func (pairPattern) isHoppingPattern() {}

func (p pairPattern) String() string {
	parts := make([]string, len(p.pairs))
	for i, pr := range p.pairs {
		parts[i] = pr[0].String() + "-" + pr[1].String()
	}
	return strings.Join(parts, " ")
}

type neighborPattern struct {
	lat *lattice.Square
}

// Neighbors selects every nearest-neighbour pair of sites of lat that are
// present when the operation is applied. Sites assigned later are not
// connected.
func Neighbors(lat *lattice.Square) HoppingPattern { return neighborPattern{lat: lat} }

func (neighborPattern) isHoppingPattern() {}

func (n neighborPattern) String() string { return n.lat.String() + ".neighbors()" }
