package device

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	errs "github.com/matzehuels/tipscan/pkg/errors"
	"github.com/matzehuels/tipscan/pkg/lattice"
)

// Params is a parameter assignment: parameter name to numeric value.
// A fresh Params is built for every query; value functions only read it.
type Params map[string]float64

// Get returns the value bound to name.
func (p Params) Get(name string) (float64, bool) {
	v, ok := p[name]
	return v, ok
}

// Clone returns an independent copy. Cloning nil yields an empty map.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	maps.Copy(out, p)
	return out
}

// Merge returns a new assignment holding p overlaid by each of others in
// turn; later maps win.
func (p Params) Merge(others ...Params) Params {
	out := p.Clone()
	for _, o := range others {
		maps.Copy(out, o)
	}
	return out
}

// Names returns the parameter names in sorted order.
func (p Params) Names() []string {
	return slices.Sorted(maps.Keys(p))
}

// String formats the assignment deterministically, e.g. "Vg=0.5, tc=1".
func (p Params) String() string {
	parts := make([]string, 0, len(p))
	for _, k := range p.Names() {
		parts = append(parts, k+"="+strconv.FormatFloat(p[k], 'g', -1, 64))
	}
	return strings.Join(parts, ", ")
}

// Param declares a parameter read by a value function.
type Param struct {
	Name       string
	Default    float64
	HasDefault bool
}

// Required declares a parameter that every assignment must provide.
func Required(name string) Param { return Param{Name: name} }

// Optional declares a parameter with a fallback value.
func Optional(name string, def float64) Param {
	return Param{Name: name, Default: def, HasDefault: true}
}

func (p Param) String() string {
	if p.HasDefault {
		return p.Name + "=" + strconv.FormatFloat(p.Default, 'g', -1, 64)
	}
	return p.Name
}

// SiteFunc computes an onsite value. p always contains every declared
// parameter of the Value, with defaults filled in.
type SiteFunc func(s lattice.Site, p Params) float64

// HopFunc computes a hopping value between a and b.
type HopFunc func(a, b lattice.Site, p Params) float64

type valueKind uint8

const (
	kindUnset valueKind = iota
	kindConst
	kindSite
	kindHop
)

// Value is what a site or hopping is bound to: a constant or a named
// function of a parameter assignment. The zero Value is unresolved and is
// rejected by [Builder.Finalize].
//
// Function values are identified by their name in model fingerprints, so
// two functions sharing a name must compute the same thing.
type Value struct {
	kind   valueKind
	c      float64
	site   SiteFunc
	hop    HopFunc
	name   string
	params []Param
}

// Const returns a constant value usable for sites and hoppings.
func Const(x float64) Value {
	return Value{kind: kindConst, c: x}
}

// OnsiteFunc returns a parameterized onsite value.
func OnsiteFunc(name string, fn SiteFunc, params ...Param) Value {
	return Value{kind: kindSite, site: fn, name: name, params: slices.Clone(params)}
}

// HoppingFunc returns a parameterized hopping value.
func HoppingFunc(name string, fn HopFunc, params ...Param) Value {
	return Value{kind: kindHop, hop: fn, name: name, params: slices.Clone(params)}
}

// IsSet reports whether the value is resolved (constant or function).
func (v Value) IsSet() bool {
	switch v.kind {
	case kindConst:
		return true
	case kindSite:
		return v.site != nil
	case kindHop:
		return v.hop != nil
	}
	return false
}

// IsConst reports whether the value is a constant.
func (v Value) IsConst() bool { return v.kind == kindConst }

// Name returns the function name, or "" for constants.
func (v Value) Name() string { return v.name }

// Params returns the declared parameters of a function value.
func (v Value) Params() []Param { return slices.Clone(v.params) }

// String describes the value: the constant, or name(params).
func (v Value) String() string {
	switch v.kind {
	case kindConst:
		return strconv.FormatFloat(v.c, 'g', -1, 64)
	case kindSite, kindHop:
		names := make([]string, len(v.params))
		for i, p := range v.params {
			names[i] = p.String()
		}
		return fmt.Sprintf("%s(%s)", v.name, strings.Join(names, ", "))
	}
	return "<unset>"
}

func (v Value) usableForSite() bool { return v.kind != kindHop }

func (v Value) usableForHopping() bool { return v.kind != kindSite }

// Onsite evaluates the value at site s.
func (v Value) Onsite(s lattice.Site, p Params) (float64, error) {
	var x float64
	switch v.kind {
	case kindConst:
		x = v.c
	case kindSite:
		if v.site == nil {
			return 0, fmt.Errorf("%w: %s has no function", ErrIncompleteModel, v.name)
		}
		x = v.site(s, p)
	default:
		return 0, fmt.Errorf("%w: %s is not an onsite value", ErrInvalidInput, v)
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, errs.New(errs.ErrCodeInvalidInput, "onsite %s at %v evaluated to %v", v, s, x)
	}
	return x, nil
}

// Hopping evaluates the value for the bond a-b.
func (v Value) Hopping(a, b lattice.Site, p Params) (float64, error) {
	var x float64
	switch v.kind {
	case kindConst:
		x = v.c
	case kindHop:
		if v.hop == nil {
			return 0, fmt.Errorf("%w: %s has no function", ErrIncompleteModel, v.name)
		}
		x = v.hop(a, b, p)
	default:
		return 0, fmt.Errorf("%w: %s is not a hopping value", ErrInvalidInput, v)
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, errs.New(errs.ErrCodeInvalidInput, "hopping %s at %v-%v evaluated to %v", v, a, b, x)
	}
	return x, nil
}
