// Package qpc builds quantum point contact devices with a scanning-gate tip.
//
// Three geometries are available, all two-terminal with a left lead and its
// reverse attached on the right:
//
//   - [KindTipSystem]: a left column, one gated central site and a right
//     block of Length columns whose tip site is chosen by parameters.
//   - [KindQPC]: the same geometry with the tip position and voltage fixed
//     by the configuration.
//   - [KindStudy]: a single gated site coupled to two columns by a
//     tunable hopping, with the tip placed in the right lead region. The
//     configured tip voltage is the default of the tip parameter.
//
// Every factory is a pure function of its [Config].
package qpc

import (
	"fmt"

	"github.com/matzehuels/tipscan/pkg/device"
	errs "github.com/matzehuels/tipscan/pkg/errors"
	"github.com/matzehuels/tipscan/pkg/lattice"
)

// Kind selects a device geometry.
type Kind string

const (
	KindTipSystem Kind = "tip-system"
	KindQPC       Kind = "qpc"
	KindStudy     Kind = "study"
)

// Parameter names read by the device values.
const (
	ParamGate        = "Vg"           // study: central site potential
	ParamCoupling    = "tc"           // study: central site coupling
	ParamTip         = "v"            // study: tip potential
	ParamGateVoltage = "gate_voltage" // tip-system, qpc: central site potential
	ParamTipVoltage  = "tip_voltage"  // tip-system: tip potential
	ParamTipX        = "x_position"   // tip-system: tip column
)

// Config describes a device. Zero fields take the defaults of the Kind,
// see [Config.WithDefaults].
type Config struct {
	Kind       Kind     `toml:"kind" json:"kind" validate:"omitempty,oneof=tip-system qpc study"`
	HalfWidth  int      `toml:"half_width" json:"half_width,omitempty" validate:"gte=0,lte=500"`
	Length     int      `toml:"length" json:"length,omitempty" validate:"gte=0,lte=5000"`
	Tip        *[2]int  `toml:"tip" json:"tip,omitempty"`
	TipVoltage *float64 `toml:"tip_voltage" json:"tip_voltage,omitempty"`
}

// DefaultConfig returns the study device with its default geometry.
func DefaultConfig() Config {
	return Config{Kind: KindStudy}.WithDefaults()
}

// WithDefaults returns a copy of c with unset fields filled in for its
// Kind. An empty Kind selects [KindStudy].
func (c Config) WithDefaults() Config {
	if c.Kind == "" {
		c.Kind = KindStudy
	}
	var w, l int
	var tip [2]int
	var v float64
	switch c.Kind {
	case KindTipSystem:
		w, l, tip, v = 8, 1, [2]int{1, 0}, 1
	case KindQPC:
		w, l, tip, v = 8, 30, [2]int{10, 0}, 1
	default:
		w, tip = 10, [2]int{30, 0}
	}
	if c.HalfWidth == 0 {
		c.HalfWidth = w
	}
	if c.Length == 0 {
		c.Length = l
	}
	if c.Tip == nil {
		c.Tip = &tip
	}
	if c.TipVoltage == nil {
		c.TipVoltage = &v
	}
	return c
}

// String describes the device, e.g. "study(w=10, tip=(30,0))".
func (c Config) String() string {
	c = c.WithDefaults()
	switch c.Kind {
	case KindStudy:
		if *c.TipVoltage != 0 {
			return fmt.Sprintf("%s(w=%d, tip=(%d,%d), V=%g)", c.Kind, c.HalfWidth, c.Tip[0], c.Tip[1], *c.TipVoltage)
		}
		return fmt.Sprintf("%s(w=%d, tip=(%d,%d))", c.Kind, c.HalfWidth, c.Tip[0], c.Tip[1])
	case KindTipSystem:
		return fmt.Sprintf("%s(w=%d, length=%d)", c.Kind, c.HalfWidth, c.Length)
	}
	return fmt.Sprintf("%s(w=%d, length=%d, tip=(%d,%d), V=%g)", c.Kind, c.HalfWidth, c.Length, c.Tip[0], c.Tip[1], *c.TipVoltage)
}

// Build constructs and finalizes the device described by c.
func Build(c Config) (*device.Model, error) {
	b, _, err := NewBuilder(c)
	if err != nil {
		return nil, err
	}
	return b.Finalize()
}

// NewBuilder constructs the device described by c with its leads attached
// and returns the builder before finalization along with its lattice.
func NewBuilder(c Config) (*device.Builder, *lattice.Square, error) {
	c = c.WithDefaults()
	if c.HalfWidth < 0 || c.Length < 0 {
		return nil, nil, errs.New(errs.ErrCodeInvalidConfig, "negative device size in %s", c)
	}
	lat := lattice.NewSquare("a", 1)
	var (
		b    *device.Builder
		lead *device.Lead
		err  error
	)
	switch c.Kind {
	case KindTipSystem:
		b, lead, err = tipSystem(lat, c)
	case KindQPC:
		b, lead, err = qpcWithTip(lat, c)
	case KindStudy:
		b, lead, err = study(lat, c)
	default:
		return nil, nil, errs.New(errs.ErrCodeInvalidConfig, "unknown device kind %q", c.Kind)
	}
	if err != nil {
		return nil, nil, err
	}
	if _, err := b.AttachLead(lead, 0); err != nil {
		return nil, nil, err
	}
	if _, err := b.AttachLead(lead.Reversed(), 0); err != nil {
		return nil, nil, err
	}
	return b, lat, nil
}

// stripLead is a lead of width 2w+1 along -x with zero potential and unit
// hopping.
func stripLead(lat *lattice.Square, x, w int) (*device.Lead, error) {
	lead, err := device.NewLead(lattice.Vec{-1, 0})
	if err != nil {
		return nil, err
	}
	if err := lead.SetSites(device.Column(lat, x, -w, w+1), device.Const(0)); err != nil {
		return nil, err
	}
	if err := lead.SetHoppings(device.Neighbors(lat), device.Const(-1)); err != nil {
		return nil, err
	}
	return lead, nil
}

func gatePotential() device.Value {
	return device.OnsiteFunc("central_potential", func(_ lattice.Site, p device.Params) float64 {
		return p[ParamGateVoltage]
	}, device.Optional(ParamGateVoltage, 0))
}

func tipSystem(lat *lattice.Square, c Config) (*device.Builder, *device.Lead, error) {
	w := c.HalfWidth
	tip := device.OnsiteFunc("tip_potential", func(s lattice.Site, p device.Params) float64 {
		pos := s.Pos()
		if pos[0] == p[ParamTipX] && pos[1] == 0 {
			return p[ParamTipVoltage]
		}
		return 0
	}, device.Optional(ParamTipVoltage, *c.TipVoltage), device.Optional(ParamTipX, float64(c.Tip[0])))

	b := device.NewBuilder()
	err := b.Apply(
		device.SitesOp{Pattern: device.Column(lat, -1, -w, w+1), Value: device.Const(0)},
		device.SitesOp{Pattern: device.Sites(lat.Site(0, 0)), Value: gatePotential()},
		device.SitesOp{Pattern: device.Rect(lat, 1, c.Length+1, -w, w+1), Value: tip},
		device.HoppingsOp{Pattern: device.Neighbors(lat), Value: device.Const(-1)},
	)
	if err != nil {
		return nil, nil, err
	}
	lead, err := stripLead(lat, 1, w)
	return b, lead, err
}

func qpcWithTip(lat *lattice.Square, c Config) (*device.Builder, *device.Lead, error) {
	w := c.HalfWidth
	at := lattice.Tag(*c.Tip)
	v := *c.TipVoltage
	tip := device.OnsiteFunc(fmt.Sprintf("tip@(%d,%d)=%g", at[0], at[1], v), func(s lattice.Site, _ device.Params) float64 {
		if s.Tag == at {
			return v
		}
		return 0
	})

	b := device.NewBuilder()
	err := b.Apply(
		device.SitesOp{Pattern: device.Column(lat, -1, -w, w+1), Value: device.Const(0)},
		device.SitesOp{Pattern: device.Sites(lat.Site(0, 0)), Value: gatePotential()},
		device.SitesOp{Pattern: device.Rect(lat, 1, c.Length+1, -w, w+1), Value: tip},
		device.HoppingsOp{Pattern: device.Neighbors(lat), Value: device.Const(-1)},
	)
	if err != nil {
		return nil, nil, err
	}
	lead, err := stripLead(lat, 1, w)
	return b, lead, err
}

func study(lat *lattice.Square, c Config) (*device.Builder, *device.Lead, error) {
	w := c.HalfWidth
	at := lattice.Tag(*c.Tip)
	pot := device.OnsiteFunc("Pot", func(_ lattice.Site, p device.Params) float64 {
		return p[ParamGate]
	}, device.Required(ParamGate))
	hop := device.HoppingFunc("Hop", func(_, _ lattice.Site, p device.Params) float64 {
		return p[ParamCoupling]
	}, device.Required(ParamCoupling))
	vtip := device.OnsiteFunc(fmt.Sprintf("Vtip@(%d,%d)", at[0], at[1]), func(s lattice.Site, p device.Params) float64 {
		if s.Tag == at {
			return p[ParamTip]
		}
		return 0
	}, device.Optional(ParamTip, *c.TipVoltage))

	centre := lat.Site(0, 0)
	b := device.NewBuilder()
	err := b.Apply(
		device.SitesOp{Pattern: device.Sites(centre), Value: pot},
		device.SitesOp{Pattern: device.Column(lat, -1, -w, w+1), Value: device.Const(0)},
		device.SitesOp{Pattern: device.Column(lat, 1, -w, w+1), Value: device.Const(0)},
		device.HoppingsOp{Pattern: device.Neighbors(lat), Value: device.Const(-1)},
		device.HoppingsOp{Pattern: device.Pair(centre, lat.Site(-1, 0)), Value: hop},
		device.HoppingsOp{Pattern: device.Pair(centre, lat.Site(1, 0)), Value: hop},
		device.SitesOp{Pattern: device.Sites(lat.Site(at[0], at[1])), Value: vtip},
	)
	if err != nil {
		return nil, nil, err
	}
	lead, err := stripLead(lat, -2, w)
	return b, lead, err
}
