package sweep

import (
	"maps"
	"math"
	"slices"

	errs "github.com/matzehuels/tipscan/pkg/errors"
)

// Default parameter names.
const (
	DefaultVariable      = "Vg"
	DefaultCouplingParam = "tc"
)

// MaxSamples bounds the number of samples of a single configuration.
const MaxSamples = 1_000_000

// Config describes one transmission curve.
type Config struct {
	Label         string             `toml:"label" json:"label,omitempty"`
	Coupling      float64            `toml:"coupling" json:"coupling"`
	CouplingParam string             `toml:"coupling_param" json:"coupling_param,omitempty"`
	Variable      string             `toml:"variable" json:"variable,omitempty"`
	Low           float64            `toml:"low" json:"low"`
	High          float64            `toml:"high" json:"high"`
	Points        int                `toml:"points" json:"points,omitempty" validate:"gte=0,lte=1000000"`
	Divisor       float64            `toml:"divisor" json:"divisor,omitempty" validate:"gte=0"`
	Fixed         map[string]float64 `toml:"fixed" json:"fixed,omitempty"`
}

// WithDefaults fills in the parameter names and the legend label.
func (c Config) WithDefaults() Config {
	if c.Variable == "" {
		c.Variable = DefaultVariable
	}
	if c.CouplingParam == "" {
		c.CouplingParam = DefaultCouplingParam
	}
	if c.Label == "" {
		c.Label = c.CouplingParam + " = " + FormatFloat(c.Coupling)
	}
	return c
}

// Validate checks the configuration without computing samples. Every
// failure carries code INVALID_CONFIG.
func (c Config) Validate() error {
	c = c.WithDefaults()
	if err := c.validate(); err != nil {
		if errs.GetCode(err) == errs.ErrCodeInvalidConfig {
			return err
		}
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "sweep %q", c.Label)
	}
	return nil
}

func (c Config) validate() error {
	for _, name := range []string{c.Variable, c.CouplingParam} {
		if err := errs.ValidateParamName(name); err != nil {
			return err
		}
	}
	if c.Variable == c.CouplingParam {
		return errs.New(errs.ErrCodeInvalidConfig, "swept variable and coupling share the name %q", c.Variable)
	}
	numeric := []struct {
		name string
		v    float64
	}{
		{"coupling", c.Coupling},
		{"low", c.Low},
		{"high", c.High},
		{"divisor", c.Divisor},
	}
	for _, f := range numeric {
		if err := errs.ValidateFinite(f.name, f.v); err != nil {
			return err
		}
	}
	for _, name := range slices.Sorted(maps.Keys(c.Fixed)) {
		if err := errs.ValidateParamName(name); err != nil {
			return err
		}
		if err := errs.ValidateFinite(name, c.Fixed[name]); err != nil {
			return err
		}
	}
	switch {
	case c.Points < 0:
		return errs.New(errs.ErrCodeInvalidConfig, "points must be non-negative, got %d", c.Points)
	case c.Points > MaxSamples:
		return errs.New(errs.ErrCodeInvalidConfig, "points %d exceeds limit %d", c.Points, MaxSamples)
	case c.Points > 0:
		return nil
	case c.Divisor < 0:
		return errs.New(errs.ErrCodeInvalidConfig, "divisor must be positive, got %g", c.Divisor)
	case c.Divisor == 0:
		return errs.New(errs.ErrCodeInvalidConfig, "%s: either points or divisor must be set", c.Label)
	}
	if n := math.Trunc(c.High*c.Divisor) - math.Trunc(c.Low*c.Divisor); n > MaxSamples {
		return errs.New(errs.ErrCodeInvalidConfig, "%s: %g samples exceed limit %d", c.Label, n, MaxSamples)
	}
	return nil
}

// Samples returns the values of the swept variable in sweep order.
func (c Config) Samples() ([]float64, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Points > 0 {
		return Linspace(c.Low, c.High, c.Points), nil
	}
	return Stepped(c.Low, c.High, c.Divisor), nil
}

// Linspace returns n evenly spaced values over [lo, hi]. The first value is
// lo and, for n > 1, the last is exactly hi.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// Stepped returns k/d for every integer k with trunc(lo*d) <= k <
// trunc(hi*d). The upper bound is never included.
func Stepped(lo, hi, d float64) []float64 {
	if d <= 0 {
		return []float64{}
	}
	start, stop := int(math.Trunc(lo*d)), int(math.Trunc(hi*d))
	if stop <= start {
		return []float64{}
	}
	out := make([]float64, 0, stop-start)
	for k := start; k < stop; k++ {
		out = append(out, float64(k)/d)
	}
	return out
}
