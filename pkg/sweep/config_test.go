package sweep

import (
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	errs "github.com/matzehuels/tipscan/pkg/errors"
)

func TestSamples(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want []float64
	}{
		{"points inclusive", Config{Low: -5, High: 5, Points: 5}, []float64{-5, -2.5, 0, 2.5, 5}},
		{"single point", Config{Low: 2, High: 7, Points: 1}, []float64{2}},
		{"divisor half open", Config{Low: -1, High: 1, Divisor: 2}, []float64{-1, -0.5, 0, 0.5}},
		{"divisor truncates", Config{Low: 0.3, High: 1.3, Divisor: 2}, []float64{0, 0.5}},
		{"divisor empty range", Config{Low: 1, High: 1, Divisor: 4}, []float64{}},
		{"points win", Config{Low: 0, High: 1, Points: 2, Divisor: 10}, []float64{0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.Samples()
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Samples() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSamplesErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no policy", Config{Low: 0, High: 1}},
		{"negative points", Config{Points: -1}},
		{"negative divisor", Config{Divisor: -2}},
		{"too many points", Config{Points: MaxSamples + 1}},
		{"too many steps", Config{Low: 0, High: 1e9, Divisor: 1}},
		{"nan bound", Config{Low: math.NaN(), High: 1, Points: 3}},
		{"bad fixed name", Config{Points: 3, Fixed: map[string]float64{"": 1}}},
		{"shared name", Config{Points: 3, Variable: "x", CouplingParam: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.Samples()
			if !errs.Is(err, errs.ErrCodeInvalidConfig) {
				t.Errorf("err = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestValidateReportsFirstNonFiniteField(t *testing.T) {
	cfg := Config{Coupling: math.Inf(1), Low: math.NaN(), High: math.NaN(), Divisor: math.Inf(-1)}
	for range 20 {
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "coupling must be finite") {
			t.Fatalf("err = %v, want the coupling reported", err)
		}
	}
}

func TestWithDefaults(t *testing.T) {
	c := Config{Coupling: 1}.WithDefaults()
	if c.Variable != "Vg" || c.CouplingParam != "tc" {
		t.Errorf("names = %q, %q", c.Variable, c.CouplingParam)
	}
	if c.Label != "tc = 1.0" {
		t.Errorf("Label = %q", c.Label)
	}
	c = Config{Label: "custom"}.WithDefaults()
	if c.Label != "custom" {
		t.Errorf("Label = %q", c.Label)
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1, "1.0"},
		{-1, "-1.0"},
		{0, "0.0"},
		{0.5, "0.5"},
		{-0.25, "-0.25"},
		{1e-5, "1e-05"},
		{1.5e-7, "1.5e-07"},
		{1e16, "1e+16"},
		{123456.75, "123456.75"},
		{math.Inf(1), "inf"},
	}
	for _, tt := range tests {
		if got := FormatFloat(tt.in); got != tt.want {
			t.Errorf("FormatFloat(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLinspaceProperties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	properties.Property("endpoints and length", prop.ForAll(
		func(lo, span float64, n int) bool {
			hi := lo + span
			xs := Linspace(lo, hi, n)
			if len(xs) != n || xs[0] != lo {
				return false
			}
			return n == 1 || xs[n-1] == hi
		},
		gen.Float64Range(-100, 100),
		gen.Float64Range(0, 50),
		gen.IntRange(1, 500),
	))

	properties.Property("non-decreasing", prop.ForAll(
		func(lo, span float64, n int) bool {
			return slices.IsSorted(Linspace(lo, lo+span, n))
		},
		gen.Float64Range(-100, 100),
		gen.Float64Range(0, 50),
		gen.IntRange(1, 500),
	))

	properties.TestingRun(t)
}

func TestSteppedProperties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	properties.Property("upper bound excluded", prop.ForAll(
		func(lo, hi, d int) bool {
			xs := Stepped(float64(lo), float64(hi), float64(d))
			for _, x := range xs {
				if x >= float64(hi) {
					return false
				}
			}
			want := max(hi*d-lo*d, 0)
			return len(xs) == want
		},
		gen.IntRange(-20, 20),
		gen.IntRange(-20, 20),
		gen.IntRange(1, 20),
	))

	properties.Property("fixed step", prop.ForAll(
		func(lo, d int) bool {
			xs := Stepped(float64(lo), float64(lo+3), float64(d))
			for i := 1; i < len(xs); i++ {
				if math.Abs(xs[i]-xs[i-1]-1/float64(d)) > 1e-9 {
					return false
				}
			}
			return true
		},
		gen.IntRange(-20, 20),
		gen.IntRange(1, 20),
	))

	properties.TestingRun(t)
}
