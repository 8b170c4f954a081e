// Package pipeline runs a transmission study from a single options value.
//
// This package implements the complete build → sweep → render pipeline used
// by the CLI and the HTTP server, so both entry points share defaults,
// validation and caching.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: construct and finalize the device model (see package qpc)
//  2. Sweep: evaluate every sweep configuration with the transport solver
//  3. Render: produce the requested artifacts (JSON, CSV, DOT, SVG, PDF, PNG)
//
// Results are optionally persisted to a store under a random run ID.
//
// # Usage
//
//	opts, err := pipeline.LoadOptions("study.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	runner := pipeline.NewRunner(cache, nil, nil, logger)
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	plot := result.Artifacts["json"]
package pipeline

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tipscan/pkg/device"
	errs "github.com/matzehuels/tipscan/pkg/errors"
	"github.com/matzehuels/tipscan/pkg/qpc"
	"github.com/matzehuels/tipscan/pkg/sweep"
)

// DefaultEnergy is the Fermi energy of the reference study.
const DefaultEnergy = -3.8

// Format constants for output artifacts.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPDF  = "pdf"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported artifact formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatCSV:  true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPDF:  true,
	FormatPNG:  true,
}

// Options contains all configuration for one study. It decodes from TOML
// study files and from JSON API requests.
type Options struct {
	Energy  *float64       `toml:"energy" json:"energy,omitempty"`
	Device  qpc.Config     `toml:"device" json:"device"`
	Sweeps  []sweep.Config `toml:"sweep" json:"sweeps" validate:"required,min=1,max=64,dive"`
	Workers int            `toml:"workers" json:"workers,omitempty" validate:"gte=0,lte=1024"`
	Partial bool           `toml:"partial" json:"partial,omitempty"`
	Refresh bool           `toml:"refresh" json:"refresh,omitempty"`
	From    int            `toml:"from" json:"from,omitempty" validate:"gte=0"`
	To      int            `toml:"to" json:"to,omitempty" validate:"gte=0"`
	Formats []string       `toml:"formats" json:"formats,omitempty" validate:"dive,oneof=json csv dot svg pdf png"`

	// Runtime options (not serialized)
	Logger   *log.Logger            `toml:"-" json:"-"`
	Progress func(done, total int) `toml:"-" json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Device describes the device geometry.
	Device string

	// Model is the finalized device model.
	Model *device.Model

	// Sweep holds the transmission series.
	Sweep *sweep.Result

	// RunID identifies the stored record, empty without a store.
	RunID string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Sites      int
	Hoppings   int
	Leads      int
	Points     int
	Cached     int
	BuildTime  time.Duration
	SweepTime  time.Duration
	RenderTime time.Duration
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidConfig, "invalid format: %q (must be one of: json, csv, dot, svg, pdf, png)", format)
	}
	return nil
}

// ValidateAndSetDefaults checks the options and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := validateStruct(o); err != nil {
		return err
	}
	if o.Energy == nil {
		e := DefaultEnergy
		o.Energy = &e
	}
	if err := errs.ValidateFinite("energy", *o.Energy); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "energy")
	}
	o.Device = o.Device.WithDefaults()
	for i := range o.Sweeps {
		o.Sweeps[i] = o.Sweeps[i].WithDefaults()
		if err := o.Sweeps[i].Validate(); err != nil {
			return fmt.Errorf("sweep %d: %w", i, err)
		}
		if o.Sweeps[i].Low > o.Sweeps[i].High {
			return errs.New(errs.ErrCodeInvalidConfig, "sweep %d: low %g above high %g", i, o.Sweeps[i].Low, o.Sweeps[i].High)
		}
	}
	switch {
	case o.From == 0 && o.To == 0:
		o.To = 1
	case o.From == o.To:
		return errs.New(errs.ErrCodeInvalidConfig, "from and to both select lead %d", o.From)
	}
	if o.Workers == 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	for _, f := range o.Formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// EnergyValue returns the energy, or the default when unset.
func (o *Options) EnergyValue() float64 {
	if o.Energy == nil {
		return DefaultEnergy
	}
	return *o.Energy
}
