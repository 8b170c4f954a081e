package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tipscan/pkg/cache"
	"github.com/matzehuels/tipscan/pkg/store"
	"github.com/matzehuels/tipscan/pkg/sweep"
	"github.com/matzehuels/tipscan/pkg/transport"
)

// Runner encapsulates pipeline execution with caching and persistence.
// Both CLI and API use it to avoid duplicating that logic.
//
// The Runner holds no per-run state. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  store.Store
	Solver transport.Solver
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer scopes the default point keys to
// the reference solver version, a nil cache disables caching and a nil store
// keeps nothing.
func NewRunner(c cache.Cache, keyer cache.Keyer, s store.Store, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewScopedKeyer(nil, transport.ReferenceScope)
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if s == nil {
		s = store.NewNullStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Store:  s,
		Solver: transport.NewReference(),
		Logger: logger,
	}
}

// Execute runs the complete build → sweep → render pipeline.
//
// With opts.Partial set, a solver failure does not discard the run: Execute
// returns the result, with artifacts rendered from the completed prefixes,
// together with the failures.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := r.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	}

	result := &Result{Device: opts.Device.String()}

	// Stage 1: Build
	start := time.Now()
	m, err := Build(opts.Device)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Model = m
	result.Stats.BuildTime = time.Since(start)
	result.Stats.Sites = m.NumSites()
	result.Stats.Hoppings = len(m.Hoppings())
	result.Stats.Leads = m.NumLeads()

	logger.Info("built device",
		"device", result.Device,
		"sites", result.Stats.Sites,
		"leads", result.Stats.Leads,
		"duration", result.Stats.BuildTime)

	// Stage 2: Sweep
	start = time.Now()
	driver := &sweep.Driver{
		Solver:   r.Solver,
		Cache:    r.Cache,
		Keyer:    r.Keyer,
		Logger:   logger,
		Workers:  opts.Workers,
		Partial:  opts.Partial,
		Refresh:  opts.Refresh,
		From:     opts.From,
		To:       opts.To,
		Progress: opts.Progress,
	}
	res, sweepErr := driver.Run(ctx, m, opts.EnergyValue(), opts.Sweeps)
	if res == nil {
		return nil, fmt.Errorf("sweep: %w", sweepErr)
	}
	result.Sweep = res
	result.Stats.SweepTime = time.Since(start)
	result.Stats.Points = res.Stats.Solved + res.Stats.Cached
	result.Stats.Cached = res.Stats.Cached

	logger.Info("swept parameters",
		"series", len(res.Series),
		"solved", res.Stats.Solved,
		"cached", res.Stats.Cached,
		"failed", res.Stats.Failed,
		"interrupted", res.Interrupted,
		"duration", result.Stats.SweepTime)

	if r.Store != nil {
		rec := store.NewRecord(result.Device, m.Fingerprint(), res)
		if err := r.Store.Save(ctx, rec); err != nil {
			logger.Warn("store run failed", "err", err)
		} else if _, isNull := r.Store.(store.NullStore); !isNull {
			result.RunID = rec.ID
			logger.Debug("stored run", "id", rec.ID)
		}
	}

	// Stage 3: Render
	start = time.Now()
	artifacts, err := RenderArtifacts(ctx, result, opts.Formats)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	if sweepErr != nil {
		return result, fmt.Errorf("sweep: %w", sweepErr)
	}
	return result, nil
}

// Close releases resources held by the runner.
func (r *Runner) Close(ctx context.Context) error {
	var cacheErr error
	if r.Cache != nil {
		cacheErr = r.Cache.Close()
	}
	if r.Store != nil {
		if err := r.Store.Close(ctx); err != nil {
			return err
		}
	}
	return cacheErr
}
