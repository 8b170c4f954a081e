package sweep

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/tipscan/pkg/cache"
	"github.com/matzehuels/tipscan/pkg/device"
	errs "github.com/matzehuels/tipscan/pkg/errors"
	"github.com/matzehuels/tipscan/pkg/observability"
	"github.com/matzehuels/tipscan/pkg/transport"
)

// Driver evaluates sweep configurations against a solver. The zero value is
// usable: it solves with [transport.NewReference], caches nothing, logs
// nothing and runs one worker per CPU.
type Driver struct {
	Solver transport.Solver
	Cache  cache.Cache
	Keyer  cache.Keyer
	TTL    time.Duration
	Logger *log.Logger

	// Workers bounds concurrent solver calls. Non-positive means GOMAXPROCS.
	Workers int

	// Partial keeps going after a solver failure. The failing configuration
	// keeps its completed prefix and Run returns the result together with
	// the failures.
	Partial bool

	// Refresh ignores cached values but still stores fresh ones.
	Refresh bool

	// From and To select the lead pair. Leaving both zero means 0 into 1;
	// any other equal pair is rejected.
	From, To int

	// Progress, if set, is called after every finished sample. Calls are
	// serialized.
	Progress func(done, total int)
}

// NewDriver creates a driver around s with every other setting defaulted.
func NewDriver(s transport.Solver) *Driver {
	return &Driver{Solver: s}
}

func (d *Driver) withDefaults() Driver {
	out := *d
	if out.Solver == nil {
		out.Solver = transport.NewReference()
	}
	if out.Cache == nil {
		out.Cache = cache.NewNullCache()
	}
	if out.Keyer == nil {
		out.Keyer = cache.NewDefaultKeyer()
	}
	if out.TTL == 0 {
		out.TTL = cache.TTLPoint
	}
	if out.Logger == nil {
		out.Logger = log.New(io.Discard)
	}
	if out.Workers <= 0 {
		out.Workers = runtime.GOMAXPROCS(0)
	}
	if out.From == 0 && out.To == 0 {
		out.To = 1
	}
	return out
}

// job is the state of one configuration while a run is in flight. Each
// sample slot is written by exactly one goroutine.
type job struct {
	cfg     Config
	base    device.Params
	xs      []float64
	ts      []float64
	done    []bool
	errs    []error
	started time.Time

	// firstFailed is the lowest failed sample index, len(xs) if none.
	firstFailed atomic.Int64
}

func (j *job) fail(i int, err error) {
	j.errs[i] = err
	for {
		cur := j.firstFailed.Load()
		if int64(i) >= cur || j.firstFailed.CompareAndSwap(cur, int64(i)) {
			return
		}
	}
}

// prefix returns the number of leading samples that completed.
func (j *job) prefix() int {
	for i, ok := range j.done {
		if !ok {
			return i
		}
	}
	return len(j.done)
}

type counters struct {
	solved, cached, failed atomic.Int64
}

// Run evaluates every configuration at the given energy and returns one
// series per configuration, in configuration order.
//
// Invalid configurations and parameter assignments missing a required model
// parameter are reported before any solving starts.
func (d *Driver) Run(ctx context.Context, m *device.Model, energy float64, configs []Config) (*Result, error) {
	s := d.withDefaults()
	if m == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "nil model")
	}
	if err := errs.ValidateFinite("energy", energy); err != nil {
		return nil, err
	}
	if s.From == s.To {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "lead pair %d->%d needs two distinct leads", s.From, s.To)
	}
	if n := m.NumLeads(); s.From < 0 || s.To < 0 || s.From >= n || s.To >= n {
		return nil, errs.New(errs.ErrCodeInvalidInput, "lead pair %d->%d out of range for %d leads", s.From, s.To, n)
	}

	jobs, total, err := s.plan(m, configs)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Sweep().OnSweepStart(ctx, len(jobs), total)
	var (
		cnt      counters
		finished atomic.Int64
		progMu   sync.Mutex
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Workers)

schedule:
	for _, j := range jobs {
		j.started = time.Now()
		for i := range j.xs {
			if gctx.Err() != nil {
				break schedule
			}
			if int64(i) > j.firstFailed.Load() {
				break
			}
			g.Go(func() error {
				if gctx.Err() != nil || int64(i) > j.firstFailed.Load() {
					return nil
				}
				err := s.sample(gctx, m, energy, j, i, &cnt)
				if err != nil && gctx.Err() != nil && errors.Is(err, gctx.Err()) {
					return nil
				}
				if s.Progress != nil {
					n := int(finished.Add(1))
					progMu.Lock()
					s.Progress(n, total)
					progMu.Unlock()
				}
				if err != nil {
					j.fail(i, err)
					cnt.failed.Add(1)
					s.Logger.Error("sample failed", "series", j.cfg.Label, j.cfg.Variable, j.xs[i], "err", err)
					if !s.Partial {
						return err
					}
				}
				return nil
			})
		}
	}
	_ = g.Wait()

	res := &Result{Energy: energy, From: s.From, To: s.To, Series: make([]Series, len(jobs))}
	var failures []error
	for k, j := range jobs {
		n := j.prefix()
		series := Series{
			Label:    j.cfg.Label,
			Coupling: j.cfg.Coupling,
			Variable: j.cfg.Variable,
			Points:   make([]Point, n),
			Complete: n == len(j.xs),
		}
		for i := range n {
			series.Points[i] = Point{X: j.xs[i], T: j.ts[i]}
		}
		if f := j.firstFailed.Load(); f < int64(len(j.xs)) {
			series.Err = fmt.Errorf("sweep %q: %w", j.cfg.Label, j.errs[f])
			failures = append(failures, series.Err)
		}
		res.Series[k] = series
		if !j.started.IsZero() {
			s.Logger.Info("series done", "label", series.Label, "points", n, "of", len(j.xs), "complete", series.Complete, "took", time.Since(j.started).Round(time.Millisecond))
		}
	}

	res.Interrupted = ctx.Err() != nil
	res.Stats = Stats{
		Planned:  total,
		Solved:   int(cnt.solved.Load()),
		Cached:   int(cnt.cached.Load()),
		Failed:   int(cnt.failed.Load()),
		Duration: time.Since(start),
	}
	res.Stats.Skipped = total - res.Stats.Solved - res.Stats.Cached - res.Stats.Failed
	observability.Sweep().OnSweepComplete(ctx, res.Stats.Solved+res.Stats.Cached, res.Stats.Failed, res.Stats.Duration, res.Interrupted)

	if len(failures) > 0 {
		if !s.Partial {
			return nil, failures[0]
		}
		return res, errors.Join(failures...)
	}
	if res.Interrupted {
		s.Logger.Warn("sweep interrupted", "solved", res.Stats.Solved, "cached", res.Stats.Cached, "skipped", res.Stats.Skipped)
	}
	return res, nil
}

// plan validates the configurations and computes their samples.
func (d *Driver) plan(m *device.Model, configs []Config) ([]*job, int, error) {
	jobs := make([]*job, len(configs))
	total := 0
	for k, c := range configs {
		c = c.WithDefaults()
		xs, err := c.Samples()
		if err != nil {
			return nil, 0, fmt.Errorf("sweep %d: %w", k, err)
		}
		base := m.Defaults().Merge(c.Fixed, device.Params{c.CouplingParam: c.Coupling})
		first := base.Merge(device.Params{c.Variable: c.Low})
		if err := m.CheckParams(first); err != nil {
			return nil, 0, fmt.Errorf("sweep %q: %w", c.Label, err)
		}
		j := &job{
			cfg:  c,
			base: base,
			xs:   xs,
			ts:   make([]float64, len(xs)),
			done: make([]bool, len(xs)),
			errs: make([]error, len(xs)),
		}
		j.firstFailed.Store(int64(len(xs)))
		jobs[k] = j
		total += len(xs)
	}
	return jobs, total, nil
}

// sample computes one point of j and records it.
func (d *Driver) sample(ctx context.Context, m *device.Model, energy float64, j *job, i int, cnt *counters) error {
	start := time.Now()
	p := j.base.Merge(device.Params{j.cfg.Variable: j.xs[i]})
	t, cached, err := d.point(ctx, m, energy, p)
	observability.Sweep().OnPointComplete(ctx, j.cfg.Label, cached, time.Since(start), err)
	if err != nil {
		return err
	}
	if cached {
		cnt.cached.Add(1)
	} else {
		cnt.solved.Add(1)
	}
	j.ts[i] = t
	j.done[i] = true
	d.Logger.Debug("sample", "series", j.cfg.Label, j.cfg.Variable, j.xs[i], "t", t, "cached", cached)
	return nil
}

// point returns the transmission for one parameter assignment, consulting
// the cache first. Cache failures are logged and treated as misses.
func (d *Driver) point(ctx context.Context, m *device.Model, energy float64, p device.Params) (float64, bool, error) {
	key := d.Keyer.PointKey(cache.PointKeyOpts{
		Model:  m.Fingerprint(),
		Energy: energy,
		Params: p,
		To:     d.To,
		From:   d.From,
	})

	if !d.Refresh {
		data, ok, err := d.Cache.Get(ctx, key)
		switch {
		case err != nil:
			d.Logger.Warn("cache get failed", "err", err)
		case ok && len(data) == 8:
			observability.Cache().OnCacheHit(ctx, "point")
			return math.Float64frombits(binary.LittleEndian.Uint64(data)), true, nil
		default:
			observability.Cache().OnCacheMiss(ctx, "point")
		}
	}

	t, err := transport.Transmission(ctx, d.Solver, m, energy, p, d.To, d.From)
	if err != nil {
		return 0, false, err
	}

	buf := binary.LittleEndian.AppendUint64(nil, math.Float64bits(t))
	if err := d.Cache.Set(ctx, key, buf, d.TTL); err != nil {
		d.Logger.Warn("cache set failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "point", len(buf))
	}
	return t, false, nil
}
