// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about sweeps, cache operations, and served HTTP requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so the sweep and cache
// packages stay free of any metrics backend. The Prometheus backend lives in
// the prom subpackage.
//
// # Usage
//
//	func main() {
//	    m := prom.New()
//	    observability.SetSweepHooks(m)
//	    observability.SetCacheHooks(m)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Sweep().OnSweepStart(ctx, len(configs), total)
//	// ... solve points ...
//	observability.Sweep().OnSweepComplete(ctx, stats.Solved, stats.Failed, elapsed, interrupted)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Sweep Hooks
// =============================================================================

// SweepHooks receives events from the sweep driver.
type SweepHooks interface {
	// OnSweepStart is called once per run with the number of series and the
	// total number of points scheduled.
	OnSweepStart(ctx context.Context, series, points int)

	// OnPointComplete is called after every transport query, including
	// failed ones. cached reports whether the value came from the cache.
	OnPointComplete(ctx context.Context, series string, cached bool, duration time.Duration, err error)

	// OnSweepComplete is called once per run.
	OnSweepComplete(ctx context.Context, solved, failed int, duration time.Duration, interrupted bool)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records a completed request.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSweepHooks is a no-op implementation of SweepHooks.
type NoopSweepHooks struct{}

func (NoopSweepHooks) OnSweepStart(context.Context, int, int)                              {}
func (NoopSweepHooks) OnPointComplete(context.Context, string, bool, time.Duration, error) {}
func (NoopSweepHooks) OnSweepComplete(context.Context, int, int, time.Duration, bool)      {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	sweepHooks SweepHooks = NoopSweepHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	hooksMu    sync.RWMutex
)

// SetSweepHooks registers custom sweep hooks.
// This should be called once at application startup before any sweep runs.
func SetSweepHooks(h SweepHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sweepHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before serving.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Sweep returns the registered sweep hooks.
func Sweep() SweepHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sweepHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	sweepHooks = NoopSweepHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
