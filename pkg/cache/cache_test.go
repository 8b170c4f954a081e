package cache

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var errNotFound = errors.New("not found")

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if err := c.(Clearer).Clear(ctx); err != nil {
		t.Errorf("Clear error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "points"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "a"); hit || err != nil {
		t.Fatalf("empty cache Get = %v, %v", hit, err)
	}
	if err := c.Set(ctx, "a", []byte("one"), 0); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "a")
	if err != nil || !hit || string(data) != "one" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	// Expired entries are misses and get removed.
	if err := c.Set(ctx, "b", []byte("two"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "b"); hit {
		t.Error("expired entry should be a miss")
	}
	if _, err := os.Stat(c.path("b")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}

	// Corrupt entries are misses.
	if err := os.WriteFile(c.path("a"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "a"); hit || err != nil {
		t.Errorf("corrupt entry Get = %v, %v", hit, err)
	}

	if err := c.Set(ctx, "c", []byte("three"), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "c"); hit {
		t.Error("Clear should drop entries")
	}
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete(missing) = %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// SHA-256 produces 64 hex chars
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	base := PointKeyOpts{Model: "abc", Energy: -3.8, Params: map[string]float64{"Vg": 0.5, "tc": 1}, To: 1, From: 0}

	key := k.PointKey(base)
	if !strings.HasPrefix(key, "point:") {
		t.Errorf("PointKey unexpected: %s", key)
	}
	if again := k.PointKey(PointKeyOpts{Model: "abc", Energy: -3.8, Params: map[string]float64{"tc": 1, "Vg": 0.5}, To: 1}); again != key {
		t.Error("PointKey should not depend on map construction order")
	}

	variants := []PointKeyOpts{
		{Model: "abd", Energy: -3.8, Params: base.Params, To: 1},
		{Model: "abc", Energy: -3.7, Params: base.Params, To: 1},
		{Model: "abc", Energy: -3.8, Params: map[string]float64{"Vg": 0.6, "tc": 1}, To: 1},
		{Model: "abc", Energy: -3.8, Params: base.Params, To: 0, From: 1},
	}
	for i, v := range variants {
		if k.PointKey(v) == key {
			t.Errorf("variant %d should produce a different key", i)
		}
	}

	negZero := PointKeyOpts{Model: "abc", Params: map[string]float64{"v": math.Copysign(0, -1)}}
	posZero := PointKeyOpts{Model: "abc", Params: map[string]float64{"v": 0}}
	if k.PointKey(negZero) != k.PointKey(posZero) {
		t.Error("-0 and +0 should share a key")
	}
	if k.PointKey(PointKeyOpts{Model: "ab", Params: map[string]float64{"c": 1}}) == k.PointKey(PointKeyOpts{Model: "abc", Params: map[string]float64{"": 1}}) {
		t.Error("model and parameter names must not run together")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "reference/v1:")
	opts := PointKeyOpts{Model: "abc"}

	if got := scoped.PointKey(opts); got != "reference/v1:"+inner.PointKey(opts) {
		t.Errorf("ScopedKeyer PointKey unexpected: %s", got)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	if key := scoped.PointKey(PointKeyOpts{}); !strings.HasPrefix(key, "prefix:point:") {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

// netTimeout satisfies net.Error.
type netTimeout struct{}

func (netTimeout) Error() string   { return "i/o timeout" }
func (netTimeout) Timeout() bool   { return true }
func (netTimeout) Temporary() bool { return true }

func TestTransient(t *testing.T) {
	if transient(nil) != nil {
		t.Error("transient(nil) should be nil")
	}
	if err := transient(errNotFound); err != errNotFound || isTransient(err) {
		t.Errorf("non-network error should pass through, got %v", err)
	}
	err := transient(fmt.Errorf("get: %w", netTimeout{}))
	if !isTransient(err) {
		t.Fatal("network error should be transient")
	}
	if err.Error() != "get: i/o timeout" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestBackoff(t *testing.T) {
	ctx := context.Background()
	b := backoff{attempts: 3, delay: time.Millisecond}

	tests := []struct {
		name      string
		failures  int
		permanent bool
		wantCalls int
		wantErr   bool
	}{
		{"success", 0, false, 1, false},
		{"permanent failure stops", 1, true, 1, true},
		{"recovers after retry", 1, false, 2, false},
		{"gives up", 5, false, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := b.do(ctx, func() error {
				calls++
				switch {
				case calls > tt.failures:
					return nil
				case tt.permanent:
					return errNotFound
				}
				return transient(netTimeout{})
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if isTransient(err) {
				t.Error("exhausted retries should unwrap the error")
			}
		})
	}
}

func TestBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := backoff{attempts: 3, delay: time.Hour}.do(ctx, func() error {
		return transient(netTimeout{})
	})
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

// TestRedisCache runs against a live server named by TIPSCAN_TEST_REDIS,
// e.g. redis://localhost:6379/15.
func TestRedisCache(t *testing.T) {
	url := os.Getenv("TIPSCAN_TEST_REDIS")
	if url == "" {
		t.Skip("TIPSCAN_TEST_REDIS not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, url, "tipscan-test:")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	defer c.Clear(ctx)

	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Fatalf("Get on empty = %v, %v", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Clear should drop entries")
	}
}

func TestNewRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "not a url", ""); err == nil {
		t.Error("expected parse error")
	}
}
