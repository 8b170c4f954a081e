package cache

// ScopedKeyer wraps a Keyer with a prefix so that several tenants or
// solver versions can share one backend without seeing each other's
// entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "reference/v1:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// PointKey generates a prefixed point key.
func (k *ScopedKeyer) PointKey(opts PointKeyOpts) string {
	return k.prefix + k.inner.PointKey(opts)
}
