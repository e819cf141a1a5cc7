package cache

// ScopedKeyer wraps a Keyer with a prefix so several landscapes can share
// one cache directory without key collisions.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "primates:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. The prefix is prepended to
// all generated keys. A nil inner keyer falls back to the default.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ScoreKey generates a prefixed key for a scored tree shape.
func (k *ScopedKeyer) ScoreKey(structure string, opts ScoreKeyOpts) string {
	return k.prefix + k.inner.ScoreKey(structure, opts)
}
