// Package cache provides a small byte cache with pluggable backends, used to
// keep tree scores across runs. Scoring a landscape revisits the same shapes
// constantly; a persistent cache makes reruns close to free.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys. A zero ttl means no
// expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ScoreKeyOpts distinguishes score entries computed by different scorers
// over different data.
type ScoreKeyOpts struct {
	Scorer string
	Sites  int
}

// Keyer derives cache keys. Keys for the same structure and options must be
// stable across processes.
type Keyer interface {
	ScoreKey(structure string, opts ScoreKeyOpts) string
}

// DefaultKeyer hashes the structure string together with the options.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// ScoreKey generates a key for a scored tree shape.
func (k *DefaultKeyer) ScoreKey(structure string, opts ScoreKeyOpts) string {
	return hashKey("score", structure, opts)
}
