package schedule

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// Default batch-delay bounds. A fixed cadence is trivially fingerprintable,
// so every batch waits a fresh uniform draw from this range.
const (
	DefaultMinBatchDelay = 20 * time.Second
	DefaultMaxBatchDelay = 60 * time.Second
)

// DelayBounds is the inclusive range batch delays are drawn from.
type DelayBounds struct {
	Min time.Duration
	Max time.Duration
}

// DefaultDelayBounds returns the production bounds.
func DefaultDelayBounds() DelayBounds {
	return DelayBounds{Min: DefaultMinBatchDelay, Max: DefaultMaxBatchDelay}
}

// Validate checks the bounds are usable.
func (b DelayBounds) Validate() error {
	if b.Min < 0 {
		return fmt.Errorf("min delay must be >= 0, got %s", b.Min)
	}
	if b.Max < b.Min {
		return fmt.Errorf("max delay %s must be >= min delay %s", b.Max, b.Min)
	}
	return nil
}

// DelayGenerator draws uniformly distributed delays from a bounded range.
// The randomness source is injected so tests can pin the sequence. Safe for
// concurrent use.
type DelayGenerator struct {
	mu     sync.Mutex
	rng    *rand.Rand
	bounds DelayBounds
}

// NewDelayGenerator constructs a generator over the given source and bounds.
func NewDelayGenerator(src rand.Source, bounds DelayBounds) (*DelayGenerator, error) {
	if err := bounds.Validate(); err != nil {
		return nil, fmt.Errorf("delay bounds: %w", err)
	}
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &DelayGenerator{rng: rand.New(src), bounds: bounds}, nil
}

// Bounds returns the configured range.
func (g *DelayGenerator) Bounds() DelayBounds {
	return g.bounds
}

// Next returns a delay in [Min, Max] inclusive.
func (g *DelayGenerator) Next() time.Duration {
	span := int64(g.bounds.Max - g.bounds.Min)
	if span == 0 {
		return g.bounds.Min
	}
	g.mu.Lock()
	offset := g.rng.Int64N(span + 1)
	g.mu.Unlock()
	return g.bounds.Min + time.Duration(offset)
}
