package chd

import (
	"log/slog"
	"math/rand/v2"
)

// BuildOption is a functional option for configuring builds.
type BuildOption func(*buildConfig)

type buildConfig struct {
	loadFactor float64
	seed       uint64
	rng        *rand.Rand
	logger     *slog.Logger
}

func defaultBuildConfig() *buildConfig {
	return &buildConfig{
		loadFactor: 0.99,
		seed:       0x1234567890abcdef, // Arbitrary default; overridden via WithSeed
		logger:     slog.New(slog.DiscardHandler),
	}
}

// random returns the generator hash seeds are drawn from: the one passed to
// WithRand, or a PCG seeded from the configured seed.
func (c *buildConfig) random() *rand.Rand {
	if c.rng != nil {
		return c.rng
	}
	return rand.New(rand.NewPCG(c.seed, c.seed^0x9e3779b97f4a7c15))
}

// WithLoadFactor sets the ratio of keys to hash positions. Values are
// clamped to [0.5, 0.99]; lower values build faster and take more space
// per key.
func WithLoadFactor(c float64) BuildOption {
	return func(cfg *buildConfig) {
		cfg.loadFactor = c
	}
}

// WithSeed seeds the generator that hash seeds are drawn from. Builds over
// the same keys with the same seed produce identical functions.
func WithSeed(seed uint64) BuildOption {
	return func(cfg *buildConfig) {
		cfg.seed = seed
	}
}

// WithRand draws hash seeds from rng instead of a generator created from
// WithSeed. rng is advanced by the build and must not be shared with
// concurrent builds.
func WithRand(rng *rand.Rand) BuildOption {
	return func(cfg *buildConfig) {
		cfg.rng = rng
	}
}

// WithLogger reports construction retries at debug level. By default
// nothing is logged.
func WithLogger(logger *slog.Logger) BuildOption {
	return func(cfg *buildConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}
