package prices

import "go.uber.org/zap"

type Config struct {
	Logger *zap.Logger

	// Stats, if not nil, is filled with the resolutions made by a merge.
	Stats *Stats
}

type Option func(*Config)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

func WithStats(stats *Stats) Option {
	return func(c *Config) {
		c.Stats = stats
	}
}

func newConfig(opts []Option) *Config {
	cfg := &Config{
		Logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Stats == nil {
		cfg.Stats = &Stats{}
	}
	return cfg
}

// Stats counts how overlaps were resolved during a merge.
type Stats struct {
	// Extended is the number of old prices widened by a new price with the same value.
	Extended int
	// Truncated is the number of old prices cut at the begin of a new price.
	Truncated int
	// Shifted is the number of old prices whose begin moved to the end of a new price.
	Shifted int
	// Split is the number of old prices cut in two by a new price inside them.
	Split int
	// Removed is the number of old prices replaced entirely by a new price.
	Removed int
	// Coalesced is the number of old prices folded into another old price with the same value.
	Coalesced int

	// Absorbed is the number of new prices dropped because an old price with the same value covers them.
	Absorbed int
	// Passed is the number of new prices without any old price in their group.
	Passed int
	// Emitted is the number of new prices kept as they are next to old prices of their group.
	Emitted int
}
