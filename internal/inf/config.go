package inf

import (
	"log/slog"
	"time"
)

// DefaultBudget is the wall-clock time an iterator may stay alive before
// it stops reporting elements.
const DefaultBudget = 5 * time.Second

// Config is the diagnostic configuration surface of Messages.
type Config struct {
	// Budget bounds the wall-clock lifetime of each iterator.
	// Zero or negative disables the budget.
	Budget time.Duration

	// Profiling disables the budget regardless of its value. Intended for
	// offline runs and profiling tools that need complete result sets.
	Profiling bool

	// Clock measures iterator lifetime. Defaults to SystemClock.
	Clock Clock

	// Logger receives expiry warnings and per-element debug records.
	// Defaults to slog.Default() at log time.
	Logger *slog.Logger

	// IDs names iterators in logs and errors. Defaults to UUIDv7Generator.
	IDs IDGenerator
}

// DefaultConfig returns the production configuration: 5s budget, no
// profiling override, system clock, UUIDv7 traversal ids.
func DefaultConfig() Config {
	return Config{
		Budget: DefaultBudget,
		Clock:  SystemClock{},
		IDs:    UUIDv7Generator{},
	}
}

// Option configures Messages.
type Option func(*Config)

// WithBudget sets the latency budget. Zero or negative disables it.
func WithBudget(d time.Duration) Option {
	return func(c *Config) { c.Budget = d }
}

// WithProfiling turns the budget override on or off.
func WithProfiling(on bool) Option {
	return func(c *Config) { c.Profiling = on }
}

// WithClock sets the clock used to measure iterator lifetime.
func WithClock(clock Clock) Option {
	return func(c *Config) { c.Clock = clock }
}

// WithLogger sets the logger for expiry warnings and debug records.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithIDGenerator sets the traversal id generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(c *Config) { c.IDs = g }
}

// WithConfig replaces the whole configuration. Nil fields fall back to
// the defaults.
func WithConfig(cfg Config) Option {
	return func(c *Config) { *c = cfg }
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c Config) bounded() bool {
	return c.Budget > 0 && !c.Profiling
}

func (c Config) withDefaults() Config {
	if c.Clock == nil {
		c.Clock = SystemClock{}
	}
	if c.IDs == nil {
		c.IDs = UUIDv7Generator{}
	}
	return c
}
