package eventity

import (
	"fmt"
	"log/slog"

	"github.com/eventity/eventity/pkg/eventity/config"
	"github.com/eventity/eventity/pkg/eventity/faultlog"
)

// busConfig holds construction-time configuration for a Bus.
type busConfig struct {
	name           string
	store          Store
	capacity       int
	logger         *slog.Logger
	metricsEnabled bool
	tracingEnabled bool
	faultStore     faultlog.Store
	faultHandler   func(Fault)
}

func defaultBusConfig() busConfig {
	return busConfig{name: "eventity"}
}

// Option configures a Bus at construction.
type Option func(*busConfig)

// WithName sets the bus name used in logs, metrics attributes, and spans.
// Default: "eventity".
func WithName(name string) Option {
	return func(c *busConfig) {
		if name != "" {
			c.name = name
		}
	}
}

// WithStore substitutes the entity/attribute store. Default: a fresh
// world.World.
func WithStore(s Store) Option {
	return func(c *busConfig) {
		c.store = s
	}
}

// WithCapacity pre-sizes the queue's generations for an expected number of
// events per cycle.
func WithCapacity(n int) Option {
	return func(c *busConfig) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithLogger enables structured logging through the given logger. Default:
// no logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *busConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics recording. The recorder uses the
// global meter provider; configure it before dispatching.
func WithMetrics(enabled bool) Option {
	return func(c *busConfig) {
		c.metricsEnabled = enabled
	}
}

// WithTracing enables OpenTelemetry spans around dispatch cycles and
// callback executions. Uses the global tracer provider.
func WithTracing(enabled bool) Option {
	return func(c *busConfig) {
		c.tracingEnabled = enabled
	}
}

// WithFaultStore journals every callback fault to the given store.
func WithFaultStore(s faultlog.Store) Option {
	return func(c *busConfig) {
		c.faultStore = s
	}
}

// WithFaultHandler invokes fn for every callback fault, after logging and
// before journaling. fn runs on the dispatching goroutine.
func WithFaultHandler(fn func(Fault)) Option {
	return func(c *busConfig) {
		c.faultHandler = fn
	}
}

// FromConfig translates a loaded configuration into bus options. The fault
// journal backend is constructed here; "sqlite" opens the configured path
// and the caller owns closing it via the bus's fault store.
func FromConfig(c config.Config) ([]Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	opts := []Option{
		WithName(c.Name),
		WithCapacity(c.QueueCapacity),
		WithMetrics(c.Metrics),
		WithTracing(c.Tracing),
	}
	switch c.FaultLog.Backend {
	case "", config.FaultLogNone:
	case config.FaultLogMemory:
		opts = append(opts, WithFaultStore(faultlog.NewMemoryStore()))
	case config.FaultLogSQLite:
		store, err := faultlog.NewSQLiteStore(c.FaultLog.Path)
		if err != nil {
			return nil, fmt.Errorf("eventity: opening fault journal: %w", err)
		}
		opts = append(opts, WithFaultStore(store))
	default:
		return nil, fmt.Errorf("eventity: unknown fault journal backend %q", c.FaultLog.Backend)
	}
	return opts, nil
}
