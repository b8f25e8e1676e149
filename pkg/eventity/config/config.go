package config

import (
	"errors"
	"fmt"
)

// Fault journal backends.
const (
	FaultLogNone   = "none"
	FaultLogMemory = "memory"
	FaultLogSQLite = "sqlite"
)

// ErrUnsupportedFormat indicates a config file extension that is neither
// YAML nor JSON.
var ErrUnsupportedFormat = errors.New("config: unsupported file format")

// Config holds bus tuning loaded from YAML or JSON.
type Config struct {
	// Name identifies the bus in logs, metrics, and spans.
	Name string `yaml:"name" json:"name"`

	// QueueCapacity pre-sizes the event queue's generations. Zero means no
	// pre-sizing.
	QueueCapacity int `yaml:"queue_capacity" json:"queue_capacity"`

	// Metrics enables OpenTelemetry metrics recording.
	Metrics bool `yaml:"metrics" json:"metrics"`

	// Tracing enables OpenTelemetry spans around dispatch.
	Tracing bool `yaml:"tracing" json:"tracing"`

	// FaultLog selects the callback-fault journal backend.
	FaultLog FaultLogConfig `yaml:"fault_log" json:"fault_log"`
}

// FaultLogConfig selects where callback faults are journaled.
type FaultLogConfig struct {
	// Backend is one of "none" (or empty), "memory", or "sqlite".
	Backend string `yaml:"backend" json:"backend"`

	// Path is the database file for the sqlite backend.
	Path string `yaml:"path" json:"path"`
}

// Default returns the configuration a zero-option bus uses.
func Default() Config {
	return Config{Name: "eventity"}
}

// Validate checks the configuration for values the bus cannot honor.
func (c Config) Validate() error {
	if c.QueueCapacity < 0 {
		return fmt.Errorf("config: queue_capacity must not be negative, got %d", c.QueueCapacity)
	}
	switch c.FaultLog.Backend {
	case "", FaultLogNone, FaultLogMemory:
	case FaultLogSQLite:
		if c.FaultLog.Path == "" {
			return errors.New("config: fault_log backend sqlite requires a path")
		}
	default:
		return fmt.Errorf("config: unknown fault_log backend %q", c.FaultLog.Backend)
	}
	return nil
}
