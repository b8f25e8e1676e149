// Package faultlog provides persistent journaling of isolated callback
// faults. A dispatch cycle never aborts on a listener failure; instead each
// failure is reported to the bus's configured sinks, and the fault journal
// is the durable one of those sinks.
package faultlog

import (
	"errors"
	"time"
)

// Record captures one isolated callback failure. Entity identifiers are
// stored in their string form so records survive the entities they name.
type Record struct {
	ID       string    // unique fault identifier
	Bus      string    // bus the fault occurred on
	Cycle    string    // dispatch cycle the fault occurred in
	Callback string    // listener name
	Event    string    // root event entity
	Owner    string    // listener registration entity
	Target   string    // propagation target, or the nil entity if untargeted
	Message  string    // error text
	Stack    string    // goroutine stack, empty unless the callback panicked
	At       time.Time // UTC timestamp
}

// Store journals callback faults.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append adds a fault record to the journal.
	Append(rec Record) error

	// List returns all faults journaled for a bus, oldest first.
	// Returns empty slice (not error) if the bus has no faults.
	List(busID string) ([]Record, error)

	// Purge removes all faults journaled for a bus.
	// Returns nil if the bus has no faults.
	Purge(busID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for fault journal operations.
var (
	// ErrStoreClosed indicates the journal has been closed.
	ErrStoreClosed = errors.New("fault journal closed")
)
