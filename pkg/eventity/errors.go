package eventity

import (
	"fmt"
	"time"
)

// CallbackError wraps an error returned by a listener callback or its
// initializer. Callback failures are isolated: they are reported through the
// fault path and never abort the dispatch pass.
type CallbackError struct {
	Callback string   // listener name
	Op       string   // "init" or "handle"
	Event    EntityID // root event
	Owner    EntityID // registration entity owning the callback
	Target   EntityID // resolved target; Nil if the event was untargeted
	Err      error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("callback %s: %s failed for event %s: %v", e.Callback, e.Op, e.Event, e.Err)
}

func (e *CallbackError) Unwrap() error {
	return e.Err
}

// PanicError captures a panic recovered from a listener callback, with the
// stack at the point of panic. Like CallbackError it is reported, not
// re-raised: one faulty listener cannot take down the dispatch engine.
type PanicError struct {
	Callback string
	Event    EntityID
	Owner    EntityID
	Target   EntityID
	Value    any    // the recovered panic value
	Stack    string // stack trace captured at recovery
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("callback %s panicked for event %s: %v", e.Callback, e.Event, e.Value)
}

// Fault describes one isolated callback failure, as delivered to the fault
// handler and the fault journal. Err is a *CallbackError or *PanicError.
type Fault struct {
	ID       string // unique fault id
	Bus      string // bus instance id
	Cycle    string // dispatch cycle id
	Callback string
	Event    EntityID
	Owner    EntityID
	Target   EntityID
	Targeted bool
	Err      error
	At       time.Time
}
