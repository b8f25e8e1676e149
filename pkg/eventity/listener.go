package eventity

import (
	"fmt"
	"reflect"
	"runtime"
)

// Handler is a listener callback. It runs with full mutable access to the
// store through the Invocation and may send events, spawn or despawn
// entities, and register or remove listeners, including destroying the
// event being handled or its own registration. A returned error is reported
// as a fault and does not stop the dispatch pass.
type Handler interface {
	Handle(inv Invocation) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(inv Invocation) error

// Handle calls f.
func (f HandlerFunc) Handle(inv Invocation) error {
	return f(inv)
}

// Initializer is implemented by handlers that need one-time setup before
// their first invocation. Init runs when the registration transitions from
// pending to ready; if it fails the registration stays pending, the failure
// is reported as a fault, and Init is retried on the next matching event.
type Initializer interface {
	Init(s Store) error
}

type callbackState uint8

const (
	statePending callbackState = iota
	stateReady
)

// listenerIdent is the matcher record attached to a registration entity.
// The owner recorded at registration time, not the live hierarchy link,
// decides scoped matching: a despawned owner's listeners stop matching
// instead of silently becoming global.
type listenerIdent struct {
	matcher Matcher
	owner   EntityID
	scoped  bool
}

// callbackCell owns the handler for one registration. The dispatch engine
// removes the cell from the registration entity for the duration of the
// handler's own execution, so a callback can never observe or re-enter
// itself, and reinserts it afterward only if the registration still exists.
type callbackCell struct {
	state   callbackState
	handler Handler
	name    string
}

var (
	identType = reflect.TypeFor[listenerIdent]()
	cellType  = reflect.TypeFor[callbackCell]()
)

// ListenerOption configures one listener registration.
type ListenerOption func(*listenerConfig)

type listenerConfig struct {
	name string
}

// WithListenerName overrides the name used in logs and fault reports.
// Defaults to the handler's function or type name.
func WithListenerName(name string) ListenerOption {
	return func(c *listenerConfig) {
		if name != "" {
			c.name = name
		}
	}
}

// handlerName derives a reportable name for a handler: the function name for
// HandlerFunc values, the dynamic type otherwise.
func handlerName(h Handler) string {
	if f, ok := h.(HandlerFunc); ok {
		if fn := runtime.FuncForPC(reflect.ValueOf(f).Pointer()); fn != nil {
			return fn.Name()
		}
	}
	return fmt.Sprintf("%T", h)
}
