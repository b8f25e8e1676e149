package eventity

import (
	"reflect"

	"github.com/eventity/eventity/pkg/eventity/world"
)

// EntityID is the handle type used throughout the bus. It is the world
// package's identifier; aliased here so callers rarely need to import world
// directly.
type EntityID = world.EntityID

// Nil is the zero EntityID. It never refers to a live entity.
var Nil = world.Nil

// Store is the entity/attribute storage contract the bus is layered on.
// *world.World satisfies it; any store with equivalent semantics may be
// substituted via WithStore.
//
// Attributes are keyed by their dynamic Go type. InsertValue stores the
// payload by value; GetType and RemoveType return the boxed pointer (*T as
// any) so callers can mutate in place. EachOf must visit entities in a
// deterministic order and tolerate attribute insertion or removal during the
// walk.
//
// The hierarchy is assumed acyclic. A cyclic parent chain makes event
// propagation non-terminating; the bus does not check for cycles.
type Store interface {
	// Spawn creates a live entity.
	Spawn() EntityID

	// Despawn destroys the entity and all of its attributes, detaching it
	// from the hierarchy. Returns false if the entity is not live.
	Despawn(id EntityID) bool

	// Exists reports liveness. Handles of destroyed entities must never
	// resolve again, even if storage slots are reused.
	Exists(id EntityID) bool

	// InsertValue attaches v keyed by its dynamic type, replacing any
	// existing attribute of that type.
	InsertValue(id EntityID, v any) bool

	// GetType returns the boxed attribute of type t, if present.
	GetType(id EntityID, t reflect.Type) (any, bool)

	// RemoveType detaches and returns the boxed attribute of type t.
	RemoveType(id EntityID, t reflect.Type) (any, bool)

	// HasType reports whether the entity carries an attribute of type t.
	HasType(id EntityID, t reflect.Type) bool

	// EachOf visits every entity carrying an attribute of type t with its
	// boxed value, stopping early if fn returns false.
	EachOf(t reflect.Type, fn func(EntityID, any) bool)

	// Parent returns the entity's hierarchy parent, if it has a live one.
	Parent(id EntityID) (EntityID, bool)

	// SetParent links child under parent.
	SetParent(child, parent EntityID) bool
}

// Get returns a pointer to the entity's attribute of type T for reading or
// in-place mutation.
func Get[T any](s Store, id EntityID) (*T, bool) {
	v, ok := s.GetType(id, reflect.TypeFor[T]())
	if !ok {
		return nil, false
	}
	p, ok := v.(*T)
	return p, ok
}

// Insert attaches v to the entity, replacing any existing T attribute.
func Insert[T any](s Store, id EntityID, v T) bool {
	return s.InsertValue(id, v)
}

// Remove detaches the entity's attribute of type T and returns its value.
func Remove[T any](s Store, id EntityID) (T, bool) {
	var zero T
	v, ok := s.RemoveType(id, reflect.TypeFor[T]())
	if !ok {
		return zero, false
	}
	p, ok := v.(*T)
	if !ok {
		return zero, false
	}
	return *p, true
}

// Has reports whether the entity carries an attribute of type T.
func Has[T any](s Store, id EntityID) bool {
	return s.HasType(id, reflect.TypeFor[T]())
}
