package eventity

import "reflect"

// AttrSet is a read-only view of one entity's current attribute set, as
// presented to matchers during dispatch.
type AttrSet struct {
	store Store
	id    EntityID
}

// Has reports whether the viewed entity carries an attribute of type t.
func (a AttrSet) Has(t reflect.Type) bool {
	return a.store.HasType(a.id, t)
}

// HasAttr reports whether the viewed entity carries an attribute of type T.
func HasAttr[T any](a AttrSet) bool {
	return a.Has(reflect.TypeFor[T]())
}

// Matcher decides whether a listener applies to an event, given the event's
// current attribute set. Matchers run on every candidate event during
// dispatch and must not mutate the store.
type Matcher interface {
	Matches(AttrSet) bool
}

// Attr matches events carrying a payload of type T.
func Attr[T any]() Matcher {
	return typeMatcher{t: reflect.TypeFor[T]()}
}

type typeMatcher struct {
	t reflect.Type
}

func (m typeMatcher) Matches(a AttrSet) bool {
	return a.Has(m.t)
}

// AllOf matches events accepted by every given matcher. With no matchers it
// matches everything.
func AllOf(ms ...Matcher) Matcher {
	return allOf(ms)
}

type allOf []Matcher

func (m allOf) Matches(a AttrSet) bool {
	for _, sub := range m {
		if !sub.Matches(a) {
			return false
		}
	}
	return true
}

// AnyOf matches events accepted by at least one given matcher. With no
// matchers it matches nothing.
func AnyOf(ms ...Matcher) Matcher {
	return anyOf(ms)
}

type anyOf []Matcher

func (m anyOf) Matches(a AttrSet) bool {
	for _, sub := range m {
		if sub.Matches(a) {
			return true
		}
	}
	return false
}
