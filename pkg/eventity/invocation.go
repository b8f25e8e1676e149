package eventity

// Invocation is the dispatch context for a single callback run. It is an
// explicit value constructed immediately before the handler executes and
// discarded after, never ambient or global state, so a handler that
// triggers a nested dispatch cannot corrupt an outer invocation.
//
// Event always resolves to the root event, whichever queued entity (root or
// propagated derivative) actually triggered the run: a handler bound to an
// ancestor sees the same event record a handler at the original target
// would have seen.
type Invocation struct {
	store      Store
	bus        *Bus
	event      EntityID
	propagated EntityID
	target     EntityID
	targeted   bool
}

// Store returns the entity/attribute store, with full mutable access.
func (inv Invocation) Store() Store { return inv.store }

// Bus returns the bus dispatching this invocation, for sending follow-up
// events or registering listeners from inside a handler.
func (inv Invocation) Bus() *Bus { return inv.bus }

// Event returns the root event's id: the record carrying the payloads, and
// the id used for predicate matching.
func (inv Invocation) Event() EntityID { return inv.event }

// Propagated returns the derivative event entity that triggered this run,
// when the event reached the handler by bubbling up the hierarchy. The
// derivative is reclaimed independently of the root.
func (inv Invocation) Propagated() (EntityID, bool) {
	return inv.propagated, inv.propagated != Nil
}

// IsPropagated reports whether this run was triggered by a propagated
// derivative rather than the root event itself.
func (inv Invocation) IsPropagated() bool { return inv.propagated != Nil }

// Target returns the resolved target for this run: the root's own target for
// a root event, the ancestor for a propagated one. ok is false for
// untargeted events.
func (inv Invocation) Target() (EntityID, bool) {
	return inv.target, inv.targeted
}

// Payload returns a pointer to the root event's payload of type T for
// reading or in-place mutation.
func Payload[T any](inv Invocation) (*T, bool) {
	return Get[T](inv.store, inv.event)
}
