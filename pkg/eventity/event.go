package eventity

// Target names the entity an event concerns. Events carrying a Target take
// part in hierarchy propagation and in scoped listener matching; events
// without one reach global listeners only.
type Target struct {
	Entity EntityID
}

// PropagatedFrom links a derived event to the root event it was propagated
// from. The dispatch engine attaches it when bubbling an event up the target's
// ancestor chain; matching and callback arguments always resolve through it
// to the root event's attribute record.
type PropagatedFrom struct {
	Event EntityID
}
