package eventity

// propagate bubbles freshly queued root events up the hierarchy: for each
// unread event carrying a Target, a derivative event tagged with the
// ancestor's Target and a PropagatedFrom link is queued for every ancestor
// of the target, nearest first. The walk stops at the first entity without a
// live parent link, so a despawned ancestor breaks the chain there.
// Derivatives themselves are never re-propagated. Returns the number of
// derivatives created.
//
// The hierarchy is assumed acyclic; a cycle makes the walk non-terminating.
func (b *Bus) propagate() int {
	created := 0
	it := b.propagateReader.Read(b.queue)
	for {
		id, ok := it.Next()
		if !ok {
			break
		}
		if !b.store.Exists(id) {
			continue
		}
		if Has[PropagatedFrom](b.store, id) {
			continue
		}
		tgt, ok := Get[Target](b.store, id)
		if !ok {
			continue
		}
		cur := tgt.Entity
		for {
			parent, ok := b.store.Parent(cur)
			if !ok {
				break
			}
			b.queue.Send(b.store, Target{Entity: parent}, PropagatedFrom{Event: id})
			created++
			cur = parent
		}
	}
	return created
}
