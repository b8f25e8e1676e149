package world

// SetParent makes child a hierarchy child of parent, replacing any existing
// parent link. Returns false if either entity is not live or child == parent.
// Cycles are not detected; an acyclic hierarchy is a caller invariant.
func (w *World) SetParent(child, parent EntityID) bool {
	if child == parent || !w.Exists(child) || !w.Exists(parent) {
		return false
	}
	w.RemoveParent(child)
	w.parents[child] = parent
	w.children[parent] = append(w.children[parent], child)
	return true
}

// RemoveParent detaches child from its parent, if any.
func (w *World) RemoveParent(child EntityID) {
	p, ok := w.parents[child]
	if !ok {
		return
	}
	delete(w.parents, child)
	siblings := w.children[p]
	for i, c := range siblings {
		if c == child {
			w.children[p] = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	if len(w.children[p]) == 0 {
		delete(w.children, p)
	}
}

// Parent returns the entity's parent. Despawn removes links in both
// directions, so a returned parent is always live.
func (w *World) Parent(id EntityID) (EntityID, bool) {
	p, ok := w.parents[id]
	if !ok {
		return Nil, false
	}
	return p, true
}

// Children returns a copy of the entity's direct children, in attach order.
func (w *World) Children(id EntityID) []EntityID {
	cs := w.children[id]
	if len(cs) == 0 {
		return nil
	}
	out := make([]EntityID, len(cs))
	copy(out, cs)
	return out
}
