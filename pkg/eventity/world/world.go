// Package world provides the default entity/attribute store backing an event
// bus: generational entity identifiers, runtime-typed attribute tables, and a
// parent/child hierarchy.
//
// A World is not safe for concurrent use. The bus assumes a single-writer
// cooperative model; see the eventity package documentation.
package world

import (
	"fmt"
	"reflect"
)

// EntityID is an opaque, generation-stable handle to an entity. The zero
// value (Nil) never refers to a live entity. EntityIDs are comparable and
// support no arithmetic; a destroyed entity's handle never aliases a later
// one because the slot generation is bumped on despawn.
type EntityID struct {
	index      uint32
	generation uint32
}

// Nil is the zero EntityID.
var Nil = EntityID{}

// IsNil reports whether id is the zero handle.
func (id EntityID) IsNil() bool { return id == Nil }

// String formats the id as "index v generation", e.g. "3v1".
func (id EntityID) String() string {
	return fmt.Sprintf("%dv%d", id.index, id.generation)
}

// slot tracks the liveness and current generation of one entity index.
type slot struct {
	generation uint32
	live       bool
}

// table stores one attribute type for all entities that carry it. Values are
// boxed pointers so lookups can hand out a stable *T for in-place mutation.
// Iteration order is insertion order; removal swap-deletes.
type table struct {
	sparse map[EntityID]int
	dense  []EntityID
	items  []any
}

func newTable() *table {
	return &table{sparse: make(map[EntityID]int)}
}

func (t *table) insert(id EntityID, boxed any) {
	if i, ok := t.sparse[id]; ok {
		t.items[i] = boxed
		return
	}
	t.sparse[id] = len(t.dense)
	t.dense = append(t.dense, id)
	t.items = append(t.items, boxed)
}

func (t *table) get(id EntityID) (any, bool) {
	i, ok := t.sparse[id]
	if !ok {
		return nil, false
	}
	return t.items[i], true
}

func (t *table) remove(id EntityID) (any, bool) {
	i, ok := t.sparse[id]
	if !ok {
		return nil, false
	}
	boxed := t.items[i]
	last := len(t.dense) - 1
	if i != last {
		t.dense[i] = t.dense[last]
		t.items[i] = t.items[last]
		t.sparse[t.dense[i]] = i
	}
	t.dense = t.dense[:last]
	t.items = t.items[:last]
	delete(t.sparse, id)
	return boxed, true
}

// World is an in-memory entity/attribute store with a hierarchy.
type World struct {
	slots    []slot
	free     []uint32
	count    int
	tables   map[reflect.Type]*table
	parents  map[EntityID]EntityID
	children map[EntityID][]EntityID
}

// New creates an empty World.
func New() *World {
	return &World{
		tables:   make(map[reflect.Type]*table),
		parents:  make(map[EntityID]EntityID),
		children: make(map[EntityID][]EntityID),
	}
}

// Spawn creates a new live entity and returns its handle.
func (w *World) Spawn() EntityID {
	var idx uint32
	if n := len(w.free); n > 0 {
		idx = w.free[n-1]
		w.free = w.free[:n-1]
		w.slots[idx].live = true
	} else {
		w.slots = append(w.slots, slot{generation: 1, live: true})
		idx = uint32(len(w.slots) - 1)
	}
	w.count++
	return EntityID{index: idx, generation: w.slots[idx].generation}
}

// SpawnChild creates a new entity parented to parent.
func (w *World) SpawnChild(parent EntityID) EntityID {
	id := w.Spawn()
	w.SetParent(id, parent)
	return id
}

// Despawn destroys the entity: all attributes are dropped, the entity is
// detached from its parent, and its children are orphaned (their parent
// links removed). Returns false if id is not live. The slot generation is
// bumped so stale handles never resolve again.
func (w *World) Despawn(id EntityID) bool {
	if !w.Exists(id) {
		return false
	}
	w.RemoveParent(id)
	for _, c := range w.children[id] {
		delete(w.parents, c)
	}
	delete(w.children, id)
	for _, t := range w.tables {
		t.remove(id)
	}
	s := &w.slots[id.index]
	s.live = false
	s.generation++
	w.free = append(w.free, id.index)
	w.count--
	return true
}

// DespawnRecursive destroys the entity and all of its descendants.
func (w *World) DespawnRecursive(id EntityID) bool {
	if !w.Exists(id) {
		return false
	}
	for _, c := range w.Children(id) {
		w.DespawnRecursive(c)
	}
	return w.Despawn(id)
}

// Exists reports whether id refers to a live entity.
func (w *World) Exists(id EntityID) bool {
	if int(id.index) >= len(w.slots) {
		return false
	}
	s := w.slots[id.index]
	return s.live && s.generation == id.generation
}

// Count returns the number of live entities.
func (w *World) Count() int { return w.count }

// InsertValue attaches v to the entity as an attribute keyed by v's dynamic
// type, replacing any existing attribute of that type. Payloads are stored
// by value; typed lookups return a pointer into the store for in-place
// mutation. Returns false if the entity is not live or v is nil.
func (w *World) InsertValue(id EntityID, v any) bool {
	if v == nil || !w.Exists(id) {
		return false
	}
	rt := reflect.TypeOf(v)
	pv := reflect.New(rt)
	pv.Elem().Set(reflect.ValueOf(v))
	tbl, ok := w.tables[rt]
	if !ok {
		tbl = newTable()
		w.tables[rt] = tbl
	}
	tbl.insert(id, pv.Interface())
	return true
}

// GetType returns the boxed *T attribute of dynamic type t, if present.
func (w *World) GetType(id EntityID, t reflect.Type) (any, bool) {
	if !w.Exists(id) {
		return nil, false
	}
	tbl, ok := w.tables[t]
	if !ok {
		return nil, false
	}
	return tbl.get(id)
}

// RemoveType detaches and returns the boxed *T attribute of type t.
func (w *World) RemoveType(id EntityID, t reflect.Type) (any, bool) {
	if !w.Exists(id) {
		return nil, false
	}
	tbl, ok := w.tables[t]
	if !ok {
		return nil, false
	}
	return tbl.remove(id)
}

// HasType reports whether the entity carries an attribute of type t.
func (w *World) HasType(id EntityID, t reflect.Type) bool {
	if !w.Exists(id) {
		return false
	}
	tbl, ok := w.tables[t]
	if !ok {
		return false
	}
	_, ok = tbl.get(id)
	return ok
}

// EachOf visits every entity carrying an attribute of type t, in a
// deterministic order (insertion order until a removal swap-deletes), with
// the boxed attribute value. The visit stops early if fn returns false. The
// id list is snapshotted up front, so fn may insert or remove attributes of
// type t without corrupting the walk; entities removed mid-walk are skipped
// and entities added mid-walk are not visited.
func (w *World) EachOf(t reflect.Type, fn func(EntityID, any) bool) {
	tbl, ok := w.tables[t]
	if !ok {
		return
	}
	ids := make([]EntityID, len(tbl.dense))
	copy(ids, tbl.dense)
	for _, id := range ids {
		if boxed, ok := tbl.get(id); ok {
			if !fn(id, boxed) {
				return
			}
		}
	}
}
