package eventity

import "iter"

// Reader is an independent cursor over a Queue. Each reader tracks the send
// count of the last event it consumed; reading yields the unread suffix of
// both generations in send order. Readers never observe an event twice and,
// as long as the host advances the queue no more than once per cycle, never
// miss an event sent after their creation.
type Reader struct {
	lastSeen int
}

// NewReader returns a cursor positioned at the current send count: it
// observes only events sent after its creation.
func (q *Queue) NewReader() *Reader {
	return &Reader{lastSeen: q.sendCount}
}

// NewReaderFromStart returns a cursor positioned before all retained history.
// Its first read yields every event still retained, then behaves like any
// other reader.
func (q *Queue) NewReaderFromStart() *Reader {
	return &Reader{}
}

// UnreadLen computes how many events r has not yet consumed, from counters
// alone: min(sendCount-lastSeen, retained). Iter.Count over a fresh Read
// must always equal this.
func (r *Reader) UnreadLen(q *Queue) int {
	n := q.sendCount - r.lastSeen
	if total := q.Len(); n > total {
		n = total
	}
	if n < 0 {
		n = 0
	}
	return n
}

// Read returns an iterator over the events this cursor has not consumed, in
// send order: the unread suffix of the older generation, then of the newer.
// A cursor that has fallen behind the retained history is clamped up to the
// oldest retained event; the already-reclaimed events are silently lost,
// never an error. Events sent after Read is called are not observed by the
// returned iterator; they belong to the next Read.
func (r *Reader) Read(q *Queue) *Iter {
	aSuf := unreadSuffix(q.a, r.lastSeen)
	bSuf := unreadSuffix(q.b, r.lastSeen)
	// Catch up a cursor that predates the retained history.
	r.lastSeen = q.sendCount - len(aSuf) - len(bSuf)
	return &Iter{r: r, a: aSuf, b: bSuf}
}

func unreadSuffix(s sequence, lastSeen int) []EntityID {
	i := lastSeen - s.startCount
	if i < 0 {
		i = 0
	}
	if i > len(s.ids) {
		i = len(s.ids)
	}
	return s.ids[i:]
}

// Iter yields unread events from one Read call. Every item yielded or
// skipped advances the owning Reader's cursor by exactly one: undercounting
// would re-deliver events, overcounting would silently drop them, so the
// bulk operations (Count, Nth, Last) account for skipped items precisely
// rather than visiting them.
type Iter struct {
	r    *Reader
	a, b []EntityID
	pos  int
}

// Len returns the number of events remaining without consuming them.
func (it *Iter) Len() int {
	return len(it.a) + len(it.b) - it.pos
}

// Next returns the next unread event id.
func (it *Iter) Next() (EntityID, bool) {
	if it.pos >= len(it.a)+len(it.b) {
		return Nil, false
	}
	id := it.at(it.pos)
	it.pos++
	it.r.lastSeen++
	return id, true
}

// Count consumes and counts all remaining events.
func (it *Iter) Count() int {
	n := it.Len()
	it.pos += n
	it.r.lastSeen += n
	return n
}

// Nth skips n events and returns the one after them. If fewer than n+1
// remain, everything remaining is consumed and ok is false.
func (it *Iter) Nth(n int) (EntityID, bool) {
	if n < 0 {
		return Nil, false
	}
	remaining := it.Len()
	if n >= remaining {
		it.pos += remaining
		it.r.lastSeen += remaining
		return Nil, false
	}
	it.pos += n
	it.r.lastSeen += n
	return it.Next()
}

// Last consumes all remaining events and returns the final one.
func (it *Iter) Last() (EntityID, bool) {
	remaining := it.Len()
	if remaining == 0 {
		return Nil, false
	}
	id := it.at(it.pos + remaining - 1)
	it.pos += remaining
	it.r.lastSeen += remaining
	return id, true
}

// All adapts the iterator for range-over-func. Breaking out of the range
// leaves the cursor at the last yielded event, like abandoning Next.
func (it *Iter) All() iter.Seq[EntityID] {
	return func(yield func(EntityID) bool) {
		for {
			id, ok := it.Next()
			if !ok {
				return
			}
			if !yield(id) {
				return
			}
		}
	}
}

func (it *Iter) at(i int) EntityID {
	if i < len(it.a) {
		return it.a[i]
	}
	return it.b[i-len(it.a)]
}

// ReadAs reads the cursor's unread events, yielding only those that carry a
// T payload, with a pointer to it. Events without one are consumed and
// silently skipped; a shape-filtered read never errors.
func ReadAs[T any](b *Bus, r *Reader) iter.Seq2[EntityID, *T] {
	it := r.Read(b.queue)
	return func(yield func(EntityID, *T) bool) {
		for {
			id, ok := it.Next()
			if !ok {
				return
			}
			p, ok := Get[T](b.store, id)
			if !ok {
				continue
			}
			if !yield(id, p) {
				return
			}
		}
	}
}
