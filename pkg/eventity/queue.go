package eventity

// sequence is one generation of queued event entities. startCount is the
// send-counter value at the moment this sequence last became the newer
// buffer; a.startCount+len(a.ids) == b.startCount holds after every public
// queue operation.
type sequence struct {
	ids        []EntityID
	startCount int
}

// Queue is the double-buffered event queue. Sent events land in the newer
// sequence; Advance swaps generations and hands back the events that have
// survived one full cycle, bounding retained memory to at most two cycles'
// worth. The queue tracks entity ids only; creating payload-carrying event
// entities happens through the Store passed to Send, and destroying reclaimed
// ones is the caller's job (Bus.Advance does both).
//
// A Queue is not safe for concurrent use.
type Queue struct {
	a, b      sequence // a is the older generation, b the newer
	sendCount int
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Send creates an event entity in s, attaches each payload by value, and
// appends the entity to the newer generation. Never fails; O(1) amortized.
func (q *Queue) Send(s Store, payloads ...any) EntityID {
	id := s.Spawn()
	for _, p := range payloads {
		s.InsertValue(id, p)
	}
	q.b.ids = append(q.b.ids, id)
	q.sendCount++
	return id
}

// SendBatch sends one event per payload bundle and returns the created ids in
// send order.
func (q *Queue) SendBatch(s Store, bundles ...[]any) []EntityID {
	if len(bundles) == 0 {
		return nil
	}
	ids := make([]EntityID, 0, len(bundles))
	for _, bundle := range bundles {
		ids = append(ids, q.Send(s, bundle...))
	}
	return ids
}

// Advance swaps generations: the previous newer sequence becomes the older
// one and a fresh empty sequence becomes newer. The returned ids are the
// contents of the old older sequence, events sent two cycles ago, which
// every reader alive when they were sent has had at least one full cycle to
// observe. Callers must destroy them in the store; the queue hands each
// event out exactly once.
func (q *Queue) Advance() []EntityID {
	old := q.a.ids
	q.a = q.b
	q.b = sequence{startCount: q.sendCount}
	return old
}

// Drain empties both generations immediately and returns everything that was
// queued, in send order. Both start counts reset to the current send count so
// future cursors see no phantom unread entries. Intended for shutdown/reset.
func (q *Queue) Drain() []EntityID {
	out := make([]EntityID, 0, q.Len())
	out = append(out, q.a.ids...)
	out = append(out, q.b.ids...)
	q.a = sequence{startCount: q.sendCount}
	q.b = sequence{startCount: q.sendCount}
	return out
}

// Len returns the number of retained events across both generations.
func (q *Queue) Len() int {
	return len(q.a.ids) + len(q.b.ids)
}

// IsEmpty reports whether no events are retained.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// SendCount returns the total number of events ever sent. It only increases.
func (q *Queue) SendCount() int {
	return q.sendCount
}

// OldestCount returns the send count at which the oldest retained event was
// sent. Cursors behind this value have missed reclaimed events and catch up
// to it on their next read.
func (q *Queue) OldestCount() int {
	return q.a.startCount
}
