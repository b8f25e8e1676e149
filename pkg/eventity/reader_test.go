package eventity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventity/eventity/pkg/eventity/world"
)

// collect drains an iterator into a slice.
func collect(it *Iter) []EntityID {
	var out []EntityID
	for {
		id, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, id)
	}
}

// TestReader_SeesOnlyEventsAfterCreation verifies NewReader starts at the
// current send count.
func TestReader_SeesOnlyEventsAfterCreation(t *testing.T) {
	w := world.New()
	q := NewQueue()

	before := q.Send(w, Ping{Seq: 1})
	r := q.NewReader()
	after := q.Send(w, Ping{Seq: 2})

	got := collect(r.Read(q))
	assert.Equal(t, []EntityID{after}, got)
	assert.NotContains(t, got, before)
}

// TestReader_FromStartSeesRetainedHistory verifies the from-start cursor
// yields everything still buffered, across both generations.
func TestReader_FromStartSeesRetainedHistory(t *testing.T) {
	w := world.New()
	q := NewQueue()

	e1 := q.Send(w, Ping{Seq: 1})
	q.Advance()
	e2 := q.Send(w, Ping{Seq: 2})

	r := q.NewReaderFromStart()
	assert.Equal(t, []EntityID{e1, e2}, collect(r.Read(q)))
}

// TestReader_ExactlyOnceInSendOrder verifies repeated reads across advances
// deliver every event exactly once, in send order.
func TestReader_ExactlyOnceInSendOrder(t *testing.T) {
	w := world.New()
	q := NewQueue()
	r := q.NewReader()

	var sent, got []EntityID
	read := func() {
		got = append(got, collect(r.Read(q))...)
	}

	sent = append(sent, q.Send(w, Ping{Seq: 1}), q.Send(w, Ping{Seq: 2}))
	read()
	q.Advance()
	sent = append(sent, q.Send(w, Ping{Seq: 3}))
	q.Advance()
	sent = append(sent, q.Send(w, Ping{Seq: 4}), q.Send(w, Ping{Seq: 5}))
	read()
	read() // nothing new: must yield nothing

	assert.Equal(t, sent, got)
}

// TestReader_IndependentCursors verifies two readers consume the same
// stream at their own pace without affecting each other.
func TestReader_IndependentCursors(t *testing.T) {
	w := world.New()
	q := NewQueue()

	r1 := q.NewReader()
	e1 := q.Send(w, Ping{Seq: 1})
	r2 := q.NewReader() // created later: must not see e1
	e2 := q.Send(w, Ping{Seq: 2})

	assert.Equal(t, []EntityID{e1, e2}, collect(r1.Read(q)))
	assert.Equal(t, []EntityID{e2}, collect(r2.Read(q)))

	// r1 consuming does not affect r2's remaining stream.
	e3 := q.Send(w, Ping{Seq: 3})
	assert.Equal(t, []EntityID{e3}, collect(r1.Read(q)))
	assert.Equal(t, []EntityID{e3}, collect(r2.Read(q)))
}

// TestReader_CountMatchesUnreadLen verifies bulk counting equals the
// counter-derived unread length at arbitrary cursor positions.
func TestReader_CountMatchesUnreadLen(t *testing.T) {
	w := world.New()
	q := NewQueue()

	partial := q.NewReaderFromStart()
	behind := q.NewReaderFromStart()

	for i := 0; i < 4; i++ {
		q.Send(w, Ping{Seq: i})
	}
	fresh := q.NewReader()
	// partial consumes two, leaving a mid-sequence position.
	it := partial.Read(q)
	it.Next()
	it.Next()

	q.Advance()
	q.Send(w, Ping{Seq: 4})
	q.Advance() // first four reclaimed; behind now predates retained history
	q.Send(w, Ping{Seq: 5})

	for _, tc := range []struct {
		name string
		r    *Reader
	}{
		{"fresh", fresh},
		{"partial", partial},
		{"behind", behind},
	} {
		t.Run(tc.name, func(t *testing.T) {
			want := tc.r.UnreadLen(q)
			assert.Equal(t, want, tc.r.Read(q).Count())
			assert.Equal(t, 0, tc.r.UnreadLen(q))
		})
	}
}

// TestReader_UnderflowClampsToOldestRetained verifies a cursor behind the
// retained history silently loses reclaimed events and resumes at the oldest
// retained one.
func TestReader_UnderflowClampsToOldestRetained(t *testing.T) {
	w := world.New()
	q := NewQueue()
	r := q.NewReaderFromStart()

	q.Send(w, Ping{Seq: 1})
	q.Send(w, Ping{Seq: 2})
	q.Advance()
	q.Advance() // 1 and 2 reclaimed, unread by r
	e3 := q.Send(w, Ping{Seq: 3})

	assert.Equal(t, 1, r.UnreadLen(q))
	assert.Equal(t, []EntityID{e3}, collect(r.Read(q)))
}

// TestIter_NthAdvancesExactly verifies bulk skip accounts for skipped items
// precisely: what follows is neither re-delivered nor dropped.
func TestIter_NthAdvancesExactly(t *testing.T) {
	w := world.New()
	q := NewQueue()
	r := q.NewReader()

	ids := make([]EntityID, 5)
	for i := range ids {
		ids[i] = q.Send(w, Ping{Seq: i})
	}

	it := r.Read(q)
	got, ok := it.Nth(2) // skips ids[0], ids[1]
	require.True(t, ok)
	assert.Equal(t, ids[2], got)

	// The next read resumes immediately after the consumed prefix.
	assert.Equal(t, []EntityID{ids[3], ids[4]}, collect(r.Read(q)))
}

// TestIter_NthPastEnd verifies overshooting consumes everything and reports
// failure.
func TestIter_NthPastEnd(t *testing.T) {
	w := world.New()
	q := NewQueue()
	r := q.NewReader()

	q.Send(w, Ping{Seq: 1})
	q.Send(w, Ping{Seq: 2})

	it := r.Read(q)
	_, ok := it.Nth(5)
	assert.False(t, ok)
	assert.Equal(t, 0, r.UnreadLen(q))

	_, ok = it.Nth(-1)
	assert.False(t, ok)
}

// TestIter_Last verifies Last consumes the whole remainder and returns the
// final event.
func TestIter_Last(t *testing.T) {
	w := world.New()
	q := NewQueue()
	r := q.NewReader()

	q.Send(w, Ping{Seq: 1})
	q.Advance() // straddle the generation boundary
	last := q.Send(w, Ping{Seq: 2})

	got, ok := r.Read(q).Last()
	require.True(t, ok)
	assert.Equal(t, last, got)
	assert.Equal(t, 0, r.UnreadLen(q))

	_, ok = r.Read(q).Last()
	assert.False(t, ok)
}

// TestIter_CountSpansGenerations verifies counting covers the older and
// newer generation suffixes together.
func TestIter_CountSpansGenerations(t *testing.T) {
	w := world.New()
	q := NewQueue()
	r := q.NewReaderFromStart()

	q.Send(w, Ping{Seq: 1})
	q.Advance()
	q.Send(w, Ping{Seq: 2})
	q.Send(w, Ping{Seq: 3})

	assert.Equal(t, 3, r.Read(q).Count())
}

// TestIter_AllBreakLeavesCursor verifies abandoning the range keeps later
// events unread.
func TestIter_AllBreakLeavesCursor(t *testing.T) {
	w := world.New()
	q := NewQueue()
	r := q.NewReader()

	e1 := q.Send(w, Ping{Seq: 1})
	e2 := q.Send(w, Ping{Seq: 2})

	for id := range r.Read(q).All() {
		assert.Equal(t, e1, id)
		break
	}

	assert.Equal(t, []EntityID{e2}, collect(r.Read(q)))
}

// TestReadAs_SkipsEventsWithoutPayload verifies the shape-filtered read
// consumes mismatching events silently.
func TestReadAs_SkipsEventsWithoutPayload(t *testing.T) {
	b := New()
	r := b.NewReader()

	b.Send(Attack{Amount: 1})
	b.Send(Heal{Amount: 9})
	b.Send(Attack{Amount: 2})

	var amounts []int
	for _, atk := range ReadAs[Attack](b, r) {
		amounts = append(amounts, atk.Amount)
	}

	assert.Equal(t, []int{1, 2}, amounts)
	// The mismatching Heal event was consumed too, not left unread.
	assert.Equal(t, 0, r.UnreadLen(b.Queue()))
}

// TestReadAs_PointerMutatesEventRecord verifies the yielded pointer aliases
// the stored payload.
func TestReadAs_PointerMutatesEventRecord(t *testing.T) {
	b := New()
	r := b.NewReader()

	id := b.Send(Attack{Amount: 5})
	for _, atk := range ReadAs[Attack](b, r) {
		atk.Amount = 50
	}

	stored, ok := Get[Attack](b.Store(), id)
	require.True(t, ok)
	assert.Equal(t, 50, stored.Amount)
}
