package eventity

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/eventity/eventity/pkg/eventity/faultlog"
	"github.com/eventity/eventity/pkg/eventity/observability"
	"github.com/eventity/eventity/pkg/eventity/world"
)

// Bus ties the event queue, the store, and the dispatch engine together
// behind one facade. A Bus is owned by a single goroutine: the host calls
// Dispatch once per cycle to run listeners to a fixed point and Advance once
// per cycle to reclaim events that have survived a full cycle.
//
// Reentrancy, not parallelism, is the supported concurrency model: handlers
// run on the dispatching goroutine and may freely send events, mutate the
// store, and register or remove listeners, including their own.
type Bus struct {
	id   string
	name string

	store Store
	queue *Queue

	propagateReader *Reader
	dispatchReader  *Reader

	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	tracingEnabled bool

	faultStore   faultlog.Store
	faultHandler func(Fault)
}

// New creates a Bus. With no options it uses a fresh world.World store, a
// silent logger, and no-op metrics and tracing.
func New(opts ...Option) *Bus {
	cfg := defaultBusConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	store := cfg.store
	if store == nil {
		store = world.New()
	}

	q := NewQueue()
	if cfg.capacity > 0 {
		q.a.ids = make([]EntityID, 0, cfg.capacity)
		q.b.ids = make([]EntityID, 0, cfg.capacity)
	}

	metrics := observability.MetricsRecorder(observability.NoopMetrics{})
	if cfg.metricsEnabled {
		metrics = observability.NewMetricsRecorder()
	}
	spans := observability.SpanManager(observability.NoopSpanManager{})
	if cfg.tracingEnabled {
		spans = observability.NewSpanManager()
	}

	return &Bus{
		id:              uuid.New().String(),
		name:            cfg.name,
		store:           store,
		queue:           q,
		propagateReader: q.NewReaderFromStart(),
		dispatchReader:  q.NewReaderFromStart(),
		logger:          cfg.logger,
		metrics:         metrics,
		spans:           spans,
		tracingEnabled:  cfg.tracingEnabled,
		faultStore:      cfg.faultStore,
		faultHandler:    cfg.faultHandler,
	}
}

// ID returns the bus instance id, unique per New call.
func (b *Bus) ID() string { return b.id }

// Name returns the configured bus name used in logs and spans.
func (b *Bus) Name() string { return b.name }

// Store returns the underlying entity/attribute store.
func (b *Bus) Store() Store { return b.store }

// Queue returns the underlying event queue, for callers managing their own
// cursors.
func (b *Bus) Queue() *Queue { return b.queue }

// FaultStore returns the configured fault journal, or nil. Callers that built
// the bus through FromConfig close the journal through this accessor.
func (b *Bus) FaultStore() faultlog.Store { return b.faultStore }

// Send queues one event carrying the given payloads and returns its entity.
func (b *Bus) Send(payloads ...any) EntityID {
	id := b.queue.Send(b.store, payloads...)
	b.metrics.RecordSend(context.Background(), 1)
	return id
}

// SendTo queues one event targeted at the given entity. Equivalent to Send
// with a leading Target payload.
func (b *Bus) SendTo(target EntityID, payloads ...any) EntityID {
	bundle := make([]any, 0, len(payloads)+1)
	bundle = append(bundle, Target{Entity: target})
	bundle = append(bundle, payloads...)
	return b.Send(bundle...)
}

// SendBatch queues one event per payload bundle and returns the created
// entities in send order.
func (b *Bus) SendBatch(bundles ...[]any) []EntityID {
	ids := b.queue.SendBatch(b.store, bundles...)
	if len(ids) > 0 {
		b.metrics.RecordSend(context.Background(), len(ids))
	}
	return ids
}

// Advance rotates the queue's generations and destroys the event entities
// that have survived one full cycle, returning how many were destroyed.
// Events a listener already despawned explicitly are skipped; each event is
// destroyed at most once. The host scheduler must call Advance exactly once
// per retention cycle, unconditionally.
func (b *Bus) Advance() int {
	old := b.queue.Advance()
	n := 0
	for _, id := range old {
		if b.store.Despawn(id) {
			n++
		}
	}
	b.metrics.RecordReclaimed(context.Background(), n)
	observability.LogAdvance(b.logger, b.name, len(old), n)
	return n
}

// Drain empties the queue immediately, destroying every retained event.
// Intended for shutdown or reset; readers see no phantom unread entries
// afterward.
func (b *Bus) Drain() int {
	n := 0
	for _, id := range b.queue.Drain() {
		if b.store.Despawn(id) {
			n++
		}
	}
	return n
}

// Len returns the number of events currently retained by the queue.
func (b *Bus) Len() int { return b.queue.Len() }

// IsEmpty reports whether the queue retains no events.
func (b *Bus) IsEmpty() bool { return b.queue.IsEmpty() }

// NewReader returns a cursor observing events sent after its creation.
func (b *Bus) NewReader() *Reader { return b.queue.NewReader() }

// NewReaderFromStart returns a cursor that first observes all retained
// history.
func (b *Bus) NewReaderFromStart() *Reader { return b.queue.NewReaderFromStart() }

// Read returns an iterator over the cursor's unread events.
func (b *Bus) Read(r *Reader) *Iter { return r.Read(b.queue) }

// AddListener registers a global listener: h runs for every event accepted
// by m, regardless of target. Returns the registration entity, which can be
// passed to RemoveListener. Panics if m or h is nil.
func (b *Bus) AddListener(m Matcher, h Handler, opts ...ListenerOption) EntityID {
	return b.addListener(Nil, false, m, h, opts)
}

// AddEntityListener registers a listener scoped to owner: h runs only for
// events targeted at owner (directly or by propagation from a descendant).
// The matcher is combined with a Target requirement, and the registration
// entity is spawned as a hierarchy child of owner so recursive despawn of
// the owner removes it. Panics if owner is not live or m or h is nil.
func (b *Bus) AddEntityListener(owner EntityID, m Matcher, h Handler, opts ...ListenerOption) EntityID {
	if !b.store.Exists(owner) {
		panic("eventity: listener owner does not exist")
	}
	if m == nil {
		panic("eventity: listener matcher cannot be nil")
	}
	return b.addListener(owner, true, AllOf(Attr[Target](), m), h, opts)
}

func (b *Bus) addListener(owner EntityID, scoped bool, m Matcher, h Handler, opts []ListenerOption) EntityID {
	if m == nil {
		panic("eventity: listener matcher cannot be nil")
	}
	if h == nil {
		panic("eventity: listener handler cannot be nil")
	}
	cfg := listenerConfig{name: handlerName(h)}
	for _, opt := range opts {
		opt(&cfg)
	}
	reg := b.store.Spawn()
	if scoped {
		b.store.SetParent(reg, owner)
	}
	b.store.InsertValue(reg, listenerIdent{matcher: m, owner: owner, scoped: scoped})
	b.store.InsertValue(reg, callbackCell{state: statePending, handler: h, name: cfg.name})
	return reg
}

// RemoveListener destroys a listener registration. Returns false if it no
// longer exists.
func (b *Bus) RemoveListener(reg EntityID) bool {
	return b.store.Despawn(reg)
}

// On registers a global listener for events carrying a T payload.
func On[T any](b *Bus, h Handler, opts ...ListenerOption) EntityID {
	return b.AddListener(Attr[T](), h, opts...)
}

// OnEntity registers a listener for events carrying a T payload targeted at
// owner.
func OnEntity[T any](b *Bus, owner EntityID, h Handler, opts ...ListenerOption) EntityID {
	return b.AddEntityListener(owner, Attr[T](), h, opts...)
}
