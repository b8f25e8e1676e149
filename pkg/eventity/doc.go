/*
Package eventity provides an entity-backed event bus with hierarchy-aware
propagation.

# Overview

eventity is a Go library for in-process event dispatch where every event is
itself an entity: a typed payload record (or several) attached to an
identifier in an entity store. Listeners are entities too, so events can be
observed, extended with extra records by other systems, and garbage-collected
on a predictable schedule instead of living only inside a callback stack.

The library is built around:
  - A double-buffered queue with explicit generation advance
  - Cursor readers that see every event exactly once
  - Bubbling propagation along an entity parent hierarchy
  - Attribute matchers for listener selection
  - Fault isolation so one failing listener never aborts a dispatch cycle
  - OpenTelemetry integration for observability

# Basic Usage

Create a bus, register listeners, send events, dispatch:

	type Damage struct {
	    Amount int
	}

	func main() {
	    bus := eventity.New()

	    bus.AddListener(eventity.Attr[Damage](),
	        eventity.HandlerFunc(func(inv eventity.Invocation) error {
	            dmg, _ := eventity.Payload[Damage](inv)
	            fmt.Println("took", dmg.Amount)
	            return nil
	        }),
	        eventity.WithListenerName("damage-logger"))

	    bus.Send(Damage{Amount: 12})

	    if _, err := bus.Dispatch(context.Background()); err != nil {
	        log.Fatal(err)
	    }
	    bus.Advance()
	}

Send accepts any number of payload values; all of them are attached to the
same event entity. On[T] is a shorthand for a single-payload matcher:

	eventity.On[Damage](bus, eventity.HandlerFunc(func(inv eventity.Invocation) error {
	    dmg, _ := eventity.Payload[Damage](inv)
	    fmt.Println("took", dmg.Amount)
	    return nil
	}))

# Event Lifetime

The queue holds two generations. A sent event stays readable through the next
Advance and is destroyed by the one after, so readers polling once per
advance cannot miss it:

	bus.Send(Damage{Amount: 3}) // generation B
	bus.Advance()               // now generation A, still readable
	bus.Advance()               // entity destroyed, identifier reclaimed

Advance returns the identifiers it destroyed. Each event identifier is
returned by exactly one Advance call.

# Readers

A Reader is an independent cursor over the queue. Each reader sees each
event exactly once, in send order, regardless of how other readers consume:

	r := bus.NewReader()
	bus.Send(Damage{Amount: 1})
	for id, dmg := range eventity.ReadAs[Damage](bus, r) {
	    _ = id
	    fmt.Println(dmg.Amount)
	}

A reader created with NewReader starts at the current send count and only
sees later events; NewReaderFromStart also sees everything still buffered.
Readers that fall behind a reclaimed generation skip what is gone and
continue from the oldest event still alive.

# Propagation

An event carrying a Target record bubbles along the target's parent chain.
Each hop enqueues a derivative event pointing at the ancestor, carrying
PropagatedFrom back to the root, so listeners anywhere up the hierarchy see
the event with its original payloads:

	store := bus.Store()
	body := store.Spawn()
	armor := store.Spawn()
	store.SetParent(armor, body) // armor is a child of body

	eventity.OnEntity[Damage](bus, body, bodyHandler)
	bus.SendTo(armor, Damage{Amount: 9}) // hits the armor, bubbles to the body
	bus.Dispatch(context.Background())

During a propagated callback the root event's Target reads as the ancestor
being visited, so handlers written against the root behave identically at
every hop.

# Listener Matching

Matchers select events by which payload record types the root event
carries:

	eventity.Attr[Damage]()                                  // has Damage
	eventity.AllOf(eventity.Attr[Damage](), eventity.Attr[Critical]()) // both
	eventity.AnyOf(eventity.Attr[Heal](), eventity.Attr[Damage]())     // either

AddListener registers a global listener that sees every matching event.
AddEntityListener scopes the listener to one entity: it only fires for
events whose propagation target is exactly that entity.

# Fault Isolation

A listener returning an error, or panicking, never aborts the dispatch
cycle. The failure is wrapped (CallbackError or PanicError), logged,
counted, handed to the WithFaultHandler callback, and journaled to the
WithFaultStore store if one is configured:

	journal, _ := faultlog.NewSQLiteStore("./faults.db")
	defer journal.Close()

	bus := eventity.New(
	    eventity.WithFaultStore(journal),
	    eventity.WithFaultHandler(func(f eventity.Fault) {
	        alerting.Notify(f.Callback, f.Err)
	    }))

# Observability

Structured logging, metrics, and tracing are opt-in:

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	bus := eventity.New(
	    eventity.WithLogger(logger),
	    eventity.WithMetrics(true),
	    eventity.WithTracing(true))

Metrics and traces go to the global OpenTelemetry providers. Configure
those before enabling:

	otel.SetMeterProvider(meterProvider)
	otel.SetTracerProvider(tracerProvider)
*/
package eventity
