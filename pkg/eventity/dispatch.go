package eventity

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/eventity/eventity/pkg/eventity/faultlog"
	"github.com/eventity/eventity/pkg/eventity/observability"
)

// Report summarizes one Dispatch call.
type Report struct {
	Passes     int // propagate+match+run passes until fixed point
	Events     int // queued events examined (root and propagated)
	Propagated int // derivative events created
	Callbacks  int // callback executions, including faulted ones
	Faults     int // isolated callback failures
}

// Dispatch runs propagate+match+run passes until a pass adds no new events
// to the queue, letting cascades (an event whose handler sends another
// event, and so on) fully settle within one call. Handler faults are
// isolated and reported, never returned. The only error is ctx cancellation,
// checked between passes; there is no iteration cap, so a handler that
// perpetually re-triggers itself makes Dispatch non-terminating under a
// background context. That is a caller contract, not a guarded condition.
func (b *Bus) Dispatch(ctx context.Context) (Report, error) {
	cycleID := uuid.New().String()
	start := time.Now()

	observability.LogDispatchStart(b.logger, b.name, cycleID, b.queue.Len())

	tracingCtx := ctx
	var span trace.Span
	if b.tracingEnabled {
		tracingCtx, span = b.spans.StartDispatchSpan(ctx, b.name, cycleID)
	}

	var rep Report
	var runErr error
	for {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		before := b.queue.SendCount()
		rep.Propagated += b.propagate()
		b.dispatchPass(tracingCtx, cycleID, &rep)
		rep.Passes++
		if b.queue.SendCount() == before {
			break
		}
	}

	duration := time.Since(start)
	b.metrics.RecordDispatch(tracingCtx, runErr == nil, duration, rep.Passes)
	if b.tracingEnabled {
		b.spans.EndSpanWithError(span, runErr)
	}
	if runErr != nil {
		observability.LogDispatchCancelled(b.logger, b.name, cycleID, runErr)
	} else {
		observability.LogDispatchComplete(b.logger, b.name, cycleID,
			float64(duration.Milliseconds()), rep.Passes, rep.Callbacks, rep.Faults)
	}
	return rep, runErr
}

// deferredRun is one matched (registration, event) pair collected during the
// read-only candidate scan and executed afterward, so scanning never
// observes mutations made by an earlier match's callback.
type deferredRun struct {
	reg      EntityID // registration entity
	root     EntityID // logical event identity
	queued   EntityID // entity read from the queue; == root unless propagated
	target   EntityID
	targeted bool
}

// dispatchPass examines every unread event once: resolves its root identity
// and target, scans registrations for matches, then runs the matches'
// callbacks deferred. Effects of one event's callbacks (new listeners,
// destroyed entities, freshly sent events) are visible to the scan for the
// next event.
//
// The cursor is re-read before every event rather than snapshotted once, so
// a callback that triggers a nested Dispatch hands the remaining unread
// events to the nested call and the outer pass finds the cursor drained when
// it resumes. An event id leaves the cursor exactly once either way.
func (b *Bus) dispatchPass(ctx context.Context, cycleID string, rep *Report) {
	for {
		id, ok := b.dispatchReader.Read(b.queue).Next()
		if !ok {
			return
		}
		rep.Events++
		if !b.store.Exists(id) {
			continue
		}

		root := id
		if pf, ok := Get[PropagatedFrom](b.store, id); ok {
			root = pf.Event
			if !b.store.Exists(root) {
				continue
			}
		}
		var target EntityID
		targeted := false
		if tgt, ok := Get[Target](b.store, id); ok {
			target = tgt.Entity
			targeted = true
		}

		matches := b.collectMatches(root, id, target, targeted)
		for _, m := range matches {
			b.runDeferred(ctx, cycleID, m, rep)
		}
	}
}

// collectMatches scans registration entities against the root event's
// current attribute set. A scoped registration matches a targeted event only
// if its recorded owner is the resolved target and that target is still
// live (a dangling target silently excludes it); untargeted events pass the
// scope test vacuously and are gated by the matcher alone. Global
// registrations match regardless of target.
func (b *Bus) collectMatches(root, queued, target EntityID, targeted bool) []deferredRun {
	var matches []deferredRun
	attrs := AttrSet{store: b.store, id: root}
	b.store.EachOf(identType, func(reg EntityID, v any) bool {
		ident := v.(*listenerIdent)
		if ident.scoped && targeted {
			if ident.owner != target || !b.store.Exists(target) {
				return true
			}
		}
		if !ident.matcher.Matches(attrs) {
			return true
		}
		matches = append(matches, deferredRun{
			reg:      reg,
			root:     root,
			queued:   queued,
			target:   target,
			targeted: targeted,
		})
		return true
	})
	return matches
}

// runDeferred executes one matched callback. The liveness of both the queued
// entity and the root is re-validated first; an earlier action in the same
// pass may have destroyed either, which cancels the run silently. The
// callback cell is taken out of the registration entity for the duration of
// the call and reinserted only if the registration still exists afterward.
func (b *Bus) runDeferred(ctx context.Context, cycleID string, m deferredRun, rep *Report) {
	if !b.store.Exists(m.queued) || !b.store.Exists(m.root) {
		return
	}
	cellV, ok := b.store.RemoveType(m.reg, cellType)
	if !ok {
		// Already running (reentrant dispatch) or removed; nothing to do.
		return
	}
	cell := cellV.(*callbackCell)

	inv := Invocation{
		store:    b.store,
		bus:      b,
		event:    m.root,
		target:   m.target,
		targeted: m.targeted,
	}
	if m.queued != m.root {
		inv.propagated = m.queued
	}

	// For a propagated run, the root record must read the ancestor's target
	// while the callback executes, so side effects land on the same record a
	// handler at the original target would have touched. Swap the Target
	// values around the call and restore only what was swapped.
	swapped := false
	if m.queued != m.root {
		swapped = b.swapTarget(m.root, m.queued)
	}

	observability.LogCallbackStart(b.logger, cell.name, m.root.String())
	callCtx := ctx
	var span trace.Span
	if b.tracingEnabled {
		callCtx, span = b.spans.StartCallbackSpan(ctx, cell.name)
	}
	callStart := time.Now()
	err := b.invoke(cell, inv, m.reg)
	callDuration := time.Since(callStart)
	b.metrics.RecordCallback(callCtx, cell.name, callDuration, err)
	if b.tracingEnabled {
		b.spans.EndSpanWithError(span, err)
	}

	if swapped {
		b.swapTarget(m.root, m.queued)
	}

	rep.Callbacks++
	if err != nil {
		rep.Faults++
		b.reportFault(cycleID, cell.name, m, err)
	} else {
		observability.LogCallbackComplete(b.logger, cell.name, float64(callDuration.Milliseconds()))
	}

	if b.store.Exists(m.reg) {
		b.store.InsertValue(m.reg, *cell)
	}
}

// invoke runs the handler with panic isolation, driving the pending→ready
// transition on first execution. The ready flag is set only after a
// successful Init, so a failed or panicking initializer is retried on the
// next matching event.
func (b *Bus) invoke(cell *callbackCell, inv Invocation, owner EntityID) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{
				Callback: cell.name,
				Event:    inv.event,
				Owner:    owner,
				Target:   inv.target,
				Value:    r,
				Stack:    string(debug.Stack()),
			}
		}
	}()

	if cell.state == statePending {
		if init, ok := cell.handler.(Initializer); ok {
			if ierr := init.Init(b.store); ierr != nil {
				return &CallbackError{
					Callback: cell.name,
					Op:       "init",
					Event:    inv.event,
					Owner:    owner,
					Target:   inv.target,
					Err:      ierr,
				}
			}
		}
		cell.state = stateReady
	}

	if herr := cell.handler.Handle(inv); herr != nil {
		return &CallbackError{
			Callback: cell.name,
			Op:       "handle",
			Event:    inv.event,
			Owner:    owner,
			Target:   inv.target,
			Err:      herr,
		}
	}
	return nil
}

// swapTarget exchanges the Target attribute values of two live event
// entities. Returns false without touching anything if either record lacks
// a Target.
func (b *Bus) swapTarget(x, y EntityID) bool {
	px, ok := Get[Target](b.store, x)
	if !ok {
		return false
	}
	py, ok := Get[Target](b.store, y)
	if !ok {
		return false
	}
	*px, *py = *py, *px
	return true
}

// reportFault delivers one isolated callback failure to every configured
// sink: structured log, fault handler, and fault journal.
func (b *Bus) reportFault(cycleID, name string, m deferredRun, err error) {
	observability.LogCallbackFault(b.logger, name, m.root.String(), m.reg.String(), m.target.String(), err)

	fault := Fault{
		ID:       uuid.New().String(),
		Bus:      b.id,
		Cycle:    cycleID,
		Callback: name,
		Event:    m.root,
		Owner:    m.reg,
		Target:   m.target,
		Targeted: m.targeted,
		Err:      err,
		At:       time.Now().UTC(),
	}
	if b.faultHandler != nil {
		b.faultHandler(fault)
	}
	if b.faultStore != nil {
		rec := faultlog.Record{
			ID:       fault.ID,
			Bus:      fault.Bus,
			Cycle:    fault.Cycle,
			Callback: fault.Callback,
			Event:    fault.Event.String(),
			Owner:    fault.Owner.String(),
			Target:   fault.Target.String(),
			Message:  err.Error(),
			At:       fault.At,
		}
		var perr *PanicError
		if errors.As(err, &perr) {
			rec.Stack = perr.Stack
		}
		if serr := b.faultStore.Append(rec); serr != nil {
			observability.LogFaultStoreError(b.logger, serr)
		}
	}
}
