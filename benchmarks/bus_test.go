package benchmarks

import (
	"testing"

	"github.com/eventity/eventity/pkg/eventity"
)

// Damage is the event payload used across benchmarks.
type Damage struct {
	Amount int
}

// Critical marks an event as critical.
type Critical struct{}

// Ping carries a cascade countdown.
type Ping struct {
	Hops int
}

// nopHandler does minimal work to measure framework overhead.
var nopHandler = eventity.HandlerFunc(func(inv eventity.Invocation) error {
	return nil
})

// BenchmarkNewBus measures bus creation overhead.
func BenchmarkNewBus(b *testing.B) {
	for i := 0; i < b.N; i++ {
		eventity.New()
	}
}

// BenchmarkNewBus_Sized measures bus creation with a pre-sized queue.
func BenchmarkNewBus_Sized(b *testing.B) {
	for i := 0; i < b.N; i++ {
		eventity.New(eventity.WithCapacity(256))
	}
}

// BenchmarkSend measures queueing a single-payload event.
func BenchmarkSend(b *testing.B) {
	bus := eventity.New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bus.Send(Damage{Amount: i})
	}
}

// BenchmarkSend_3Payloads measures queueing an event with three payloads.
func BenchmarkSend_3Payloads(b *testing.B) {
	bus := eventity.New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bus.Send(Damage{Amount: i}, Critical{}, Ping{Hops: 1})
	}
}

// BenchmarkSendTo measures queueing a targeted event.
func BenchmarkSendTo(b *testing.B) {
	bus := eventity.New()
	target := bus.Store().Spawn()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bus.SendTo(target, Damage{Amount: i})
	}
}

// BenchmarkSendBatch_10 measures queueing 10 events in one call.
func BenchmarkSendBatch_10(b *testing.B) {
	bus := eventity.New()
	bundles := makeBundles(10)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bus.SendBatch(bundles...)
	}
}

// BenchmarkSendBatch_100 measures queueing 100 events in one call.
func BenchmarkSendBatch_100(b *testing.B) {
	bus := eventity.New()
	bundles := makeBundles(100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bus.SendBatch(bundles...)
	}
}

// BenchmarkSendAdvance_10 runs a send/advance host cycle of 10 events.
func BenchmarkSendAdvance_10(b *testing.B) {
	bus := eventity.New(eventity.WithCapacity(16))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := 0; j < 10; j++ {
			bus.Send(Damage{Amount: j})
		}
		bus.Advance()
	}
}

// BenchmarkSendAdvance_100 runs a send/advance host cycle of 100 events.
func BenchmarkSendAdvance_100(b *testing.B) {
	bus := eventity.New(eventity.WithCapacity(128))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := 0; j < 100; j++ {
			bus.Send(Damage{Amount: j})
		}
		bus.Advance()
	}
}

// BenchmarkReader_Count_100 counts 100 retained events from a fresh cursor.
func BenchmarkReader_Count_100(b *testing.B) {
	bus := eventity.New()
	for j := 0; j < 100; j++ {
		bus.Send(Damage{Amount: j})
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := bus.NewReaderFromStart()
		bus.Read(r).Count()
	}
}

// BenchmarkReader_Next_100 iterates 100 retained events one at a time.
func BenchmarkReader_Next_100(b *testing.B) {
	bus := eventity.New()
	for j := 0; j < 100; j++ {
		bus.Send(Damage{Amount: j})
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := bus.NewReaderFromStart()
		it := bus.Read(r)
		for {
			if _, ok := it.Next(); !ok {
				break
			}
		}
	}
}

// BenchmarkReadAs_100 iterates 100 retained events through a payload-filtered read.
func BenchmarkReadAs_100(b *testing.B) {
	bus := eventity.New()
	for j := 0; j < 100; j++ {
		bus.Send(Damage{Amount: j})
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := bus.NewReaderFromStart()
		for range eventity.ReadAs[Damage](bus, r) {
		}
	}
}

// BenchmarkAddRemoveListener measures global listener registration churn.
func BenchmarkAddRemoveListener(b *testing.B) {
	bus := eventity.New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reg := eventity.On[Damage](bus, nopHandler)
		bus.RemoveListener(reg)
	}
}

// BenchmarkAddRemoveListener_Scoped measures scoped listener registration churn.
func BenchmarkAddRemoveListener_Scoped(b *testing.B) {
	bus := eventity.New()
	owner := bus.Store().Spawn()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reg := eventity.OnEntity[Damage](bus, owner, nopHandler)
		bus.RemoveListener(reg)
	}
}

// Helper functions

func makeBundles(n int) [][]any {
	bundles := make([][]any, n)
	for i := range bundles {
		bundles[i] = []any{Damage{Amount: i}}
	}
	return bundles
}
