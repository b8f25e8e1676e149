package eventity

// Test payload types used across tests

// Attack is a payload carrying a damage amount.
type Attack struct {
	Amount int
}

// Heal is a payload carrying a healing amount.
type Heal struct {
	Amount int
}

// Critical tags an attack as critical; carries no data.
type Critical struct{}

// Kill is the payload of a cascade-triggered death event.
type Kill struct{}

// Ping is a payload with no listeners in most tests.
type Ping struct {
	Seq int
}

// Attribute types attached to hierarchy entities (not events) in scenarios.

// Health is an entity attribute tracking hit points.
type Health struct {
	HP int
}

// Marked records that a scoped listener fired for this entity.
type Marked struct{}

// Stop tags the chain entity whose listener destroys the event.
type Stop struct{}

// Helper constructors

// recorder collects callback firing order by name.
type recorder struct {
	names []string
}

// mark returns a handler that appends name to the recorder when it fires.
func (r *recorder) mark(name string) HandlerFunc {
	return func(Invocation) error {
		r.names = append(r.names, name)
		return nil
	}
}

// nopHandler ignores the invocation.
var nopHandler = HandlerFunc(func(Invocation) error {
	return nil
})

// spawnChain spawns n entities where out[i+1] is the parent of out[i]:
// out[0] is the deepest child, out[n-1] the topmost ancestor.
func spawnChain(s Store, n int) []EntityID {
	out := make([]EntityID, n)
	for i := range out {
		out[i] = s.Spawn()
		if i > 0 {
			s.SetParent(out[i-1], out[i])
		}
	}
	return out
}

// initTrackingHandler counts Init and Handle calls; Init fails while
// failInit is set.
type initTrackingHandler struct {
	inits    int
	handles  int
	failInit error
}

func (h *initTrackingHandler) Init(Store) error {
	h.inits++
	return h.failInit
}

func (h *initTrackingHandler) Handle(Invocation) error {
	h.handles++
	return nil
}
