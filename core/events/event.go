// Package events carries the virtual-operation history stream the block
// applier emits (spec §4.4: "not user-submitted; emitted by the block
// applier itself to the history stream so observers see the reason for
// state deltas").
package events

// Record is a structured, attribute-keyed rendering of an Event, the shape
// downstream observers (RPC, indexers) consume.
type Record struct {
	Type       string
	Attributes map[string]string
}

// Event represents a structured state change emitted by the chain.
type Event interface {
	EventType() string
	Record() *Record
}

// Emitter broadcasts events to downstream subscribers.
type Emitter interface {
	Emit(Event)
}

// NoopEmitter satisfies Emitter while discarding everything, the default
// for components that don't care to subscribe.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}
