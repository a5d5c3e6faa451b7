// Package events decouples state owners from whoever renders their changes.
package events

import (
	"context"
	"sync"
)

// Event names emitted by the editor and the page service.
const (
	EditorChanged       = "editor:changed"
	EditorSelection     = "editor:selection"
	EditorDropIndicator = "editor:drop-indicator"
	PageSaved           = "page:saved"
	PageImported        = "page:imported"
)

// ─────────────────────────────────────────────────────────────
// Emitter — decouples the editor from its front end
// ─────────────────────────────────────────────────────────────

// Emitter delivers events to the front end. Editors and services receive
// this interface instead of a concrete transport, which keeps them
// independently testable with a MockEmitter.
type Emitter interface {
	Emit(ctx context.Context, event string, data any)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Emit(context.Context, string, any) {}

// Func adapts a function to an Emitter.
type Func func(ctx context.Context, event string, data any)

func (f Func) Emit(ctx context.Context, event string, data any) { f(ctx, event, data) }

// MockEmitter is a test-friendly Emitter that records all calls.
type MockEmitter struct {
	mu     sync.Mutex
	events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, EmittedEvent{Event: event, Data: data})
}

// Events returns a copy of the recorded emissions.
func (m *MockEmitter) Events() []EmittedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmittedEvent, len(m.events))
	copy(out, m.events)
	return out
}

// Named returns the recorded emissions of one event.
func (m *MockEmitter) Named(event string) []EmittedEvent {
	var out []EmittedEvent
	for _, e := range m.Events() {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

// Last returns the most recent emission of event.
func (m *MockEmitter) Last(event string) (EmittedEvent, bool) {
	named := m.Named(event)
	if len(named) == 0 {
		return EmittedEvent{}, false
	}
	return named[len(named)-1], true
}

// Reset forgets recorded emissions.
func (m *MockEmitter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}
