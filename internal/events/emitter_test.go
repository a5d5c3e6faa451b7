package events

import (
	"context"
	"sync"
	"testing"
)

func TestMockEmitter_Concurrent(t *testing.T) {
	m := &MockEmitter{}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.Emit(context.Background(), EditorChanged, i)
		}(i)
	}
	wg.Wait()
	m.Emit(context.Background(), EditorSelection, "b1")

	if got := len(m.Named(EditorChanged)); got != 20 {
		t.Errorf("changed events = %d, want 20", got)
	}
	last, ok := m.Last(EditorSelection)
	if !ok || last.Data != "b1" {
		t.Errorf("last selection = %+v, %v", last, ok)
	}
	m.Reset()
	if len(m.Events()) != 0 {
		t.Error("Reset kept events")
	}
}

func TestFunc(t *testing.T) {
	var got string
	var e Emitter = Func(func(_ context.Context, event string, _ any) { got = event })
	e.Emit(context.Background(), PageSaved, nil)
	if got != PageSaved {
		t.Errorf("got %q", got)
	}
	Nop{}.Emit(context.Background(), PageSaved, nil)
}
