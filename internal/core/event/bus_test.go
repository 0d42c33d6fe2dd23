package event

import "testing"

type ping struct{ n int }
type pong struct{ n int }

func TestDoubleBufferedDelivery(t *testing.T) {
	b := NewBus()
	var got []int
	Subscribe(b, func(ev ping) { got = append(got, ev.n) })

	Emit(b, ping{n: 1})
	b.SwapBuffers()
	// Emitted after the swap: belongs to the next tick.
	Emit(b, ping{n: 2})
	b.DispatchAll()

	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("first dispatch got %v, want [1]", got)
	}

	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 2 || got[1] != 2 {
		t.Fatalf("second dispatch got %v, want [1 2]", got)
	}
}

func TestTypedRouting(t *testing.T) {
	b := NewBus()
	pings, pongs := 0, 0
	Subscribe(b, func(ping) { pings++ })
	Subscribe(b, func(pong) { pongs++ })

	Emit(b, ping{})
	Emit(b, ping{})
	Emit(b, pong{})
	b.SwapBuffers()
	b.DispatchAll()

	if pings != 2 || pongs != 1 {
		t.Fatalf("routed %d pings and %d pongs, want 2 and 1", pings, pongs)
	}
}

func TestMultipleHandlers(t *testing.T) {
	b := NewBus()
	calls := 0
	Subscribe(b, func(ping) { calls++ })
	Subscribe(b, func(ping) { calls++ })
	Emit(b, ping{})
	b.SwapBuffers()
	b.DispatchAll()
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestDispatchWithoutSwapDeliversNothing(t *testing.T) {
	b := NewBus()
	calls := 0
	Subscribe(b, func(ping) { calls++ })
	Emit(b, ping{})
	b.DispatchAll()
	if calls != 0 {
		t.Fatal("event delivered from the back buffer")
	}
}
