package watch

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	var count atomic.Int32
	var mu sync.Mutex
	var got ChangeEvent
	d := NewDebouncer(50*time.Millisecond, func(ev ChangeEvent) {
		count.Add(1)
		mu.Lock()
		got = ev
		mu.Unlock()
	})
	defer d.Stop()

	for i := 0; i < 10; i++ {
		d.Trigger(ChangeEvent{Path: "hosts.yaml", ChangeType: ChangeWrite})
		time.Sleep(5 * time.Millisecond)
	}
	d.Trigger(ChangeEvent{Path: "hosts.yaml", ChangeType: ChangeCreate})

	time.Sleep(150 * time.Millisecond)

	if n := count.Load(); n != 1 {
		t.Errorf("expected 1 callback invocation, got %d", n)
	}
	mu.Lock()
	defer mu.Unlock()
	if got.ChangeType != ChangeCreate {
		t.Errorf("expected last event to win, got %q", got.ChangeType)
	}
}

func TestDebouncer_Stop(t *testing.T) {
	var count atomic.Int32
	d := NewDebouncer(50*time.Millisecond, func(ChangeEvent) {
		count.Add(1)
	})

	d.Trigger(ChangeEvent{})
	d.Stop()

	time.Sleep(100 * time.Millisecond)

	if n := count.Load(); n != 0 {
		t.Errorf("expected 0 callback invocations after stop, got %d", n)
	}
}
