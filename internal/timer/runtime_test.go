package timer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/groupalarm/alarmd/pkg/logger"
)

// fireRecorder collects fires delivered by a Runtime under test.
type fireRecorder struct {
	mu    sync.Mutex
	fires []Fire
}

func (fr *fireRecorder) handle(f Fire) {
	fr.mu.Lock()
	fr.fires = append(fr.fires, f)
	fr.mu.Unlock()
}

func (fr *fireRecorder) count(key Key) int {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	n := 0
	for _, f := range fr.fires {
		if f.Key == key {
			n++
		}
	}
	return n
}

func startRuntime(t *testing.T) (*Runtime, *fireRecorder) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	fr := &fireRecorder{}
	r := NewRuntime(logger.NewNopLogger(), fr.handle)
	r.Run(ctx)
	return r, fr
}

func TestRuntimeArmAndFire(t *testing.T) {
	r, fr := startRuntime(t)

	key := RegularKey(1)
	if err := r.Arm(key, time.Now().Add(100*time.Millisecond)); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)
	if got := fr.count(key); got != 1 {
		t.Fatalf("fire count = %d, want 1", got)
	}
	if r.Armed(key) {
		t.Error("key still armed after firing")
	}
}

func TestRuntimeCancelBeforeFire(t *testing.T) {
	r, fr := startRuntime(t)

	key := RegularKey(2)
	if err := r.Arm(key, time.Now().Add(200*time.Millisecond)); err != nil {
		t.Fatal(err)
	}
	if err := r.Cancel(key); err != nil {
		t.Fatal(err)
	}

	time.Sleep(400 * time.Millisecond)
	if got := fr.count(key); got != 0 {
		t.Fatalf("fire count = %d, want 0", got)
	}
}

func TestRuntimeCancelUnknownKeyIsNoop(t *testing.T) {
	r, _ := startRuntime(t)
	if err := r.Cancel(RegularKey(99)); err != nil {
		t.Fatalf("Cancel = %v, want nil", err)
	}
}

func TestRuntimeRearmReplaces(t *testing.T) {
	r, fr := startRuntime(t)

	// Arm far out, then replace with a near registration. Only the
	// replacement may fire.
	key := RegularKey(3)
	if err := r.Arm(key, time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := r.Arm(key, time.Now().Add(100*time.Millisecond)); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)
	if got := fr.count(key); got != 1 {
		t.Fatalf("fire count = %d, want exactly 1 after replace", got)
	}
}

func TestRuntimeSnoozeNamespaceIsIndependent(t *testing.T) {
	r, fr := startRuntime(t)

	reg := RegularKey(4)
	snz := SnoozeKey(4)
	if err := r.Arm(reg, time.Now().Add(100*time.Millisecond)); err != nil {
		t.Fatal(err)
	}
	if err := r.Arm(snz, time.Now().Add(150*time.Millisecond)); err != nil {
		t.Fatal(err)
	}
	// Cancelling the snooze leaves the regular registration armed.
	if err := r.Cancel(snz); err != nil {
		t.Fatal(err)
	}

	time.Sleep(400 * time.Millisecond)
	if got := fr.count(reg); got != 1 {
		t.Fatalf("regular fire count = %d, want 1", got)
	}
	if got := fr.count(snz); got != 0 {
		t.Fatalf("snooze fire count = %d, want 0", got)
	}
}

func TestRuntimeBothNamespacesFire(t *testing.T) {
	r, fr := startRuntime(t)

	reg := RegularKey(5)
	snz := SnoozeKey(5)
	if err := r.Arm(reg, time.Now().Add(80*time.Millisecond)); err != nil {
		t.Fatal(err)
	}
	if err := r.Arm(snz, time.Now().Add(120*time.Millisecond)); err != nil {
		t.Fatal(err)
	}

	time.Sleep(400 * time.Millisecond)
	if fr.count(reg) != 1 || fr.count(snz) != 1 {
		t.Fatalf("fires = %d regular, %d snooze; want 1 and 1",
			fr.count(reg), fr.count(snz))
	}
}

func TestRuntimePastInstantFiresImmediately(t *testing.T) {
	r, fr := startRuntime(t)

	key := RegularKey(6)
	if err := r.Arm(key, time.Now().Add(-time.Second)); err != nil {
		t.Fatal(err)
	}

	time.Sleep(200 * time.Millisecond)
	if got := fr.count(key); got != 1 {
		t.Fatalf("fire count = %d, want 1", got)
	}
}

func TestRuntimeHandlerPanicIsContained(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ml := logger.NewMockLogger()
	var mu sync.Mutex
	fired := 0
	r := NewRuntime(ml, func(f Fire) {
		mu.Lock()
		fired++
		n := fired
		mu.Unlock()
		if n == 1 {
			panic("boom")
		}
	})
	r.Run(ctx)

	if err := r.Arm(RegularKey(7), time.Now().Add(50*time.Millisecond)); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	// The runtime must survive the panic and keep delivering.
	if err := r.Arm(RegularKey(8), time.Now().Add(50*time.Millisecond)); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if fired != 2 {
		t.Fatalf("fired = %d, want 2", fired)
	}
}

func TestHeapOrdersByInstant(t *testing.T) {
	r := NewRuntime(logger.NewNopLogger(), func(Fire) {})
	base := time.Now().Add(time.Hour)

	r.Arm(RegularKey(1), base.Add(3*time.Minute))
	r.Arm(RegularKey(2), base.Add(1*time.Minute))
	r.Arm(RegularKey(3), base.Add(2*time.Minute))

	_, next := r.collect()
	if !next.Equal(base.Add(1 * time.Minute)) {
		t.Errorf("next = %v, want earliest registration", next)
	}
}
