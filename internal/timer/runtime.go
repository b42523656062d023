package timer

import (
	"container/heap"
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/groupalarm/alarmd/pkg/logger"
)

// maxSleepCap bounds how long the runtime goroutine sleeps in one stretch.
// Waking at least this often re-reads the wall clock, so a clock step or a
// machine resume delays a due fire by at most one cap.
const maxSleepCap = 60 * time.Second

// Runtime is the in-process Port implementation. All registration state is
// guarded by one mutex, which makes Arm/Cancel for a given key linearizable
// from any goroutine: a Cancel racing a fire either removes the entry or
// finds it already popped — it can never resurrect one.
type Runtime struct {
	mu    sync.Mutex
	armed armedHeap
	byKey map[Key]*entry

	wake    chan struct{}
	handler Handler
	log     logger.Logger

	// Now is the clock; replaced in tests.
	Now func() time.Time
}

var _ Port = (*Runtime)(nil)

// NewRuntime creates a runtime delivering fires to handler. Call Run to
// start it.
func NewRuntime(l logger.Logger, handler Handler) *Runtime {
	return &Runtime{
		byKey:   make(map[Key]*entry),
		wake:    make(chan struct{}, 1),
		handler: handler,
		log:     l,
		Now:     time.Now,
	}
}

// Run starts the dispatch goroutine. It exits when ctx is cancelled.
func (r *Runtime) Run(ctx context.Context) {
	go r.run(ctx)
}

// Arm registers a wake-up for key at the given instant, replacing any
// existing registration under the same key. Never fails in-process.
func (r *Runtime) Arm(key Key, at time.Time) error {
	r.mu.Lock()
	if old, ok := r.byKey[key]; ok {
		old.removed = true
	}
	e := &entry{key: key, at: at}
	r.byKey[key] = e
	heap.Push(&r.armed, e)
	r.mu.Unlock()

	r.signal()
	return nil
}

// Cancel removes the registration for key. Unknown keys are a no-op.
func (r *Runtime) Cancel(key Key) error {
	r.mu.Lock()
	if e, ok := r.byKey[key]; ok {
		e.removed = true
		delete(r.byKey, key)
	}
	r.mu.Unlock()

	r.signal()
	return nil
}

// Armed reports whether a live registration exists for key.
func (r *Runtime) Armed(key Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byKey[key]
	return ok
}

func (r *Runtime) signal() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *Runtime) run(ctx context.Context) {
	for {
		fires, next := r.collect()
		for _, f := range fires {
			r.dispatch(f)
		}

		var (
			t      *time.Timer
			timerC <-chan time.Time
		)
		if !next.IsZero() {
			d := next.Sub(r.Now())
			if d > maxSleepCap {
				d = maxSleepCap
			}
			if d < 0 {
				d = 0
			}
			t = time.NewTimer(d)
			timerC = t.C
		}

		select {
		case <-ctx.Done():
			if t != nil {
				t.Stop()
			}
			return
		case <-r.wake:
			if t != nil {
				t.Stop()
			}
		case <-timerC:
		}
	}
}

// collect pops every due registration and returns the fires to deliver
// plus the trigger instant of the next pending one (zero when idle).
func (r *Runtime) collect() (fires []Fire, next time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.Now()
	for r.armed.Len() > 0 {
		e := r.armed[0]
		if e.removed {
			heap.Pop(&r.armed)
			continue
		}
		if e.at.After(now) {
			next = e.at
			break
		}
		heap.Pop(&r.armed)
		// Drop the key mapping only if it still points at this entry;
		// a concurrent re-arm may already have replaced it.
		if cur, ok := r.byKey[e.key]; ok && cur == e {
			delete(r.byKey, e.key)
		}
		fires = append(fires, Fire{Key: e.key, At: e.at})
	}
	return fires, next
}

// dispatch invokes the handler with panic recovery so a misbehaving
// consumer cannot kill the dispatch goroutine.
func (r *Runtime) dispatch(f Fire) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("timer %s: fire handler panic: %v\n%s", f.Key, p, debug.Stack())
		}
	}()
	r.handler(f)
}
