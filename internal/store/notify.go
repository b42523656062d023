package store

import "sync"

const subBufferSize = 16

// subscribers fans change events out to all live subscriptions.
type subscribers struct {
	mu   sync.Mutex
	subs map[*subscription]struct{}
}

func newSubscribers() *subscribers {
	return &subscribers{subs: make(map[*subscription]struct{})}
}

func (ss *subscribers) add() *subscription {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	sub := &subscription{
		parent: ss,
		c:      make(chan Change, subBufferSize),
	}
	ss.subs[sub] = struct{}{}
	return sub
}

// broadcast delivers ch to every subscriber without blocking. A subscriber
// whose buffer is full is dropped and its channel closed; it must
// re-subscribe. That keeps a stalled UI from wedging store mutations.
func (ss *subscribers) broadcast(ch Change) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	for sub := range ss.subs {
		select {
		case sub.c <- ch:
		default:
			sub.drop()
		}
	}
}

func (ss *subscribers) closeAll() {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	for sub := range ss.subs {
		sub.drop()
	}
}

type subscription struct {
	parent *subscribers
	c      chan Change
	once   sync.Once
}

var _ Subscription = (*subscription)(nil)

func (s *subscription) C() <-chan Change { return s.c }

func (s *subscription) Close() error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	s.drop()
	return nil
}

// drop must be called with parent.mu held.
func (s *subscription) drop() {
	s.once.Do(func() { close(s.c) })
	delete(s.parent.subs, s)
}
