package timer

import (
	"container/heap"
	"time"
)

// entry is one armed registration. Cancelled entries are flagged removed
// and dropped lazily when they surface at the top of the heap, so Cancel
// stays O(1) under the runtime mutex.
type entry struct {
	key     Key
	at      time.Time
	removed bool
}

// armedHeap orders entries by trigger instant, earliest first.
type armedHeap []*entry

var _ heap.Interface = (*armedHeap)(nil)

func (h armedHeap) Len() int           { return len(h) }
func (h armedHeap) Less(i, j int) bool { return h[i].at.Before(h[j].at) }
func (h armedHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *armedHeap) Push(x any) {
	*h = append(*h, x.(*entry))
}

func (h *armedHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}
