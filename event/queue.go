package event

import (
	"sync"

	"github.com/lixenwraith/navcore/parameter"
)

// Queue is an unbounded MPSC notification queue
// Thread-Safety:
//   - Push: multiple producers OK (tasks, console goroutine)
//   - Consume: single consumer (scheduler, between cycles)
//
// Growth: nothing is ever dropped; a backlog past parameter.EventQueueSize grows the
// buffer and is reported through Push's return value
type Queue struct {
	mu      sync.Mutex
	pending []Event
	spare   []Event // previous batch, reused by the next Consume
	peak    int
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	return &Queue{
		pending: make([]Event, 0, parameter.EventQueueSize),
		spare:   make([]Event, 0, parameter.EventQueueSize),
	}
}

// Push appends a notification and returns the pending count, including ev
func (q *Queue) Push(ev Event) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, ev)
	n := len(q.pending)
	if n > q.peak {
		q.peak = n
	}
	return n
}

// Consume returns all pending notifications in FIFO order
// The returned slice is valid until the next Consume
func (q *Queue) Consume() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	out := q.pending
	clear(q.spare)
	q.pending = q.spare[:0]
	q.spare = out
	return out
}

// Len returns the pending count
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Peak returns the largest backlog seen
func (q *Queue) Peak() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.peak
}
