package control

import (
	"sync"

	"github.com/chabad360/go-osc/osc"
)

// Queued is a message waiting to be applied, with the index of the first
// argument the consumer should read.
type Queued struct {
	Msg   *osc.Message
	Start int
}

// Queue is a FIFO of decoded messages. Enqueue may be called from any number
// of receive goroutines; Drain and Clear are meant for the single main-loop
// consumer.
type Queue struct {
	mu    sync.Mutex
	items []Queued
}

// Enqueue appends msg to the queue.
func (q *Queue) Enqueue(msg *osc.Message, start int) {
	q.mu.Lock()
	q.items = append(q.items, Queued{Msg: msg, Start: start})
	q.mu.Unlock()
}

// Drain removes and returns everything queued so far, in receive order.
func (q *Queue) Drain() []Queued {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()
	return items
}

// Clear discards everything queued so far.
func (q *Queue) Clear() {
	q.mu.Lock()
	q.items = nil
	q.mu.Unlock()
}

// Len returns the number of queued messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
