package control

import (
	"github.com/chabad360/go-osc/osc"
)

// ArgumentSlot is one half of a ToggleHandler's pipeline: either the enable
// channel or the disable channel. It accumulates message arguments on the
// receive goroutine and applies them to the owner's target at drain time.
//
// A slot is registered as its own Handler so the enable and disable addresses
// queue and drain independently.
type ArgumentSlot struct {
	enabled bool
	owner   *ToggleHandler
	queue   Queue
}

// Receive implements Handler. The owner's argument start index is captured
// per message, so reconfiguring it mid-stream never shifts arguments already
// queued.
func (s *ArgumentSlot) Receive(msg *osc.Message) {
	s.queue.Enqueue(msg, s.owner.ArgStart())
}

// Invoke implements Handler. Every queued argument set is applied to the
// target in receive order, then the queue is empty.
func (s *ArgumentSlot) Invoke() {
	for _, q := range s.queue.Drain() {
		s.owner.apply(s.enabled, q)
	}
}

// Clear implements Handler. Queued argument sets are discarded, not applied.
func (s *ArgumentSlot) Clear() {
	s.queue.Clear()
}

// Active implements Handler; a slot is exactly as active as its owner.
func (s *ArgumentSlot) Active() bool {
	return s.owner.Active()
}

// Pending returns the number of argument sets waiting to be applied.
func (s *ArgumentSlot) Pending() int {
	return s.queue.Len()
}
