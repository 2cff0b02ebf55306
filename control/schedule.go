package control

import (
	"math"
	"time"
)

// Scheduler delays a single action on the main loop's clock.
//
// A Scheduler is one logical channel: Schedule replaces whatever was pending,
// so only the most recent request can ever fire. All methods must be called
// from the main loop; the slot needs no lock because nothing else touches it,
// and replacement trivially guarantees a superseded action never runs.
//
// The total delay folds a per-message offset into a configured base wait. A
// zero total runs the action right away. A negative total means the event
// should already have happened: the action still runs right away, but is told
// how far in the past it landed so it can seek forward by that much.
type Scheduler struct {
	fireAt time.Time
	action func(seek float64)
	armed  bool
}

// Schedule arms the channel with an action and a total delay in seconds.
//
// total > 0 cancels any pending action and fires this one total seconds from
// now (on the next Tick at or past the deadline). total == 0 runs the action
// synchronously with a zero seek. total < 0 runs the action synchronously
// with a seek of -total seconds.
func (s *Scheduler) Schedule(now time.Time, total float64, action func(seek float64)) {
	switch {
	case total > 0:
		s.fireAt = now.Add(time.Duration(total * float64(time.Second)))
		s.action = action
		s.armed = true

	case total == 0:
		s.Cancel()
		action(0)

	default:
		s.Cancel()
		action(math.Abs(total))
	}
}

// Tick fires the pending action if its deadline has passed. It fires at most
// once per Schedule.
func (s *Scheduler) Tick(now time.Time) {
	if !s.armed || now.Before(s.fireAt) {
		return
	}

	action := s.action
	s.Cancel()
	action(0)
}

// Cancel discards the pending action, if any.
func (s *Scheduler) Cancel() {
	s.armed = false
	s.action = nil
}

// Pending reports whether an action is waiting to fire.
func (s *Scheduler) Pending() bool {
	return s.armed
}
