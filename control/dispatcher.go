package control

import (
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/chabad360/go-osc/osc"
)

// Dispatcher connects the receive side of an OSC server to handlers that run
// on a frame loop.
//
// Dispatch is safe to call from the network goroutine (it matches the handler
// signature of osc.ListenAndServe); it hands each message to the matching
// handlers' Receive callbacks and remembers that they have work queued. Drain
// runs on the main loop and calls Invoke on every handler signalled since the
// last frame, or Clear if the handler is inactive by then.
type Dispatcher struct {
	registry Registry
	log      *slog.Logger

	mu      sync.Mutex
	pending []Handler
	queued  map[Handler]struct{}
}

// NewDispatcher returns a ready Dispatcher. A nil logger falls back to
// slog.Default.
func NewDispatcher(log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		log:    log,
		queued: make(map[Handler]struct{}),
	}
}

// logger tolerates a zero-value Dispatcher.
func (d *Dispatcher) logger() *slog.Logger {
	if d.log == nil {
		return slog.Default()
	}
	return d.log
}

// Register binds h to addr. Registering the same pair twice is a no-op.
func (d *Dispatcher) Register(addr string, h Handler) error {
	if err := d.registry.Add(addr, h); err != nil {
		return err
	}
	d.logger().Debug("registered handler", "address", addr)
	return nil
}

// Deregister removes the (addr, h) binding if present.
func (d *Dispatcher) Deregister(addr string, h Handler) {
	d.registry.Remove(addr, h)
}

// Lookup returns the handlers registered for exactly addr.
func (d *Dispatcher) Lookup(addr string) []Handler {
	return d.registry.Lookup(addr)
}

// Dispatch routes a decoded packet to the handlers registered for its
// address. It runs on the receive goroutine, so the only work done here is
// enqueueing; the effects happen on the next Drain.
//
// Bundles are held until their timetag expires and then dispatched
// element-wise, the same way the osc package's dispatcher treats them.
func (d *Dispatcher) Dispatch(packet osc.Packet, a net.Addr) {
	switch p := packet.(type) {
	case *osc.Message:
		hs := d.registry.Lookup(p.Address)
		if len(hs) == 0 {
			d.logger().Debug("no handler for address", "address", p.Address)
			return
		}
		for _, h := range hs {
			h.Receive(p)
			d.signal(h)
		}

	case *osc.Bundle:
		time.AfterFunc(p.Timetag.ExpiresIn(), func() {
			for _, elem := range p.Elements {
				d.Dispatch(elem, a)
			}
		})
	}
}

// signal marks h as having queued work. A handler signalled several times
// between frames drains once; its own queue holds the backlog.
func (d *Dispatcher) signal(h Handler) {
	d.mu.Lock()
	if d.queued == nil {
		d.queued = make(map[Handler]struct{})
	}
	if _, ok := d.queued[h]; !ok {
		d.queued[h] = struct{}{}
		d.pending = append(d.pending, h)
	}
	d.mu.Unlock()
}

// Drain applies every message queued since the last call. It must only be
// called from the main loop. Handlers are drained in the order they were
// first signalled; a handler that is inactive at drain time has its queue
// cleared instead.
func (d *Dispatcher) Drain() {
	d.mu.Lock()
	pending := d.pending
	d.pending = nil
	d.queued = make(map[Handler]struct{})
	d.mu.Unlock()

	for _, h := range pending {
		if h.Active() {
			h.Invoke()
		} else {
			h.Clear()
		}
	}
}
