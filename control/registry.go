package control

import (
	"fmt"
	"strings"
	"sync"

	"github.com/chabad360/go-osc/osc"
)

// Handler is the pair of callbacks bound to an address.
//
// Receive runs on the goroutine that decoded the message and may only
// enqueue; everything else happens in Invoke, which runs on the main loop.
// Clear discards queued messages without applying them.
type Handler interface {
	Receive(msg *osc.Message)
	Invoke()
	Clear()
	Active() bool
}

// Registry maps exact OSC address strings to Handlers.
//
// Addresses are compared as plain strings. Pattern characters are rejected at
// Add time so a registered address can never be shadowed by a wildcard.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// Add registers h for addr. Adding the same (addr, h) pair twice is a no-op,
// so callers can re-run their registration phase without bookkeeping.
func (r *Registry) Add(addr string, h Handler) error {
	if strings.ContainsAny(addr, "*?,[]{}# ") {
		return fmt.Errorf("Add: address may not contain any characters in \"*?,[]{}# \"")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.handlers == nil {
		r.handlers = make(map[string][]Handler)
	}

	for _, e := range r.handlers[addr] {
		if e == h {
			return nil
		}
	}

	r.handlers[addr] = append(r.handlers[addr], h)
	return nil
}

// Remove deletes the (addr, h) mapping. Removing a pair that was never added
// is a no-op.
func (r *Registry) Remove(addr string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hs := r.handlers[addr]
	for i, e := range hs {
		if e == h {
			r.handlers[addr] = append(hs[:i], hs[i+1:]...)
			break
		}
	}
	if len(r.handlers[addr]) == 0 {
		delete(r.handlers, addr)
	}
}

// Lookup returns every handler registered for exactly addr. The result is a
// copy; an address with no registrations yields nil.
func (r *Registry) Lookup(addr string) []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hs := r.handlers[addr]
	if len(hs) == 0 {
		return nil
	}

	out := make([]Handler, len(hs))
	copy(out, hs)
	return out
}

// Len returns the number of registered addresses.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}
