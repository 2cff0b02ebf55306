package control

import (
	"log/slog"
	"sync/atomic"
)

// Switchable is the collaborator a ToggleHandler drives.
type Switchable interface {
	// ApplyState enables or disables the target with the arguments carried by
	// the triggering message.
	ApplyState(enabled bool, args []interface{})
}

// ToggleHandler flips a target on and off from a pair of addresses,
// "{prefix}/Enable" and "{prefix}/Disable". Each address feeds its own
// ArgumentSlot, and each queued message's arguments from the configured start
// index onward are handed to the target in receive order at drain time.
type ToggleHandler struct {
	Prefix string
	Target Switchable

	// argStart is read on the receive goroutine, so it is atomic like the
	// active flag.
	argStart atomic.Int32

	disp   *Dispatcher
	log    *slog.Logger
	active atomic.Bool
	slots  [2]*ArgumentSlot

	bound struct {
		prefix string
		target Switchable
		addrs  []string
	}
}

// NewToggleHandler returns a handler bound to d. Call Init to register the
// Enable/Disable pair and Activate to start applying messages.
func NewToggleHandler(d *Dispatcher, target Switchable, prefix string, argStart int) *ToggleHandler {
	h := &ToggleHandler{
		Prefix: prefix,
		Target: target,
		disp:   d,
		log:    logOf(d),
	}
	h.argStart.Store(int32(argStart))
	h.slots[0] = &ArgumentSlot{enabled: true, owner: h}
	h.slots[1] = &ArgumentSlot{enabled: false, owner: h}
	return h
}

// ArgStart returns the index of the first message argument passed to the
// target.
func (h *ToggleHandler) ArgStart() int { return int(h.argStart.Load()) }

// SetArgStart changes the argument start index. Messages already queued keep
// the index they were received with.
func (h *ToggleHandler) SetArgStart(i int) { h.argStart.Store(int32(i)) }

// Init registers "{prefix}/Enable" on slot 0 and "{prefix}/Disable" on
// slot 1. Without a dispatcher or target it does nothing. When neither the
// prefix nor the target changed since the last Init, the existing
// registrations are kept as is. Registration is all or nothing: on error the
// handler is left unbound.
func (h *ToggleHandler) Init() error {
	if h.disp == nil || h.Target == nil {
		return nil
	}

	addrs := []string{h.Prefix + "/Enable", h.Prefix + "/Disable"}

	if h.Prefix == h.bound.prefix && h.Target == h.bound.target {
		return nil
	}

	h.Deregister()

	for i, addr := range addrs {
		if err := h.disp.Register(addr, h.slots[i]); err != nil {
			for j := range addrs[:i] {
				h.disp.Deregister(addrs[j], h.slots[j])
			}
			return err
		}
	}

	h.bound.prefix = h.Prefix
	h.bound.target = h.Target
	h.bound.addrs = addrs
	h.log.Debug("toggle pair registered", "prefix", h.Prefix)
	return nil
}

// Deregister removes the Enable/Disable pair registered by the last Init.
func (h *ToggleHandler) Deregister() {
	h.deregister()
	h.bound.prefix = ""
	h.bound.target = nil
	h.bound.addrs = nil
}

func (h *ToggleHandler) deregister() {
	for i, addr := range h.bound.addrs {
		h.disp.Deregister(addr, h.slots[i])
	}
}

// Activate starts applying queued argument sets at drain time.
func (h *ToggleHandler) Activate() { h.active.Store(true) }

// Deactivate stops applying argument sets; anything queued while inactive is
// discarded at the next drain.
func (h *ToggleHandler) Deactivate() { h.active.Store(false) }

// Active reports whether drained argument sets reach the target.
func (h *ToggleHandler) Active() bool { return h.active.Load() }

// Slot returns the enable slot for 0 and the disable slot for 1. Any other
// index returns nil.
func (h *ToggleHandler) Slot(i int) *ArgumentSlot {
	if i < 0 || i >= len(h.slots) {
		return nil
	}
	return h.slots[i]
}

func (h *ToggleHandler) apply(enabled bool, q Queued) {
	args := q.Msg.Arguments
	switch {
	case q.Start >= len(args):
		args = nil
	case q.Start > 0:
		args = args[q.Start:]
	}
	h.Target.ApplyState(enabled, args)
}
