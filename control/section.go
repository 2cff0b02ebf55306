package control

import (
	"log/slog"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"github.com/chabad360/go-osc/osc"
)

// Section is a named region on a timeline. ClipIndex is the section's stable
// position in the timeline's clip list and decides registration order.
type Section struct {
	Name      string
	ClipIndex int
}

// Timeline is the collaborator a SectionHandler drives.
type Timeline interface {
	// Sections returns the current section list in any order.
	Sections() []Section
	// MoveToSection jumps to the named section, offset seek seconds past its
	// start.
	MoveToSection(name string, seek float64)
}

// SectionHandler moves a timeline to a named section when a message arrives
// at "{prefix}/{section name}".
//
// The first float argument of the message, when present and not NaN, is added
// to the configured base wait. A positive total delays the move on the
// handler's one scheduling channel (latest message wins); a zero total moves
// immediately; a negative total moves immediately and seeks forward by the
// overshoot.
type SectionHandler struct {
	Prefix   string
	Wait     float64
	Timeline Timeline

	disp   *Dispatcher
	log    *slog.Logger
	queue  Queue
	sched  Scheduler
	active atomic.Bool
	now    func() time.Time

	// registration state from the last successful Init
	bound struct {
		prefix   string
		timeline Timeline
		addrs    []string
		names    map[string]string
	}
}

// NewSectionHandler returns a handler bound to d. Call Init to build the
// address table and Activate to start applying messages.
func NewSectionHandler(d *Dispatcher, timeline Timeline, prefix string, wait float64) *SectionHandler {
	return &SectionHandler{
		Prefix:   prefix,
		Wait:     wait,
		Timeline: timeline,
		disp:     d,
		log:      logOf(d),
		now:      time.Now,
	}
}

// Init builds one address per section, "{prefix}/{name}", sorted by clip
// index, and registers them all. Without a dispatcher or timeline it does
// nothing. When neither the prefix, the timeline, nor the section set changed
// since the last Init, the existing registrations are kept as is.
//
// Registration is all or nothing: if any address is rejected (a section name
// can carry pattern characters the registry refuses), the addresses
// registered so far are rolled back and the handler is left unbound.
func (h *SectionHandler) Init() error {
	if h.disp == nil || h.Timeline == nil {
		return nil
	}

	sections := h.Timeline.Sections()
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].ClipIndex < sections[j].ClipIndex
	})

	addrs := make([]string, 0, len(sections))
	names := make(map[string]string, len(sections))
	for _, s := range sections {
		addr := h.Prefix + "/" + s.Name
		addrs = append(addrs, addr)
		names[addr] = s.Name
	}

	if h.Prefix == h.bound.prefix && h.Timeline == h.bound.timeline && equalStrings(addrs, h.bound.addrs) {
		return nil
	}

	h.Deregister()

	registered := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		if err := h.disp.Register(addr, h); err != nil {
			for _, a := range registered {
				h.disp.Deregister(a, h)
			}
			return err
		}
		registered = append(registered, addr)
	}

	h.bound.prefix = h.Prefix
	h.bound.timeline = h.Timeline
	h.bound.addrs = addrs
	h.bound.names = names
	h.log.Debug("section table rebuilt", "prefix", h.Prefix, "sections", len(addrs))
	return nil
}

// Deregister removes every address registered by the last Init.
func (h *SectionHandler) Deregister() {
	h.deregister()
	h.bound.prefix = ""
	h.bound.timeline = nil
	h.bound.addrs = nil
	h.bound.names = nil
}

func (h *SectionHandler) deregister() {
	for _, addr := range h.bound.addrs {
		h.disp.Deregister(addr, h)
	}
}

// Activate starts applying queued messages at drain time.
func (h *SectionHandler) Activate() { h.active.Store(true) }

// Deactivate stops applying messages and drops any pending delayed move.
// Messages queued while inactive are discarded at the next drain.
func (h *SectionHandler) Deactivate() {
	h.active.Store(false)
	h.sched.Cancel()
}

// Active implements Handler.
func (h *SectionHandler) Active() bool { return h.active.Load() }

// Receive implements Handler. It runs on the receive goroutine and only
// enqueues.
func (h *SectionHandler) Receive(msg *osc.Message) {
	h.queue.Enqueue(msg, 0)
}

// Invoke implements Handler. For each queued message, in receive order, it
// computes the total delay and hands the move to the scheduling channel.
// Messages whose address is no longer in the section table (queued just
// before a rebuild) are dropped.
func (h *SectionHandler) Invoke() {
	for _, q := range h.queue.Drain() {
		name, ok := h.bound.names[q.Msg.Address]
		if !ok {
			continue
		}
		total := h.Wait + floatArg(q.Msg, q.Start)

		h.sched.Schedule(h.now(), total, func(seek float64) {
			h.Timeline.MoveToSection(name, seek)
		})
	}
}

// Clear implements Handler.
func (h *SectionHandler) Clear() {
	h.queue.Clear()
}

// Tick drives the scheduling channel; call it once per frame after Drain.
func (h *SectionHandler) Tick(now time.Time) {
	h.sched.Tick(now)
}

// floatArg reads the float argument at index i as an offset in seconds. A
// missing argument, a non-float argument, or a NaN all mean "no offset".
func floatArg(msg *osc.Message, i int) float64 {
	if i < 0 || i >= len(msg.Arguments) {
		return 0
	}

	var f float64
	switch a := msg.Arguments[i].(type) {
	case float32:
		f = float64(a)
	case float64:
		f = a
	default:
		return 0
	}

	if math.IsNaN(f) {
		return 0
	}
	return f
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// logOf returns d's logger, or the default one for an unbound handler.
func logOf(d *Dispatcher) *slog.Logger {
	if d == nil {
		return slog.Default()
	}
	return d.logger()
}
