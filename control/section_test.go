package control

import (
	"math"
	"testing"
	"time"

	"github.com/chabad360/go-osc/osc"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type move struct {
	Name string
	Seek float64
}

type fakeTimeline struct {
	sections []Section
	moves    []move
}

func (f *fakeTimeline) Sections() []Section { return f.sections }

func (f *fakeTimeline) MoveToSection(name string, seek float64) {
	f.moves = append(f.moves, move{Name: name, Seek: seek})
}

func newSectionFixture(t *testing.T, wait float64, sections ...Section) (*Dispatcher, *fakeTimeline, *SectionHandler, time.Time) {
	t.Helper()

	d := NewDispatcher(nil)
	tl := &fakeTimeline{sections: sections}
	h := NewSectionHandler(d, tl, "/timeline", wait)

	base := time.Now()
	h.now = func() time.Time { return base }

	h.Activate()
	require.NoError(t, h.Init())
	return d, tl, h, base
}

func TestSectionHandler_InitBuildsSortedTable(t *testing.T) {
	d, _, h, _ := newSectionFixture(t, 0,
		Section{Name: "Outro", ClipIndex: 2},
		Section{Name: "Intro", ClipIndex: 0},
		Section{Name: "Drop", ClipIndex: 1},
	)

	want := []string{"/timeline/Intro", "/timeline/Drop", "/timeline/Outro"}
	if diff := cmp.Diff(want, h.bound.addrs); diff != "" {
		t.Errorf("address table mismatch (-want +got):\n%s", diff)
	}
	for _, addr := range want {
		require.Len(t, d.Lookup(addr), 1, addr)
	}
}

func TestSectionHandler_InitWithoutCollaborators(t *testing.T) {
	d := NewDispatcher(nil)

	h := NewSectionHandler(d, nil, "/timeline", 0)
	require.NoError(t, h.Init())
	require.Empty(t, h.bound.addrs)

	h = NewSectionHandler(nil, &fakeTimeline{}, "/timeline", 0)
	require.NoError(t, h.Init())
	require.Empty(t, h.bound.addrs)
}

func TestSectionHandler_InitUnchangedIsNoop(t *testing.T) {
	d, _, h, _ := newSectionFixture(t, 0, Section{Name: "Intro", ClipIndex: 0})

	require.NoError(t, h.Init())

	require.Equal(t, []string{"/timeline/Intro"}, h.bound.addrs)
	require.Len(t, d.Lookup("/timeline/Intro"), 1)
}

func TestSectionHandler_InitRebuildsOnChange(t *testing.T) {
	d, tl, h, _ := newSectionFixture(t, 0, Section{Name: "Intro", ClipIndex: 0})

	tl.sections = []Section{{Name: "Drop", ClipIndex: 0}}
	require.NoError(t, h.Init())

	require.Empty(t, d.Lookup("/timeline/Intro"))
	require.Len(t, d.Lookup("/timeline/Drop"), 1)
}

func TestSectionHandler_InitRejectsBadSectionName(t *testing.T) {
	d, tl, h, _ := newSectionFixture(t, 0, Section{Name: "Good", ClipIndex: 0})

	// A section name with a pattern character makes registration fail partway
	// through the rebuild. Nothing from the failed attempt may stay behind.
	tl.sections = []Section{{Name: "Good", ClipIndex: 0}, {Name: "Ba d", ClipIndex: 1}}
	require.Error(t, h.Init())

	require.Empty(t, d.Lookup("/timeline/Good"))
	require.Empty(t, h.bound.addrs)

	h.Deregister()
	require.Empty(t, d.Lookup("/timeline/Good"))

	d.Dispatch(osc.NewMessage("/timeline/Good"), nil)
	d.Drain()
	require.Empty(t, tl.moves)

	// A corrected section list registers cleanly afterwards.
	tl.sections = []Section{{Name: "Good", ClipIndex: 0}}
	require.NoError(t, h.Init())
	require.Len(t, d.Lookup("/timeline/Good"), 1)
}

func TestSectionHandler_StaleAddressDropped(t *testing.T) {
	d, tl, h, _ := newSectionFixture(t, 0, Section{Name: "Intro", ClipIndex: 0})

	// Queued before the rebuild, drained after: the old address is no longer
	// in the section table and must not produce a move.
	d.Dispatch(osc.NewMessage("/timeline/Intro"), nil)

	tl.sections = []Section{{Name: "Drop", ClipIndex: 0}}
	require.NoError(t, h.Init())
	d.Drain()

	require.Empty(t, tl.moves)
}

func TestSectionHandler_InitRejectsBadPrefix(t *testing.T) {
	d := NewDispatcher(nil)
	h := NewSectionHandler(d, &fakeTimeline{sections: []Section{{Name: "Intro"}}}, "/bad*prefix", 0)
	require.Error(t, h.Init())
}

func TestSectionHandler_ImmediateMove(t *testing.T) {
	d, tl, _, _ := newSectionFixture(t, 0, Section{Name: "Intro", ClipIndex: 0})

	d.Dispatch(osc.NewMessage("/timeline/Intro"), nil)
	d.Drain()

	require.Equal(t, []move{{Name: "Intro", Seek: 0}}, tl.moves)
}

func TestSectionHandler_DelayedMove(t *testing.T) {
	d, tl, h, base := newSectionFixture(t, 2.0, Section{Name: "Intro", ClipIndex: 0})

	d.Dispatch(osc.NewMessage("/timeline/Intro", float32(0.5)), nil)
	d.Drain()
	require.Empty(t, tl.moves, "moved before the delay elapsed")

	h.Tick(base.Add(2400 * time.Millisecond))
	require.Empty(t, tl.moves)

	h.Tick(base.Add(2500 * time.Millisecond))
	require.Equal(t, []move{{Name: "Intro", Seek: 0}}, tl.moves)

	h.Tick(base.Add(10 * time.Second))
	require.Len(t, tl.moves, 1, "moved more than once")
}

func TestSectionHandler_ZeroTotalMovesNow(t *testing.T) {
	d, tl, _, _ := newSectionFixture(t, 1.0, Section{Name: "Intro", ClipIndex: 0})

	d.Dispatch(osc.NewMessage("/timeline/Intro", float32(-1.0)), nil)
	d.Drain()

	require.Equal(t, []move{{Name: "Intro", Seek: 0}}, tl.moves)
}

func TestSectionHandler_NegativeTotalSeeksForward(t *testing.T) {
	d, tl, _, _ := newSectionFixture(t, 0.5, Section{Name: "Intro", ClipIndex: 0})

	d.Dispatch(osc.NewMessage("/timeline/Intro", float32(-2.0)), nil)
	d.Drain()

	require.Len(t, tl.moves, 1)
	require.Equal(t, "Intro", tl.moves[0].Name)
	require.InDelta(t, 1.5, tl.moves[0].Seek, 1e-6)
}

func TestSectionHandler_NaNOffsetIgnored(t *testing.T) {
	d, tl, h, base := newSectionFixture(t, 1.0, Section{Name: "Intro", ClipIndex: 0})

	d.Dispatch(osc.NewMessage("/timeline/Intro", float32(math.NaN())), nil)
	d.Drain()
	require.Empty(t, tl.moves)

	h.Tick(base.Add(time.Second))
	require.Equal(t, []move{{Name: "Intro", Seek: 0}}, tl.moves)
}

func TestSectionHandler_LatestMessageWins(t *testing.T) {
	d, tl, h, base := newSectionFixture(t, 1.0,
		Section{Name: "Intro", ClipIndex: 0},
		Section{Name: "Drop", ClipIndex: 1},
	)

	d.Dispatch(osc.NewMessage("/timeline/Intro"), nil)
	d.Dispatch(osc.NewMessage("/timeline/Drop"), nil)
	d.Drain()

	h.Tick(base.Add(5 * time.Second))

	require.Equal(t, []move{{Name: "Drop", Seek: 0}}, tl.moves)
}

func TestSectionHandler_InactiveDropsQueued(t *testing.T) {
	d, tl, h, _ := newSectionFixture(t, 0, Section{Name: "Intro", ClipIndex: 0})

	h.Deactivate()
	d.Dispatch(osc.NewMessage("/timeline/Intro"), nil)
	d.Drain()

	require.Empty(t, tl.moves)
	require.Zero(t, h.queue.Len(), "queue should be cleared, not deferred")

	// Reactivating does not resurrect dropped messages.
	h.Activate()
	d.Drain()
	require.Empty(t, tl.moves)
}

func TestSectionHandler_DeactivateCancelsPendingMove(t *testing.T) {
	d, tl, h, base := newSectionFixture(t, 1.0, Section{Name: "Intro", ClipIndex: 0})

	d.Dispatch(osc.NewMessage("/timeline/Intro"), nil)
	d.Drain()

	h.Deactivate()
	h.Tick(base.Add(5 * time.Second))

	require.Empty(t, tl.moves)
}

func TestSectionHandler_Deregister(t *testing.T) {
	d, tl, h, _ := newSectionFixture(t, 0, Section{Name: "Intro", ClipIndex: 0})

	h.Deregister()
	require.Empty(t, d.Lookup("/timeline/Intro"))

	d.Dispatch(osc.NewMessage("/timeline/Intro"), nil)
	d.Drain()
	require.Empty(t, tl.moves)
}
