package game

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playperu/eastertrail/internal/storybook"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixedRand int

func (r fixedRand) IntN(n int) int { return int(r) % n }

// seqRand returns its values in order, then repeats the last one.
type seqRand struct{ vals []int }

func (r *seqRand) IntN(n int) int {
	v := r.vals[0]
	if len(r.vals) > 1 {
		r.vals = r.vals[1:]
	}
	return v % n
}

// testDay has five items and five parts; the listed parts are narrated.
func testDay(narrated ...int) storybook.DayView {
	view := storybook.DayView{
		Day: 1,
		GoodyBag: storybook.GoodyBag{
			Intro:      "Well done.",
			Activities: []storybook.Activity{{ID: "listen", Label: "Listen"}},
		},
	}
	for i := 1; i <= 5; i++ {
		view.Items = append(view.Items, storybook.FindableItem{
			ID:       i,
			Name:     fmt.Sprintf("Item %d", i),
			Position: storybook.Position{X: float64(i * 15), Y: 50},
		})
		view.Parts = append(view.Parts, storybook.StoryPart{
			Index: i,
			Title: fmt.Sprintf("Part %d", i),
			Text:  "text",
		})
	}
	for _, n := range narrated {
		view.Parts[n-1].Audio = fmt.Sprintf("/audio/part-%d.mp3", n)
	}
	return view
}

func newTestSession(t *testing.T, view storybook.DayView, opts ...Option) (*Session, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 4, 5, 9, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clock), WithRand(fixedRand(0))}, opts...)
	return New(view, opts...), clock
}

// find discovers id, waits for the reveal and dismisses the part.
func find(t *testing.T, s *Session, clock *fakeClock, id int) {
	t.Helper()
	isNew, err := s.Discover(id)
	require.NoError(t, err)
	require.True(t, isNew)
	clock.Advance(RevealDelay)
	require.NoError(t, s.Dismiss())
}

func TestDiscoverUnlocksPartsInDiscoveryOrder(t *testing.T) {
	s, clock := newTestSession(t, testDay())

	for n, id := range []int{3, 1, 5, 2, 4} {
		isNew, err := s.Discover(id)
		require.NoError(t, err)
		require.True(t, isNew)

		clock.Advance(RevealDelay)
		st := s.Snapshot()
		require.Equal(t, PhaseStory, st.Phase)
		require.NotNil(t, st.ActivePart)
		assert.Equal(t, n+1, st.ActivePart.Index, "find #%d (item %d)", n+1, id)
		assert.Equal(t, n+1, st.UnlockedParts)

		require.NoError(t, s.Dismiss())
	}

	st := s.Snapshot()
	assert.Equal(t, []int{3, 1, 5, 2, 4}, st.Discovered)
	assert.True(t, st.Complete)
	assert.True(t, st.GoodyBagReady)
}

func TestDiscoverIsIdempotent(t *testing.T) {
	s, clock := newTestSession(t, testDay())
	find(t, s, clock, 2)

	isNew, err := s.Discover(2)
	require.NoError(t, err)
	assert.False(t, isNew)

	st := s.Snapshot()
	assert.Equal(t, []int{2}, st.Discovered)
	assert.Equal(t, 1, st.UnlockedParts)
	assert.Equal(t, PhaseExploring, st.Phase)
}

func TestDiscoverRejections(t *testing.T) {
	s, clock := newTestSession(t, testDay())

	_, err := s.Discover(99)
	assert.ErrorIs(t, err, ErrUnknownItem)

	_, err = s.Discover(1)
	require.NoError(t, err)

	_, err = s.Discover(2)
	assert.ErrorIs(t, err, ErrBusy, "a second item cannot be found before the reveal")

	clock.Advance(RevealDelay)
	_, err = s.Discover(2)
	assert.ErrorIs(t, err, ErrBusy, "nor while the story is open")

	assert.Equal(t, []int{1}, s.Snapshot().Discovered)
}

func TestRevealDelay(t *testing.T) {
	s, clock := newTestSession(t, testDay())
	start := clock.Now()

	_, err := s.Discover(4)
	require.NoError(t, err)
	assert.Equal(t, PhaseItemFound, s.Snapshot().Phase)

	deadline, ok := s.NextDeadline()
	require.True(t, ok)
	assert.Equal(t, start.Add(RevealDelay), deadline)

	clock.Advance(RevealDelay - time.Millisecond)
	assert.Equal(t, PhaseItemFound, s.Snapshot().Phase)
	assert.ErrorIs(t, s.Dismiss(), ErrNoStory)

	clock.Advance(time.Millisecond)
	st := s.Snapshot()
	assert.Equal(t, PhaseStory, st.Phase)
	assert.True(t, st.CanDismiss)

	_, ok = s.NextDeadline()
	assert.False(t, ok)
}

func TestAudioGateFollowsPlayback(t *testing.T) {
	s, clock := newTestSession(t, testDay(1))
	_, err := s.Discover(1)
	require.NoError(t, err)
	clock.Advance(RevealDelay)

	st := s.Snapshot()
	require.NotNil(t, st.Audio)
	assert.Equal(t, PlaceholderSeconds, st.Audio.RemainingSeconds)
	assert.False(t, st.CanDismiss)
	assert.ErrorIs(t, s.Dismiss(), ErrAudioGate)

	require.NoError(t, s.AudioLoaded(12.2))
	assert.Equal(t, 13, s.Snapshot().Audio.TotalSeconds)
	assert.Equal(t, 13, s.Snapshot().Audio.RemainingSeconds)

	require.NoError(t, s.AudioPlaying())
	require.NoError(t, s.AudioProgress(4.5))
	assert.Equal(t, 8, s.Snapshot().Audio.RemainingSeconds)

	require.NoError(t, s.AudioPaused())
	clock.Advance(time.Minute)
	st = s.Snapshot()
	assert.False(t, st.Audio.Playing)
	assert.Equal(t, 8, st.Audio.RemainingSeconds, "pausing holds the countdown")
	assert.ErrorIs(t, s.Dismiss(), ErrAudioGate)

	require.NoError(t, s.AudioPlaying())
	assert.Equal(t, 8, s.Snapshot().Audio.RemainingSeconds, "resuming does not restart the countdown")

	require.NoError(t, s.AudioProgress(12.2))
	st = s.Snapshot()
	assert.Equal(t, 0, st.Audio.RemainingSeconds)
	assert.True(t, st.CanDismiss)

	require.NoError(t, s.AudioProgress(1), "seeking back after the end keeps the gate open")
	assert.Equal(t, 0, s.Snapshot().Audio.RemainingSeconds)

	require.NoError(t, s.Dismiss())
}

func TestAudioEndedOpensGate(t *testing.T) {
	s, clock := newTestSession(t, testDay(1))
	_, err := s.Discover(1)
	require.NoError(t, err)
	clock.Advance(RevealDelay)

	require.NoError(t, s.AudioLoaded(20))
	require.NoError(t, s.AudioPlaying())
	require.NoError(t, s.AudioProgress(19.5))
	assert.Equal(t, 1, s.Snapshot().Audio.RemainingSeconds)

	require.NoError(t, s.AudioEnded())
	st := s.Snapshot()
	assert.Equal(t, 0, st.Audio.RemainingSeconds)
	assert.False(t, st.Audio.Playing)
	require.NoError(t, s.Dismiss())
}

func TestAudioFailureOpensGate(t *testing.T) {
	tests := []struct {
		name string
		fail func(*Session) error
	}{
		{"error event", (*Session).AudioFailed},
		{"nan duration", func(s *Session) error { return s.AudioLoaded(math.NaN()) }},
		{"infinite duration", func(s *Session) error { return s.AudioLoaded(math.Inf(1)) }},
		{"zero duration", func(s *Session) error { return s.AudioLoaded(0) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, clock := newTestSession(t, testDay(1))
			_, err := s.Discover(1)
			require.NoError(t, err)
			clock.Advance(RevealDelay)

			require.NoError(t, tt.fail(s))
			st := s.Snapshot()
			assert.True(t, st.Audio.Failed)
			assert.Equal(t, 0, st.Audio.RemainingSeconds)
			assert.NoError(t, s.Dismiss())
		})
	}
}

func TestAudioEventsNeedNarratedStory(t *testing.T) {
	s, clock := newTestSession(t, testDay())
	assert.ErrorIs(t, s.AudioPlaying(), ErrNoStory)

	_, err := s.Discover(1)
	require.NoError(t, err)
	clock.Advance(RevealDelay)
	assert.ErrorIs(t, s.AudioLoaded(10), ErrNoAudio)
	assert.False(t, s.Snapshot().Audio.HasAudio)
}

func TestOpenStory(t *testing.T) {
	s, clock := newTestSession(t, testDay(2))
	find(t, s, clock, 5)

	assert.ErrorIs(t, s.OpenStory(2), ErrLocked)
	assert.ErrorIs(t, s.OpenStory(0), ErrLocked)

	require.NoError(t, s.OpenStory(1))
	st := s.Snapshot()
	assert.Equal(t, PhaseStory, st.Phase)
	assert.Equal(t, 1, st.ActivePart.Index)
	assert.ErrorIs(t, s.OpenStory(1), ErrBusy)
	require.NoError(t, s.Dismiss())

	_, err := s.Discover(4)
	require.NoError(t, err)
	clock.Advance(RevealDelay)
	require.NoError(t, s.AudioEnded())
	require.NoError(t, s.Dismiss())

	require.NoError(t, s.OpenStory(2))
	assert.ErrorIs(t, s.Dismiss(), ErrAudioGate, "re-opening a narrated part restarts its gate")
	assert.Equal(t, PlaceholderSeconds, s.Snapshot().Audio.RemainingSeconds)
}

func TestHintPicksUndiscoveredItem(t *testing.T) {
	s, clock := newTestSession(t, testDay(), WithRand(fixedRand(1)))
	find(t, s, clock, 1)
	find(t, s, clock, 3)

	id, ok := s.RequestHint()
	require.True(t, ok)
	assert.Equal(t, 4, id, "second of the undiscovered items 2, 4, 5")

	h, ok := s.HintDirection()
	require.True(t, ok)
	assert.Equal(t, 4, h.ItemID)
	assert.InDelta(t, 0, h.Bearing, 1e-9, "item 4 sits straight to the right of the centre")
	assert.Equal(t, clock.Now().Add(HintDuration), h.ExpiresAt)

	clock.Advance(HintDuration)
	_, ok = s.HintDirection()
	assert.False(t, ok, "hint expires")
}

func TestHintNeverTargetsFoundItems(t *testing.T) {
	for seed := range 20 {
		s, clock := newTestSession(t, testDay(), WithRand(NewSeededRand(uint64(seed))))
		find(t, s, clock, 2)
		find(t, s, clock, 5)
		for range 10 {
			id, ok := s.RequestHint()
			require.True(t, ok)
			assert.NotContains(t, []int{2, 5}, id)
		}
	}
}

func TestHintClearedWhenFound(t *testing.T) {
	s, _ := newTestSession(t, testDay())
	id, ok := s.RequestHint()
	require.True(t, ok)

	_, err := s.Discover(id)
	require.NoError(t, err)
	assert.Nil(t, s.Snapshot().Hint)
	assert.Equal(t, PhaseItemFound, s.Snapshot().Phase)
}

func TestHintRequestReplacesTargetAndTimer(t *testing.T) {
	s, clock := newTestSession(t, testDay(), WithRand(&seqRand{vals: []int{0, 3}}))

	first, ok := s.RequestHint()
	require.True(t, ok)
	assert.Equal(t, 1, first)

	clock.Advance(HintDuration - time.Nanosecond)
	second, ok := s.RequestHint()
	require.True(t, ok)
	assert.Equal(t, 4, second)

	// The first hint's deadline has passed; the second one is still live.
	clock.Advance(2 * time.Nanosecond)
	h := s.Snapshot().Hint
	require.NotNil(t, h)
	assert.Equal(t, second, h.ItemID)
	assert.Equal(t, clock.now.Add(HintDuration-2*time.Nanosecond), h.ExpiresAt)

	clock.Advance(HintDuration)
	assert.Nil(t, s.Snapshot().Hint)
}

func TestHintUnavailableWhenComplete(t *testing.T) {
	s, clock := newTestSession(t, testDay())
	for id := 1; id <= 5; id++ {
		find(t, s, clock, id)
	}
	_, ok := s.RequestHint()
	assert.False(t, ok)
	assert.Nil(t, s.Snapshot().Hint)
}

func TestGoodyBagFromFinalPart(t *testing.T) {
	s, clock := newTestSession(t, testDay(5))
	for id := 1; id <= 4; id++ {
		find(t, s, clock, id)
	}
	_, err := s.Discover(5)
	require.NoError(t, err)
	clock.Advance(RevealDelay)

	st := s.Snapshot()
	assert.False(t, st.CanFinish, "narration still playing")
	assert.False(t, st.GoodyBagReady)
	assert.ErrorIs(t, s.OpenGoodyBag(), ErrAudioGate)

	require.NoError(t, s.AudioLoaded(3))
	require.NoError(t, s.AudioProgress(3))
	assert.True(t, s.Snapshot().CanFinish)

	require.NoError(t, s.OpenGoodyBag())
	st = s.Snapshot()
	assert.Equal(t, PhaseReward, st.Phase)
	assert.True(t, st.Celebrating)
	assert.True(t, st.GoodyBag.Open)
	assert.Nil(t, st.ActivePart)

	deadline, ok := s.NextDeadline()
	require.True(t, ok)
	assert.Equal(t, clock.Now().Add(CelebrationDuration), deadline)

	clock.Advance(CelebrationDuration)
	assert.False(t, s.Snapshot().Celebrating)
}

func TestGoodyBagNotOfferedBeforeFinalPart(t *testing.T) {
	s, clock := newTestSession(t, testDay())
	for id := 1; id <= 5; id++ {
		find(t, s, clock, id)
	}
	require.NoError(t, s.OpenStory(3))
	assert.False(t, s.Snapshot().CanFinish)
	assert.ErrorIs(t, s.OpenGoodyBag(), ErrNotLastPart)

	require.NoError(t, s.Dismiss())
	require.NoError(t, s.OpenStory(5))
	assert.True(t, s.Snapshot().CanFinish)
}

func TestGoodyBagFromToolbar(t *testing.T) {
	s, clock := newTestSession(t, testDay())
	find(t, s, clock, 1)
	assert.ErrorIs(t, s.OpenGoodyBag(), ErrNotComplete)

	for id := 2; id <= 5; id++ {
		find(t, s, clock, id)
	}
	require.NoError(t, s.OpenGoodyBag())
	st := s.Snapshot()
	assert.Equal(t, PhaseReward, st.Phase)
	assert.False(t, st.Celebrating)

	require.NoError(t, s.SelectActivity("listen"))
	assert.Equal(t, "listen", s.Snapshot().GoodyBag.Active.ID)
	assert.ErrorIs(t, s.SelectActivity("nope"), ErrUnknownActivity)

	require.NoError(t, s.CloseGoodyBag())
	st = s.Snapshot()
	assert.Equal(t, PhaseExploring, st.Phase)
	assert.False(t, st.GoodyBag.Open)
	assert.ErrorIs(t, s.SelectActivity("listen"), ErrGoodyBagClosed)
	assert.ErrorIs(t, s.CloseGoodyBag(), ErrGoodyBagClosed)
}

func TestDuplicateItemsCollapse(t *testing.T) {
	view := testDay()
	view.Items = append(view.Items, storybook.FindableItem{ID: 3, Name: "copy"})
	s, clock := newTestSession(t, view)
	assert.Equal(t, 5, s.Snapshot().TotalItems)

	for id := 1; id <= 5; id++ {
		find(t, s, clock, id)
	}
	assert.True(t, s.Complete())
}

func TestMoreItemsThanParts(t *testing.T) {
	view := testDay()
	view.Parts = view.Parts[:2]
	s, clock := newTestSession(t, view)

	find(t, s, clock, 1)
	find(t, s, clock, 2)

	isNew, err := s.Discover(3)
	require.NoError(t, err)
	assert.True(t, isNew)
	st := s.Snapshot()
	assert.Equal(t, PhaseExploring, st.Phase, "no part left to reveal")
	assert.Equal(t, 2, st.UnlockedParts)
}

func TestPanAndDrag(t *testing.T) {
	s, _ := newTestSession(t, testDay())

	for range 5 {
		require.NoError(t, s.Pan(Left))
	}
	assert.Equal(t, storybook.Position{X: 0, Y: 50}, s.Snapshot().Pan)

	require.NoError(t, s.Pan(Down))
	assert.Equal(t, storybook.Position{X: 0, Y: 65}, s.Snapshot().Pan)
	assert.ErrorIs(t, s.Pan("sideways"), ErrUnknownDirection)

	s.Drag(100, -100)
	assert.InDelta(t, 15, s.Snapshot().Pan.X, 1e-9)
	assert.InDelta(t, 50, s.Snapshot().Pan.Y, 1e-9)

	s.Drag(10000, 10000)
	assert.Equal(t, storybook.Position{X: 100, Y: 100}, s.Snapshot().Pan)
}

func TestBearing(t *testing.T) {
	centre := storybook.Position{X: 50, Y: 50}
	tests := []struct {
		to   storybook.Position
		want float64
	}{
		{storybook.Position{X: 80, Y: 50}, 0},
		{storybook.Position{X: 50, Y: 90}, 90},
		{storybook.Position{X: 10, Y: 50}, 180},
		{storybook.Position{X: 50, Y: 10}, -90},
		{storybook.Position{X: 60, Y: 60}, 45},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Bearing(centre, tt.to), 1e-9, "to %+v", tt.to)
	}
}
