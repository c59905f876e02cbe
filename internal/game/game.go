// Package game runs one player's hidden-object session for a single day.
//
// A Session is a plain state machine. Timed transitions (the short pause
// before a story part is revealed, hint expiry, the celebration) are kept as
// deadlines and applied lazily whenever the session is touched, so callers
// that push updates should schedule a wake-up at NextDeadline.
//
// A Session is not safe for concurrent use.
package game

import (
	"errors"
	"time"

	"github.com/playperu/eastertrail/internal/goodybag"
	"github.com/playperu/eastertrail/internal/storybook"
)

const (
	RevealDelay         = 300 * time.Millisecond
	HintDuration        = 5 * time.Second
	CelebrationDuration = 3 * time.Second
)

type Phase string

const (
	PhaseExploring Phase = "exploring"
	PhaseItemFound Phase = "item_found"
	PhaseStory     Phase = "story_revealed"
	PhaseReward    Phase = "reward_shown"
)

var (
	ErrUnknownItem     = errors.New("unknown item")
	ErrBusy            = errors.New("finish the open story first")
	ErrNoStory         = errors.New("no story part is open")
	ErrNoAudio         = errors.New("story part has no narration")
	ErrAudioGate       = errors.New("narration is still playing")
	ErrLocked          = errors.New("story part is locked")
	ErrNotComplete     = errors.New("find every item first")
	ErrGoodyBagClosed  = errors.New("goody bag is not open")
	ErrNotLastPart     = errors.New("goody bag opens after the final story part")
	ErrUnknownActivity = goodybag.ErrUnknownActivity
)

type Session struct {
	day   int
	items []storybook.FindableItem
	parts []storybook.StoryPart
	clock Clock
	rng   Rand

	phase    Phase
	found    []int
	foundSet map[int]bool

	pending  int
	revealAt time.Time

	active int
	audio  gate

	hinting   bool
	hint      int
	hintUntil time.Time

	pan            storybook.Position
	bag            *goodybag.Presenter
	celebrateUntil time.Time
}

// New starts a session for view. Items sharing an id are collapsed to the
// first occurrence.
func New(view storybook.DayView, opts ...Option) *Session {
	s := &Session{
		day:      view.Day,
		parts:    view.Parts,
		clock:    systemClock{},
		rng:      globalRand{},
		phase:    PhaseExploring,
		found:    []int{},
		foundSet: make(map[int]bool),
		pan:      storybook.Position{X: storybook.DefaultCoord, Y: storybook.DefaultCoord},
		bag:      goodybag.New(view.GoodyBag),
	}
	seen := make(map[int]bool, len(view.Items))
	for _, it := range view.Items {
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		s.items = append(s.items, it)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Day() int { return s.day }

// advance applies any timed transitions that are due and returns now.
func (s *Session) advance() time.Time {
	now := s.clock.Now()
	if s.phase == PhaseItemFound && !now.Before(s.revealAt) {
		s.reveal(s.pending)
	}
	if s.hinting && !now.Before(s.hintUntil) {
		s.hinting = false
	}
	return now
}

func (s *Session) reveal(index int) {
	s.pending = 0
	s.active = index
	s.audio = newGate(s.parts[index-1].HasAudio())
	s.phase = PhaseStory
}

func (s *Session) closeStory() {
	s.active = 0
	s.audio = gate{}
}

func (s *Session) item(id int) (storybook.FindableItem, bool) {
	for _, it := range s.items {
		if it.ID == id {
			return it, true
		}
	}
	return storybook.FindableItem{}, false
}

// Unlocked is how many story parts the player may read.
func (s *Session) Unlocked() int {
	return min(len(s.found), len(s.parts))
}

// Complete reports whether every item has been found.
func (s *Session) Complete() bool {
	return len(s.found) == len(s.items)
}

// Discover records a tap on item id. It reports whether the tap was a new
// find; repeated taps on a found item are ignored. The Nth find schedules
// story part N to open after RevealDelay.
func (s *Session) Discover(id int) (bool, error) {
	now := s.advance()
	if _, ok := s.item(id); !ok {
		return false, ErrUnknownItem
	}
	if s.foundSet[id] {
		return false, nil
	}
	if s.phase != PhaseExploring {
		return false, ErrBusy
	}

	s.found = append(s.found, id)
	s.foundSet[id] = true
	if s.hinting && s.hint == id {
		s.hinting = false
	}
	if n := len(s.found); n <= len(s.parts) {
		s.phase = PhaseItemFound
		s.pending = n
		s.revealAt = now.Add(RevealDelay)
	}
	return true, nil
}

// OpenStory re-opens an unlocked story part (1-based) from the story list.
func (s *Session) OpenStory(index int) error {
	s.advance()
	if s.phase != PhaseExploring {
		return ErrBusy
	}
	if index < 1 || index > s.Unlocked() {
		return ErrLocked
	}
	s.reveal(index)
	return nil
}

// Dismiss closes the open story part. A narrated part stays open until its
// narration has finished or failed.
func (s *Session) Dismiss() error {
	s.advance()
	if s.phase != PhaseStory {
		return ErrNoStory
	}
	if !s.audio.isOpen() {
		return ErrAudioGate
	}
	s.closeStory()
	s.phase = PhaseExploring
	return nil
}

func (s *Session) narration() (*gate, error) {
	s.advance()
	if s.phase != PhaseStory {
		return nil, ErrNoStory
	}
	if !s.audio.hasAudio {
		return nil, ErrNoAudio
	}
	return &s.audio, nil
}

// AudioLoaded reports the narration's duration in seconds. A duration that
// is not a positive finite number is treated as a load failure.
func (s *Session) AudioLoaded(duration float64) error {
	g, err := s.narration()
	if err != nil {
		return err
	}
	g.load(duration)
	return nil
}

// AudioProgress reports the playback position in seconds.
func (s *Session) AudioProgress(position float64) error {
	g, err := s.narration()
	if err != nil {
		return err
	}
	g.progress(position)
	return nil
}

func (s *Session) AudioPlaying() error {
	g, err := s.narration()
	if err != nil {
		return err
	}
	if !g.failed {
		g.playing = true
	}
	return nil
}

func (s *Session) AudioPaused() error {
	g, err := s.narration()
	if err != nil {
		return err
	}
	g.playing = false
	return nil
}

func (s *Session) AudioEnded() error {
	g, err := s.narration()
	if err != nil {
		return err
	}
	g.end()
	return nil
}

func (s *Session) AudioFailed() error {
	g, err := s.narration()
	if err != nil {
		return err
	}
	g.fail()
	return nil
}

// rewardReady reports whether the open story part offers the goody bag.
func (s *Session) rewardReady() bool {
	return s.phase == PhaseStory &&
		s.Complete() &&
		s.active == len(s.parts) &&
		s.audio.isOpen()
}

// OpenGoodyBag shows the reward. From the final story part it also starts
// the celebration; from the scene it only needs every item found.
func (s *Session) OpenGoodyBag() error {
	now := s.advance()
	switch s.phase {
	case PhaseReward:
		return nil
	case PhaseExploring:
		if !s.Complete() {
			return ErrNotComplete
		}
	case PhaseStory:
		switch {
		case !s.Complete():
			return ErrNotComplete
		case s.active != len(s.parts):
			return ErrNotLastPart
		case !s.audio.isOpen():
			return ErrAudioGate
		}
		s.closeStory()
		s.celebrateUntil = now.Add(CelebrationDuration)
	default:
		return ErrBusy
	}
	s.phase = PhaseReward
	s.bag.Open()
	return nil
}

func (s *Session) CloseGoodyBag() error {
	s.advance()
	if s.phase != PhaseReward {
		return ErrGoodyBagClosed
	}
	s.bag.Close()
	s.phase = PhaseExploring
	return nil
}

// SelectActivity expands activity id in the goody bag, or collapses it if it
// is already expanded.
func (s *Session) SelectActivity(id string) error {
	s.advance()
	if s.phase != PhaseReward {
		return ErrGoodyBagClosed
	}
	return s.bag.Toggle(id)
}

// RequestHint points at a random item that has not been found yet and
// returns its id. It returns false once every item is found.
func (s *Session) RequestHint() (int, bool) {
	now := s.advance()
	var left []storybook.FindableItem
	for _, it := range s.items {
		if !s.foundSet[it.ID] {
			left = append(left, it)
		}
	}
	if len(left) == 0 {
		return 0, false
	}
	target := left[s.rng.IntN(len(left))]
	s.hinting = true
	s.hint = target.ID
	s.hintUntil = now.Add(HintDuration)
	return target.ID, true
}

// Pan moves the view one step.
func (s *Session) Pan(d Direction) error {
	s.advance()
	p, err := Nudge(s.pan, d)
	if err != nil {
		return err
	}
	s.pan = p
	return nil
}

// Drag moves the view by a pointer delta in pixels.
func (s *Session) Drag(dx, dy float64) {
	s.advance()
	s.pan = DragBy(s.pan, dx, dy, DragSensitivity)
}

// NextDeadline returns the next time the session changes on its own.
func (s *Session) NextDeadline() (time.Time, bool) {
	now := s.advance()
	var next time.Time
	consider := func(t time.Time) {
		if t.After(now) && (next.IsZero() || t.Before(next)) {
			next = t
		}
	}
	if s.phase == PhaseItemFound {
		consider(s.revealAt)
	}
	if s.hinting {
		consider(s.hintUntil)
	}
	consider(s.celebrateUntil)
	return next, !next.IsZero()
}
