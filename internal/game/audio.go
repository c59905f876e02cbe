package game

import "math"

// PlaceholderSeconds is shown on a narrated part until the clip's metadata
// arrives.
const PlaceholderSeconds = 30

// gate blocks dismissal of a narrated story part until the narration has
// played through. It follows the media element's own position, so a paused
// clip holds the countdown where it is.
type gate struct {
	hasAudio bool
	loaded   bool
	playing  bool
	failed   bool
	open     bool

	duration  float64
	position  float64
	remaining int
	total     int
}

func newGate(hasAudio bool) gate {
	if !hasAudio {
		return gate{open: true}
	}
	return gate{
		hasAudio:  true,
		remaining: PlaceholderSeconds,
		total:     PlaceholderSeconds,
	}
}

func (g *gate) isOpen() bool { return !g.hasAudio || g.open }

func (g *gate) load(duration float64) {
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		g.fail()
		return
	}
	g.loaded = true
	g.duration = duration
	g.total = int(math.Ceil(duration))
	g.recompute()
}

func (g *gate) progress(position float64) {
	if math.IsNaN(position) || position < 0 {
		return
	}
	g.position = position
	if g.loaded {
		g.recompute()
	}
}

func (g *gate) recompute() {
	if g.open {
		g.remaining = 0
		return
	}
	g.remaining = max(0, int(math.Ceil(g.duration-g.position)))
	if g.remaining == 0 {
		g.open = true
	}
}

func (g *gate) end() {
	g.playing = false
	g.open = true
	g.remaining = 0
}

// fail opens the gate for good: narration is optional.
func (g *gate) fail() {
	g.failed = true
	g.end()
}

// AudioState is the narration status of the displayed story part.
type AudioState struct {
	HasAudio         bool `json:"hasAudio"`
	Loaded           bool `json:"loaded"`
	Playing          bool `json:"playing"`
	Failed           bool `json:"failed"`
	RemainingSeconds int  `json:"remainingSeconds"`
	TotalSeconds     int  `json:"totalSeconds"`
}

func (g *gate) state() AudioState {
	return AudioState{
		HasAudio:         g.hasAudio,
		Loaded:           g.loaded,
		Playing:          g.playing,
		Failed:           g.failed,
		RemainingSeconds: g.remaining,
		TotalSeconds:     g.total,
	}
}
