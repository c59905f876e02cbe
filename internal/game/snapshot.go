package game

import (
	"time"

	"github.com/playperu/eastertrail/internal/goodybag"
	"github.com/playperu/eastertrail/internal/storybook"
)

// State is a read-only view of a session, shaped for rendering. CanFinish
// is set when the open story part offers the goody bag; GoodyBagReady when
// the toolbar may reopen it.
type State struct {
	Day           int                  `json:"day"`
	Phase         Phase                `json:"phase"`
	Discovered    []int                `json:"discovered"`
	TotalItems    int                  `json:"totalItems"`
	UnlockedParts int                  `json:"unlockedParts"`
	Complete      bool                 `json:"complete"`
	ActivePart    *storybook.StoryPart `json:"activePart,omitempty"`
	Audio         *AudioState          `json:"audio,omitempty"`
	CanDismiss    bool                 `json:"canDismiss"`
	CanFinish     bool                 `json:"canFinish"`
	GoodyBagReady bool                 `json:"goodyBagReady"`
	Hint          *Hint                `json:"hint,omitempty"`
	Pan           storybook.Position   `json:"pan"`
	Celebrating   bool                 `json:"celebrating"`
	GoodyBag      goodybag.View        `json:"goodyBag"`
}

type Hint struct {
	ItemID    int       `json:"itemId"`
	Bearing   float64   `json:"bearing"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Session) Snapshot() State {
	now := s.advance()
	st := State{
		Day:           s.day,
		Phase:         s.phase,
		Discovered:    append([]int{}, s.found...),
		TotalItems:    len(s.items),
		UnlockedParts: s.Unlocked(),
		Complete:      s.Complete(),
		CanFinish:     s.rewardReady(),
		GoodyBagReady: s.phase == PhaseExploring && s.Complete(),
		Pan:           s.pan,
		Celebrating:   now.Before(s.celebrateUntil),
		GoodyBag:      s.bag.View(),
	}
	if s.phase == PhaseStory {
		part := s.parts[s.active-1]
		st.ActivePart = &part
		audio := s.audio.state()
		st.Audio = &audio
		st.CanDismiss = s.audio.isOpen()
	}
	if h, ok := s.HintDirection(); ok {
		st.Hint = &h
	}
	return st
}

// HintDirection returns the active hint, with the bearing from the current
// view centre to the hinted item.
func (s *Session) HintDirection() (Hint, bool) {
	s.advance()
	if !s.hinting {
		return Hint{}, false
	}
	it, ok := s.item(s.hint)
	if !ok {
		return Hint{}, false
	}
	return Hint{
		ItemID:    it.ID,
		Bearing:   Bearing(s.pan, it.Position),
		ExpiresAt: s.hintUntil,
	}, true
}
