// Package goodybag presents the post-completion reward panel: a fixed list
// of family activities, one of which may be expanded at a time.
package goodybag

import (
	"errors"
	"strings"

	"github.com/playperu/eastertrail/internal/storybook"
)

var ErrUnknownActivity = errors.New("unknown activity")

// Presenter holds the panel's open flag and the expanded activity. It knows
// nothing about the game; callers decide when it may open.
type Presenter struct {
	bag    storybook.GoodyBag
	open   bool
	active string
}

func New(bag storybook.GoodyBag) *Presenter {
	return &Presenter{bag: bag}
}

func (p *Presenter) Open() { p.open = true }

// Close hides the panel and collapses any expanded activity.
func (p *Presenter) Close() {
	p.open = false
	p.active = ""
}

func (p *Presenter) IsOpen() bool { return p.open }

// Toggle expands the activity with id, or collapses it if it is already
// expanded. Expanding one activity collapses the previous one.
func (p *Presenter) Toggle(id string) error {
	if _, ok := p.find(id); !ok {
		return ErrUnknownActivity
	}
	if p.active == id {
		p.active = ""
		return nil
	}
	p.active = id
	return nil
}

func (p *Presenter) find(id string) (storybook.Activity, bool) {
	for _, a := range p.bag.Activities {
		if a.ID == id {
			return a, true
		}
	}
	return storybook.Activity{}, false
}

// View is the renderable state of the panel.
type View struct {
	Open        bool                 `json:"open"`
	Intro       string               `json:"intro"`
	FooterQuote string               `json:"footerQuote,omitempty"`
	Activities  []storybook.Activity `json:"activities"`
	Active      *ActiveActivity      `json:"active,omitempty"`
}

// ActiveActivity is the expanded activity plus what to show above its text.
type ActiveActivity struct {
	storybook.Activity
	// Preview is the image shown for a downloadable PDF with no picture.
	Preview string `json:"preview,omitempty"`
}

func (p *Presenter) View() View {
	v := View{
		Open:        p.open,
		Intro:       p.bag.Intro,
		FooterQuote: p.bag.FooterQuote,
		Activities:  p.bag.Activities,
	}
	if v.Activities == nil {
		v.Activities = []storybook.Activity{}
	}
	if a, ok := p.find(p.active); ok && p.open {
		v.Active = &ActiveActivity{Activity: a}
		if a.Image == "" && strings.HasSuffix(strings.ToLower(a.DownloadURL), ".pdf") {
			v.Active.Preview = a.PreviewURL
		}
	}
	return v
}
