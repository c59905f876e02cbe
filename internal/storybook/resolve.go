package storybook

import (
	"slices"
	"strings"
)

// UploadsPrefix is the URL path under which uploaded files are served.
const UploadsPrefix = "/uploads/"

// BackgroundURL turns a stored background reference into a URL. Absolute
// URLs and rooted paths pass through; a bare filename is an upload.
func BackgroundURL(ref string) string {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return ""
	case strings.HasPrefix(ref, "http"), strings.HasPrefix(ref, "/"):
		return ref
	default:
		return UploadsPrefix + ref
	}
}

// Resolve applies the operator overrides for day on top of the built-in
// content. Every override falls back to the default when unset or empty,
// so a day is always playable.
func (c *Content) Resolve(day int, cfg SiteConfig) (DayView, bool) {
	dc, ok := c.Day(day)
	if !ok {
		return DayView{}, false
	}
	o := cfg.Day(day)

	v := DayView{
		Day:        day,
		Title:      dc.Title,
		Background: dc.Background,
		ListenURL:  c.ListenURL,
		Items:      slices.Clone(dc.Items),
		Parts:      slices.Clone(dc.Parts),
	}
	if o.Background != nil {
		if u := BackgroundURL(*o.Background); u != "" {
			v.Background = u
		}
	}
	if o.ListenURL != nil && strings.TrimSpace(*o.ListenURL) != "" {
		v.ListenURL = strings.TrimSpace(*o.ListenURL)
	}
	if o.ImageCredit != nil {
		v.ImageCredit = strings.TrimSpace(*o.ImageCredit)
	}
	if len(o.Items) > 0 {
		v.Items = slices.Clone(o.Items)
	}

	v.GoodyBag = GoodyBag{
		Intro:       c.GoodyBagIntro,
		FooterQuote: dc.FooterQuote,
		Activities:  make([]Activity, len(dc.Activities)),
	}
	for i, a := range dc.Activities {
		if a.ID == ListenActivityID {
			a.Link = v.ListenURL
		}
		v.GoodyBag.Activities[i] = a
	}
	return v, true
}
