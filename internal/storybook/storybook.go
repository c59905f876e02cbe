// Package storybook defines the domain types shared by the game engine, the
// configuration store and the HTTP layer: findable items, story parts, goody
// bag activities and the per-day operator overrides.
package storybook

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// NumDays is the number of days (scenes) in the trail.
const NumDays = 3

// DefaultCoord is used for any item coordinate that is missing or not numeric.
const DefaultCoord = 50

// ValidDay reports whether day is in 1..NumDays.
func ValidDay(day int) bool {
	return day >= 1 && day <= NumDays
}

// Position is a point in scene coordinates, each axis 0..100.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// FindableItem is a tappable target hidden in a day's scene.
type FindableItem struct {
	ID       int      `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Image    string   `json:"image" yaml:"image"`
	Position Position `json:"position" yaml:"position"`
}

// UnmarshalJSON decodes an item leniently: position coordinates may be
// numbers or numeric strings, and anything else becomes DefaultCoord.
func (it *FindableItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       int             `json:"id"`
		Name     string          `json:"name"`
		Image    string          `json:"image"`
		Position json.RawMessage `json:"position"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*it = FindableItem{
		ID:       raw.ID,
		Name:     raw.Name,
		Image:    raw.Image,
		Position: decodePosition(raw.Position),
	}
	return nil
}

func decodePosition(data json.RawMessage) Position {
	var raw struct {
		X json.RawMessage `json:"x"`
		Y json.RawMessage `json:"y"`
	}
	if isNull(data) || json.Unmarshal(data, &raw) != nil {
		return Position{X: DefaultCoord, Y: DefaultCoord}
	}
	return Position{X: coerceCoord(raw.X), Y: coerceCoord(raw.Y)}
}

func coerceCoord(data json.RawMessage) float64 {
	if isNull(data) {
		return DefaultCoord
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		return finiteOr(f)
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return finiteOr(f)
		}
	}
	return DefaultCoord
}

func finiteOr(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return DefaultCoord
	}
	return f
}

func isNull(data json.RawMessage) bool {
	s := strings.TrimSpace(string(data))
	return s == "" || s == "null"
}

// StoryPart is one narrated excerpt, unlocked by the Nth item discovery.
type StoryPart struct {
	Index    int    `json:"index" yaml:"-"`
	Title    string `json:"title" yaml:"title"`
	VerseRef string `json:"verse" yaml:"verse"`
	Text     string `json:"text" yaml:"text"`
	Audio    string `json:"audio,omitempty" yaml:"audio"`
}

// HasAudio reports whether the part is narrated.
func (p StoryPart) HasAudio() bool { return p.Audio != "" }

// Activity is one goody bag entry.
type Activity struct {
	ID          string `json:"id" yaml:"id"`
	Label       string `json:"label" yaml:"label"`
	Icon        string `json:"icon,omitempty" yaml:"icon"`
	Body        string `json:"body" yaml:"body"`
	EmbedVideo  string `json:"embedVideo,omitempty" yaml:"embedVideo"`
	Download    string `json:"download,omitempty" yaml:"download"`
	DownloadURL string `json:"downloadUrl,omitempty" yaml:"downloadUrl"`
	PreviewURL  string `json:"previewUrl,omitempty" yaml:"previewUrl"`
	Link        string `json:"link,omitempty" yaml:"link"`
	Image       string `json:"image,omitempty" yaml:"image"`
}

// ListenActivityID names the activity whose link follows the day's listen URL.
const ListenActivityID = "listen"

// GoodyBag is the reward copy shown once a day is complete.
type GoodyBag struct {
	Intro       string     `json:"intro"`
	FooterQuote string     `json:"footerQuote,omitempty"`
	Activities  []Activity `json:"activities"`
}

// DayView is a day with operator overrides applied. It is everything a
// player needs to render and play the day.
type DayView struct {
	Day         int            `json:"day"`
	Title       string         `json:"title"`
	Background  string         `json:"background"`
	ListenURL   string         `json:"listenUrl"`
	ImageCredit string         `json:"imageCredit,omitempty"`
	Items       []FindableItem `json:"items"`
	Parts       []StoryPart    `json:"parts"`
	GoodyBag    GoodyBag       `json:"goodyBag"`
}
