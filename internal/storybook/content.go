package storybook

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var contentYAML []byte

// ItemImage is a built-in image offered for reuse in the admin media library.
type ItemImage struct {
	URL   string `yaml:"url" json:"url"`
	Label string `yaml:"label" json:"label"`
}

// DayContent is the compiled-in script for one day.
type DayContent struct {
	Day         int            `yaml:"day"`
	Title       string         `yaml:"title"`
	Background  string         `yaml:"background"`
	FooterQuote string         `yaml:"footerQuote"`
	Items       []FindableItem `yaml:"items"`
	Parts       []StoryPart    `yaml:"parts"`
	Activities  []Activity     `yaml:"activities"`
}

// Content is the full compiled-in script.
type Content struct {
	Title         string       `yaml:"title"`
	ListenURL     string       `yaml:"listenUrl"`
	GoodyBagIntro string       `yaml:"goodyBagIntro"`
	ItemImages    []ItemImage  `yaml:"itemImages"`
	Days          []DayContent `yaml:"days"`
}

// Day returns the content for day, or false if the script has none.
func (c *Content) Day(day int) (DayContent, bool) {
	for _, d := range c.Days {
		if d.Day == day {
			return d, true
		}
	}
	return DayContent{}, false
}

// LoadContent returns the embedded script.
func LoadContent() (*Content, error) {
	return ParseContent(contentYAML)
}

// MustLoadContent is LoadContent for package-level initialisation.
func MustLoadContent() *Content {
	c, err := LoadContent()
	if err != nil {
		panic(err)
	}
	return c
}

// ParseContent decodes and validates a script. Story parts are numbered
// from 1 in file order and titled "Part N" unless a title is given.
func ParseContent(data []byte) (*Content, error) {
	var c Content
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing content: %w", err)
	}
	seen := make(map[int]bool, len(c.Days))
	for i := range c.Days {
		d := &c.Days[i]
		if !ValidDay(d.Day) {
			return nil, fmt.Errorf("content: day %d out of range", d.Day)
		}
		if seen[d.Day] {
			return nil, fmt.Errorf("content: day %d defined twice", d.Day)
		}
		seen[d.Day] = true
		for j := range d.Parts {
			p := &d.Parts[j]
			p.Index = j + 1
			p.Text = strings.TrimSpace(p.Text)
			if p.Title == "" {
				p.Title = fmt.Sprintf("Part %d", p.Index)
			}
		}
	}
	return &c, nil
}
