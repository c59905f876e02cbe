package storybook

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Override fields. A stored key is the field name followed by "Day" and the
// day number, e.g. "backgroundDay2".
const (
	FieldListenURL   = "listenUrl"
	FieldBackground  = "background"
	FieldItems       = "items"
	FieldImageCredit = "imageCredit"
)

var fields = []string{FieldListenURL, FieldBackground, FieldItems, FieldImageCredit}

// ErrUnknownKey is returned by Set for keys outside the override schema.
var ErrUnknownKey = errors.New("unknown config key")

// DayOverrides holds the operator's overrides for one day. A nil field means
// "use the built-in default".
type DayOverrides struct {
	ListenURL   *string
	Background  *string
	Items       []FindableItem
	ImageCredit *string
}

// SiteConfig is the whole operator-editable record.
type SiteConfig struct {
	Days [NumDays]DayOverrides
}

// Day returns the overrides for day (1-based). Out-of-range days are empty.
func (c SiteConfig) Day(day int) DayOverrides {
	if !ValidDay(day) {
		return DayOverrides{}
	}
	return c.Days[day-1]
}

// Key builds the stored key for field on day.
func Key(field string, day int) string {
	return field + "Day" + strconv.Itoa(day)
}

// Keys lists every key of the override schema in a stable order.
func Keys() []string {
	keys := make([]string, 0, len(fields)*NumDays)
	for _, f := range fields {
		for day := 1; day <= NumDays; day++ {
			keys = append(keys, Key(f, day))
		}
	}
	return keys
}

// ParseKey splits a stored key into its field and day.
func ParseKey(key string) (field string, day int, ok bool) {
	i := strings.LastIndex(key, "Day")
	if i <= 0 {
		return "", 0, false
	}
	field = key[:i]
	day, err := strconv.Atoi(key[i+3:])
	if err != nil || !ValidDay(day) {
		return "", 0, false
	}
	for _, f := range fields {
		if f == field {
			return field, day, true
		}
	}
	return "", 0, false
}

// Set replaces the value stored under key with the raw JSON value. Empty
// strings and null clear a text field; anything other than an array clears
// an item list. Items are normalised as they are decoded.
func (c *SiteConfig) Set(key string, value json.RawMessage) error {
	field, day, ok := ParseKey(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	o := &c.Days[day-1]

	if field == FieldItems {
		if !isArray(value) {
			o.Items = nil
			return nil
		}
		var items []FindableItem
		if err := json.Unmarshal(value, &items); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		o.Items = items
		return nil
	}

	var s *string
	if !isNull(value) {
		var v string
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("%s: expected string: %w", key, err)
		}
		if v != "" {
			s = &v
		}
	}
	switch field {
	case FieldListenURL:
		o.ListenURL = s
	case FieldBackground:
		o.Background = s
	case FieldImageCredit:
		o.ImageCredit = s
	}
	return nil
}

func isArray(data json.RawMessage) bool {
	s := strings.TrimSpace(string(data))
	return strings.HasPrefix(s, "[")
}

// MarshalJSON writes the flat record, with null for unset fields.
func (c SiteConfig) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(fields)*NumDays)
	for day := 1; day <= NumDays; day++ {
		o := c.Days[day-1]
		m[Key(FieldListenURL, day)] = o.ListenURL
		m[Key(FieldBackground, day)] = o.Background
		m[Key(FieldImageCredit, day)] = o.ImageCredit
		if o.Items == nil {
			m[Key(FieldItems, day)] = nil
		} else {
			m[Key(FieldItems, day)] = o.Items
		}
	}
	return json.Marshal(m)
}

// UnmarshalJSON reads the flat record. Unknown keys are ignored so records
// written by older builds still load.
func (c *SiteConfig) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var next SiteConfig
	for key, value := range raw {
		if err := next.Set(key, value); err != nil {
			if errors.Is(err, ErrUnknownKey) {
				continue
			}
			return err
		}
	}
	*c = next
	return nil
}
