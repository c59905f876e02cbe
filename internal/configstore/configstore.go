// Package configstore persists the operator's site configuration.
//
// The record is a flat JSON object (see storybook.SiteConfig). Writers send
// partial patches; each patch is merged into the stored record under a lock
// so concurrent saves of different keys do not lose each other.
package configstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/playperu/eastertrail/internal/storybook"
)

// Store is implemented by every backend.
type Store interface {
	Load(ctx context.Context) (storybook.SiteConfig, error)
	// Merge applies p to the stored record and returns the result.
	Merge(ctx context.Context, p Patch) (storybook.SiteConfig, error)
}

var ErrInvalidPatch = errors.New("config patch must be a JSON object")

// Patch maps record keys to raw JSON values. Keys outside the record's
// schema are dropped when the patch is applied.
type Patch map[string]json.RawMessage

func ParsePatch(data []byte) (Patch, error) {
	var p Patch
	if err := json.Unmarshal(data, &p); err != nil || p == nil {
		return nil, ErrInvalidPatch
	}
	return p, nil
}

// Apply writes p onto cfg.
func (p Patch) Apply(cfg *storybook.SiteConfig) error {
	for key, value := range p {
		if err := cfg.Set(key, value); err != nil {
			if errors.Is(err, storybook.ErrUnknownKey) {
				continue
			}
			return fmt.Errorf("%w: %w", ErrInvalidPatch, err)
		}
	}
	return nil
}

func decode(data []byte) (storybook.SiteConfig, error) {
	var cfg storybook.SiteConfig
	if len(data) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decoding site config: %w", err)
	}
	return cfg, nil
}

// merge is the read-modify-write step shared by the backends.
func merge(current []byte, p Patch) (storybook.SiteConfig, []byte, error) {
	cfg, err := decode(current)
	if err != nil {
		return cfg, nil, err
	}
	if err := p.Apply(&cfg); err != nil {
		return cfg, nil, err
	}
	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return cfg, nil, fmt.Errorf("encoding site config: %w", err)
	}
	return cfg, out, nil
}
