package configstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/playperu/eastertrail/internal/fsutil"
	"github.com/playperu/eastertrail/internal/storybook"
)

const FileName = "site-config.json"

// FileStore keeps the record in DIR/site-config.json. Merges hold an
// advisory lock on a sibling lock file so several processes sharing the
// directory serialize.
type FileStore struct {
	path string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, FileName)}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) read() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	return data, nil
}

func (s *FileStore) Load(_ context.Context) (storybook.SiteConfig, error) {
	data, err := s.read()
	if err != nil {
		return storybook.SiteConfig{}, err
	}
	return decode(data)
}

func (s *FileStore) Merge(_ context.Context, p Patch) (storybook.SiteConfig, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return storybook.SiteConfig{}, fmt.Errorf("creating config dir: %w", err)
	}
	unlock, err := fsutil.Lock(s.path + ".lock")
	if err != nil {
		return storybook.SiteConfig{}, err
	}
	defer unlock()

	current, err := s.read()
	if err != nil {
		return storybook.SiteConfig{}, err
	}
	cfg, out, err := merge(current, p)
	if err != nil {
		return cfg, err
	}
	if err := fsutil.WriteFile(s.path, bytes.NewReader(out), 0o644); err != nil {
		return cfg, fmt.Errorf("saving site config: %w", err)
	}
	return cfg, nil
}

// Check reports whether the config directory is usable.
func (s *FileStore) Check(_ context.Context) error {
	return os.MkdirAll(filepath.Dir(s.path), 0o755)
}
