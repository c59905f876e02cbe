// Package upload stores operator-supplied scene backgrounds and item images
// under the public uploads directory and lists what is there.
package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/playperu/eastertrail/internal/fsutil"
	"github.com/playperu/eastertrail/internal/storybook"
)

// MaxBytes caps a single uploaded file.
const MaxBytes = 20 << 20

const itemsDir = "items"

var (
	ErrInvalidSlot = errors.New("day and index must be decimal numbers")

	imageExt = regexp.MustCompile(`(?i)^\.(jpg|jpeg|png|gif|webp)$`)
	decimal  = regexp.MustCompile(`^[0-9]+$`)
	bgDay    = regexp.MustCompile(`background-day-(\d)`)
)

// Saved describes a stored upload.
type Saved struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

type Background struct {
	ID  string `json:"id"`
	URL string `json:"url"`
	Day *int   `json:"day"`
}

type Image struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Label string `json:"label"`
}

type Store struct {
	dir      string
	defaults []storybook.ItemImage
	now      func() time.Time
}

// New returns a Store rooted at dir. defaults are listed ahead of uploaded
// item images.
func New(dir string, defaults []storybook.ItemImage) *Store {
	return &Store{dir: dir, defaults: defaults, now: time.Now}
}

func (s *Store) Dir() string { return s.dir }

// safeExt keeps the client's extension when it is an image type.
func safeExt(filename, fallback string) string {
	ext := filepath.Ext(filename)
	if imageExt.MatchString(ext) {
		return ext
	}
	return fallback
}

func (s *Store) millis() string {
	return strconv.FormatInt(s.now().UnixMilli(), 10)
}

// SaveBackground stores a scene background. With a day the file is named
// background-day-N and replaces any earlier upload with the same extension.
func (s *Store) SaveBackground(day, filename string, r io.Reader) (Saved, error) {
	ext := safeExt(filename, ".jpg")
	name := "background-" + s.millis() + ext
	if day != "" {
		if !decimal.MatchString(day) {
			return Saved{}, ErrInvalidSlot
		}
		name = "background-day-" + day + ext
	}
	if err := fsutil.WriteFile(filepath.Join(s.dir, name), r, 0o644); err != nil {
		return Saved{}, fmt.Errorf("saving background: %w", err)
	}
	return Saved{URL: storybook.UploadsPrefix + name, Filename: name}, nil
}

// SaveItem stores a findable item image as day-D-item-I. Day defaults to 1
// and index to the current time in milliseconds.
func (s *Store) SaveItem(day, index, filename string, r io.Reader) (Saved, error) {
	if day == "" {
		day = "1"
	}
	if index == "" {
		index = s.millis()
	}
	if !decimal.MatchString(day) || !decimal.MatchString(index) {
		return Saved{}, ErrInvalidSlot
	}
	name := "day-" + day + "-item-" + index + safeExt(filename, ".png")
	if err := fsutil.WriteFile(filepath.Join(s.dir, itemsDir, name), r, 0o644); err != nil {
		return Saved{}, fmt.Errorf("saving item image: %w", err)
	}
	return Saved{
		URL:      storybook.UploadsPrefix + itemsDir + "/" + name,
		Filename: name,
	}, nil
}

// images lists image files in dir. A missing dir is empty.
func images(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if imageExt.MatchString(filepath.Ext(e.Name())) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

func (s *Store) ListBackgrounds() ([]Background, error) {
	names, err := images(s.dir)
	if err != nil {
		return nil, err
	}
	list := []Background{}
	for _, name := range names {
		if !strings.HasPrefix(name, "background-") {
			continue
		}
		b := Background{ID: name, URL: storybook.UploadsPrefix + name}
		if m := bgDay.FindStringSubmatch(name); m != nil {
			d, _ := strconv.Atoi(m[1])
			b.Day = &d
		}
		list = append(list, b)
	}
	return list, nil
}

func (s *Store) ListItems() ([]Image, error) {
	names, err := images(filepath.Join(s.dir, itemsDir))
	if err != nil {
		return nil, err
	}
	list := make([]Image, 0, len(s.defaults)+len(names))
	for _, d := range s.defaults {
		list = append(list, Image{ID: d.URL, URL: d.URL, Label: d.Label})
	}
	for _, name := range names {
		u := storybook.UploadsPrefix + itemsDir + "/" + name
		list = append(list, Image{ID: u, URL: u, Label: name})
	}
	return list, nil
}

// Check reports whether the uploads directory is usable.
func (s *Store) Check() error {
	return os.MkdirAll(s.dir, 0o755)
}
