package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattismoel/stineplan/pkg/stine"
	"github.com/mattismoel/stineplan/util"
)

const DefaultPath = "data/modules.json"

// Repository keeps extracted modules on disk so the portal only has to be
// crawled once.
type Repository struct {
	Path   string
	MaxAge time.Duration // Files older than this count as missing. Zero keeps them forever.
}

func New(path string, maxAge time.Duration) *Repository {
	if path == "" {
		path = DefaultPath
	}
	return &Repository{Path: path, MaxAge: maxAge}
}

// cachedDate accepts both RFC 3339 timestamps and plain dates.
type cachedDate struct {
	time.Time
}

func (d *cachedDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, stine.Location)
	if err != nil {
		return fmt.Errorf("invalid date %q", s)
	}
	d.Time = t
	return nil
}

type cachedEventDate struct {
	Date     cachedDate `json:"date"`
	Start    int        `json:"start"`
	Duration int        `json:"duration"`
}

type cachedEvent struct {
	Type  stine.EventType   `json:"type"`
	Dates []cachedEventDate `json:"dates"`
}

type cachedModule struct {
	Name      string        `json:"name"`
	ShortName string        `json:"shortName"`
	Credits   float64       `json:"credits"`
	Events    []cachedEvent `json:"events"`
}

// Load reads the cached modules. ok is false when there is no usable cache,
// which is not an error.
func (r *Repository) Load() (modules []stine.Module, ok bool, err error) {
	info, err := os.Stat(r.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("could not stat cache: %w", err)
	}
	if r.MaxAge > 0 && time.Since(info.ModTime()) > r.MaxAge {
		return nil, false, nil
	}

	data, err := os.ReadFile(r.Path)
	if err != nil {
		return nil, false, fmt.Errorf("could not read cache: %w", err)
	}

	var cached []cachedModule
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false, fmt.Errorf("could not parse cache %s: %w", r.Path, err)
	}

	modules = make([]stine.Module, 0, len(cached))
	for _, c := range cached {
		module := stine.Module{
			Name:      c.Name,
			ShortName: c.ShortName,
			Credits:   c.Credits,
			Events:    make([]stine.Event, 0, len(c.Events)),
		}
		for _, e := range c.Events {
			event := stine.Event{Type: e.Type, Dates: make([]stine.EventDate, 0, len(e.Dates))}
			for _, d := range e.Dates {
				event.Dates = append(event.Dates, stine.EventDate{
					// Older caches store midnight Berlin as a UTC instant.
					Date:     util.RoundDateToDay(d.Date.In(stine.Location)),
					Start:    d.Start,
					Duration: d.Duration,
				})
			}
			module.Events = append(module.Events, event)
		}
		modules = append(modules, module)
	}
	return modules, true, nil
}

// Store writes modules to the cache file, creating its directory if needed.
func (r *Repository) Store(modules []stine.Module) error {
	if modules == nil {
		modules = []stine.Module{}
	}
	data, err := json.MarshalIndent(modules, "", "  ")
	if err != nil {
		return fmt.Errorf("could not serialize modules: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.Path), 0755); err != nil {
		return fmt.Errorf("could not create cache directory: %w", err)
	}
	if err := os.WriteFile(r.Path, data, 0644); err != nil {
		return fmt.Errorf("could not write cache: %w", err)
	}
	return nil
}

// Clear removes the cache file. A missing file is not an error.
func (r *Repository) Clear() error {
	err := os.Remove(r.Path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
