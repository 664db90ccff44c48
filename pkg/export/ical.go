package export

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattismoel/icalendar"
	"github.com/mattismoel/icalendar/types"

	"github.com/mattismoel/stineplan/pkg/calendar"
	"github.com/mattismoel/stineplan/pkg/stine"
)

const (
	DefaultICalPath = "data/timetable.ics"

	icalCoorperation = "Uni Hamburg"
	icalProduct      = "stineplan"
)

// ICalEvents converts every occurrence inside the window to an iCalendar event.
// Times are in UTC, which is how the events are written.
func ICalEvents(modules []stine.Module, cfg calendar.Config) []*types.ICalEvent {
	occurrences := calendar.Occurrences(modules, cfg)
	events := make([]*types.ICalEvent, 0, len(occurrences))
	for _, o := range occurrences {
		events = append(events, &types.ICalEvent{
			UID:         o.ID + "@stineplan",
			Summary:     o.Summary(),
			StartDate:   o.Start().UTC(),
			EndDate:     o.End().UTC(),
			Description: description(o),
		})
	}
	return events
}

func description(o calendar.Occurrence) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)", o.Module.Name, o.Module.ShortName)
	if o.Module.Credits > 0 {
		fmt.Fprintf(&b, ", %g LP", o.Module.Credits)
	}
	return b.String()
}

// WriteICal writes events to a fresh .ics file at path.
func WriteICal(path string, events []*types.ICalEvent) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("could not create output directory: %w", err)
	}
	// The calendar is appended to an existing file.
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("could not replace %s: %w", path, err)
	}

	ical := icalendar.New(icalProduct, icalCoorperation, path)
	ical.Events = append(ical.Events, events...)
	if err := ical.Update(); err != nil {
		return fmt.Errorf("could not write to %s: %w", path, err)
	}
	return nil
}
