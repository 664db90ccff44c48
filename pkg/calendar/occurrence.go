package calendar

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/mattismoel/stineplan/pkg/stine"
	"github.com/mattismoel/stineplan/util"
)

// IDPrefix starts every occurrence ID. It only uses characters that Google
// Calendar accepts in event IDs.
const IDPrefix = "stn"

// Occurrence is a single event date of a module, as exported to calendar
// applications.
type Occurrence struct {
	ID         string
	Module     stine.Module
	EventIndex int
	Type       stine.EventType
	Date       stine.EventDate
}

func (o Occurrence) Start() time.Time {
	return o.Date.StartTime()
}

func (o Occurrence) End() time.Time {
	return o.Date.EndTime()
}

// Summary is the title of the occurrence, eg. "ABC (VL) Algorithmen".
func (o Occurrence) Summary() string {
	tag := Tag(o.Module, stine.Event{Type: o.Type})
	if o.Module.Name == "" {
		return tag
	}
	return tag + " " + o.Module.Name
}

// OccurrenceID derives a stable ID from the module, the index of the event in
// the module and the date. The same schedule always yields the same IDs.
func OccurrenceID(shortName string, eventIndex int, date stine.EventDate) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%s|%d|%s|%d", shortName, eventIndex, util.DayKey(date.Date), date.Start)))
	return IDPrefix + hex.EncodeToString(sum[:])
}

// Contains reports whether date lies inside the window of the config. A
// config without a day count has no window.
func (c Config) Contains(date time.Time) bool {
	if c.DayCount <= 0 {
		return true
	}
	start := util.RoundDateToDay(c.StartDate)
	key := util.DayKey(date)
	return key >= util.DayKey(start) && key < util.DayKey(start.AddDate(0, 0, c.DayCount))
}

// Occurrences lists every event date of the modules that are not excluded and
// lie inside the window, in module order.
func Occurrences(modules []stine.Module, cfg Config) []Occurrence {
	occurrences := []Occurrence{}
	for _, module := range modules {
		if cfg.Excluded(module.ShortName) {
			continue
		}
		for i, event := range module.Events {
			for _, date := range event.Dates {
				if !cfg.Contains(date.Date) {
					continue
				}
				occurrences = append(occurrences, Occurrence{
					ID:         OccurrenceID(module.ShortName, i, date),
					Module:     module,
					EventIndex: i,
					Type:       event.Type,
					Date:       date,
				})
			}
		}
	}
	return occurrences
}
