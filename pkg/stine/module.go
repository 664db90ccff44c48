package stine

import (
	"errors"
	"time"
)

type EventType string

const (
	Lecture  EventType = "lecture"
	Seminar  EventType = "seminar"
	Exercise EventType = "exercise"
)

// The login information of the student. Both fields are required.
type LoginInfo struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

var ErrMissingCredentials = errors.New("missing STiNE username or password")

func (l LoginInfo) Validate() error {
	if l.Username == "" || l.Password == "" {
		return ErrMissingCredentials
	}
	return nil
}

// A single occurrence of an event.
type EventDate struct {
	Date     time.Time `json:"date"`     // Midnight of the day the event takes place on
	Start    int       `json:"start"`    // Minutes from midnight (eg. 600 for 10:00)
	Duration int       `json:"duration"` // Length in minutes
}

// End returns the end of the occurrence in minutes from midnight.
func (d EventDate) End() int {
	return d.Start + d.Duration
}

// StartTime returns the occurrence start as a point in time, in wall clock
// minutes of the date's location.
func (d EventDate) StartTime() time.Time {
	return d.at(d.Start)
}

func (d EventDate) EndTime() time.Time {
	return d.at(d.End())
}

func (d EventDate) at(minutes int) time.Time {
	return time.Date(d.Date.Year(), d.Date.Month(), d.Date.Day(), 0, minutes, 0, 0, d.Date.Location())
}

type Event struct {
	Type  EventType   `json:"type"`
	Dates []EventDate `json:"dates"`
}

// Module is one enrolled course.
type Module struct {
	Name      string  `json:"name"`      // Title of the module (eg. "Grundlagen der Systemsoftware")
	ShortName string  `json:"shortName"` // Compact identifier (eg. "InfB-GSS")
	Credits   float64 `json:"credits"`
	Events    []Event `json:"events"`
}
