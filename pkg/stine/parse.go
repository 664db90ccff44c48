package stine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Location is the time zone STiNE reports dates and times in.
var Location = loadLocation("Europe/Berlin")

func loadLocation(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return location
}

var months = map[string]time.Month{
	"Jan": time.January,
	"Feb": time.February,
	"Mär": time.March,
	"Mrz": time.March,
	"Mar": time.March,
	"Apr": time.April,
	"Mai": time.May,
	"May": time.May,
	"Jun": time.June,
	"Jul": time.July,
	"Aug": time.August,
	"Sep": time.September,
	"Okt": time.October,
	"Oct": time.October,
	"Nov": time.November,
	"Dez": time.December,
	"Dec": time.December,
}

var dateRegex = regexp.MustCompile(`^(\d{1,2})\.\s*(\p{L}{3})\p{L}*\.?\s+(\d{4})$`)

// ParseDate parses a STiNE date cell such as "Mo, 16. Okt. 2023" into midnight
// of that day in Location. The weekday prefix is optional.
func ParseDate(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	if i := strings.LastIndex(text, ", "); i >= 0 {
		text = strings.TrimSpace(text[i+2:])
	}

	match := dateRegex.FindStringSubmatch(text)
	if match == nil {
		return time.Time{}, fmt.Errorf("unrecognised date %q", text)
	}

	day, err := strconv.Atoi(match[1])
	if err != nil {
		return time.Time{}, err
	}
	month, ok := months[cases.Title(language.German).String(match[2])]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown month %q in %q", match[2], text)
	}
	year, err := strconv.Atoi(match[3])
	if err != nil {
		return time.Time{}, err
	}

	date := time.Date(year, month, day, 0, 0, 0, 0, Location)
	if date.Day() != day {
		return time.Time{}, fmt.Errorf("day out of range in %q", text)
	}
	return date, nil
}

// ParseClock converts "HH:MM" into minutes from midnight.
func ParseClock(text string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", text, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

var creditsRegex = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// ParseCredits parses the first number in text, accepting a decimal comma
// ("7,5 LP" is 7.5).
func ParseCredits(text string) (float64, error) {
	number := creditsRegex.FindString(text)
	if number == "" {
		return 0, fmt.Errorf("invalid credits %q", strings.TrimSpace(text))
	}
	return strconv.ParseFloat(strings.ReplaceAll(number, ",", "."), 64)
}

// parseDateRow turns the cells of a schedule row into an occurrence.
func parseDateRow(dateText, startText, endText string) (EventDate, error) {
	date, err := ParseDate(dateText)
	if err != nil {
		return EventDate{}, err
	}
	start, err := ParseClock(startText)
	if err != nil {
		return EventDate{}, err
	}
	end, err := ParseClock(endText)
	if err != nil {
		return EventDate{}, err
	}
	if end < start {
		return EventDate{}, fmt.Errorf("end %s before start %s", endText, startText)
	}

	return EventDate{
		Date:     date,
		Start:    start,
		Duration: end - start,
	}, nil
}
