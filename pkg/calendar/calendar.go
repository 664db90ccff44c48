package calendar

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mattismoel/stineplan/pkg/stine"
	"github.com/mattismoel/stineplan/util"
)

// BlockCount is the number of two hour blocks per day, starting at 08:00.
const BlockCount = 5

const firstBlockHour = 8

type Block []string

type Day struct {
	Date   time.Time
	Blocks [BlockCount]Block
}

// Calendar holds one Day per date of the requested window, in date order.
type Calendar []Day

type Config struct {
	ExcludedModules []string  // Modules whose short name contains any of these are left out
	StartDate       time.Time // First day of the calendar
	DayCount        int
}

var ErrInvalidDayCount = errors.New("day count must be positive")

func (c Config) Validate() error {
	if c.DayCount <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDayCount, c.DayCount)
	}
	return nil
}

// Excluded reports whether the module with the given short name is left out
// of the calendar.
func (c Config) Excluded(shortName string) bool {
	for _, excluded := range c.ExcludedModules {
		if excluded != "" && strings.Contains(shortName, excluded) {
			return true
		}
	}
	return false
}

// BlockIndex maps a start time in minutes from midnight to its block.
// ok is false for times before 08:00 or from 18:00 on.
func BlockIndex(start int) (index int, ok bool) {
	if start < 0 {
		return 0, false
	}
	index = start/60/2 - firstBlockHour/2
	return index, index >= 0 && index < BlockCount
}

// Tag returns the short description of a module's event type, eg. "ABC (VL)".
func Tag(module stine.Module, event stine.Event) string {
	kind := "Uebung"
	if event.Type == stine.Lecture {
		kind = "VL"
	}
	return fmt.Sprintf("%s (%s)", module.ShortName, kind)
}

// Label returns the block entry of the i'th event of a module.
func Label(i int, module stine.Module, event stine.Event) string {
	return fmt.Sprintf("%d %s", i, Tag(module, event))
}

type Builder struct {
	config Config
	logger *slog.Logger
}

func NewBuilder(config Config, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{config: config, logger: logger}
}

// Build places every event date of the modules into the calendar window.
// Dates outside the window or outside the block hours are dropped. A block
// never holds two labels for the same module and event type.
func (b *Builder) Build(modules []stine.Module) (Calendar, error) {
	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	start := util.RoundDateToDay(b.config.StartDate)
	calendar := make(Calendar, b.config.DayCount)
	days := make(map[string]int, b.config.DayCount)
	for i := range calendar {
		date := start.AddDate(0, 0, i)
		calendar[i] = Day{Date: date}
		days[util.DayKey(date)] = i
	}

	for _, module := range modules {
		if b.config.Excluded(module.ShortName) {
			b.logger.Info("skipping module", "module", module.ShortName)
			continue
		}

		for i, event := range module.Events {
			for _, date := range event.Dates {
				d, ok := days[util.DayKey(date.Date)]
				if !ok {
					b.logger.Debug("no day found for date", "module", module.ShortName, "date", date.Date.Format("02.01.2006"))
					continue
				}

				index, ok := BlockIndex(date.Start)
				if !ok {
					b.logger.Debug("no block found for date", "module", module.ShortName, "date", date.Date.Format("02.01.2006"), "start", date.Start)
					continue
				}

				block := &calendar[d].Blocks[index]
				if block.contains(Tag(module, event)) {
					continue
				}
				*block = append(*block, Label(i, module, event))
			}
		}
	}

	return calendar, nil
}

func (b Block) contains(tag string) bool {
	for _, label := range b {
		if strings.Contains(label, tag) {
			return true
		}
	}
	return false
}

// Table flattens the calendar into rows of a date column followed by one
// column per block. A day takes as many rows as its fullest block.
func (c Calendar) Table() [][]string {
	var table [][]string
	for _, day := range c {
		rows := 1
		for _, block := range day.Blocks {
			rows = max(rows, len(block))
		}

		for r := 0; r < rows; r++ {
			row := make([]string, 0, BlockCount+1)
			if r == 0 {
				row = append(row, day.Date.Format("02.01.2006"))
			} else {
				row = append(row, "")
			}
			for _, block := range day.Blocks {
				if r < len(block) {
					row = append(row, block[r])
				} else {
					row = append(row, "")
				}
			}
			table = append(table, row)
		}
	}
	return table
}
