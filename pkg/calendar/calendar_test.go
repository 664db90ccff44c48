package calendar

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattismoel/stineplan/pkg/stine"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, stine.Location)
}

func quietBuilder(cfg Config) *Builder {
	return NewBuilder(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func lecture(dates ...stine.EventDate) stine.Event {
	return stine.Event{Type: stine.Lecture, Dates: dates}
}

func exercise(dates ...stine.EventDate) stine.Event {
	return stine.Event{Type: stine.Exercise, Dates: dates}
}

func TestBlockIndex(t *testing.T) {
	tests := []struct {
		start int
		index int
		ok    bool
	}{
		{480, 0, true},
		{599, 0, true},
		{600, 1, true},
		{720, 2, true},
		{959, 3, true},
		{960, 4, true},
		{1079, 4, true},
		{1080, 0, false},
		{479, 0, false},
		{0, 0, false},
		{-30, 0, false},
	}
	for _, tt := range tests {
		index, ok := BlockIndex(tt.start)
		assert.Equal(t, tt.ok, ok, "start %d", tt.start)
		if tt.ok {
			assert.Equal(t, tt.index, index, "start %d", tt.start)
		}
	}
}

func TestBuildSingleLecture(t *testing.T) {
	modules := []stine.Module{{
		ShortName: "ABC",
		Events: []stine.Event{
			lecture(stine.EventDate{Date: day(2023, time.October, 16), Start: 480, Duration: 90}),
		},
	}}

	cal, err := quietBuilder(Config{StartDate: day(2023, time.October, 15), DayCount: 3}).Build(modules)
	require.NoError(t, err)
	require.Len(t, cal, 3)

	for i, d := range cal {
		assert.True(t, day(2023, time.October, 15+i).Equal(d.Date))
		for b, block := range d.Blocks {
			if i == 1 && b == 0 {
				require.Len(t, block, 1)
				assert.True(t, strings.HasSuffix(block[0], "ABC (VL)"))
				assert.Equal(t, "0 ABC (VL)", block[0])
				continue
			}
			assert.Empty(t, block, "day %d block %d", i, b)
		}
	}
}

func TestBuildExcludesModules(t *testing.T) {
	date := stine.EventDate{Date: day(2023, time.October, 16), Start: 600, Duration: 90}
	modules := []stine.Module{
		{ShortName: "InfB-ATI", Events: []stine.Event{lecture(date)}},
		{ShortName: "MAKS-2", Events: []stine.Event{exercise(date)}},
		{ShortName: "InfB-SE1", Events: []stine.Event{lecture(date)}},
	}

	cal, err := quietBuilder(Config{
		ExcludedModules: []string{"ATI", "CN", "STO2", "EML", "MAKS"},
		StartDate:       day(2023, time.October, 16),
		DayCount:        1,
	}).Build(modules)
	require.NoError(t, err)

	for _, d := range cal {
		for _, block := range d.Blocks {
			for _, label := range block {
				assert.NotContains(t, label, "ATI")
				assert.NotContains(t, label, "MAKS")
			}
		}
	}
	assert.Equal(t, Block{"0 InfB-SE1 (VL)"}, cal[0].Blocks[1])
}

func TestBuildDeduplicates(t *testing.T) {
	modules := []stine.Module{{
		ShortName: "ABC",
		Events: []stine.Event{
			lecture(
				stine.EventDate{Date: day(2023, time.October, 16), Start: 600, Duration: 45},
				stine.EventDate{Date: day(2023, time.October, 16), Start: 660, Duration: 45},
			),
			exercise(stine.EventDate{Date: day(2023, time.October, 16), Start: 615, Duration: 90}),
			exercise(stine.EventDate{Date: day(2023, time.October, 16), Start: 600, Duration: 90}),
		},
	}}

	cal, err := quietBuilder(Config{StartDate: day(2023, time.October, 16), DayCount: 1}).Build(modules)
	require.NoError(t, err)

	assert.Equal(t, Block{"0 ABC (VL)", "1 ABC (Uebung)"}, cal[0].Blocks[1])
}

func TestBuildWindowAndBlockClipping(t *testing.T) {
	modules := []stine.Module{{
		ShortName: "ABC",
		Events: []stine.Event{
			lecture(
				stine.EventDate{Date: day(2023, time.October, 14), Start: 600, Duration: 90},
				stine.EventDate{Date: day(2023, time.October, 18), Start: 600, Duration: 90},
				stine.EventDate{Date: day(2023, time.October, 16), Start: 1080, Duration: 90},
				stine.EventDate{Date: day(2023, time.October, 16), Start: 420, Duration: 90},
				stine.EventDate{Date: day(2023, time.October, 17), Start: 1000, Duration: 60},
			),
		},
	}}

	cal, err := quietBuilder(Config{StartDate: day(2023, time.October, 15), DayCount: 3}).Build(modules)
	require.NoError(t, err)

	var labels int
	for _, d := range cal {
		for _, block := range d.Blocks {
			labels += len(block)
		}
	}
	assert.Equal(t, 1, labels)
	assert.Equal(t, Block{"0 ABC (VL)"}, cal[2].Blocks[4])
}

func TestBuildIsIdempotent(t *testing.T) {
	modules := []stine.Module{{
		ShortName: "ABC",
		Events: []stine.Event{
			lecture(stine.EventDate{Date: day(2023, time.October, 16), Start: 480, Duration: 90}),
			exercise(stine.EventDate{Date: day(2023, time.October, 17), Start: 720, Duration: 90}),
		},
	}}
	b := quietBuilder(Config{StartDate: day(2023, time.October, 15), DayCount: 7})

	first, err := b.Build(modules)
	require.NoError(t, err)
	second, err := b.Build(modules)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second build differs (-first +second):\n%s", diff)
	}
}

func TestBuildMatchesDatesAcrossLocations(t *testing.T) {
	// 2023-10-16 00:00 in Berlin is the evening before in UTC; the event
	// date is taken in its own location.
	modules := []stine.Module{{
		ShortName: "ABC",
		Events: []stine.Event{
			lecture(stine.EventDate{Date: time.Date(2023, time.October, 16, 0, 0, 0, 0, time.UTC), Start: 480, Duration: 90}),
		},
	}}

	cal, err := quietBuilder(Config{StartDate: day(2023, time.October, 16), DayCount: 1}).Build(modules)
	require.NoError(t, err)
	assert.Len(t, cal[0].Blocks[0], 1)
}

func TestBuildRejectsEmptyWindow(t *testing.T) {
	_, err := quietBuilder(Config{StartDate: day(2023, time.October, 15)}).Build(nil)
	assert.ErrorIs(t, err, ErrInvalidDayCount)
}

func TestTable(t *testing.T) {
	cal := Calendar{
		{
			Date: day(2023, time.October, 16),
			Blocks: [BlockCount]Block{
				{"0 ABC (VL)"},
				nil,
				{"1 ABC (Uebung)", "0 DEF (VL)", "2 GHI (Uebung)"},
				nil,
				{"0 JKL (VL)"},
			},
		},
		{Date: day(2023, time.October, 17)},
	}

	want := [][]string{
		{"16.10.2023", "0 ABC (VL)", "", "1 ABC (Uebung)", "", "0 JKL (VL)"},
		{"", "", "", "0 DEF (VL)", "", ""},
		{"", "", "", "2 GHI (Uebung)", "", ""},
		{"17.10.2023", "", "", "", "", ""},
	}
	if diff := cmp.Diff(want, cal.Table()); diff != "" {
		t.Errorf("Table() mismatch (-want +got):\n%s", diff)
	}
}
