package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompareMaps(t *testing.T) {
	from := map[string]int{"a": 1, "b": 2}
	to := map[string]int{"b": 3, "c": 4}

	extras, missing := CompareMaps(from, to)
	assert.Equal(t, map[string]int{"c": 4}, extras)
	assert.Equal(t, map[string]int{"a": 1}, missing)
}

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SortedKeys(map[string]bool{"c": true, "a": true, "b": false}))
	assert.Empty(t, SortedKeys(map[string]bool{}))
}

func TestRoundDateToDay(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	got := RoundDateToDay(time.Date(2023, time.October, 16, 23, 59, 0, 0, loc))
	assert.Equal(t, time.Date(2023, time.October, 16, 0, 0, 0, 0, loc), got)
}

func TestDayKey(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	midnight := time.Date(2023, time.October, 16, 0, 0, 0, 0, loc)
	assert.Equal(t, "2023-10-16", DayKey(midnight))
	assert.Equal(t, "2023-10-15", DayKey(midnight.UTC()))
}
