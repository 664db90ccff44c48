package stine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"Mo, 16. Okt. 2023", time.Date(2023, time.October, 16, 0, 0, 0, 0, Location)},
		{"Di, 5. Dez. 2023", time.Date(2023, time.December, 5, 0, 0, 0, 0, Location)},
		{"Mi, 13. Mär. 2024", time.Date(2024, time.March, 13, 0, 0, 0, 0, Location)},
		{"Do, 2. Mai 2024", time.Date(2024, time.May, 2, 0, 0, 0, 0, Location)},
		{"14. Nov 2023", time.Date(2023, time.November, 14, 0, 0, 0, 0, Location)},
		{"  Fr, 19. Jan. 2024 ", time.Date(2024, time.January, 19, 0, 0, 0, 0, Location)},
		{"Sa, 7. MRZ. 2026", time.Date(2026, time.March, 7, 0, 0, 0, 0, Location)},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, tt.want.Equal(got), "%q: got %v, want %v", tt.in, got, tt.want)
	}
}

func TestParseDateInvalid(t *testing.T) {
	for _, in := range []string{"", "Mo, 16.10.2023", "16. Foo 2023", "31. Feb. 2024", "Mo, Okt 2023"} {
		_, err := ParseDate(in)
		assert.Error(t, err, in)
	}
}

func TestParseClock(t *testing.T) {
	tests := map[string]int{
		"00:00": 0,
		"08:00": 480,
		"08:15": 495,
		"9:45":  585,
		"17:59": 1079,
	}
	for in, want := range tests {
		got, err := ParseClock(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseClock("8 Uhr")
	assert.Error(t, err)
}

func TestParseCredits(t *testing.T) {
	tests := map[string]float64{
		"6":       6,
		" 6,0 ":   6,
		"7,5 LP":  7.5,
		"4.5":     4.5,
		"ECTS 12": 12,
	}
	for in, want := range tests {
		got, err := ParseCredits(in)
		require.NoError(t, err, in)
		assert.InDelta(t, want, got, 1e-9, in)
	}

	_, err := ParseCredits("keine")
	assert.Error(t, err)
}

func TestParseDateRow(t *testing.T) {
	date, err := parseDateRow("Mo, 16. Okt. 2023", "10:15", "11:45")
	require.NoError(t, err)
	assert.Equal(t, 615, date.Start)
	assert.Equal(t, 90, date.Duration)
	assert.Equal(t, 705, date.End())
	assert.Equal(t, time.Date(2023, time.October, 16, 10, 15, 0, 0, Location), date.StartTime())

	_, err = parseDateRow("Mo, 16. Okt. 2023", "12:00", "10:00")
	assert.Error(t, err)
}

func TestLoginInfoValidate(t *testing.T) {
	assert.ErrorIs(t, LoginInfo{}.Validate(), ErrMissingCredentials)
	assert.ErrorIs(t, LoginInfo{Username: "baa1234"}.Validate(), ErrMissingCredentials)
	assert.NoError(t, LoginInfo{Username: "baa1234", Password: "secret"}.Validate())
}
