package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/mattismoel/stineplan/pkg/calendar"
	"github.com/mattismoel/stineplan/pkg/stine"
)

const (
	DefaultPath    = "stineplan.json"
	DefaultEnvPath = ".env"

	UsernameEnv = "STINE_USERNAME"
	PasswordEnv = "STINE_PASSWORD"
)

// Settings holds the user's timetable preferences.
type Settings struct {
	ExcludedModules []string `json:"excludedModules"`
	StartDate       string   `json:"startDate"` // YYYY-MM-DD
	DayCount        int      `json:"dayCount"`
}

func Default() *Settings {
	return &Settings{
		ExcludedModules: []string{"ATI", "CN", "STO2", "EML", "MAKS"},
		StartDate:       "2023-10-15",
		DayCount:        180,
	}
}

// Load reads the settings at path. Fields missing from the file, or a missing
// file, keep their defaults.
func Load(path string) (*Settings, error) {
	if path == "" {
		path = DefaultPath
	}
	settings := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	return settings, nil
}

// Save writes the settings to path.
func (s *Settings) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// CalendarConfig converts the settings to a validated calendar config.
func (s *Settings) CalendarConfig() (calendar.Config, error) {
	start, err := time.ParseInLocation(time.DateOnly, s.StartDate, stine.Location)
	if err != nil {
		return calendar.Config{}, fmt.Errorf("invalid start date %q: %w", s.StartDate, err)
	}
	cfg := calendar.Config{
		ExcludedModules: s.ExcludedModules,
		StartDate:       start,
		DayCount:        s.DayCount,
	}
	return cfg, cfg.Validate()
}

// LoadLoginInfo reads the STiNE credentials from the environment. Variables
// from the env file are added first, without overriding ones already set. A
// missing env file is fine.
func LoadLoginInfo(envPath string) (stine.LoginInfo, error) {
	if envPath == "" {
		envPath = DefaultEnvPath
	}
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return stine.LoginInfo{}, fmt.Errorf("could not load %s: %w", envPath, err)
	}

	login := stine.LoginInfo{
		Username: os.Getenv(UsernameEnv),
		Password: os.Getenv(PasswordEnv),
	}
	if err := login.Validate(); err != nil {
		return stine.LoginInfo{}, fmt.Errorf("%w: set %s and %s", err, UsernameEnv, PasswordEnv)
	}
	return login, nil
}
