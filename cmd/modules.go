/*
Copyright © 2023 Mattis Møl Kristensen <mattismoel@gmail.com>
*/
package cmd

import (
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/mattismoel/stineplan/pkg/browser"
	"github.com/mattismoel/stineplan/pkg/calendar"
	"github.com/mattismoel/stineplan/pkg/config"
	"github.com/mattismoel/stineplan/pkg/repository"
	"github.com/mattismoel/stineplan/pkg/stine"
)

type portal interface {
	stine.Browser
	Close() error
}

func newBrowser(cmd *cobra.Command) (portal, error) {
	kind, _ := cmd.Flags().GetString("browser")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	switch kind {
	case "chrome":
		headless, _ := cmd.Flags().GetBool("headless")
		execPath, _ := cmd.Flags().GetString("chrome-path")
		return browser.NewChrome(cmd.Context(), browser.ChromeOptions{
			Headless: headless,
			ExecPath: execPath,
			Logger:   slog.Default(),
		})
	case "http":
		return browser.NewHTTP(browser.HTTPOptions{Timeout: timeout})
	}
	return nil, fmt.Errorf("unknown browser %q, use chrome or http", kind)
}

// fetchModules crawls STiNE and stores the result in the cache. Any fatal
// error ends the program before the cache is touched.
func fetchModules(cmd *cobra.Command) []stine.Module {
	envPath, _ := cmd.Flags().GetString("env")
	login, err := config.LoadLoginInfo(envPath)
	if err != nil {
		log.Fatalf("Could not get STiNE login: %v\n", err)
	}

	s := time.Now()
	result, err := extract(cmd, login)
	if err != nil {
		log.Fatalf("Could not extract modules from STiNE: %v\n", err)
	}
	for _, skip := range result.Skipped {
		log.Printf("Skipped row %d (%s): %v\n", skip.Row, skip.Subject, skip.Err)
	}
	log.Printf("Found %d modules in %v\n", len(result.Modules), time.Since(s))

	if err := cacheRepository(cmd).Store(result.Modules); err != nil {
		log.Fatalf("Could not store modules: %v\n", err)
	}
	return result.Modules
}

func extract(cmd *cobra.Command, login stine.LoginInfo) (*stine.Result, error) {
	baseURL, _ := cmd.Flags().GetString("base-url")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	b, err := newBrowser(cmd)
	if err != nil {
		return nil, fmt.Errorf("could not start browser: %w", err)
	}
	defer b.Close()

	e, err := stine.NewExtractor(b, login, stine.Options{
		BaseURL: baseURL,
		Timeout: timeout,
		Logger:  slog.Default(),
	})
	if err != nil {
		return nil, err
	}
	return e.Extract(cmd.Context())
}

func cacheRepository(cmd *cobra.Command) *repository.Repository {
	path, _ := cmd.Flags().GetString("cache")
	maxAge, _ := cmd.Flags().GetDuration("max-age")
	return repository.New(path, maxAge)
}

// loadModules returns the cached modules, fetching them from STiNE when there
// is no cache or refresh is set.
func loadModules(cmd *cobra.Command, refresh bool) []stine.Module {
	if !refresh {
		repo := cacheRepository(cmd)
		modules, ok, err := repo.Load()
		if err != nil {
			log.Fatalf("Could not read module cache: %v\n", err)
		}
		if ok {
			log.Printf("Using %d cached modules from %s\n", len(modules), repo.Path)
			return modules
		}
	}
	return fetchModules(cmd)
}

// calendarConfig reads the settings file and applies the flags on top.
func calendarConfig(cmd *cobra.Command) calendar.Config {
	path, _ := cmd.Flags().GetString("config")
	settings, err := config.Load(path)
	if err != nil {
		log.Fatalf("Could not load settings: %v\n", err)
	}

	if cmd.Flags().Changed("start") {
		settings.StartDate, _ = cmd.Flags().GetString("start")
	}
	if cmd.Flags().Changed("days") {
		settings.DayCount, _ = cmd.Flags().GetInt("days")
	}
	if cmd.Flags().Changed("exclude") {
		settings.ExcludedModules, _ = cmd.Flags().GetStringSlice("exclude")
	}

	cfg, err := settings.CalendarConfig()
	if err != nil {
		log.Fatalf("Invalid settings: %v\n", err)
	}
	return cfg
}
