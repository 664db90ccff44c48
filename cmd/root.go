/*
Copyright © 2023 Mattis Møl Kristensen <mattismoel@gmail.com>
*/
package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mattismoel/stineplan/pkg/config"
	"github.com/mattismoel/stineplan/pkg/repository"
	"github.com/mattismoel/stineplan/pkg/stine"
)

var rootCmd = &cobra.Command{
	Use:   "stineplan",
	Short: "Builds a timetable from the STiNE course registration",
	Long: `Reads the enrolled modules and all of their event dates from STiNE, the
course portal of Universität Hamburg, and turns them into a timetable.
The modules are cached, so the portal is only crawled when the cache is
missing or a fresh fetch is requested.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// Execute runs the root command. An interrupt cancels the running command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("cache", repository.DefaultPath, "The path of the module cache")
	flags.Duration("max-age", 0, "Refetch cached modules older than this, 0 keeps them forever")
	flags.String("config", config.DefaultPath, "The path of the settings file")
	flags.String("env", config.DefaultEnvPath, "The path of the .env file holding STINE_USERNAME and STINE_PASSWORD")
	flags.BoolP("verbose", "v", false, "Log debug output")

	flags.String("browser", "chrome", "How to read STiNE: chrome or http")
	flags.Bool("headless", true, "Run Chrome without a window")
	flags.String("chrome-path", "", "The Chrome binary to use, found on PATH when empty")
	flags.Duration("timeout", stine.DefaultTimeout, "How long to wait for every page of STiNE")
	flags.String("base-url", stine.DefaultBaseURL, "The STiNE address")

	flags.String("start", "", "First day of the timetable (YYYY-MM-DD), overrides the settings file")
	flags.Int("days", 0, "Number of days in the timetable, overrides the settings file")
	flags.StringSlice("exclude", nil, "Short names to leave out, overrides the settings file")
}
