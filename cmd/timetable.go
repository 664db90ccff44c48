/*
Copyright © 2023 Mattis Møl Kristensen <mattismoel@gmail.com>
*/
package cmd

import (
	"log"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mattismoel/stineplan/pkg/calendar"
	"github.com/mattismoel/stineplan/pkg/export"
)

// timetableCmd represents the timetable command
var timetableCmd = &cobra.Command{
	Use:   "timetable",
	Short: "Writes the timetable as a ;-separated file",
	Long: `Places every event date of the enrolled modules into two hour blocks from
08:00 to 18:00 and writes one row per day. Modules are taken from the cache
and only fetched from STiNE when the cache is missing or --refresh is set.`,
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")
		refresh, _ := cmd.Flags().GetBool("refresh")

		cfg := calendarConfig(cmd)
		modules := loadModules(cmd, refresh)

		cal, err := calendar.NewBuilder(cfg, slog.Default()).Build(modules)
		if err != nil {
			log.Fatalf("Could not build timetable: %v\n", err)
		}

		if err := export.WriteCSVFile(output, cal.Table()); err != nil {
			log.Fatalf("Could not write timetable: %v\n", err)
		}
		log.Printf("Wrote %d days to %s\n", len(cal), output)
	},
}

func init() {
	rootCmd.AddCommand(timetableCmd)

	timetableCmd.Flags().StringP("output", "o", export.DefaultCSVPath, "The path the timetable is written to")
	timetableCmd.Flags().BoolP("refresh", "r", false, "Fetch the modules from STiNE even when they are cached")
}
