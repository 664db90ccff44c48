/*
Copyright © 2023 Mattis Møl Kristensen <mattismoel@gmail.com>
*/
package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/mattismoel/stineplan/pkg/export"
)

// icalCmd represents the ical command
var icalCmd = &cobra.Command{
	Use:   "ical",
	Short: "Exports the schedule as an iCalendar file",
	Long:  `Writes one event per date of the enrolled modules inside the timetable window to an .ics file, which can be imported into most calendar applications.`,
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")
		refresh, _ := cmd.Flags().GetBool("refresh")

		cfg := calendarConfig(cmd)
		modules := loadModules(cmd, refresh)

		events := export.ICalEvents(modules, cfg)
		if err := export.WriteICal(output, events); err != nil {
			log.Fatalf("Could not write iCalendar file: %v\n", err)
		}
		log.Printf("Wrote %d events to %s\n", len(events), output)
	},
}

func init() {
	rootCmd.AddCommand(icalCmd)

	icalCmd.Flags().StringP("output", "o", export.DefaultICalPath, "The path the .ics file is written to")
	icalCmd.Flags().BoolP("refresh", "r", false, "Fetch the modules from STiNE even when they are cached")
}
