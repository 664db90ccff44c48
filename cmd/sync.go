/*
Copyright © 2023 Mattis Kristensen <mattismoel@gmail.com>
*/
package cmd

import (
	"log"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mattismoel/stineplan/pkg/googlecalendar"
	"github.com/mattismoel/stineplan/util/googlecalendarutil"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Syncs the STiNE schedule with a Google Calendar",
	Long: `Synchronises the event dates of the enrolled modules inside the timetable window with Google Calendar.
Missing events are inserted, changed ones updated and events that are no longer part of the schedule deleted.
Events that were not created by stineplan are left intact.`,
	Run: func(cmd *cobra.Command, args []string) {
		refresh, _ := cmd.Flags().GetBool("refresh")

		cfg := calendarConfig(cmd)
		modules := loadModules(cmd, refresh)

		c := googleCalendar(cmd)
		log.Println("Attempting to sync STiNE and Google Calendar...")
		plan, err := c.Sync(cmd.Context(), modules, cfg)
		if err != nil {
			log.Fatalf("Could not update Google Calendar: %v\n", err)
		}
		log.Printf("Inserted %d, updated %d and deleted %d events\n", len(plan.Insert), len(plan.Update), len(plan.Delete))
	},
}

func googleCalendar(cmd *cobra.Command) *googlecalendar.GoogleCalendar {
	calendarID, _ := cmd.Flags().GetString("calendarID")
	tokenPath, _ := cmd.Flags().GetString("token")
	credentialsPath, _ := cmd.Flags().GetString("credentials")

	config, err := googlecalendarutil.ConfigFromFile(credentialsPath)
	if err != nil {
		log.Fatalf("Could not read Google credentials: %v\n", err)
	}

	client, err := googlecalendarutil.GetClient(cmd.Context(), config, tokenPath)
	if err != nil {
		log.Fatalf("Could not get Google Calendar client: %v\n", err)
	}

	c, err := googlecalendar.NewGoogleCalendar(cmd.Context(), client, calendarID)
	if err != nil {
		log.Fatalf("Could not create Google Calendar instance: %v\n", err)
	}
	c.Logger = slog.Default()
	return c
}

func addGoogleFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("calendarID", "c", googlecalendar.DefaultCalendarID, "Google Calendar calendar ID")
	cmd.Flags().StringP("token", "t", googlecalendarutil.DefaultTokenPath, "The path to a Google OAuth token file")
	cmd.Flags().String("credentials", googlecalendarutil.DefaultCredentialsPath, "The path to the Google OAuth client secret")
}

func init() {
	rootCmd.AddCommand(syncCmd)

	addGoogleFlags(syncCmd)
	syncCmd.Flags().BoolP("refresh", "r", false, "Fetch the modules from STiNE even when they are cached")
}
