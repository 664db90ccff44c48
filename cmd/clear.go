/*
Copyright © 2023 Mattis Møl Kristensen <mattismoel@gmail.com>
*/
package cmd

import (
	"log"

	"github.com/spf13/cobra"
)

// clearCmd represents the clear command
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clears the users Google Calendar",
	Long: `Clears the users Google Calendar from STiNE events.
When used, only stineplan events are targeted, therefore leaving any personal events intact.
With --cache-only the module cache is removed instead.`,
	Run: func(cmd *cobra.Command, args []string) {
		clearCache, _ := cmd.Flags().GetBool("cache-only")

		if clearCache {
			repo := cacheRepository(cmd)
			if err := repo.Clear(); err != nil {
				log.Fatalf("Could not remove module cache: %v\n", err)
			}
			log.Printf("Removed %s\n", repo.Path)
			return
		}

		n, err := googleCalendar(cmd).Clear(cmd.Context())
		if err != nil {
			log.Fatalf("Could not clear Google Calendar: %v\n", err)
		}
		log.Printf("Deleted %d events\n", n)
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	addGoogleFlags(clearCmd)
	clearCmd.Flags().Bool("cache-only", false, "Remove the module cache instead of the calendar events")
}
