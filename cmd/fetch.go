/*
Copyright © 2023 Mattis Møl Kristensen <mattismoel@gmail.com>
*/
package cmd

import (
	"github.com/spf13/cobra"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetches the enrolled modules from STiNE into the cache",
	Long: `Logs in to STiNE with STINE_USERNAME and STINE_PASSWORD, reads every module
of the course registration with its event dates and replaces the cache.
Rows that cannot be read are reported and left out.`,
	Run: func(cmd *cobra.Command, args []string) {
		fetchModules(cmd)
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
