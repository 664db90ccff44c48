/*
Copyright © 2023 Mattis Møl Kristensen <mattismoel@gmail.com>
*/
package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattismoel/stineplan/pkg/stine"
	"github.com/mattismoel/stineplan/util"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists the enrolled modules",
	Long:  `Prints the enrolled modules with their credits and number of event dates, either as a table or as JSON.`,
	Run: func(cmd *cobra.Command, args []string) {
		format, _ := cmd.Flags().GetString("format")
		refresh, _ := cmd.Flags().GetBool("refresh")

		modules := loadModules(cmd, refresh)

		switch format {
		case "json":
			fmt.Println(util.PrettyPrint(modules))
		case "text":
			printModules(modules)
		default:
			log.Fatalf("Unknown format %q, use text or json\n", format)
		}
	},
}

func printModules(modules []stine.Module) {
	var credits float64
	fmt.Printf("%-20s%-50s%8s%8s\n", "MODULE", "NAME", "LP", "DATES")
	for _, m := range modules {
		dates := 0
		for _, e := range m.Events {
			dates += len(e.Dates)
		}
		credits += m.Credits
		fmt.Printf("%-20s%-50s%8g%8d\n", m.ShortName, m.Name, m.Credits, dates)
	}
	fmt.Println(strings.Repeat("=", 86))
	fmt.Printf("%-70s%8g\n", fmt.Sprintf("%d modules", len(modules)), credits)
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("format", "f", "text", "The output format, text or json")
	listCmd.Flags().BoolP("refresh", "r", false, "Fetch the modules from STiNE even when they are cached")
}
