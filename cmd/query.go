package cmd

import (
	"github.com/spf13/cobra"
)

// queryCmd groups the read-only query commands.
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query controllable instances",
	Long:  `Query controllable EC2 instances and their schedules from the command line.`,
}

func init() {
	rootCmd.AddCommand(queryCmd)
}
