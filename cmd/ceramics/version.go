package main

import (
	"fmt"

	"github.com/sandevgo/ceramicsrag/internal/core"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n%s\n", core.AppName, core.AppVersion, core.RepositoryURL)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
