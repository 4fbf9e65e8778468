package main

import (
	"fmt"

	"github.com/aretw0/sessionlock"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of sessionctl",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sessionctl version %s\n", sessionlock.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
