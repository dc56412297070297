package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of notesctl",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("notesctl version %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
