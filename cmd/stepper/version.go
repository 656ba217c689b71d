package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steltz/stepper"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of stepper",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "stepper version %s\n", strings.TrimSpace(stepper.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
