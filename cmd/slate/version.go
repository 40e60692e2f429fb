package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/slate"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of slate",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "slate version %s\n", strings.TrimSpace(slate.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
