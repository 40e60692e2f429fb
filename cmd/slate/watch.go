package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aretw0/slate/pkg/console"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print changes made to roles and users by other processes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(svc *console.Service) error {
			events, err := svc.Watch(cmd.Context())
			if err != nil {
				return err
			}
			slog.Info("watching for changes (Ctrl+C to stop)")

			for e := range events {
				fmt.Fprintln(cmd.OutOrStdout(), e)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
