package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/aretw0/slate/pkg/console"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the internal state of the console as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(svc *console.Service) error {
			if _, err := svc.ListRoles(cmd.Context()); err != nil {
				return err
			}
			if _, err := svc.ListUsers(cmd.Context()); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"component": svc.ComponentType(),
				"state":     svc.State(),
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
