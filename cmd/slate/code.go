package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/slate/pkg/console"
)

var codeForUsers bool

var codeCmd = &cobra.Command{
	Use:   "code NAME...",
	Short: "Preview the code each name would get, without saving",
	Long: `Derives the code against the current collection. Each name is checked
on its own; the preview is not reserved.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(svc *console.Service) error {
			preview := svc.PreviewRoleCode
			if codeForUsers {
				preview = svc.PreviewUserCode
			}
			for _, name := range args {
				code, err := preview(cmd.Context(), name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%q\t%s\n", name, code)
			}
			return nil
		})
	},
}

func init() {
	codeCmd.Flags().BoolVar(&codeForUsers, "users", false, "Derive against the user collection")
	rootCmd.AddCommand(codeCmd)
}
