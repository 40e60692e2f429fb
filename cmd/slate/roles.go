package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aretw0/slate/pkg/console"
)

var (
	rolesJSON       bool
	roleName        string
	roleDescription string
	roleDryRun      bool
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Manage roles",
}

var rolesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all roles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(svc *console.Service) error {
			roles, err := svc.ListRoles(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if rolesJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(roles)
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tNAME\tDESCRIPTION")
			for _, r := range roles {
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.Code, r.Name, r.Description)
			}
			return w.Flush()
		})
	},
}

var rolesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a role; its code is derived from the name",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(svc *console.Service) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if roleDryRun {
				code, err := svc.PreviewRoleCode(ctx, roleName)
				if err != nil {
					return err
				}
				if code == "" {
					return fmt.Errorf("name %q does not yield a code", roleName)
				}
				fmt.Fprintf(out, "%s (dry run)\n", code)
				return nil
			}

			role, err := svc.CreateRole(ctx, console.RoleInput{Name: roleName, Description: roleDescription})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, role.Code)
			return nil
		})
	},
}

func init() {
	rolesListCmd.Flags().BoolVar(&rolesJSON, "json", false, "Output in JSON format")

	rolesCreateCmd.Flags().StringVar(&roleName, "name", "", "Display name of the role")
	rolesCreateCmd.Flags().StringVar(&roleDescription, "description", "", "Description of the role")
	rolesCreateCmd.Flags().BoolVar(&roleDryRun, "dry-run", false, "Print the code the role would get without saving")
	rolesCreateCmd.MarkFlagRequired("name")

	rolesCmd.AddCommand(rolesListCmd, rolesCreateCmd)
	rootCmd.AddCommand(rolesCmd)
}
