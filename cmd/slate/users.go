package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aretw0/slate/pkg/console"
	"github.com/aretw0/slate/pkg/core"
)

var (
	usersJSON  bool
	userName   string
	userEmail  string
	userStatus string
	userRoles  []string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users and their roles",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(svc *console.Service) error {
			users, err := svc.ListUsers(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if usersJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(users)
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tNAME\tEMAIL\tSTATUS\tROLES")
			for _, u := range users {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.Code, u.Name, u.Email, u.Status, strings.Join(u.Roles, ","))
			}
			return w.Flush()
		})
	},
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user; its code is derived from the name",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(svc *console.Service) error {
			user, err := svc.CreateUser(cmd.Context(), console.UserInput{
				Name:   userName,
				Email:  userEmail,
				Status: core.UserStatus(userStatus),
				Roles:  userRoles,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), user.Code)
			return nil
		})
	},
}

var usersAssignCmd = &cobra.Command{
	Use:   "assign USER ROLE...",
	Short: "Grant roles to a user",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(svc *console.Service) error {
			user, err := svc.AssignRoles(cmd.Context(), args[0], args[1:]...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", user.Code, strings.Join(user.Roles, ","))
			return nil
		})
	},
}

var usersRevokeCmd = &cobra.Command{
	Use:   "revoke USER ROLE...",
	Short: "Remove roles from a user",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(svc *console.Service) error {
			user, err := svc.RevokeRoles(cmd.Context(), args[0], args[1:]...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", user.Code, strings.Join(user.Roles, ","))
			return nil
		})
	},
}

func init() {
	usersListCmd.Flags().BoolVar(&usersJSON, "json", false, "Output in JSON format")

	usersCreateCmd.Flags().StringVar(&userName, "name", "", "Display name of the user")
	usersCreateCmd.Flags().StringVar(&userEmail, "email", "", "Email address")
	usersCreateCmd.Flags().StringVar(&userStatus, "status", "", "active, inactive or pending (default pending)")
	usersCreateCmd.Flags().StringArrayVar(&userRoles, "role", nil, "Role code to grant (repeatable)")
	usersCreateCmd.MarkFlagRequired("name")
	usersCreateCmd.MarkFlagRequired("email")

	usersCmd.AddCommand(usersListCmd, usersCreateCmd, usersAssignCmd, usersRevokeCmd)
	rootCmd.AddCommand(usersCmd)
}
