package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"film-collection/collection"
)

func newUserCmd(opts *rootOptions) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "User account commands",
	}

	var password string
	addCmd := &cobra.Command{
		Use:   "add [username]",
		Short: "Register a user; prompts for the password unless --password is given",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			username := strings.TrimSpace(args[0])
			if username == "" {
				return fmt.Errorf("username cannot be empty")
			}
			pw := password
			if !cmd.Flags().Changed("password") {
				in := cmd.InOrStdin()
				var err error
				pw, err = readPassword(in, cmd.OutOrStdout(), bufio.NewScanner(in), fmt.Sprintf("Enter password for %s: ", username))
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
			}
			if strings.TrimSpace(pw) == "" {
				return errEmptyPassword
			}

			u := collection.User{Username: username, Password: pw}
			if err := a.mgr.RegisterUser(cmd.Context(), &u); err != nil {
				return fmt.Errorf("failed to add user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added user '%s' with ID %d\n", u.Username, u.ID)
			return nil
		}),
	}
	addCmd.Flags().StringVar(&password, "password", "", "password (visible in shell history; prefer the prompt)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			users, err := a.mgr.ListUsers(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(users) == 0 {
				fmt.Fprintln(out, "No users.")
				return nil
			}
			fmt.Fprintf(out, "%-5s %-30s\n", "ID", "Username")
			fmt.Fprintln(out, strings.Repeat("-", 36))
			for _, u := range users {
				fmt.Fprintf(out, "%-5d %-30s\n", u.ID, truncateString(u.Username, 30))
			}
			return nil
		}),
	}

	userCmd.AddCommand(addCmd, listCmd)
	return userCmd
}
