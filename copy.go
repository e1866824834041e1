package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"film-collection/collection"
)

func newCopyCmd(opts *rootOptions) *cobra.Command {
	copyCmd := &cobra.Command{
		Use:   "copy",
		Short: "Film copy commands",
		Long:  `Manage the copies users own, outside of an interactive session`,
	}

	var c collection.CopyFilm
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Record a copy of a film for a user",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.mgr.AddCopyFor(cmd.Context(), &c); err != nil {
				return fmt.Errorf("failed to add copy: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added copy ID %d\n", c.ID)
			return nil
		}),
	}
	addCmd.Flags().Int64Var(&c.FilmID, "film", 0, "film ID")
	addCmd.Flags().Int64Var(&c.UserID, "user", 0, "owner user ID")
	addCmd.Flags().StringVar(&c.Condition, "condition", "", "condition, e.g. New or Used")
	addCmd.Flags().StringVar(&c.Support, "support", "", "medium, e.g. DVD or VHS")
	addCmd.MarkFlagRequired("film")
	addCmd.MarkFlagRequired("user")

	var owner int64
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List copies, optionally only those of one user",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			ctx := cmd.Context()
			var (
				copies []collection.CopyFilm
				err    error
			)
			if cmd.Flags().Changed("user") {
				copies, err = a.mgr.ListCopiesByOwner(ctx, owner)
			} else {
				copies, err = a.mgr.ListCopies(ctx)
			}
			if err != nil {
				return fmt.Errorf("failed to list copies: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(copies) == 0 {
				fmt.Fprintln(out, "No copies.")
				return nil
			}
			fmt.Fprintf(out, "%-5s %-30s %-12s %-12s %-5s\n", "ID", "Title", "Condition", "Support", "Owner")
			fmt.Fprintln(out, strings.Repeat("-", 68))
			for _, cp := range copies {
				film, _, err := a.mgr.GetFilm(ctx, cp.FilmID)
				if err != nil {
					return fmt.Errorf("failed to get film: %w", err)
				}
				fmt.Fprintf(out, "%-5d %-30s %-12s %-12s %-5d\n",
					cp.ID, displayTitle(film, 30), cp.Condition, cp.Support, cp.UserID)
			}
			return nil
		}),
	}
	listCmd.Flags().Int64Var(&owner, "user", 0, "only copies owned by this user ID")

	deleteCmd := &cobra.Command{
		Use:   "delete [copy-id]",
		Short: "Delete a copy",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID("copy", args[0])
			if err != nil {
				return err
			}
			if err := a.mgr.DeleteCopy(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete copy: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted copy ID %d\n", id)
			return nil
		}),
	}

	copyCmd.AddCommand(addCmd, listCmd, deleteCmd)
	return copyCmd
}
