package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"film-collection/collection"
)

func newFilmCmd(opts *rootOptions) *cobra.Command {
	filmCmd := &cobra.Command{
		Use:   "film",
		Short: "Film catalogue commands",
		Long:  `Manage the film catalogue: add, list, show, update and delete films`,
	}

	var f collection.Film
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a film to the catalogue",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.mgr.AddFilm(cmd.Context(), &f); err != nil {
				return fmt.Errorf("failed to add film: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added film ID %d\n", f.ID)
			return nil
		}),
	}
	filmFlags(addCmd, &f)
	addCmd.MarkFlagRequired("title")

	var asJSON bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List every film",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			films, err := a.mgr.ListFilms(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list films: %w", err)
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(films)
			}
			printFilms(cmd.OutOrStdout(), films)
			return nil
		}),
	}
	listCmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	showCmd := &cobra.Command{
		Use:   "show [film-id]",
		Short: "Show one film",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			film, err := lookupFilm(cmd, a, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID: %d\n", film.ID)
			fmt.Fprintf(out, "Title: %s\n", film.Title)
			fmt.Fprintf(out, "Genre: %s\n", film.Genre)
			fmt.Fprintf(out, "Year: %d\n", film.Year)
			fmt.Fprintf(out, "Director: %s\n", film.Director)
			fmt.Fprintf(out, "Description: %s\n", film.Description)
			return nil
		}),
	}

	var patch collection.Film
	updateCmd := &cobra.Command{
		Use:   "update [film-id]",
		Short: "Change the given fields of a film",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			film, err := lookupFilm(cmd, a, args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("title") {
				film.Title = patch.Title
			}
			if flags.Changed("genre") {
				film.Genre = patch.Genre
			}
			if flags.Changed("year") {
				film.Year = patch.Year
			}
			if flags.Changed("director") {
				film.Director = patch.Director
			}
			if flags.Changed("description") {
				film.Description = patch.Description
			}
			if err := a.mgr.UpdateFilm(cmd.Context(), &film); err != nil {
				return fmt.Errorf("failed to update film: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated film ID %d\n", film.ID)
			return nil
		}),
	}
	filmFlags(updateCmd, &patch)

	deleteCmd := &cobra.Command{
		Use:   "delete [film-id]",
		Short: "Delete a film",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			film, err := lookupFilm(cmd, a, args[0])
			if err != nil {
				return err
			}
			if err := a.mgr.DeleteFilm(cmd.Context(), film.ID); err != nil {
				return fmt.Errorf("failed to delete film: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted film ID %d\n", film.ID)
			return nil
		}),
	}

	filmCmd.AddCommand(addCmd, listCmd, showCmd, updateCmd, deleteCmd)
	return filmCmd
}

func filmFlags(cmd *cobra.Command, f *collection.Film) {
	cmd.Flags().StringVar(&f.Title, "title", "", "film title")
	cmd.Flags().StringVar(&f.Genre, "genre", "", "genre")
	cmd.Flags().IntVar(&f.Year, "year", 0, "release year")
	cmd.Flags().StringVar(&f.Director, "director", "", "director")
	cmd.Flags().StringVar(&f.Description, "description", "", "short description")
}

func lookupFilm(cmd *cobra.Command, a *app, arg string) (collection.Film, error) {
	id, err := parseID("film", arg)
	if err != nil {
		return collection.Film{}, err
	}
	film, ok, err := a.mgr.GetFilm(cmd.Context(), id)
	if err != nil {
		return collection.Film{}, fmt.Errorf("failed to get film: %w", err)
	}
	if !ok {
		return collection.Film{}, fmt.Errorf("film %d not found", id)
	}
	return film, nil
}
