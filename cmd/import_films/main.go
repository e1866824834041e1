package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"film-collection/collection"
	"film-collection/internal/config"
	"film-collection/internal/logging"
)

func main() {
	if err := newImportCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newImportCmd() *cobra.Command {
	var (
		envFile string
		reset   bool
	)
	cmd := &cobra.Command{
		Use:   "import_films [films.json]",
		Short: "Bulk-load films from a JSON array into the catalogue",
		Long: `import_films reads a JSON array of films, for example

  [{"title": "Matrix", "genre": "SciFi", "year": 1999, "director": "Wachowski"}]

and inserts each one. The database comes from the same environment as filmctl.
With --reset the SQLite file is removed first.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "films.json"
			if len(args) == 1 {
				path = args[0]
			}
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runImport(cmd, cfg, path, reset)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", "", "dotenv file to load")
	cmd.Flags().BoolVar(&reset, "reset", false, "delete the SQLite database before importing")
	return cmd
}

func runImport(cmd *cobra.Command, cfg *config.Config, path string, reset bool) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()
	log := logging.Setup(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())

	films, err := readFilms(path)
	if err != nil {
		return err
	}

	if reset {
		if cfg.DBDriver != collection.DriverSQLite {
			return fmt.Errorf("--reset only applies to sqlite3, not %s", cfg.DBDriver)
		}
		// Clean up any existing database files
		fmt.Fprintln(out, "Cleaning up existing database files...")
		for _, file := range []string{cfg.DBPath, cfg.DBPath + "-shm", cfg.DBPath + "-wal"} {
			if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
				fmt.Fprintf(out, "Warning: Could not remove %s: %v\n", file, err)
			}
		}
	}

	if cfg.DBDriver == collection.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := collection.OpenDatabase(ctx, cfg.DBDriver, cfg.DSN(), log)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	store := collection.NewFilmStore(db)

	fmt.Fprintf(out, "Importing %d films from %s...\n", len(films), path)
	successCount, errorCount := 0, 0
	for i := range films {
		f := &films[i]
		if strings.TrimSpace(f.Title) == "" {
			fmt.Fprintf(out, "Warning: entry %d has no title, skipping\n", i+1)
			errorCount++
			continue
		}
		f.ID = 0

		fmt.Fprintf(out, "Importing: %s... ", f.Title)
		if err := store.Add(ctx, f); err != nil {
			fmt.Fprintf(out, "ERROR - %v\n", err)
			errorCount++
			continue
		}
		fmt.Fprintf(out, "SUCCESS (ID: %d)\n", f.ID)
		successCount++
	}

	fmt.Fprintf(out, "\nImport complete!\n")
	fmt.Fprintf(out, "Successfully imported: %d films\n", successCount)
	fmt.Fprintf(out, "Errors: %d\n", errorCount)
	log.Info().Int("imported", successCount).Int("errors", errorCount).Str("file", path).Msg("import finished")

	// Display summary of imported films
	if successCount > 0 {
		all, err := store.GetAll(ctx)
		if err != nil {
			return fmt.Errorf("retrieve films: %w", err)
		}
		fmt.Fprintln(out, "\nCatalogue:")
		fmt.Fprintf(out, "%-5s %-50s %-6s %-25s\n", "ID", "Title", "Year", "Director")
		fmt.Fprintln(out, strings.Repeat("-", 89))
		for _, f := range all {
			fmt.Fprintf(out, "%-5d %-50s %-6d %-25s\n", f.ID, truncateString(f.Title, 50), f.Year, truncateString(f.Director, 25))
		}
	}
	return nil
}

func readFilms(path string) ([]collection.Film, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer fh.Close()
	return decodeFilms(fh)
}

func decodeFilms(r io.Reader) ([]collection.Film, error) {
	var films []collection.Film
	if err := json.NewDecoder(r).Decode(&films); err != nil {
		return nil, fmt.Errorf("decode films: %w", err)
	}
	return films, nil
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
