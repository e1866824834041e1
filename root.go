package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootOptions holds the global flags shared by every subcommand.
type rootOptions struct {
	envFile string
	dbPath  string
	driver  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "filmctl",
		Short: "filmctl - personal film collection manager",
		Long: `filmctl keeps a catalogue of films and the copies each user owns.

Run without a subcommand to open the interactive shell, where a user logs in,
browses their copies, selects one and deletes it. The film, user and copy
subcommands edit the catalogue directly.

Configuration comes from the environment (and ./.env when present); see
DB_DRIVER, DB_PATH, PASSWORD_MODE and CACHE_ENABLED.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, opts)
		},
	}

	// Global persistent flags = available to all subcommands
	pf := root.PersistentFlags()
	pf.StringVar(&opts.envFile, "env-file", "", "dotenv file to load (default ./.env when present)")
	pf.StringVar(&opts.dbPath, "db", "", "SQLite database path, overrides DB_PATH")
	pf.StringVar(&opts.driver, "driver", "", "database driver (sqlite3, mysql, pgx), overrides DB_DRIVER")

	root.AddCommand(
		newShellCmd(opts),
		newFilmCmd(opts),
		newUserCmd(opts),
		newCopyCmd(opts),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
