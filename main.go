package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"film-collection/collection"
	"film-collection/internal/config"
	"film-collection/internal/logging"
)

func main() {
	Execute()
}

// app bundles what a command needs once configuration is resolved.
type app struct {
	mgr   *collection.CollectionManager
	log   zerolog.Logger
	cache *redis.Client
}

// openApp loads configuration, applies flag overrides and opens the manager.
// A configured but unreachable cache is logged and skipped.
func openApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return nil, err
	}
	if opts.driver != "" {
		cfg.DBDriver = opts.driver
	}
	if opts.dbPath != "" {
		cfg.DBPath = opts.dbPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logging.Setup(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	ctx := cmd.Context()

	if cfg.DBDriver == collection.DriverSQLite {
		// Ensure directory exists so first-run succeeds.
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := collection.OpenDatabase(ctx, cfg.DBDriver, cfg.DSN(), log)
	if err != nil {
		return nil, err
	}

	a := &app{log: log}
	mopts := collection.Options{
		Logger:       log,
		PasswordMode: cfg.PasswordMode,
		BcryptCost:   cfg.BcryptCost,
		CacheTTL:     cfg.CacheTTL,
		CachePrefix:  cfg.CachePrefix,
	}
	if cfg.CacheEnabled {
		rdb, err := collection.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Warn().Err(err).Msg("film cache disabled")
		} else {
			a.cache = rdb
			mopts.Cache = rdb
		}
	}

	a.mgr, err = collection.NewManager(db, mopts)
	if err != nil {
		a.closeCache()
		db.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) closeCache() {
	if a.cache != nil {
		a.cache.Close()
	}
}

func (a *app) Close() {
	a.closeCache()
	if err := a.mgr.Close(); err != nil {
		a.log.Error().Err(err).Msg("close database")
	}
}

// withApp opens the app around a command body.
func withApp(opts *rootOptions, fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, opts)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, args, a)
	}
}

// readPassword reads a password with masking when in is a terminal, and as a
// plain line from sc otherwise.
func readPassword(in io.Reader, out io.Writer, sc *bufio.Scanner, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out) // Add newline after password input
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimRight(sc.Text(), "\r"), nil
}

func parseID(kind, s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID: %s", kind, s)
	}
	return id, nil
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

var errEmptyPassword = errors.New("password cannot be empty")
