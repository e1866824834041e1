package collection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// Database is the storage endpoint shared by every store. It owns the
// connection; stores never open or close it.
type Database struct {
	db      *sql.DB
	dialect dialect
	log     zerolog.Logger

	mu    sync.Mutex
	stmts map[string]*sql.Stmt // prepared inserts keyed by table

	instanceID string
}

// SQLiteDSN enables busy_timeout and foreign keys for the file at dbPath.
func SQLiteDSN(dbPath string) string {
	return fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", dbPath)
}

// NewDatabase opens (or creates) the SQLite database at dbPath and applies
// schema migrations.
func NewDatabase(dbPath string) (*Database, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	return OpenDatabase(context.Background(), DriverSQLite, SQLiteDSN(dbPath), zerolog.Nop())
}

// OpenDatabase connects with one of the supported drivers, verifies the
// connection and migrates the schema.
func OpenDatabase(ctx context.Context, driver, dsn string, logger zerolog.Logger) (*Database, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver != DriverSQLite {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	database := &Database{
		db:      db,
		dialect: d,
		log:     logger,
		stmts:   make(map[string]*sql.Stmt),
	}
	if err := database.applyMigrations(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if database.instanceID, err = database.loadInstanceID(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info().Str("driver", driver).Int("schema_version", schemaVersion).Msg("database ready")
	return database, nil
}

// InstanceID identifies the contents of this database. It is created together
// with the schema, so a recreated database gets a new one.
func (d *Database) InstanceID() string { return d.instanceID }

// Driver returns the driver name the database was opened with.
func (d *Database) Driver() string { return d.dialect.name }

// Close releases prepared statements and closes the DB.
func (d *Database) Close() error {
	d.mu.Lock()
	for table, stmt := range d.stmts {
		stmt.Close()
		delete(d.stmts, table)
	}
	d.mu.Unlock()
	return d.db.Close()
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func (d *Database) applyMigrations(ctx context.Context) error {
	for _, pragma := range d.dialect.pragmas {
		if _, err := d.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("apply pragma: %w", err)
		}
	}

	if _, err := d.db.ExecContext(ctx, metaTable); err != nil {
		return fmt.Errorf("create meta: %w", err)
	}

	current, err := d.metaValue(ctx, "schema_version")
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if v, err := strconv.Atoi(current); err == nil && v >= schemaVersion {
		return nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range d.dialect.schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, d.dialect.rebind(d.dialect.upsertMeta), "schema_version", strconv.Itoa(schemaVersion)); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	return tx.Commit()
}

// metaValue returns the meta row called name, or "" when there is none.
func (d *Database) metaValue(ctx context.Context, name string) (string, error) {
	var value string
	err := d.db.QueryRowContext(ctx, d.dialect.rebind(`SELECT value FROM meta WHERE name=?`), name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// loadInstanceID returns the stored instance id, creating it on first open.
func (d *Database) loadInstanceID(ctx context.Context) (string, error) {
	if _, err := d.db.ExecContext(ctx, d.dialect.rebind(d.dialect.insertMeta), "instance_id", uuid.NewString()); err != nil {
		return "", fmt.Errorf("record instance id: %w", err)
	}
	id, err := d.metaValue(ctx, "instance_id")
	if err != nil {
		return "", fmt.Errorf("read instance id: %w", err)
	}
	return id, nil
}

// ---------------------------------------------------------------------------
// Statement helpers used by the stores
// ---------------------------------------------------------------------------

func (d *Database) quote(ident string) string { return d.dialect.quote(ident) }

func (d *Database) quoteAll(idents []string) string {
	quoted := make([]string, len(idents))
	for i, ident := range idents {
		quoted[i] = d.quote(ident)
	}
	return strings.Join(quoted, ",")
}

// insertStmt returns the prepared insert for table, preparing it on first use.
func (d *Database) insertStmt(ctx context.Context, table string, columns []string) (*sql.Stmt, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if stmt, ok := d.stmts[table]; ok {
		return stmt, nil
	}

	marks := strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",")
	query := fmt.Sprintf("INSERT INTO %s(%s) VALUES(%s)", d.quote(table), d.quoteAll(columns), marks)
	if d.dialect.returningID {
		query += " RETURNING id"
	}
	stmt, err := d.db.PrepareContext(ctx, d.dialect.rebind(query))
	if err != nil {
		return nil, err
	}
	d.stmts[table] = stmt
	return stmt, nil
}

// insert executes the table's insert exactly once and returns the generated key.
func (d *Database) insert(ctx context.Context, table string, columns []string, args []any) (int64, error) {
	stmt, err := d.insertStmt(ctx, table, columns)
	if err != nil {
		return 0, err
	}
	if d.dialect.returningID {
		var id int64
		if err := stmt.QueryRowContext(ctx, args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	res, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (d *Database) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.db.ExecContext(ctx, d.dialect.rebind(query), args...)
}

func (d *Database) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.db.QueryContext(ctx, d.dialect.rebind(query), args...)
}

func (d *Database) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return d.db.QueryRowContext(ctx, d.dialect.rebind(query), args...)
}
