package collection

import (
	"fmt"
	"strconv"
	"strings"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverMySQL    = "mysql"
	DriverPostgres = "pgx"
)

// dialect captures what differs between the supported backends.
type dialect struct {
	name    string
	quote   func(ident string) string
	dollars bool // $1..$n placeholders instead of ?
	// returningID means the generated key comes back from INSERT ... RETURNING id
	// rather than from sql.Result.LastInsertId.
	returningID bool
	pragmas     []string
	schema      []string
	upsertMeta  string
	// insertMeta writes a meta row only when the name is not present yet.
	insertMeta string
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case DriverSQLite:
		return sqliteDialect, nil
	case DriverMySQL:
		return mysqlDialect, nil
	case DriverPostgres:
		return postgresDialect, nil
	}
	return dialect{}, fmt.Errorf("unsupported driver %q", driver)
}

// rebind rewrites ? placeholders for dialects that number them.
func (d dialect) rebind(query string) string {
	if !d.dollars {
		return query
	}
	var sb strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteByte(query[i])
	}
	return sb.String()
}

func doubleQuote(ident string) string { return `"` + ident + `"` }
func backQuote(ident string) string   { return "`" + ident + "`" }

const metaTable = `CREATE TABLE IF NOT EXISTS meta (name VARCHAR(64) PRIMARY KEY, value VARCHAR(255) NOT NULL)`

var sqliteDialect = dialect{
	name:  DriverSQLite,
	quote: doubleQuote,
	// WAL improves write concurrency.
	pragmas: []string{"PRAGMA journal_mode=WAL;", "PRAGMA foreign_keys=ON;"},
	schema: []string{
		`CREATE TABLE IF NOT EXISTS "film" (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            title TEXT NOT NULL DEFAULT '',
            genre TEXT NOT NULL DEFAULT '',
            year INTEGER NOT NULL DEFAULT 0,
            description TEXT NOT NULL DEFAULT '',
            director TEXT NOT NULL DEFAULT ''
        );`,
		`CREATE TABLE IF NOT EXISTS "user" (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            username TEXT NOT NULL,
            password TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS "copy" (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            "condition" TEXT NOT NULL DEFAULT '',
            support TEXT NOT NULL DEFAULT '',
            film_id INTEGER NOT NULL REFERENCES "film"(id),
            user_id INTEGER NOT NULL REFERENCES "user"(id)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_copy_user ON "copy"(user_id);`,
	},
	upsertMeta: `INSERT INTO meta(name,value) VALUES(?,?)
            ON CONFLICT(name) DO UPDATE SET value=excluded.value;`,
	insertMeta: `INSERT OR IGNORE INTO meta(name,value) VALUES(?,?)`,
}

// Credential columns use a binary collation so matching stays case-sensitive.
var mysqlDialect = dialect{
	name:  DriverMySQL,
	quote: backQuote,
	schema: []string{
		"CREATE TABLE IF NOT EXISTS `film` (" +
			"id BIGINT AUTO_INCREMENT PRIMARY KEY," +
			"title VARCHAR(255) NOT NULL DEFAULT ''," +
			"genre VARCHAR(100) NOT NULL DEFAULT ''," +
			"year INT NOT NULL DEFAULT 0," +
			"description TEXT NOT NULL," +
			"director VARCHAR(255) NOT NULL DEFAULT ''" +
			") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
		"CREATE TABLE IF NOT EXISTS `user` (" +
			"id BIGINT AUTO_INCREMENT PRIMARY KEY," +
			"username VARCHAR(255) COLLATE utf8mb4_bin NOT NULL," +
			"password VARCHAR(255) COLLATE utf8mb4_bin NOT NULL" +
			") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
		"CREATE TABLE IF NOT EXISTS `copy` (" +
			"id BIGINT AUTO_INCREMENT PRIMARY KEY," +
			"`condition` VARCHAR(100) NOT NULL DEFAULT ''," +
			"support VARCHAR(100) NOT NULL DEFAULT ''," +
			"film_id BIGINT NOT NULL," +
			"user_id BIGINT NOT NULL," +
			"INDEX idx_copy_user (user_id)," +
			"FOREIGN KEY (film_id) REFERENCES `film`(id)," +
			"FOREIGN KEY (user_id) REFERENCES `user`(id)" +
			") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
	},
	upsertMeta: `INSERT INTO meta(name,value) VALUES(?,?) ON DUPLICATE KEY UPDATE value=VALUES(value)`,
	insertMeta: `INSERT IGNORE INTO meta(name,value) VALUES(?,?)`,
}

var postgresDialect = dialect{
	name:        DriverPostgres,
	quote:       doubleQuote,
	dollars:     true,
	returningID: true,
	schema: []string{
		`CREATE TABLE IF NOT EXISTS "film" (
            id BIGSERIAL PRIMARY KEY,
            title TEXT NOT NULL DEFAULT '',
            genre TEXT NOT NULL DEFAULT '',
            year INTEGER NOT NULL DEFAULT 0,
            description TEXT NOT NULL DEFAULT '',
            director TEXT NOT NULL DEFAULT ''
        )`,
		`CREATE TABLE IF NOT EXISTS "user" (
            id BIGSERIAL PRIMARY KEY,
            username TEXT NOT NULL,
            password TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS "copy" (
            id BIGSERIAL PRIMARY KEY,
            "condition" TEXT NOT NULL DEFAULT '',
            support TEXT NOT NULL DEFAULT '',
            film_id BIGINT NOT NULL REFERENCES "film"(id),
            user_id BIGINT NOT NULL REFERENCES "user"(id)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_copy_user ON "copy"(user_id)`,
	},
	upsertMeta: `INSERT INTO meta(name,value) VALUES(?,?)
            ON CONFLICT(name) DO UPDATE SET value=excluded.value`,
	insertMeta: `INSERT INTO meta(name,value) VALUES(?,?) ON CONFLICT(name) DO NOTHING`,
}
