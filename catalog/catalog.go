// Package catalog wraps a database/sql connection and exposes the schema
// introspection the shell and the completion engine need: the live table
// list and plan-only column discovery for SELECT-shaped fragments.
package catalog

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

var driverName = map[string]string{
	"postgres": "pgx",
	"mysql":    "mysql",
	"sqlite":   "sqlite",
}

// DB is a single shared connection to one engine. The shell serves one
// interactive session, so no locking beyond connection-exclusive access is
// needed.
type DB struct {
	db     *sql.DB
	engine string
	dsn    string
}

// Open connects and pings. engine is one of "sqlite", "postgres", "mysql";
// for sqlite the dsn is a file path or ":memory:".
func Open(engine, dsn string) (*DB, error) {
	driver, ok := driverName[engine]
	if !ok {
		return nil, fmt.Errorf("no driver for engine %q", engine)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &DB{db: db, engine: engine, dsn: dsn}, nil
}

func (d *DB) Close() error   { return d.db.Close() }
func (d *DB) Engine() string { return d.engine }
func (d *DB) DSN() string    { return d.dsn }

// Tables returns the persisted table names, sorted. The list is read live
// on every call: DDL can change the schema between keystrokes, so caching
// here would serve stale names to the completion engine.
func (d *DB) Tables() ([]string, error) {
	var query string
	switch d.engine {
	case "postgres":
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' ORDER BY table_name"
	case "mysql":
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() ORDER BY table_name"
	default:
		query = "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
	}
	return d.stringColumn(query)
}

// Columns returns the column names of a table, in declaration order.
func (d *DB) Columns(table string) ([]string, error) {
	var query string
	var param any = table
	switch d.engine {
	case "postgres":
		query = "SELECT column_name FROM information_schema.columns WHERE table_schema = 'public' AND table_name = $1 ORDER BY ordinal_position"
	case "mysql":
		query = "SELECT column_name FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = ? ORDER BY ordinal_position"
	default:
		query = "SELECT name FROM pragma_table_info(?)"
	}
	return d.stringColumn(query, param)
}

// PlanColumns plans a SELECT-shaped fragment far enough to learn its output
// column names without reading any rows. The fragment is wrapped in a
// derived table with an always-false predicate, so nothing is materialized
// and nothing side-effecting can run.
func (d *DB) PlanColumns(fragment string) ([]string, error) {
	probe := "SELECT * FROM (" + fragment + ") AS plan_probe WHERE 1 = 0"
	rows, err := d.db.Query(probe)
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	defer func() { _ = rows.Close() }()
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("plan columns: %w", err)
	}
	return cols, rows.Err()
}

// Schema returns the stored CREATE statement for a table (sqlite only).
func (d *DB) Schema(table string) (string, error) {
	if d.engine != "sqlite" {
		return "", fmt.Errorf("schema display is only supported for sqlite")
	}
	var ddl sql.NullString
	err := d.db.QueryRow(
		"SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", table,
	).Scan(&ddl)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("table %s does not exist", table)
	}
	if err != nil {
		return "", fmt.Errorf("schema: %w", err)
	}
	if !ddl.Valid {
		return "", fmt.Errorf("table %s has no stored schema", table)
	}
	return ddl.String, nil
}

// Query runs a row-returning statement.
func (d *DB) Query(sqlStr string) (*sql.Rows, error) {
	rows, err := d.db.Query(sqlStr)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return rows, nil
}

// Exec runs a statement that returns no rows.
func (d *DB) Exec(sqlStr string) (int64, error) {
	res, err := d.db.Exec(sqlStr)
	if err != nil {
		return 0, fmt.Errorf("exec: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil // some drivers cannot report this; not an error
	}
	return n, nil
}

func (d *DB) stringColumn(query string, params ...any) ([]string, error) {
	rows, err := d.db.Query(query, params...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var result []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
