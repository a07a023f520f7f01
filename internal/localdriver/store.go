package localdriver

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/driverbdd/internal/concept"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added index on things(database, type_label)
const currentSchemaVersion = 1

// store owns the SQLite handle and all SQL text.
type store struct {
	db *sql.DB
}

// openStore creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
func openStore(path string) (*store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// A single connection keeps ":memory:" databases alive and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &store{db: db}, nil
}

func (s *store) close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if _, err := db.Exec(`
			CREATE INDEX IF NOT EXISTS idx_things_type
			ON things(database, type_label)
		`); err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

func (s *store) createDatabase(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO databases (name) VALUES (?)`, name)
	if isConstraintError(err) {
		return concept.NewDriverError(concept.ErrCodeDatabaseExists, "database %q already exists", name)
	}
	if err != nil {
		return fmt.Errorf("create database: %w", err)
	}
	return nil
}

func (s *store) deleteDatabase(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM databases WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete database: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete database: %w", err)
	}
	if n == 0 {
		return concept.NewDriverError(concept.ErrCodeDatabaseNotFound, "database %q does not exist", name)
	}
	return nil
}

func (s *store) databaseExists(ctx context.Context, name string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM databases WHERE name = ?`, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query database: %w", err)
	}
	return true, nil
}

func (s *store) listDatabases(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM databases ORDER BY name COLLATE BINARY ASC`)
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list databases: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// typeKind returns the stored kind of a label, or ok=false if it is not defined.
func (s *store) typeKind(ctx context.Context, database, label string) (kind concept.Kind, ok bool, err error) {
	var raw string
	err = s.db.QueryRowContext(ctx,
		`SELECT kind FROM thing_types WHERE database = ? AND label = ?`,
		database, label,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query type %q: %w", label, err)
	}
	kind, err = concept.ParseKind(raw)
	if err != nil {
		return 0, false, fmt.Errorf("query type %q: %w", label, err)
	}
	return kind, true, nil
}

// listThings returns committed instances of a type. For a root type every
// instance of that kind is returned.
func (s *store) listThings(ctx context.Context, database string, typ *thingType) ([]*thing, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if typ.root {
		rows, err = s.db.QueryContext(ctx, `
			SELECT t.iid, t.type_label, ty.kind
			FROM things t
			JOIN thing_types ty ON ty.database = t.database AND ty.label = t.type_label
			WHERE t.database = ? AND ty.kind = ?
			ORDER BY t.rowid ASC
		`, database, typ.kind.String())
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT t.iid, t.type_label, ty.kind
			FROM things t
			JOIN thing_types ty ON ty.database = t.database AND ty.label = t.type_label
			WHERE t.database = ? AND t.type_label = ?
			ORDER BY t.rowid ASC
		`, database, typ.label)
	}
	if err != nil {
		return nil, fmt.Errorf("list things: %w", err)
	}
	defer rows.Close()

	var things []*thing
	for rows.Next() {
		var iid, label, rawKind string
		if err := rows.Scan(&iid, &label, &rawKind); err != nil {
			return nil, fmt.Errorf("list things: %w", err)
		}
		kind, err := concept.ParseKind(rawKind)
		if err != nil {
			return nil, fmt.Errorf("list things: %w", err)
		}
		things = append(things, &thing{iid: iid, typ: &thingType{label: label, kind: kind}})
	}
	return things, rows.Err()
}

// apply writes buffered types and things atomically.
func (s *store) apply(ctx context.Context, database string, types []*thingType, things []*thing) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("commit: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM databases WHERE name = ?`, database).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return concept.NewDriverError(concept.ErrCodeDatabaseNotFound, "database %q was deleted", database)
	}
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	for _, t := range types {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO thing_types (database, label, kind) VALUES (?, ?, ?)`,
			database, t.label, t.kind.String(),
		)
		if isConstraintError(err) {
			return concept.NewDriverError(concept.ErrCodeTypeLabelTaken, "type label %q is already defined", t.label)
		}
		if err != nil {
			return fmt.Errorf("commit: insert type %q: %w", t.label, err)
		}
	}

	for _, th := range things {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO things (iid, database, type_label) VALUES (?, ?, ?)`,
			th.iid, database, th.typ.label,
		)
		if isConstraintError(err) {
			return concept.NewDriverError(concept.ErrCodeTypeNotFound, "type %q of %s no longer exists", th.typ.label, th.iid)
		}
		if err != nil {
			return fmt.Errorf("commit: insert thing %s: %w", th.iid, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func isConstraintError(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.Code == sqlite3.ErrConstraint
}
