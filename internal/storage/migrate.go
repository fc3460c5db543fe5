package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// MigrateUp applies every pending up migration, in filename order. Applied
// migrations are recorded in schema_migrations so a restart never re-runs
// DDL the cache database already carries.
func MigrateUp(db *sql.DB) error {
	if err := ensureMigrationTable(db); err != nil {
		return err
	}
	names, err := migrationNames(".up.sql")
	if err != nil {
		return err
	}
	for _, name := range names {
		applied, err := migrationApplied(db, name)
		if err != nil {
			return err
		}
		if applied {
			continue
		}
		if err := runMigration(db, name, func(tx *sql.Tx) error {
			_, err := tx.Exec(`INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)`, name, time.Now().UTC())
			return err
		}); err != nil {
			return err
		}
	}
	return nil
}

// MigrateDown rolls back every applied migration, newest first.
func MigrateDown(db *sql.DB) error {
	if err := ensureMigrationTable(db); err != nil {
		return err
	}
	names, err := migrationNames(".down.sql")
	if err != nil {
		return err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	for _, name := range names {
		upName := strings.Replace(name, ".down.sql", ".up.sql", 1)
		applied, err := migrationApplied(db, upName)
		if err != nil {
			return err
		}
		if !applied {
			continue
		}
		if err := runMigration(db, name, func(tx *sql.Tx) error {
			_, err := tx.Exec(`DELETE FROM schema_migrations WHERE name = ?`, upName)
			return err
		}); err != nil {
			return err
		}
	}
	return nil
}

func ensureMigrationTable(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

func migrationNames(suffix string) ([]string, error) {
	names, err := fs.Glob(migrationFiles, "migrations/*"+suffix)
	if err != nil {
		return nil, fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

func migrationApplied(db *sql.DB, name string) (bool, error) {
	var found string
	err := db.QueryRow(`SELECT name FROM schema_migrations WHERE name = ?`, name).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check migration %s: %w", name, err)
	}
	return true, nil
}

// runMigration executes one migration file and its ledger update in a single
// transaction, so a failed statement leaves neither behind.
func runMigration(db *sql.DB, name string, record func(*sql.Tx) error) error {
	sqlBytes, err := migrationFiles.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", name, err)
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", name, err)
	}
	if _, err := tx.Exec(string(sqlBytes)); err != nil {
		tx.Rollback()
		return fmt.Errorf("apply migration %s: %w", name, err)
	}
	if err := record(tx); err != nil {
		tx.Rollback()
		return fmt.Errorf("record migration %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", name, err)
	}
	return nil
}
