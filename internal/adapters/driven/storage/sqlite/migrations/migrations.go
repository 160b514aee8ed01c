// Package migrations versions the corpus schema. Each version is a pair of
// files, NNN_name.up.sql and NNN_name.down.sql, embedded into the binary.
// Applied versions are recorded in the schema_migrations table.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"strconv"
)

//go:embed *.sql
var embedded embed.FS

// Embedded returns the migrations compiled into the binary.
func Embedded() fs.FS { return embedded }

// Migration is one schema version.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

var fileName = regexp.MustCompile(`^(\d+)_(\w+)\.(up|down)\.sql$`)

// Load reads every migration in fsys, ordered by version. Files that do
// not follow the naming scheme are ignored. Every version needs an up
// script; a down script is optional.
func Load(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	byVersion := map[int]*Migration{}
	for _, e := range entries {
		m := fileName.FindStringSubmatch(e.Name())
		if m == nil || e.IsDir() {
			continue
		}
		version, _ := strconv.Atoi(m[1])
		body, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", e.Name(), err)
		}

		mig, ok := byVersion[version]
		if !ok {
			mig = &Migration{Version: version, Name: m[2]}
			byVersion[version] = mig
		} else if mig.Name != m[2] {
			return nil, fmt.Errorf("migration %d has two names: %s and %s", version, mig.Name, m[2])
		}
		if m[3] == "up" {
			mig.Up = string(body)
		} else {
			mig.Down = string(body)
		}
	}

	out := make([]Migration, 0, len(byVersion))
	for _, mig := range byVersion {
		if mig.Up == "" {
			return nil, fmt.Errorf("migration %03d_%s has no up script", mig.Version, mig.Name)
		}
		out = append(out, *mig)
	}
	slices.SortFunc(out, func(a, b Migration) int { return a.Version - b.Version })
	return out, nil
}

const createTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`

// Current returns the highest applied version, 0 for a fresh database.
func Current(ctx context.Context, db *sql.DB) (int, error) {
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}
	var v int
	err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// Up applies every migration newer than the current version, each in its
// own transaction. It returns the versions it applied.
func Up(ctx context.Context, db *sql.DB, fsys fs.FS) ([]int, error) {
	all, err := Load(fsys)
	if err != nil {
		return nil, err
	}
	current, err := Current(ctx, db)
	if err != nil {
		return nil, err
	}

	var applied []int
	for _, m := range all {
		if m.Version <= current {
			continue
		}
		err := inTx(ctx, db, m.Up, "INSERT INTO schema_migrations (version) VALUES (?)", m.Version)
		if err != nil {
			return applied, fmt.Errorf("apply %03d_%s: %w", m.Version, m.Name, err)
		}
		applied = append(applied, m.Version)
	}
	return applied, nil
}

// Down reverts applied migrations newer than target, newest first, and
// returns the versions it reverted.
func Down(ctx context.Context, db *sql.DB, fsys fs.FS, target int) ([]int, error) {
	all, err := Load(fsys)
	if err != nil {
		return nil, err
	}
	current, err := Current(ctx, db)
	if err != nil {
		return nil, err
	}

	var reverted []int
	for _, m := range slices.Backward(all) {
		if m.Version <= target || m.Version > current {
			continue
		}
		if m.Down == "" {
			return reverted, fmt.Errorf("migration %03d_%s cannot be reverted", m.Version, m.Name)
		}
		err := inTx(ctx, db, m.Down, "DELETE FROM schema_migrations WHERE version = ?", m.Version)
		if err != nil {
			return reverted, fmt.Errorf("revert %03d_%s: %w", m.Version, m.Name, err)
		}
		reverted = append(reverted, m.Version)
	}
	return reverted, nil
}

func inTx(ctx context.Context, db *sql.DB, script, record string, version int) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, record, version); err != nil {
		return err
	}
	return tx.Commit()
}
