package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps entries in a single table
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if missing) the SQLite database at the provided path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), DirPermissions); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer keeps sqlite away from "database is locked".
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS opened_windows (
			profile TEXT PRIMARY KEY,
			days TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Load returns the stored entry
func (s *SQLiteStore) Load(ctx context.Context, profile string) ([]byte, error) {
	if err := ValidateProfile(profile); err != nil {
		return nil, err
	}

	var days string
	err := s.db.QueryRowContext(ctx,
		`SELECT days FROM opened_windows WHERE profile = ?`, profile,
	).Scan(&days)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select opened windows: %w", err)
	}
	return []byte(days), nil
}

// Save upserts the entry
func (s *SQLiteStore) Save(ctx context.Context, profile string, data []byte) error {
	if err := ValidateProfile(profile); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO opened_windows (profile, days, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(profile) DO UPDATE SET days = excluded.days, updated_at = CURRENT_TIMESTAMP`,
		profile, string(data),
	)
	if err != nil {
		return fmt.Errorf("upsert opened windows: %w", err)
	}
	return nil
}

// Delete removes the entry
func (s *SQLiteStore) Delete(ctx context.Context, profile string) error {
	if err := ValidateProfile(profile); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM opened_windows WHERE profile = ?`, profile)
	if err != nil {
		return fmt.Errorf("delete opened windows: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
