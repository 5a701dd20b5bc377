// Package store persists licenses and project history in a local SQLite
// database.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// Store wraps the application database.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// Project is one recorded edit run.
type Project struct {
	ID         string
	InputPath  string
	OutputPath string
	Prompt     string
	CreatedAt  time.Time
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(logger zerolog.Logger, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger.With().Str("component", "store").Logger(),
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// LicenseValid reports whether key is present and not revoked. An empty key
// is never valid and skips the query entirely.
func (s *Store) LicenseValid(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, nil
	}

	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM licenses WHERE license_key = ? AND valid = 1", key).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check license: %w", err)
	}
	return n > 0, nil
}

// AddLicense stores (or re-activates) a license key.
func (s *Store) AddLicense(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("license key is required")
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO licenses (license_key, valid) VALUES (?, 1)", key)
	if err != nil {
		return fmt.Errorf("failed to add license: %w", err)
	}

	s.logger.Info().Msg("license stored")
	return nil
}

// RecordProject appends one edit run to the history and returns its id.
func (s *Store) RecordProject(ctx context.Context, inputPath, outputPath, prompt string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO projects (id, input_path, output_path, prompt) VALUES (?, ?, ?, ?)",
		id, inputPath, outputPath, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to record project: %w", err)
	}

	s.logger.Debug().Str("project_id", id).Msg("project recorded")
	return id, nil
}

// Projects returns the edit history, newest first.
func (s *Store) Projects(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, input_path, output_path, prompt, created_at FROM projects ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.InputPath, &p.OutputPath, &p.Prompt, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
