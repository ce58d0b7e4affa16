// Package install persists migration state between runs: the role-to-path
// mappings produced by discovery and the validation results of applied
// migrations.
package install

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration

	"github.com/databrickslabs/ucmigrate/internal/aws"
	"github.com/databrickslabs/ucmigrate/internal/uc"
)

// Store keeps migration state in a local SQLite database.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenStore opens or creates the state database at the given path,
// creating parent directories as needed.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating state directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS role_actions (
			role_arn      TEXT NOT NULL,
			resource_type TEXT NOT NULL,
			privilege     TEXT NOT NULL,
			resource_path TEXT NOT NULL,
			discovered_at TEXT NOT NULL,
			PRIMARY KEY (role_arn, resource_path)
		);
		CREATE TABLE IF NOT EXISTS validation_results (
			name         TEXT NOT NULL,
			role_arn     TEXT NOT NULL,
			validated_on TEXT NOT NULL,
			read_only    INTEGER NOT NULL,
			failures     TEXT NOT NULL,
			migrated_at  TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_validation_results_name ON validation_results(name);
	`)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRoleActions replaces the stored discovery snapshot. Discovery is a
// full rescan, so stale mappings must not survive.
func (s *Store) SaveRoleActions(ctx context.Context, actions []aws.RoleAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM role_actions`); err != nil {
		return fmt.Errorf("clearing role actions: %w", err)
	}

	now := time.Now().Format(time.RFC3339Nano)
	for _, action := range actions {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO role_actions (role_arn, resource_type, privilege, resource_path, discovered_at)
			VALUES (?, ?, ?, ?, ?)
		`, action.RoleARN, action.ResourceType, string(action.Privilege), action.ResourcePath, now)
		if err != nil {
			return fmt.Errorf("inserting role action: %w", err)
		}
	}

	return tx.Commit()
}

// LoadRoleActions returns the stored discovery snapshot, empty when no
// discovery has run yet.
func (s *Store) LoadRoleActions(ctx context.Context) ([]aws.RoleAction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role_arn, resource_type, privilege, resource_path
		FROM role_actions
		ORDER BY role_arn, resource_path
	`)
	if err != nil {
		return nil, fmt.Errorf("querying role actions: %w", err)
	}
	defer rows.Close()

	var actions []aws.RoleAction
	for rows.Next() {
		var action aws.RoleAction
		var privilege string
		if err := rows.Scan(&action.RoleARN, &action.ResourceType, &privilege, &action.ResourcePath); err != nil {
			return nil, fmt.Errorf("scanning role action: %w", err)
		}
		action.Privilege = aws.Privilege(privilege)
		actions = append(actions, action)
	}
	return actions, rows.Err()
}

// SaveValidationResults appends the results of one migration run.
func (s *Store) SaveValidationResults(ctx context.Context, results []*uc.ValidationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Format(time.RFC3339Nano)
	for _, result := range results {
		failures, err := json.Marshal(result.Failures)
		if err != nil {
			return fmt.Errorf("marshaling failures: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO validation_results (name, role_arn, validated_on, read_only, failures, migrated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, result.Name, result.RoleARN, result.ValidatedOn, result.ReadOnly, string(failures), now)
		if err != nil {
			return fmt.Errorf("inserting validation result: %w", err)
		}
	}

	return tx.Commit()
}

// LoadValidationResults returns all recorded migration outcomes, newest first.
func (s *Store) LoadValidationResults(ctx context.Context) ([]*uc.ValidationResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, role_arn, validated_on, read_only, failures
		FROM validation_results
		ORDER BY migrated_at DESC, name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying validation results: %w", err)
	}
	defer rows.Close()

	var results []*uc.ValidationResult
	for rows.Next() {
		var result uc.ValidationResult
		var failures string
		if err := rows.Scan(&result.Name, &result.RoleARN, &result.ValidatedOn, &result.ReadOnly, &failures); err != nil {
			return nil, fmt.Errorf("scanning validation result: %w", err)
		}
		if err := json.Unmarshal([]byte(failures), &result.Failures); err != nil {
			return nil, fmt.Errorf("unmarshaling failures: %w", err)
		}
		results = append(results, &result)
	}
	return results, rows.Err()
}
