package store

import (
	"fmt"
	"time"
)

// Operation kinds.
const (
	KindBackup   = "backup"
	KindRestore  = "restore"
	KindExternal = "external" // file appeared in the backup dir outside koggi
)

// Operation statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Operation is one recorded backup/restore run.
type Operation struct {
	ID        int64
	Profile   string
	Kind      string
	File      string
	SizeBytes int64
	Duration  time.Duration
	Status    string
	Error     string
	CreatedAt time.Time
}

// RecordOperation inserts op and returns its row id. A zero CreatedAt
// is replaced with the current time. Timestamps are stored as RFC3339
// UTC text so lexicographic ordering matches chronological ordering.
func (s *Store) RecordOperation(op Operation) (int64, error) {
	createdAt := op.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	result, err := s.db.Exec(`
		INSERT INTO operations (profile, kind, file, size_bytes, duration_ms, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		op.Profile, op.Kind, op.File, op.SizeBytes, op.Duration.Milliseconds(), op.Status, op.Error,
		createdAt.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to record operation: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get operation id: %w", err)
	}
	return id, nil
}

// RecentOperations returns up to limit operations, newest first.
// An empty profile matches every profile.
func (s *Store) RecentOperations(profile string, limit int) ([]Operation, error) {
	query := `
		SELECT id, profile, kind, file, size_bytes, duration_ms, status, error, created_at
		FROM operations`
	args := []any{}
	if profile != "" {
		query += " WHERE profile = ?"
		args = append(args, profile)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query operations: %w", err)
	}
	defer rows.Close()

	var ops []Operation
	for rows.Next() {
		var op Operation
		var durationMS int64
		var createdAt string
		if err := rows.Scan(&op.ID, &op.Profile, &op.Kind, &op.File,
			&op.SizeBytes, &durationMS, &op.Status, &op.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}
		op.Duration = time.Duration(durationMS) * time.Millisecond
		op.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at for operation %d: %w", op.ID, err)
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

// Prune deletes operations recorded before cutoff and returns how many
// rows were removed.
func (s *Store) Prune(cutoff time.Time) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM operations WHERE created_at < ?`,
		cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to prune operations: %w", err)
	}
	return result.RowsAffected()
}
