package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Import log statuses.
const (
	ImportRunning = "running"
	ImportSuccess = "success"
	ImportPartial = "partial"
	ImportError   = "error"
)

// ImportLog represents a single import operation's outcome.
type ImportLog struct {
	ID         uuid.UUID `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Source     string    `json:"source"`
	Status     string    `json:"status"`
	Success    int       `json:"success"`
	Skipped    int       `json:"skipped"`
	Errors     []string  `json:"errors"`
	DurationMs int64     `json:"duration_ms"`
}

// InsertImportLog creates a new import log entry. A nil ID is replaced with
// a fresh random UUID, which is returned.
func (db *DB) InsertImportLog(ctx context.Context, log ImportLog) (uuid.UUID, error) {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	errorsJSON, err := encodeErrors(log.Errors)
	if err != nil {
		return uuid.Nil, err
	}

	_, err = db.sql.ExecContext(ctx, db.rebind(
		`INSERT INTO import_logs (id, created_at, source, status, success, skipped, error_count, errors_json, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		log.ID, log.CreatedAt, log.Source, log.Status, log.Success, log.Skipped,
		len(log.Errors), errorsJSON, log.DurationMs)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting import log: %w", err)
	}
	return log.ID, nil
}

// UpdateImportLog updates an existing import log entry (typically from "running" to a final status).
func (db *DB) UpdateImportLog(ctx context.Context, id uuid.UUID, log ImportLog) error {
	errorsJSON, err := encodeErrors(log.Errors)
	if err != nil {
		return err
	}
	res, err := db.sql.ExecContext(ctx, db.rebind(
		`UPDATE import_logs SET
		 status = ?, success = ?, skipped = ?, error_count = ?, errors_json = ?, duration_ms = ?
		 WHERE id = ?`),
		log.Status, log.Success, log.Skipped, len(log.Errors), errorsJSON, log.DurationMs, id)
	if err != nil {
		return fmt.Errorf("updating import log %s: %w", id, err)
	}
	return requireAffected(res)
}

// ListImportLogs returns the most recent import logs, newest first.
func (db *DB) ListImportLogs(ctx context.Context, limit int) ([]ImportLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.sql.QueryContext(ctx, db.rebind(
		`SELECT id, created_at, source, status, success, skipped, errors_json, duration_ms
		 FROM import_logs
		 ORDER BY created_at DESC
		 LIMIT ?`),
		limit)
	if err != nil {
		return nil, fmt.Errorf("querying import logs: %w", err)
	}
	defer rows.Close()

	result := []ImportLog{}
	for rows.Next() {
		var (
			l          ImportLog
			errorsJSON string
		)
		if err := rows.Scan(&l.ID, &l.CreatedAt, &l.Source, &l.Status,
			&l.Success, &l.Skipped, &errorsJSON, &l.DurationMs); err != nil {
			return nil, fmt.Errorf("scanning import log: %w", err)
		}
		if err := json.Unmarshal([]byte(errorsJSON), &l.Errors); err != nil {
			return nil, fmt.Errorf("decoding errors of import log %s: %w", l.ID, err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

func encodeErrors(errs []string) (string, error) {
	if errs == nil {
		errs = []string{}
	}
	b, err := json.Marshal(errs)
	if err != nil {
		return "", fmt.Errorf("encoding import errors: %w", err)
	}
	return string(b), nil
}
