package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/liftlog/liftlog/internal/models"
)

// GetSettings returns the settings row, creating it with defaults on first use.
func (db *DB) GetSettings(ctx context.Context) (*models.Settings, error) {
	s, err := db.loadSettings(ctx, db.sql)
	if errors.Is(err, sql.ErrNoRows) {
		def := models.DefaultSettings
		if err := db.insertSettings(ctx, db.sql, &def); err != nil {
			return nil, fmt.Errorf("creating default settings: %w", err)
		}
		return &def, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying settings: %w", err)
	}
	return s, nil
}

// UpdateSettings applies a partial update and returns the result.
func (db *DB) UpdateSettings(ctx context.Context, upd models.SettingsUpdate) (*models.Settings, error) {
	s, err := db.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if upd.UnitPreference != nil {
		s.UnitPreference = *upd.UnitPreference
	}
	if upd.Theme != nil {
		s.Theme = *upd.Theme
	}
	s.UpdatedAt = time.Now().UTC()

	if _, err := db.sql.ExecContext(ctx,
		db.rebind(`UPDATE settings SET unit_preference = ?, theme = ?, updated_at = ? WHERE id = ?`),
		s.UnitPreference, s.Theme, s.UpdatedAt, s.ID); err != nil {
		return nil, fmt.Errorf("updating settings: %w", err)
	}
	return s, nil
}

// ResetSettings replaces the stored settings with defaults.
func (db *DB) ResetSettings(ctx context.Context) (*models.Settings, error) {
	def := models.DefaultSettings
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM settings`); err != nil {
			return err
		}
		return db.insertSettings(ctx, tx, &def)
	})
	if err != nil {
		return nil, fmt.Errorf("resetting settings: %w", err)
	}
	return &def, nil
}

func (db *DB) loadSettings(ctx context.Context, q queryer) (*models.Settings, error) {
	var s models.Settings
	err := q.QueryRowContext(ctx,
		`SELECT id, unit_preference, theme, created_at, updated_at FROM settings ORDER BY id LIMIT 1`,
	).Scan(&s.ID, &s.UnitPreference, &s.Theme, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// insertSettings writes s as a new row, filling in its ID and timestamps.
func (db *DB) insertSettings(ctx context.Context, q queryer, s *models.Settings) error {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = now
	}
	id, err := db.insertReturningID(ctx, q,
		`INSERT INTO settings (unit_preference, theme, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		s.UnitPreference, s.Theme, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}
