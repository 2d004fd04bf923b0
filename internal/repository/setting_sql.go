package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"noise_monitor/internal/models"
)

type SettingSQL struct {
	db      *sql.DB
	dialect Dialect
}

func NewSettingSQL(db *sql.DB, dialect Dialect) *SettingSQL {
	return &SettingSQL{db: db, dialect: dialect}
}

var _ SettingRepo = (*SettingSQL)(nil)

const (
	selectSettingSQL = `SELECT value, updated_at FROM system_settings WHERE key = ?`

	upsertSettingSQL = `
		INSERT INTO system_settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value=excluded.value,
			updated_at=excluded.updated_at
	`
)

// ingestValue is the JSON document stored in system_settings.value.
type ingestValue struct {
	Enabled *bool `json:"enabled"`
}

// LoadIngestSetting reads the gate row. A missing row, or a value without a
// boolean "enabled" member, yields (nil, nil).
func (r *SettingSQL) LoadIngestSetting(ctx context.Context) (*models.IngestSetting, error) {
	var (
		raw       string
		updatedAt time.Time
	)
	err := r.db.QueryRowContext(ctx, r.dialect.rebind(selectSettingSQL), models.IngestSettingKey).Scan(&raw, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select setting %q: %w", models.IngestSettingKey, err)
	}

	var v ingestValue
	if err := json.Unmarshal([]byte(raw), &v); err != nil || v.Enabled == nil {
		return nil, nil
	}
	return &models.IngestSetting{Enabled: *v.Enabled, UpdatedAt: updatedAt.UTC()}, nil
}

// SaveIngestSetting upserts the gate row. A zero UpdatedAt is set to now.
func (r *SettingSQL) SaveIngestSetting(ctx context.Context, s models.IngestSetting) error {
	raw, err := json.Marshal(ingestValue{Enabled: &s.Enabled})
	if err != nil {
		return err
	}
	ts := s.UpdatedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	if _, err := r.db.ExecContext(ctx, r.dialect.rebind(upsertSettingSQL),
		models.IngestSettingKey,
		string(raw),
		ts.UTC(),
	); err != nil {
		return fmt.Errorf("upsert setting %q: %w", models.IngestSettingKey, err)
	}
	return nil
}
