package repository

import (
	"context"
	"database/sql"
	"time"

	"noise_monitor/internal/models"
)

// ReadingStore persists device readings.
type ReadingStore interface {
	Append(ctx context.Context, r models.DeviceReading) error
	Latest(ctx context.Context, deviceID string) (*models.DeviceReading, error)
	History(ctx context.Context, deviceID string, from, to time.Time, limit int) ([]models.DeviceReading, error)
	LatestAll(ctx context.Context) ([]models.DeviceReading, error)
}

// SettingRepo persists the ingestion gate. Load returns (nil, nil) when
// the setting was never saved.
type SettingRepo interface {
	LoadIngestSetting(ctx context.Context) (*models.IngestSetting, error)
	SaveIngestSetting(ctx context.Context, s models.IngestSetting) error
}

type Repository struct {
	// Local is always present: the fallback store and the local mirror.
	Local *MemoryHistory
	// Readings is the external store; nil means local only.
	Readings ReadingStore
	// Settings is nil when the gate lives only in process memory.
	Settings SettingRepo
}

// NewMemoryRepository keeps everything in process memory.
func NewMemoryRepository(historyLimit int) *Repository {
	return &Repository{Local: NewMemoryHistory(historyLimit)}
}

// NewSQLRepository writes through to a sqlite or postgres database.
func NewSQLRepository(db *sql.DB, dialect Dialect, historyLimit int) *Repository {
	return &Repository{
		Local:    NewMemoryHistory(historyLimit),
		Readings: NewReadingSQL(db, dialect),
		Settings: NewSettingSQL(db, dialect),
	}
}

// NewDynamoRepository writes through to DynamoDB tables.
func NewDynamoRepository(client DynamoAPI, readingsTable, settingsTable string, historyLimit int) *Repository {
	return &Repository{
		Local:    NewMemoryHistory(historyLimit),
		Readings: NewReadingDynamo(client, readingsTable),
		Settings: NewSettingDynamo(client, settingsTable),
	}
}
