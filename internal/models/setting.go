package models

import "time"

// IngestSettingKey is the system_settings key holding the ingestion flag.
const IngestSettingKey = "device_ingest_enabled"

// IngestSetting is the persisted value of the ingestion gate.
type IngestSetting struct {
	Enabled   bool      `json:"enabled"`
	UpdatedAt time.Time `json:"updated_at"`
}
