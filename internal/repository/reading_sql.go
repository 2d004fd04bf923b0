package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"noise_monitor/internal/models"
)

type ReadingSQL struct {
	db      *sql.DB
	dialect Dialect
}

func NewReadingSQL(db *sql.DB, dialect Dialect) *ReadingSQL {
	return &ReadingSQL{db: db, dialect: dialect}
}

var _ ReadingStore = (*ReadingSQL)(nil)

const (
	readingColumns = `id, device_id, noise_level, noise_max, recorded_at, received_at, battery_level, temperature, humidity, status, metadata, thresholds, payload`

	insertReadingSQL = `INSERT INTO device_readings (` + readingColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectReadingsSQL = `SELECT ` + readingColumns + ` FROM device_readings`

	selectLatestReadingSQL = selectReadingsSQL + ` WHERE device_id = ? ORDER BY received_at DESC LIMIT 1`

	selectLatestAllSQL = selectReadingsSQL + ` r WHERE r.received_at = (SELECT MAX(received_at) FROM device_readings WHERE device_id = r.device_id) ORDER BY r.device_id`
)

// Append inserts one reading. Timestamps are persisted as UTC.
func (r *ReadingSQL) Append(ctx context.Context, rd models.DeviceReading) error {
	metadata, err := marshalNullable(rd.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata of %q: %w", rd.DeviceID, err)
	}
	thresholds, err := marshalNullable(rd.Thresholds)
	if err != nil {
		return fmt.Errorf("marshal thresholds of %q: %w", rd.DeviceID, err)
	}
	var payload sql.NullString
	if len(rd.Payload) > 0 {
		if payload, err = marshalNullable(rd.Payload); err != nil {
			return fmt.Errorf("marshal payload of %q: %w", rd.DeviceID, err)
		}
	}
	var status sql.NullString
	if rd.Status != nil {
		status = sql.NullString{String: string(*rd.Status), Valid: true}
	}

	_, err = r.db.ExecContext(ctx, r.dialect.rebind(insertReadingSQL),
		rd.ID,
		rd.DeviceID,
		rd.NoiseLevel,
		rd.NoiseMax,
		rd.RecordedAt.UTC(),
		rd.ReceivedAt.UTC(),
		rd.BatteryLevel,
		rd.Temperature,
		rd.Humidity,
		status,
		metadata,
		thresholds,
		payload,
	)
	if err != nil {
		return fmt.Errorf("insert reading of %q: %w", rd.DeviceID, err)
	}
	return nil
}

// Latest returns the newest reading of deviceID. Returns (nil, nil) if none.
func (r *ReadingSQL) Latest(ctx context.Context, deviceID string) (*models.DeviceReading, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.rebind(selectLatestReadingSQL), deviceID)
	if err != nil {
		return nil, fmt.Errorf("select latest reading of %q: %w", deviceID, err)
	}
	out, err := scanReadings(rows)
	if err != nil {
		return nil, fmt.Errorf("select latest reading of %q: %w", deviceID, err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

// History returns up to limit readings of deviceID newest first, filtered
// by recorded_at within [from, to] (zero bounds are open).
func (r *ReadingSQL) History(ctx context.Context, deviceID string, from, to time.Time, limit int) ([]models.DeviceReading, error) {
	if limit <= 0 {
		return []models.DeviceReading{}, nil
	}
	conds := []string{"device_id = ?"}
	args := []any{deviceID}

	if !from.IsZero() {
		conds = append(conds, "recorded_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "recorded_at <= ?")
		args = append(args, to.UTC())
	}
	args = append(args, limit)

	q := selectReadingsSQL + " WHERE " + strings.Join(conds, " AND ") + " ORDER BY received_at DESC LIMIT ?"

	rows, err := r.db.QueryContext(ctx, r.dialect.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("select history of %q: %w", deviceID, err)
	}
	out, err := scanReadings(rows)
	if err != nil {
		return nil, fmt.Errorf("select history of %q: %w", deviceID, err)
	}
	return out, nil
}

// LatestAll returns the newest reading per device, ordered by device ID.
func (r *ReadingSQL) LatestAll(ctx context.Context) ([]models.DeviceReading, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.rebind(selectLatestAllSQL))
	if err != nil {
		return nil, fmt.Errorf("select latest readings: %w", err)
	}
	all, err := scanReadings(rows)
	if err != nil {
		return nil, fmt.Errorf("select latest readings: %w", err)
	}
	// two readings received in the same instant both match MAX(received_at)
	out := all[:0]
	for i, rd := range all {
		if i > 0 && all[i-1].DeviceID == rd.DeviceID {
			continue
		}
		out = append(out, rd)
	}
	return out, nil
}

func scanReadings(rows *sql.Rows) ([]models.DeviceReading, error) {
	defer rows.Close()

	out := make([]models.DeviceReading, 0, 16)
	for rows.Next() {
		var rd models.DeviceReading
		var battery, temperature, humidity sql.NullFloat64
		var status, metadata, thresholds, payload sql.NullString
		if err := rows.Scan(
			&rd.ID,
			&rd.DeviceID,
			&rd.NoiseLevel,
			&rd.NoiseMax,
			&rd.RecordedAt,
			&rd.ReceivedAt,
			&battery,
			&temperature,
			&humidity,
			&status,
			&metadata,
			&thresholds,
			&payload,
		); err != nil {
			return nil, err
		}
		rd.RecordedAt = rd.RecordedAt.UTC()
		rd.ReceivedAt = rd.ReceivedAt.UTC()
		rd.BatteryLevel = floatPtr(battery)
		rd.Temperature = floatPtr(temperature)
		rd.Humidity = floatPtr(humidity)
		if status.Valid && status.String != "" {
			s := models.DeviceStatus(status.String)
			rd.Status = &s
		}
		if err := unmarshalNullable(metadata, &rd.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata of %q: %w", rd.ID, err)
		}
		if err := unmarshalNullable(thresholds, &rd.Thresholds); err != nil {
			return nil, fmt.Errorf("decode thresholds of %q: %w", rd.ID, err)
		}
		if err := unmarshalNullable(payload, &rd.Payload); err != nil {
			return nil, fmt.Errorf("decode payload of %q: %w", rd.ID, err)
		}
		out = append(out, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// marshalNullable encodes v as JSON text, or NULL when v is a nil pointer or map.
func marshalNullable[T any](v T) (sql.NullString, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	if string(b) == "null" {
		return sql.NullString{}, nil
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func unmarshalNullable[T any](s sql.NullString, dst *T) error {
	if !s.Valid || s.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(s.String), dst)
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
