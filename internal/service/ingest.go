package service

import (
	"context"
	"fmt"
	"time"

	"noise_monitor/internal/logger"
	"noise_monitor/internal/metrics"
	"noise_monitor/internal/models"
	"noise_monitor/internal/repository"

	"github.com/google/uuid"
)

type IngestService struct {
	store   repository.ReadingStore
	now     func() time.Time
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewIngestService(store repository.ReadingStore, log *logger.Logger, m *metrics.Metrics) *IngestService {
	return &IngestService{store: store, now: time.Now, log: log, metrics: m}
}

// Accept parses raw, normalizes the reading and stores it.
// Errors are ErrInvalidPayload, *ValidationError or ErrStorage.
func (s *IngestService) Accept(ctx context.Context, raw []byte) (models.DeviceReading, error) {
	in, err := ParseReading(raw)
	if err != nil {
		return models.DeviceReading{}, err
	}

	reading := Normalize(in, s.now())
	if err := s.store.Append(ctx, reading); err != nil {
		if s.log != nil {
			s.log.Errorw("reading_store_failed", "err", err, "device_id", reading.DeviceID)
		}
		return models.DeviceReading{}, fmt.Errorf("%w: store reading of %q", ErrStorage, reading.DeviceID)
	}
	s.metrics.ReadingAccepted()
	if s.log != nil {
		s.log.Debugw("reading_accepted", "device_id", reading.DeviceID, "noise_level", reading.NoiseLevel)
	}
	return reading, nil
}

// Normalize turns a validated input into a stored reading received at now.
// NoiseMax falls back to NoiseLevel and RecordedAt to the receipt time.
func Normalize(in models.ReadingInput, now time.Time) models.DeviceReading {
	now = now.UTC()
	r := models.DeviceReading{
		ID:           uuid.NewString(),
		DeviceID:     in.DeviceID,
		RecordedAt:   now,
		ReceivedAt:   now,
		BatteryLevel: in.BatteryLevel,
		Temperature:  in.Temperature,
		Humidity:     in.Humidity,
		Status:       in.Status,
		Metadata:     in.Metadata,
		Thresholds:   in.Thresholds,
		Payload:      in.Payload,
	}
	if in.NoiseLevel != nil {
		r.NoiseLevel = *in.NoiseLevel
	}
	r.NoiseMax = r.NoiseLevel
	if in.NoiseMax != nil {
		r.NoiseMax = *in.NoiseMax
	}
	if in.RecordedAt != nil {
		if t, err := time.Parse(time.RFC3339Nano, *in.RecordedAt); err == nil {
			r.RecordedAt = t.UTC()
		}
	}
	return r
}
