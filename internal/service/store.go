package service

import (
	"context"
	"time"

	"noise_monitor/internal/logger"
	"noise_monitor/internal/metrics"
	"noise_monitor/internal/models"
	"noise_monitor/internal/repository"
)

// tieredStore writes through to the external store and mirrors accepted
// readings into the local history. Reads fall back to the local history
// when the external store fails. Without an external store it is the
// local history alone.
type tieredStore struct {
	local   *repository.MemoryHistory
	remote  repository.ReadingStore
	log     *logger.Logger
	metrics *metrics.Metrics
}

func newTieredStore(local *repository.MemoryHistory, remote repository.ReadingStore, log *logger.Logger, m *metrics.Metrics) *tieredStore {
	return &tieredStore{local: local, remote: remote, log: log, metrics: m}
}

var _ repository.ReadingStore = (*tieredStore)(nil)

// Append fails without touching the mirror if the external write fails.
func (s *tieredStore) Append(ctx context.Context, r models.DeviceReading) error {
	if s.remote != nil {
		start := time.Now()
		err := s.remote.Append(ctx, r)
		s.metrics.ObserveStoreWrite(time.Since(start).Seconds())
		if err != nil {
			return err
		}
	}
	return s.local.Append(ctx, r)
}

func (s *tieredStore) Latest(ctx context.Context, deviceID string) (*models.DeviceReading, error) {
	if s.remote != nil {
		r, err := s.remote.Latest(ctx, deviceID)
		if err == nil {
			return r, nil
		}
		s.fallback("latest", err, "device_id", deviceID)
	}
	return s.local.Latest(ctx, deviceID)
}

func (s *tieredStore) History(ctx context.Context, deviceID string, from, to time.Time, limit int) ([]models.DeviceReading, error) {
	if s.remote != nil {
		out, err := s.remote.History(ctx, deviceID, from, to, limit)
		if err == nil {
			return out, nil
		}
		s.fallback("history", err, "device_id", deviceID)
	}
	return s.local.History(ctx, deviceID, from, to, limit)
}

func (s *tieredStore) LatestAll(ctx context.Context) ([]models.DeviceReading, error) {
	if s.remote != nil {
		out, err := s.remote.LatestAll(ctx)
		if err == nil {
			return out, nil
		}
		s.fallback("latest_all", err)
	}
	return s.local.LatestAll(ctx)
}

func (s *tieredStore) fallback(op string, err error, kv ...interface{}) {
	s.metrics.StoreFallback(op)
	if s.log != nil {
		fields := append([]interface{}{"op", op, "err", err}, kv...)
		s.log.Warnw("reading_store_read_failed_using_local", fields...)
	}
}
