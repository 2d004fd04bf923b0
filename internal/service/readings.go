package service

import (
	"context"

	"noise_monitor/internal/models"
	"noise_monitor/internal/repository"
)

type ReadingService struct {
	store    repository.ReadingStore
	maxLimit int
}

func NewReadingService(store repository.ReadingStore, maxLimit int) *ReadingService {
	if maxLimit <= 0 {
		maxLimit = repository.DefaultHistoryLimit
	}
	return &ReadingService{store: store, maxLimit: maxLimit}
}

func (s *ReadingService) Latest(ctx context.Context, deviceID string) (*models.DeviceReading, error) {
	return s.store.Latest(ctx, deviceID)
}

func (s *ReadingService) History(ctx context.Context, deviceID string, f HistoryFilter) ([]models.DeviceReading, error) {
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return nil, ErrInvalidTimeRange
	}
	return s.store.History(ctx, deviceID, toUTC(f.From), toUTC(f.To), s.limit(f.Limit))
}

func (s *ReadingService) LatestAll(ctx context.Context) ([]models.DeviceReading, error) {
	return s.store.LatestAll(ctx)
}

func (s *ReadingService) limit(n int) int {
	switch {
	case n <= 0:
		return min(DefaultHistoryLimit, s.maxLimit)
	case n > s.maxLimit:
		return s.maxLimit
	default:
		return n
	}
}
