package service

import (
	"context"
	"time"

	"noise_monitor/internal/logger"
	"noise_monitor/internal/metrics"
	"noise_monitor/internal/models"
	"noise_monitor/internal/repository"
)

// Ingest validates, normalizes and stores raw reading payloads.
type Ingest interface {
	Accept(ctx context.Context, raw []byte) (models.DeviceReading, error)
}

// Readings exposes read-only access to stored readings.
type Readings interface {
	Latest(ctx context.Context, deviceID string) (*models.DeviceReading, error)
	History(ctx context.Context, deviceID string, f HistoryFilter) ([]models.DeviceReading, error)
	LatestAll(ctx context.Context) ([]models.DeviceReading, error)
}

// Gate is the runtime switch for accepting new readings.
type Gate interface {
	Enabled(ctx context.Context) bool
	SetEnabled(ctx context.Context, enabled bool) (bool, error)
}

// Monitor runs the background connectivity check.
// Stop via context cancellation in main() for graceful shutdown.
type Monitor interface {
	Run(ctx context.Context, tick time.Duration)
}

// Service aggregates all sub-services.
type Service struct {
	Ingest
	Readings
	Gate
	Monitor
}

// Options carries the runtime knobs that are not part of the repositories.
type Options struct {
	GateDefault bool
	GateTTL     time.Duration
	Log         *logger.Logger
	Metrics     *metrics.Metrics
}

// NewService wires the repository layer into concrete services.
func NewService(repos *repository.Repository, opts Options) *Service {
	store := newTieredStore(repos.Local, repos.Readings, opts.Log.Named("store"), opts.Metrics)
	readings := NewReadingService(store, repos.Local.Limit())
	return &Service{
		Ingest:   NewIngestService(store, opts.Log.Named("ingest"), opts.Metrics),
		Readings: readings,
		Gate:     NewGateService(repos.Settings, opts.GateDefault, opts.GateTTL, opts.Log.Named("gate"), opts.Metrics),
		Monitor:  NewConnectivityMonitor(readings, opts.Log.Named("monitor"), opts.Metrics),
	}
}
