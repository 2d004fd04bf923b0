package service

import (
	"context"
	"time"

	"noise_monitor/internal/logger"
	"noise_monitor/internal/metrics"
	"noise_monitor/internal/models"
)

// DefaultMonitorTick is how often device connectivity is re-derived.
const DefaultMonitorTick = 15 * time.Second

// ConnectivityMonitor periodically derives the status of every device from
// its latest reading, publishes per-status gauges and logs transitions.
type ConnectivityMonitor struct {
	readings Readings
	now      func() time.Time
	log      *logger.Logger
	metrics  *metrics.Metrics

	last map[string]models.DeviceStatus
}

func NewConnectivityMonitor(readings Readings, log *logger.Logger, m *metrics.Metrics) *ConnectivityMonitor {
	return &ConnectivityMonitor{
		readings: readings,
		now:      time.Now,
		log:      log,
		metrics:  m,
		last:     make(map[string]models.DeviceStatus),
	}
}

// Run ticks at the given interval until ctx is canceled.
func (s *ConnectivityMonitor) Run(ctx context.Context, tick time.Duration) {
	if tick <= 0 {
		tick = DefaultMonitorTick
	}
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := s.check(ctx); err != nil && s.log != nil {
				s.log.Errorw("connectivity_check_failed", "err", err)
			}
		}
	}
}

// check derives statuses once and returns the per-status device counts.
func (s *ConnectivityMonitor) check(ctx context.Context) (map[models.DeviceStatus]int, error) {
	latest, err := s.readings.LatestAll(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	counts := make(map[models.DeviceStatus]int, 3)
	seen := make(map[string]struct{}, len(latest))

	for _, r := range latest {
		st := DeriveStatus(r, now)
		counts[st]++
		seen[r.DeviceID] = struct{}{}

		if prev, ok := s.last[r.DeviceID]; ok && prev != st && s.log != nil {
			s.log.Infow("device_status_changed",
				"device_id", r.DeviceID,
				"from", prev,
				"to", st,
				"last_received_at", r.ReceivedAt,
			)
		}
		s.last[r.DeviceID] = st
	}
	// forget devices the store no longer reports
	for id := range s.last {
		if _, ok := seen[id]; !ok {
			delete(s.last, id)
		}
	}

	s.metrics.SetDeviceCounts(counts)
	return counts, nil
}
