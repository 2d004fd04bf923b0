package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"noise_monitor/internal/logger"
	"noise_monitor/internal/metrics"
	"noise_monitor/internal/models"
	"noise_monitor/internal/repository"
)

// DefaultGateTTL bounds how often the ingestion flag is read from the store.
const DefaultGateTTL = 10 * time.Second

// GateService caches the ingestion flag for a short TTL. With no settings
// store the flag lives only in this process.
type GateService struct {
	repo       repository.SettingRepo
	defaultVal bool
	ttl        time.Duration
	now        func() time.Time
	log        *logger.Logger
	metrics    *metrics.Metrics

	mu        sync.Mutex
	cached    bool
	expiresAt time.Time
	loaded    bool
}

func NewGateService(repo repository.SettingRepo, defaultEnabled bool, ttl time.Duration, log *logger.Logger, m *metrics.Metrics) *GateService {
	if ttl <= 0 {
		ttl = DefaultGateTTL
	}
	g := &GateService{
		repo:       repo,
		defaultVal: defaultEnabled,
		ttl:        ttl,
		now:        time.Now,
		log:        log,
		metrics:    m,
	}
	m.SetIngestEnabled(defaultEnabled)
	return g
}

// Enabled reports whether new readings are accepted. A missing or
// unreadable setting resolves to the configured default.
func (g *GateService) Enabled(ctx context.Context) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.loaded && g.now().Before(g.expiresAt) {
		return g.cached
	}
	// without a store the last toggle is authoritative until the process restarts
	if g.repo == nil && g.loaded {
		g.setCacheLocked(g.cached)
		return g.cached
	}

	enabled := g.defaultVal
	if g.repo != nil {
		s, err := g.repo.LoadIngestSetting(ctx)
		switch {
		case err != nil:
			if g.log != nil {
				g.log.Errorw("ingest_setting_load_failed", "err", err, "default", g.defaultVal)
			}
		case s != nil:
			enabled = s.Enabled
		}
	}
	g.setCacheLocked(enabled)
	return enabled
}

// SetEnabled writes the flag through to the store and refreshes the cache.
// On store failure the cached value is left as it was.
func (g *GateService) SetEnabled(ctx context.Context, enabled bool) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.repo != nil {
		if err := g.repo.SaveIngestSetting(ctx, models.IngestSetting{
			Enabled:   enabled,
			UpdatedAt: g.now().UTC(),
		}); err != nil {
			if g.log != nil {
				g.log.Errorw("ingest_setting_save_failed", "err", err, "enabled", enabled)
			}
			return false, fmt.Errorf("%w: save ingest setting", ErrStorage)
		}
	}
	g.setCacheLocked(enabled)
	if g.log != nil {
		g.log.Infow("ingest_setting_changed", "enabled", enabled)
	}
	return enabled, nil
}

func (g *GateService) setCacheLocked(enabled bool) {
	g.cached = enabled
	g.loaded = true
	g.expiresAt = g.now().Add(g.ttl)
	g.metrics.SetIngestEnabled(enabled)
}
