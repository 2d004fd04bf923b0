package metrics

import (
	"noise_monitor/internal/models"

	"github.com/prometheus/client_golang/prometheus"
)

// Rejection reasons used as the "reason" label.
const (
	ReasonInvalidPayload = "invalid_payload"
	ReasonValidation     = "validation_failed"
	ReasonUnauthorised   = "unauthorised"
	ReasonIngestDisabled = "ingest_disabled"
	ReasonStorage        = "storage_error"
)

// Metrics holds the ingestion collectors. A nil *Metrics is valid and
// records nothing, which keeps tests and tools free of registration.
type Metrics struct {
	accepted      prometheus.Counter
	rejected      *prometheus.CounterVec
	fallbacks     *prometheus.CounterVec
	ingestEnabled prometheus.Gauge
	devices       *prometheus.GaugeVec
	storeLatency  prometheus.Histogram
}

// New builds the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "noise_readings_accepted_total",
			Help: "Device readings validated and stored.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "noise_readings_rejected_total",
			Help: "Device reading writes rejected, by reason.",
		}, []string{"reason"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "noise_store_fallback_total",
			Help: "Reads served from the local history because the external store failed.",
		}, []string{"op"}),
		ingestEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "noise_ingest_enabled",
			Help: "1 when device ingestion is accepted, 0 when disabled.",
		}),
		devices: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "noise_devices",
			Help: "Devices by derived connectivity status.",
		}, []string{"status"}),
		storeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "noise_store_write_seconds",
			Help:    "Latency of writing one reading to the backing store.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}
	reg.MustRegister(m.accepted, m.rejected, m.fallbacks, m.ingestEnabled, m.devices, m.storeLatency)
	return m
}

func (m *Metrics) ReadingAccepted() {
	if m == nil {
		return
	}
	m.accepted.Inc()
}

func (m *Metrics) ReadingRejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) StoreFallback(op string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(op).Inc()
}

func (m *Metrics) ObserveStoreWrite(seconds float64) {
	if m == nil {
		return
	}
	m.storeLatency.Observe(seconds)
}

func (m *Metrics) SetIngestEnabled(enabled bool) {
	if m == nil {
		return
	}
	if enabled {
		m.ingestEnabled.Set(1)
		return
	}
	m.ingestEnabled.Set(0)
}

// SetDeviceCounts replaces the per-status device gauges. Statuses absent
// from counts are reset to zero.
func (m *Metrics) SetDeviceCounts(counts map[models.DeviceStatus]int) {
	if m == nil {
		return
	}
	for _, st := range []models.DeviceStatus{models.StatusOnline, models.StatusOffline, models.StatusWarning} {
		m.devices.WithLabelValues(string(st)).Set(float64(counts[st]))
	}
}
