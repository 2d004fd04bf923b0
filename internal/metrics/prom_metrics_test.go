package metrics

import (
	"testing"

	"noise_monitor/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ReadingAccepted()
	m.ReadingAccepted()
	m.ReadingRejected(ReasonValidation)
	m.ReadingRejected(ReasonUnauthorised)
	m.ReadingRejected(ReasonUnauthorised)
	m.StoreFallback("history")

	if got := testutil.ToFloat64(m.accepted); got != 2 {
		t.Fatalf("accepted = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.rejected.WithLabelValues(ReasonUnauthorised)); got != 2 {
		t.Fatalf("rejected{unauthorised} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.rejected.WithLabelValues(ReasonValidation)); got != 1 {
		t.Fatalf("rejected{validation_failed} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.fallbacks.WithLabelValues("history")); got != 1 {
		t.Fatalf("fallback{history} = %v, want 1", got)
	}
}

func TestMetrics_Gauges(t *testing.T) {
	t.Parallel()
	m := New(prometheus.NewRegistry())

	m.SetIngestEnabled(true)
	if got := testutil.ToFloat64(m.ingestEnabled); got != 1 {
		t.Fatalf("ingest enabled = %v, want 1", got)
	}
	m.SetIngestEnabled(false)
	if got := testutil.ToFloat64(m.ingestEnabled); got != 0 {
		t.Fatalf("ingest enabled = %v, want 0", got)
	}

	m.SetDeviceCounts(map[models.DeviceStatus]int{models.StatusOnline: 3, models.StatusOffline: 1})
	m.SetDeviceCounts(map[models.DeviceStatus]int{models.StatusOffline: 2})
	want := map[models.DeviceStatus]float64{
		models.StatusOnline:  0,
		models.StatusOffline: 2,
		models.StatusWarning: 0,
	}
	for st, v := range want {
		if got := testutil.ToFloat64(m.devices.WithLabelValues(string(st))); got != v {
			t.Fatalf("devices{%s} = %v, want %v", st, got, v)
		}
	}
}

func TestMetrics_RegistersEverySeries(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ReadingRejected(ReasonStorage)
	m.StoreFallback("latest")
	m.ObserveStoreWrite(0.002)
	m.SetDeviceCounts(nil)

	// 1 accepted + 1 rejected + 1 fallback + 1 ingest + 3 devices + 1 histogram
	if n, err := testutil.GatherAndCount(reg); err != nil || n != 8 {
		t.Fatalf("GatherAndCount = %d, %v; want 8", n, err)
	}
	if n, err := testutil.GatherAndCount(reg, "noise_store_write_seconds"); err != nil || n != 1 {
		t.Fatalf("histogram series = %d, %v", n, err)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	t.Parallel()
	var m *Metrics
	m.ReadingAccepted()
	m.ReadingRejected(ReasonIngestDisabled)
	m.StoreFallback("latest_all")
	m.ObserveStoreWrite(1)
	m.SetIngestEnabled(true)
	m.SetDeviceCounts(map[models.DeviceStatus]int{models.StatusOnline: 1})
}
