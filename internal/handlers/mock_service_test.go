package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"noise_monitor/internal/models"
	"noise_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockIngest struct {
	reading models.DeviceReading
	err     error
	calls   int
	lastRaw string
}

func (m *mockIngest) Accept(ctx context.Context, raw []byte) (models.DeviceReading, error) {
	m.calls++
	m.lastRaw = string(raw)
	return m.reading, m.err
}

type mockReadings struct {
	latest     *models.DeviceReading
	latestErr  error
	history    []models.DeviceReading
	historyErr error
	all        []models.DeviceReading
	allErr     error

	lastDeviceID string
	lastFilter   service.HistoryFilter
}

func (m *mockReadings) Latest(ctx context.Context, deviceID string) (*models.DeviceReading, error) {
	m.lastDeviceID = deviceID
	return m.latest, m.latestErr
}

func (m *mockReadings) History(ctx context.Context, deviceID string, f service.HistoryFilter) ([]models.DeviceReading, error) {
	m.lastDeviceID = deviceID
	m.lastFilter = f
	return m.history, m.historyErr
}

func (m *mockReadings) LatestAll(ctx context.Context) ([]models.DeviceReading, error) {
	return m.all, m.allErr
}

type mockGate struct {
	enabled bool
	setErr  error
	setArgs []bool
}

func (m *mockGate) Enabled(ctx context.Context) bool { return m.enabled }

func (m *mockGate) SetEnabled(ctx context.Context, enabled bool) (bool, error) {
	m.setArgs = append(m.setArgs, enabled)
	if m.setErr != nil {
		return false, m.setErr
	}
	m.enabled = enabled
	return enabled, nil
}

// ---- Shared Test Helpers ----

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestHandler(s *service.Service, cfg Config) *Handler {
	h := NewHandler(s, nil, cfg)
	h.now = func() time.Time { return testNow }
	return h
}

func newTestRouter(s *service.Service, cfg Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return newTestHandler(s, cfg).InitRoutes()
}

func doRequest(r http.Handler, method, target, body string, header http.Header) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, vv := range header {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func reading(deviceID string, receivedAt time.Time) models.DeviceReading {
	return models.DeviceReading{
		ID:         "id-" + deviceID,
		DeviceID:   deviceID,
		NoiseLevel: 55,
		NoiseMax:   60,
		RecordedAt: receivedAt,
		ReceivedAt: receivedAt,
	}
}
