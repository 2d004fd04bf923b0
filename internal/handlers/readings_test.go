package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"noise_monitor/internal/models"
	"noise_monitor/internal/service"
)

func TestCreateReading(t *testing.T) {
	verr := &service.ValidationError{
		FormErrors:  []string{},
		FieldErrors: map[string][]string{"noiseLevel": {"required"}, "deviceId": {"required"}},
	}
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{name: "accepted", wantCode: http.StatusCreated},
		{name: "invalid payload", err: service.ErrInvalidPayload, wantCode: http.StatusBadRequest, wantErr: "invalid_payload"},
		{name: "validation", err: verr, wantCode: http.StatusBadRequest, wantErr: "validation_failed"},
		{name: "storage", err: fmt.Errorf("%w: boom", service.ErrStorage), wantCode: http.StatusInternalServerError, wantErr: "storage_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ing := &mockIngest{reading: reading("sensor-1", testNow.Add(-5*time.Second)), err: tc.err}
			s := &service.Service{Ingest: ing, Gate: &mockGate{enabled: true}}
			r := newTestRouter(s, Config{})

			w := doRequest(r, http.MethodPost, "/api/device-readings", validBody, nil)
			if w.Code != tc.wantCode {
				t.Fatalf("status: got %d, want %d (body=%s)", w.Code, tc.wantCode, w.Body.String())
			}
			if ing.lastRaw != validBody {
				t.Fatalf("raw body not passed through: %q", ing.lastRaw)
			}
			if tc.wantErr == "" {
				var out CreateReadingResponse
				if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
					t.Fatalf("unmarshal: %v", err)
				}
				if out.Message != "reading accepted" || out.Reading.DeviceID != "sensor-1" || out.Reading.DerivedStatus != models.StatusOnline {
					t.Fatalf("unexpected response: %+v", out)
				}
				return
			}
			var out ErrorResponse
			_ = json.Unmarshal(w.Body.Bytes(), &out)
			if out.Error != tc.wantErr {
				t.Fatalf("error code: got %q, want %q", out.Error, tc.wantErr)
			}
			if tc.wantCode == http.StatusInternalServerError && strings.Contains(w.Body.String(), "boom") {
				t.Fatalf("internal detail leaked: %s", w.Body.String())
			}
		})
	}
}

func TestCreateReading_ValidationDetails(t *testing.T) {
	verr := &service.ValidationError{
		FormErrors:  []string{},
		FieldErrors: map[string][]string{"noiseLevel": {"must be less than or equal to 150"}, "batteryLevel": {"must be greater than or equal to 0"}},
	}
	s := &service.Service{Ingest: &mockIngest{err: verr}, Gate: &mockGate{enabled: true}}
	r := newTestRouter(s, Config{})

	w := doRequest(r, http.MethodPost, "/api/device-readings", `{"deviceId":"x","noiseLevel":200,"batteryLevel":-1}`, nil)
	var out struct {
		Error   string                  `json:"error"`
		Details service.ValidationError `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out.Details.FieldErrors) != 2 {
		t.Fatalf("expected both fields reported, got %+v", out.Details)
	}
	if out.Details.FormErrors == nil {
		t.Fatalf("formErrors should be present")
	}
}

func TestCreateReading_BodyTooLarge(t *testing.T) {
	ing := &mockIngest{}
	s := &service.Service{Ingest: ing, Gate: &mockGate{enabled: true}}
	r := newTestRouter(s, Config{})

	big := `{"deviceId":"x","payload":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	w := doRequest(r, http.MethodPost, "/api/device-readings", big, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
	if ing.calls != 0 {
		t.Fatalf("oversized body reached the ingest service")
	}
}

func TestListReadings_AllDevices(t *testing.T) {
	rs := &mockReadings{all: []models.DeviceReading{
		reading("a", testNow.Add(-10*time.Second)),
		reading("b", testNow.Add(-5*time.Minute)),
	}}
	warning := models.StatusWarning
	rs.all = append(rs.all, reading("c", testNow.Add(-time.Hour)))
	rs.all[2].Status = &warning

	r := newTestRouter(&service.Service{Readings: rs}, Config{})
	w := doRequest(r, http.MethodGet, "/api/device-readings", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d body=%s", w.Code, w.Body.String())
	}
	var out DevicesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []models.DeviceStatus{models.StatusOnline, models.StatusOffline, models.StatusWarning}
	if len(out.Devices) != len(want) {
		t.Fatalf("got %d devices, want %d", len(out.Devices), len(want))
	}
	for i, st := range want {
		if out.Devices[i].DerivedStatus != st {
			t.Fatalf("device %s: derived %q, want %q", out.Devices[i].DeviceID, out.Devices[i].DerivedStatus, st)
		}
	}
}

func TestListReadings_History(t *testing.T) {
	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		query     string
		wantLimit int
		wantFrom  time.Time
		wantTo    time.Time
	}{
		{name: "defaults", query: "deviceId=sensor-1", wantLimit: 0},
		{name: "limit kept", query: "deviceId=sensor-1&limit=20", wantLimit: 20},
		{name: "limit clamped high", query: "deviceId=sensor-1&limit=9999", wantLimit: 500},
		{name: "limit clamped low", query: "deviceId=sensor-1&limit=-3", wantLimit: 1},
		{name: "limit non numeric ignored", query: "deviceId=sensor-1&limit=abc", wantLimit: 0},
		{name: "rfc3339 bounds", query: "deviceId=sensor-1&start=2025-02-01T00:00:00Z&end=2025-02-02T10:00:00Z",
			wantFrom: start, wantTo: time.Date(2025, 2, 2, 10, 0, 0, 0, time.UTC)},
		{name: "date only end covers the day", query: "deviceId=sensor-1&start=2025-02-01&end=2025-02-01",
			wantFrom: start, wantTo: start.Add(24*time.Hour - time.Nanosecond)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rs := &mockReadings{history: []models.DeviceReading{reading("sensor-1", testNow)}}
			r := newTestRouter(&service.Service{Readings: rs}, Config{})

			w := doRequest(r, http.MethodGet, "/api/device-readings?"+tc.query, "", nil)
			if w.Code != http.StatusOK {
				t.Fatalf("status %d body=%s", w.Code, w.Body.String())
			}
			if rs.lastDeviceID != "sensor-1" {
				t.Fatalf("device id: %q", rs.lastDeviceID)
			}
			if rs.lastFilter.Limit != tc.wantLimit {
				t.Fatalf("limit: got %d, want %d", rs.lastFilter.Limit, tc.wantLimit)
			}
			if !rs.lastFilter.From.Equal(tc.wantFrom) || !rs.lastFilter.To.Equal(tc.wantTo) {
				t.Fatalf("range: got [%v, %v], want [%v, %v]", rs.lastFilter.From, rs.lastFilter.To, tc.wantFrom, tc.wantTo)
			}
			var out HistoryResponse
			_ = json.Unmarshal(w.Body.Bytes(), &out)
			if out.DeviceID != "sensor-1" || len(out.Readings) != 1 {
				t.Fatalf("unexpected response: %+v", out)
			}
		})
	}
}

func TestListReadings_Errors(t *testing.T) {
	cases := []struct {
		name     string
		query    string
		rs       *mockReadings
		wantCode int
		wantErr  string
	}{
		{name: "bad start", query: "deviceId=a&start=yesterday", rs: &mockReadings{}, wantCode: http.StatusBadRequest, wantErr: "invalid_query"},
		{name: "bad end", query: "deviceId=a&end=2025-13-45", rs: &mockReadings{}, wantCode: http.StatusBadRequest, wantErr: "invalid_query"},
		{name: "inverted range", query: "deviceId=a&start=2025-02-02&end=2025-02-01", rs: &mockReadings{historyErr: service.ErrInvalidTimeRange}, wantCode: http.StatusBadRequest, wantErr: "invalid_query"},
		{name: "history failure", query: "deviceId=a", rs: &mockReadings{historyErr: errors.New("db down")}, wantCode: http.StatusInternalServerError, wantErr: "storage_error"},
		{name: "latest all failure", query: "", rs: &mockReadings{allErr: errors.New("db down")}, wantCode: http.StatusInternalServerError, wantErr: "storage_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&service.Service{Readings: tc.rs}, Config{})
			w := doRequest(r, http.MethodGet, "/api/device-readings?"+tc.query, "", nil)
			if w.Code != tc.wantCode {
				t.Fatalf("status %d, want %d", w.Code, tc.wantCode)
			}
			var out ErrorResponse
			_ = json.Unmarshal(w.Body.Bytes(), &out)
			if out.Error != tc.wantErr {
				t.Fatalf("error: got %q, want %q", out.Error, tc.wantErr)
			}
		})
	}
}

func TestLatestReading(t *testing.T) {
	rd := reading("sensor-9", testNow.Add(-2*time.Minute))
	rs := &mockReadings{latest: &rd}
	r := newTestRouter(&service.Service{Readings: rs}, Config{})

	w := doRequest(r, http.MethodGet, "/api/device-readings/sensor-9/latest", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var out LatestResponse
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Reading.DeviceID != "sensor-9" || out.Reading.DerivedStatus != models.StatusOffline {
		t.Fatalf("unexpected: %+v", out)
	}

	rs.latest = nil
	w = doRequest(r, http.MethodGet, "/api/device-readings/ghost/latest", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", w.Code)
	}
	if rs.lastDeviceID != "ghost" {
		t.Fatalf("device id: %q", rs.lastDeviceID)
	}
}

func TestParseQueryTime(t *testing.T) {
	for _, s := range []string{"2025-08-27T15:04:05Z", "2025-08-27T15:04:05.123+02:00", "2025-08-27 15:04:05", "2025-08-27"} {
		if _, err := parseQueryTime(s); err != nil {
			t.Fatalf("%q: %v", s, err)
		}
	}
	if _, err := parseQueryTime("27/08/2025"); err == nil {
		t.Fatalf("expected error")
	}
}
