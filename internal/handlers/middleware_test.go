package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"noise_monitor/internal/service"
)

const validBody = `{"deviceId":"sensor-1","noiseLevel":55}`

func TestAPIKeyMiddleware(t *testing.T) {
	cases := []struct {
		name     string
		key      string
		header   http.Header
		wantCode int
	}{
		{name: "no key configured is open", key: "", header: nil, wantCode: http.StatusCreated},
		{name: "x-api-key matches", key: "secret", header: http.Header{"X-Api-Key": {"secret"}}, wantCode: http.StatusCreated},
		{name: "bearer matches", key: "secret", header: http.Header{"Authorization": {"Bearer secret"}}, wantCode: http.StatusCreated},
		{name: "missing key", key: "secret", header: nil, wantCode: http.StatusUnauthorized},
		{name: "wrong x-api-key", key: "secret", header: http.Header{"X-Api-Key": {"nope"}}, wantCode: http.StatusUnauthorized},
		{name: "wrong bearer", key: "secret", header: http.Header{"Authorization": {"Bearer nope"}}, wantCode: http.StatusUnauthorized},
		{name: "other scheme", key: "secret", header: http.Header{"Authorization": {"Basic secret"}}, wantCode: http.StatusUnauthorized},
		{name: "wrong header falls through to bearer", key: "secret", header: http.Header{"X-Api-Key": {"nope"}, "Authorization": {"Bearer secret"}}, wantCode: http.StatusCreated},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ing := &mockIngest{reading: reading("sensor-1", testNow)}
			s := &service.Service{Ingest: ing, Gate: &mockGate{enabled: true}}
			r := newTestRouter(s, Config{APIKey: tc.key})

			w := doRequest(r, http.MethodPost, "/api/device-readings", validBody, tc.header)
			if w.Code != tc.wantCode {
				t.Fatalf("status: got %d, want %d (body=%s)", w.Code, tc.wantCode, w.Body.String())
			}
			if tc.wantCode != http.StatusUnauthorized {
				return
			}
			var out ErrorResponse
			_ = json.Unmarshal(w.Body.Bytes(), &out)
			if out.Error != "unauthorised" || out.Message != "Invalid or missing API key" {
				t.Fatalf("unexpected body: %+v", out)
			}
			if ing.calls != 0 {
				t.Fatalf("ingest must not run for unauthorised requests")
			}
		})
	}
}

func TestIngestGateMiddleware_DisabledRejectsBeforeAuthAndParsing(t *testing.T) {
	ing := &mockIngest{}
	s := &service.Service{Ingest: ing, Gate: &mockGate{enabled: false}}
	r := newTestRouter(s, Config{APIKey: "secret"})

	for _, body := range []string{validBody, "not json", ""} {
		w := doRequest(r, http.MethodPost, "/api/device-readings", body, nil)
		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("body %q: status %d, want 503", body, w.Code)
		}
		var out ErrorResponse
		_ = json.Unmarshal(w.Body.Bytes(), &out)
		if out.Error != "ingest_disabled" {
			t.Fatalf("error code: got %q", out.Error)
		}
	}
	if ing.calls != 0 {
		t.Fatalf("ingest called %d times while disabled", ing.calls)
	}
}

func TestIngestGateMiddleware_ReadsUnaffected(t *testing.T) {
	rs := &mockReadings{all: nil}
	s := &service.Service{Readings: rs, Gate: &mockGate{enabled: false}}
	r := newTestRouter(s, Config{})

	w := doRequest(r, http.MethodGet, "/api/device-readings", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", w.Code)
	}
}
