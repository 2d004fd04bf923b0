package deviceclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"noise_monitor/internal/models"
)

const (
	readingsPath   = "/api/device-readings"
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4 << 10
)

// ErrMissingAPIKey is returned by New when no device key is given.
var ErrMissingAPIKey = errors.New("api key is required (use --api-key or DEVICE_API_KEY)")

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("send failed (%d): %s", e.Code, e.Body)
}

// Client posts readings to the ingestion endpoint on behalf of a device.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// New validates baseURL and returns a client that authenticates with apiKey.
// A nil httpClient uses a client with a 10s timeout.
func New(baseURL, apiKey string, httpClient *http.Client) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		endpoint: base.ResolveReference(&url.URL{Path: readingsPath}).String(),
		apiKey:   apiKey,
		http:     httpClient,
	}, nil
}

// Accepted is the body of a 201 response.
type Accepted struct {
	Message string               `json:"message"`
	Reading models.DeviceReading `json:"reading"`
}

// Send posts one reading and returns the stored copy.
func (c *Client) Send(ctx context.Context, in models.ReadingInput) (*Accepted, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode reading: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post reading: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	var out Accepted
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
