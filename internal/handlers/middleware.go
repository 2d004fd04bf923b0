package handlers

import (
	"net/http"
	"strings"

	"noise_monitor/internal/metrics"

	"github.com/gin-gonic/gin"
)

const (
	apiKeyHeader = "X-API-Key"
	bearerPrefix = "Bearer "
)

// apiKeyMiddleware accepts the shared device secret from X-API-Key or an
// Authorization bearer token. With no key configured every request passes.
func (h *Handler) apiKeyMiddleware(c *gin.Context) {
	expected := h.cfg.APIKey
	if expected == "" {
		c.Next()
		return
	}

	if key := c.GetHeader(apiKeyHeader); key != "" && key == expected {
		c.Next()
		return
	}
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, bearerPrefix) {
		if strings.TrimPrefix(header, bearerPrefix) == expected {
			c.Next()
			return
		}
	}

	h.cfg.Metrics.ReadingRejected(metrics.ReasonUnauthorised)
	abortWithError(c, http.StatusUnauthorized, errCodeUnauthorised, "Invalid or missing API key", nil)
}

// ingestGateMiddleware rejects writes while device ingestion is disabled.
func (h *Handler) ingestGateMiddleware(c *gin.Context) {
	if h.services.Enabled(c.Request.Context()) {
		c.Next()
		return
	}
	h.cfg.Metrics.ReadingRejected(metrics.ReasonIngestDisabled)
	abortWithError(c, http.StatusServiceUnavailable, errCodeIngestDisabled, "Device ingestion is temporarily disabled", nil)
}
