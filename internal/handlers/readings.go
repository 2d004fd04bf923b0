package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"noise_monitor/internal/metrics"
	"noise_monitor/internal/models"
	"noise_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	maxBodyBytes = 1 << 20 // 1 MiB

	minListLimit = 1
	maxListLimit = 500

	msgReadingAccepted = "reading accepted"

	errStartInvalid = "invalid 'start' time; use RFC3339 or YYYY-MM-DD"
	errEndInvalid   = "invalid 'end' time; use RFC3339 or YYYY-MM-DD"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// ReadingView is a stored reading plus the status derived at response time.
type ReadingView struct {
	models.DeviceReading
	DerivedStatus models.DeviceStatus `json:"derivedStatus" example:"online"`
}

// CreateReadingResponse is returned for an accepted reading.
type CreateReadingResponse struct {
	Message string      `json:"message" example:"reading accepted"`
	Reading ReadingView `json:"reading"`
}

// HistoryResponse lists the readings of one device, newest first.
type HistoryResponse struct {
	DeviceID string        `json:"deviceId" example:"sensor-101"`
	Readings []ReadingView `json:"readings"`
}

// DevicesResponse lists the latest reading of every device.
type DevicesResponse struct {
	Devices []ReadingView `json:"devices"`
}

// LatestResponse wraps the newest reading of one device.
type LatestResponse struct {
	Reading ReadingView `json:"reading"`
}

func (h *Handler) view(r models.DeviceReading, now time.Time) ReadingView {
	return ReadingView{DeviceReading: r, DerivedStatus: service.DeriveStatus(r, now)}
}

func (h *Handler) views(rs []models.DeviceReading) []ReadingView {
	now := h.now()
	out := make([]ReadingView, 0, len(rs))
	for _, r := range rs {
		out = append(out, h.view(r, now))
	}
	return out
}

// @Summary      Submit a device reading
// @Description  Validates, normalizes and stores one reading. noiseMax defaults to noiseLevel and recordedAt to the server time.
// @Tags         readings
// @Accept       json
// @Produce      json
// @Param        X-API-Key  header    string                false  "Device API key (or Authorization: Bearer)"
// @Param        reading    body      models.ReadingInput   true   "Reading payload"
// @Success      201        {object}  CreateReadingResponse
// @Failure      400        {object}  ErrorResponse
// @Failure      401        {object}  ErrorResponse
// @Failure      500        {object}  ErrorResponse
// @Failure      503        {object}  ErrorResponse
// @Router       /api/device-readings [post]
func (h *Handler) createReading(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		h.cfg.Metrics.ReadingRejected(metrics.ReasonInvalidPayload)
		abortWithError(c, http.StatusBadRequest, errCodeInvalidPayload, "Request body must be valid JSON", nil)
		return
	}

	reading, err := h.services.Accept(c.Request.Context(), body)
	if err != nil {
		h.readingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreateReadingResponse{
		Message: msgReadingAccepted,
		Reading: h.view(reading, h.now()),
	})
}

func (h *Handler) readingError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrInvalidPayload):
		h.cfg.Metrics.ReadingRejected(metrics.ReasonInvalidPayload)
		abortWithError(c, http.StatusBadRequest, errCodeInvalidPayload, "Request body must be valid JSON", nil)
	case errors.As(err, &verr):
		h.cfg.Metrics.ReadingRejected(metrics.ReasonValidation)
		abortWithError(c, http.StatusBadRequest, errCodeValidation, "Payload failed validation", verr)
	default:
		h.cfg.Metrics.ReadingRejected(metrics.ReasonStorage)
		h.logAndJSONError(c, http.StatusInternalServerError, errCodeStorage, "Unable to persist reading", "reading_create_failed", err)
	}
}

// @Summary      List readings
// @Description  With deviceId, returns that device's history newest first, filtered on recordedAt (inclusive). Without deviceId, returns the latest reading of every device. A date-only 'end' covers the whole day.
// @Tags         readings
// @Produce      json
// @Param        deviceId  query     string  false  "Device identifier"  example(sensor-101)
// @Param        limit     query     int     false  "Max readings (1-500, default 100)"
// @Param        start     query     string  false  "Lower recordedAt bound (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"
// @Param        end       query     string  false  "Upper recordedAt bound (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"
// @Success      200       {object}  HistoryResponse  "with deviceId"
// @Success      200       {object}  DevicesResponse  "without deviceId"
// @Failure      400       {object}  ErrorResponse
// @Failure      500       {object}  ErrorResponse
// @Router       /api/device-readings [get]
func (h *Handler) listReadings(c *gin.Context) {
	ctx := c.Request.Context()

	deviceID := strings.TrimSpace(c.Query("deviceId"))
	if deviceID == "" {
		latest, err := h.services.LatestAll(ctx)
		if err != nil {
			h.logAndJSONError(c, http.StatusInternalServerError, errCodeStorage, "Unable to load readings", "readings_latest_all_failed", err)
			return
		}
		c.JSON(http.StatusOK, DevicesResponse{Devices: h.views(latest)})
		return
	}

	var (
		from, to time.Time
		err      error
	)
	if qs := c.Query("start"); qs != "" {
		if from, err = parseQueryTime(qs); err != nil {
			abortWithError(c, http.StatusBadRequest, errCodeInvalidQuery, errStartInvalid, nil)
			return
		}
	}
	if qs := c.Query("end"); qs != "" {
		if to, err = parseQueryTime(qs); err != nil {
			abortWithError(c, http.StatusBadRequest, errCodeInvalidQuery, errEndInvalid, nil)
			return
		}
		if isDateOnly(qs) {
			to = to.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}

	readings, err := h.services.History(ctx, deviceID, service.HistoryFilter{
		From:  from,
		To:    to,
		Limit: parseLimit(c.Query("limit")),
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidTimeRange) {
			abortWithError(c, http.StatusBadRequest, errCodeInvalidQuery, "'start' must be <= 'end'", nil)
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errCodeStorage, "Unable to load readings", "readings_history_failed", err, "device_id", deviceID)
		return
	}
	c.JSON(http.StatusOK, HistoryResponse{DeviceID: deviceID, Readings: h.views(readings)})
}

// @Summary      Latest reading of a device
// @Tags         readings
// @Produce      json
// @Param        deviceId  path      string  true  "Device identifier"
// @Success      200       {object}  LatestResponse
// @Failure      404       {object}  ErrorResponse
// @Failure      500       {object}  ErrorResponse
// @Router       /api/device-readings/{deviceId}/latest [get]
func (h *Handler) latestReading(c *gin.Context) {
	deviceID := c.Param("deviceId")
	r, err := h.services.Latest(c.Request.Context(), deviceID)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errCodeStorage, "Unable to load reading", "reading_latest_failed", err, "device_id", deviceID)
		return
	}
	if r == nil {
		abortWithError(c, http.StatusNotFound, errCodeNotFound, fmt.Sprintf("No readings for device %q", deviceID), nil)
		return
	}
	c.JSON(http.StatusOK, LatestResponse{Reading: h.view(*r, h.now())})
}

// parseLimit clamps to [1,500]. Missing or non-numeric values return 0,
// which the service turns into its default.
func parseLimit(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return max(minListLimit, min(n, maxListLimit))
}

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2025-08-27T15:04:05Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}
