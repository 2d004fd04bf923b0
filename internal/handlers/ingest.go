package handlers

import (
	"errors"
	"io"
	"net/http"

	"noise_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

// IngestState reports whether devices may submit readings.
type IngestState struct {
	Enabled bool `json:"enabled" example:"true"`
}

// @Summary      Ingestion status
// @Tags         ingest
// @Produce      json
// @Success      200  {object}  IngestState
// @Router       /api/device-ingest [get]
func (h *Handler) getIngest(c *gin.Context) {
	c.JSON(http.StatusOK, IngestState{Enabled: h.services.Enabled(c.Request.Context())})
}

// @Summary      Enable or disable ingestion
// @Description  While disabled, POST /api/device-readings answers 503 ingest_disabled.
// @Tags         ingest
// @Accept       json
// @Produce      json
// @Param        body  body      IngestState  true  "New state"
// @Success      200   {object}  IngestState
// @Failure      400   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /api/device-ingest [post]
func (h *Handler) setIngest(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, errCodeInvalidPayload, "Request body must be valid JSON", nil)
		return
	}
	enabled, err := service.ParseIngestToggle(body)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			abortWithError(c, http.StatusBadRequest, errCodeValidation, "Payload failed validation", verr)
			return
		}
		abortWithError(c, http.StatusBadRequest, errCodeInvalidPayload, "Request body must be valid JSON", nil)
		return
	}

	got, err := h.services.SetEnabled(c.Request.Context(), enabled)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errCodeStorage, "Unable to update ingest setting", "ingest_toggle_failed", err, "enabled", enabled)
		return
	}
	c.JSON(http.StatusOK, IngestState{Enabled: got})
}
