package handlers

import (
	"github.com/gin-gonic/gin"
)

// Error codes returned in the "error" field of every failure response.
const (
	errCodeInvalidPayload = "invalid_payload"
	errCodeValidation     = "validation_failed"
	errCodeUnauthorised   = "unauthorised"
	errCodeIngestDisabled = "ingest_disabled"
	errCodeStorage        = "storage_error"
	errCodeInvalidQuery   = "invalid_query"
	errCodeNotFound       = "not_found"
)

// ErrorResponse is the JSON envelope of every failed request.
type ErrorResponse struct {
	Error   string      `json:"error" example:"validation_failed"`
	Message string      `json:"message" example:"Payload failed validation"`
	Details interface{} `json:"details,omitempty"`
}

func abortWithError(c *gin.Context, httpCode int, code, msg string, details interface{}) {
	c.AbortWithStatusJSON(httpCode, ErrorResponse{Error: code, Message: msg, Details: details})
}

// Centralized error logging and response. Internal detail stays in the log.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, code, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	abortWithError(c, httpCode, code, userMsg, nil)
}
