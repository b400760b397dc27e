package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/errors"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	contextKeyRequestID   contextKey = "request_id"
	contextKeyRequestMeta contextKey = "request_meta"
)

// RequestMeta carries per-request metadata through the handler chain
type RequestMeta struct {
	RequestID string
	ClientIP  string
	UserAgent string
	StartTime time.Time
}

// requestMetaFrom returns the request metadata placed in the context by
// requestIDMiddleware, or a zero value when the middleware did not run.
func requestMetaFrom(ctx context.Context) RequestMeta {
	if meta, ok := ctx.Value(contextKeyRequestMeta).(RequestMeta); ok {
		return meta
	}
	return RequestMeta{}
}

// ResponseEnvelope is the standard wrapper for all API responses
type ResponseEnvelope struct {
	Success bool           `json:"success"`
	Data    interface{}    `json:"data,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
	Meta    ResponseMeta   `json:"meta"`
}

// ResponseMeta contains response metadata
type ResponseMeta struct {
	RequestID    string    `json:"request_id,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	Version      string    `json:"version,omitempty"`
	ResponseTime string    `json:"response_time,omitempty"`
}

// ErrorResponse describes a failed request
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	TraceID string                 `json:"trace_id,omitempty"`
}

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	logger       *slog.Logger
	validator    *validator.Validate
	errorHandler ErrorHandler
	version      string
}

// NewBaseHandler creates a base handler with validation and error handling
func NewBaseHandler(logger *slog.Logger, version string) *BaseHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BaseHandler{
		logger:       logger,
		validator:    validator.New(),
		errorHandler: NewDefaultErrorHandler(logger),
		version:      version,
	}
}

// writeSuccess writes a successful response envelope
func (h *BaseHandler) writeSuccess(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	meta := requestMetaFrom(r.Context())

	envelope := ResponseEnvelope{
		Success: true,
		Data:    data,
		Meta: ResponseMeta{
			RequestID: meta.RequestID,
			Timestamp: time.Now().UTC(),
			Version:   h.version,
		},
	}
	if !meta.StartTime.IsZero() {
		envelope.Meta.ResponseTime = time.Since(meta.StartTime).String()
	}

	h.writeJSON(w, status, envelope)
}

// handleError delegates to the configured error handler
func (h *BaseHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	h.errorHandler.HandleError(w, r, err)
}

// writeJSON writes a JSON body, logging encode failures
func (h *BaseHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	if err := writeJSONBody(w, status, v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeJSONBody writes a JSON body with safe headers
func writeJSONBody(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(true)
	return encoder.Encode(v)
}

// validateQuery runs struct validation over parsed query parameters
func (h *BaseHandler) validateQuery(v interface{}) error {
	if err := h.validator.Struct(v); err != nil {
		return errors.NewValidationError("INVALID_QUERY", "query parameters failed validation").
			WithDetails(map[string]interface{}{"validation": err.Error()})
	}
	return nil
}

// parseIntQuery reads an optional integer query parameter
func parseIntQuery(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewValidationError("INVALID_PARAMETER",
			fmt.Sprintf("%s must be an integer", name))
	}
	return value, nil
}

// responseWriter captures the status code and bytes written for logging,
// metrics, and tracing middleware.
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

func (w *responseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += int64(n)
	return n, err
}
