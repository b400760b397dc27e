package rest

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/errors"
)

// ErrorHandler converts errors into HTTP responses
type ErrorHandler interface {
	HandleError(w http.ResponseWriter, r *http.Request, err error)
}

// DefaultErrorHandler maps domain errors onto status codes and writes the
// standard error envelope.
type DefaultErrorHandler struct {
	logger *slog.Logger
}

func NewDefaultErrorHandler(logger *slog.Logger) *DefaultErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultErrorHandler{logger: logger}
}

// HandleError writes the error response. Domain errors carry their own status
// code; everything else is treated as an internal error so unexpected failure
// details never leak to clients.
func (h *DefaultErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message, details := classifyError(err)

	meta := requestMetaFrom(r.Context())
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("request_id", meta.RequestID),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Any("error", err),
		)
	} else {
		h.logger.WarnContext(r.Context(), "request rejected",
			slog.String("request_id", meta.RequestID),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Any("error", err),
		)
	}

	errResponse := &ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	}
	if span := trace.SpanFromContext(r.Context()); span.SpanContext().HasTraceID() {
		errResponse.TraceID = span.SpanContext().TraceID().String()
	}

	writeErrorEnvelope(w, r, status, errResponse)
}

// classifyError resolves an error to its HTTP representation
func classifyError(err error) (status int, code, message string, details map[string]interface{}) {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.StatusCode, appErr.Code, appErr.Message, appErr.Details
	}

	switch {
	case stderrors.Is(err, context.Canceled):
		return http.StatusRequestTimeout, "REQUEST_CANCELED", "Request was canceled", nil
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout, "REQUEST_TIMEOUT", "Request timed out", nil
	}

	return http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred", nil
}

// writeErrorEnvelope writes a failure envelope without needing a BaseHandler,
// so middleware can share it.
func writeErrorEnvelope(w http.ResponseWriter, r *http.Request, status int, errResponse *ErrorResponse) {
	meta := requestMetaFrom(r.Context())

	envelope := ResponseEnvelope{
		Success: false,
		Error:   errResponse,
		Meta: ResponseMeta{
			RequestID: meta.RequestID,
			Timestamp: time.Now().UTC(),
		},
	}

	writeJSONBody(w, status, envelope)
}
