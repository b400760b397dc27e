package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/emcdo411/Schwab-Fraud-Detection/internal/infrastructure/config"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/metrics"
)

// Middleware wraps an http.Handler with additional behavior
type Middleware func(http.Handler) http.Handler

// HTTP metrics are registered once at package load so repeated server
// construction in tests does not trip duplicate registration.
var (
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fraud_http_request_duration_seconds",
		Help:    "Duration of HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fraud_http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	httpResponseBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fraud_http_response_size_bytes",
		Help:    "Size of HTTP responses.",
		Buckets: prometheus.ExponentialBuckets(100, 10, 8),
	}, []string{"method", "path"})
)

// requestIDMiddleware ensures every request carries an ID and attaches
// request metadata to the context.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)

		meta := RequestMeta{
			RequestID: requestID,
			ClientIP:  getClientIP(r),
			UserAgent: r.UserAgent(),
			StartTime: time.Now(),
		}
		ctx := context.WithValue(r.Context(), contextKeyRequestID, requestID)
		ctx = context.WithValue(ctx, contextKeyRequestMeta, meta)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware logs all HTTP requests
func loggingMiddleware(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			meta := requestMetaFrom(r.Context())
			logger.InfoContext(r.Context(), "http_request",
				slog.String("request_id", meta.RequestID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", wrapped.statusCode),
				slog.Int64("bytes", wrapped.bytesWritten),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.String("remote_addr", meta.ClientIP),
				slog.String("user_agent", r.UserAgent()),
			)
		})
	}
}

// recoveryMiddleware recovers from panics and returns 500 errors
func recoveryMiddleware(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.ErrorContext(r.Context(), "panic recovered",
						slog.Any("panic", rec),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())),
					)
					writeErrorEnvelope(w, r, http.StatusInternalServerError, &ErrorResponse{
						Code:    "INTERNAL_ERROR",
						Message: "An internal error occurred",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// timeoutMiddleware enforces a per-request deadline
func timeoutMiddleware(timeout time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			done := make(chan struct{})
			panicChan := make(chan interface{}, 1)

			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicChan <- p
					}
				}()
				next.ServeHTTP(w, r.WithContext(ctx))
				close(done)
			}()

			select {
			case <-done:
			case p := <-panicChan:
				panic(p)
			case <-ctx.Done():
				writeErrorEnvelope(w, r, http.StatusGatewayTimeout, &ErrorResponse{
					Code:    "REQUEST_TIMEOUT",
					Message: "Request processing timed out",
				})
			}
		})
	}
}

// securityHeadersMiddleware adds security headers. The CSP permits inline
// script and style because the dashboard page ships both.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy",
			"default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'")

		next.ServeHTTP(w, r)
	})
}

// metricsMiddleware records request metrics to Prometheus and, when a
// registry is configured, to OpenTelemetry.
func metricsMiddleware(registry *metrics.Registry) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			elapsed := time.Since(start)
			status := strconv.Itoa(wrapped.statusCode)

			httpRequestDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(elapsed.Seconds())
			httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			httpResponseBytes.WithLabelValues(r.Method, r.URL.Path).Observe(float64(wrapped.bytesWritten))

			if registry != nil {
				registry.RecordAPIRequest(r.Context(),
					float64(elapsed)/float64(time.Millisecond),
					r.Method, r.URL.Path, wrapped.statusCode)
			}
		})
	}
}

// tracingMiddleware starts a span per request and exposes the trace ID to
// clients via the X-Trace-ID header.
func tracingMiddleware(tracer trace.Tracer) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracer.Start(r.Context(), fmt.Sprintf("%s %s", r.Method, r.URL.Path),
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.url", r.URL.String()),
					attribute.String("http.user_agent", r.UserAgent()),
				),
			)
			defer span.End()

			if span.SpanContext().HasTraceID() {
				w.Header().Set("X-Trace-ID", span.SpanContext().TraceID().String())
			}

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r.WithContext(ctx))

			span.SetAttributes(attribute.Int("http.status_code", wrapped.statusCode))
			if wrapped.statusCode >= http.StatusBadRequest {
				span.SetStatus(codes.Error, http.StatusText(wrapped.statusCode))
			}
		})
	}
}

// ipRateLimiter keeps a token bucket per client IP
type ipRateLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func newIPRateLimiter(cfg config.RateLimitConfig) *ipRateLimiter {
	rl := &ipRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(cfg.RequestsPerSecond),
		burst:    cfg.BurstSize,
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *ipRateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.RLock()
	lim, ok := rl.limiters[key]
	rl.mu.RUnlock()
	if ok {
		return lim
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	// Another request may have created the limiter between the locks
	if lim, ok := rl.limiters[key]; ok {
		return lim
	}
	lim = rate.NewLimiter(rl.rps, rl.burst)
	rl.limiters[key] = lim
	return lim
}

// cleanupLoop resets the limiter map periodically so it does not grow
// unbounded under churning client IPs.
func (rl *ipRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		rl.limiters = make(map[string]*rate.Limiter)
		rl.mu.Unlock()
	}
}

func (rl *ipRateLimiter) middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.limiter(getClientIP(r)).Allow() {
				w.Header().Set("Retry-After", "1")
				writeErrorEnvelope(w, r, http.StatusTooManyRequests, &ErrorResponse{
					Code:    "RATE_LIMIT_EXCEEDED",
					Message: "Too many requests",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP resolves the client address, preferring proxy headers
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
