package ingress

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fintechrail/paygate/internal/observe"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// RequestIDFromContext extracts the request id bound by RequestID.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// RequestID injects a request id into the context and response header,
// honoring one supplied by the caller so a client-side trace id threads
// through unchanged. Grounded on wisbric-nightowl's httpserver.RequestID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Logging logs every request with method, route pattern, status, and
// duration through the gateway's own structured logger.
func Logging(logger observe.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			routePath := r.URL.Path
			if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
				if pattern := routeCtx.RoutePattern(); pattern != "" {
					routePath = pattern
				}
			}

			logger.Info(r.Context(), "http request",
				observe.Field{Key: "method", Value: r.Method},
				observe.Field{Key: "path", Value: routePath},
				observe.Field{Key: "status", Value: sw.status},
				observe.Field{Key: "duration_ms", Value: time.Since(start).Milliseconds()},
				observe.Field{Key: "request_id", Value: RequestIDFromContext(r.Context())},
			)
		})
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code
// written for the logging middleware.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}
