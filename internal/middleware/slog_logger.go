// Package middleware provides HTTP middleware for the shared data API server.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// IdempotencyKeyHeader carries the sync operation id on POST /api/sync.
const IdempotencyKeyHeader = "Idempotency-Key"

// LogOption customizes NewSlogLogger.
type LogOption func(*logConfig)

type logConfig struct {
	subject func(*http.Request) string
}

// WithSubject adds the signed-in user to each request line. fn returns ""
// for anonymous requests.
func WithSubject(fn func(*http.Request) string) LogOption {
	return func(c *logConfig) { c.subject = fn }
}

// NewSlogLogger returns a middleware that writes one structured line per
// request: method, path, status, bytes written, duration and the chi request
// ID, plus the idempotency key of sync deliveries and the session subject
// when present. 5xx responses log at error level and 4xx at warn.
//
// Wire it after chimiddleware.RequestID so the request ID is available.
func NewSlogLogger(log *slog.Logger, opts ...LogOption) func(http.Handler) http.Handler {
	var cfg logConfig
	for _, o := range opts {
		o(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			// A handler that never calls WriteHeader answers 200.
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.String("request_id", chimiddleware.GetReqID(r.Context())),
			}
			if key := r.Header.Get(IdempotencyKeyHeader); key != "" {
				attrs = append(attrs, slog.String("idempotency_key", key))
			}
			if cfg.subject != nil {
				if sub := cfg.subject(r); sub != "" {
					attrs = append(attrs, slog.String("subject", sub))
				}
			}

			log.LogAttrs(r.Context(), levelFor(status), "request", attrs...)
		})
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
