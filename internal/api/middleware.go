package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/kumarlokesh/trie-server/internal/config"
	"github.com/kumarlokesh/trie-server/internal/types"
)

// requestID echoes the caller's request ID or assigns a new one
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(types.RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
			r.Header.Set(types.RequestIDHeader, id)
		}
		w.Header().Set(types.RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// requestLogger attaches a request-scoped logger to the context and writes
// one access log line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := s.logger.With().
			Str("request_id", r.Header.Get(types.RequestIDHeader)).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(logger.WithContext(r.Context())))

		event := logger.Info()
		if rec.status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}

// rateLimit rejects requests beyond the configured rate with 429.
// The limit is shared by all callers since the trie is a single global resource.
func (s *Server) rateLimit(cfg config.RateLimitConfig) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				s.metrics.IncRateLimited()
				zerolog.Ctx(r.Context()).Warn().Msg("rate limit exceeded")
				s.respondError(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests, try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
