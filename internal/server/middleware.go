package server

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aibiz/agent-catalog/internal/logging"
)

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestID tags every request with an ID, honoring any incoming
// X-Request-ID header, and echoes it on the response. Panics are recovered
// into a 500 and failed requests (4xx/5xx) are logged with the ID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		incoming := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		ctx, requestID := logging.WithRequestID(r.Context(), incoming)
		r = r.WithContext(ctx)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		rec.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Interface("error", err).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("request_id", requestID).
					Bytes("stack", debug.Stack()).
					Msg("Panic recovered in handler")
				writeError(rec, http.StatusInternalServerError, "internal_error", "")
				return
			}
			if rec.status >= 400 {
				log.Warn().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", rec.status).
					Str("request_id", requestID).
					Dur("duration", time.Since(start)).
					Msg("Request failed")
			}
		}()

		next.ServeHTTP(rec, r)
	})
}
