package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/erazemk/narocila/internal/logging"
	"github.com/erazemk/narocila/internal/metrics"
)

const requestIDHeader = "X-Request-ID"

// hstsValue tells browsers to use HTTPS for a year, subdomains included.
const hstsValue = "max-age=31536000; includeSubDomains"

// Chain wraps h with the full middleware stack, outermost first:
// request id, access log, metrics, security headers, CORS.
func Chain(h http.Handler) http.Handler {
	return RequestIDMiddleware(LoggingMiddleware(metrics.Middleware(SecurityHeaders(CORSMiddleware(h)))))
}

// RequestIDMiddleware tags each request with an id, taken from the
// X-Request-ID header when present, and stores a log entry carrying it in
// the request context.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		entry := log.WithField("request_id", id)
		next.ServeHTTP(w, r.WithContext(logging.WithEntry(r.Context(), entry)))
	})
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs HTTP requests with method, path, status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.FromContext(r.Context()).WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.RequestURI(),
			"status":   rec.status,
			"duration": time.Since(start).Round(time.Millisecond).String(),
		}).Info("request")
	})
}

// SecurityHeaders sets Strict-Transport-Security on every response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Strict-Transport-Security", hstsValue)
		next.ServeHTTP(w, r)
	})
}

// CORSMiddleware allows every origin, method and header. This is wide open
// on purpose for the demo deployment; put a stricter policy in front of it
// before exposing real data.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "*")
		h.Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			h.Set("Allow", "GET, POST, PUT, DELETE, OPTIONS")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
