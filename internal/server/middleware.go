package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"gallery-gen/internal/logging"
	"gallery-gen/internal/metrics"
)

// responseWriter captures the status code and byte count for logging
// and metrics.
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

var skipLogPaths = map[string]bool{
	"/healthz": true,
	"/metrics": true,
}

// accessLog logs completed requests. Health and metrics probes are
// skipped to keep the preview output readable.
func accessLog(log *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipLogPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			wrapped := newResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			log.Info("%s %s %d %dB %s",
				r.Method, sanitizePath(r.URL.Path),
				wrapped.statusCode, wrapped.bytesWritten,
				time.Since(start).Round(time.Microsecond))
		})
	}
}

// sanitizePath strips control characters so request paths cannot forge
// log lines.
func sanitizePath(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\r' {
			b.WriteRune(' ')
		} else if r >= 0x20 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// instrument records request counts and durations. Paths are collapsed
// to their first segment to keep label cardinality bounded.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		wrapped := newResponseWriter(w)
		next.ServeHTTP(wrapped, r)

		path := metricPath(r.URL.Path)
		metrics.HTTPRequestsTotal.
			WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		metrics.HTTPRequestDuration.
			WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func metricPath(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if trimmed == "" {
		return "/"
	}
	if idx := strings.IndexByte(trimmed, '/'); idx != -1 {
		return "/" + trimmed[:idx] + "/*"
	}
	return "/" + trimmed
}
