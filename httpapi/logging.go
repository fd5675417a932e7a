package httpapi

import (
	"net/http"
	"strings"
	"time"

	"pkt.systems/notepad/schema"
	"pkt.systems/pslog"
)

// statusWriter remembers the status code and body size written by a handler.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += int64(n)
	return n, err
}

// Flush keeps the event stream working through the wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

type sessionLookupFunc func(*http.Request) (userID schema.UserID, sessionID string)

// chattyRoutes are called on most keystrokes by the UI.
var chattyRoutes = map[string]bool{
	"/api/stats":    true,
	"/api/document": true,
}

// withRequestLogging logs one line per request. The session is resolved
// after the handler ran so that freshly issued anonymous sessions are named.
func withRequestLogging(next http.Handler, lookup sessionLookupFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		logger := pslog.Ctx(r.Context()).With("remote", clientIP(r))
		if lookup != nil {
			if userID, sessionID := lookup(r); userID != "" {
				logger = logger.With("user", userID, "http_session", sessionID)
			}
		}
		fields := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes", rec.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		switch {
		case rec.status >= http.StatusInternalServerError:
			logger.Error("http request", fields...)
		case chattyRoutes[r.URL.Path]:
			logger.Debug("http request", fields...)
		default:
			logger.Info("http request", fields...)
		}
	})
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	return r.RemoteAddr
}
