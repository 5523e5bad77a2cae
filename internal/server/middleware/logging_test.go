package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggingMiddleware_CapturesStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	mw := LoggingMiddleware(logger)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("nope"))
	})

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	w := httptest.NewRecorder()
	mw(next).ServeHTTP(w, req)

	out := buf.String()
	assert.Contains(t, out, "status=404")
	assert.Contains(t, out, "path=/missing")
	assert.Contains(t, out, "bytes_written=4")
	// 4xx логируется на уровне WARN
	assert.Contains(t, out, "level=WARN")
}

func TestLoggingWithSkip(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	mw := LoggingWithSkip(logger, []string{"/api/v2/health"})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v2/health", nil)
	w := httptest.NewRecorder()
	mw(next).ServeHTTP(w, req)

	assert.Empty(t, buf.String(), "health checks must not be logged")

	req = httptest.NewRequest(http.MethodGet, "/api/v2/scenes", nil)
	w = httptest.NewRecorder()
	mw(next).ServeHTTP(w, req)

	assert.Contains(t, buf.String(), "path=/api/v2/scenes")
}
