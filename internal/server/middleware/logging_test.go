package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
)

func newBufferLogger(buf *strings.Builder) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		handler       http.HandlerFunc
		name          string
		method        string
		path          string
		wantStatus    int
		wantLevel     string
		wantLoggedLen string
	}{
		{
			name:   "list apps",
			method: http.MethodGet,
			path:   "/api/apps",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("[]"))
			},
			wantStatus:    http.StatusOK,
			wantLevel:     "level=INFO",
			wantLoggedLen: "bytes_written=2",
		},
		{
			name:   "create app",
			method: http.MethodPost,
			path:   "/api/apps",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(`{"id":"123"}`))
			},
			wantStatus:    http.StatusCreated,
			wantLevel:     "level=INFO",
			wantLoggedLen: "bytes_written=12",
		},
		{
			name:   "not found",
			method: http.MethodGet,
			path:   "/api/apps/missing",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			wantStatus:    http.StatusNotFound,
			wantLevel:     "level=WARN",
			wantLoggedLen: "bytes_written=0",
		},
		{
			name:   "server error",
			method: http.MethodPut,
			path:   "/api/apps/app-1",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("boom"))
			},
			wantStatus:    http.StatusInternalServerError,
			wantLevel:     "level=ERROR",
			wantLoggedLen: "bytes_written=4",
		},
		{
			name:          "handler writes nothing",
			method:        http.MethodDelete,
			path:          "/api/apps/app-1",
			handler:       func(w http.ResponseWriter, r *http.Request) {},
			wantStatus:    http.StatusOK,
			wantLevel:     "level=INFO",
			wantLoggedLen: "bytes_written=0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logBuf strings.Builder
			handler := LoggingMiddleware(newBufferLogger(&logBuf))(tt.handler)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.RemoteAddr = "192.168.1.1:12345"
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)

			logOutput := logBuf.String()
			assert.Contains(t, logOutput, `msg="HTTP request"`)
			assert.Contains(t, logOutput, "method="+tt.method)
			assert.Contains(t, logOutput, "path="+tt.path)
			assert.Contains(t, logOutput, "remote_addr=192.168.1.1:12345")
			assert.Contains(t, logOutput, "duration_ms=")
			assert.Contains(t, logOutput, tt.wantLevel)
			assert.Contains(t, logOutput, tt.wantLoggedLen)
			assert.NotContains(t, logOutput, "user_id=", "anonymous request has no principal")
		})
	}
}

func TestLoggingMiddleware_SecretNameNotLogged(t *testing.T) {
	var logBuf strings.Builder
	handler := LoggingMiddleware(newBufferLogger(&logBuf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"value":"hunter2"}`))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/apps/app-1/secrets/STRIPE_KEY", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	logOutput := logBuf.String()
	assert.Contains(t, logOutput, "path=/api/apps/app-1/secrets/***")
	assert.NotContains(t, logOutput, "STRIPE_KEY")
	assert.NotContains(t, logOutput, "hunter2")
}

// AuthMiddleware внутри LoggingMiddleware сообщает, кто выполнил запрос
func TestLoggingMiddleware_RecordsPrincipal(t *testing.T) {
	tests := []struct {
		name       string
		credential string
		want       []string
		notWant    []string
	}{
		{
			name:       "session",
			credential: "access-token",
			want:       []string{"user_id=user123"},
			notWant:    []string{"app_id=", "access-token"},
		},
		{
			name:       "api key",
			credential: "envdev_key",
			want:       []string{"user_id=user123", "app_id=app-1"},
			notWant:    []string{"envdev_key"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logBuf strings.Builder
			logger := newBufferLogger(&logBuf)

			inner := AuthMiddleware(setupTestLogger(), newMockAuthenticator())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}))
			handler := LoggingMiddleware(logger)(inner)

			req := httptest.NewRequest(http.MethodGet, "/api/apps/app-1", nil)
			req.Header.Set("Authorization", "Bearer "+tt.credential)
			handler.ServeHTTP(httptest.NewRecorder(), req)

			logOutput := logBuf.String()
			assert.Contains(t, logOutput, "status=204")
			for _, s := range tt.want {
				assert.Contains(t, logOutput, s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, logOutput, s)
			}
		})
	}
}

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Normal path",
			input:    "/api/apps",
			expected: "/api/apps",
		},
		{
			name:     "Secrets list",
			input:    "/api/apps/app-1/secrets",
			expected: "/api/apps/app-1/secrets",
		},
		{
			name:     "Secret name is hidden",
			input:    "/api/apps/app-1/secrets/DB_PASS",
			expected: "/api/apps/app-1/secrets/***",
		},
		{
			name:     "Escaped name is hidden",
			input:    "/api/apps/app-1/secrets/MY%20KEY",
			expected: "/api/apps/app-1/secrets/***",
		},
		{
			name:     "Export stays readable",
			input:    "/api/apps/app-1/secrets/export",
			expected: "/api/apps/app-1/secrets/export",
		},
		{
			name:     "Trailing slash",
			input:    "/api/apps/app-1/secrets/",
			expected: "/api/apps/app-1/secrets/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizePath(tt.input))
		})
	}
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	var logBuf strings.Builder

	// chi RequestID кладет id в контекст раньше логирования
	handler := chimiddleware.RequestID(LoggingMiddleware(newBufferLogger(&logBuf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/apps", nil)
	req.Header.Set(chimiddleware.RequestIDHeader, "req-42")

	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, logBuf.String(), "request_id=req-42")
}

func TestLoggingWithSkip(t *testing.T) {
	var logBuf strings.Builder
	handler := LoggingWithSkip(newBufferLogger(&logBuf), []string{"/health"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	t.Run("Skipped path should not be logged", func(t *testing.T) {
		logBuf.Reset()

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, logBuf.String(), "skipped path should not be logged")
	})

	t.Run("Non-skipped path should be logged", func(t *testing.T) {
		logBuf.Reset()

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/apps", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, logBuf.String(), "path=/api/apps")
	})
}

func TestLevelForStatus(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, levelForStatus(http.StatusOK))
	assert.Equal(t, slog.LevelInfo, levelForStatus(http.StatusFound))
	assert.Equal(t, slog.LevelWarn, levelForStatus(http.StatusUnauthorized))
	assert.Equal(t, slog.LevelError, levelForStatus(http.StatusServiceUnavailable))
}
