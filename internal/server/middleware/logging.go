package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/iudanet/envdev/internal/server/vault"
)

type accessKey struct{}

// access собирает сведения о запросе, которые известны только внутренним
// middleware (кто обратился). Заполняется AuthMiddleware.
type access struct {
	principal *vault.Principal
}

// recordPrincipal сообщает access log, от чьего имени выполняется запрос
func recordPrincipal(ctx context.Context, p vault.Principal) {
	if a, ok := ctx.Value(accessKey{}).(*access); ok {
		a.principal = &p
	}
}

// LoggingMiddleware пишет одну запись access log на запрос:
// метод, путь без имен секретов, статус, длительность, размер ответа,
// request id и principal. Токены, пароли и значения секретов не логируются.
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			info := &access{}
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), accessKey{}, info)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			attrs := []slog.Attr{
				slog.String("request_id", chimiddleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", sanitizePath(r.URL.Path)),
				slog.String("remote_addr", r.RemoteAddr),
				slog.Int("status", status),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.Int("bytes_written", ww.BytesWritten()),
			}
			if p := info.principal; p != nil {
				attrs = append(attrs, slog.String("user_id", p.UserID))
				if p.IsAPIKey() {
					attrs = append(attrs, slog.String("app_id", p.AppID))
				}
			}

			logger.LogAttrs(r.Context(), levelForStatus(status), "HTTP request", attrs...)
		})
	}
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// sanitizePath скрывает имена секретов в пути:
// /api/apps/{id}/secrets/DB_PASS -> /api/apps/{id}/secrets/***
// Служебный сегмент export остается как есть.
func sanitizePath(path string) string {
	head, name, found := strings.Cut(path, "/secrets/")
	if !found || name == "" || name == "export" {
		return path
	}
	return head + "/secrets/***"
}

// LoggingWithSkip не пишет access log для перечисленных путей (health checks)
func LoggingWithSkip(logger *slog.Logger, skipPaths []string) func(http.Handler) http.Handler {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, path := range skipPaths {
		skip[path] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		logged := LoggingMiddleware(logger)(next)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			logged.ServeHTTP(w, r)
		})
	}
}
