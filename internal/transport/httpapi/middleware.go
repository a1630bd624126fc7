package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/metrics"
)

type ownerKey struct{}

// Authenticator проверяет bearer-токен и возвращает id пользователя.
type Authenticator interface {
	Authenticate(token string) (int64, error)
}

// withOwner кладёт id проверенного пользователя в контекст запроса.
func withOwner(ctx context.Context, ownerID int64) context.Context {
	return context.WithValue(ctx, ownerKey{}, ownerID)
}

// ownerFrom возвращает id пользователя из контекста; 0, если запрос анонимный.
func ownerFrom(ctx context.Context) int64 {
	ownerID, _ := ctx.Value(ownerKey{}).(int64)
	return ownerID
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// attachUser разбирает Authorization, если он есть. Невалидный токен не прерывает запрос.
func attachUser(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token != "" {
				if ownerID, err := auth.Authenticate(token); err == nil {
					r = r.WithContext(withOwner(r.Context(), ownerID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAuth отвечает 401 анонимным запросам.
func requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ownerFrom(r.Context()) <= 0 {
			writeJSON(w, http.StatusUnauthorized, errorBody{
				Status:  "unauthorized",
				Message: "Authentication required",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// routePattern возвращает шаблон маршрута chi, чтобы метки метрик не зависели от id в пути.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

// accessLog пишет одну запись на запрос и снимает HTTP-метрики.
func accessLog(logger *log.Entry, m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			m.Started()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)
			duration := time.Since(started)
			m.Observe(r.Method, route, status, duration)

			logger.WithFields(log.Fields{
				"method":      r.Method,
				"route":       route,
				"path":        r.URL.Path,
				"status":      status,
				"bytes":       ww.BytesWritten(),
				"duration_ms": duration.Milliseconds(),
				"request_id":  middleware.GetReqID(r.Context()),
				"remote_addr": r.RemoteAddr,
			}).Info("http request")
		})
	}
}
