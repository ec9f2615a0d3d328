// metrics.go — Prometheus HTTP метрики инспекционного модуля.
// Регистрирует метрики: im_http_requests_total, im_http_request_duration_seconds.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "im_http_requests_total",
			Help: "Общее количество HTTP-запросов к инспекционному модулю",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "im_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к инспекционному модулю в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
// Записывает количество запросов и длительность для каждого endpoint.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Нормализуем путь для лейблов метрик
			// (заменяем идентификаторы на {id} для предотвращения кардинальности)
			normalizedPath := normalizePath(r.URL.Path)

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.statusCode)

			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(duration)
		})
	}
}

// metricsResponseWriter — обёртка для перехвата статус-кода.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// normalizePath заменяет динамические сегменты пути на шаблоны
// для предотвращения взрывного роста кардинальности метрик.
// /api/v1/reports/SA-100-1757066400000 → /api/v1/reports/{id}
func normalizePath(path string) string {
	// Статические пути — возвращаем как есть
	switch path {
	case "/health/live", "/health/ready", "/metrics",
		"/api/v1/auth/signup",
		"/api/v1/auth/login",
		"/api/v1/parts",
		"/api/v1/reports",
		"/api/v1/compliance",
		"/api/v1/compliance/customers",
		"/api/v1/users":
		return path
	}

	if strings.HasPrefix(path, "/api/v1/parts/") {
		return "/api/v1/parts/{id}"
	}

	if rest, ok := strings.CutPrefix(path, "/api/v1/reports/"); ok {
		switch {
		case strings.HasPrefix(rest, "form/"):
			return "/api/v1/reports/form/{partNo}"
		case strings.HasSuffix(rest, "/approve"):
			return "/api/v1/reports/{id}/approve"
		case strings.HasSuffix(rest, "/reject"):
			return "/api/v1/reports/{id}/reject"
		case strings.HasSuffix(rest, "/logsheet.csv"):
			return "/api/v1/reports/{id}/logsheet.csv"
		case strings.HasSuffix(rest, "/logsheet"):
			return "/api/v1/reports/{id}/logsheet"
		default:
			return "/api/v1/reports/{id}"
		}
	}

	if strings.HasPrefix(path, "/api/v1/users/") {
		return "/api/v1/users/{id}"
	}

	return path
}
