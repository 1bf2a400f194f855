// Package metrics регистрирует метрики Prometheus сервиса.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTPRequests число обработанных запросов по маршруту, методу и статусу.
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lms",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"route", "method", "status"})

	// HTTPDuration длительность обработки запросов.
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lms",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	// NotificationsSubmitted уведомления об обновлении курса, отправленные в очередь.
	NotificationsSubmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lms",
		Name:      "course_notifications_submitted_total",
		Help:      "Course update notifications submitted to the queue.",
	}, []string{"result"})

	// EmailsSent письма, обработанные сервисом рассылки.
	EmailsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lms",
		Name:      "emails_sent_total",
		Help:      "Emails processed by the notification sender.",
	}, []string{"result"})
)

// Register регистрирует метрики в reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(HTTPRequests, HTTPDuration, NotificationsSubmitted, EmailsSent)
}

// Result возвращает метку результата операции.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Middleware считает запросы по шаблону маршрута chi, а не по фактическому пути.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		HTTPDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
