package lms

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/lms/internal/http/handlers/course"
	"github.com/magabrotheeeer/lms/internal/http/handlers/health"
	"github.com/magabrotheeeer/lms/internal/http/handlers/lesson"
	"github.com/magabrotheeeer/lms/internal/http/handlers/payment"
	"github.com/magabrotheeeer/lms/internal/http/handlers/subscription"
	"github.com/magabrotheeeer/lms/internal/http/handlers/user"
	"github.com/magabrotheeeer/lms/internal/http/middlewarectx"
	"github.com/magabrotheeeer/lms/internal/lib/metrics"
)

// Handlers набор HTTP-обработчиков API.
type Handlers struct {
	Health       *health.Handler
	Users        *user.Handler
	Courses      *course.Handler
	Lessons      *lesson.Handler
	Subscription *subscription.Handler
	Payments     *payment.Handler
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, h Handlers, auth middlewarectx.Service, limiter *middlewarectx.Limiter) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		metrics.Middleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/users/register", h.Users.Register)
		r.Post("/users/login", h.Users.Login)
		r.Post("/users/token/refresh", h.Users.Refresh)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, limiter))

			r.Route("/courses", func(r chi.Router) {
				r.Get("/", h.Courses.List)
				r.Post("/", h.Courses.Create)
				r.Get("/{id}", h.Courses.Get)
				r.Put("/{id}", h.Courses.Update)
				r.Patch("/{id}", h.Courses.Patch)
				r.Delete("/{id}", h.Courses.Delete)
			})

			r.Route("/lessons", func(r chi.Router) {
				r.Get("/", h.Lessons.List)
				r.Post("/", h.Lessons.Create)
				r.Get("/{id}", h.Lessons.Get)
				r.Put("/{id}", h.Lessons.Update)
				r.Patch("/{id}", h.Lessons.Patch)
				r.Delete("/{id}", h.Lessons.Delete)
			})

			r.Post("/subscriptions/toggle", h.Subscription.ServeHTTP)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.Users.List)
				r.Get("/{id}", h.Users.Get)
				r.Put("/{id}", h.Users.Update)
				r.Patch("/{id}", h.Users.Patch)
				r.Delete("/{id}", h.Users.Delete)
			})

			r.Route("/payments", func(r chi.Router) {
				r.Get("/", h.Payments.List)
				r.Post("/", h.Payments.Create)
				r.Get("/status/{session_id}", h.Payments.Status)
				r.Get("/{id}", h.Payments.Get)
				r.Put("/{id}", h.Payments.Update)
				r.Patch("/{id}", h.Payments.Patch)
				r.Delete("/{id}", h.Payments.Delete)
			})
		})
	})

	r.Get("/health", h.Health.ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
