package lms

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/lms/internal/http/handlers/course"
	"github.com/magabrotheeeer/lms/internal/http/handlers/health"
	"github.com/magabrotheeeer/lms/internal/http/handlers/lesson"
	"github.com/magabrotheeeer/lms/internal/http/handlers/payment"
	"github.com/magabrotheeeer/lms/internal/http/handlers/subscription"
	"github.com/magabrotheeeer/lms/internal/http/handlers/user"
	"github.com/magabrotheeeer/lms/internal/http/middlewarectx"
	"github.com/magabrotheeeer/lms/internal/lib/links"
	"github.com/magabrotheeeer/lms/internal/policy"
)

type pinger struct{}

func (pinger) Ping(context.Context) error { return nil }

type rejectAll struct{}

func (rejectAll) ValidateToken(context.Context, string) (policy.Actor, error) {
	return policy.Actor{}, errors.New("token is invalid")
}

func newRouter() chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	validate := links.NewValidator()
	r := chi.NewRouter()
	RegisterRoutes(r, logger, Handlers{
		Health:       health.New(logger, pinger{}),
		Users:        user.New(logger, nil, nil, validate),
		Courses:      course.New(logger, nil, validate),
		Lessons:      lesson.New(logger, nil, validate),
		Subscription: subscription.New(logger, nil, validate),
		Payments:     payment.New(logger, nil, validate),
	}, rejectAll{}, middlewarectx.NewLimiter(100, 100))
	return r
}

func TestRoutes(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		path           string
		header         string
		expectedStatus int
	}{
		{name: "health открыт", method: http.MethodGet, path: "/health", expectedStatus: http.StatusOK},
		{name: "метрики открыты", method: http.MethodGet, path: "/metrics", expectedStatus: http.StatusOK},
		{name: "курсы без токена", method: http.MethodGet, path: "/api/v1/courses", expectedStatus: http.StatusUnauthorized},
		{name: "урок без токена", method: http.MethodDelete, path: "/api/v1/lessons/1", expectedStatus: http.StatusUnauthorized},
		{name: "подписка с неверным токеном", method: http.MethodPost, path: "/api/v1/subscriptions/toggle", header: "Bearer bad", expectedStatus: http.StatusUnauthorized},
		{name: "статус оплаты без токена", method: http.MethodGet, path: "/api/v1/payments/status/cs_1", expectedStatus: http.StatusUnauthorized},
		{name: "профиль без токена", method: http.MethodPatch, path: "/api/v1/users/1", expectedStatus: http.StatusUnauthorized},
		{name: "регистрация без тела", method: http.MethodPost, path: "/api/v1/users/register", expectedStatus: http.StatusBadRequest},
		{name: "неизвестный маршрут", method: http.MethodGet, path: "/api/v1/unknown", expectedStatus: http.StatusNotFound},
	}

	r := newRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}
