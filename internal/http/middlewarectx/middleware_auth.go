// Package middlewarectx содержит HTTP middleware для проверки JWT токенов и ограничения частоты запросов.
//
// JWTMiddleware проверяет наличие и валидность JWT токена в заголовке Authorization
// и в случае успеха кладёт в контекст пользователя (policy.Actor) для обработчиков.
// В случае ошибки проверки возвращает HTTP 401 Unauthorized с сообщением об ошибке.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/lms/internal/http/response"
	"github.com/magabrotheeeer/lms/internal/lib/sl"
	"github.com/magabrotheeeer/lms/internal/policy"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// ActorKey ключ пользователя в контексте.
const ActorKey Key = "actor"

// Service описывает интерфейс сервиса для валидации JWT токена.
type Service interface {
	ValidateToken(ctx context.Context, token string) (policy.Actor, error)
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
func JWTMiddleware(authService Service, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Info("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.ErrorWithCode("missing or invalid authorization header", response.CodeNotAuthenticated))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			actor, err := authService.ValidateToken(r.Context(), tokenStr)
			if err != nil || !actor.Authenticated {
				log.Info("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.ErrorWithCode("invalid or expired token", response.CodeNotAuthenticated))
				return
			}
			ctx := WithActor(r.Context(), actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithActor кладёт пользователя в контекст.
func WithActor(ctx context.Context, actor policy.Actor) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

// ActorFrom возвращает пользователя из контекста. Без middleware это анонимный пользователь.
func ActorFrom(ctx context.Context) policy.Actor {
	actor, _ := ctx.Value(ActorKey).(policy.Actor)
	return actor
}
