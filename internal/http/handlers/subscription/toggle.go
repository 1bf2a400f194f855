// Package subscription реализует HTTP-обработчик переключения подписки на курс.
package subscription

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/lms/internal/http/middlewarectx"
	"github.com/magabrotheeeer/lms/internal/http/request"
	"github.com/magabrotheeeer/lms/internal/http/response"
	"github.com/magabrotheeeer/lms/internal/models"
	"github.com/magabrotheeeer/lms/internal/policy"
)

// Service описывает бизнес-логику подписок.
type Service interface {
	Toggle(ctx context.Context, actor policy.Actor, courseID int64) (models.ToggleResult, error)
}

// ToggleResponse ответ на переключение подписки.
type ToggleResponse struct {
	Message    string `json:"message"`
	Subscribed bool   `json:"subscribed"`
}

// Handler обрабатывает POST /subscriptions/toggle.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает Handler.
func New(log *slog.Logger, service Service, validate *validator.Validate) *Handler {
	return &Handler{log: log, service: service, validate: validate}
}

// ServeHTTP godoc
// @Summary Подписаться на курс или отписаться
// @Description Повторный вызов отменяет предыдущий.
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param request body models.ToggleRequest true "ID курса"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Router /subscriptions/toggle [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.Toggle"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.ToggleRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	result, err := h.service.Toggle(r.Context(), middlewarectx.ActorFrom(r.Context()), req.CourseID)
	if err != nil {
		request.Fail(w, r, log, err)
		return
	}
	log.Info("subscription toggled", slog.Int64("course_id", req.CourseID), slog.String("result", string(result)))
	render.JSON(w, r, response.StatusOKWithData(ToggleResponse{
		Message:    result.Message(),
		Subscribed: result == models.Subscribed,
	}))
}
