// Package lesson реализует HTTP-обработчики уроков.
package lesson

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

// Service описывает бизнес-логику уроков.
type Service interface {
	List(ctx context.Context, actor policy.Actor, page models.Page) (*models.PageResult[*models.Lesson], error)
	Get(ctx context.Context, actor policy.Actor, id int64) (*models.Lesson, error)
	Create(ctx context.Context, actor policy.Actor, req models.LessonRequest) (*models.Lesson, error)
	Update(ctx context.Context, actor policy.Actor, id int64, upd models.LessonUpdate, operation policy.Operation) (*models.Lesson, error)
	Delete(ctx context.Context, actor policy.Actor, id int64) error
}

// Handler обрабатывает запросы к /lessons.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает Handler.
func New(log *slog.Logger, service Service, validate *validator.Validate) *Handler {
	return &Handler{log: log, service: service, validate: validate}
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// List godoc
// @Summary Список уроков
// @Tags Lessons
// @Produce json
// @Param page query int false "Номер страницы"
// @Param page_size query int false "Размер страницы"
// @Success 200 {object} response.Response
// @Router /lessons [get]
// @Security BearerAuth
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.lesson.List")

	page, err := request.Page(r)
	if err != nil {
		request.BadRequest(w, r, err.Error())
		return
	}
	result, err := h.service.List(r.Context(), middlewarectx.ActorFrom(r.Context()), page)
	if err != nil {
		request.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(result))
}

// Get godoc
// @Summary Урок
// @Tags Lessons
// @Produce json
// @Param id path int true "ID урока"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /lessons/{id} [get]
// @Security BearerAuth
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.lesson.Get")

	id, err := request.ID(r, "id")
	if err != nil {
		request.BadRequest(w, r, err.Error())
		return
	}
	l, err := h.service.Get(r.Context(), middlewarectx.ActorFrom(r.Context()), id)
	if err != nil {
		request.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(l))
}

// Create godoc
// @Summary Создать урок
// @Description Ссылка на видео должна вести на youtube.com.
// @Tags Lessons
// @Accept json
// @Produce json
// @Param request body models.LessonRequest true "Данные урока"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /lessons [post]
// @Security BearerAuth
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.lesson.Create")

	var req models.LessonRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}
	l, err := h.service.Create(r.Context(), middlewarectx.ActorFrom(r.Context()), req)
	if err != nil {
		request.Fail(w, r, log, err)
		return
	}
	log.Info("lesson created", slog.Int64("id", l.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(l))
}

// Update godoc
// @Summary Обновить урок
// @Tags Lessons
// @Accept json
// @Produce json
// @Param id path int true "ID урока"
// @Param request body models.LessonRequest true "Данные урока"
// @Success 200 {object} response.Response
// @Router /lessons/{id} [put]
// @Security BearerAuth
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.lesson.Update")

	var req models.LessonRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}
	h.update(w, r, log, req.Update(), policy.OpUpdate)
}

// Patch godoc
// @Summary Частично обновить урок
// @Tags Lessons
// @Accept json
// @Produce json
// @Param id path int true "ID урока"
// @Param request body models.LessonPatchRequest true "Изменяемые поля"
// @Success 200 {object} response.Response
// @Router /lessons/{id} [patch]
// @Security BearerAuth
func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.lesson.Patch")

	var req models.LessonPatchRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}
	h.update(w, r, log, req.Update(), policy.OpPartialUpdate)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, log *slog.Logger, upd models.LessonUpdate, operation policy.Operation) {
	id, err := request.ID(r, "id")
	if err != nil {
		request.BadRequest(w, r, err.Error())
		return
	}
	l, err := h.service.Update(r.Context(), middlewarectx.ActorFrom(r.Context()), id, upd, operation)
	if err != nil {
		request.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(l))
}

// Delete godoc
// @Summary Удалить урок
// @Tags Lessons
// @Param id path int true "ID урока"
// @Success 204
// @Router /lessons/{id} [delete]
// @Security BearerAuth
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.lesson.Delete")

	id, err := request.ID(r, "id")
	if err != nil {
		request.BadRequest(w, r, err.Error())
		return
	}
	if err := h.service.Delete(r.Context(), middlewarectx.ActorFrom(r.Context()), id); err != nil {
		request.Fail(w, r, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
