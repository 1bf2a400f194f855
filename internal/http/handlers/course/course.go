// Package course реализует HTTP-обработчики курсов: список, просмотр, создание,
// полное и частичное обновление, удаление.
//
// Полное (PUT) и частичное (PATCH) обновления проходят через одну и ту же
// проверку в сервисе: право на изменение, интервал между изменениями и
// рассылку уведомлений подписчикам.
package course

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

// Service описывает бизнес-логику курсов.
type Service interface {
	List(ctx context.Context, actor policy.Actor, page models.Page) (*models.PageResult[*models.Course], error)
	Get(ctx context.Context, actor policy.Actor, id int64) (*models.Course, error)
	Create(ctx context.Context, actor policy.Actor, req models.CourseRequest) (*models.Course, error)
	Update(ctx context.Context, actor policy.Actor, id int64, upd models.CourseUpdate, operation policy.Operation) (*models.Course, error)
	Delete(ctx context.Context, actor policy.Actor, id int64) error
}

// Handler обрабатывает запросы к /courses.
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
// @Summary Список курсов
// @Description Модератор видит все курсы, остальные только свои.
// @Tags Courses
// @Produce json
// @Param page query int false "Номер страницы"
// @Param page_size query int false "Размер страницы (не больше 50)"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Router /courses [get]
// @Security BearerAuth
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.course.List")

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
// @Summary Курс с уроками
// @Tags Courses
// @Produce json
// @Param id path int true "ID курса"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /courses/{id} [get]
// @Security BearerAuth
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.course.Get")

	id, err := request.ID(r, "id")
	if err != nil {
		request.BadRequest(w, r, err.Error())
		return
	}
	c, err := h.service.Get(r.Context(), middlewarectx.ActorFrom(r.Context()), id)
	if err != nil {
		request.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(c))
}

// Create godoc
// @Summary Создать курс
// @Description Владельцем курса становится текущий пользователь.
// @Tags Courses
// @Accept json
// @Produce json
// @Param request body models.CourseRequest true "Данные курса"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /courses [post]
// @Security BearerAuth
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.course.Create")

	var req models.CourseRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}
	c, err := h.service.Create(r.Context(), middlewarectx.ActorFrom(r.Context()), req)
	if err != nil {
		request.Fail(w, r, log, err)
		return
	}
	log.Info("course created", slog.Int64("id", c.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(c))
}

// Update godoc
// @Summary Обновить курс
// @Description Изменение разрешено не чаще раза в 4 часа, подписчики получают письмо.
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path int true "ID курса"
// @Param request body models.CourseRequest true "Данные курса"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации или course_recently_updated"
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /courses/{id} [put]
// @Security BearerAuth
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.course.Update")

	var req models.CourseRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}
	h.update(w, r, log, req.Update(), policy.OpUpdate)
}

// Patch godoc
// @Summary Частично обновить курс
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path int true "ID курса"
// @Param request body models.CoursePatchRequest true "Изменяемые поля"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации или course_recently_updated"
// @Router /courses/{id} [patch]
// @Security BearerAuth
func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.course.Patch")

	var req models.CoursePatchRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}
	h.update(w, r, log, req.Update(), policy.OpPartialUpdate)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, log *slog.Logger, upd models.CourseUpdate, operation policy.Operation) {
	id, err := request.ID(r, "id")
	if err != nil {
		request.BadRequest(w, r, err.Error())
		return
	}
	c, err := h.service.Update(r.Context(), middlewarectx.ActorFrom(r.Context()), id, upd, operation)
	if err != nil {
		request.Fail(w, r, log, err)
		return
	}
	log.Info("course updated", slog.Int64("id", id))
	render.JSON(w, r, response.StatusOKWithData(c))
}

// Delete godoc
// @Summary Удалить курс
// @Description Удалить курс может только владелец.
// @Tags Courses
// @Param id path int true "ID курса"
// @Success 204
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /courses/{id} [delete]
// @Security BearerAuth
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.course.Delete")

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
