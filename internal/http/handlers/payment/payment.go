// Package payment реализует HTTP-обработчики платежей и проверки статуса оплаты.
package payment

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/lms/internal/http/middlewarectx"
	"github.com/magabrotheeeer/lms/internal/http/request"
	"github.com/magabrotheeeer/lms/internal/http/response"
	"github.com/magabrotheeeer/lms/internal/models"
	"github.com/magabrotheeeer/lms/internal/policy"
	paymentservice "github.com/magabrotheeeer/lms/internal/services/payment"
)

// Service описывает бизнес-логику платежей.
type Service interface {
	List(ctx context.Context, actor policy.Actor, f models.PaymentFilter, page models.Page) (*models.PageResult[*models.Payment], error)
	Get(ctx context.Context, actor policy.Actor, id int64) (*models.Payment, error)
	Create(ctx context.Context, actor policy.Actor, req models.PaymentRequest) (*models.Payment, error)
	Update(ctx context.Context, actor policy.Actor, id int64, upd models.PaymentUpdate, operation policy.Operation) (*models.Payment, error)
	Delete(ctx context.Context, actor policy.Actor, id int64) error
	Status(ctx context.Context, actor policy.Actor, sessionID string) (*models.CheckoutSession, error)
}

// Handler обрабатывает запросы к /payments.
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
// @Summary Список платежей
// @Description Фильтры по курсу, уроку и способу оплаты, сортировка по дате платежа.
// @Tags Payments
// @Produce json
// @Param paid_course query int false "ID курса"
// @Param paid_lesson query int false "ID урока"
// @Param payment_method query string false "cash или transfer"
// @Param ordering query string false "payment_date или -payment_date"
// @Param page query int false "Номер страницы"
// @Param page_size query int false "Размер страницы"
// @Success 200 {object} response.Response
// @Router /payments [get]
// @Security BearerAuth
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.payment.List")

	page, err := request.Page(r)
	if err != nil {
		request.BadRequest(w, r, err.Error())
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		request.BadRequest(w, r, err.Error())
		return
	}
	result, err := h.service.List(r.Context(), middlewarectx.ActorFrom(r.Context()), filter, page)
	if err != nil {
		request.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(result))
}

func parseFilter(r *http.Request) (models.PaymentFilter, error) {
	var (
		f   models.PaymentFilter
		err error
	)
	if f.CourseID, err = request.OptionalInt64(r, "paid_course"); err != nil {
		return f, err
	}
	if f.LessonID, err = request.OptionalInt64(r, "paid_lesson"); err != nil {
		return f, err
	}
	q := r.URL.Query()
	switch m := models.PaymentMethod(q.Get("payment_method")); m {
	case "":
	case models.PaymentCash, models.PaymentTransfer:
		f.Method = &m
	default:
		return f, errors.New("invalid payment_method")
	}
	switch q.Get("ordering") {
	case "", "payment_date":
	case "-payment_date":
		f.OrderDesc = true
	default:
		return f, errors.New("invalid ordering")
	}
	return f, nil
}

// Get godoc
// @Summary Платёж
// @Tags Payments
// @Produce json
// @Param id path int true "ID платежа"
// @Success 200 {object} response.Response
// @Router /payments/{id} [get]
// @Security BearerAuth
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.payment.Get")

	id, err := request.ID(r, "id")
	if err != nil {
		request.BadRequest(w, r, err.Error())
		return
	}
	p, err := h.service.Get(r.Context(), middlewarectx.ActorFrom(r.Context()), id)
	if err != nil {
		request.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(p))
}

// Create godoc
// @Summary Создать платеж
// @Description Для перевода при настроенном шлюзе возвращается ссылка на оплату.
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body models.PaymentRequest true "Данные платежа"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /payments [post]
// @Security BearerAuth
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.payment.Create")

	var req models.PaymentRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}
	p, err := h.service.Create(r.Context(), middlewarectx.ActorFrom(r.Context()), req)
	if err != nil {
		request.Fail(w, r, log, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(p))
}

// Update godoc
// @Summary Обновить платеж
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path int true "ID платежа"
// @Param request body models.PaymentRequest true "Данные платежа"
// @Success 200 {object} response.Response
// @Router /payments/{id} [put]
// @Security BearerAuth
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.payment.Update")

	var req models.PaymentRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}
	h.update(w, r, log, req.Update(), policy.OpUpdate)
}

// Patch godoc
// @Summary Частично обновить платеж
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path int true "ID платежа"
// @Param request body models.PaymentPatchRequest true "Изменяемые поля"
// @Success 200 {object} response.Response
// @Router /payments/{id} [patch]
// @Security BearerAuth
func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.payment.Patch")

	var req models.PaymentPatchRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}
	h.update(w, r, log, req.Update(), policy.OpPartialUpdate)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, log *slog.Logger, upd models.PaymentUpdate, operation policy.Operation) {
	id, err := request.ID(r, "id")
	if err != nil {
		request.BadRequest(w, r, err.Error())
		return
	}
	p, err := h.service.Update(r.Context(), middlewarectx.ActorFrom(r.Context()), id, upd, operation)
	if err != nil {
		request.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(p))
}

// Delete godoc
// @Summary Удалить платеж
// @Tags Payments
// @Param id path int true "ID платежа"
// @Success 204
// @Router /payments/{id} [delete]
// @Security BearerAuth
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.payment.Delete")

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

// Status godoc
// @Summary Статус оплаты
// @Description Запрашивает у платёжного шлюза состояние сессии и обновляет платёж.
// @Tags Payments
// @Produce json
// @Param session_id path string true "ID сессии оплаты"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Failure 503 {object} response.ErrorResponse "Шлюз не настроен"
// @Router /payments/status/{session_id} [get]
// @Security BearerAuth
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.payment.Status")

	sessionID := chi.URLParam(r, "session_id")
	if sessionID == "" {
		request.BadRequest(w, r, "invalid session_id")
		return
	}
	session, err := h.service.Status(r.Context(), middlewarectx.ActorFrom(r.Context()), sessionID)
	if errors.Is(err, paymentservice.ErrGatewayDisabled) {
		log.Warn("payment status requested without gateway")
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("payment gateway is not configured"))
		return
	}
	if err != nil {
		request.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(session))
}
