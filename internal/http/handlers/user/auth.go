// Package user реализует HTTP-обработчики пользователей: регистрацию,
// получение токенов и работу с профилем.
package user

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/lms/internal/http/request"
	"github.com/magabrotheeeer/lms/internal/http/response"
	"github.com/magabrotheeeer/lms/internal/models"
	"github.com/magabrotheeeer/lms/internal/policy"
)

// AuthService описывает регистрацию и выдачу токенов.
type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.TokenPair, error)
	Refresh(ctx context.Context, refresh string) (*models.TokenPair, error)
}

// ProfileService описывает операции над профилями.
type ProfileService interface {
	List(ctx context.Context, actor policy.Actor, search string, page models.Page) (*models.PageResult[*models.User], error)
	Get(ctx context.Context, actor policy.Actor, id int64) (*models.User, error)
	Update(ctx context.Context, actor policy.Actor, id int64, upd models.ProfileUpdate, operation policy.Operation) (*models.User, error)
	Delete(ctx context.Context, actor policy.Actor, id int64) error
}

// Handler обрабатывает запросы к /users.
type Handler struct {
	log      *slog.Logger
	auth     AuthService
	profiles ProfileService
	validate *validator.Validate
}

// New создает Handler.
func New(log *slog.Logger, auth AuthService, profiles ProfileService, validate *validator.Validate) *Handler {
	return &Handler{log: log, auth: auth, profiles: profiles, validate: validate}
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// Register godoc
// @Summary Регистрация нового пользователя
// @Tags Users
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Email и пароль"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Email уже занят"
// @Router /users/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.user.Register")

	var req models.RegisterRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}
	u, err := h.auth.Register(r.Context(), req)
	if err != nil {
		request.Fail(w, r, log, err)
		return
	}
	log.Info("user registered", slog.Int64("id", u.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(u))
}

// Login godoc
// @Summary Авторизация пользователя
// @Description Возвращает access и refresh токены.
// @Tags Users
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Email и пароль"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Неверный email или пароль"
// @Router /users/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.user.Login")

	var req models.LoginRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}
	pair, err := h.auth.Login(r.Context(), req)
	if err != nil {
		request.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(pair))
}

// Refresh godoc
// @Summary Обновить access-токен
// @Tags Users
// @Accept json
// @Produce json
// @Param request body models.RefreshRequest true "Refresh-токен"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Router /users/token/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.user.Refresh")

	var req models.RefreshRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}
	pair, err := h.auth.Refresh(r.Context(), req.Refresh)
	if err != nil {
		request.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(pair))
}
