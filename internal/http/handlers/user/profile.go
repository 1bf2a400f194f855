package user

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/lms/internal/http/middlewarectx"
	"github.com/magabrotheeeer/lms/internal/http/request"
	"github.com/magabrotheeeer/lms/internal/http/response"
	"github.com/magabrotheeeer/lms/internal/models"
	"github.com/magabrotheeeer/lms/internal/policy"
)

// List godoc
// @Summary Список пользователей
// @Description Поиск по подстроке email. Не модератор видит только себя.
// @Tags Users
// @Produce json
// @Param search query string false "Часть email"
// @Param page query int false "Номер страницы"
// @Param page_size query int false "Размер страницы"
// @Success 200 {object} response.Response
// @Router /users [get]
// @Security BearerAuth
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.user.List")

	page, err := request.Page(r)
	if err != nil {
		request.BadRequest(w, r, err.Error())
		return
	}
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	result, err := h.profiles.List(r.Context(), middlewarectx.ActorFrom(r.Context()), search, page)
	if err != nil {
		request.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(result))
}

// Get godoc
// @Summary Профиль пользователя с платежами
// @Tags Users
// @Produce json
// @Param id path int true "ID пользователя"
// @Success 200 {object} response.Response
// @Router /users/{id} [get]
// @Security BearerAuth
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.user.Get")

	id, err := request.ID(r, "id")
	if err != nil {
		request.BadRequest(w, r, err.Error())
		return
	}
	u, err := h.profiles.Get(r.Context(), middlewarectx.ActorFrom(r.Context()), id)
	if err != nil {
		request.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(u))
}

// Update godoc
// @Summary Обновить профиль
// @Tags Users
// @Accept json
// @Produce json
// @Param id path int true "ID пользователя"
// @Param request body models.ProfileRequest true "Поля профиля"
// @Success 200 {object} response.Response
// @Router /users/{id} [put]
// @Security BearerAuth
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, "handlers.user.Update", policy.OpUpdate)
}

// Patch godoc
// @Summary Частично обновить профиль
// @Tags Users
// @Accept json
// @Produce json
// @Param id path int true "ID пользователя"
// @Param request body models.ProfileRequest true "Поля профиля"
// @Success 200 {object} response.Response
// @Router /users/{id} [patch]
// @Security BearerAuth
func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, "handlers.user.Patch", policy.OpPartialUpdate)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, op string, operation policy.Operation) {
	log := h.logger(r, op)

	id, err := request.ID(r, "id")
	if err != nil {
		request.BadRequest(w, r, err.Error())
		return
	}
	var req models.ProfileRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}
	u, err := h.profiles.Update(r.Context(), middlewarectx.ActorFrom(r.Context()), id, models.ProfileUpdate(req), operation)
	if err != nil {
		request.Fail(w, r, log, err)
		return
	}
	log.Info("profile updated", slog.Int64("id", id))
	render.JSON(w, r, response.StatusOKWithData(u))
}

// Delete godoc
// @Summary Удалить пользователя
// @Tags Users
// @Param id path int true "ID пользователя"
// @Success 204
// @Router /users/{id} [delete]
// @Security BearerAuth
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.user.Delete")

	id, err := request.ID(r, "id")
	if err != nil {
		request.BadRequest(w, r, err.Error())
		return
	}
	if err := h.profiles.Delete(r.Context(), middlewarectx.ActorFrom(r.Context()), id); err != nil {
		request.Fail(w, r, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
