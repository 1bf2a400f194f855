// Package request разбирает параметры HTTP-запросов и пишет ответы об ошибках в едином формате.
package request

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/lms/internal/http/response"
	"github.com/magabrotheeeer/lms/internal/lib/sl"
	"github.com/magabrotheeeer/lms/internal/models"
)

// Параметры пагинации.
const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// ID читает положительный целочисленный параметр пути.
func ID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

// Page читает page и page_size. Нумерация страниц с 1, page_size не больше MaxPageSize.
func Page(r *http.Request) (models.Page, error) {
	q := r.URL.Query()
	page, size := 1, DefaultPageSize
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return models.Page{}, errors.New("invalid page")
		}
		page = n
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return models.Page{}, errors.New("invalid page_size")
		}
		size = min(n, MaxPageSize)
	}
	return models.Page{Limit: size, Offset: (page - 1) * size}, nil
}

// OptionalInt64 читает необязательный целочисленный query-параметр.
func OptionalInt64(r *http.Request, name string) (*int64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, errors.New("invalid " + name)
	}
	return &n, nil
}

// Decode читает JSON-тело в v и проверяет его. При ошибке пишет ответ 400 и возвращает false.
func Decode(w http.ResponseWriter, r *http.Request, log *slog.Logger, validate *validator.Validate, v any) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		log.Info("failed to decode request body", sl.Err(err))
		BadRequest(w, r, "failed to decode request")
		return false
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			log.Error("validation failed", sl.Err(err))
			BadRequest(w, r, "invalid request")
			return false
		}
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(verrs))
		return false
	}
	return true
}

// BadRequest пишет ответ 400 с сообщением.
func BadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, response.ErrorWithCode(msg, response.CodeValidation))
}

// Fail пишет ответ по доменной ошибке. Внутренние ошибки логируются как Error.
func Fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status, resp := response.FromError(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", sl.Err(err))
	} else {
		log.Info("request rejected", slog.Int("status", status), sl.Err(err))
	}
	render.Status(r, status)
	render.JSON(w, r, resp)
}
