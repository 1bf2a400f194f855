// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков. Пакет упрощает возврат
// успешных ответов, ошибок и сообщений валидации в едином формате.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/lms/internal/models"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status: статус запроса ("OK" или "Error").
// Поле Error: текст ошибки (опционально, при неуспехе).
// Поле Code: машиночитаемый код ошибки (опционально).
// Поле Data: данные ответа (опционально, при успехе).
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Code   string `json:"code,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse: структура ошибки для Swagger-документации.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
	Code   string `json:"code,omitempty" example:"course_recently_updated"`
}

const (
	// StatusOK: значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError: значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// Коды ошибок.
const (
	CodeCourseRecentlyUpdated = "course_recently_updated"
	CodeNotFound              = "not_found"
	CodeValidation            = "validation_error"
	CodePermissionDenied      = "permission_denied"
	CodeNotAuthenticated      = "not_authenticated"
	CodeInvalidCredentials    = "invalid_credentials"
	CodeAlreadyExists         = "already_exists"
)

// OK возвращает успешный Response без данных.
func OK() Response {
	return Response{Status: StatusOK}
}

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

// ErrorWithCode возвращает Response с ошибкой и машиночитаемым кодом.
func ErrorWithCode(msg, code string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
		Code:   code,
	}
}

// FromError сопоставляет доменную ошибку с HTTP-статусом и телом ответа.
// Неизвестные ошибки становятся 500 без подробностей.
func FromError(err error) (int, Response) {
	switch {
	case errors.Is(err, models.ErrCourseRecentlyUpdated):
		return http.StatusBadRequest, ErrorWithCode("course was updated less than 4 hours ago", CodeCourseRecentlyUpdated)
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, ErrorWithCode("not found", CodeNotFound)
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest, ErrorWithCode(validationMessage(err), CodeValidation)
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrorWithCode("invalid email or password", CodeInvalidCredentials)
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized, ErrorWithCode("authentication credentials were not provided", CodeNotAuthenticated)
	case errors.Is(err, models.ErrPolicyDenied):
		return http.StatusForbidden, ErrorWithCode("you do not have permission to perform this action", CodePermissionDenied)
	case errors.Is(err, models.ErrAlreadyExists):
		return http.StatusConflict, ErrorWithCode("already exists", CodeAlreadyExists)
	default:
		return http.StatusInternalServerError, Error("internal error")
	}
}

// validationMessage оставляет из цепочки ошибок только пояснения, без имён операций.
func validationMessage(err error) string {
	var parts []string
	for _, part := range strings.Split(err.Error(), ": ") {
		if part == models.ErrValidation.Error() || !strings.Contains(part, " ") {
			continue
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return models.ErrValidation.Error()
	}
	return strings.Join(parts, ": ")
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "url":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid url", err.Field()))
		case "links":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s may contain only youtube.com links", err.Field()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at most %s characters", err.Field(), err.Param()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s characters", err.Field(), err.Param()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be one of: %s", err.Field(), err.Param()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
		Code:   CodeValidation,
	}
}
