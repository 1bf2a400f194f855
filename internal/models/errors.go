package models

import "errors"

// Ошибки предметной области. Сервисы и хранилище оборачивают их через %w,
// HTTP-слой сопоставляет их с кодами ответа.
var (
	ErrNotFound              = errors.New("not found")
	ErrValidation            = errors.New("validation error")
	ErrPolicyDenied          = errors.New("access denied")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrAlreadyExists         = errors.New("already exists")
	ErrCourseRecentlyUpdated = errors.New("course was updated recently")
)
