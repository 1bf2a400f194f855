package models

import (
	"slices"
	"time"
)

// GroupModerators имя группы модераторов.
const GroupModerators = "moderators"

// User зарегистрированный пользователь. Email используется как логин.
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Phone        *string    `json:"phone"`
	City         *string    `json:"city"`
	Avatar       *string    `json:"avatar"`
	IsActive     bool       `json:"is_active"`
	LastLogin    *time.Time `json:"last_login"`
	Groups       []string   `json:"groups"`
	Payments     []*Payment `json:"payments"`
}

// Subject возвращает идентификатор пользователя как ресурса политики доступа.
func (u *User) Subject() int64 {
	return u.ID
}

// IsModerator сообщает, состоит ли пользователь в группе модераторов.
func (u *User) IsModerator() bool {
	return slices.Contains(u.Groups, GroupModerators)
}

// Apply применяет изменения профиля.
func (u *User) Apply(upd ProfileUpdate) {
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Phone != nil {
		u.Phone = nullIfEmpty(*upd.Phone)
	}
	if upd.City != nil {
		u.City = nullIfEmpty(*upd.City)
	}
	if upd.Avatar != nil {
		u.Avatar = nullIfEmpty(*upd.Avatar)
	}
}

// RegisterRequest тело запроса регистрации.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"omitempty,max=35"`
	City     string `json:"city" validate:"omitempty,max=50"`
}

// LoginRequest тело запроса авторизации.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest тело запроса обновления access-токена.
type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// TokenPair пара токенов, выдаваемая при авторизации.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// ProfileRequest тело запроса обновления профиля. Для PUT и PATCH используется одна структура.
type ProfileRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	Phone     *string `json:"phone" validate:"omitempty,max=35"`
	City      *string `json:"city" validate:"omitempty,max=50"`
	Avatar    *string `json:"avatar" validate:"omitempty,max=255"`
}

// ProfileUpdate набор изменяемых полей профиля.
type ProfileUpdate ProfileRequest
