package models

import "time"

// Subscription подписка пользователя на обновления курса.
// Пара (UserID, CourseID) уникальна.
type Subscription struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user"`
	CourseID  int64     `json:"course"`
	CreatedAt time.Time `json:"created_at"`
}

// ToggleResult итог переключения подписки.
type ToggleResult string

const (
	// Subscribed подписка создана.
	Subscribed ToggleResult = "subscribed"
	// Unsubscribed подписка удалена.
	Unsubscribed ToggleResult = "unsubscribed"
)

// Message возвращает текст ответа для клиента.
func (r ToggleResult) Message() string {
	if r == Subscribed {
		return "Подписка добавлена"
	}
	return "Подписка удалена"
}

// ToggleRequest тело запроса на переключение подписки.
type ToggleRequest struct {
	CourseID int64 `json:"course_id" validate:"required,gt=0"`
}

// CourseUpdatedMessage сообщение в очередь уведомлений об обновлении курса.
type CourseUpdatedMessage struct {
	CourseID int64  `json:"course_id"`
	Email    string `json:"email"`
}
