package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod способ оплаты.
type PaymentMethod string

const (
	// PaymentCash оплата наличными.
	PaymentCash PaymentMethod = "cash"
	// PaymentTransfer перевод на счёт, проходит через платёжный шлюз.
	PaymentTransfer PaymentMethod = "transfer"
)

// Статусы платежа.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusExpired = "expired"
)

// Payment платёж пользователя за курс или урок.
type Payment struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user"`
	CourseID   *int64          `json:"paid_course"`
	LessonID   *int64          `json:"paid_lesson"`
	Amount     decimal.Decimal `json:"amount"`
	Method     PaymentMethod   `json:"payment_method"`
	PaidAt     time.Time       `json:"payment_date"`
	SessionID  *string         `json:"session_id"`
	PaymentURL *string         `json:"payment_link"`
	Status     string          `json:"status"`
}

// Owner возвращает владельца платежа.
func (p *Payment) Owner() (int64, bool) {
	if p == nil {
		return 0, false
	}
	return p.UserID, true
}

// PaymentRequest тело запроса на создание и полное обновление платежа.
type PaymentRequest struct {
	CourseID int64           `json:"paid_course" validate:"omitempty,gt=0"`
	LessonID int64           `json:"paid_lesson" validate:"omitempty,gt=0"`
	Amount   decimal.Decimal `json:"amount"`
	Method   PaymentMethod   `json:"payment_method" validate:"required,oneof=cash transfer"`
}

// PaymentPatchRequest тело запроса на частичное обновление платежа.
type PaymentPatchRequest struct {
	CourseID *int64           `json:"paid_course" validate:"omitempty,gte=0"`
	LessonID *int64           `json:"paid_lesson" validate:"omitempty,gte=0"`
	Amount   *decimal.Decimal `json:"amount"`
	Method   *PaymentMethod   `json:"payment_method" validate:"omitempty,oneof=cash transfer"`
}

// PaymentUpdate набор изменяемых полей платежа. Нулевой ID отвязывает курс или урок.
type PaymentUpdate struct {
	CourseID *int64
	LessonID *int64
	Amount   *decimal.Decimal
	Method   *PaymentMethod
}

// Update полное обновление платежа.
func (r PaymentRequest) Update() PaymentUpdate {
	return PaymentUpdate{
		CourseID: &r.CourseID,
		LessonID: &r.LessonID,
		Amount:   &r.Amount,
		Method:   &r.Method,
	}
}

// Update частичное обновление платежа.
func (r PaymentPatchRequest) Update() PaymentUpdate {
	return PaymentUpdate(r)
}

// Apply применяет изменения к платежу.
func (p *Payment) Apply(upd PaymentUpdate) {
	if upd.CourseID != nil {
		p.CourseID = zeroAsNil(*upd.CourseID)
	}
	if upd.LessonID != nil {
		p.LessonID = zeroAsNil(*upd.LessonID)
	}
	if upd.Amount != nil {
		p.Amount = *upd.Amount
	}
	if upd.Method != nil {
		p.Method = *upd.Method
	}
}

// PaymentFilter параметры выборки списка платежей.
type PaymentFilter struct {
	UserID   *int64
	CourseID *int64
	LessonID *int64
	Method   *PaymentMethod
	// OrderDesc сортирует по дате платежа от новых к старым.
	OrderDesc bool
}

// CheckoutSession сессия оплаты во внешнем шлюзе.
type CheckoutSession struct {
	ID            string `json:"session_id"`
	URL           string `json:"payment_link"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
}

func zeroAsNil(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
