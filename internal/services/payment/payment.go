// Package payment содержит операции над платежами и интеграцию с платёжным шлюзом.
//
// Платёж переводом при настроенном шлюзе создаётся в статусе pending вместе
// с сессией оплаты. Статус обновляется по запросу клиента (Status) и
// периодически планировщиком (SyncPending).
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/lms/internal/lib/sl"
	"github.com/magabrotheeeer/lms/internal/models"
	"github.com/magabrotheeeer/lms/internal/policy"
)

// ErrGatewayDisabled платёжный шлюз не настроен.
var ErrGatewayDisabled = errors.New("payment gateway is not configured")

// syncBatch сколько ожидающих платежей проверяется за один запуск синхронизации.
const syncBatch = 100

// Repository определяет методы хранилища платежей.
type Repository interface {
	CreatePayment(ctx context.Context, p *models.Payment) (*models.Payment, error)
	GetPayment(ctx context.Context, id int64) (*models.Payment, error)
	GetPaymentBySession(ctx context.Context, sessionID string) (*models.Payment, error)
	ListPayments(ctx context.Context, f models.PaymentFilter, page models.Page) ([]*models.Payment, int, error)
	UpdatePayment(ctx context.Context, p *models.Payment) error
	UpdatePaymentStatus(ctx context.Context, id int64, status string) error
	DeletePayment(ctx context.Context, id int64) error
	ListPendingPayments(ctx context.Context, before time.Time, limit int) ([]*models.Payment, error)
}

// Gateway внешний платёжный шлюз.
type Gateway interface {
	CreateCheckout(ctx context.Context, amount decimal.Decimal, name string) (*models.CheckoutSession, error)
	GetSession(ctx context.Context, sessionID string) (*models.CheckoutSession, error)
}

// Service реализует операции над платежами.
type Service struct {
	repo    Repository
	gateway Gateway
	log     *slog.Logger
	now     func() time.Time
}

// New создает Service. gateway может быть nil, тогда переводы сразу считаются оплаченными.
func New(repo Repository, gateway Gateway, log *slog.Logger) *Service {
	return &Service{repo: repo, gateway: gateway, log: log, now: time.Now}
}

// List возвращает платежи по фильтру. Не модератор видит только свои.
func (s *Service) List(ctx context.Context, actor policy.Actor, f models.PaymentFilter, page models.Page) (*models.PageResult[*models.Payment], error) {
	const op = "payment.List"
	f.UserID = policy.ListScope(actor)
	if err := policy.Check(actor, policy.OpList, policy.Collection{OwnerID: f.UserID}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	items, total, err := s.repo.ListPayments(ctx, f, page)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.PageResult[*models.Payment]{Count: total, Results: items}, nil
}

// Get возвращает платёж.
func (s *Service) Get(ctx context.Context, actor policy.Actor, id int64) (*models.Payment, error) {
	const op = "payment.Get"
	p, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := policy.Check(actor, policy.OpRetrieve, p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// Create создаёт платёж от имени actor.
func (s *Service) Create(ctx context.Context, actor policy.Actor, req models.PaymentRequest) (*models.Payment, error) {
	const op = "payment.Create"
	if err := policy.Check(actor, policy.OpCreate, nil); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%s: amount must be positive: %w", op, models.ErrValidation)
	}

	p := &models.Payment{UserID: actor.ID, Status: models.PaymentStatusPaid}
	p.Apply(req.Update())

	if p.Method == models.PaymentTransfer && s.gateway != nil {
		session, err := s.gateway.CreateCheckout(ctx, p.Amount, checkoutName(p))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		p.SessionID = &session.ID
		p.PaymentURL = &session.URL
		p.Status = models.PaymentStatusPending
	}

	created, err := s.repo.CreatePayment(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("payment created",
		slog.Int64("id", created.ID),
		slog.Int64("user_id", actor.ID),
		slog.String("method", string(created.Method)),
		slog.String("status", created.Status))
	return created, nil
}

func checkoutName(p *models.Payment) string {
	switch {
	case p.CourseID != nil:
		return fmt.Sprintf("Оплата курса %d", *p.CourseID)
	case p.LessonID != nil:
		return fmt.Sprintf("Оплата урока %d", *p.LessonID)
	default:
		return "Оплата обучения"
	}
}

// Update изменяет платёж. Сессия оплаты и статус не меняются.
func (s *Service) Update(ctx context.Context, actor policy.Actor, id int64, upd models.PaymentUpdate, operation policy.Operation) (*models.Payment, error) {
	const op = "payment.Update"
	p, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := policy.Check(actor, operation, p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if upd.Amount != nil && !upd.Amount.IsPositive() {
		return nil, fmt.Errorf("%s: amount must be positive: %w", op, models.ErrValidation)
	}

	p.Apply(upd)
	if err := s.repo.UpdatePayment(ctx, p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// Delete удаляет платёж. Разрешено только владельцу.
func (s *Service) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	const op = "payment.Delete"
	p, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := policy.Check(actor, policy.OpDestroy, p); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.DeletePayment(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Status запрашивает у шлюза состояние сессии оплаты и сохраняет новый статус платежа.
func (s *Service) Status(ctx context.Context, actor policy.Actor, sessionID string) (*models.CheckoutSession, error) {
	const op = "payment.Status"
	if s.gateway == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrGatewayDisabled)
	}
	p, err := s.repo.GetPaymentBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := policy.Check(actor, policy.OpRetrieve, p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	session, err := s.gateway.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.apply(ctx, p, session); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return session, nil
}

// SyncPending обновляет статусы ожидающих платежей. Возвращает число изменённых.
// Ошибка по одному платежу не прерывает обработку остальных.
func (s *Service) SyncPending(ctx context.Context) (int, error) {
	const op = "payment.SyncPending"
	if s.gateway == nil {
		return 0, nil
	}
	pending, err := s.repo.ListPendingPayments(ctx, s.now(), syncBatch)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	changed := 0
	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return changed, fmt.Errorf("%s: %w", op, err)
		}
		session, err := s.gateway.GetSession(ctx, *p.SessionID)
		if err != nil {
			s.log.Warn("failed to fetch checkout session",
				slog.Int64("payment_id", p.ID), sl.Err(err))
			continue
		}
		before := p.Status
		if err := s.apply(ctx, p, session); err != nil {
			s.log.Error("failed to update payment status",
				slog.Int64("payment_id", p.ID), sl.Err(err))
			continue
		}
		if p.Status != before {
			changed++
		}
	}
	s.log.Info("pending payments synced", slog.Int("checked", len(pending)), slog.Int("changed", changed))
	return changed, nil
}

func (s *Service) apply(ctx context.Context, p *models.Payment, session *models.CheckoutSession) error {
	status := StatusFromSession(session)
	if status == p.Status {
		return nil
	}
	if err := s.repo.UpdatePaymentStatus(ctx, p.ID, status); err != nil {
		return err
	}
	p.Status = status
	return nil
}

// StatusFromSession переводит состояние сессии шлюза в статус платежа.
func StatusFromSession(session *models.CheckoutSession) string {
	switch {
	case session.PaymentStatus == "paid" || session.PaymentStatus == "no_payment_required":
		return models.PaymentStatusPaid
	case session.Status == "expired":
		return models.PaymentStatusExpired
	default:
		return models.PaymentStatusPending
	}
}
