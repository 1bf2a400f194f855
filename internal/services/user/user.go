// Package user содержит операции над профилями пользователей.
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/lms/internal/models"
	"github.com/magabrotheeeer/lms/internal/policy"
)

// profilePayments сколько последних платежей показывается в профиле.
const profilePayments = 100

// Repository определяет методы хранилища пользователей.
type Repository interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context, search string, onlyID *int64, page models.Page) ([]*models.User, int, error)
	UpdateUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id int64) error
}

// PaymentLister возвращает платежи пользователя для профиля.
type PaymentLister interface {
	ListPayments(ctx context.Context, f models.PaymentFilter, page models.Page) ([]*models.Payment, int, error)
}

// Service реализует операции над профилями.
type Service struct {
	repo     Repository
	payments PaymentLister
	log      *slog.Logger
}

// New создает Service.
func New(repo Repository, payments PaymentLister, log *slog.Logger) *Service {
	return &Service{repo: repo, payments: payments, log: log}
}

// List ищет пользователей по подстроке email. Не модератор видит только себя.
func (s *Service) List(ctx context.Context, actor policy.Actor, search string, page models.Page) (*models.PageResult[*models.User], error) {
	const op = "user.List"
	scope := policy.ListScope(actor)
	if err := policy.Check(actor, policy.OpList, policy.Collection{OwnerID: scope}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	items, total, err := s.repo.ListUsers(ctx, search, scope, page)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.PageResult[*models.User]{Count: total, Results: items}, nil
}

// Get возвращает профиль вместе с платежами.
func (s *Service) Get(ctx context.Context, actor policy.Actor, id int64) (*models.User, error) {
	const op = "user.Get"
	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := policy.Check(actor, policy.OpRetrieve, u); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	payments, _, err := s.payments.ListPayments(ctx,
		models.PaymentFilter{UserID: &u.ID, OrderDesc: true},
		models.Page{Limit: profilePayments})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u.Payments = payments
	return u, nil
}

// Update изменяет поля профиля. Email, пароль и группы здесь не меняются.
func (s *Service) Update(ctx context.Context, actor policy.Actor, id int64, upd models.ProfileUpdate, operation policy.Operation) (*models.User, error) {
	const op = "user.Update"
	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := policy.Check(actor, operation, u); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u.Apply(upd)
	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// Delete удаляет пользователя. Удалить можно только себя.
func (s *Service) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	const op = "user.Delete"
	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := policy.Check(actor, policy.OpDestroy, u); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user deleted", slog.Int64("id", id))
	return nil
}
