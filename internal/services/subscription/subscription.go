// Package subscription переключает подписку пользователя на обновления курса.
package subscription

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/lms/internal/models"
	"github.com/magabrotheeeer/lms/internal/policy"
)

// Repository определяет методы хранилища подписок.
type Repository interface {
	// ToggleSubscription атомарно удаляет подписку, если она есть, иначе создаёт её.
	ToggleSubscription(ctx context.Context, userID, courseID int64) (models.ToggleResult, error)
}

// Service реализует переключение подписки.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Toggle подписывает пользователя на курс или отписывает его.
// Несуществующий курс даёт models.ErrNotFound. Уведомления не отправляются.
func (s *Service) Toggle(ctx context.Context, actor policy.Actor, courseID int64) (models.ToggleResult, error) {
	const op = "subscription.Toggle"
	if !actor.Authenticated {
		return "", fmt.Errorf("%s: %w", op, models.ErrUnauthorized)
	}

	result, err := s.repo.ToggleSubscription(ctx, actor.ID, courseID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.log.Debug("subscription toggled",
		slog.Int64("user_id", actor.ID),
		slog.Int64("course_id", courseID),
		slog.String("result", string(result)))
	return result, nil
}
