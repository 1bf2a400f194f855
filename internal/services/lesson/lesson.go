// Package lesson содержит бизнес-логику уроков.
package lesson

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/lms/internal/lib/sl"
	"github.com/magabrotheeeer/lms/internal/models"
	"github.com/magabrotheeeer/lms/internal/policy"
	"github.com/magabrotheeeer/lms/internal/services/course"
)

// Repository определяет методы хранилища уроков.
type Repository interface {
	CreateLesson(ctx context.Context, l *models.Lesson) (*models.Lesson, error)
	GetLesson(ctx context.Context, id int64) (*models.Lesson, error)
	ListLessons(ctx context.Context, ownerID *int64, page models.Page) ([]*models.Lesson, int, error)
	UpdateLesson(ctx context.Context, l *models.Lesson) error
	DeleteLesson(ctx context.Context, id int64) error
}

// Invalidator удаляет записи из кеша.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// Service реализует операции над уроками.
type Service struct {
	repo  Repository
	cache Invalidator
	log   *slog.Logger
}

// New создает Service.
func New(repo Repository, cache Invalidator, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

// List возвращает уроки, доступные пользователю.
func (s *Service) List(ctx context.Context, actor policy.Actor, page models.Page) (*models.PageResult[*models.Lesson], error) {
	const op = "lesson.List"
	scope := policy.ListScope(actor)
	if err := policy.Check(actor, policy.OpList, policy.Collection{OwnerID: scope}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	items, total, err := s.repo.ListLessons(ctx, scope, page)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.PageResult[*models.Lesson]{Count: total, Results: items}, nil
}

// Get возвращает урок.
func (s *Service) Get(ctx context.Context, actor policy.Actor, id int64) (*models.Lesson, error) {
	const op = "lesson.Get"
	l, err := s.repo.GetLesson(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := policy.Check(actor, policy.OpRetrieve, l); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return l, nil
}

// Create создаёт урок от имени actor.
func (s *Service) Create(ctx context.Context, actor policy.Actor, req models.LessonRequest) (*models.Lesson, error) {
	const op = "lesson.Create"
	if err := policy.Check(actor, policy.OpCreate, nil); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	l := &models.Lesson{OwnerID: &actor.ID}
	l.Apply(req.Update())
	created, err := s.repo.CreateLesson(ctx, l)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, created.CourseID)
	return created, nil
}

// Update изменяет урок. Кеш затрагивается и для старого, и для нового курса.
func (s *Service) Update(ctx context.Context, actor policy.Actor, id int64, upd models.LessonUpdate, operation policy.Operation) (*models.Lesson, error) {
	const op = "lesson.Update"
	l, err := s.repo.GetLesson(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := policy.Check(actor, operation, l); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	previous := l.CourseID
	l.Apply(upd)
	if err := s.repo.UpdateLesson(ctx, l); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, previous, l.CourseID)
	return l, nil
}

// Delete удаляет урок. Разрешено только владельцу.
func (s *Service) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	const op = "lesson.Delete"
	l, err := s.repo.GetLesson(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := policy.Check(actor, policy.OpDestroy, l); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.DeleteLesson(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, l.CourseID)
	return nil
}

func (s *Service) invalidate(ctx context.Context, courseIDs ...*int64) {
	keys := make([]string, 0, len(courseIDs))
	for _, id := range courseIDs {
		if id == nil {
			continue
		}
		key := course.CacheKey(*id)
		if len(keys) > 0 && keys[0] == key {
			continue
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.log.Warn("failed to remove course from cache", slog.Any("keys", keys), sl.Err(err))
	}
}
