// Package course содержит бизнес-логику курсов: права доступа, кеширование
// и защиту от частых изменений с уведомлением подписчиков.
package course

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/lms/internal/lib/sl"
	"github.com/magabrotheeeer/lms/internal/models"
	"github.com/magabrotheeeer/lms/internal/policy"
)

// Repository определяет методы хранилища курсов.
type Repository interface {
	CreateCourse(ctx context.Context, c *models.Course) (*models.Course, error)
	GetCourse(ctx context.Context, id int64) (*models.Course, error)
	ListCourses(ctx context.Context, ownerID *int64, page models.Page) ([]*models.Course, int, error)
	// UpdateCourse атомарно читает курс под блокировкой, вызывает mutate и сохраняет результат.
	// Возвращает email подписчиков на момент изменения.
	UpdateCourse(ctx context.Context, id int64, mutate func(*models.Course) error) (*models.Course, []string, error)
	DeleteCourse(ctx context.Context, id int64) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Notifier принимает уведомление для одного подписчика.
type Notifier interface {
	Submit(ctx context.Context, courseID int64, email string) error
}

// Service реализует операции над курсами.
type Service struct {
	repo     Repository
	cache    Cache
	notifier Notifier
	log      *slog.Logger
	cooldown time.Duration
	cacheTTL time.Duration
	now      func() time.Time
}

// New создает Service. cooldown минимальный интервал между изменениями курса.
func New(repo Repository, cache Cache, notifier Notifier, log *slog.Logger, cooldown, cacheTTL time.Duration) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		notifier: notifier,
		log:      log,
		cooldown: cooldown,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// CacheKey ключ курса в кеше.
func CacheKey(id int64) string {
	return fmt.Sprintf("course:%d", id)
}

// List возвращает курсы, доступные пользователю: модератору все, остальным свои.
func (s *Service) List(ctx context.Context, actor policy.Actor, page models.Page) (*models.PageResult[*models.Course], error) {
	const op = "course.List"
	scope := policy.ListScope(actor)
	if err := policy.Check(actor, policy.OpList, policy.Collection{OwnerID: scope}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	items, total, err := s.repo.ListCourses(ctx, scope, page)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.PageResult[*models.Course]{Count: total, Results: items}, nil
}

// Get возвращает курс с уроками, используя кеш.
func (s *Service) Get(ctx context.Context, actor policy.Actor, id int64) (*models.Course, error) {
	const op = "course.Get"
	c, err := s.cached(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := policy.Check(actor, policy.OpRetrieve, c); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

func (s *Service) cached(ctx context.Context, id int64) (*models.Course, error) {
	key := CacheKey(id)
	var c models.Course
	found, err := s.cache.Get(ctx, key, &c)
	if err != nil {
		s.log.Warn("failed to read course from cache", slog.String("key", key), sl.Err(err))
	}
	if found {
		return &c, nil
	}

	fresh, err := s.repo.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, fresh, s.cacheTTL); err != nil {
		s.log.Warn("failed to cache course", slog.String("key", key), sl.Err(err))
	}
	return fresh, nil
}

// Create создаёт курс, владельцем становится actor.
func (s *Service) Create(ctx context.Context, actor policy.Actor, req models.CourseRequest) (*models.Course, error) {
	const op = "course.Create"
	if err := policy.Check(actor, policy.OpCreate, nil); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c := &models.Course{OwnerID: &actor.ID}
	c.Apply(req.Update())
	created, err := s.repo.CreateCourse(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("course created", slog.Int64("id", created.ID), slog.Int64("owner", actor.ID))
	return created, nil
}

// Update изменяет курс. Полное (OpUpdate) и частичное (OpPartialUpdate) обновления
// проходят одинаковые проверки: курс существует, пользователь имеет право на
// изменение, с прошлого изменения прошло не меньше cooldown. При успехе
// updated_at сдвигается на текущее время, а каждому подписчику уходит одно уведомление.
func (s *Service) Update(ctx context.Context, actor policy.Actor, id int64, upd models.CourseUpdate, operation policy.Operation) (*models.Course, error) {
	const op = "course.Update"
	current, err := s.repo.GetCourse(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := policy.Check(actor, operation, current); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated, emails, err := s.repo.UpdateCourse(ctx, id, func(c *models.Course) error {
		now := s.now()
		if c.RecentlyUpdated(now, s.cooldown) {
			return models.ErrCourseRecentlyUpdated
		}
		c.UpdatedAt = &now
		c.Apply(upd)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, id)
	s.notify(ctx, id, emails)
	return updated, nil
}

// notify отправляет уведомления подписчикам. Ошибка постановки в очередь
// не отменяет уже сохранённое изменение курса.
func (s *Service) notify(ctx context.Context, courseID int64, emails []string) {
	failed := 0
	for _, email := range emails {
		if err := s.notifier.Submit(ctx, courseID, email); err != nil {
			failed++
			s.log.Error("failed to submit course update notification",
				slog.Int64("course_id", courseID), slog.String("email", email), sl.Err(err))
		}
	}
	s.log.Info("course updated, subscribers notified",
		slog.Int64("course_id", courseID),
		slog.Int("subscribers", len(emails)),
		slog.Int("failed", failed))
}

// Delete удаляет курс. Разрешено только владельцу.
func (s *Service) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	const op = "course.Delete"
	c, err := s.repo.GetCourse(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := policy.Check(actor, policy.OpDestroy, c); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.DeleteCourse(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, id)
	s.log.Info("course deleted", slog.Int64("id", id))
	return nil
}

func (s *Service) invalidate(ctx context.Context, id int64) {
	if err := s.cache.Invalidate(ctx, CacheKey(id)); err != nil {
		s.log.Warn("failed to remove course from cache", slog.String("key", CacheKey(id)), sl.Err(err))
	}
}
