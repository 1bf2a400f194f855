package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/lms/internal/models"
)

const courseColumns = `id, title, description, preview, owner_id, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanCourse(row scanner) (*models.Course, error) {
	var c models.Course
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Preview, &c.OwnerID, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Lessons = []*models.Lesson{}
	return &c, nil
}

// CreateCourse сохраняет курс и возвращает его с присвоенным ID.
func (s *Storage) CreateCourse(ctx context.Context, c *models.Course) (*models.Course, error) {
	const op = "storage.CreateCourse"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO courses (title, description, preview, owner_id)
			  VALUES ($1, $2, $3, $4)
			  RETURNING ` + courseColumns
	created, err := scanCourse(s.DB.QueryRowContext(ctx, query, c.Title, c.Description, c.Preview, c.OwnerID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return created, nil
}

// GetCourse возвращает курс вместе с его уроками.
func (s *Storage) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	const op = "storage.GetCourse"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	c, err := scanCourse(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	if err := s.attachLessons(ctx, []*models.Course{c}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// ListCourses возвращает страницу курсов и общее количество.
// ownerID nil означает курсы всех владельцев.
func (s *Storage) ListCourses(ctx context.Context, ownerID *int64, page models.Page) ([]*models.Course, int, error) {
	const op = "storage.ListCourses"
	if err := ctxDone(ctx); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	var total int
	if err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM courses WHERE $1::BIGINT IS NULL OR owner_id = $1`, ownerID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT ` + courseColumns + `
			  FROM courses
			  WHERE $1::BIGINT IS NULL OR owner_id = $1
			  ORDER BY id
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, ownerID, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make([]*models.Course, 0, page.Limit)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.attachLessons(ctx, result); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, total, nil
}

// attachLessons загружает уроки для списка курсов одним запросом.
func (s *Storage) attachLessons(ctx context.Context, courses []*models.Course) error {
	if len(courses) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(courses))
	byID := make(map[int64]*models.Course, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
		byID[c.ID] = c
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+lessonColumns+` FROM lessons WHERE course_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return err
		}
		if c, ok := byID[*l.CourseID]; ok {
			c.Lessons = append(c.Lessons, l)
			c.LessonsCount++
		}
	}
	return rows.Err()
}

// UpdateCourse изменяет курс под блокировкой строки.
//
// mutate получает текущее состояние курса и может вернуть ошибку, тогда
// транзакция откатывается. После изменения в той же транзакции читаются
// email подписчиков, поэтому набор получателей соответствует моменту записи.
func (s *Storage) UpdateCourse(ctx context.Context, id int64, mutate func(*models.Course) error) (*models.Course, []string, error) {
	const op = "storage.UpdateCourse"
	if err := ctxDone(ctx); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		course *models.Course
		emails []string
	)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		c, err := scanCourse(tx.QueryRowContext(ctx,
			`SELECT `+courseColumns+` FROM courses WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return mapError(err)
		}
		if err := mutate(c); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE courses SET title = $1, description = $2, preview = $3, updated_at = $4 WHERE id = $5`,
			c.Title, c.Description, c.Preview, c.UpdatedAt, c.ID)
		if err != nil {
			return mapError(err)
		}

		emails, err = subscriberEmails(ctx, tx, c.ID)
		if err != nil {
			return err
		}
		course = c
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.attachLessons(ctx, []*models.Course{course}); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return course, emails, nil
}

// DeleteCourse удаляет курс. Уроки курса остаются без курса, подписки удаляются.
func (s *Storage) DeleteCourse(ctx context.Context, id int64) error {
	const op = "storage.DeleteCourse"
	if err := ctxDone(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
