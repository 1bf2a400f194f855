package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/lms/internal/models"
)

const lessonColumns = `id, title, description, preview, video_link, course_id, owner_id`

func scanLesson(row scanner) (*models.Lesson, error) {
	var l models.Lesson
	if err := row.Scan(&l.ID, &l.Title, &l.Description, &l.Preview, &l.VideoLink, &l.CourseID, &l.OwnerID); err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateLesson сохраняет урок. Несуществующий курс даёт ErrValidation.
func (s *Storage) CreateLesson(ctx context.Context, l *models.Lesson) (*models.Lesson, error) {
	const op = "storage.CreateLesson"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO lessons (title, description, preview, video_link, course_id, owner_id)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING ` + lessonColumns
	created, err := scanLesson(s.DB.QueryRowContext(ctx, query,
		l.Title, l.Description, l.Preview, l.VideoLink, l.CourseID, l.OwnerID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return created, nil
}

// GetLesson возвращает урок по ID.
func (s *Storage) GetLesson(ctx context.Context, id int64) (*models.Lesson, error) {
	const op = "storage.GetLesson"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	l, err := scanLesson(s.DB.QueryRowContext(ctx, `SELECT `+lessonColumns+` FROM lessons WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return l, nil
}

// ListLessons возвращает страницу уроков и общее количество.
func (s *Storage) ListLessons(ctx context.Context, ownerID *int64, page models.Page) ([]*models.Lesson, int, error) {
	const op = "storage.ListLessons"
	if err := ctxDone(ctx); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	var total int
	if err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM lessons WHERE $1::BIGINT IS NULL OR owner_id = $1`, ownerID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+lessonColumns+`
			  FROM lessons
			  WHERE $1::BIGINT IS NULL OR owner_id = $1
			  ORDER BY id
			  LIMIT $2 OFFSET $3`, ownerID, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make([]*models.Lesson, 0, page.Limit)
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, total, nil
}

// UpdateLesson сохраняет изменённые поля урока.
func (s *Storage) UpdateLesson(ctx context.Context, l *models.Lesson) error {
	const op = "storage.UpdateLesson"
	if err := ctxDone(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE lessons
		 SET title = $1, description = $2, preview = $3, video_link = $4, course_id = $5
		 WHERE id = $6`,
		l.Title, l.Description, l.Preview, l.VideoLink, l.CourseID, l.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteLesson удаляет урок.
func (s *Storage) DeleteLesson(ctx context.Context, id int64) error {
	const op = "storage.DeleteLesson"
	if err := ctxDone(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
