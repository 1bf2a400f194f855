package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/lms/internal/models"
)

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// ToggleSubscription удаляет подписку пользователя на курс, если она есть, иначе создаёт.
//
// Переключения одного пользователя сериализуются блокировкой его строки в users,
// уникальный ключ (user_id, course_id) не даёт появиться второй подписке.
func (s *Storage) ToggleSubscription(ctx context.Context, userID, courseID int64) (models.ToggleResult, error) {
	const op = "storage.ToggleSubscription"
	if err := ctxDone(ctx); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var result models.ToggleResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var lockedID int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&lockedID)
		if err != nil {
			return fmt.Errorf("user %d: %w", userID, mapError(err))
		}

		var courseExists bool
		err = tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM courses WHERE id = $1)`, courseID).Scan(&courseExists)
		if err != nil {
			return err
		}
		if !courseExists {
			return fmt.Errorf("course %d: %w", courseID, models.ErrNotFound)
		}

		var deletedID int64
		err = tx.QueryRowContext(ctx,
			`DELETE FROM subscriptions WHERE user_id = $1 AND course_id = $2 RETURNING id`,
			userID, courseID).Scan(&deletedID)
		switch {
		case err == nil:
			result = models.Unsubscribed
			return nil
		case !errors.Is(err, sql.ErrNoRows):
			return err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO subscriptions (user_id, course_id) VALUES ($1, $2)
			 ON CONFLICT (user_id, course_id) DO NOTHING`,
			userID, courseID)
		if err != nil {
			return mapError(err)
		}
		result = models.Subscribed
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// IsSubscribed сообщает, подписан ли пользователь на курс.
func (s *Storage) IsSubscribed(ctx context.Context, userID, courseID int64) (bool, error) {
	const op = "storage.IsSubscribed"
	var exists bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM subscriptions WHERE user_id = $1 AND course_id = $2)`,
		userID, courseID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// ListSubscriberEmails возвращает email подписчиков курса.
func (s *Storage) ListSubscriberEmails(ctx context.Context, courseID int64) ([]string, error) {
	const op = "storage.ListSubscriberEmails"
	emails, err := subscriberEmails(ctx, s.DB, courseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return emails, nil
}

func subscriberEmails(ctx context.Context, q querier, courseID int64) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT u.email
		 FROM subscriptions s
		 JOIN users u ON u.id = s.user_id
		 WHERE s.course_id = $1
		 ORDER BY s.id`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	emails := make([]string, 0)
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}
