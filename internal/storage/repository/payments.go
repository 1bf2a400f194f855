package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/lms/internal/models"
)

const paymentColumns = `id, user_id, course_id, lesson_id, amount, method, paid_at, session_id, payment_url, status`

func scanPayment(row scanner) (*models.Payment, error) {
	var p models.Payment
	if err := row.Scan(&p.ID, &p.UserID, &p.CourseID, &p.LessonID, &p.Amount, &p.Method,
		&p.PaidAt, &p.SessionID, &p.PaymentURL, &p.Status); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePayment сохраняет платёж.
func (s *Storage) CreatePayment(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	const op = "storage.CreatePayment"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := scanPayment(s.DB.QueryRowContext(ctx,
		`INSERT INTO payments (user_id, course_id, lesson_id, amount, method, session_id, payment_url, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+paymentColumns,
		p.UserID, p.CourseID, p.LessonID, p.Amount, p.Method, p.SessionID, p.PaymentURL, p.Status))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return created, nil
}

// GetPayment возвращает платёж по ID.
func (s *Storage) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	const op = "storage.GetPayment"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p, err := scanPayment(s.DB.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return p, nil
}

// GetPaymentBySession возвращает платёж по идентификатору сессии оплаты.
func (s *Storage) GetPaymentBySession(ctx context.Context, sessionID string) (*models.Payment, error) {
	const op = "storage.GetPaymentBySession"
	p, err := scanPayment(s.DB.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE session_id = $1`, sessionID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return p, nil
}

// ListPayments возвращает страницу платежей по фильтру, упорядоченную по дате платежа.
func (s *Storage) ListPayments(ctx context.Context, f models.PaymentFilter, page models.Page) ([]*models.Payment, int, error) {
	const op = "storage.ListPayments"
	if err := ctxDone(ctx); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	const where = `WHERE ($1::BIGINT IS NULL OR user_id = $1)
			  AND ($2::BIGINT IS NULL OR course_id = $2)
			  AND ($3::BIGINT IS NULL OR lesson_id = $3)
			  AND ($4::TEXT IS NULL OR method = $4)`
	order := "paid_at ASC, id ASC"
	if f.OrderDesc {
		order = "paid_at DESC, id DESC"
	}
	var method *string
	if f.Method != nil {
		m := string(*f.Method)
		method = &m
	}
	args := []any{f.UserID, f.CourseID, f.LessonID, method}

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM payments `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+paymentColumns+` FROM payments `+where+`
			  ORDER BY `+order+`
			  LIMIT $5 OFFSET $6`, append(args, page.Limit, page.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make([]*models.Payment, 0, page.Limit)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, total, nil
}

// UpdatePayment сохраняет изменённые поля платежа.
func (s *Storage) UpdatePayment(ctx context.Context, p *models.Payment) error {
	const op = "storage.UpdatePayment"
	if err := ctxDone(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE payments
		 SET course_id = $1, lesson_id = $2, amount = $3, method = $4,
		     session_id = $5, payment_url = $6, status = $7
		 WHERE id = $8`,
		p.CourseID, p.LessonID, p.Amount, p.Method, p.SessionID, p.PaymentURL, p.Status, p.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdatePaymentStatus меняет статус платежа.
func (s *Storage) UpdatePaymentStatus(ctx context.Context, id int64, status string) error {
	const op = "storage.UpdatePaymentStatus"
	res, err := s.DB.ExecContext(ctx, `UPDATE payments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeletePayment удаляет платёж.
func (s *Storage) DeletePayment(ctx context.Context, id int64) error {
	const op = "storage.DeletePayment"
	if err := ctxDone(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListPendingPayments возвращает ожидающие оплаты с сессией, созданные не позже before.
func (s *Storage) ListPendingPayments(ctx context.Context, before time.Time, limit int) ([]*models.Payment, error) {
	const op = "storage.ListPendingPayments"
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+paymentColumns+`
		 FROM payments
		 WHERE status = $1 AND session_id IS NOT NULL AND paid_at <= $2
		 ORDER BY paid_at
		 LIMIT $3`, models.PaymentStatusPending, before, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
