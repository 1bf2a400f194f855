package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/lms/internal/models"
)

const userColumns = `u.id, u.email, u.password_hash, u.first_name, u.last_name, u.phone, u.city,
	u.avatar, u.is_active, u.last_login,
	COALESCE((SELECT string_agg(g.group_name, ',' ORDER BY g.group_name)
	          FROM user_groups g WHERE g.user_id = u.id), '')`

func scanUser(row scanner) (*models.User, error) {
	var (
		u      models.User
		groups string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Phone, &u.City,
		&u.Avatar, &u.IsActive, &u.LastLogin, &groups); err != nil {
		return nil, err
	}
	u.Groups = []string{}
	if groups != "" {
		u.Groups = strings.Split(groups, ",")
	}
	return &u, nil
}

// CreateUser сохраняет пользователя. Занятый email даёт ErrAlreadyExists.
func (s *Storage) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	const op = "storage.CreateUser"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var id int64
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, first_name, last_name, phone, city, avatar, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Phone, user.City,
		user.Avatar, user.IsActive).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	created, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// GetUserByID возвращает пользователя с его группами.
func (s *Storage) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.GetUserByID"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u, err := scanUser(s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по email без учёта регистра.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u, err := scanUser(s.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users u WHERE lower(u.email) = lower($1)`, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, nil
}

// ListUsers возвращает страницу пользователей. search ищет подстроку в email,
// onlyID ограничивает выборку одним пользователем.
func (s *Storage) ListUsers(ctx context.Context, search string, onlyID *int64, page models.Page) ([]*models.User, int, error) {
	const op = "storage.ListUsers"
	if err := ctxDone(ctx); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	const where = `WHERE ($1 = '' OR u.email ILIKE '%' || $1 || '%')
			  AND ($2::BIGINT IS NULL OR u.id = $2)`

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users u `+where, search, onlyID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users u `+where+`
			  ORDER BY u.id
			  LIMIT $3 OFFSET $4`, search, onlyID, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make([]*models.User, 0, page.Limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, total, nil
}

// UpdateUser сохраняет поля профиля.
func (s *Storage) UpdateUser(ctx context.Context, u *models.User) error {
	const op = "storage.UpdateUser"
	if err := ctxDone(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE users
		 SET first_name = $1, last_name = $2, phone = $3, city = $4, avatar = $5
		 WHERE id = $6`,
		u.FirstName, u.LastName, u.Phone, u.City, u.Avatar, u.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteUser удаляет пользователя вместе с его курсами, уроками, подписками и платежами.
func (s *Storage) DeleteUser(ctx context.Context, id int64) error {
	const op = "storage.DeleteUser"
	if err := ctxDone(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// TouchLastLogin записывает время последнего входа.
func (s *Storage) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	const op = "storage.TouchLastLogin"
	res, err := s.DB.ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// AddUserToGroup добавляет пользователя в группу. Повторное добавление ничего не меняет.
func (s *Storage) AddUserToGroup(ctx context.Context, email, group string) error {
	const op = "storage.AddUserToGroup"
	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO user_groups (user_id, group_name)
		 SELECT id, $2 FROM users WHERE lower(email) = lower($1)
		 ON CONFLICT DO NOTHING`, email, group)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		if _, err := s.GetUserByEmail(ctx, email); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}
