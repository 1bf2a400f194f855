// Package auth отвечает за регистрацию, авторизацию и проверку JWT.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/lms/internal/lib/jwt"
	"github.com/magabrotheeeer/lms/internal/lib/password"
	"github.com/magabrotheeeer/lms/internal/lib/sl"
	"github.com/magabrotheeeer/lms/internal/models"
	"github.com/magabrotheeeer/lms/internal/policy"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя. Занятый email даёт models.ErrAlreadyExists.
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

// Service отвечает за регистрацию, авторизацию и валидацию JWT.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
	log      *slog.Logger
	now      func() time.Time
}

// New создает новый экземпляр Service.
func New(users UserRepository, jwtMaker jwt.Maker, log *slog.Logger) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
		log:      log,
		now:      time.Now,
	}
}

// Register создает активного пользователя с хэшированием пароля.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	const op = "auth.Register"
	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user := &models.User{
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hashed,
		IsActive:     true,
	}
	if req.Phone != "" {
		user.Phone = &req.Phone
	}
	if req.City != "" {
		user.City = &req.City
	}

	created, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user registered", slog.Int64("id", created.ID))
	return created, nil
}

// Login проверяет пароль пользователя и выдаёт пару токенов.
// Неизвестный email, неверный пароль и неактивный пользователь дают models.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.TokenPair, error) {
	const op = "auth.Login"
	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}
	if err := password.CompareHash(user.PasswordHash, req.Password); err != nil {
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}

	access, err := s.jwtMaker.GenerateToken(user.ID, user.Email, user.Groups)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	refresh, err := s.jwtMaker.GenerateRefreshToken(user.ID, user.Email, user.Groups)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.users.TouchLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
		s.log.Warn("failed to update last login", slog.Int64("id", user.ID), sl.Err(err))
	}
	return &models.TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh выдаёт новый access-токен по refresh-токену. Группы перечитываются из базы.
func (s *Service) Refresh(ctx context.Context, refresh string) (*models.TokenPair, error) {
	const op = "auth.Refresh"
	claims, err := s.jwtMaker.ParseToken(refresh, jwt.TokenRefresh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrUnauthorized, err)
	}
	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthorized)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthorized)
	}

	access, err := s.jwtMaker.GenerateToken(user.ID, user.Email, user.Groups)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.TokenPair{Access: access}, nil
}

// ValidateToken проверяет access-токен и возвращает пользователя, от имени которого выполняется запрос.
func (s *Service) ValidateToken(_ context.Context, token string) (policy.Actor, error) {
	const op = "auth.ValidateToken"
	claims, err := s.jwtMaker.ParseToken(token, jwt.TokenAccess)
	if err != nil {
		return policy.Actor{}, fmt.Errorf("%s: %w: %w", op, models.ErrUnauthorized, err)
	}
	return policy.Actor{
		ID:            claims.UserID,
		Authenticated: true,
		Groups:        claims.Groups,
	}, nil
}
