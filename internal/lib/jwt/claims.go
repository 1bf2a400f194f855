package jwt

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
type CustomClaims struct {
	UserID               int64    `json:"user_id"`    // Идентификатор пользователя
	Email                string   `json:"email"`      // Email пользователя
	Groups               []string `json:"groups"`     // Группы пользователя
	TokenType            string   `json:"token_type"` // access или refresh
	jwt.RegisteredClaims          // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}

// GenerateToken создает access-токен, подписывая его секретным ключом.
func (j *MakerImpl) GenerateToken(userID int64, email string, groups []string) (string, error) {
	return j.generate(userID, email, groups, TokenAccess, j.tokenTTL)
}

// GenerateRefreshToken создает refresh-токен.
func (j *MakerImpl) GenerateRefreshToken(userID int64, email string, groups []string) (string, error) {
	return j.generate(userID, email, groups, TokenRefresh, j.refreshTTL)
}

func (j *MakerImpl) generate(userID int64, email string, groups []string, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := CustomClaims{
		UserID:    userID,
		Email:     email,
		Groups:    groups,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ParseToken парсит JWT токен, проверяет подпись, срок действия и тип,
// возвращает CustomClaims, если токен корректен.
func (j *MakerImpl) ParseToken(tokenStr, tokenType string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	if claims.TokenType != tokenType {
		return nil, fmt.Errorf("%s: unexpected token type %q", op, claims.TokenType)
	}
	return claims, nil
}
