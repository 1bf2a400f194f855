// Package jwt реализует генерацию и парсинг JWT токенов с пользовательскими claim полями.
//
// Maker выпускает пару токенов: короткоживущий access и долгоживущий refresh.
// Тип токена хранится в claims, поэтому refresh нельзя использовать вместо access.
package jwt

import (
	"time"
)

// Типы токенов.
const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateToken выпускает access-токен с идентификатором, email и группами пользователя.
	GenerateToken(userID int64, email string, groups []string) (string, error)
	// GenerateRefreshToken выпускает refresh-токен для пользователя.
	GenerateRefreshToken(userID int64, email string, groups []string) (string, error)
	// ParseToken разбирает токен указанного типа и возвращает claims.
	ParseToken(tokenStr, tokenType string) (*CustomClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токенов (TTL).
type MakerImpl struct {
	secretKey  string        // Секретный ключ для подписи токенов.
	tokenTTL   time.Duration // Время жизни access-токена.
	refreshTTL time.Duration // Время жизни refresh-токена.
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl, refreshTTL time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey:  secretKey,
		tokenTTL:   ttl,
		refreshTTL: refreshTTL,
	}
}
