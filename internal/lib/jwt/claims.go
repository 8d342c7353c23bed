// Package jwt реализует генерацию и парсинг JWT токенов с пользовательскими claim полями.
//
// Maker определяет интерфейс для создания и проверки пары access/refresh токенов.
// MakerImpl — конкретная реализация с использованием секретного ключа, идентификатора
// ключа (kid) и сроков жизни токенов.
package jwt

import (
	"errors"
	"time"
)

// Типы токенов, зашиваемые в claim token_type.
const (
	// TokenTypeAccess — короткоживущий токен доступа.
	TokenTypeAccess = "access"
	// TokenTypeRefresh — долгоживущий токен для обновления access токена.
	TokenTypeRefresh = "refresh"
)

// Ошибки разбора токена. Middleware и сервисы различают их через errors.Is.
var (
	// ErrMalformedToken — токен структурно некорректен или имеет неверный тип.
	ErrMalformedToken = errors.New("malformed token")
	// ErrInvalidSignature — подпись токена не прошла проверку.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrExpiredToken — срок жизни токена истёк.
	ErrExpiredToken = errors.New("token expired")
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
//
// Subject токена — это uid пользователя, единственный источник идентичности
// арендатора во всей системе.
type Maker interface {
	// GenerateAccessToken создает access токен для пользователя.
	GenerateAccessToken(userUID, username string) (string, error)
	// GenerateRefreshToken создает refresh токен для пользователя.
	GenerateRefreshToken(userUID, username string) (string, error)
	// ParseToken возвращает *CustomClaims, если токен корректен.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа,
// идентификатора ключа и времени жизни токенов.
type MakerImpl struct {
	secretKey  string        // Секретный ключ для подписи токенов.
	keyID      string        // Идентификатор ключа, попадает в заголовок kid.
	accessTTL  time.Duration // Время жизни access токена.
	refreshTTL time.Duration // Время жизни refresh токена.
}

// NewMaker создаёт новый экземпляр MakerImpl.
//
// keyID попадает в заголовок каждого токена и позволяет в будущем
// добавить ротацию ключей без немедленной инвалидации старых токенов.
func NewMaker(secretKey, keyID string, accessTTL, refreshTTL time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey:  secretKey,
		keyID:      keyID,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}
