package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
//
// Subject стандартных claims содержит uid пользователя.
type CustomClaims struct {
	Username             string `json:"username"`   // Имя пользователя (для логов)
	TokenType            string `json:"token_type"` // access или refresh
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (Subject, ExpiresAt, IssuedAt и пр.)
}

// GenerateAccessToken создает access токен с subject = userUID,
// подписывая его секретным ключом. Время жизни определяется accessTTL.
func (j *MakerImpl) GenerateAccessToken(userUID, username string) (string, error) {
	return j.generate(userUID, username, TokenTypeAccess, j.accessTTL)
}

// GenerateRefreshToken создает refresh токен с subject = userUID.
// Время жизни определяется refreshTTL.
func (j *MakerImpl) GenerateRefreshToken(userUID, username string) (string, error) {
	return j.generate(userUID, username, TokenTypeRefresh, j.refreshTTL)
}

func (j *MakerImpl) generate(userUID, username, tokenType string, ttl time.Duration) (string, error) {
	const op = "jwt.generate"
	claims := CustomClaims{
		Username:  username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userUID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	if j.keyID != "" {
		token.Header["kid"] = j.keyID
	}
	signed, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseToken парсит JWT токен, проверяет его подпись и срок жизни,
// возвращает CustomClaims с данными, если токен корректен.
//
// Причина отказа различима через errors.Is: ErrExpiredToken,
// ErrInvalidSignature либо ErrMalformedToken.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%s: %w", op, ErrExpiredToken)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidSignature)
		default:
			return nil, fmt.Errorf("%s: %w", op, ErrMalformedToken)
		}
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrMalformedToken)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMalformedToken)
	}
	return claims, nil
}
