// Package services содержит логику бизнес-уровня для регистрации,
// аутентификации и обновления токенов.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/magabrotheeeer/consumption-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/consumption-tracker/internal/lib/password"
	"github.com/magabrotheeeer/consumption-tracker/internal/models"
	"github.com/magabrotheeeer/consumption-tracker/internal/storage/repository"
)

// Ошибки бизнес-уровня аутентификации.
var (
	// ErrEmailTaken — email уже зарегистрирован.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUsernameTaken — имя пользователя уже занято.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials — пара email/пароль не подошла. Намеренно
	// не различает "нет такого пользователя" и "неверный пароль".
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInactiveAccount — учётная запись деактивирована.
	ErrInactiveAccount = errors.New("account is inactive")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByEmail возвращает пользователя по email или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByUsername возвращает пользователя по username или ошибку, если не найден.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByUID возвращает пользователя по его UID.
	GetUserByUID(ctx context.Context, userUID string) (*models.User, error)
}

// TokenPair — результат успешного входа: пара токенов и данные пользователя.
type TokenPair struct {
	AccessToken  string             `json:"access_token"`
	RefreshToken string             `json:"refresh_token"`
	User         models.UserSummary `json:"user"`
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает нового пользователя с хэшированием пароля.
// Email и username нормализуются к нижнему регистру до сохранения.
// Занятость email и username проверяется до вставки; гонку между
// проверкой и вставкой закрывают уникальные индексы.
func (s *AuthService) Register(ctx context.Context, email, username, rawPassword string) (*models.UserSummary, error) {
	normEmail := strings.ToLower(strings.TrimSpace(email))
	normUsername := strings.ToLower(strings.TrimSpace(username))

	if _, err := s.users.GetUserByEmail(ctx, normEmail); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}
	if _, err := s.users.GetUserByUsername(ctx, normUsername); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Email:        normEmail,
		Username:     normUsername,
		PasswordHash: hashed,
		IsActive:     true,
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailTaken
		case errors.Is(err, repository.ErrUsernameExists):
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	created, err := s.users.GetUserByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	summary := created.Summary()
	return &summary, nil
}

// Login проверяет пароль пользователя и генерирует пару access/refresh токенов.
//
// Несуществующий email и неверный пароль дают один и тот же ответ,
// чтобы не раскрывать наличие учётной записи.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*TokenPair, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInactiveAccount
	}

	access, err := s.jwtMaker.GenerateAccessToken(user.UID, user.Username)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwtMaker.GenerateRefreshToken(user.UID, user.Username)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user.Summary(),
	}, nil
}

// Refresh выдаёт новый access токен по валидному refresh токену.
// Статус учётной записи перепроверяется: деактивация отзывает refresh токен.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtMaker.ParseToken(refreshToken)
	if err != nil {
		return "", err
	}
	if claims.TokenType != jwt.TokenTypeRefresh {
		return "", jwt.ErrMalformedToken
	}

	user, err := s.users.GetUserByUID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !user.IsActive {
		return "", ErrInactiveAccount
	}

	return s.jwtMaker.GenerateAccessToken(user.UID, user.Username)
}

// ValidateAccessToken проверяет access токен и возвращает его claims.
// Refresh токен на месте access токена отклоняется как некорректный.
func (s *AuthService) ValidateAccessToken(_ context.Context, token string) (*jwt.CustomClaims, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != jwt.TokenTypeAccess {
		return nil, jwt.ErrMalformedToken
	}
	return claims, nil
}
