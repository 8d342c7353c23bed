// Package middlewarectx содержит HTTP middleware: проверку JWT токенов,
// ограничение частоты запросов и сбор метрик.
//
// JWTMiddleware проверяет наличие и валидность access токена в заголовке
// Authorization и в случае успеха добавляет в контекст uid и имя пользователя
// для дальнейшего использования в обработчиках.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	customjwt "github.com/magabrotheeeer/consumption-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/consumption-tracker/internal/http/response"
	"github.com/magabrotheeeer/consumption-tracker/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// UserUID — ключ для uid пользователя в контексте.
	// Единственный источник идентичности арендатора для обработчиков.
	UserUID Key = "user_uid"
	// Username — ключ для имени пользователя в контексте.
	Username Key = "username"
)

// Service описывает интерфейс сервиса для валидации access токена.
type Service interface {
	ValidateAccessToken(ctx context.Context, token string) (*customjwt.CustomClaims, error)
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
//
// Каждый отказ получает различимый машиночитаемый код: отсутствие токена,
// некорректный токен, неверная подпись и истёкший срок различаются в ответе.
func JWTMiddleware(authService Service, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error(response.CodeMissingToken,
					"missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := authService.ValidateAccessToken(r.Context(), tokenStr)
			if err != nil {
				log.Error("token validation failed", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, tokenErrorResponse(err))
				return
			}

			ctx := context.WithValue(r.Context(), UserUID, claims.Subject)
			ctx = context.WithValue(ctx, Username, claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenErrorResponse(err error) response.Response {
	switch {
	case errors.Is(err, customjwt.ErrExpiredToken):
		return response.Error(response.CodeTokenExpired, "token expired")
	case errors.Is(err, customjwt.ErrInvalidSignature):
		return response.Error(response.CodeInvalidSignature, "invalid token signature")
	default:
		return response.Error(response.CodeMalformedToken, "malformed token")
	}
}
