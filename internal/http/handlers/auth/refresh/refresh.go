// Package refresh реализует HTTP-обработчик обновления access токена.
package refresh

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/consumption-tracker/internal/http/response"
	customjwt "github.com/magabrotheeeer/consumption-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/consumption-tracker/internal/lib/sl"
	authservice "github.com/magabrotheeeer/consumption-tracker/internal/services/auth"
)

// Request — входные данные для обновления токена.
type Request struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Service описывает интерфейс бизнес-логики обновления токена.
type Service interface {
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

// Handler управляет HTTP-запросами на обновление access токена.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Обновить access токен
// @Description Выдаёт новый access токен по валидному refresh токену. Деактивация учётной записи отзывает refresh токен.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Refresh токен"
// @Success 200 {object} response.Response "Новый access токен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Токен недействителен или истёк"
// @Failure 403 {object} response.ErrorResponse "Учётная запись деактивирована"
// @Router /auth/refresh [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refresh"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(response.CodeValidationError, "invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	access, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, customjwt.ErrExpiredToken):
			log.Error("refresh token expired")
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error(response.CodeTokenExpired, "token expired"))
		case errors.Is(err, customjwt.ErrInvalidSignature):
			log.Error("invalid refresh token signature")
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error(response.CodeInvalidSignature, "invalid token signature"))
		case errors.Is(err, customjwt.ErrMalformedToken),
			errors.Is(err, authservice.ErrInvalidCredentials):
			log.Error("malformed refresh token")
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error(response.CodeMalformedToken, "malformed token"))
		case errors.Is(err, authservice.ErrInactiveAccount):
			log.Error("inactive account")
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(response.CodeInactiveAccount, "account is inactive"))
		default:
			log.Error("refresh failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(response.CodeInternalError, "failed to refresh token"))
		}
		return
	}

	log.Info("access token refreshed")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"access_token": access,
	}))
}
