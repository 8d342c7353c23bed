// Package create реализует HTTP-обработчик для создания записей потребления.
//
// Handler принимает JSON-запрос с данными записи, валидирует их, извлекает
// uid пользователя из контекста и вызывает бизнес-логику создания записи.
// Владелец записи определяется только токеном: поле владельца в теле
// запроса не принимается.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/consumption-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/consumption-tracker/internal/http/response"
	"github.com/magabrotheeeer/consumption-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/consumption-tracker/internal/models"
	consumptionservice "github.com/magabrotheeeer/consumption-tracker/internal/services/consumption"
)

// Service описывает интерфейс бизнес-логики создания записи потребления.
type Service interface {
	Create(ctx context.Context, userUID string, req models.DummyConsumption) (*models.Consumption, error)
}

// Handler управляет HTTP-запросами на создание записей потребления.
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
// @Summary Создать запись потребления
// @Description Создает новую запись потребления для текущего пользователя.
// @Tags Consumption
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyConsumption true "Данные новой записи"
// @Success 201 {object} response.Response "Созданная запись"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /consumption [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.consumption.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyConsumption
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(response.CodeValidationError, "invalid request body"))
		return
	}
	log.Info("request body decoded", slog.String("type", req.Type))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error(response.CodeMissingToken, "unauthorized"))
		return
	}

	created, err := h.service.Create(r.Context(), userUID, req)
	if err != nil {
		if field, msg, ok := validationDetail(err); ok {
			log.Error("business validation failed", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ErrorWithDetails(response.CodeValidationError,
				"request validation failed", map[string]string{field: msg}))
			return
		}
		log.Error("failed to create consumption entry", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error(response.CodeInternalError, "could not create consumption entry"))
		return
	}

	log.Info("created consumption entry", slog.Int64("id", created.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(created))
}

func validationDetail(err error) (field, msg string, ok bool) {
	switch {
	case errors.Is(err, consumptionservice.ErrInvalidDate):
		return "date", "date must be in YYYY-MM-DD or RFC3339 format", true
	case errors.Is(err, consumptionservice.ErrFutureDate):
		return "date", "date cannot be in the future", true
	case errors.Is(err, consumptionservice.ErrInvalidValue):
		return "value", "value must be positive", true
	case errors.Is(err, consumptionservice.ErrInvalidType):
		return "type", "type must be one of: electricity, water, gas", true
	case errors.Is(err, consumptionservice.ErrNotesTooLong):
		return "notes", "notes must not exceed 500 characters", true
	}
	return "", "", false
}
