// Package list реализует HTTP-обработчик пагинированного списка записей потребления.
package list

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/consumption-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/consumption-tracker/internal/http/response"
	"github.com/magabrotheeeer/consumption-tracker/internal/lib/sl"
	consumptionservice "github.com/magabrotheeeer/consumption-tracker/internal/services/consumption"
)

// Service описывает интерфейс бизнес-логики списка записей.
type Service interface {
	List(ctx context.Context, userUID string, page, perPage int) (*consumptionservice.ListResult, error)
}

// Handler управляет HTTP-запросами на получение списка записей потребления.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список записей потребления
// @Description Возвращает страницу записей текущего пользователя, отсортированных от новых к старым.
// @Tags Consumption
// @Produce  json
// @Security BearerAuth
// @Param page query int false "Номер страницы (по умолчанию 1)"
// @Param per_page query int false "Размер страницы, 1..100 (по умолчанию 20)"
// @Success 200 {object} response.Response "Страница записей с метаданными пагинации"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Некорректные параметры пагинации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /consumption [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.consumption.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	page, err := queryInt(r, "page", consumptionservice.DefaultPage)
	if err != nil {
		log.Error("invalid page parameter", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ErrorWithDetails(response.CodeValidationError,
			"request validation failed", map[string]string{"page": "page must be a positive integer"}))
		return
	}
	perPage, err := queryInt(r, "per_page", consumptionservice.DefaultPerPage)
	if err != nil {
		log.Error("invalid per_page parameter", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ErrorWithDetails(response.CodeValidationError,
			"request validation failed", map[string]string{"per_page": "per_page must be between 1 and 100"}))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error(response.CodeMissingToken, "unauthorized"))
		return
	}

	result, err := h.service.List(r.Context(), userUID, page, perPage)
	if err != nil {
		switch {
		case errors.Is(err, consumptionservice.ErrInvalidPage):
			log.Error("invalid page", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ErrorWithDetails(response.CodeValidationError,
				"request validation failed", map[string]string{"page": err.Error()}))
		case errors.Is(err, consumptionservice.ErrInvalidPerPage):
			log.Error("invalid per_page", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ErrorWithDetails(response.CodeValidationError,
				"request validation failed", map[string]string{"per_page": err.Error()}))
		default:
			log.Error("failed to list consumption entries", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(response.CodeInternalError, "failed to list consumption entries"))
		}
		return
	}

	log.Info("listed consumption entries", slog.Int("count", len(result.Items)))
	render.JSON(w, r, response.StatusOKWithData(result))
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
