// Package analytics реализует HTTP-обработчик аналитической сводки потребления.
package analytics

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/consumption-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/consumption-tracker/internal/http/response"
	"github.com/magabrotheeeer/consumption-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/consumption-tracker/internal/models"
)

// Service описывает интерфейс бизнес-логики аналитики.
type Service interface {
	Summarize(ctx context.Context, userUID string) (*models.AnalyticsSummary, error)
}

// Handler управляет HTTP-запросами на аналитическую сводку.
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
// @Summary Аналитическая сводка потребления
// @Description Пересчитывает сводку по всем записям текущего пользователя. Пустая история даёт нулевую сводку.
// @Tags Consumption
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Аналитическая сводка"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /consumption/analytics [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.consumption.analytics"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error(response.CodeMissingToken, "unauthorized"))
		return
	}

	summary, err := h.service.Summarize(r.Context(), userUID)
	if err != nil {
		log.Error("failed to summarize consumption", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error(response.CodeInternalError, "failed to build analytics summary"))
		return
	}

	log.Info("analytics summary built", slog.Int("total_records", summary.TotalRecords))
	render.JSON(w, r, response.StatusOKWithData(summary))
}
