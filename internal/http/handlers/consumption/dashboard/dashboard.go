// Package dashboard реализует HTTP-обработчик сводки для дашборда.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/consumption-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/consumption-tracker/internal/http/response"
	"github.com/magabrotheeeer/consumption-tracker/internal/lib/sl"
	consumptionservice "github.com/magabrotheeeer/consumption-tracker/internal/services/consumption"
)

// Service описывает интерфейс бизнес-логики дашборда.
type Service interface {
	Dashboard(ctx context.Context, userUID string) (*consumptionservice.DashboardData, error)
}

// Handler управляет HTTP-запросами на сводку дашборда.
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
// @Summary Сводка для дашборда
// @Description Возвращает данные пользователя и его аналитику. Результат кешируется на 5 минут.
// @Tags Consumption
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Сводка дашборда"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /consumption/dashboard [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.consumption.dashboard"

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

	data, err := h.service.Dashboard(r.Context(), userUID)
	if err != nil {
		log.Error("failed to build dashboard", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error(response.CodeInternalError, "failed to build dashboard"))
		return
	}

	log.Info("dashboard built", slog.String("username", data.User.Username))
	render.JSON(w, r, response.StatusOKWithData(data))
}
