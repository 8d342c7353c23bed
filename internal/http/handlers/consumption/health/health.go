// Package health реализует проверку работоспособности подсистемы учёта потребления.
package health

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/consumption-tracker/internal/http/response"
	"github.com/magabrotheeeer/consumption-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/consumption-tracker/internal/storage/repository"
)

// Handler отвечает на запросы проверки работоспособности,
// включая готовность базы данных.
type Handler struct {
	log     *slog.Logger
	storage *repository.Storage
}

// New создает новый Handler.
func New(log *slog.Logger, storage *repository.Storage) *Handler {
	return &Handler{
		log:     log,
		storage: storage,
	}
}

// ServeHTTP godoc
// @Summary Проверка работоспособности учёта потребления
// @Tags Consumption
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.ErrorResponse "База данных недоступна"
// @Router /consumption/health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.consumption.health"

	if err := repository.CheckDatabaseReady(h.storage); err != nil {
		h.log.Error("database not ready", slog.String("op", op), sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error(response.CodeInternalError, "database not ready"))
		return
	}

	w.WriteHeader(http.StatusOK)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status":  "ok",
		"service": "consumption",
	}))
}
