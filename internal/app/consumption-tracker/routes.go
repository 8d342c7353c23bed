// Package consumptiontracker предоставляет маршруты для основного приложения.
package consumptiontracker

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	httpSwagger "github.com/swaggo/http-swagger"

	authhealth "github.com/magabrotheeeer/consumption-tracker/internal/http/handlers/auth/health"
	"github.com/magabrotheeeer/consumption-tracker/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/consumption-tracker/internal/http/handlers/auth/refresh"
	"github.com/magabrotheeeer/consumption-tracker/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/consumption-tracker/internal/http/handlers/consumption/analytics"
	"github.com/magabrotheeeer/consumption-tracker/internal/http/handlers/consumption/create"
	"github.com/magabrotheeeer/consumption-tracker/internal/http/handlers/consumption/dashboard"
	consumptionhealth "github.com/magabrotheeeer/consumption-tracker/internal/http/handlers/consumption/health"
	"github.com/magabrotheeeer/consumption-tracker/internal/http/handlers/consumption/list"
	"github.com/magabrotheeeer/consumption-tracker/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/consumption-tracker/internal/services/auth"
	consumptionservice "github.com/magabrotheeeer/consumption-tracker/internal/services/consumption"
	"github.com/magabrotheeeer/consumption-tracker/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, storage *repository.Storage,
	authService *authservice.AuthService, consumptionService *consumptionservice.ConsumptionService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.MetricsMiddleware,
	)

	loginLimiter := rate.NewLimiter(1, 5)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", register.New(logger, authService).ServeHTTP)
			r.With(middlewarectx.RateLimitMiddleware(loginLimiter, logger)).
				Post("/login", login.New(logger, authService).ServeHTTP)
			r.Post("/refresh", refresh.New(logger, authService).ServeHTTP)
			r.Get("/health", authhealth.New(logger).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Route("/consumption", func(r chi.Router) {
			r.Get("/health", consumptionhealth.New(logger, storage).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.JWTMiddleware(authService, logger))
				r.Post("/", create.New(logger, consumptionService).ServeHTTP)
				r.Get("/", list.New(logger, consumptionService).ServeHTTP)
				r.Get("/analytics", analytics.New(logger, consumptionService).ServeHTTP)
				r.Get("/dashboard", dashboard.New(logger, consumptionService).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
