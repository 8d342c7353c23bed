// Package consumptiontracker собирает и запускает HTTP-сервис учёта потребления.
package consumptiontracker

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/consumption-tracker/internal/cache"
	"github.com/magabrotheeeer/consumption-tracker/internal/config"
	"github.com/magabrotheeeer/consumption-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/consumption-tracker/internal/migrations"
	authservice "github.com/magabrotheeeer/consumption-tracker/internal/services/auth"
	consumptionservice "github.com/magabrotheeeer/consumption-tracker/internal/services/consumption"
	"github.com/magabrotheeeer/consumption-tracker/internal/storage/repository"
)

// App инкапсулирует HTTP-сервер и его зависимости.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

// New собирает приложение: хранилище, миграции, кеш, сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.JWTKeyID,
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	authService := authservice.NewAuthService(db, jwtMaker)
	consumptionService := consumptionservice.NewConsumptionService(db, db, cacheRedis, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, db, authService, consumptionService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if dbErr := a.db.DB.Close(); dbErr != nil {
			a.logger.Error("failed to close database", slog.Any("err", dbErr))
		}
		if cacheErr := a.cache.Db.Close(); cacheErr != nil {
			a.logger.Error("failed to close redis client", slog.Any("err", cacheErr))
		}
		return err
	}
}
