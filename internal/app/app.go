package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/auth"
	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/config"
	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/generator"
	"github.com/SAP-F-2025/learning-service/internal/handlers"
	"github.com/SAP-F-2025/learning-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/throttle"
	"github.com/SAP-F-2025/learning-service/internal/utils"
	"github.com/SAP-F-2025/learning-service/pkg"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

// App owns every long-lived dependency of the service.
type App struct {
	Config   *config.Config
	Logger   utils.Logger
	DB       *gorm.DB
	Services *services.Manager

	redis     *redis.Client
	publisher events.EventPublisher
}

// New connects storage and builds the service graph. It does not migrate.
func New(ctx context.Context, cfg *config.Config, logger utils.Logger) (*App, error) {
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: logger, DB: db}

	store, err := a.newCache(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	tokens, err := auth.NewTokenManager(auth.TokenConfig{
		Secret:     cfg.Auth.JWTSecret,
		Issuer:     "learning-service",
		AccessTTL:  cfg.Auth.AccessTTL,
		RefreshTTL: cfg.Auth.RefreshTTL,
		VerifyTTL:  cfg.Auth.VerifyTTL,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	a.publisher, err = cfg.Events.CreateEventPublisher(logger.Slog())
	if err != nil {
		logger.Warn("Event publisher unavailable, events will only be logged", "error", err)
		a.publisher = events.NewMockEventPublisher(logger.Slog())
	}

	guard := throttle.NewGuard(store, throttle.Config{
		AttemptLimit: cfg.Throttle.AttemptLimit,
		Window:       cfg.Throttle.Window,
	}, logger)

	a.Services = services.NewManager(services.Dependencies{
		Repo:           postgres.NewRepository(db),
		Cache:          store,
		Guard:          guard,
		Tokens:         tokens,
		Hasher:         auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		Generator:      generator.NewGenerator(a.newProvider(ctx), cfg.Generator.Timeout, logger),
		Publisher:      a.publisher,
		Logger:         logger.Slog(),
		PassPercentage: cfg.Modules.PassPercentage,
	})

	return a, nil
}

// newCache uses Redis when REDIS_URL is set and an in-process cache otherwise.
// The in-process cache only works for a single replica.
func (a *App) newCache(ctx context.Context) (cache.CacheService, error) {
	if a.Config.RedisURL == "" {
		a.Logger.Warn("REDIS_URL not set, using in-process cache for throttling and token revocation")
		return cache.NewMemoryCache(), nil
	}

	client, err := pkg.NewRedisClient(ctx, a.Config)
	if err != nil {
		return nil, err
	}
	a.redis = client
	return cache.NewRedisCache(client, a.Logger), nil
}

// newProvider never fails: without a usable backend every generation takes
// the fallback path.
func (a *App) newProvider(ctx context.Context) generator.Provider {
	gc := a.Config.Generator
	provider, err := generator.NewProvider(ctx, generator.Config{
		Provider:        gc.Provider,
		Timeout:         gc.Timeout,
		GeminiAPIKey:    gc.GeminiAPIKey,
		GeminiModel:     gc.GeminiModel,
		OpenAIAPIKey:    gc.OpenAIAPIKey,
		OpenAIModel:     gc.OpenAIModel,
		OpenAIBaseURL:   gc.OpenAIBaseURL,
		AnthropicAPIKey: gc.AnthropicAPIKey,
		AnthropicModel:  gc.AnthropicModel,
	})
	if err != nil {
		a.Logger.Warn("Content generator unavailable, serving fallback content",
			"provider", gc.Provider, "error", err)
		return generator.NewMockProvider()
	}

	a.Logger.Info("Content generator ready", "provider", gc.Provider, "model", provider.ModelID())
	return provider
}

func (a *App) Router() *gin.Engine {
	if a.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(a.Logger))
	router.Use(handlers.CORS(a.Config.CORSOrigins))

	handlers.NewHandlerManager(a.Services, a.Logger).SetupRoutes(router)
	return router
}

// Serve runs the HTTP server until ctx is cancelled, then drains in-flight
// requests.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + a.Config.Port,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("HTTP server listening", "addr", srv.Addr, "environment", a.Config.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.Logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func (a *App) Close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.Logger.Warn("Failed to close event publisher", "error", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Logger.Warn("Failed to close redis client", "error", err)
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}
