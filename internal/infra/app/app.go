package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/AyushPithale/social-platform-gateway/internal/core/port"
	"github.com/AyushPithale/social-platform-gateway/internal/infra/config"
	"github.com/AyushPithale/social-platform-gateway/internal/infra/database"
	kafkainfra "github.com/AyushPithale/social-platform-gateway/internal/infra/kafka"
	"github.com/AyushPithale/social-platform-gateway/internal/infra/logger"
	redisinfra "github.com/AyushPithale/social-platform-gateway/internal/infra/redis"
	"github.com/AyushPithale/social-platform-gateway/internal/infra/security"
	postgresrepo "github.com/AyushPithale/social-platform-gateway/internal/repository/postgres"
	redisrepo "github.com/AyushPithale/social-platform-gateway/internal/repository/redis"
	"github.com/AyushPithale/social-platform-gateway/internal/transport/http/middleware"
	"github.com/AyushPithale/social-platform-gateway/internal/transport/http/routes"
	"github.com/AyushPithale/social-platform-gateway/internal/usecase"
)

// Application is the interior API service: identity endpoints plus the post
// store behind the read-through cache.
type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	issuer, err := security.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenTTL)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init token issuer: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)

	admissionStore := redisrepo.NewAdmissionRepository(redisClient.Client(), redisrepo.AdmissionConfig{
		KeyPrefix: cfg.RateLimit.KeyPrefix,
	})
	admission := middleware.NewAdmissionController(admissionStore, log)

	postCache := redisrepo.NewPostCacheRepository(redisClient.Client(), redisrepo.PostCacheConfig{
		KeyPrefix: cfg.Cache.KeyPrefix,
	})

	eventPublisher := newEventPublisher(cfg, log)

	authService := usecase.NewAuthService(repos.Users, repos.Tokens, issuer, eventPublisher, cfg.JWT.RefreshTokenTTL, log)

	invalidator := usecase.NewCacheInvalidator(postCache, log)
	postService := usecase.NewPostService(repos.Posts, postCache, invalidator, eventPublisher, usecase.PostCacheTTLs{
		Page: cfg.Cache.PageTTL,
		Item: cfg.Cache.ItemTTL,
	}, log)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{
		Namespace: "social",
		Subsystem: "api",
	})
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:    cfg,
		Logger:    log,
		Admission: admission,
		Metrics:   metrics,
		Verifier:  issuer,
		Database:  pool,
		Cache:     redisClient,
		Services: routes.ServiceSet{
			Auth:  authService,
			Posts: postService,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
	}, nil
}

func newEventPublisher(cfg *config.AppConfig, log *zap.Logger) port.EventPublisher {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Info("kafka brokers not configured, using stub publisher")
		return kafkainfra.NewStubPublisher(log)
	}

	producer, err := kafkainfra.NewProducer(cfg.Kafka, log)
	if err != nil {
		log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
		return kafkainfra.NewStubPublisher(log)
	}

	log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
	return kafkainfra.NewEventPublisher(producer, cfg.App, log)
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer a.pool.Close()
	defer func() {
		_ = a.redis.Close()
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting API service",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
