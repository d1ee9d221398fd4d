package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/AyushPithale/social-platform-gateway/internal/gateway"
	"github.com/AyushPithale/social-platform-gateway/internal/infra/config"
	"github.com/AyushPithale/social-platform-gateway/internal/infra/logger"
	redisinfra "github.com/AyushPithale/social-platform-gateway/internal/infra/redis"
	"github.com/AyushPithale/social-platform-gateway/internal/infra/security"
	redisrepo "github.com/AyushPithale/social-platform-gateway/internal/repository/redis"
	"github.com/AyushPithale/social-platform-gateway/internal/transport/http/handlers"
	"github.com/AyushPithale/social-platform-gateway/internal/transport/http/middleware"
)

// GatewayApplication is the edge proxy binary: public routing table, global
// admission budget, and identity forwarding.
type GatewayApplication struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	redis  *redisinfra.Client
}

func NewGateway(ctx context.Context, cfg *config.AppConfig) (*GatewayApplication, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}

	verifier, err := security.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenTTL)
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("init token verifier: %w", err)
	}

	routes, err := gateway.BuildRoutes(cfg.Gateway)
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("build routing table: %w", err)
	}

	admissionStore := redisrepo.NewAdmissionRepository(redisClient.Client(), redisrepo.AdmissionConfig{
		KeyPrefix: cfg.RateLimit.KeyPrefix,
	})
	admission := middleware.NewAdmissionController(admissionStore, log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	healthHandler := handlers.NewHealthHandler(
		handlers.WithReadinessCheck("redis", redisClient.HealthCheck),
	)
	engine.GET("/healthz", healthHandler.Status)
	engine.GET("/readyz", healthHandler.Readiness)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	proxy := gateway.NewProxy(routes, verifier, log)
	proxy.Register(engine, admission, middleware.AdmissionRule{
		Name:       "global",
		Limit:      cfg.RateLimit.GlobalPoints,
		Window:     cfg.RateLimit.GlobalWindow,
		Identifier: middleware.UserOrIPIdentifier(),
	})

	return &GatewayApplication{
		cfg:    cfg,
		engine: engine,
		logger: log,
		redis:  redisClient,
	}, nil
}

func (a *GatewayApplication) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		_ = a.redis.Close()
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.Gateway.Host, a.cfg.Gateway.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	a.logger.Info("starting edge gateway",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
		zap.String("auth_upstream", a.cfg.Gateway.AuthServiceURL),
		zap.String("post_upstream", a.cfg.Gateway.PostServiceURL),
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
