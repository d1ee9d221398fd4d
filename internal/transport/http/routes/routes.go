package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/AyushPithale/social-platform-gateway/internal/infra/config"
	"github.com/AyushPithale/social-platform-gateway/internal/infra/security"
	"github.com/AyushPithale/social-platform-gateway/internal/transport/http/handlers"
	"github.com/AyushPithale/social-platform-gateway/internal/transport/http/middleware"
	"github.com/AyushPithale/social-platform-gateway/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth  *usecase.AuthService
	Posts *usecase.PostService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config    *config.AppConfig
	Logger    *zap.Logger
	Admission *middleware.AdmissionController
	Metrics   *middleware.HTTPMetrics
	Services  ServiceSet
	Verifier  *security.TokenIssuer
	Database  DatabaseChecker
	Cache     CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
//
// Post writes authenticate via the trusted identity header: the edge proxy
// verifies the bearer token, strips any client-supplied header, and forwards
// the verified subject. Auth endpoints additionally carry the long
// sensitive-route admission window.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)
	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		if deps.Admission != nil {
			authGroup.Use(deps.Admission.Admit(middleware.AdmissionRule{
				Name:       "sensitive",
				Limit:      deps.Config.RateLimit.SensitiveMaxAttempts,
				Window:     deps.Config.RateLimit.SensitiveWindow,
				Identifier: middleware.IPAndRouteIdentifier(),
				FailClosed: true,
			}))
		}

		authHandler := handlers.NewAuthHandler(deps.Services.Auth, deps.Logger)
		authHandler.RegisterRoutes(authGroup)

		postHandler := handlers.NewPostHandler(deps.Services.Posts, deps.Logger)
		postHandler.RegisterRoutes(api.Group("/posts"), middleware.Identity(deps.Verifier))
	}

	return r
}
