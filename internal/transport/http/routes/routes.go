package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Jyo1001/sndp-loan-portal-demo/internal/core/domain"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/infra/config"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/infra/security"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/transport/http/handlers"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/transport/http/middleware"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth        *usecase.AuthService
	Audit       *usecase.AuditService
	Credentials *usecase.CredentialStore
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config   *config.AppConfig
	Logger   *zap.Logger
	Services ServiceSet
	Tokens   *security.SessionTokenManager
	Cache    CacheChecker
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))

	sessionMiddleware := middleware.RequireSession(deps.Tokens, deps.Services.Auth)

	healthOptions := make([]handlers.HealthOption, 0, 1)
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		isDev := deps.Config.App.Env == "development"

		authGroup := api.Group("/auth")
		authHandler := handlers.NewAuthHandler(deps.Services.Auth, deps.Tokens, handlers.WithDevMode(isDev))
		authHandler.RegisterRoutes(authGroup, sessionMiddleware)

		sessionGroup := api.Group("/session")
		sessionGroup.Use(sessionMiddleware)
		handlers.NewSessionHandler().RegisterRoutes(sessionGroup)

		auditGroup := api.Group("/audit")
		auditGroup.Use(sessionMiddleware, middleware.RequireRole(domain.RoleManager))
		handlers.NewAuditHandler(deps.Services.Audit).RegisterRoutes(auditGroup)

		if deps.Services.Credentials != nil {
			adminGroup := api.Group("/admin")
			adminGroup.Use(sessionMiddleware, middleware.RequireRole(domain.RoleManager))
			handlers.NewAdminHandler(deps.Services.Credentials).RegisterRoutes(adminGroup)
		}
	}

	return r
}
