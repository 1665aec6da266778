package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	red "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Jyo1001/sndp-loan-portal-demo/internal/core/port"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/infra/config"
	kafkainfra "github.com/Jyo1001/sndp-loan-portal-demo/internal/infra/kafka"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/infra/logger"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/infra/security"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/repository/catalog"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/repository/kv"
	redisrepo "github.com/Jyo1001/sndp-loan-portal-demo/internal/repository/redis"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/transport/http/routes"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/usecase"
)

// Application wires configuration, storage, services, and the HTTP engine.
type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *red.Client
	producer *kafkainfra.Producer
}

// New assembles the application from configuration.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	app := &Application{cfg: cfg, logger: log}

	storage, cache, err := app.initStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	loader, err := app.initCatalog(ctx, cfg, log)
	if err != nil {
		app.closeInfra()
		return nil, err
	}

	hasher := newHasher(cfg.Security.HashAlgo)

	tokens, err := security.NewSessionTokenManager(cfg.Security.TokenSecret, cfg.App.Name, cfg.Security.SessionTokenTTL)
	if err != nil {
		app.closeInfra()
		return nil, fmt.Errorf("init session tokens: %w", err)
	}

	credentials := usecase.NewCredentialStore(loader, storage, log)
	otp := usecase.NewOTPService(storage, log)
	otp.WithTTL(cfg.OTP.TTL)
	sessions := usecase.NewSessionService(storage, cfg.Session.TTL, log)
	audit := usecase.NewAuditService(storage, cfg.Audit.Capacity, log).
		WithPublisher(app.initAuditPublisher(cfg, log))
	auth := usecase.NewAuthService(credentials, hasher, otp, sessions, audit, log)

	app.engine = routes.Register(routes.Dependencies{
		Config: cfg,
		Logger: log,
		Tokens: tokens,
		Cache:  cache,
		Services: routes.ServiceSet{
			Auth:        auth,
			Audit:       audit,
			Credentials: credentials,
		},
	})

	return app, nil
}

func (a *Application) initStorage(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (port.Storage, routes.CacheChecker, error) {
	if cfg.Storage.Backend != "redis" {
		log.Info("using in-memory storage backend")
		return kv.NewMemoryStorage(), nil, nil
	}

	client := red.NewClient(&red.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	a.redis = client

	storage := redisrepo.NewStorage(client, cfg.Redis.KeyPrefix)
	log.Info("using redis storage backend", zap.String("addr", cfg.Redis.Addr()))

	return storage, storage, nil
}

func (a *Application) initCatalog(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (port.CatalogLoader, error) {
	if cfg.Catalog.Source == "postgres" {
		pool, err := pgxpool.New(ctx, cfg.Postgres.DSN())
		if err != nil {
			return nil, fmt.Errorf("init postgres pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		a.pool = pool
		log.Info("using postgres catalog source", zap.String("database", cfg.Postgres.Database))
		return catalog.NewPostgresLoader(pool), nil
	}

	log.Info("using file catalog source", zap.String("path", cfg.Catalog.Path))
	return catalog.NewFileLoader(cfg.Catalog.Path), nil
}

func (a *Application) initAuditPublisher(cfg *config.AppConfig, log *zap.Logger) port.AuditPublisher {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Info("kafka brokers not configured, using stub audit publisher")
		return kafkainfra.NewStubPublisher(log)
	}

	producer, err := kafkainfra.NewProducer(cfg.Kafka, log)
	if err != nil {
		log.Warn("failed to init kafka producer, using stub audit publisher", zap.Error(err))
		return kafkainfra.NewStubPublisher(log)
	}
	a.producer = producer

	return kafkainfra.NewAuditPublisher(producer, log)
}

func newHasher(algo string) port.PasswordHasher {
	if algo == "argon2id" {
		return security.NewArgon2Hasher()
	}
	return security.NewSHA256Hasher()
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer a.closeInfra()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting portal auth API",
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

func (a *Application) closeInfra() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("close kafka producer", zap.Error(err))
		}
		a.producer = nil
	}
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
	if a.redis != nil {
		_ = a.redis.Close()
		a.redis = nil
	}
}
