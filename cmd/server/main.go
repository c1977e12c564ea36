package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/aryan0dhankhar/solkant/internal/handler"
	"github.com/aryan0dhankhar/solkant/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/solkant/internal/infrastructure/redis"
	"github.com/aryan0dhankhar/solkant/internal/migrations"
	"github.com/aryan0dhankhar/solkant/internal/observability/tracing"
	"github.com/aryan0dhankhar/solkant/internal/repository"
	"github.com/aryan0dhankhar/solkant/internal/security/audit"
	"github.com/aryan0dhankhar/solkant/internal/security/auth"
	"github.com/aryan0dhankhar/solkant/internal/security/ratelimit"
	"github.com/aryan0dhankhar/solkant/internal/service"
	"github.com/aryan0dhankhar/solkant/internal/validation"
	"github.com/aryan0dhankhar/solkant/internal/worker"
	"github.com/aryan0dhankhar/solkant/pkg/cache"
	"github.com/aryan0dhankhar/solkant/pkg/config"
	"github.com/aryan0dhankhar/solkant/pkg/database"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "solkant: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel, cfg.Environment)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", slog.String("error", err.Error()))
		return err
	}
	log.Info("starting Solkant server", slog.String("environment", cfg.Environment))
	if cfg.IsDevelopment() {
		for k, v := range cfg.Summary() {
			log.Debug("config", slog.String("key", k), slog.String("value", v))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Tracing
	shutdownTracing, err := tracing.Init(ctx, log, cfg.OTLPEndpoint, "solkant", cfg.Environment)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		tctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(tctx)
	}()

	// 4. Database, with retries while Postgres comes up
	pool, err := database.NewConnectionPool(ctx, &database.Config{
		URL:          cfg.DatabaseURL,
		MaxOpenConns: cfg.DBMaxOpenConns,
	}, log)
	if err != nil {
		return err
	}
	defer pool.Close()
	db := pool.GetDB()

	if cfg.MigrateOnStart {
		runner, err := migrations.New(db, log)
		if err != nil {
			return err
		}
		if err := runner.Up(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// 5. Redis is optional; without it login throttling is per process
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(cfg.RedisURL, log)
		if err != nil {
			return err
		}
		defer redisClient.Close()
	}

	// 6. Repositories
	users := repository.NewPostgresUserRepository(db, log)
	accounts := repository.NewPostgresAccountRepository(db, log)
	businesses := repository.NewPostgresBusinessRepository(db, log)
	clients := repository.NewPostgresClientRepository(db, log)
	services := repository.NewPostgresServiceRepository(db, log)
	quotes := repository.NewPostgresQuoteRepository(db, log)

	// 7. Services
	auditLog := audit.NewLogger(log)
	provisioner := service.NewTenantProvisioner(businesses, users, auditLog, log)
	authService := service.NewAuthService(users, accounts, provisioner, log)
	resolver := service.NewTenantResolver(businesses, cache.New[string](cfg.TenantCacheSize, cfg.TenantCacheTTL), log)
	clientService := service.NewClientService(clients, auditLog, log)
	catalogService := service.NewCatalogService(services, auditLog, log)
	quoteService := service.NewQuoteService(quotes, clients, services, auditLog, log)

	// 8. Security components
	issuer, err := auth.NewTokenIssuer(cfg.AuthSecret, cfg.SessionMaxAge, cfg.SessionUpdateAge)
	if err != nil {
		return err
	}

	var google handler.OAuthProvider
	if cfg.GoogleEnabled() {
		provider, err := auth.NewGoogleProvider(ctx, auth.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Issuer:       cfg.GoogleIssuer,
			BaseURL:      cfg.BaseURL,
			CookieSecret: cfg.AuthSecret,
		}, log)
		if err != nil {
			// sign-in via Google answers with the Configuration error code
			log.Error("google sign-in unavailable", slog.String("error", err.Error()))
		} else {
			google = provider
		}
	}

	memLimiter := ratelimit.NewMemoryLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)
	defer memLimiter.Stop()
	var loginLimiter ratelimit.Limiter = memLimiter
	if redisClient != nil {
		loginLimiter = ratelimit.NewRedisLimiter(redisClient, cfg.LoginRateLimit, cfg.LoginRateWindow, log).
			WithFallback(memLimiter)
	}

	// 9. Handlers and routes
	v, err := validation.New()
	if err != nil {
		return fmt.Errorf("compile schemas: %w", err)
	}
	dev := cfg.IsDevelopment()

	checks := map[string]handler.HealthCheck{
		"postgres": pool.Health,
		"redis":    nil,
	}
	if redisClient != nil {
		checks["redis"] = redisClient.Ping
	}

	router := handler.NewRouter(handler.Handlers{
		Auth: handler.NewAuthHandler(handler.AuthConfig{
			AuthService:   authService,
			Issuer:        issuer,
			Google:        google,
			Validator:     v,
			Audit:         auditLog,
			SecureCookies: cfg.SecureCookies(),
			Development:   dev,
		}, log),
		Login:     handler.NewLoginHandler(google != nil, log),
		Dashboard: handler.NewDashboardHandler(resolver, dev, log),
		Clients:   handler.NewClientHandler(clientService, resolver, v, dev, log),
		Catalog:   handler.NewCatalogHandler(catalogService, resolver, v, dev, log),
		Quotes:    handler.NewQuoteHandler(quoteService, resolver, v, dev, log),
		Health:    handler.NewHealthHandler(checks, log),
	}, handler.RouterConfig{
		Issuer:        issuer,
		SecureCookies: cfg.SecureCookies(),
		LoginLimiter:  loginLimiter,
		Audit:         auditLog,
	}, log)

	// 10. Background backfill of missing businesses
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()
	go worker.NewBackfillWorker(provisioner, log, cfg.BackfillInterval).Start(workerCtx)

	// 11. Start HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           otelhttp.NewHandler(router, "solkant"),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.Bool("google", google != nil),
		slog.Bool("redis", redisClient != nil),
		slog.Int("login_rate_limit", cfg.LoginRateLimit),
		slog.String("login_rate_window", cfg.LoginRateWindow.String()),
	)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Error("server error", slog.String("error", err.Error()))
			return err
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}
	cancelWorker()
	log.Info("server stopped")
	return nil
}
