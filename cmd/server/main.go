// @title           BellyBox API
// @version         1.0
// @description     Food-ordering backend: registration, login and role dashboards.
// @BasePath        /
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/bellybox/bellybox-api/internal/api"
	"github.com/bellybox/bellybox-api/internal/api/handler"
	"github.com/bellybox/bellybox-api/internal/api/middleware"
	"github.com/bellybox/bellybox-api/internal/core/domain"
	"github.com/bellybox/bellybox-api/internal/core/ports"
	"github.com/bellybox/bellybox-api/internal/core/service"
	redisstore "github.com/bellybox/bellybox-api/internal/infrastructure/db/redis"
	"github.com/bellybox/bellybox-api/internal/infrastructure/queue"
	"github.com/bellybox/bellybox-api/internal/pkg/config"
	"github.com/bellybox/bellybox-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "bellybox-api",
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	policy, err := middleware.ParseMismatchPolicy(cfg.RoleMismatchRedirect)
	if err != nil {
		return err
	}

	// --- Storage ---
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.close()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()
	log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")

	// --- Services ---
	hasher, err := service.NewPasswordHasher(cfg.Session.BcryptCost)
	if err != nil {
		return err
	}
	authService := service.NewAuthService(store.users, hasher, log)

	sessions, err := service.NewSessionManager(redisstore.NewSessionStore(rdb), store.users, service.SessionConfig{
		Secret: cfg.Session.SecretKey,
		Issuer: cfg.Session.Issuer,
		TTL:    cfg.Session.TTL,
	}, log)
	if err != nil {
		return err
	}

	auditCtx, stopAudit := context.WithCancel(context.Background())
	defer stopAudit()
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, service.NewAuditService(store.audit, log), log)
	dispatcher.Start(auditCtx)

	if err := bootstrapAdmin(ctx, cfg.Admin, authService, log); err != nil {
		return err
	}

	// --- HTTP ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	e := api.NewRouter(api.Dependencies{
		Auth:     authService,
		Sessions: sessions,
		Audit:    dispatcher,
		Health: map[string]handler.PingFunc{
			store.name: store.ping,
			"redis": func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			},
		},
		Registry: registry,
		Cookie: handler.CookieConfig{
			Secure: !cfg.IsDevelopment(),
			TTL:    sessions.TTL(),
		},
		MismatchPolicy: policy,
		Log:            log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("http server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	return nil
}

func bootstrapAdmin(ctx context.Context, admin config.AdminConfig, auth *service.AuthService, log zerolog.Logger) error {
	if !admin.Enabled() {
		return nil
	}
	id, created, err := auth.Provision(ctx, ports.RegisterInput{
		Username: admin.Username,
		Email:    admin.Email,
		Password: admin.Password,
	}, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if !created {
		log.Info().Int64("user_id", id).Msg("admin account already present")
	}
	return nil
}
