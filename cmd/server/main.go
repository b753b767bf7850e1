// Command server runs the authcore HTTP service: authentication, token
// lifecycle, attempt limiting and the async email worker in one process.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/octanews/authcore/internal/application/service"
	"github.com/octanews/authcore/internal/config"
	"github.com/octanews/authcore/internal/infrastructure/audit"
	"github.com/octanews/authcore/internal/infrastructure/crypto"
	"github.com/octanews/authcore/internal/infrastructure/email"
	"github.com/octanews/authcore/internal/infrastructure/monitoring"
	"github.com/octanews/authcore/internal/infrastructure/persistence/postgres"
	redisstore "github.com/octanews/authcore/internal/infrastructure/persistence/redis"
	"github.com/octanews/authcore/internal/infrastructure/ratelimit"
	redisinfra "github.com/octanews/authcore/internal/infrastructure/redis"
	httpiface "github.com/octanews/authcore/internal/interfaces/http"
	"github.com/octanews/authcore/internal/interfaces/http/handlers"
	"github.com/octanews/authcore/pkg/constants"
	"github.com/octanews/authcore/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate configuration: %w", err)
	}

	log, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Keys first: nothing else can issue or verify tokens without them.
	keys := crypto.NewFileKeyProvider(cfg.Keys.Directory, log)
	if err := keys.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize signing keys: %w", err)
	}

	issuer := cfg.JWT.Issuer
	if issuer == "" {
		issuer = constants.DefaultIssuer
	}
	codec := crypto.NewJWTCodec(keys, issuer)

	csrfTTL := cfg.CSRF.TokenTTL
	if csrfTTL <= 0 {
		csrfTTL = constants.CSRFTokenDefaultTTL
	}
	csrfRepo := crypto.NewCsrfTokenRepository(codec, csrfTTL)

	conn, err := redisstore.NewConnection(ctx, &cfg.Redis, log)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer conn.Close()

	refreshTTL := cfg.JWT.RefreshTokenTTL
	if refreshTTL <= 0 {
		refreshTTL = constants.RefreshTokenDefaultTTL
	}
	revocation := redisinfra.NewRevocationStore(conn, codec, refreshTTL, log)
	limiter := ratelimit.NewAttemptLimiter(conn, cfg.RateLimit, log)

	db, err := postgres.NewDB(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	userRepo := postgres.NewUserRepository(db, log)
	cache := redisstore.NewCache(conn, constants.UserCacheL1TTL, log)
	users := service.NewUserLookup(userRepo, cache, log)

	auditSink := audit.NewNopSink()
	if cfg.Audit.Enabled {
		auditSink = audit.NewKafkaSink(&cfg.Audit, log)
	}
	defer auditSink.Close()

	var mailer email.Enqueuer = email.NewNopEnqueuer()
	var worker *email.Worker
	if cfg.Email.Enabled {
		mailer = email.NewDispatcher(&cfg.Redis, &cfg.Email, log)
		worker = email.NewWorker(&cfg.Redis, &cfg.Email, email.NewLogSender(log), log)
	}
	defer mailer.Close()

	metrics, registry := monitoring.NewMetrics()
	flow := service.NewAuthFlow(codec, revocation, limiter, users, auditSink, mailer, metrics, &cfg.JWT, log)

	router := httpiface.NewRouter(httpiface.RouterDeps{
		Config:   cfg,
		Flow:     flow,
		Csrf:     csrfRepo,
		Auth:     handlers.NewAuthHandler(flow, csrfRepo, log),
		Health:   handlers.NewHealthHandler(conn),
		Metrics:  metrics,
		Registry: registry,
		Log:      log,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	config.Watch(func(updated *config.Config) {
		if setter, ok := log.(monitoring.LevelSetter); ok {
			setter.SetLevel(updated.Log.Level)
		}
		log.Info(ctx, "configuration reloaded",
			logger.String("log_level", updated.Log.Level))
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info(gctx, "http server listening", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if worker != nil {
		g.Go(func() error {
			log.Info(gctx, "email worker starting",
				logger.String("queue", cfg.Email.Queue),
				logger.Int("concurrency", cfg.Email.Concurrency))
			return worker.Start()
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info(context.Background(), "shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn(context.Background(), "http shutdown incomplete", logger.Err(err))
		}
		if worker != nil {
			worker.Shutdown()
		}
		return nil
	})

	return g.Wait()
}
