package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/api"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/api/handlers"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/api/middleware"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/audit"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/auth"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/config"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/events"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/users"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/email"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/media"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/metrics"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/storage/postgres"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/telemetry"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const dbMetricsInterval = 15 * time.Second

type serveOptions struct {
	host string
	port int
}

func newServeCommand(global *globalOptions) *cobra.Command {
	opts := serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables (or --config file if provided)
- Bootstrap an admin user if ADMIN_USERNAME, ADMIN_EMAIL and ADMIN_PASSWORD are set
- Serve the users and events API, health probes and Prometheus metrics
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090

  # Start with debug logging
  server serve --log-level debug --log-format console`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), global, opts)
		},
	}
	cmd.Flags().StringVar(&opts.host, "host", "", "server host address (default: 0.0.0.0)")
	cmd.Flags().IntVar(&opts.port, "port", 0, "server port (default: 8080)")
	return cmd
}

func runServer(parent context.Context, global *globalOptions, opts serveOptions) error {
	cfg, err := loadConfig(global)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if opts.host != "" {
		cfg.Server.Host = opts.host
	}
	if opts.port != 0 {
		cfg.Server.Port = opts.port
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("version", Version).Str("environment", cfg.Environment).Msg("starting event management server")

	metrics.Init(Version, GitCommit, BuildDate)

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("tracing init: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error().Err(err).Msg("tracing shutdown error")
		}
	}()

	handle := postgres.NewHandle(postgres.PoolConfig{
		URL:            cfg.Database.URL,
		MaxConnections: int32(cfg.Database.MaxConnections),
		ConnectTimeout: 10 * time.Second,
	})
	defer handle.Close()

	pool, err := handle.Pool(ctx)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return fmt.Errorf("repository init failed: %w", err)
	}

	notifier, err := email.NewNotifier(cfg.Email, logger)
	if err != nil {
		return fmt.Errorf("email init: %w", err)
	}
	uploads, err := media.NewLocalStore(cfg.Uploads.Dir, cfg.Uploads.PublicBaseURL)
	if err != nil {
		return err
	}

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer)
	userService := users.NewService(
		repo.Users(),
		auth.NewHasher(cfg.Auth.BcryptCost),
		tokens,
		notifier,
		audit.NewLoggerWithZerolog(logger),
		logger,
	)
	eventService := events.NewService(repo.Events(), logger)

	bootstrapAdmin(ctx, cfg, userService, logger)

	limiter := middleware.NewRateLimiter(cfg.RateLimit)
	defer limiter.Stop()

	server := &http.Server{
		Addr: cfg.Server.Addr(),
		Handler: api.NewRouter(api.Deps{
			Config:      cfg,
			Logger:      logger,
			Users:       userService,
			Events:      eventService,
			Tokens:      tokens,
			Accounts:    userService,
			Media:       uploads,
			Health:      handlers.NewHealthChecker(repo, repo, Version, GitCommit),
			RateLimiter: limiter,
			Version:     Version,
			GitCommit:   GitCommit,
			BuildDate:   BuildDate,
		}),
		ReadTimeout:       10 * time.Second, // Total time to read request
		WriteTimeout:      30 * time.Second, // Total time to write response
		ReadHeaderTimeout: 5 * time.Second,  // Time to read headers
		MaxHeaderBytes:    1 << 20,          // 1 MB max header size
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return metrics.NewDBCollector(pool).Run(gctx, dbMetricsInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		return gracefulShutdown(server, cfg.Server.ShutdownTimeout, logger)
	})

	return g.Wait()
}

// bootstrapAdmin creates the configured admin account once. Failures are
// logged and do not stop the server.
func bootstrapAdmin(ctx context.Context, cfg config.Config, service *users.Service, logger zerolog.Logger) {
	bootstrap := cfg.AdminBootstrap
	if bootstrap.Username == "" || bootstrap.Password == "" || bootstrap.Email == "" {
		logger.Debug().Msg("admin bootstrap env vars not fully set; skipping")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	created, err := service.EnsureAdmin(ctx, bootstrap.Username, bootstrap.Email, bootstrap.Password)
	if err != nil {
		logger.Error().Err(err).Msg("admin bootstrap failed")
		return
	}
	if !created {
		return
	}

	// Redact email in production to avoid PII leaks
	event := logger.Info().Str("username", bootstrap.Username)
	if !cfg.IsProduction() {
		event = event.Str("email", bootstrap.Email)
	}
	event.Msg("bootstrapped admin user")
}

func gracefulShutdown(server *http.Server, timeout time.Duration, logger zerolog.Logger) error {
	logger.Info().Msg("shutting down")

	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}
