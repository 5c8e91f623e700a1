package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ideanotion/glasstodo/internal/adapter/postgres"
	"github.com/ideanotion/glasstodo/internal/adapter/postgres/credential"
	"github.com/ideanotion/glasstodo/internal/auth"
	"github.com/ideanotion/glasstodo/internal/config"
	"github.com/ideanotion/glasstodo/internal/service/cover"
	"github.com/ideanotion/glasstodo/internal/service/notify"
	"github.com/ideanotion/glasstodo/internal/service/ops"
	"github.com/ideanotion/glasstodo/internal/transport/middleware"
	"github.com/ideanotion/glasstodo/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, connects to
// the credential store, wires the services, and serves HTTP until the
// context is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	creds := credential.New(pool)
	sessions := auth.NewSessions(creds, cfg.OAuth, cfg.Mirror, logger)

	coverSvc := cover.NewService(cfg.Cover, cfg.Mirror.CallbackURL, logger)
	notifySvc := notify.NewService(coverSvc, logger)
	opsSvc := ops.NewService(creds, sessions, coverSvc, cfg.Cover, cfg.Mirror.CallbackURL, logger)

	healthHandler := rest.NewHealthHandler(pool, BuildVersion())
	notifyHandler := rest.NewNotifyHandler(sessions, notifySvc, logger)
	opsHandler := rest.NewOperationsHandler(opsSvc, sessions, logger)
	timelineHandler := rest.NewTimelineHandler(sessions, logger)

	authOnly := middleware.Auth(sessions)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /live", healthHandler.Live)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("POST /notify", notifyHandler.Notify)
	mux.Handle("POST /operations", authOnly(http.HandlerFunc(opsHandler.Execute)))
	mux.Handle("GET /timeline", authOnly(http.HandlerFunc(timelineHandler.Index)))

	handler := middleware.Chain(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
	)(mux)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return nil
}
