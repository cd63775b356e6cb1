package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/soaringjerry/clima/internal/api"
	"github.com/soaringjerry/clima/internal/middleware"
	"github.com/soaringjerry/clima/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(parent context.Context) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer func() { _ = env.log.Sync() }()
	cfg := env.cfg

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := env.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			env.log.Warn("close store", zap.Error(err))
		}
	}()

	var (
		auth  *services.AuthService
		authn *middleware.Authenticator
	)
	if cfg.AuthEnabled() {
		authn, err = middleware.NewAuthenticator(cfg.Auth.JWTSecret)
		if err != nil {
			return err
		}
		auth = services.NewAuthService(cfg.Auth.AdminPasswordHash, authn.SignToken, cfg.Auth.TokenTTL)
	} else {
		env.log.Warn("no admin password configured, dashboard routes are open")
	}

	commit := cfg.Build.Commit
	if commit == "" {
		commit = appVersion
	}
	router := api.NewRouter(api.Config{
		Store:          store,
		Logger:         env.log,
		Auth:           auth,
		Authenticator:  authn,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		CommentLimit:   cfg.Comments.DefaultLimit,
		Commit:         commit,
		BuildTime:      firstNonEmpty(cfg.Build.Time, buildTime),
	})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router.Handler(),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		env.log.Info("clima server listening", zap.String("addr", cfg.Addr), zap.String("version", appVersion))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	env.log.Info("shutting down", zap.Duration("timeout", cfg.HTTP.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
