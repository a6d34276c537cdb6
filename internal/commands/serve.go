package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arrendix/protecciones/internal/auth"
	"github.com/arrendix/protecciones/internal/config"
	"github.com/arrendix/protecciones/internal/database"
	"github.com/arrendix/protecciones/internal/router"
	"github.com/arrendix/protecciones/migration"
)

func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.RequireAuth(); err != nil {
				return err
			}

			logger, err := NewLogger(cfg.Server.Env)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			db, err := database.Open(cfg.Database)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close(db) }()
			logger.Info("connected to database", zap.String("driver", cfg.Database.Driver))

			if autoMigrate, _ := cmd.Flags().GetBool("migrate"); autoMigrate {
				applied, err := migration.NewMigrator(db, migration.Schema()...).Up()
				if err != nil {
					return fmt.Errorf("failed to apply migrations: %w", err)
				}
				logger.Info("migrations applied", zap.Int("count", len(applied)))
			}

			app := NewApp(db, cfg, logger)
			handler := router.SetupRoutes(app.Handlers(), auth.NewJWTVerifier(cfg.Auth), cfg.Server.AllowedOrigins, logger)

			srv := &http.Server{
				Addr:         ":" + cfg.Server.Port,
				Handler:      handler,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
				IdleTimeout:  60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server starting",
					zap.String("port", cfg.Server.Port),
					zap.String("environment", cfg.Server.Env))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return fmt.Errorf("server failed: %w", err)
			case <-quit:
			}

			logger.Info("shutting down server...")
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("server forced to shutdown", zap.Error(err))
			}
			logger.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().Bool("migrate", false, "Apply pending migrations before serving")
	return cmd
}
