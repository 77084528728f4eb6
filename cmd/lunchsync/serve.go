package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"

	"lunchsync/internal/handler"
	"lunchsync/internal/mw"
	"lunchsync/internal/service"
	"lunchsync/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the periodic sync worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, true)
		if err != nil {
			return err
		}
		defer a.Close()

		authSvc := service.NewAuthService(a.db)
		syncWorker := worker.NewSyncWorker(a.runner, cfg.SyncInterval)

		// Router
		r := chi.NewRouter()

		r.Use(middleware.Logger)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Authorization"},
			AllowCredentials: true,
			MaxAge:           300,
		}))

		// Public routes
		r.Post("/api/operator/register", handler.RegisterHandler(authSvc, cfg.JWTSecret))
		r.Post("/api/operator/login", handler.LoginHandler(authSvc, cfg.JWTSecret))

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(mw.AuthMiddleware(cfg.JWTSecret))

			r.Post("/api/sync/{instance}", handler.TriggerSyncHandler(a.runner))
			r.Get("/api/sync/runs", handler.ListRunsHandler(a.ledger))
		})

		srv := &http.Server{
			Addr:        cfg.RunAddress,
			Handler:     r,
			ReadTimeout: 10 * time.Second,
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go syncWorker.Start(ctx)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		slog.Info("starting server", "addr", cfg.RunAddress, "instances", a.runner.Instances())

		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("server failed", "error", err)
				quit <- syscall.SIGTERM
			}
		}()

		<-quit
		slog.Info("shutting down...")

		cancel() // stop worker
		ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelShut()

		if err := srv.Shutdown(ctxShut); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}

		slog.Info("server stopped")
		return nil
	},
}
