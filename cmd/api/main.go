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

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/pocket/internal/app"
	"github.com/MrJamesThe3rd/pocket/internal/auth"
	"github.com/MrJamesThe3rd/pocket/internal/config"
	pocketHttp "github.com/MrJamesThe3rd/pocket/internal/http"
	budgetHandler "github.com/MrJamesThe3rd/pocket/internal/http/budget"
	goalHandler "github.com/MrJamesThe3rd/pocket/internal/http/goal"
	importHandler "github.com/MrJamesThe3rd/pocket/internal/http/importcsv"
	overviewHandler "github.com/MrJamesThe3rd/pocket/internal/http/overview"
	referenceHandler "github.com/MrJamesThe3rd/pocket/internal/http/reference"
	txHandler "github.com/MrJamesThe3rd/pocket/internal/http/transaction"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.Auth.JWTSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	a, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	router := pocketHttp.New(pocketHttp.Handlers{
		Overview:     overviewHandler.NewHandler(a.Overview),
		Transactions: txHandler.NewHandler(a.Transactions, a.Mirror),
		Reference:    referenceHandler.NewHandler(a.Reference),
		Budgets:      budgetHandler.NewHandler(a.Budgets),
		Goals:        goalHandler.NewHandler(a.Goals),
		Import:       importHandler.NewHandler(a.Importer),
	}, pocketHttp.Options{
		AllowedOrigins: cfg.App.AllowedOrigins,
		Timeout:        cfg.Server.Timeout,
		Authenticate:   auth.NewVerifier(cfg.Auth.JWTSecret).Middleware,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "app", cfg.App.Name, "addr", srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
