package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"expense-api/internal/auth"
	"expense-api/internal/config"
	"expense-api/internal/expenses"
	"expense-api/internal/handlers"
	"expense-api/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db, err := storage.NewDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	issuer, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("Invalid JWT secret: %v", err)
	}
	authService := auth.NewService(db, issuer)

	if err := ensureAdmin(context.Background(), db, authService, cfg.AdminUser, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}

	if !cfg.EnforceOwnership {
		logger.Warn("ownership checks disabled: any authenticated user may update or delete any expense")
	}
	expenseService := expenses.NewService(db, cfg.EnforceOwnership)

	h := handlers.NewHandlers(authService, expenseService, db, logger)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(h, cfg, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", "addr", srv.Addr, "db", cfg.DBPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers, cfg *config.Config, logger *slog.Logger) http.Handler {
	var authLimit func(http.Handler) http.Handler
	if cfg.RateLimitEnabled {
		authLimit = handlers.RateLimitMiddleware(cfg.AuthRateLimitRPS, cfg.AuthRateBurst)
	}

	var handler http.Handler = h.Routes(authLimit)
	handler = handlers.CORSMiddleware(cfg.AllowedOrigins)(handler)
	handler = handlers.LoggerMiddleware(logger)(handler)
	handler = handlers.RequestIDMiddleware(handler)
	return handler
}

type userCounter interface {
	UserCount(ctx context.Context) (int, error)
}

// ensureAdmin registers the bootstrap user when credentials are configured
// and the database has no users yet.
func ensureAdmin(ctx context.Context, db userCounter, authService *auth.Service, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	count, err := db.UserCount(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if _, err := authService.Register(ctx, username, password); err != nil {
		return err
	}
	log.Printf("Created admin user %s", username)
	return nil
}
