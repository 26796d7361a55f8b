package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sonirghv/Gemini-backend/internal/application"
	"github.com/sonirghv/Gemini-backend/internal/domain"
	"github.com/sonirghv/Gemini-backend/internal/infrastructure/config"
	"github.com/sonirghv/Gemini-backend/internal/infrastructure/database"
	"github.com/sonirghv/Gemini-backend/internal/infrastructure/email"
	"github.com/sonirghv/Gemini-backend/internal/infrastructure/memstore"
	"github.com/sonirghv/Gemini-backend/internal/infrastructure/password"
	"github.com/sonirghv/Gemini-backend/internal/infrastructure/repository"
	httprouter "github.com/sonirghv/Gemini-backend/internal/interfaces/http"
	"go.uber.org/zap"
)

// otpCleanupInterval is how often expired verification codes past retention
// are purged.
const otpCleanupInterval = time.Hour

// @title Gemini Clone API
// @version 1.0
// @description AI chat backend with email verification and JWT authentication
// @host localhost:8000
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Shared in-memory state
	store := memstore.New(logger)
	limiter := memstore.NewRateLimiter(cfg.RateLimitWindow, logger)
	emailTemplate := email.NewEmailTemplate(cfg.AppName, &cfg.SMTP, logger)
	otpService := application.NewOTPService(cfg.OTP, emailTemplate, logger)

	if err := bootstrapAdmin(ctx, cfg, db, logger); err != nil {
		logger.Fatal("Failed to bootstrap admin account", zap.Error(err))
	}

	router, err := httprouter.NewRouter(db, cfg, otpService, store, limiter, logger)
	if err != nil {
		logger.Fatal("Failed to build router", zap.Error(err))
	}

	// Purge verification codes past retention in the background
	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	go runOTPCleanup(cleanupCtx, otpService, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.Int("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited properly")
}

// bootstrapAdmin ensures the configured admin account exists
func bootstrapAdmin(ctx context.Context, cfg *config.Config, db *database.Postgres, logger *zap.Logger) error {
	users := repository.NewUserRepository(db, logger)

	exists, err := users.ExistsByEmail(ctx, cfg.AdminEmail)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hashed, err := password.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	admin := domain.NewUser(cfg.AdminEmail, "admin", hashed, "Administrator")
	admin.IsAdmin = true
	admin.IsVerified = true
	if err := users.Create(ctx, admin); err != nil {
		return err
	}

	logger.Info("Created admin account", zap.String("email", cfg.AdminEmail))
	return nil
}

func runOTPCleanup(ctx context.Context, otpService *application.OTPService, logger *zap.Logger) {
	ticker := time.NewTicker(otpCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := otpService.Cleanup(); removed > 0 {
				logger.Info("Purged expired verification codes", zap.Int("removed", removed))
			}
		}
	}
}
