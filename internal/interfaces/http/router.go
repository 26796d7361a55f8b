package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sonirghv/Gemini-backend/internal/application"
	"github.com/sonirghv/Gemini-backend/internal/infrastructure/config"
	"github.com/sonirghv/Gemini-backend/internal/infrastructure/database"
	"github.com/sonirghv/Gemini-backend/internal/infrastructure/email"
	"github.com/sonirghv/Gemini-backend/internal/infrastructure/gemini"
	"github.com/sonirghv/Gemini-backend/internal/infrastructure/jwt"
	"github.com/sonirghv/Gemini-backend/internal/infrastructure/memstore"
	"github.com/sonirghv/Gemini-backend/internal/infrastructure/repository"
	"github.com/sonirghv/Gemini-backend/internal/interfaces/http/handlers"
	"github.com/sonirghv/Gemini-backend/internal/interfaces/http/middleware/auth"
	"github.com/sonirghv/Gemini-backend/internal/interfaces/http/middleware/ratelimit"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

type Router struct {
	router *chi.Mux
	db     *database.Postgres
}

func NewRouter(
	db *database.Postgres,
	cfg *config.Config,
	otpService *application.OTPService,
	store *memstore.Store,
	limiter *memstore.RateLimiter,
	logger *zap.Logger,
) (*Router, error) {
	jwtService, err := jwt.New(cfg.JWTSecret, cfg.JWTAccessDuration, cfg.JWTRefreshDuration)
	if err != nil {
		return nil, err
	}
	authMiddleware := auth.NewAuthMiddleware(jwtService.Secret(), logger)

	userRepo := repository.NewUserRepository(db, logger)
	chatRepo := repository.NewChatRepository(db, logger)
	messageRepo := repository.NewMessageRepository(db, logger)
	uploadRepo := repository.NewFileUploadRepository(db, logger)

	emailTemplate := email.NewEmailTemplate(cfg.AppName, &cfg.SMTP, logger)
	generator := gemini.NewClient(cfg.Gemini, logger)

	authService := application.NewAuthService(userRepo, otpService, emailTemplate, jwtService, logger)
	userService := application.NewUserService(userRepo, chatRepo, messageRepo, logger)
	chatService := application.NewChatService(chatRepo, messageRepo, generator, store, logger)
	uploadService := application.NewUploadService(uploadRepo, cfg.UploadDir, cfg.MaxFileSize, logger)

	authHandler := handlers.NewAuthHandler(authService, logger)
	otpHandler := handlers.NewOTPHandler(otpService, logger)
	userHandler := handlers.NewUserHandler(userService, logger)
	chatHandler := handlers.NewChatHandler(chatService, logger)
	uploadHandler := handlers.NewUploadHandler(uploadService, cfg.MaxFileSize, logger)

	rateLimiter := ratelimit.NewRateLimiter(limiter, cfg.RateLimitRequests, cfg.RateLimitWindow, logger)
	adminHandler := handlers.NewAdminHandler(userService, store, rateLimiter, logger)

	router := createRouter(cfg)
	router.Use(rateLimiter.Middleware)

	// Health check endpoints
	router.Group(func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})

		r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
			if err := db.Ping(); err != nil {
				logger.Error("Database health check failed", zap.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte("Database connection failed"))
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Ready"))
		})

		r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Alive"))
		})
	})

	// Swagger UI
	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
		httpSwagger.DeepLinking(true),
		httpSwagger.PersistAuthorization(true),
	))

	router.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, "docs/swagger.json")
	})

	// Uploaded files
	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir)))
	router.Get("/uploads/*", func(w http.ResponseWriter, r *http.Request) {
		fileServer.ServeHTTP(w, r)
	})

	router.Route("/api", func(r chi.Router) {
		// Public routes
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", authHandler.RegisterHandler)
			r.Post("/auth/login", authHandler.LoginHandler)
			r.Post("/auth/refresh", authHandler.RefreshHandler)
			r.Post("/auth/verify-email", authHandler.VerifyEmailHandler)
			r.Post("/auth/resend-otp", otpHandler.ResendHandler)
			r.Get("/auth/otp-status", otpHandler.StatusHandler)
			r.Post("/auth/request-password-reset", authHandler.RequestPasswordResetHandler)
			r.Post("/auth/reset-password", authHandler.ResetPasswordHandler)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Verifier, authMiddleware.Authenticator)
			r.Get("/users/me", userHandler.GetProfileHandler)
			r.Put("/users/me", userHandler.UpdateProfileHandler)
			r.Post("/users/me/password", userHandler.ChangePasswordHandler)

			r.Post("/chats", chatHandler.CreateChatHandler)
			r.Get("/chats", chatHandler.ListChatsHandler)
			r.Get("/chats/{id}", chatHandler.GetChatHandler)
			r.Put("/chats/{id}", chatHandler.RenameChatHandler)
			r.Delete("/chats/{id}", chatHandler.DeleteChatHandler)
			r.Post("/chat/message", chatHandler.SendMessageHandler)

			r.Post("/upload", uploadHandler.UploadHandler)
		})

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Verifier, authMiddleware.Authenticator, authMiddleware.RequireRole("admin"))
			r.Get("/admin/users", adminHandler.ListUsersHandler)
			r.Put("/admin/users/{id}", adminHandler.UpdateUserHandler)
			r.Delete("/admin/users/{id}", adminHandler.DeactivateUserHandler)
			r.Get("/admin/stats", adminHandler.StatsHandler)
			r.Get("/admin/cache/stats", adminHandler.CacheStatsHandler)
			r.Get("/admin/limiter/stats", adminHandler.LimiterStatsHandler)
			r.Get("/admin/otp/stats", otpHandler.StatsHandler)
			r.Post("/admin/otp/cleanup", otpHandler.CleanupHandler)
			r.Post("/admin/otp/invalidate", otpHandler.InvalidateHandler)
		})
	})

	return &Router{router: router, db: db}, nil
}

func createRouter(cfg *config.Config) *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	return router
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
