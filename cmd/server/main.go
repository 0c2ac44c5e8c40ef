package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openshelf/libris/internal/cache"
	"github.com/openshelf/libris/internal/config"
	"github.com/openshelf/libris/internal/database"
	"github.com/openshelf/libris/internal/handler"
	"github.com/openshelf/libris/internal/jobs"
	"github.com/openshelf/libris/internal/middleware"
	"github.com/openshelf/libris/internal/repository"
	"github.com/openshelf/libris/internal/service"
	"github.com/openshelf/libris/pkg/jwt"
)

func main() {
	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})

	ctx := context.Background()
	if err := db.Connect(ctx); err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	slog.Info("connected to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Database),
	)

	// In development, generate a signing key pair on first run so the
	// server starts without manual key provisioning
	if cfg.IsDevelopment() {
		if _, statErr := os.Stat(cfg.JWT.PrivateKeyPath); os.IsNotExist(statErr) {
			slog.Info("generating development signing keys",
				slog.String("private_key", cfg.JWT.PrivateKeyPath),
			)
			if err := jwt.GenerateKeyPair(cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath); err != nil {
				slog.Error("failed to generate signing keys", slog.String("error", err.Error()))
				os.Exit(1)
			}
		}
	}

	// Initialize JWT service
	jwtService, err := jwt.NewService(jwt.Config{
		PrivateKeyPath: cfg.JWT.PrivateKeyPath,
		PublicKeyPath:  cfg.JWT.PublicKeyPath,
		Issuer:         cfg.JWT.Issuer,
		ExpirationMins: cfg.JWT.ExpirationMins,
	})
	if err != nil {
		slog.Error("failed to initialize JWT service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize read cache for catalog and member listings
	store := cache.NewStore(cache.Config{TTL: cfg.Cache.TTL})
	defer store.Stop()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	bookRepo := repository.NewBookRepository(db)
	loanRepo := repository.NewLoanRepository(db)

	// Initialize services
	tokenService := service.NewTokenService(jwtService)

	authService := service.NewAuthService(service.AuthServiceConfig{
		UserRepo:     userRepo,
		TokenService: tokenService,
		Cache:        store,
	})

	userService := service.NewUserService(userRepo, store)
	bookService := service.NewBookService(bookRepo, store)

	loanService := service.NewLoanService(service.LoanServiceConfig{
		LoanRepo: loanRepo,
		BookRepo: bookRepo,
		UserRepo: userRepo,
		Cache:    store,
		MaxOpen:  cfg.Loan.MaxOpen,
		Period:   cfg.Loan.LoanPeriod(),
	})

	// Background overdue reporting
	overdueScanner := jobs.NewOverdueScanner(loanService, cfg.Loan.OverdueScanEvery)
	overdueScanner.Start()
	defer overdueScanner.Stop()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	bookHandler := handler.NewBookHandler(bookService)
	loanHandler := handler.NewLoanHandler(loanService)

	// Login throttling protects against credential stuffing
	loginLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Rate:   cfg.RateLimit.LoginRequests,
		Window: cfg.RateLimit.LoginWindow,
		Burst:  1,
	})
	defer loginLimiter.Stop()

	authMiddleware := middleware.Auth(tokenService)
	adminMiddleware := func(h http.Handler) http.Handler {
		return authMiddleware(middleware.AdminOnly(h))
	}

	// Create router and register routes
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /health", handler.Health)

	// Auth endpoints (public)
	mux.HandleFunc("POST /v1/auth/register", authHandler.Register)
	mux.Handle("POST /v1/auth/login", middleware.RateLimit(loginLimiter)(http.HandlerFunc(authHandler.Login)))

	// Auth endpoints (protected)
	mux.Handle("PATCH /v1/auth/password", authMiddleware(http.HandlerFunc(authHandler.ChangePassword)))

	// Catalog endpoints
	mux.HandleFunc("GET /v1/books", bookHandler.List)
	mux.HandleFunc("GET /v1/books/{bookId}", bookHandler.Get)
	mux.Handle("POST /v1/books", adminMiddleware(http.HandlerFunc(bookHandler.Create)))
	mux.Handle("PATCH /v1/books/{bookId}", adminMiddleware(http.HandlerFunc(bookHandler.Update)))

	// Member endpoints
	mux.Handle("GET /v1/users", adminMiddleware(http.HandlerFunc(userHandler.List)))
	mux.Handle("GET /v1/users/{userId}", adminMiddleware(http.HandlerFunc(userHandler.Get)))
	mux.Handle("PATCH /v1/users/{userId}", authMiddleware(http.HandlerFunc(userHandler.Update)))

	// Loan endpoints
	mux.Handle("POST /v1/loans", authMiddleware(http.HandlerFunc(loanHandler.Create)))
	mux.Handle("GET /v1/loans", adminMiddleware(http.HandlerFunc(loanHandler.List)))
	mux.Handle("GET /v1/loans/{loanId}", authMiddleware(http.HandlerFunc(loanHandler.Get)))
	mux.Handle("POST /v1/loans/{loanId}/return", authMiddleware(http.HandlerFunc(loanHandler.Return)))
	mux.Handle("GET /v1/users/{userId}/loans", authMiddleware(http.HandlerFunc(loanHandler.ListForUser)))

	// Apply global middleware
	wrapped := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.Compress,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}
