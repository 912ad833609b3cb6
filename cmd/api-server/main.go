package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"bookreview/database"
	"bookreview/internal/config"
	"bookreview/internal/httpapi/handler"
	"bookreview/internal/httpapi/middleware"
	"bookreview/internal/httpapi/repository"
	"bookreview/internal/httpapi/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := newLogger(cfg)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	blacklist, err := repository.NewRedisTokenBlacklist(cfg.RedisAddr, cfg.RedisPassword, cfg.BlacklistTTL)
	if err != nil {
		logger.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	bookRepo := repository.NewBookRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	// Services
	authService := service.NewAuthService(userRepo, blacklist, cfg)
	bookService := service.NewBookService(bookRepo, reviewRepo)
	reviewService := service.NewReviewService(reviewRepo)

	// Handlers
	userHandler := handler.NewUserHandler(authService)
	bookHandler := handler.NewBookHandler(bookService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	searchHandler := handler.NewSearchHandler(bookService)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Book review API is alive"})
	})

	authGate := middleware.AuthMiddleware(authService)
	// 10 credential attempts per minute per IP, small burst
	credentialLimiter := middleware.RateLimit(rate.Every(6*time.Second), 5)

	userHandler.RegisterRoutes(r.Group("/users"), authGate, credentialLimiter)

	api := r.Group("/api")
	bookHandler.RegisterRoutes(api.Group("/books", authGate))
	reviewHandler.RegisterRoutes(api.Group("/reviews", authGate))
	searchHandler.RegisterRoutes(api.Group("/search", authGate))

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info("server starting", "addr", addr)
	if err := r.Run(addr); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
