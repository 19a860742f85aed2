package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/te5in/gradecore/internal/analytics"
	"github.com/te5in/gradecore/internal/cache"
	"github.com/te5in/gradecore/internal/config"
	"github.com/te5in/gradecore/internal/database"
	"github.com/te5in/gradecore/internal/errors"
	"github.com/te5in/gradecore/internal/monitoring"
	"github.com/te5in/gradecore/internal/ratelimit"
	"github.com/te5in/gradecore/internal/security"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()

	db, err := database.NewDB(cfg.Database.DataDir)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := database.NewRepository(db)

	appMetrics := monitoring.NewMetrics()
	appLogger := monitoring.NewLogger()

	svc := analytics.NewService(repo, appLogger, appMetrics)

	redisClient, err := ratelimit.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		slog.Warn("Redis unavailable, rate limiting falls back to in-memory buckets", "error", err)
	}
	limiter := ratelimit.NewRateLimiter(redisClient, ratelimit.Config{
		IPLimitPerMin:   cfg.RateLimit.IPLimitPerMin,
		BurstMultiplier: cfg.RateLimit.BurstMultiplier,
	})

	appCache := cache.NewCache(cfg.Cache.TTL)

	r := gin.New()

	r.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining"},
	}))

	r.Use(monitoring.MonitoringMiddleware(appMetrics, appLogger))
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())

	securityMiddleware := security.NewMiddleware(security.Config{
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
	})
	r.Use(securityMiddleware.SecurityHeaders)
	r.Use(securityMiddleware.RequestTimeout)
	r.Use(securityMiddleware.LimitBodySize)

	r.Use(limiter.IPRateLimitMiddleware())
	r.Use(appCache.Middleware(appMetrics, "/api/v1/assignments"))

	server := newServer(cfg, repo, svc, appCache, appMetrics, appLogger)
	server.registerRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}
