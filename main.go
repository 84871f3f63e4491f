package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/username/nepsefolio/backend/src/cache"
	"github.com/username/nepsefolio/backend/src/config"
	"github.com/username/nepsefolio/backend/src/database"
	"github.com/username/nepsefolio/backend/src/handlers"
	"github.com/username/nepsefolio/backend/src/logger"
	"github.com/username/nepsefolio/backend/src/metrics"
	"github.com/username/nepsefolio/backend/src/quotes"
	"github.com/username/nepsefolio/backend/src/repository"
	"github.com/username/nepsefolio/backend/src/security"
	"github.com/username/nepsefolio/backend/src/services"
)

func main() {
	config.LoadConfig()
	cfg := config.Cfg
	logger.InitLogger(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})

	logger.L.Info("Nepsefolio backend server starting...")

	logger.L.Info("Initializing database...", "path", cfg.DatabasePath)
	database.InitDB(cfg.DatabasePath)
	if err := database.RunMigrations(database.DB); err != nil {
		logger.L.Error("Failed to apply migrations", "error", err)
		os.Exit(1)
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	store := cache.NewMemoryStore(cfg.CacheCleanupInterval, m)
	quoteService := quotes.NewService(quotes.NewHTTPSource(cfg.QuoteAPIURL, cfg.QuoteFetchTimeout), store, cfg.QuoteCacheTTL, m)
	repo := repository.New(database.DB)
	tokens := security.NewAuthService(cfg.JWTSecret, cfg.AccessTokenExpiry)

	authService := services.NewAuthService(repo, tokens)
	portfolioService := services.NewPortfolioService(repo, store, quoteService, cfg.UserCacheTTL)
	dividendService := services.NewDividendService(repo)
	watchlistService := services.NewWatchlistService(repo, store, quoteService, cfg.UserCacheTTL)
	demoService := services.NewDemoTradingService(repo, store, quoteService, cfg.UserCacheTTL)

	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:           handlers.NewAuthHandler(authService, tokens),
		Portfolios:     handlers.NewPortfolioHandler(portfolioService),
		Dividends:      handlers.NewDividendHandler(dividendService),
		Watchlist:      handlers.NewWatchlistHandler(watchlistService),
		DemoTrading:    handlers.NewDemoTradingHandler(demoService),
		Market:         handlers.NewMarketHandler(quoteService),
		Metrics:        m,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	serverAddr := ":" + cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.L.Info("Server starting", "address", serverAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			stdlog.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.L.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L.Error("Graceful shutdown failed", "error", err)
	}
	if err := database.DB.Close(); err != nil {
		logger.L.Error("Failed to close database", "error", err)
	}
}
