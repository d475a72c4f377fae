package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pekatete/electrumsv/internal/fx"
	"github.com/pekatete/electrumsv/internal/history"
	"github.com/pekatete/electrumsv/internal/infra/gateway/coingecko"
	"github.com/pekatete/electrumsv/internal/infra/postgres"
	infraRedis "github.com/pekatete/electrumsv/internal/infra/redis"
	"github.com/pekatete/electrumsv/internal/settings"
	"github.com/pekatete/electrumsv/internal/transport/httpapi"
	"github.com/pekatete/electrumsv/internal/transport/httpapi/handler"
	"github.com/pekatete/electrumsv/internal/transport/httpapi/middleware"
	walletpg "github.com/pekatete/electrumsv/internal/wallet/postgres"
	"github.com/pekatete/electrumsv/pkg/config"
	"github.com/pekatete/electrumsv/pkg/logger"
)

func main() {
	// Create context that listens for termination signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewDefault(cfg.Env)
	log.Info("Starting wallet history API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"network", cfg.Network,
	)

	// Load network configuration (explorer links, display units)
	networksCfg, err := config.LoadNetworksConfig(cfg.NetworksPath)
	if err != nil {
		log.Error("Failed to load networks config", "error", err)
		os.Exit(1)
	}
	network, ok := networksCfg.GetNetwork(cfg.Network)
	if !ok {
		log.Error("Unsupported network", "network", cfg.Network)
		os.Exit(1)
	}

	// Initialize database connection pool
	db, err := postgres.NewPool(ctx, postgres.Config{URL: cfg.DatabaseURL})
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("Database connection established")

	// Wallet store over the shared pool
	walletStore := walletpg.NewStore(db.Pool)

	// History view service, populated from the store at startup
	historySvc := history.NewService(walletStore, log)
	if _, err := historySvc.Resync(ctx); err != nil {
		log.Error("Failed to load wallet history", "error", err)
		os.Exit(1)
	}
	log.Info("History view loaded", "rows", historySvc.RowCount(), "tip", historySvc.ChainTip())

	// Fiat valuation is optional: it needs both Redis and a CoinGecko key.
	var (
		fiatSvc   *fx.Service
		rateCache *infraRedis.Cache
	)
	if cfg.CoinGeckoAPIKey != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisURL,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		log.Info("Redis connection established")

		rateCache = infraRedis.NewCache(redisClient, log)
		fiatSvc = fx.NewService(coingecko.NewClient(cfg.CoinGeckoAPIKey), rateCache, log)
		log.Info("Fiat valuation enabled")
	} else {
		log.Warn("COINGECKO_API_KEY not configured, fiat valuation disabled")
	}

	// Runtime display settings
	settingsStore := settings.NewStore()

	// JWT auth for the event and settings endpoints
	jwtSvc := middleware.NewJWTService(cfg.JWTSecret)

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(cfg.APIUser, cfg.APIPasswordHash, jwtSvc)
	var valuer handler.FiatValuer
	if fiatSvc != nil {
		valuer = fiatSvc
	}
	historyHandler := handler.NewHistoryHandler(historySvc, walletStore, valuer, *network)
	eventHandler := handler.NewEventHandler(walletStore, historySvc)
	settingsHandler := handler.NewSettingsHandler(settingsStore, historySvc)
	var cachePinger handler.CachePinger
	if rateCache != nil {
		cachePinger = rateCache
	}
	healthHandler := handler.NewHealthHandler(db, cachePinger)

	// Determine allowed origins for CORS
	allowedOrigins := []string{"http://localhost:5173"}
	if cfg.IsProduction() {
		if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
			allowedOrigins = []string{origins}
		}
	}

	// Create HTTP router
	r := httpapi.NewRouter(httpapi.Config{
		Logger:          log,
		AllowedOrigins:  allowedOrigins,
		AuthHandler:     authHandler,
		HistoryHandler:  historyHandler,
		EventHandler:    eventHandler,
		SettingsHandler: settingsHandler,
		HealthHandler:   healthHandler,
		JWTMiddleware:   middleware.JWTMiddleware(jwtSvc),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for termination signal
	<-ctx.Done()
	log.Info("Shutdown signal received")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("Server stopped gracefully")
}
