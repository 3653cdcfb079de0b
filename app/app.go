// Package app wires the tonpulse backend together: database, cache, upstream
// clients, repositories and the HTTP API server.
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"tonpulse/api"
	"tonpulse/auth"
	"tonpulse/cache"
	"tonpulse/config"
	"tonpulse/database"
	"tonpulse/database/alerts"
	"tonpulse/database/sentiment"
	"tonpulse/database/watchlist"
	"tonpulse/dexscreener"
	"tonpulse/notifications"
	"tonpulse/realtime"
	"tonpulse/tonapi"
)

// App owns the long-lived components and their shutdown order
type App struct {
	cfg    *config.Config
	db     *database.Database
	store  cache.Store
	server *api.Server
	broker *realtime.Broker
}

// New builds the application from configuration. Fails fast on database
// problems; degrades to the in-memory cache when Redis is unavailable.
func New(cfg *config.Config) (*App, error) {
	dbPort, err := strconv.Atoi(cfg.DatabasePort)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT %q: %w", cfg.DatabasePort, err)
	}

	db, err := database.Connect(cfg.DatabaseHost, dbPort, cfg.DatabaseName, cfg.DatabaseUser, cfg.DatabasePassword)
	if err != nil {
		return nil, err
	}
	log.Println("✅ Connected to database")

	if err := db.InitSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	log.Println("✅ Database schema ready")

	var store cache.Store
	if redisStore := cache.NewRedisStore(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword); redisStore != nil {
		store = redisStore
	} else {
		log.Println("⚠️  Falling back to in-memory cache")
		store = cache.NewMemoryStore()
	}

	broker := realtime.NewBroker()

	sentimentRepo := sentiment.NewRepository(db.DB())
	watchlistRepo := watchlist.NewRepository(db.DB())
	alertRepo := alerts.NewRepository(db.DB())

	notifier := notifications.NewWebhookManager(cfg.AlertWebhookURL)
	if notifier.Enabled() {
		log.Println("✅ Alert webhook notifications enabled")
	}

	resolver := auth.NewResolver(cfg.TelegramBotToken)
	if resolver.VerificationEnabled() {
		log.Println("✅ Telegram init data verification enabled")
	}

	server := api.NewServer(api.Options{
		Sentiments: sentimentRepo,
		Watchlists: watchlistRepo,
		Alerts:     alertRepo,
		Cache:      store,
		Dex:        dexscreener.NewClient(cfg.DexScreenerBaseURL),
		Ton:        tonapi.NewClient(cfg.TonAPIBaseURL),
		Broker:     broker,
		Notifier:   notifier,
		Resolver:   resolver,

		Contracts:        cfg.Contracts,
		ChainID:          cfg.ChainID,
		CacheTTL:         time.Duration(cfg.CacheTTLSeconds) * time.Second,
		TonPriceFallback: cfg.TonPriceFallback,
	})

	return &App{
		cfg:    cfg,
		db:     db,
		store:  store,
		server: server,
		broker: broker,
	}, nil
}

// Start runs the broker and HTTP server until SIGINT/SIGTERM, then shuts
// down gracefully
func (a *App) Start() error {
	go a.broker.Run()

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start(a.cfg.APIPort)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Printf("Received signal %v, shutting down...", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil {
		log.Printf("⚠️  Server shutdown: %v", err)
	}

	if closer, ok := a.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Printf("⚠️  Cache close: %v", err)
		}
	}

	if err := a.db.Close(); err != nil {
		log.Printf("⚠️  Database close: %v", err)
	}

	log.Println("✅ Shutdown complete")
	return nil
}
