package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"tonpulse/auth"
	"tonpulse/cache"
	"tonpulse/database/alerts"
	models "tonpulse/database/models_pkg"
	"tonpulse/database/sentiment"
	"tonpulse/dexscreener"
	"tonpulse/notifications"
	"tonpulse/realtime"
	"tonpulse/tonapi"
)

// SentimentStore defines the sentiment operations the handlers need
type SentimentStore interface {
	GetSentiment(ctx context.Context, tokenAddress string) (*models.Sentiment, error)
	GetAllSentiments(ctx context.Context) ([]models.Sentiment, error)
	EnsureSentiments(ctx context.Context, addresses []string) error
	SubmitVote(ctx context.Context, tokenAddress, userID, choice string) (*models.Sentiment, error)
	GetUserVote(ctx context.Context, tokenAddress, userID string) (*models.Vote, error)
	AggregateStats(ctx context.Context) (sentiment.Stats, error)
}

// WatchlistStore defines the watchlist operations the handlers need
type WatchlistStore interface {
	Add(ctx context.Context, userID, tokenAddress string) error
	Remove(ctx context.Context, userID, tokenAddress string) error
	List(ctx context.Context, userID string) ([]string, error)
}

// AlertStore defines the alert operations the handlers need
type AlertStore interface {
	SetAlert(ctx context.Context, userID, tokenAddress, kind string, enabled bool, tokenSymbol, tokenName string) (*models.AlertHistoryEntry, error)
	GetAlert(ctx context.Context, userID, tokenAddress, kind string) (bool, error)
	GetUserAlerts(ctx context.Context, userID string) (map[string]alerts.Flags, error)
	GetAlertHistory(ctx context.Context, userID string, limit int) ([]models.AlertHistoryEntry, error)
}

// Options bundles the server dependencies
type Options struct {
	Sentiments SentimentStore
	Watchlists WatchlistStore
	Alerts     AlertStore
	Cache      cache.Store
	Dex        *dexscreener.Client
	Ton        *tonapi.Client
	Broker     *realtime.Broker
	Notifier   *notifications.WebhookManager
	Resolver   *auth.Resolver

	Contracts        []string
	ChainID          string
	CacheTTL         time.Duration
	TonPriceFallback float64
}

// Server handles HTTP API requests
type Server struct {
	sentiments SentimentStore
	watchlists WatchlistStore
	alerts     AlertStore
	cache      cache.Store
	dex        *dexscreener.Client
	ton        *tonapi.Client
	broker     *realtime.Broker
	notifier   *notifications.WebhookManager
	resolver   *auth.Resolver

	contracts        []string
	chainID          string
	cacheTTL         time.Duration
	tonPriceFallback float64

	httpServer *http.Server
}

// NewServer creates a new API server instance
func NewServer(opts Options) *Server {
	return &Server{
		sentiments:       opts.Sentiments,
		watchlists:       opts.Watchlists,
		alerts:           opts.Alerts,
		cache:            opts.Cache,
		dex:              opts.Dex,
		ton:              opts.Ton,
		broker:           opts.Broker,
		notifier:         opts.Notifier,
		resolver:         opts.Resolver,
		contracts:        opts.Contracts,
		chainID:          opts.ChainID,
		cacheTTL:         opts.CacheTTL,
		tonPriceFallback: opts.TonPriceFallback,
	}
}

// Start starts the HTTP server on the specified port
func (s *Server) Start(port int) error {
	mux := http.NewServeMux()

	// Token market data
	mux.HandleFunc("GET /api/tokens", s.handleGetTokens)
	mux.HandleFunc("GET /api/tokens/{address}", s.handleGetToken)

	// Sentiment voting
	mux.HandleFunc("GET /api/tokens/{address}/sentiment", s.handleGetSentiment)
	mux.HandleFunc("POST /api/tokens/{address}/sentiment", s.handleSubmitVote)
	mux.HandleFunc("GET /api/tokens/{address}/vote-status", s.handleVoteStatus)
	mux.HandleFunc("GET /api/sentiment/all", s.handleGetAllSentiments)

	// Watchlist
	mux.HandleFunc("GET /api/watchlist", s.handleGetWatchlist)
	mux.HandleFunc("POST /api/watchlist", s.handleUpdateWatchlist)

	// Alerts
	mux.HandleFunc("GET /api/alerts", s.handleGetAlerts)
	mux.HandleFunc("POST /api/alerts", s.handleSetAlert)
	mux.HandleFunc("GET /api/alerts/history", s.handleGetAlertHistory)

	// Portfolio
	mux.HandleFunc("GET /api/portfolio", s.handleGetPortfolio)

	// Live sentiment updates
	mux.Handle("GET /api/events", s.broker)
	mux.HandleFunc("GET /api/events/ws", s.broker.ServeWS)

	mux.HandleFunc("GET /health", s.handleHealth)

	// Add middleware
	handler := s.corsMiddleware(s.loggingMiddleware(mux))

	serverAddr := fmt.Sprintf("0.0.0.0:%d", port)
	s.httpServer = &http.Server{
		Addr:              serverAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("🚀 API Server starting on %s", serverAddr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-ID, "+auth.InitDataHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s (%v)", r.Method, r.URL.Path, time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
