// Package dexscreener contains the client for the DexScreener aggregator API.
// It fetches trading pairs per token and collapses multi-exchange data into a
// single best pair by liquidity.
package dexscreener

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// batchSize is the maximum number of addresses the /tokens/v1 endpoint
// accepts per call
const batchSize = 30

const maxResponseSize = 10 * 1024 * 1024

// Token identifies one side of a trading pair
type Token struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// Liquidity holds pool liquidity figures
type Liquidity struct {
	USD   float64 `json:"usd"`
	Base  float64 `json:"base"`
	Quote float64 `json:"quote"`
}

// TxnCount holds buy/sell transaction counts for one window
type TxnCount struct {
	Buys  int `json:"buys"`
	Sells int `json:"sells"`
}

// PairInfo holds optional display metadata for a pair
type PairInfo struct {
	ImageURL string `json:"imageUrl,omitempty"`
	Websites []struct {
		URL string `json:"url"`
	} `json:"websites,omitempty"`
	Socials []struct {
		Platform string `json:"platform"`
		Handle   string `json:"handle"`
	} `json:"socials,omitempty"`
}

// Pair is one trading venue for a token as reported by DexScreener
type Pair struct {
	ChainID       string              `json:"chainId"`
	DexID         string              `json:"dexId"`
	URL           string              `json:"url"`
	PairAddress   string              `json:"pairAddress"`
	Labels        []string            `json:"labels,omitempty"`
	BaseToken     Token               `json:"baseToken"`
	QuoteToken    Token               `json:"quoteToken"`
	PriceNative   string              `json:"priceNative"`
	PriceUSD      string              `json:"priceUsd"`
	Txns          map[string]TxnCount `json:"txns,omitempty"`
	Volume        map[string]float64  `json:"volume,omitempty"`
	PriceChange   map[string]float64  `json:"priceChange,omitempty"`
	Liquidity     *Liquidity          `json:"liquidity,omitempty"`
	FDV           float64             `json:"fdv,omitempty"`
	MarketCap     float64             `json:"marketCap,omitempty"`
	PairCreatedAt int64               `json:"pairCreatedAt,omitempty"`
	Info          *PairInfo           `json:"info,omitempty"`
}

// LiquidityUSD returns the pair's USD liquidity, zero when unreported
func (p *Pair) LiquidityUSD() float64 {
	if p.Liquidity == nil {
		return 0
	}
	return p.Liquidity.USD
}

// VolumeH24 returns the pair's 24h volume, zero when unreported
func (p *Pair) VolumeH24() float64 {
	return p.Volume["h24"]
}

// PriceChangeH24 returns the pair's 24h price change percent, zero when
// unreported
func (p *Pair) PriceChangeH24() float64 {
	return p.PriceChange["h24"]
}

type pairsResponse struct {
	SchemaVersion string `json:"schemaVersion"`
	Pairs         []Pair `json:"pairs"`
}

// Client calls the DexScreener API with rate limiting and a circuit breaker
type Client struct {
	baseURL        string
	httpClient     *http.Client
	rateLimiter    *rate.Limiter
	circuitBreaker *gobreaker.CircuitBreaker
}

// NewClient creates a DexScreener API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// 5 req/s sustained, burst of 10 - stays under the public API limits
		rateLimiter: rate.NewLimiter(rate.Limit(5), 10),
		circuitBreaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "DexScreenerAPI",
			MaxRequests: 3,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 5
			},
		}),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// getRaw performs a GET through the rate limiter and circuit breaker,
// returning the raw response body
func (c *Client) getRaw(ctx context.Context, url string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	body, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to perform request: %w", err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(raw))
		}
		return raw, nil
	})
	if err != nil {
		return nil, err
	}
	return body.([]byte), nil
}

// getJSON performs a GET and decodes the response body into dest
func (c *Client) getJSON(ctx context.Context, url string, dest interface{}) error {
	raw, err := c.getRaw(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// GetTokenPairs fetches all trading pairs for one token address
func (c *Client) GetTokenPairs(ctx context.Context, chainID, tokenAddress string) ([]Pair, error) {
	url := fmt.Sprintf("%s/token-pairs/v1/%s/%s", c.baseURL, chainID, tokenAddress)

	raw, err := c.getRaw(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("GetTokenPairs: %w", err)
	}

	// The token-pairs endpoint returns a bare array; older deployments wrap
	// it in {pairs: [...]}. Accept both.
	var pairs []Pair
	if err := json.Unmarshal(raw, &pairs); err == nil {
		return pairs, nil
	}

	var wrapped pairsResponse
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("GetTokenPairs: failed to unmarshal response: %w", err)
	}
	return wrapped.Pairs, nil
}

// GetMultipleTokenPairs fetches pairs for many token addresses in batches,
// keyed by lowercased base-token address. Batches that fail fall back to
// individual lookups; tokens that still fail are simply absent from the map.
func (c *Client) GetMultipleTokenPairs(ctx context.Context, chainID string, tokenAddresses []string) map[string][]Pair {
	results := make(map[string][]Pair)

	for start := 0; start < len(tokenAddresses); start += batchSize {
		end := start + batchSize
		if end > len(tokenAddresses) {
			end = len(tokenAddresses)
		}
		batch := tokenAddresses[start:end]

		url := fmt.Sprintf("%s/tokens/v1/%s/%s", c.baseURL, chainID, strings.Join(batch, ","))

		var pairs []Pair
		if err := c.getJSON(ctx, url, &pairs); err != nil {
			log.Printf("⚠️  DexScreener batch lookup failed, falling back to individual requests: %v", err)
			c.fetchIndividually(ctx, chainID, batch, results)
			continue
		}

		for _, pair := range pairs {
			key := strings.ToLower(pair.BaseToken.Address)
			results[key] = append(results[key], pair)
		}
	}

	return results
}

func (c *Client) fetchIndividually(ctx context.Context, chainID string, addresses []string, results map[string][]Pair) {
	for _, address := range addresses {
		pairs, err := c.GetTokenPairs(ctx, chainID, address)
		if err != nil {
			continue
		}
		results[strings.ToLower(address)] = pairs
	}
}
