// Package tonapi contains the client for the TonAPI blockchain indexer.
// It resolves jetton metadata and wallet balances; price data comes from the
// dexscreener package.
package tonapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const maxResponseSize = 10 * 1024 * 1024

// metadataFanout bounds the parallel metadata lookups in
// GetMultipleJettonMetadata
const metadataFanout = 8

// FlexInt decodes JSON numbers that some indexer responses quote as strings
// (jetton decimals in particular)
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	trimmed := bytes.Trim(data, `"`)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.Atoi(string(trimmed))
	if err != nil {
		return fmt.Errorf("invalid integer %q: %w", string(data), err)
	}
	*f = FlexInt(v)
	return nil
}

// JettonMetadata describes one jetton contract
type JettonMetadata struct {
	Address     string  `json:"address"`
	Name        string  `json:"name"`
	Symbol      string  `json:"symbol"`
	Decimals    FlexInt `json:"decimals"`
	Image       string  `json:"image,omitempty"`
	Description string  `json:"description,omitempty"`
}

// WalletJetton is one jetton holding of a wallet, with the raw integer
// balance as reported by the chain
type WalletJetton struct {
	Address  string          `json:"address"`
	Balance  string          `json:"balance"`
	Metadata *JettonMetadata `json:"metadata,omitempty"`
}

type jettonResponse struct {
	Metadata *JettonMetadata `json:"metadata"`
}

type walletJettonsResponse struct {
	Balances []struct {
		Balance string `json:"balance"`
		Jetton  *struct {
			Address  string          `json:"address"`
			Metadata *JettonMetadata `json:"metadata"`
		} `json:"jetton"`
	} `json:"balances"`
}

type accountResponse struct {
	Balance *int64 `json:"balance"`
	Status  string `json:"status"`
}

// Client calls the TonAPI indexer with rate limiting and a circuit breaker
type Client struct {
	baseURL        string
	httpClient     *http.Client
	rateLimiter    *rate.Limiter
	circuitBreaker *gobreaker.CircuitBreaker
}

// NewClient creates a TonAPI client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		rateLimiter: rate.NewLimiter(rate.Limit(5), 10),
		circuitBreaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "TonAPI",
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

// getJSON performs a GET through the rate limiter and circuit breaker,
// decoding the response body into dest
func (c *Client) getJSON(ctx context.Context, path string, dest interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}

	_, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to perform request: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(body))
		}
		if err := json.Unmarshal(body, dest); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response: %w", err)
		}
		return nil, nil
	})
	return err
}

// GetJettonMetadata fetches metadata for one jetton contract, trying the
// /metadata sub-path when the primary endpoint has no data
func (c *Client) GetJettonMetadata(ctx context.Context, address string) (*JettonMetadata, error) {
	var primary jettonResponse
	err := c.getJSON(ctx, fmt.Sprintf("/jettons/%s", address), &primary)
	if err == nil && primary.Metadata != nil {
		meta := *primary.Metadata
		meta.Address = address
		if meta.Decimals == 0 {
			meta.Decimals = 9
		}
		return &meta, nil
	}

	var fallback jettonResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/jettons/%s/metadata", address), &fallback); err != nil {
		return nil, fmt.Errorf("GetJettonMetadata: %w", err)
	}
	if fallback.Metadata == nil {
		return nil, fmt.Errorf("GetJettonMetadata: no metadata for %s", address)
	}
	meta := *fallback.Metadata
	meta.Address = address
	if meta.Decimals == 0 {
		meta.Decimals = 9
	}
	return &meta, nil
}

// GetMultipleJettonMetadata fetches metadata for many jettons with bounded
// parallelism, keyed by lowercased address. Tokens whose lookup fails are
// absent from the map.
func (c *Client) GetMultipleJettonMetadata(ctx context.Context, addresses []string) map[string]*JettonMetadata {
	results := make(map[string]*JettonMetadata, len(addresses))

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, metadataFanout)

	for _, address := range addresses {
		wg.Add(1)
		go func(address string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			meta, err := c.GetJettonMetadata(ctx, address)
			if err != nil {
				return
			}
			mu.Lock()
			results[strings.ToLower(address)] = meta
			mu.Unlock()
		}(address)
	}
	wg.Wait()

	return results
}

// GetWalletJettons fetches the jetton balances of a wallet, walking the
// candidate address forms until one resolves
func (c *Client) GetWalletJettons(ctx context.Context, walletAddress string) ([]WalletJetton, error) {
	var lastErr error
	for _, form := range CandidateForms(walletAddress) {
		var resp walletJettonsResponse
		if err := c.getJSON(ctx, fmt.Sprintf("/accounts/%s/jettons", form), &resp); err != nil {
			lastErr = err
			continue
		}

		jettons := make([]WalletJetton, 0, len(resp.Balances))
		for _, item := range resp.Balances {
			j := WalletJetton{Balance: item.Balance}
			if j.Balance == "" {
				j.Balance = "0"
			}
			if item.Jetton != nil {
				j.Address = item.Jetton.Address
				j.Metadata = item.Jetton.Metadata
			}
			jettons = append(jettons, j)
		}
		return jettons, nil
	}
	return nil, fmt.Errorf("GetWalletJettons: %w", lastErr)
}

// GetTonBalance returns a wallet's native TON balance in whole TON, trying
// the accounts endpoint first and the blockchain endpoint as fallback.
// Uninitialized accounts still report their balance.
func (c *Client) GetTonBalance(ctx context.Context, walletAddress string) (float64, error) {
	paths := []string{"/accounts/%s", "/blockchain/accounts/%s"}

	var lastErr error
	for _, form := range CandidateForms(walletAddress) {
		for _, path := range paths {
			var resp accountResponse
			if err := c.getJSON(ctx, fmt.Sprintf(path, form), &resp); err != nil {
				lastErr = err
				continue
			}
			if resp.Balance == nil {
				continue
			}
			return float64(*resp.Balance) / 1e9, nil
		}
	}
	if lastErr != nil {
		return 0, fmt.Errorf("GetTonBalance: %w", lastErr)
	}
	return 0, fmt.Errorf("GetTonBalance: no balance reported for %s", walletAddress)
}
