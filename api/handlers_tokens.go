package api

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"tonpulse/dexscreener"
	"tonpulse/tonapi"
)

// TokenEntry is one token's market data as returned by the tokens endpoints
type TokenEntry struct {
	Address  string                 `json:"address"`
	Pair     *dexscreener.Pair      `json:"pair"`
	Pairs    []dexscreener.Pair     `json:"pairs"`
	Metadata *tonapi.JettonMetadata `json:"metadata,omitempty"`
}

type tokensResponse struct {
	Tokens     []TokenEntry `json:"tokens"`
	ChainID    string       `json:"chainId"`
	Pagination pagination   `json:"pagination"`
	Stats      tokenStats   `json:"stats"`
	Timestamp  time.Time    `json:"timestamp"`
}

type pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
}

type tokenStats struct {
	Total       int `json:"total"`
	WithData    int `json:"withData"`
	WithoutData int `json:"withoutData"`
}

// chainParam returns the chain to query, defaulting to the configured chain
func (s *Server) chainParam(r *http.Request) string {
	if chain := strings.TrimSpace(r.URL.Query().Get("chainId")); chain != "" {
		return chain
	}
	return s.chainID
}

func (s *Server) handleGetTokens(w http.ResponseWriter, r *http.Request) {
	if len(s.contracts) == 0 {
		respondWithError(w, http.StatusBadRequest, "No token contracts configured", nil)
		return
	}

	chainID := s.chainParam(r)
	limit := getIntParam(r, "limit", 50, intPtr(1), intPtr(100))
	offset := getIntParam(r, "offset", 0, intPtr(0), nil)

	total := len(s.contracts)
	if offset >= total {
		respondJSON(w, http.StatusOK, tokensResponse{
			Tokens:     []TokenEntry{},
			ChainID:    chainID,
			Pagination: pagination{Limit: limit, Offset: offset, Total: total},
			Stats:      tokenStats{Total: total},
			Timestamp:  time.Now().UTC(),
		})
		return
	}

	end := offset + limit
	if end > total {
		end = total
	}
	page := s.contracts[offset:end]

	cacheKey := tokensCacheKey(chainID, offset, limit, page)
	var cached tokensResponse
	if s.cache.Get(r.Context(), cacheKey, &cached) {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	pairsByToken := s.dex.GetMultipleTokenPairs(r.Context(), chainID, page)
	metadataByToken := s.ton.GetMultipleJettonMetadata(r.Context(), page)

	tokens := make([]TokenEntry, 0, len(page))
	withData := 0
	for _, addr := range page {
		key := strings.ToLower(addr)
		pairs := pairsByToken[key]
		entry := TokenEntry{
			Address:  addr,
			Pair:     dexscreener.BestPair(pairs),
			Pairs:    pairs,
			Metadata: metadataByToken[key],
		}
		if entry.Pair != nil {
			withData++
		}
		tokens = append(tokens, entry)
	}

	resp := tokensResponse{
		Tokens:  tokens,
		ChainID: chainID,
		Pagination: pagination{
			Limit:   limit,
			Offset:  offset,
			Total:   total,
			HasMore: end < total,
		},
		Stats: tokenStats{
			Total:       len(page),
			WithData:    withData,
			WithoutData: len(page) - withData,
		},
		Timestamp: time.Now().UTC(),
	}

	s.cache.Set(r.Context(), cacheKey, resp, s.cacheTTL)
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetToken(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.PathValue("address"))
	if address == "" {
		respondWithError(w, http.StatusBadRequest, "Token address is required", nil)
		return
	}
	address = tonapi.Normalize(address)

	chainID := s.chainParam(r)
	cacheKey := fmt.Sprintf("token:%s:%s", chainID, strings.ToLower(address))
	var cached TokenEntry
	if s.cache.Get(r.Context(), cacheKey, &cached) {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	pairs, err := s.dex.GetTokenPairs(r.Context(), chainID, address)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to fetch token pairs", err)
		return
	}

	metadata, err := s.ton.GetJettonMetadata(r.Context(), address)
	if err != nil {
		// Market data alone is still a useful answer
		metadata = nil
	}

	if len(pairs) == 0 && metadata == nil {
		respondWithError(w, http.StatusNotFound, "Token not found", nil)
		return
	}

	entry := TokenEntry{
		Address:  address,
		Pair:     dexscreener.BestPair(pairs),
		Pairs:    pairs,
		Metadata: metadata,
	}

	s.cache.Set(r.Context(), cacheKey, entry, s.cacheTTL)
	respondJSON(w, http.StatusOK, entry)
}

// tokensCacheKey builds a stable key for one page of the token list. The
// address set is sorted so the key does not depend on config ordering.
func tokensCacheKey(chainID string, offset, limit int, addresses []string) string {
	sorted := make([]string, len(addresses))
	for i, addr := range addresses {
		sorted[i] = strings.ToLower(addr)
	}
	sort.Strings(sorted)
	return fmt.Sprintf("tokens:%s:%d:%d:%s", chainID, offset, limit, strings.Join(sorted, ","))
}
