package api

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"tonpulse/dexscreener"
	"tonpulse/portfolio"
	"tonpulse/tonapi"
)

func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	wallet := strings.TrimSpace(r.URL.Query().Get("walletAddress"))
	if wallet == "" {
		wallet = strings.TrimSpace(r.URL.Query().Get("wallet"))
	}
	if wallet == "" {
		wallet = strings.TrimSpace(r.URL.Query().Get("address"))
	}
	if wallet == "" {
		respondWithError(w, http.StatusBadRequest, "Wallet address is required", nil)
		return
	}
	wallet = tonapi.Normalize(wallet)

	ctx := r.Context()

	var (
		wg         sync.WaitGroup
		jettons    []tonapi.WalletJetton
		jettonsErr error
		tonBalance float64
		tonPrice   float64
		tonChange  float64
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		jettons, jettonsErr = s.ton.GetWalletJettons(ctx, wallet)
	}()
	go func() {
		defer wg.Done()
		balance, err := s.ton.GetTonBalance(ctx, wallet)
		if err != nil {
			log.Printf("⚠️  Failed to fetch TON balance for %s: %v", wallet, err)
			return
		}
		tonBalance = balance
	}()
	go func() {
		defer wg.Done()
		tonPrice, tonChange = s.getTonPrice(ctx)
	}()
	wg.Wait()

	if jettonsErr != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to fetch wallet holdings", jettonsErr)
		return
	}

	addresses := make([]string, 0, len(jettons))
	for _, j := range jettons {
		addresses = append(addresses, j.Address)
	}

	var (
		pairsByToken    map[string][]dexscreener.Pair
		metadataByToken map[string]*tonapi.JettonMetadata
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		pairsByToken = s.dex.GetMultipleTokenPairs(ctx, s.chainID, addresses)
	}()
	go func() {
		defer wg.Done()
		metadataByToken = s.ton.GetMultipleJettonMetadata(ctx, addresses)
	}()
	wg.Wait()

	summary := portfolio.Build(wallet, tonBalance, tonPrice, tonChange, jettons, pairsByToken, metadataByToken)
	respondJSON(w, http.StatusOK, summary)
}

// getTonPrice resolves the current TON/USD price and 24h change from the DEX
// aggregator, falling back to the configured static price when no quote is
// available
func (s *Server) getTonPrice(ctx context.Context) (price, change24h float64) {
	pairs, err := s.dex.GetTokenPairs(ctx, s.chainID, "TON")
	if err == nil {
		if best := dexscreener.BestPair(pairs); best != nil {
			if p, perr := strconv.ParseFloat(best.PriceUSD, 64); perr == nil && p > 0 {
				return p, best.PriceChangeH24()
			}
		}
	}
	return s.tonPriceFallback, 0
}
