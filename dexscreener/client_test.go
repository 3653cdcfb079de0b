package dexscreener

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetTokenPairsBareArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/token-pairs/v1/ton/EQAbc" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`[{"pairAddress":"p1","baseToken":{"address":"EQAbc","symbol":"ABC"},"priceUsd":"1.25"}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	pairs, err := client.GetTokenPairs(context.Background(), "ton", "EQAbc")
	if err != nil {
		t.Fatalf("GetTokenPairs returned error: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("got %d pairs, want 1", len(pairs))
	}
	if pairs[0].PriceUSD != "1.25" {
		t.Errorf("PriceUSD = %q, want %q", pairs[0].PriceUSD, "1.25")
	}
}

func TestGetTokenPairsWrappedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"schemaVersion":"1.0.0","pairs":[{"pairAddress":"p1"},{"pairAddress":"p2"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	pairs, err := client.GetTokenPairs(context.Background(), "ton", "EQAbc")
	if err != nil {
		t.Fatalf("GetTokenPairs returned error: %v", err)
	}
	if len(pairs) != 2 {
		t.Errorf("got %d pairs, want 2", len(pairs))
	}
}

func TestGetTokenPairsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.GetTokenPairs(context.Background(), "ton", "EQAbc"); err == nil {
		t.Error("expected error for non-2xx response")
	}
}

func TestGetMultipleTokenPairsKeysByBaseToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"pairAddress":"p1","baseToken":{"address":"EQAAA"}},
			{"pairAddress":"p2","baseToken":{"address":"EQAAA"}},
			{"pairAddress":"p3","baseToken":{"address":"EQBBB"}}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	results := client.GetMultipleTokenPairs(context.Background(), "ton", []string{"EQAAA", "EQBBB"})

	if len(results["eqaaa"]) != 2 {
		t.Errorf("got %d pairs for eqaaa, want 2", len(results["eqaaa"]))
	}
	if len(results["eqbbb"]) != 1 {
		t.Errorf("got %d pairs for eqbbb, want 1", len(results["eqbbb"]))
	}
}

func TestGetMultipleTokenPairsFallsBackToIndividual(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Fail the batch endpoint, serve the per-token one
		if r.URL.Path == "/tokens/v1/ton/EQAAA" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[{"pairAddress":"p1","baseToken":{"address":"EQAAA"}}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	results := client.GetMultipleTokenPairs(context.Background(), "ton", []string{"EQAAA"})

	if len(results["eqaaa"]) != 1 {
		t.Errorf("expected individual fallback to populate results, got %v", results)
	}
}
