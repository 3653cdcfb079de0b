package tonapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFlexIntUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  FlexInt
	}{
		{"bare number", `9`, 9},
		{"quoted number", `"6"`, 6},
		{"null", `null`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got FlexInt
			if err := json.Unmarshal([]byte(tt.input), &got); err != nil {
				t.Fatalf("Unmarshal(%s) returned error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Unmarshal(%s) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestGetJettonMetadataFallsBackToMetadataPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/jettons/EQAbc":
			http.Error(w, "not found", http.StatusNotFound)
		case "/jettons/EQAbc/metadata":
			w.Write([]byte(`{"metadata":{"name":"Test Token","symbol":"TST","decimals":"6"}}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	meta, err := client.GetJettonMetadata(context.Background(), "EQAbc")
	if err != nil {
		t.Fatalf("GetJettonMetadata returned error: %v", err)
	}
	if meta.Symbol != "TST" {
		t.Errorf("Symbol = %q, want %q", meta.Symbol, "TST")
	}
	if meta.Decimals != 6 {
		t.Errorf("Decimals = %d, want 6", meta.Decimals)
	}
}

func TestGetJettonMetadataDefaultsDecimals(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"metadata":{"name":"Test Token","symbol":"TST"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	meta, err := client.GetJettonMetadata(context.Background(), "EQAbc")
	if err != nil {
		t.Fatalf("GetJettonMetadata returned error: %v", err)
	}
	if meta.Decimals != 9 {
		t.Errorf("Decimals = %d, want default 9", meta.Decimals)
	}
}

func TestGetTonBalance(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"balance":2500000000,"status":"active"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	balance, err := client.GetTonBalance(context.Background(), "EQAbc")
	if err != nil {
		t.Fatalf("GetTonBalance returned error: %v", err)
	}
	if balance != 2.5 {
		t.Errorf("balance = %v, want 2.5", balance)
	}
}

func TestGetTonBalanceBlockchainFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/accounts/EQAbc":
			http.Error(w, "not found", http.StatusNotFound)
		case "/blockchain/accounts/EQAbc":
			w.Write([]byte(`{"balance":1000000000}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	balance, err := client.GetTonBalance(context.Background(), "EQAbc")
	if err != nil {
		t.Fatalf("GetTonBalance returned error: %v", err)
	}
	if balance != 1.0 {
		t.Errorf("balance = %v, want 1.0", balance)
	}
}

func TestGetWalletJettons(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/accounts/EQWallet/jettons" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"balances":[
			{"balance":"1500000000","jetton":{"address":"0:abc","metadata":{"symbol":"TST","decimals":9}}},
			{"balance":"","jetton":{"address":"0:def"}}
		]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	jettons, err := client.GetWalletJettons(context.Background(), "EQWallet")
	if err != nil {
		t.Fatalf("GetWalletJettons returned error: %v", err)
	}
	if len(jettons) != 2 {
		t.Fatalf("got %d jettons, want 2", len(jettons))
	}
	if jettons[0].Metadata == nil || jettons[0].Metadata.Symbol != "TST" {
		t.Errorf("first jetton metadata = %+v, want symbol TST", jettons[0].Metadata)
	}
	if jettons[1].Balance != "0" {
		t.Errorf("empty balance should default to %q, got %q", "0", jettons[1].Balance)
	}
}
