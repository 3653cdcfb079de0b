package dexscreener

import "testing"

func pairWith(address string, liquidity, volume float64) Pair {
	return Pair{
		PairAddress: address,
		Liquidity:   &Liquidity{USD: liquidity},
		Volume:      map[string]float64{"h24": volume},
	}
}

func TestBestPair(t *testing.T) {
	tests := []struct {
		name  string
		pairs []Pair
		want  string // expected pair address, "" for nil
	}{
		{
			name:  "empty slice returns nil",
			pairs: nil,
			want:  "",
		},
		{
			name: "highest liquidity wins",
			pairs: []Pair{
				pairWith("a", 5000, 100),
				pairWith("b", 10000, 50),
				pairWith("c", 3000, 999),
			},
			want: "b",
		},
		{
			name: "volume breaks liquidity ties",
			pairs: []Pair{
				pairWith("a", 10000, 300),
				pairWith("b", 10000, 700),
			},
			want: "b",
		},
		{
			name: "missing liquidity treated as zero",
			pairs: []Pair{
				{PairAddress: "a"},
				pairWith("b", 1, 0),
			},
			want: "b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BestPair(tt.pairs)
			if tt.want == "" {
				if got != nil {
					t.Errorf("BestPair() = %v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("BestPair() = nil, want a pair")
			}
			if got.PairAddress != tt.want {
				t.Errorf("BestPair() = %s, want %s", got.PairAddress, tt.want)
			}
		})
	}
}

func TestBestPairDoesNotMutateInput(t *testing.T) {
	pairs := []Pair{
		pairWith("a", 1, 0),
		pairWith("b", 100, 0),
	}

	BestPair(pairs)

	if pairs[0].PairAddress != "a" || pairs[1].PairAddress != "b" {
		t.Error("BestPair reordered the caller's slice")
	}
}
