// Package portfolio aggregates wallet balances and token prices into
// displayable holdings and totals. Pure computation; all I/O happens in the
// tonapi and dexscreener clients.
package portfolio

import (
	"strconv"
	"strings"

	"tonpulse/dexscreener"
	"tonpulse/helpers"
	"tonpulse/tonapi"

	"github.com/shopspring/decimal"
)

const tonDecimals = 9

// Holding is one position in a wallet
type Holding struct {
	Address        string  `json:"address"`
	Symbol         string  `json:"symbol"`
	Name           string  `json:"name"`
	Balance        float64 `json:"balance"`
	BalanceInTon   float64 `json:"balanceInTon"`
	Price          float64 `json:"price"`
	PriceChange24h float64 `json:"priceChange24h"`
	Icon           string  `json:"icon,omitempty"`
	Decimals       int     `json:"decimals"`
}

// ValueUSD returns the holding's current USD value
func (h Holding) ValueUSD() float64 {
	return h.Balance * h.Price
}

// Summary is the aggregated portfolio of one wallet. PnL24hUsd approximates
// the day's profit and loss from current values and 24h price changes; no
// purchase-price history is retained, so it is not a cost-basis P&L.
type Summary struct {
	WalletAddress          string    `json:"walletAddress"`
	Holdings               []Holding `json:"holdings"`
	TonPrice               float64   `json:"tonPrice"`
	TotalBalanceTon        float64   `json:"totalBalanceTon"`
	TotalBalanceUsd        float64   `json:"totalBalanceUsd"`
	PnL24hUsd              float64   `json:"pnl24hUsd"`
	TotalBalanceUsdDisplay string    `json:"totalBalanceUsdDisplay"`
	PnL24hDisplay          string    `json:"pnl24hDisplay"`
}

// DisplayBalance converts a raw integer amount into a display balance by
// shifting the decimal point. Raw jetton balances exceed the float64 integer
// range, so the shift happens in decimal arithmetic before conversion.
func DisplayBalance(raw string, decimals int) float64 {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	f, _ := d.Shift(int32(-decimals)).Float64()
	return f
}

// TonHolding builds the native TON position shown first in the portfolio
func TonHolding(balance, tonPrice, change24h float64) Holding {
	return Holding{
		Address:        "TON",
		Symbol:         "TON",
		Name:           "Toncoin",
		Balance:        balance,
		BalanceInTon:   balance,
		Price:          tonPrice,
		PriceChange24h: change24h,
		Decimals:       tonDecimals,
	}
}

// Build assembles the portfolio summary for a wallet. Jettons without a
// resolvable price are excluded from holdings and totals. The native TON
// position is included when its balance is positive.
func Build(
	walletAddress string,
	tonBalance float64,
	tonPrice float64,
	tonChange24h float64,
	jettons []tonapi.WalletJetton,
	pairsByToken map[string][]dexscreener.Pair,
	metadataByToken map[string]*tonapi.JettonMetadata,
) Summary {
	summary := Summary{
		WalletAddress: walletAddress,
		Holdings:      []Holding{},
		TonPrice:      tonPrice,
	}

	if tonBalance > 0 {
		summary.Holdings = append(summary.Holdings, TonHolding(tonBalance, tonPrice, tonChange24h))
	}

	for _, jetton := range jettons {
		address := strings.ToLower(jetton.Address)

		best := dexscreener.BestPair(pairsByToken[address])
		if best == nil || best.PriceUSD == "" {
			continue
		}
		price, err := strconv.ParseFloat(best.PriceUSD, 64)
		if err != nil || price <= 0 {
			continue
		}

		meta := metadataByToken[address]
		decimals, symbol, name, icon := resolveTokenInfo(jetton, meta, best)

		balance := DisplayBalance(jetton.Balance, decimals)
		if balance <= 0 {
			continue
		}

		balanceInTon := 0.0
		if tonPrice > 0 {
			balanceInTon = balance * price / tonPrice
		}

		summary.Holdings = append(summary.Holdings, Holding{
			Address:        address,
			Symbol:         symbol,
			Name:           name,
			Balance:        balance,
			BalanceInTon:   balanceInTon,
			Price:          price,
			PriceChange24h: best.PriceChangeH24(),
			Icon:           icon,
			Decimals:       decimals,
		})
	}

	for _, h := range summary.Holdings {
		summary.TotalBalanceTon += h.BalanceInTon
		summary.TotalBalanceUsd += h.ValueUSD()
		summary.PnL24hUsd += h.ValueUSD() * h.PriceChange24h / 100
	}

	summary.TotalBalanceUsdDisplay = helpers.FormatNumber(summary.TotalBalanceUsd)
	if summary.TotalBalanceUsd > 0 {
		summary.PnL24hDisplay = helpers.FormatPriceChange(summary.PnL24hUsd / summary.TotalBalanceUsd * 100)
	}

	return summary
}

// resolveTokenInfo picks decimals, symbol, name and icon from the wallet
// response, the jetton registry and the best pair, in that order of
// preference
func resolveTokenInfo(jetton tonapi.WalletJetton, meta *tonapi.JettonMetadata, best *dexscreener.Pair) (int, string, string, string) {
	decimals := tonDecimals
	symbol := "TOKEN"
	name := "Unknown Token"
	icon := ""

	if meta != nil {
		if meta.Decimals > 0 {
			decimals = int(meta.Decimals)
		}
		if meta.Symbol != "" {
			symbol = meta.Symbol
		}
		if meta.Name != "" {
			name = meta.Name
		}
		icon = meta.Image
	}
	if jetton.Metadata != nil {
		if jetton.Metadata.Decimals > 0 {
			decimals = int(jetton.Metadata.Decimals)
		}
		if jetton.Metadata.Symbol != "" {
			symbol = jetton.Metadata.Symbol
		}
		if jetton.Metadata.Name != "" {
			name = jetton.Metadata.Name
		}
		if jetton.Metadata.Image != "" {
			icon = jetton.Metadata.Image
		}
	}
	if best.Info != nil && best.Info.ImageURL != "" {
		icon = best.Info.ImageURL
	}

	return decimals, symbol, name, icon
}
