package dexscreener

import "sort"

// BestPair selects the single pair to display for a token: highest USD
// liquidity wins, 24h volume breaks ties. Returns nil when no pairs exist.
func BestPair(pairs []Pair) *Pair {
	if len(pairs) == 0 {
		return nil
	}

	sorted := make([]Pair, len(pairs))
	copy(sorted, pairs)

	sort.SliceStable(sorted, func(i, j int) bool {
		li, lj := sorted[i].LiquidityUSD(), sorted[j].LiquidityUSD()
		if li != lj {
			return li > lj
		}
		return sorted[i].VolumeH24() > sorted[j].VolumeH24()
	})

	return &sorted[0]
}
