package domain

import "time"

// Quote is one exchange's view of an asset for a single refresh cycle.
// A new cycle supersedes it rather than mutating it.
type Quote struct {
	Exchange  string    `json:"exchange"`
	Asset     string    `json:"asset"`
	Mid       float64   `json:"mid"`
	Bid       float64   `json:"bid"`
	Ask       float64   `json:"ask"`
	Volume    float64   `json:"volume"`
	Change24h float64   `json:"change24h"`
	PrevMid   float64   `json:"prevMid,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ExchangeQuotes is the result of one PriceFeed fetch.
type ExchangeQuotes struct {
	Exchange string           `json:"exchange"`
	Quotes   map[string]Quote `json:"quotes"`
	Latency  time.Duration    `json:"latency"`
}

// QuoteTable indexes quotes by exchange, then asset.
type QuoteTable map[string]map[string]Quote

func (t QuoteTable) Get(exchange, asset string) (Quote, bool) {
	byAsset, ok := t[exchange]
	if !ok {
		return Quote{}, false
	}
	q, ok := byAsset[asset]
	return q, ok
}

// Clone copies both map levels; Quote values are immutable.
func (t QuoteTable) Clone() QuoteTable {
	out := make(QuoteTable, len(t))
	for ex, byAsset := range t {
		inner := make(map[string]Quote, len(byAsset))
		for asset, q := range byAsset {
			inner[asset] = q
		}
		out[ex] = inner
	}
	return out
}

// AverageMid returns the mean mid price of an asset over every exchange in
// the table. Exchanges without a quote for the asset count as zero.
func (t QuoteTable) AverageMid(asset string) float64 {
	if len(t) == 0 {
		return 0
	}
	var sum float64
	for _, byAsset := range t {
		sum += byAsset[asset].Mid
	}
	return sum / float64(len(t))
}
