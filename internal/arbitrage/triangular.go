package arbitrage

import (
	"cmp"
	"slices"
	"strings"

	"crypto-arbitrage-scanner/internal/domain"
)

// TriangularPaths are the asset cycles checked on every exchange.
var TriangularPaths = [][3]string{
	{"BTC", "ETH", "XRP"},
	{"BTC", "SOL", "ETH"},
	{"ETH", "LINK", "BTC"},
	{"BTC", "DOT", "ADA"},
	{"ETH", "AVAX", "MATIC"},
}

// FindTriangular evaluates every path on every exchange using mid prices.
// Paths with a missing or zero price are skipped.
func FindTriangular(quotes domain.QuoteTable, exchanges []string) []domain.TriangularOpportunity {
	out := make([]domain.TriangularOpportunity, 0)
	for _, exchange := range exchanges {
		for _, path := range TriangularPaths {
			a, okA := quotes.Get(exchange, path[0])
			b, okB := quotes.Get(exchange, path[1])
			c, okC := quotes.Get(exchange, path[2])
			if !okA || !okB || !okC || a.Mid <= 0 || b.Mid <= 0 || c.Mid <= 0 {
				continue
			}

			product := (b.Mid / a.Mid) * (c.Mid / b.Mid) * (a.Mid / c.Mid)
			profit := (product - 1) * 100
			out = append(out, domain.TriangularOpportunity{
				Exchange: exchange,
				Path:     strings.Join([]string{path[0], path[1], path[2], path[0]}, "→"),
				Profit:   profit,
				Score:    clamp(50+profit*10, 0, 100),
			})
		}
	}

	slices.SortStableFunc(out, func(x, y domain.TriangularOpportunity) int {
		return cmp.Compare(y.Profit, x.Profit)
	})
	return out
}
