package arbitrage

import (
	"cmp"
	"slices"

	"crypto-arbitrage-scanner/internal/domain"
)

type RiskDistribution struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

func CountRisk(opps []domain.Opportunity) RiskDistribution {
	var d RiskDistribution
	for _, o := range opps {
		switch o.RiskLevel {
		case domain.RiskLow:
			d.Low++
		case domain.RiskMedium:
			d.Medium++
		case domain.RiskHigh:
			d.High++
		}
	}
	return d
}

type AssetSummary struct {
	Asset      string  `json:"asset"`
	Total      float64 `json:"totalNetProfit"`
	Count      int     `json:"count"`
	Profitable int     `json:"profitable"`
}

// TopAssets aggregates net profit per asset and returns the n best, highest total first.
func TopAssets(opps []domain.Opportunity, n int) []AssetSummary {
	byAsset := make(map[string]*AssetSummary)
	order := make([]string, 0)
	for _, o := range opps {
		s, ok := byAsset[o.Asset]
		if !ok {
			s = &AssetSummary{Asset: o.Asset}
			byAsset[o.Asset] = s
			order = append(order, o.Asset)
		}
		s.Total += o.NetProfit
		s.Count++
		if o.IsProfitable {
			s.Profitable++
		}
	}

	out := make([]AssetSummary, 0, len(order))
	for _, asset := range order {
		out = append(out, *byAsset[asset])
	}
	slices.SortStableFunc(out, func(a, b AssetSummary) int {
		return cmp.Compare(b.Total, a.Total)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
