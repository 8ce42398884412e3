package arbitrage

import (
	"cmp"
	"slices"

	"crypto-arbitrage-scanner/internal/domain"
)

const DefaultSortField = "netProfit"

var sortFields = map[string]func(domain.Opportunity) float64{
	"netProfit":          func(o domain.Opportunity) float64 { return o.NetProfit },
	"roi":                func(o domain.Opportunity) float64 { return o.ROI },
	"confidence":         func(o domain.Opportunity) float64 { return o.Confidence },
	"successProbability": func(o domain.Opportunity) float64 { return o.SuccessProbability },
	"grossProfit":        func(o domain.Opportunity) float64 { return o.GrossProfit },
	"totalFees":          func(o domain.Opportunity) float64 { return o.TotalFees },
	"buyPrice":           func(o domain.Opportunity) float64 { return o.BuyPrice },
	"sellPrice":          func(o domain.Opportunity) float64 { return o.SellPrice },
}

// IsSortField reports whether field names a sortable numeric column.
func IsSortField(field string) bool {
	_, ok := sortFields[field]
	return ok
}

// SortOpportunities returns a stably sorted copy. An unknown field sorts every
// element as zero, which leaves the enumeration order untouched.
func SortOpportunities(opps []domain.Opportunity, field string, direction domain.SortDirection) []domain.Opportunity {
	value, ok := sortFields[field]
	if !ok {
		value = func(domain.Opportunity) float64 { return 0 }
	}

	sorted := slices.Clone(opps)
	slices.SortStableFunc(sorted, func(a, b domain.Opportunity) int {
		if direction == domain.Ascending {
			return cmp.Compare(value(a), value(b))
		}
		return cmp.Compare(value(b), value(a))
	})
	return sorted
}

func FilterProfitable(opps []domain.Opportunity) []domain.Opportunity {
	out := make([]domain.Opportunity, 0, len(opps))
	for _, o := range opps {
		if o.IsProfitable {
			out = append(out, o)
		}
	}
	return out
}

// FilterAssets keeps opportunities whose asset is in the set. An empty set keeps everything.
func FilterAssets(opps []domain.Opportunity, assets []string) []domain.Opportunity {
	if len(assets) == 0 {
		return opps
	}
	out := make([]domain.Opportunity, 0, len(opps))
	for _, o := range opps {
		if slices.Contains(assets, o.Asset) {
			out = append(out, o)
		}
	}
	return out
}

// Limit returns at most n leading opportunities; n <= 0 means no limit.
func Limit(opps []domain.Opportunity, n int) []domain.Opportunity {
	if n <= 0 || n >= len(opps) {
		return opps
	}
	return opps[:n]
}
