package arbitrage

import (
	"encoding/json"
	"time"

	"crypto-arbitrage-scanner/internal/domain"
)

type exportedOpportunity struct {
	Asset        string           `json:"asset"`
	BuyExchange  string           `json:"buyExchange"`
	SellExchange string           `json:"sellExchange"`
	BuyPrice     float64          `json:"buyPrice"`
	SellPrice    float64          `json:"sellPrice"`
	NetProfit    float64          `json:"netProfit"`
	ROI          float64          `json:"roi"`
	Confidence   float64          `json:"confidence"`
	RiskLevel    domain.RiskLevel `json:"riskLevel"`
	Timestamp    string           `json:"timestamp"`
}

// Export renders opportunities as an indented JSON array with UTC timestamps.
func Export(opps []domain.Opportunity) ([]byte, error) {
	out := make([]exportedOpportunity, 0, len(opps))
	for _, o := range opps {
		out = append(out, exportedOpportunity{
			Asset:        o.Asset,
			BuyExchange:  o.BuyExchange,
			SellExchange: o.SellExchange,
			BuyPrice:     o.BuyPrice,
			SellPrice:    o.SellPrice,
			NetProfit:    o.NetProfit,
			ROI:          o.ROI,
			Confidence:   o.Confidence,
			RiskLevel:    o.RiskLevel,
			Timestamp:    o.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return json.MarshalIndent(out, "", "  ")
}

// ExportFilename is the download name for an export taken at t.
func ExportFilename(t time.Time) string {
	return "arbitrage-opportunities-" + t.UTC().Format("2006-01-02") + ".json"
}
