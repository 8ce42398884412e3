package domain

import "time"

type FeeBreakdown struct {
	BuyTradingFee  float64 `json:"buyTradingFee"`
	SellTradingFee float64 `json:"sellTradingFee"`
	WithdrawalFee  float64 `json:"withdrawalFee"`
	SlippageCost   float64 `json:"slippageCost"`
	LatencyRisk    float64 `json:"latencyRisk"`
}

func (f FeeBreakdown) Total() float64 {
	return f.BuyTradingFee + f.SellTradingFee + f.WithdrawalFee + f.SlippageCost + f.LatencyRisk
}

type Opportunity struct {
	ID                 string       `json:"id"`
	Asset              string       `json:"asset"`
	BuyExchange        string       `json:"buyExchange"`
	SellExchange       string       `json:"sellExchange"`
	BuyPrice           float64      `json:"buyPrice"`
	SellPrice          float64      `json:"sellPrice"`
	GrossProfit        float64      `json:"grossProfit"`
	TotalFees          float64      `json:"totalFees"`
	Fees               FeeBreakdown `json:"feeBreakdown"`
	NetProfit          float64      `json:"netProfit"`
	ROI                float64      `json:"roi"`
	Confidence         float64      `json:"confidence"`
	RiskLevel          RiskLevel    `json:"riskLevel"`
	SuccessProbability float64      `json:"successProbability"`
	IsProfitable       bool         `json:"isProfitable"`
	CreatedAt          time.Time    `json:"createdAt"`
	ExpiresAt          time.Time    `json:"expiresAt"`
}

// Expired reports whether the opportunity window has closed at t.
func (o Opportunity) Expired(t time.Time) bool {
	return !t.Before(o.ExpiresAt)
}

type TriangularOpportunity struct {
	Exchange string  `json:"exchange"`
	Path     string  `json:"path"`
	Profit   float64 `json:"profit"`
	Score    float64 `json:"score"`
}
