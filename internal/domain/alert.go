package domain

import "time"

// AlertRecord is one entry of the alert history log.
type AlertRecord struct {
	ID          string      `json:"id"`
	Opportunity Opportunity `json:"opportunity"`
	AlertedAt   time.Time   `json:"alertedAt"`
}

// PaperTrade is a simulated execution of an opportunity against the virtual balance.
type PaperTrade struct {
	ID           string    `json:"id"`
	Asset        string    `json:"asset"`
	BuyExchange  string    `json:"buyExchange"`
	SellExchange string    `json:"sellExchange"`
	TradeAmount  float64   `json:"tradeAmount"`
	NetProfit    float64   `json:"netProfit"`
	BalanceAfter float64   `json:"balanceAfter"`
	ExecutedAt   time.Time `json:"executedAt"`
}
