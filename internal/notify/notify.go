// Package notify holds the alert sinks. Each sink is best-effort: the caller
// logs a returned error and moves on to the next sink.
package notify

import (
	"context"
	"fmt"
	"strings"

	"crypto-arbitrage-scanner/internal/domain"
)

// Alert is the payload every sink receives for the best qualifying opportunity.
type Alert struct {
	Asset        string  `json:"asset"`
	BuyExchange  string  `json:"buyExchange"`
	SellExchange string  `json:"sellExchange"`
	NetProfit    float64 `json:"netProfit"`
	ROI          float64 `json:"roi"`
	Confidence   float64 `json:"confidence"`
}

// Sink is one alert channel.
type Sink interface {
	Name() string
	Send(ctx context.Context, alert Alert) error
}

func FromOpportunity(o domain.Opportunity) Alert {
	return Alert{
		Asset:        o.Asset,
		BuyExchange:  o.BuyExchange,
		SellExchange: o.SellExchange,
		NetProfit:    o.NetProfit,
		ROI:          o.ROI,
		Confidence:   o.Confidence,
	}
}

// TestAlert is the fixed payload used to check sink wiring.
func TestAlert() Alert {
	return Alert{
		Asset:        "TEST",
		BuyExchange:  domain.Binance.String(),
		SellExchange: domain.Coinbase.String(),
		NetProfit:    123.45,
		ROI:          1.23,
		Confidence:   85,
	}
}

func (a Alert) Title() string {
	return fmt.Sprintf("%s: %s profit (%.2f%% ROI)", a.Asset, FormatPrice(a.NetProfit), a.ROI)
}

func (a Alert) Route() string {
	return fmt.Sprintf("Buy on %s, Sell on %s", Capitalize(a.BuyExchange), Capitalize(a.SellExchange))
}

// Message renders the chat-style text shared by the webhook sinks.
func (a Alert) Message() string {
	return fmt.Sprintf("🚀 **Arbitrage Alert**\nCoin: %s\nRoute: %s → %s\nNet Profit: %s\nROI: %.3f%%\nConfidence: %d%%",
		a.Asset,
		Capitalize(a.BuyExchange),
		Capitalize(a.SellExchange),
		FormatPrice(a.NetProfit),
		a.ROI,
		int(a.Confidence+0.5),
	)
}

func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// FormatPrice renders a USD amount with precision that suits its magnitude.
func FormatPrice(v float64) string {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1:
		return fmt.Sprintf("$%.2f", v)
	case abs >= 0.01:
		return fmt.Sprintf("$%.4f", v)
	case abs == 0:
		return "$0.00"
	default:
		return fmt.Sprintf("$%.8f", v)
	}
}
