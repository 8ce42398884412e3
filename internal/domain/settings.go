package domain

import (
	"encoding/json"
	"fmt"
)

const (
	DefaultTradeAmount  float64 = 10000
	DefaultMinProfit    float64 = -100
	DefaultPaperBalance float64 = 100000
)

// Settings is the user-editable blob persisted between runs.
type Settings struct {
	TradeAmount    float64            `json:"tradeAmount"`
	MinProfit      float64            `json:"minProfit"`
	Slippage       float64            `json:"slippage"`
	PinnedAssets   []string           `json:"pinnedAssets"`
	Watchlist      []string           `json:"watchlist"`
	TradingFees    map[string]float64 `json:"tradingFees"`
	PaperBalance   float64            `json:"paperBalance"`
	PaperPnL       float64            `json:"paperPnL"`
	TradesExecuted int                `json:"tradesExecuted"`
}

func DefaultSettings() Settings {
	return Settings{
		TradeAmount:  DefaultTradeAmount,
		MinProfit:    DefaultMinProfit,
		PinnedAssets: []string{},
		Watchlist:    []string{},
		TradingFees:  map[string]float64{},
		PaperBalance: DefaultPaperBalance,
	}
}

// DecodeSettings layers a stored blob over the defaults. A malformed blob
// yields the defaults together with the decode error so the caller can log
// it and carry on.
func DecodeSettings(blob []byte) (Settings, error) {
	return DecodeSettingsOver(DefaultSettings(), blob)
}

// DecodeSettingsOver is DecodeSettings with base in place of the defaults.
func DecodeSettingsOver(base Settings, blob []byte) (Settings, error) {
	settings := base
	if len(blob) == 0 {
		return settings, nil
	}

	var stored Settings
	if err := json.Unmarshal(blob, &stored); err != nil {
		return base, fmt.Errorf("decode settings: %w", err)
	}

	if stored.TradeAmount > 0 {
		settings.TradeAmount = stored.TradeAmount
	}
	// minProfit is legitimately zero or negative, so only a missing key keeps the default.
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(blob, &keys); err == nil {
		if _, ok := keys["minProfit"]; ok {
			settings.MinProfit = stored.MinProfit
		}
	}
	if stored.Slippage > 0 {
		settings.Slippage = stored.Slippage
	}
	if stored.PinnedAssets != nil {
		settings.PinnedAssets = stored.PinnedAssets
	}
	if stored.Watchlist != nil {
		settings.Watchlist = stored.Watchlist
	}
	if stored.TradingFees != nil {
		settings.TradingFees = stored.TradingFees
	}
	if stored.PaperBalance > 0 {
		settings.PaperBalance = stored.PaperBalance
		settings.PaperPnL = stored.PaperPnL
		settings.TradesExecuted = stored.TradesExecuted
	}
	return settings, nil
}

func EncodeSettings(s Settings) ([]byte, error) {
	return json.Marshal(s)
}
