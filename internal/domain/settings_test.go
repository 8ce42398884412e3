package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSettings_Empty(t *testing.T) {
	s, err := DecodeSettings(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestDecodeSettings_Malformed(t *testing.T) {
	s, err := DecodeSettings([]byte("{not json"))
	assert.Error(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestDecodeSettings_Partial(t *testing.T) {
	s, err := DecodeSettings([]byte(`{"tradeAmount":2500,"minProfit":0,"watchlist":["BTC"],"tradingFees":{"kraken":0.002}}`))
	require.NoError(t, err)

	assert.Equal(t, 2500.0, s.TradeAmount)
	assert.Equal(t, 0.0, s.MinProfit)
	assert.Equal(t, []string{"BTC"}, s.Watchlist)
	assert.Equal(t, 0.002, s.TradingFees["kraken"])
	assert.Equal(t, DefaultPaperBalance, s.PaperBalance)
}

func TestDecodeSettings_MissingMinProfitKeepsDefault(t *testing.T) {
	s, err := DecodeSettings([]byte(`{"tradeAmount":500}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultMinProfit, s.MinProfit)
}

func TestDecodeSettingsOver_KeepsBase(t *testing.T) {
	base := DefaultSettings()
	base.TradeAmount = 2500
	base.MinProfit = 3
	base.Slippage = 0.2

	got, err := DecodeSettingsOver(base, []byte(`{"pinnedAssets":["ETH"]}`))
	require.NoError(t, err)
	assert.Equal(t, 2500.0, got.TradeAmount)
	assert.Equal(t, 3.0, got.MinProfit)
	assert.Equal(t, 0.2, got.Slippage)
	assert.Equal(t, []string{"ETH"}, got.PinnedAssets)

	got, err = DecodeSettingsOver(base, []byte("{not json"))
	assert.Error(t, err)
	assert.Equal(t, base, got)
}

func TestEncodeDecodeSettings(t *testing.T) {
	in := DefaultSettings()
	in.PaperBalance = 101234.5
	in.PaperPnL = 1234.5
	in.TradesExecuted = 3
	in.PinnedAssets = []string{"ETH", "SOL"}

	blob, err := EncodeSettings(in)
	require.NoError(t, err)

	out, err := DecodeSettings(blob)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestFeeSchedule(t *testing.T) {
	fees := FeeSchedule{
		TradingFees:    map[string]float64{"binance": 0.001, "coinbase": 0.005},
		WithdrawalFees: map[string]map[string]float64{"binance": {"BTC": 0.0005}},
	}

	assert.Equal(t, 0.005, fees.TradingFee("coinbase"))
	assert.Equal(t, DefaultTradingFee, fees.TradingFee("unknown"))
	assert.Equal(t, 0.0005, fees.WithdrawalFee("binance", "BTC"))
	assert.Equal(t, 0.0, fees.WithdrawalFee("kraken", "BTC"))

	overridden := fees.WithTradingFees(map[string]float64{"coinbase": 0.002})
	assert.Equal(t, 0.002, overridden.TradingFee("coinbase"))
	assert.Equal(t, 0.005, fees.TradingFee("coinbase"), "original schedule must not change")
}

func TestRiskLevelText(t *testing.T) {
	b, err := RiskHigh.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "high", string(b))

	var r RiskLevel
	require.NoError(t, r.UnmarshalText([]byte("Medium")))
	assert.Equal(t, RiskMedium, r)
	assert.Error(t, r.UnmarshalText([]byte("extreme")))
}

func TestQuoteTableAverageMid(t *testing.T) {
	table := QuoteTable{
		"a": {"BTC": {Mid: 100}},
		"b": {"BTC": {Mid: 102}},
	}
	assert.InDelta(t, 101.0, table.AverageMid("BTC"), 1e-9)
	assert.Equal(t, 0.0, QuoteTable{}.AverageMid("BTC"))

	clone := table.Clone()
	clone["a"]["BTC"] = Quote{Mid: 1}
	assert.Equal(t, 100.0, table["a"]["BTC"].Mid)
}
