package arbitrage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-arbitrage-scanner/internal/domain"
)

func newTestScanner(rnd RandomSource) *Scanner {
	s := NewScanner([]string{"binance", "coinbase"}, GasPolicy{Assets: []string{"ETH"}, NetworkFee: 15.5}, rnd, 0)
	s.Now = fixedNow
	return s
}

func TestScan_EndToEndExample(t *testing.T) {
	scanner := newTestScanner(FixedRandom(0))
	snapshot := Snapshot{
		Quotes:    table(map[string]map[string]float64{"binance": {"BTC": 100}, "coinbase": {"BTC": 102}}),
		Exchanges: []string{"binance", "coinbase"},
		Assets:    []string{"BTC"},
		Fees:      flatFees(0.001),
	}

	result, err := scanner.Scan(snapshot, plainParams())
	require.NoError(t, err)
	require.Len(t, result.Opportunities, 2)
	assert.Equal(t, 2, result.Scanned)

	var best domain.Opportunity
	for _, o := range result.Opportunities {
		if o.BuyExchange == "binance" {
			best = o
		}
	}
	assert.Equal(t, "coinbase", best.SellExchange)
	assert.InDelta(t, 200, best.GrossProfit, 1e-9)
	assert.InDelta(t, 10, best.Fees.BuyTradingFee, 1e-9)
	assert.InDelta(t, 10.2, best.Fees.SellTradingFee, 1e-9)
	assert.InDelta(t, 179.8, best.NetProfit, 1e-9)
	assert.InDelta(t, 1.798, best.ROI, 1e-9)
	assert.True(t, best.IsProfitable)
	assert.Equal(t, fixedNow().Add(DefaultOpportunityWindow), best.ExpiresAt)
	assert.Equal(t, 1, result.Frequency["BTC"])
	assert.Equal(t, 1, result.ProfitableFound)
}

func TestScan_NoSelfPairs(t *testing.T) {
	scanner := newTestScanner(NewSeededRandomSource(7))
	snapshot := Snapshot{
		Quotes: table(map[string]map[string]float64{
			"binance":  {"BTC": 100, "ETH": 10},
			"coinbase": {"BTC": 101, "ETH": 10.1},
			"kraken":   {"BTC": 99, "ETH": 9.9},
		}),
		Exchanges: []string{"binance", "coinbase", "kraken"},
		Assets:    []string{"BTC", "ETH"},
		Fees:      flatFees(0.001),
	}

	result, err := scanner.Scan(snapshot, plainParams())
	require.NoError(t, err)
	assert.Equal(t, 12, result.Scanned)
	for _, o := range result.Opportunities {
		assert.NotEqual(t, o.BuyExchange, o.SellExchange)
	}
}

func TestScan_FeeConservation(t *testing.T) {
	scanner := newTestScanner(NewSeededRandomSource(42))
	snapshot := Snapshot{
		Quotes: table(map[string]map[string]float64{
			"binance":  {"BTC": 43250, "ETH": 2280},
			"coinbase": {"BTC": 43300, "ETH": 2275},
			"kraken":   {"BTC": 43190, "ETH": 2290},
		}),
		Exchanges: []string{"binance", "coinbase", "kraken"},
		Assets:    []string{"BTC", "ETH"},
		Fees: domain.FeeSchedule{
			TradingFees:       map[string]float64{"binance": 0.001, "coinbase": 0.005, "kraken": 0.0026},
			WithdrawalFees:    map[string]map[string]float64{"binance": {"BTC": 0.0005, "ETH": 0.005}},
			DefaultTradingFee: domain.DefaultTradingFee,
		},
	}
	params := ScanParams{TradeAmount: 10000, SlippagePercent: 0.1, MinProfitFilter: -100, UseBidAsk: true, IncludeLatency: true, DynamicGas: true}

	result, err := scanner.Scan(snapshot, params)
	require.NoError(t, err)
	require.NotEmpty(t, result.Opportunities)
	for _, o := range result.Opportunities {
		assert.InDelta(t, o.Fees.Total(), o.TotalFees, 1e-9)
		assert.InDelta(t, o.GrossProfit-o.TotalFees, o.NetProfit, 1e-9)
		assert.InDelta(t, o.NetProfit/params.TradeAmount*100, o.ROI, 1e-9)
		assert.Equal(t, o.NetProfit > 0, o.IsProfitable)
		assert.InDelta(t, 10, o.Fees.SlippageCost, 1e-9)
		assert.Greater(t, o.Fees.LatencyRisk, 0.0)
	}
}

func TestScan_GasOnlyForGasAssets(t *testing.T) {
	scanner := newTestScanner(FixedRandom(0.5))
	snapshot := Snapshot{
		Quotes:    table(map[string]map[string]float64{"binance": {"BTC": 100, "ETH": 10}, "coinbase": {"BTC": 100, "ETH": 10}}),
		Exchanges: []string{"binance", "coinbase"},
		Assets:    []string{"BTC", "ETH"},
		Fees:      flatFees(0.001),
	}
	params := plainParams()
	params.DynamicGas = true

	result, err := scanner.Scan(snapshot, params)
	require.NoError(t, err)
	for _, o := range result.Opportunities {
		if o.Asset == "ETH" {
			assert.InDelta(t, 15.5, o.Fees.WithdrawalFee, 1e-9)
		} else {
			assert.Zero(t, o.Fees.WithdrawalFee)
		}
	}
}

func TestScan_ThresholdRespected(t *testing.T) {
	scanner := newTestScanner(NewSeededRandomSource(1))
	snapshot := Snapshot{
		Quotes: table(map[string]map[string]float64{
			"binance":  {"BTC": 100, "ETH": 10},
			"coinbase": {"BTC": 102, "ETH": 9.8},
			"kraken":   {"BTC": 101, "ETH": 10.05},
		}),
		Exchanges: []string{"binance", "coinbase", "kraken"},
		Assets:    []string{"BTC", "ETH"},
		Fees:      flatFees(0.001),
	}
	params := plainParams()
	params.MinProfitFilter = 0.5

	result, err := scanner.Scan(snapshot, params)
	require.NoError(t, err)
	require.NotEmpty(t, result.Opportunities)
	assert.Equal(t, 12, result.Scanned)
	for _, o := range result.Opportunities {
		assert.GreaterOrEqual(t, o.ROI, params.MinProfitFilter)
	}
}

func TestScan_MissingQuoteSkipped(t *testing.T) {
	scanner := newTestScanner(FixedRandom(0))
	snapshot := Snapshot{
		Quotes:    table(map[string]map[string]float64{"binance": {"BTC": 100}, "coinbase": {}}),
		Exchanges: []string{"binance", "coinbase"},
		Assets:    []string{"BTC"},
		Fees:      flatFees(0.001),
	}

	result, err := scanner.Scan(snapshot, plainParams())
	require.NoError(t, err)
	assert.Zero(t, result.Scanned)
	assert.Empty(t, result.Opportunities)
}

func TestScan_UsesBidAsk(t *testing.T) {
	scanner := newTestScanner(FixedRandom(0))
	snapshot := Snapshot{
		Quotes:    table(map[string]map[string]float64{"binance": {"BTC": 100}, "coinbase": {"BTC": 100}}),
		Exchanges: []string{"binance", "coinbase"},
		Assets:    []string{"BTC"},
		Fees:      flatFees(0.001),
	}
	params := plainParams()
	params.UseBidAsk = true

	result, err := scanner.Scan(snapshot, params)
	require.NoError(t, err)
	require.Len(t, result.Opportunities, 2)
	o := result.Opportunities[0]
	assert.InDelta(t, 100.05, o.BuyPrice, 1e-9)
	assert.InDelta(t, 99.95, o.SellPrice, 1e-9)
	assert.False(t, o.IsProfitable)
}

func TestScan_InvalidParams(t *testing.T) {
	scanner := newTestScanner(FixedRandom(0))

	_, err := scanner.Scan(Snapshot{}, ScanParams{TradeAmount: 0})
	assert.ErrorIs(t, err, ErrInvalidTradeParams)

	_, err = scanner.Scan(Snapshot{}, ScanParams{TradeAmount: 100, SlippagePercent: -1})
	assert.ErrorIs(t, err, ErrInvalidTradeParams)
}

func TestScan_ExtremePricesStayBounded(t *testing.T) {
	scanner := newTestScanner(NewSeededRandomSource(3))
	snapshot := Snapshot{
		Quotes:    table(map[string]map[string]float64{"binance": {"BTC": 1}, "coinbase": {"BTC": 1e6}}),
		Exchanges: []string{"binance", "coinbase"},
		Assets:    []string{"BTC"},
		Fees:      flatFees(0.001),
	}

	result, err := scanner.Scan(snapshot, plainParams())
	require.NoError(t, err)
	for _, o := range result.Opportunities {
		assert.False(t, math.IsNaN(o.Confidence))
		assert.GreaterOrEqual(t, o.Confidence, 0.0)
		assert.LessOrEqual(t, o.Confidence, 100.0)
		assert.GreaterOrEqual(t, o.SuccessProbability, 5.0)
		assert.LessOrEqual(t, o.SuccessProbability, 95.0)
	}
}
