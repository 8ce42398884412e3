package arbitrage

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-arbitrage-scanner/internal/domain"
)

func TestWhatIf_Defaults(t *testing.T) {
	r, err := WhatIf(WhatIfInput{})
	require.NoError(t, err)

	assert.InDelta(t, 50, r.GrossProfit, 1e-9)
	assert.InDelta(t, 20, r.TradeFee, 1e-9)
	assert.InDelta(t, 30, r.WithdrawalFee, 1e-9)
	assert.InDelta(t, 10, r.SlippageCost, 1e-9)
	assert.InDelta(t, 7.5, r.LatencyRisk, 1e-9)
	assert.InDelta(t, -17.5, r.NetProfit, 1e-9)
}

func TestWhatIf_Rejects(t *testing.T) {
	_, err := WhatIf(WhatIfInput{Amount: -10})
	assert.ErrorIs(t, err, ErrInvalidTradeParams)
}

func TestMonteCarlo(t *testing.T) {
	r, err := MonteCarlo(10000, 0, FixedRandom(0.5))
	require.NoError(t, err)
	assert.Equal(t, DefaultMonteCarloRun, r.Iterations)
	assert.InDelta(t, -15, r.Best, 1e-9)
	assert.InDelta(t, -15, r.Worst, 1e-9)
	assert.InDelta(t, -15, r.Average, 1e-9)

	r, err = MonteCarlo(10000, 1000, NewSeededRandomSource(99))
	require.NoError(t, err)
	assert.LessOrEqual(t, r.Worst, r.P5)
	assert.LessOrEqual(t, r.P5, r.Average)
	assert.LessOrEqual(t, r.Average, r.P95)
	assert.LessOrEqual(t, r.P95, r.Best)
	assert.GreaterOrEqual(t, r.Worst, 10000*(-0.45-0.3)/100-30)
	assert.Less(t, r.Best, 10000*1.05/100-30)

	_, err = MonteCarlo(0, 10, FixedRandom(0))
	assert.ErrorIs(t, err, ErrInvalidTradeParams)

	r, err = MonteCarlo(10000, MaxMonteCarloRun, FixedRandom(0.5))
	require.NoError(t, err)
	assert.Equal(t, MaxMonteCarloRun, r.Iterations)

	_, err = MonteCarlo(10000, MaxMonteCarloRun+1, FixedRandom(0.5))
	assert.ErrorIs(t, err, ErrInvalidTradeParams)
}

func TestFindTriangular(t *testing.T) {
	quotes := table(map[string]map[string]float64{
		"binance": {"BTC": 43000, "ETH": 2300, "XRP": 0.6, "SOL": 100},
		"kraken":  {"BTC": 43100, "ETH": 2290},
	})

	opps := FindTriangular(quotes, []string{"binance", "kraken"})
	require.Len(t, opps, 2)
	for _, o := range opps {
		assert.Equal(t, "binance", o.Exchange)
		assert.InDelta(t, 0, o.Profit, 1e-9)
		assert.InDelta(t, 50, o.Score, 1e-6)
	}
	assert.ElementsMatch(t, []string{"BTC→ETH→XRP→BTC", "BTC→SOL→ETH→BTC"}, []string{opps[0].Path, opps[1].Path})
}

func TestExport(t *testing.T) {
	created := time.Date(2024, 5, 1, 14, 30, 0, 0, time.FixedZone("MYT", 8*3600))
	opps := []domain.Opportunity{{
		Asset: "BTC", BuyExchange: "binance", SellExchange: "coinbase",
		BuyPrice: 100, SellPrice: 102, NetProfit: 179.8, ROI: 1.798, Confidence: 80,
		RiskLevel: domain.RiskLow, CreatedAt: created, GrossProfit: 200,
	}}

	blob, err := Export(opps)
	require.NoError(t, err)
	assert.Contains(t, string(blob), "\n  {\n    \"asset\": \"BTC\"")

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(blob, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "2024-05-01T06:30:00Z", decoded[0]["timestamp"])
	assert.Equal(t, "low", decoded[0]["riskLevel"])
	assert.Len(t, decoded[0], 10)

	empty, err := Export(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))

	assert.Equal(t, "arbitrage-opportunities-2024-05-01.json", ExportFilename(created))
}

func TestAnalytics(t *testing.T) {
	opps := rankingFixture()
	opps[0].RiskLevel = domain.RiskLow
	opps[1].RiskLevel = domain.RiskMedium
	opps[2].RiskLevel = domain.RiskHigh
	opps[3].RiskLevel = domain.RiskHigh

	dist := CountRisk(opps)
	assert.Equal(t, RiskDistribution{Low: 2, Medium: 1, High: 2}, dist)

	top := TopAssets(opps, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "ETH", top[0].Asset)
	assert.Equal(t, "SOL", top[1].Asset)

	all := TopAssets(opps, 0)
	require.Len(t, all, 4)
	btc := all[3]
	assert.Equal(t, "BTC", btc.Asset)
	assert.Equal(t, 2, btc.Count)
	assert.Equal(t, 1, btc.Profitable)
	assert.InDelta(t, 5, btc.Total, 1e-9)
}
