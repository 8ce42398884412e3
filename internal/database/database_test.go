package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-arbitrage-scanner/internal/domain"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	srv, err := New(filepath.Join(t.TempDir(), "nested", "arbitrage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func TestHealth(t *testing.T) {
	srv := newTestService(t)

	stats := srv.Health()
	assert.Equal(t, "up", stats["status"])
	assert.Equal(t, "It's healthy", stats["message"])
}

func TestSettings(t *testing.T) {
	srv := newTestService(t)
	ctx := context.Background()

	blob, err := srv.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, blob)

	require.NoError(t, srv.SaveSettings(ctx, []byte(`{"tradeAmount":5000}`)))
	require.NoError(t, srv.SaveSettings(ctx, []byte(`{"tradeAmount":7000}`)))

	blob, err = srv.LoadSettings(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tradeAmount":7000}`, string(blob))
}

func TestAlerts(t *testing.T) {
	srv := newTestService(t)
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, asset := range []string{"BTC", "ETH", "SOL"} {
		record := domain.AlertRecord{
			ID:          asset + "-alert",
			Opportunity: domain.Opportunity{Asset: asset, BuyExchange: "binance", SellExchange: "kraken", NetProfit: 100 + float64(i), RiskLevel: domain.RiskMedium},
			AlertedAt:   t0.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, srv.RecordAlert(ctx, record))
	}

	alerts, err := srv.RecentAlerts(ctx, 2)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "SOL", alerts[0].Opportunity.Asset)
	assert.Equal(t, domain.RiskMedium, alerts[0].Opportunity.RiskLevel)
	assert.Equal(t, t0.Add(2*time.Minute), alerts[0].AlertedAt)
	assert.Equal(t, "ETH", alerts[1].Opportunity.Asset)
}

func TestPaperTrades(t *testing.T) {
	srv := newTestService(t)
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, srv.RecordPaperTrade(ctx, domain.PaperTrade{ID: "1", Asset: "BTC", TradeAmount: 10000, NetProfit: 50, BalanceAfter: 100050, ExecutedAt: t0}))
	require.NoError(t, srv.RecordPaperTrade(ctx, domain.PaperTrade{ID: "2", Asset: "ETH", TradeAmount: 10000, NetProfit: -5, BalanceAfter: 100045, ExecutedAt: t0.Add(time.Second)}))

	trades, err := srv.PaperTrades(ctx, 10)
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "2", trades[0].ID)
	assert.Equal(t, 100045.0, trades[0].BalanceAfter)

	require.NoError(t, srv.ClearPaperTrades(ctx))
	trades, err = srv.PaperTrades(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, trades)
}
