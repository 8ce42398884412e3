package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"crypto-arbitrage-scanner/internal/arbitrage"
	"crypto-arbitrage-scanner/internal/domain"
)

func testReport() arbitrage.CycleReport {
	best := domain.Opportunity{ID: "BTC-binance-coinbase-1", Asset: "BTC", NetProfit: 179.8, RiskLevel: domain.RiskLow}
	return arbitrage.CycleReport{
		At:            time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Opportunities: []domain.Opportunity{best},
		Prices: domain.QuoteTable{
			"binance":  {"BTC": {Exchange: "binance", Asset: "BTC", Mid: 100}},
			"coinbase": {"BTC": {Exchange: "coinbase", Asset: "BTC", Mid: 102}},
		},
		Stats: arbitrage.SessionStats{ActivePairs: 1, Profitable: 1, Best: &best},
	}
}

func TestPublisher(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	ctx := context.Background()
	pub, err := New(ctx, ClientConfig{Addr: mr.Addr(), Channel: "test:cycles"}, zap.NewNop())
	require.NoError(t, err)
	defer pub.Close()

	_, err = pub.Latest(ctx)
	assert.ErrorIs(t, err, ErrNoSnapshot)

	sub := redis.NewClient(&redis.Options{Addr: mr.Addr()}).Subscribe(ctx, "test:cycles")
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	pub.OnCycle(ctx, testReport())

	report, err := pub.Latest(ctx)
	require.NoError(t, err)
	require.Len(t, report.Opportunities, 1)
	assert.InDelta(t, 179.8, report.Opportunities[0].NetProfit, 1e-9)
	assert.Equal(t, 1, report.Stats.Profitable)

	assert.Equal(t, "102", mr.HGet(priceKey("coinbase"), "BTC"))

	select {
	case msg := <-sub.Channel():
		assert.Contains(t, msg.Payload, `"best":"BTC-binance-coinbase-1"`)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a cycle notification")
	}
}

func TestPublisher_TTL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	ctx := context.Background()
	pub, err := New(ctx, ClientConfig{Addr: mr.Addr(), TTL: time.Minute}, zap.NewNop())
	require.NoError(t, err)
	defer pub.Close()

	require.NoError(t, pub.Publish(ctx, testReport()))
	assert.Equal(t, time.Minute, mr.TTL(snapshotKey))

	mr.FastForward(2 * time.Minute)
	_, err = pub.Latest(ctx)
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestNew_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := New(ctx, ClientConfig{Addr: "127.0.0.1:1"}, zap.NewNop())
	assert.Error(t, err)
}
