package simulated

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"crypto-arbitrage-scanner/internal/arbitrage"
)

func newInstant(offset float64, rnd arbitrage.RandomSource) *SimulatedExchange {
	ex := CreateClient("coinbase", []string{"BTC", "ETH", "UNKNOWN"}, map[string]float64{"BTC": 43250, "ETH": 2280}, offset, rnd, zap.NewNop())
	ex.MinDelay, ex.MaxJitter = 0, 0
	return ex
}

func TestFetchQuotes_Deterministic(t *testing.T) {
	ex := newInstant(0.002, arbitrage.FixedRandom(0.5))

	res, err := ex.FetchQuotes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "coinbase", res.Exchange)
	require.Len(t, res.Quotes, 2)

	btc := res.Quotes["BTC"]
	assert.InDelta(t, 43250*1.002, btc.Mid, 1e-6)
	spread := btc.Mid * 0.0015
	assert.InDelta(t, btc.Mid-spread/2, btc.Bid, 1e-6)
	assert.InDelta(t, btc.Mid+spread/2, btc.Ask, 1e-6)
	assert.InDelta(t, 500000, btc.Volume, 1e-6)
	assert.InDelta(t, 0, btc.Change24h, 1e-9)
	assert.Equal(t, "BTC", btc.Asset)
}

func TestFetchQuotes_Bounds(t *testing.T) {
	ex := newInstant(0, arbitrage.NewSeededRandomSource(11))

	for i := 0; i < 50; i++ {
		res, err := ex.FetchQuotes(context.Background())
		require.NoError(t, err)
		for _, q := range res.Quotes {
			assert.Less(t, q.Bid, q.Ask)
			assert.InDelta(t, q.Mid, (q.Bid+q.Ask)/2, 1e-6)
		}
		eth := res.Quotes["ETH"]
		assert.InDelta(t, 2280, eth.Mid, 2280*0.0075+1e-9)
	}
}

func TestFetchQuotes_HonorsContext(t *testing.T) {
	ex := newInstant(0, arbitrage.FixedRandom(0.5))
	ex.MinDelay = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := ex.FetchQuotes(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetchQuotes_InjectedFailure(t *testing.T) {
	ex := newInstant(0, arbitrage.FixedRandom(0.1))
	ex.FailureRate = 0.5

	_, err := ex.FetchQuotes(context.Background())
	assert.ErrorIs(t, err, ErrInjectedFailure)
}
