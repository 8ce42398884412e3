package arbitrage

import (
	"context"
	"sync"
	"time"

	"crypto-arbitrage-scanner/internal/domain"
	"crypto-arbitrage-scanner/internal/notify"
)

// table builds a quote table from mid prices with a symmetric 0.1 % spread.
func table(mids map[string]map[string]float64) domain.QuoteTable {
	out := domain.QuoteTable{}
	for ex, byAsset := range mids {
		out[ex] = map[string]domain.Quote{}
		for asset, mid := range byAsset {
			out[ex][asset] = domain.Quote{
				Exchange: ex,
				Asset:    asset,
				Mid:      mid,
				Bid:      mid * 0.9995,
				Ask:      mid * 1.0005,
			}
		}
	}
	return out
}

func flatFees(rate float64) domain.FeeSchedule {
	return domain.FeeSchedule{
		TradingFees:       map[string]float64{"binance": rate, "coinbase": rate, "kraken": rate},
		WithdrawalFees:    map[string]map[string]float64{},
		DefaultTradingFee: rate,
	}
}

func plainParams() ScanParams {
	return ScanParams{TradeAmount: 10000, MinProfitFilter: -100}
}

func fixedNow() time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

type recordingSink struct {
	mu     sync.Mutex
	name   string
	err    error
	alerts []notify.Alert
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Send(_ context.Context, alert notify.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, alert)
	return s.err
}

func (s *recordingSink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.alerts)
}

type fakeFeed struct {
	name   string
	mids   map[string]float64
	err    error
	block  bool
	called chan struct{}

	mu    sync.Mutex
	calls int
}

func (f *fakeFeed) Name() string { return f.name }

func (f *fakeFeed) FetchQuotes(ctx context.Context) (domain.ExchangeQuotes, error) {
	f.mu.Lock()
	f.calls++
	first := f.calls == 1
	f.mu.Unlock()

	if f.called != nil {
		select {
		case f.called <- struct{}{}:
		default:
		}
	}
	if f.block && first {
		<-ctx.Done()
		return domain.ExchangeQuotes{}, ctx.Err()
	}
	if f.err != nil {
		return domain.ExchangeQuotes{}, f.err
	}

	quotes := make(map[string]domain.Quote, len(f.mids))
	for asset, mid := range f.mids {
		quotes[asset] = domain.Quote{Asset: asset, Mid: mid, Bid: mid, Ask: mid}
	}
	return domain.ExchangeQuotes{Exchange: f.name, Quotes: quotes}, nil
}
