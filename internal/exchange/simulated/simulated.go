// Package simulated produces synthetic quotes around configured base prices
// for exchanges without a live client.
package simulated

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"crypto-arbitrage-scanner/internal/arbitrage"
	"crypto-arbitrage-scanner/internal/domain"
)

var ErrInjectedFailure = errors.New("simulated exchange failure")

type SimulatedExchange struct {
	name       string
	assets     []string
	basePrices map[string]float64
	offset     float64
	random     arbitrage.RandomSource
	log        *zap.Logger

	// Each fetch sleeps MinDelay plus up to MaxJitter.
	MinDelay  time.Duration
	MaxJitter time.Duration
	// FailureRate is the probability a fetch fails, for exercising error paths.
	FailureRate float64
	Now         func() time.Time
}

func CreateClient(name string, assets []string, basePrices map[string]float64, offset float64, rnd arbitrage.RandomSource, log *zap.Logger) *SimulatedExchange {
	if rnd == nil {
		rnd = arbitrage.NewRandomSource()
	}
	return &SimulatedExchange{
		name:       name,
		assets:     assets,
		basePrices: basePrices,
		offset:     offset,
		random:     rnd,
		log:        log,
		MinDelay:   100 * time.Millisecond,
		MaxJitter:  300 * time.Millisecond,
		Now:        time.Now,
	}
}

func (exchange *SimulatedExchange) Name() string {
	return exchange.name
}

func (exchange *SimulatedExchange) FetchQuotes(ctx context.Context) (domain.ExchangeQuotes, error) {
	start := time.Now()

	delay := exchange.MinDelay + time.Duration(exchange.random.Float64()*float64(exchange.MaxJitter))
	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return domain.ExchangeQuotes{}, ctx.Err()
		case <-timer.C:
		}
	}

	if exchange.FailureRate > 0 && exchange.random.Float64() < exchange.FailureRate {
		return domain.ExchangeQuotes{}, fmt.Errorf("%s: %w", exchange.name, ErrInjectedFailure)
	}

	now := exchange.Now()
	quotes := make(map[string]domain.Quote, len(exchange.assets))
	for _, asset := range exchange.assets {
		base, ok := exchange.basePrices[asset]
		if !ok || base <= 0 {
			continue
		}

		baseVariation := (exchange.random.Float64() - 0.5) * 0.015
		mid := base * (1 + baseVariation + exchange.offset)
		spread := mid * (0.0005 + exchange.random.Float64()*0.002)

		quotes[asset] = domain.Quote{
			Exchange:  exchange.name,
			Asset:     asset,
			Mid:       mid,
			Bid:       mid - spread/2,
			Ask:       mid + spread/2,
			Volume:    exchange.random.Float64() * 1000000,
			Change24h: (exchange.random.Float64() - 0.5) * 10,
			Timestamp: now,
		}
	}

	latency := time.Since(start)
	exchange.log.Debug("Simulated quotes generated",
		zap.String("exchange", exchange.name),
		zap.Int("assets", len(quotes)),
		zap.Duration("latency", latency),
	)

	return domain.ExchangeQuotes{Exchange: exchange.name, Quotes: quotes, Latency: latency}, nil
}
