// Package redis mirrors each committed cycle into Redis so other processes
// can read the latest snapshot or subscribe to cycle notifications.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"crypto-arbitrage-scanner/internal/arbitrage"
)

const (
	snapshotKey  = "arbitrage:snapshot"
	publishLimit = 5 * time.Second
)

var ErrNoSnapshot = errors.New("redis: no snapshot published yet")

type ClientConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
	TTL      time.Duration
}

// Publisher implements arbitrage.CycleObserver.
type Publisher struct {
	rdb     *redis.Client
	channel string
	ttl     time.Duration
	log     *zap.Logger
}

// New connects and pings Redis.
func New(ctx context.Context, cfg ClientConfig, log *zap.Logger) (*Publisher, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	channel := cfg.Channel
	if channel == "" {
		channel = "arbitrage:cycles"
	}
	return &Publisher{rdb: rdb, channel: channel, ttl: cfg.TTL, log: log}, nil
}

func priceKey(exchange string) string {
	return "arbitrage:prices:" + exchange
}

// Publish stores the snapshot and per-exchange mids, then notifies subscribers
// with a short summary.
func (p *Publisher) Publish(ctx context.Context, report arbitrage.CycleReport) error {
	blob, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("redis: marshal snapshot: %w", err)
	}

	pipe := p.rdb.TxPipeline()
	pipe.Set(ctx, snapshotKey, blob, p.ttl)
	for exchange, byAsset := range report.Prices {
		fields := make(map[string]interface{}, len(byAsset))
		for asset, q := range byAsset {
			fields[asset] = strconv.FormatFloat(q.Mid, 'f', -1, 64)
		}
		if len(fields) > 0 {
			pipe.HSet(ctx, priceKey(exchange), fields)
		}
	}

	summary := map[string]interface{}{
		"at":         report.At.UnixMilli(),
		"pairs":      report.Stats.ActivePairs,
		"profitable": report.Stats.Profitable,
	}
	if report.Stats.Best != nil {
		summary["best"] = report.Stats.Best.ID
		summary["bestNetProfit"] = report.Stats.Best.NetProfit
	}
	msg, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("redis: marshal summary: %w", err)
	}
	pipe.Publish(ctx, p.channel, msg)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: publish cycle: %w", err)
	}
	return nil
}

func (p *Publisher) OnCycle(ctx context.Context, report arbitrage.CycleReport) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishLimit)
	defer cancel()
	if err := p.Publish(ctx, report); err != nil {
		p.log.Warn("Failed to publish cycle to redis", zap.Error(err))
	}
}

// Latest reads back the last published snapshot.
func (p *Publisher) Latest(ctx context.Context) (arbitrage.CycleReport, error) {
	blob, err := p.rdb.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return arbitrage.CycleReport{}, ErrNoSnapshot
	}
	if err != nil {
		return arbitrage.CycleReport{}, fmt.Errorf("redis: get snapshot: %w", err)
	}

	var report arbitrage.CycleReport
	if err := json.Unmarshal(blob, &report); err != nil {
		return arbitrage.CycleReport{}, fmt.Errorf("redis: decode snapshot: %w", err)
	}
	return report, nil
}

func (p *Publisher) Close() error {
	return p.rdb.Close()
}
