package arbitrage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"crypto-arbitrage-scanner/internal/domain"
	"crypto-arbitrage-scanner/internal/metrics"
)

// ArbitrageScheduledWatcher drives refresh cycles from a ticker. A new tick
// cancels the cycle still in flight; only the newest cycle may commit.
type ArbitrageScheduledWatcher struct {
	Feeds  []domain.PriceFeed
	Mode   domain.ArbitrageWatcherModeEnum
	engine *Engine
	log    *zap.Logger

	mu         sync.Mutex
	interval   time.Duration
	paused     bool
	generation uint64
	cancel     context.CancelFunc

	intervalCh chan time.Duration
	trigger    chan struct{}
	wg         sync.WaitGroup
}

func NewArbitrageScheduledWatcher(feeds []domain.PriceFeed, engine *Engine, interval time.Duration, mode domain.ArbitrageWatcherModeEnum, log *zap.Logger) *ArbitrageScheduledWatcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &ArbitrageScheduledWatcher{
		Feeds:      feeds,
		Mode:       mode,
		engine:     engine,
		log:        log,
		interval:   interval,
		intervalCh: make(chan time.Duration, 1),
		trigger:    make(chan struct{}, 1),
	}
}

// Start blocks until ctx is cancelled.
func (watcher *ArbitrageScheduledWatcher) Start(ctx context.Context) {
	if watcher.Mode == domain.Stream {
		watcher.StartStream(ctx)
	}
	watcher.StartScheduled(ctx)
}

func (watcher *ArbitrageScheduledWatcher) StartScheduled(ctx context.Context) {
	ticker := time.NewTicker(watcher.Interval())
	defer ticker.Stop()
	defer watcher.wg.Wait()

	watcher.log.Info("Start watching " + fmt.Sprint(len(watcher.Feeds)) + " exchanges every " + watcher.Interval().String())

	// Run immediately first time
	watcher.Refresh(ctx)

	// Then run on ticker
	for {
		select {
		case <-ctx.Done():
			watcher.log.Info("Stop watching")
			watcher.cancelInFlight()
			return
		case <-ticker.C:
			if !watcher.Paused() {
				watcher.Refresh(ctx)
			}
		case <-watcher.trigger:
			watcher.Refresh(ctx)
		case interval := <-watcher.intervalCh:
			ticker.Reset(interval)
			watcher.log.Info("Refresh interval changed to " + interval.String())
		}
	}
}

func (watcher *ArbitrageScheduledWatcher) StartStream(ctx context.Context) {
	for _, feed := range watcher.Feeds {
		streamer, ok := feed.(domain.Streamer)
		if !ok {
			continue
		}
		watcher.log.Info("Start streaming " + feed.Name())
		if err := streamer.Subscribe(ctx); err != nil {
			watcher.log.Error("Failed to subscribe to "+feed.Name(), zap.Error(err))
		}
	}
}

// Refresh starts a new cycle in the background, superseding any cycle in flight.
func (watcher *ArbitrageScheduledWatcher) Refresh(ctx context.Context) {
	cycleCtx, generation := watcher.begin(ctx)
	watcher.wg.Add(1)
	go func() {
		defer watcher.wg.Done()
		_ = watcher.run(cycleCtx, generation)
	}()
}

// RunOnce runs one cycle synchronously, superseding any cycle in flight.
func (watcher *ArbitrageScheduledWatcher) RunOnce(ctx context.Context) error {
	cycleCtx, generation := watcher.begin(ctx)
	return watcher.run(cycleCtx, generation)
}

func (watcher *ArbitrageScheduledWatcher) begin(ctx context.Context) (context.Context, uint64) {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()

	if watcher.cancel != nil {
		watcher.cancel()
	}
	watcher.generation++
	cycleCtx, cancel := context.WithTimeout(ctx, watcher.interval)
	watcher.cancel = cancel
	return cycleCtx, watcher.generation
}

func (watcher *ArbitrageScheduledWatcher) isCurrent(generation uint64) bool {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	return watcher.generation == generation
}

func (watcher *ArbitrageScheduledWatcher) cancelInFlight() {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	if watcher.cancel != nil {
		watcher.cancel()
		watcher.cancel = nil
	}
}

func (watcher *ArbitrageScheduledWatcher) run(ctx context.Context, generation uint64) error {
	current := func() bool { return watcher.isCurrent(generation) }

	results, err := FetchAll(ctx, watcher.Feeds)
	if err != nil {
		if !current() {
			metrics.CyclesSuperseded.Inc()
			return ErrSuperseded
		}
		metrics.CyclesFailed.Inc()
		watcher.engine.Session().Fail(err)
		watcher.log.Error("Refresh cycle aborted", zap.Error(err))
		return err
	}

	_, err = watcher.engine.Process(ctx, results, current)
	switch {
	case errors.Is(err, ErrSuperseded):
		metrics.CyclesSuperseded.Inc()
	case err != nil:
		metrics.CyclesFailed.Inc()
		watcher.log.Error("Scan failed", zap.Error(err))
	default:
		metrics.CyclesCompleted.Inc()
	}
	return err
}

// FetchAll queries every feed concurrently and returns only once all of them
// have answered. Any failure fails the whole fetch.
func FetchAll(ctx context.Context, feeds []domain.PriceFeed) ([]domain.ExchangeQuotes, error) {
	if len(feeds) == 0 {
		return nil, errors.New("no price feeds configured")
	}

	results := make([]domain.ExchangeQuotes, len(feeds))
	g, gctx := errgroup.WithContext(ctx)
	for i, feed := range feeds {
		i, feed := i, feed
		g.Go(func() error {
			start := time.Now()
			res, err := feed.FetchQuotes(gctx)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", feed.Name(), err)
			}
			metrics.FetchLatency.WithLabelValues(feed.Name()).Observe(time.Since(start).Seconds())
			if res.Exchange == "" {
				res.Exchange = feed.Name()
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (watcher *ArbitrageScheduledWatcher) Interval() time.Duration {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	return watcher.interval
}

func (watcher *ArbitrageScheduledWatcher) SetInterval(interval time.Duration) error {
	if interval < 500*time.Millisecond {
		return fmt.Errorf("refresh interval %s is below 500ms", interval)
	}
	watcher.mu.Lock()
	watcher.interval = interval
	watcher.mu.Unlock()

	select {
	case <-watcher.intervalCh:
	default:
	}
	watcher.intervalCh <- interval
	return nil
}

func (watcher *ArbitrageScheduledWatcher) Paused() bool {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	return watcher.paused
}

func (watcher *ArbitrageScheduledWatcher) Pause() {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	watcher.paused = true
}

func (watcher *ArbitrageScheduledWatcher) Resume() {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	watcher.paused = false
}

// Trigger asks the running watcher for an immediate refresh.
func (watcher *ArbitrageScheduledWatcher) Trigger() {
	select {
	case watcher.trigger <- struct{}{}:
	default:
	}
}
