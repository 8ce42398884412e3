package arbitrage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"crypto-arbitrage-scanner/internal/domain"
	"crypto-arbitrage-scanner/internal/metrics"
	"crypto-arbitrage-scanner/internal/notify"
)

const (
	DefaultAlertCooldown    = 10 * time.Second
	DefaultAlertHistorySize = 50
	sinkTimeout             = 10 * time.Second
)

type AlertThresholds struct {
	Profit float64 `json:"profitThreshold"`
	ROI    float64 `json:"roiThreshold"`
}

// AlertRecorder persists dispatched alerts.
type AlertRecorder interface {
	RecordAlert(ctx context.Context, record domain.AlertRecord) error
}

// Alerter dispatches the best qualifying opportunity of a cycle to every sink,
// at most once per cooldown window across all assets.
type Alerter struct {
	log      *zap.Logger
	limiter  *rate.Limiter
	recorder AlertRecorder

	mu         sync.RWMutex
	sinks      []notify.Sink
	thresholds AlertThresholds
	history    []domain.AlertRecord
	historyCap int

	inflight sync.WaitGroup
}

func NewAlerter(log *zap.Logger, thresholds AlertThresholds, cooldown time.Duration, historySize int, sinks ...notify.Sink) *Alerter {
	if cooldown <= 0 {
		cooldown = DefaultAlertCooldown
	}
	if historySize <= 0 {
		historySize = DefaultAlertHistorySize
	}
	return &Alerter{
		log:        log,
		limiter:    rate.NewLimiter(rate.Every(cooldown), 1),
		sinks:      sinks,
		thresholds: thresholds,
		historyCap: historySize,
	}
}

func (a *Alerter) SetRecorder(recorder AlertRecorder) {
	a.recorder = recorder
}

func (a *Alerter) AddSink(sink notify.Sink) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sinks = append(a.sinks, sink)
}

func (a *Alerter) Thresholds() AlertThresholds {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.thresholds
}

func (a *Alerter) SetThresholds(t AlertThresholds) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.thresholds = t
}

// Qualifies reports whether o crosses either threshold.
func (t AlertThresholds) Qualifies(o domain.Opportunity) bool {
	return o.NetProfit >= t.Profit || o.ROI >= t.ROI
}

// Check takes the ranked opportunity set of a cycle and dispatches the first
// qualifying one if the global limiter allows it. It returns the dispatched
// opportunity. Sink calls run in the background; see Wait.
func (a *Alerter) Check(ctx context.Context, ranked []domain.Opportunity, now time.Time) (domain.Opportunity, bool) {
	thresholds := a.Thresholds()

	var best domain.Opportunity
	found := false
	for _, o := range ranked {
		if thresholds.Qualifies(o) {
			best, found = o, true
			break
		}
	}
	if !found {
		return domain.Opportunity{}, false
	}

	if !a.limiter.AllowN(now, 1) {
		a.log.Debug("alert suppressed by rate limit", zap.String("asset", best.Asset))
		return domain.Opportunity{}, false
	}

	record := domain.AlertRecord{ID: uuid.NewString(), Opportunity: best, AlertedAt: now}
	a.appendHistory(record)
	metrics.AlertsDispatched.Inc()

	a.log.Info("dispatching alert",
		zap.String("asset", best.Asset),
		zap.String("buy", best.BuyExchange),
		zap.String("sell", best.SellExchange),
		zap.Float64("netProfit", best.NetProfit),
		zap.Float64("roi", best.ROI),
	)

	a.dispatch(context.WithoutCancel(ctx), notify.FromOpportunity(best))

	if a.recorder != nil {
		if err := a.recorder.RecordAlert(ctx, record); err != nil {
			a.log.Warn("failed to record alert", zap.Error(err))
		}
	}

	return best, true
}

// SendTest pushes the fixed test payload through every sink, bypassing the limiter.
func (a *Alerter) SendTest(ctx context.Context) {
	a.dispatch(context.WithoutCancel(ctx), notify.TestAlert())
}

func (a *Alerter) dispatch(ctx context.Context, alert notify.Alert) {
	a.mu.RLock()
	sinks := append([]notify.Sink(nil), a.sinks...)
	a.mu.RUnlock()

	for _, sink := range sinks {
		a.inflight.Add(1)
		go func(sink notify.Sink) {
			defer a.inflight.Done()

			sinkCtx, cancel := context.WithTimeout(ctx, sinkTimeout)
			defer cancel()

			if err := sink.Send(sinkCtx, alert); err != nil {
				metrics.SinkErrors.WithLabelValues(sink.Name()).Inc()
				a.log.Error("alert sink failed", zap.String("sink", sink.Name()), zap.Error(err))
			}
		}(sink)
	}
}

// Wait blocks until every in-flight sink call has returned.
func (a *Alerter) Wait() {
	a.inflight.Wait()
}

func (a *Alerter) appendHistory(record domain.AlertRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.history = append([]domain.AlertRecord{record}, a.history...)
	if len(a.history) > a.historyCap {
		a.history = a.history[:a.historyCap]
	}
}

// History returns the alert log, most recent first.
func (a *Alerter) History() []domain.AlertRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]domain.AlertRecord(nil), a.history...)
}

// RestoreHistory seeds the log from persisted records, most recent first.
func (a *Alerter) RestoreHistory(records []domain.AlertRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(records) > a.historyCap {
		records = records[:a.historyCap]
	}
	a.history = append([]domain.AlertRecord(nil), records...)
}
