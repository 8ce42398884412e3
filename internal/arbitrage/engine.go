package arbitrage

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"crypto-arbitrage-scanner/internal/domain"
	"crypto-arbitrage-scanner/internal/metrics"
)

var (
	ErrSuperseded = errors.New("cycle superseded by a newer refresh")
	ErrNoQuotes   = errors.New("no quotes received")
)

// CycleReport is what observers receive after a cycle commits.
type CycleReport struct {
	At            time.Time            `json:"at"`
	Opportunities []domain.Opportunity `json:"opportunities"`
	Prices        domain.QuoteTable    `json:"prices"`
	Stats         SessionStats         `json:"stats"`
	Alert         *domain.Opportunity  `json:"alert,omitempty"`
}

type CycleObserver interface {
	OnCycle(ctx context.Context, report CycleReport)
}

// Engine runs the one-way pipeline of a cycle: quotes, scan, ranking, commit,
// alerting and observers.
type Engine struct {
	session   *Session
	scanner   *Scanner
	alerter   *Alerter
	log       *zap.Logger
	cycleLog  *zap.Logger
	observers []CycleObserver
	commitMu  sync.Mutex
	Now       func() time.Time
}

func NewEngine(session *Session, scanner *Scanner, alerter *Alerter, log *zap.Logger, cycleLog *zap.Logger) *Engine {
	return &Engine{
		session:  session,
		scanner:  scanner,
		alerter:  alerter,
		log:      log,
		cycleLog: cycleLog,
		Now:      time.Now,
	}
}

func (e *Engine) AddObserver(o CycleObserver) {
	e.observers = append(e.observers, o)
}

func (e *Engine) Session() *Session {
	return e.session
}

func (e *Engine) Alerter() *Alerter {
	return e.alerter
}

// Process turns one cycle's fetched quotes into a committed, ranked
// opportunity set. current is consulted right before committing; when it
// reports false the cycle is dropped with ErrSuperseded.
func (e *Engine) Process(ctx context.Context, results []domain.ExchangeQuotes, current func() bool) (CycleReport, error) {
	quotes := 0
	for _, res := range results {
		quotes += len(res.Quotes)
	}
	if quotes == 0 {
		e.session.Fail(ErrNoQuotes)
		return CycleReport{}, ErrNoQuotes
	}

	snapshot, previous := e.session.Prepare(results)
	params := e.session.Params()

	result, err := e.scanner.Scan(snapshot, params)
	if err != nil {
		e.session.Fail(err)
		return CycleReport{}, err
	}
	ranked := e.rank(result.Opportunities)

	at := e.Now()
	e.commitMu.Lock()
	if current != nil && !current() {
		e.commitMu.Unlock()
		return CycleReport{}, ErrSuperseded
	}
	e.session.Commit(snapshot, previous, result, ranked, at)
	e.commitMu.Unlock()

	e.record(result, ranked)
	return e.finish(ctx, ranked, at), nil
}

// Rescan re-evaluates the current quotes, e.g. after a settings or sort change.
// commitMu is held from snapshot to commit so a cycle cannot commit newer
// quotes underneath it.
func (e *Engine) Rescan(ctx context.Context) (CycleReport, error) {
	e.commitMu.Lock()
	result, err := e.scanner.Scan(e.session.Snapshot(), e.session.Params())
	if err != nil {
		e.commitMu.Unlock()
		return CycleReport{}, err
	}
	ranked := e.rank(result.Opportunities)
	e.session.CommitRescan(result, ranked)
	e.commitMu.Unlock()

	e.record(result, ranked)
	return e.finish(ctx, ranked, e.Now()), nil
}

func (e *Engine) rank(opps []domain.Opportunity) []domain.Opportunity {
	field, direction := e.session.Sort()
	return SortOpportunities(opps, field, direction)
}

func (e *Engine) record(result ScanResult, ranked []domain.Opportunity) {
	metrics.OpportunitiesScanned.Add(float64(result.Scanned))
	for asset, n := range result.Frequency {
		metrics.OpportunitiesFound.WithLabelValues(asset).Add(float64(n))
	}
	if len(ranked) > 0 {
		metrics.BestNetProfit.Set(ranked[0].NetProfit)
	}
}

func (e *Engine) finish(ctx context.Context, ranked []domain.Opportunity, at time.Time) CycleReport {
	report := CycleReport{
		At:            at,
		Opportunities: ranked,
		Prices:        e.session.Prices(),
		Stats:         e.session.Stats(),
	}

	if e.alerter != nil {
		if best, ok := e.alerter.Check(ctx, ranked, at); ok {
			report.Alert = &best
		}
	}

	e.logCycle(report)

	for _, o := range e.observers {
		o.OnCycle(ctx, report)
	}
	return report
}

func (e *Engine) logCycle(report CycleReport) {
	summary := struct {
		At         time.Time            `json:"at"`
		Pairs      int                  `json:"pairs"`
		Profitable int                  `json:"profitable"`
		Top        []domain.Opportunity `json:"top"`
	}{
		At:         report.At,
		Pairs:      report.Stats.ActivePairs,
		Profitable: report.Stats.Profitable,
		Top:        Limit(report.Opportunities, 5),
	}
	jsonBytes, err := json.Marshal(summary)
	if err != nil {
		e.log.Error("Failed to marshal arbitrage output: " + err.Error())
		return
	}
	e.cycleLog.Info(string(jsonBytes))
}
