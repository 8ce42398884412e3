package arbitrage

import (
	"maps"
	"slices"
	"sync"
	"time"

	"crypto-arbitrage-scanner/internal/domain"
)

type SessionConfig struct {
	Assets        []string
	Exchanges     []string
	Fees          domain.FeeSchedule
	Params        ScanParams
	HistoryLength int
}

// Session is the state carried from one refresh cycle to the next. Every
// accessor returns a copy; cycles replace state wholesale in Commit.
type Session struct {
	mu sync.RWMutex

	assets    []string
	exchanges []string
	baseFees  domain.FeeSchedule
	settings  domain.Settings
	params    ScanParams

	sortField          string
	sortDirection      domain.SortDirection
	showProfitableOnly bool

	current  domain.QuoteTable
	previous domain.QuoteTable
	history  *PriceHistory

	opportunities []domain.Opportunity
	frequency     map[string]int
	totalFound    int
	lastScanned   int
	cycles        int

	startedAt  time.Time
	lastUpdate time.Time
	lastError  error
}

func NewSession(cfg SessionConfig) *Session {
	settings := domain.DefaultSettings()
	settings.TradeAmount = cfg.Params.TradeAmount
	settings.MinProfit = cfg.Params.MinProfitFilter
	settings.Slippage = cfg.Params.SlippagePercent

	frequency := make(map[string]int, len(cfg.Assets))
	for _, asset := range cfg.Assets {
		frequency[asset] = 0
	}

	return &Session{
		assets:        slices.Clone(cfg.Assets),
		exchanges:     slices.Clone(cfg.Exchanges),
		baseFees:      cfg.Fees,
		settings:      settings,
		params:        cfg.Params,
		sortField:     DefaultSortField,
		sortDirection: domain.Descending,
		current:       domain.QuoteTable{},
		previous:      domain.QuoteTable{},
		history:       NewPriceHistory(cfg.HistoryLength),
		opportunities: []domain.Opportunity{},
		frequency:     frequency,
		startedAt:     time.Now(),
	}
}

// Snapshot is the scan input for the current quotes. It does not advance the
// price history.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(s.current.Clone(), s.history.Clone())
}

func (s *Session) snapshotLocked(quotes domain.QuoteTable, history *PriceHistory) Snapshot {
	return Snapshot{
		Quotes:    quotes,
		Exchanges: slices.Clone(s.exchanges),
		Assets:    slices.Clone(s.assets),
		History:   history,
		Fees:      s.baseFees.WithTradingFees(s.settings.TradingFees),
	}
}

// Prepare builds the next cycle's quote table and history from freshly
// fetched quotes without touching session state. Each quote carries the mid
// it replaces in PrevMid.
func (s *Session) Prepare(results []domain.ExchangeQuotes) (Snapshot, domain.QuoteTable) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	previous := s.current.Clone()
	next := s.current.Clone()
	for _, res := range results {
		byAsset := make(map[string]domain.Quote, len(res.Quotes))
		for asset, q := range res.Quotes {
			q.Exchange = res.Exchange
			q.Asset = asset
			if prev, ok := previous.Get(res.Exchange, asset); ok {
				q.PrevMid = prev.Mid
			}
			byAsset[asset] = q
		}
		next[res.Exchange] = byAsset
	}

	history := s.history.Clone()
	for _, asset := range s.assets {
		history.Push(asset, next.AverageMid(asset))
	}

	return s.snapshotLocked(next, history), previous
}

// Commit installs a finished cycle: quotes, history, the ranked opportunity
// set and the counters produced by the scan.
func (s *Session) Commit(snapshot Snapshot, previous domain.QuoteTable, result ScanResult, ranked []domain.Opportunity, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.previous = previous
	s.current = snapshot.Quotes
	s.history = snapshot.History
	s.commitScanLocked(result, ranked)
	s.lastUpdate = at
	s.lastError = nil
	s.cycles++
}

// CommitRescan installs a rescan of the unchanged quotes.
func (s *Session) CommitRescan(result ScanResult, ranked []domain.Opportunity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitScanLocked(result, ranked)
}

func (s *Session) commitScanLocked(result ScanResult, ranked []domain.Opportunity) {
	s.opportunities = ranked
	s.lastScanned = result.Scanned
	s.totalFound += result.ProfitableFound
	for asset, n := range result.Frequency {
		s.frequency[asset] += n
	}
}

// Fail records a cycle failure; quotes and opportunities stay as they were.
func (s *Session) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = err
}

func (s *Session) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// Opportunities returns the full sorted, unfiltered set of the last cycle.
func (s *Session) Opportunities() []domain.Opportunity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.opportunities)
}

// View applies the session's display filter to the sorted set.
func (s *Session) View() []domain.Opportunity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.showProfitableOnly {
		return FilterProfitable(s.opportunities)
	}
	return slices.Clone(s.opportunities)
}

func (s *Session) Prices() domain.QuoteTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

func (s *Session) PreviousPrices() domain.QuoteTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.previous.Clone()
}

func (s *Session) History(asset string) []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Points(asset)
}

func (s *Session) Params() ScanParams {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

func (s *Session) Sort() (string, domain.SortDirection) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortField, s.sortDirection
}

// SetSort changes the ranking order. Selecting the current field again flips
// the direction; a new field starts descending.
func (s *Session) SetSort(field string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if field == s.sortField {
		if s.sortDirection == domain.Descending {
			s.sortDirection = domain.Ascending
		} else {
			s.sortDirection = domain.Descending
		}
		return
	}
	s.sortField = field
	s.sortDirection = domain.Descending
}

func (s *Session) ShowProfitableOnly() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.showProfitableOnly
}

func (s *Session) SetShowProfitableOnly(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showProfitableOnly = v
}

func (s *Session) Exchanges() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.exchanges)
}

func (s *Session) Assets() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.assets)
}

func (s *Session) Settings() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.settings
	out.PinnedAssets = slices.Clone(s.settings.PinnedAssets)
	out.Watchlist = slices.Clone(s.settings.Watchlist)
	out.TradingFees = maps.Clone(s.settings.TradingFees)
	return out
}

// ApplySettings installs a settings blob and derives the scan parameters
// from it. The bid/ask, latency and gas toggles are kept.
func (s *Session) ApplySettings(settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	params := s.params
	params.TradeAmount = settings.TradeAmount
	params.MinProfitFilter = settings.MinProfit
	params.SlippagePercent = settings.Slippage
	if err := params.Validate(); err != nil {
		return err
	}
	s.params = params
	s.settings = settings
	return nil
}

// SetPaperAccount mirrors the paper trading balances into the settings blob.
func (s *Session) SetPaperAccount(balance, pnl float64, trades int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.PaperBalance = balance
	s.settings.PaperPnL = pnl
	s.settings.TradesExecuted = trades
}

func toggle(list []string, item string) []string {
	if i := slices.Index(list, item); i >= 0 {
		return slices.Delete(slices.Clone(list), i, i+1)
	}
	return append(slices.Clone(list), item)
}

func (s *Session) TogglePin(asset string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.PinnedAssets = toggle(s.settings.PinnedAssets, asset)
	return slices.Clone(s.settings.PinnedAssets)
}

func (s *Session) ToggleWatchlist(asset string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Watchlist = toggle(s.settings.Watchlist, asset)
	return slices.Clone(s.settings.Watchlist)
}

type SessionStats struct {
	ActivePairs             int                 `json:"activePairs"`
	Profitable              int                 `json:"profitable"`
	HighRisk                int                 `json:"highRisk"`
	Best                    *domain.Opportunity `json:"best,omitempty"`
	LastScanned             int                 `json:"lastScanned"`
	TotalOpportunitiesFound int                 `json:"totalOpportunitiesFound"`
	Frequency               map[string]int      `json:"opportunityFrequency"`
	Cycles                  int                 `json:"cycles"`
	LastUpdate              time.Time           `json:"lastUpdate"`
	SessionStartedAt        time.Time           `json:"sessionStartedAt"`
	LastError               string              `json:"lastError,omitempty"`
}

func (s *Session) Stats() SessionStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := SessionStats{
		ActivePairs:             len(s.opportunities),
		LastScanned:             s.lastScanned,
		TotalOpportunitiesFound: s.totalFound,
		Frequency:               maps.Clone(s.frequency),
		Cycles:                  s.cycles,
		LastUpdate:              s.lastUpdate,
		SessionStartedAt:        s.startedAt,
	}
	for _, o := range s.opportunities {
		if o.IsProfitable {
			stats.Profitable++
			if stats.Best == nil {
				best := o
				stats.Best = &best
			}
		}
		if o.RiskLevel == domain.RiskHigh {
			stats.HighRisk++
		}
	}
	if s.lastError != nil {
		stats.LastError = s.lastError.Error()
	}
	return stats
}
