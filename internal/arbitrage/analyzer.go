package arbitrage

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"crypto-arbitrage-scanner/internal/domain"
)

var ErrInvalidTradeParams = errors.New("invalid trade parameters")

const DefaultOpportunityWindow = 30 * time.Second

type ScanParams struct {
	TradeAmount     float64 `json:"tradeAmount"`
	SlippagePercent float64 `json:"slippagePercent"`
	MinProfitFilter float64 `json:"minProfitFilter"`
	UseBidAsk       bool    `json:"useBidAsk"`
	IncludeLatency  bool    `json:"includeLatency"`
	DynamicGas      bool    `json:"dynamicGas"`
}

func (p ScanParams) Validate() error {
	if p.TradeAmount <= 0 {
		return fmt.Errorf("%w: trade amount must be positive, got %v", ErrInvalidTradeParams, p.TradeAmount)
	}
	if p.SlippagePercent < 0 {
		return fmt.Errorf("%w: slippage must not be negative, got %v", ErrInvalidTradeParams, p.SlippagePercent)
	}
	return nil
}

// Snapshot is the immutable input of one scan.
type Snapshot struct {
	Quotes    domain.QuoteTable
	Exchanges []string
	Assets    []string
	History   *PriceHistory
	Fees      domain.FeeSchedule
}

type ScanResult struct {
	Opportunities   []domain.Opportunity
	Scanned         int
	ProfitableFound int
	Frequency       map[string]int
}

type GasPolicy struct {
	Assets     []string
	NetworkFee float64
}

type Scanner struct {
	Scorer Scorer
	Gas    GasPolicy
	Random RandomSource
	Window time.Duration
	Now    func() time.Time
}

func NewScanner(reliable []string, gas GasPolicy, rnd RandomSource, window time.Duration) *Scanner {
	if rnd == nil {
		rnd = NewRandomSource()
	}
	if window <= 0 {
		window = DefaultOpportunityWindow
	}
	return &Scanner{
		Scorer: Scorer{Reliable: reliable, Random: rnd},
		Gas:    gas,
		Random: rnd,
		Window: window,
		Now:    time.Now,
	}
}

// Scan evaluates every ordered pair of distinct enabled exchanges for every
// tracked asset. Enumeration order is asset, then buy exchange, then sell
// exchange; ranking relies on it as the secondary order.
func (s *Scanner) Scan(snapshot Snapshot, params ScanParams) (ScanResult, error) {
	if err := params.Validate(); err != nil {
		return ScanResult{}, err
	}

	result := ScanResult{
		Opportunities: make([]domain.Opportunity, 0),
		Frequency:     make(map[string]int),
	}
	createdAt := s.Now()

	for _, asset := range snapshot.Assets {
		for i, buyExchange := range snapshot.Exchanges {
			for j, sellExchange := range snapshot.Exchanges {
				if i == j || buyExchange == sellExchange {
					continue
				}

				buyQuote, ok := snapshot.Quotes.Get(buyExchange, asset)
				if !ok {
					continue
				}
				sellQuote, ok := snapshot.Quotes.Get(sellExchange, asset)
				if !ok {
					continue
				}

				result.Scanned++
				buyQuote.Exchange, sellQuote.Exchange = buyExchange, sellExchange

				opportunity, ok := s.evaluate(snapshot, params, asset, buyQuote, sellQuote, createdAt)
				if !ok {
					continue
				}

				result.Opportunities = append(result.Opportunities, opportunity)
				if opportunity.NetProfit > 0 {
					result.Frequency[asset]++
					result.ProfitableFound++
				}
			}
		}
	}

	return result, nil
}

func (s *Scanner) evaluate(snapshot Snapshot, params ScanParams, asset string, buyQuote, sellQuote domain.Quote, createdAt time.Time) (domain.Opportunity, bool) {
	buyPrice, sellPrice := buyQuote.Mid, sellQuote.Mid
	if params.UseBidAsk {
		buyPrice, sellPrice = buyQuote.Ask, sellQuote.Bid
	}
	if buyPrice <= 0 {
		return domain.Opportunity{}, false
	}

	tradeAmount := params.TradeAmount
	slippageCost := tradeAmount * params.SlippagePercent / 100
	effectiveAmount := tradeAmount - slippageCost
	coinAmount := effectiveAmount / buyPrice

	grossRevenue := coinAmount * sellPrice
	grossProfit := grossRevenue - tradeAmount

	fees := domain.FeeBreakdown{
		BuyTradingFee:  tradeAmount * snapshot.Fees.TradingFee(buyQuote.Exchange),
		SellTradingFee: grossRevenue * snapshot.Fees.TradingFee(sellQuote.Exchange),
		WithdrawalFee:  snapshot.Fees.WithdrawalFee(buyQuote.Exchange, asset) * sellPrice,
		SlippageCost:   slippageCost,
	}
	if params.DynamicGas && slices.Contains(s.Gas.Assets, asset) {
		fees.WithdrawalFee += s.Gas.NetworkFee * (0.8 + s.Random.Float64()*0.4)
	}
	if params.IncludeLatency {
		fees.LatencyRisk = tradeAmount * 0.001 * (s.Random.Float64() + 0.5)
	}

	totalFees := fees.Total()
	netProfit := grossProfit - totalFees
	roi := netProfit / tradeAmount * 100

	confidence := s.Scorer.CalculateConfidence(asset, buyQuote.Exchange, sellQuote.Exchange, roi, grossProfit, snapshot.History)
	riskLevel := CalculateRiskLevel(roi, confidence, fees.WithdrawalFee, tradeAmount)
	successProbability := CalculateSuccessProbability(roi, confidence, riskLevel)

	if roi < params.MinProfitFilter {
		return domain.Opportunity{}, false
	}

	return domain.Opportunity{
		ID:                 fmt.Sprintf("%s-%s-%s-%d", asset, buyQuote.Exchange, sellQuote.Exchange, createdAt.UnixMilli()),
		Asset:              asset,
		BuyExchange:        buyQuote.Exchange,
		SellExchange:       sellQuote.Exchange,
		BuyPrice:           buyPrice,
		SellPrice:          sellPrice,
		GrossProfit:        grossProfit,
		TotalFees:          totalFees,
		Fees:               fees,
		NetProfit:          netProfit,
		ROI:                roi,
		Confidence:         confidence,
		RiskLevel:          riskLevel,
		SuccessProbability: successProbability,
		IsProfitable:       netProfit > 0,
		CreatedAt:          createdAt,
		ExpiresAt:          createdAt.Add(s.Window),
	}, true
}
