package arbitrage

import (
	"fmt"
	"slices"
)

const (
	whatIfTradeFeeRate   = 0.002
	whatIfWithdrawalFee  = 30.0
	whatIfLatencyPer10s  = 0.0005
	monteCarloFeeRate    = 0.003
	DefaultMonteCarloRun = 1000
	MaxMonteCarloRun     = 100000
)

type WhatIfInput struct {
	Amount       float64 `json:"amount" query:"amount"`
	Spread       float64 `json:"spread" query:"spread"`
	Slippage     float64 `json:"slippage" query:"slippage"`
	DelaySeconds float64 `json:"delay" query:"delay"`
}

// WithDefaults fills zero fields with 10000 / 0.5 % / 0.1 % / 15 s.
func (in WhatIfInput) WithDefaults() WhatIfInput {
	if in.Amount == 0 {
		in.Amount = 10000
	}
	if in.Spread == 0 {
		in.Spread = 0.5
	}
	if in.Slippage == 0 {
		in.Slippage = 0.1
	}
	if in.DelaySeconds == 0 {
		in.DelaySeconds = 15
	}
	return in
}

type WhatIfResult struct {
	GrossProfit   float64 `json:"grossProfit"`
	TradeFee      float64 `json:"tradeFee"`
	WithdrawalFee float64 `json:"withdrawalFee"`
	SlippageCost  float64 `json:"slippageCost"`
	LatencyRisk   float64 `json:"latencyRisk"`
	NetProfit     float64 `json:"netProfit"`
}

// WhatIf prices a hypothetical trade with flat fee assumptions.
func WhatIf(in WhatIfInput) (WhatIfResult, error) {
	in = in.WithDefaults()
	if in.Amount < 0 || in.Slippage < 0 || in.DelaySeconds < 0 {
		return WhatIfResult{}, fmt.Errorf("%w: negative what-if input", ErrInvalidTradeParams)
	}

	r := WhatIfResult{
		GrossProfit:   in.Amount * in.Spread / 100,
		TradeFee:      in.Amount * whatIfTradeFeeRate,
		WithdrawalFee: whatIfWithdrawalFee,
		SlippageCost:  in.Amount * in.Slippage / 100,
		LatencyRisk:   in.Amount * whatIfLatencyPer10s * (in.DelaySeconds / 10),
	}
	r.NetProfit = r.GrossProfit - r.TradeFee - r.WithdrawalFee - r.SlippageCost - r.LatencyRisk
	return r, nil
}

type MonteCarloResult struct {
	Iterations int     `json:"iterations"`
	Best       float64 `json:"best"`
	Worst      float64 `json:"worst"`
	Average    float64 `json:"average"`
	P5         float64 `json:"p5"`
	P95        float64 `json:"p95"`
}

// MonteCarlo samples spread in [-0.45, 1.05) % and slippage in [0, 0.3) %
// against a flat 0.3 % fee.
func MonteCarlo(amount float64, iterations int, rnd RandomSource) (MonteCarloResult, error) {
	if amount <= 0 {
		return MonteCarloResult{}, fmt.Errorf("%w: trade amount must be positive", ErrInvalidTradeParams)
	}
	if iterations <= 0 {
		iterations = DefaultMonteCarloRun
	}
	if iterations > MaxMonteCarloRun {
		return MonteCarloResult{}, fmt.Errorf("%w: at most %d iterations, got %d", ErrInvalidTradeParams, MaxMonteCarloRun, iterations)
	}

	results := make([]float64, iterations)
	var sum float64
	fees := amount * monteCarloFeeRate
	for i := range results {
		spread := (rnd.Float64() - 0.3) * 1.5
		slippage := rnd.Float64() * 0.3
		profit := amount*spread/100 - amount*slippage/100 - fees
		results[i] = profit
		sum += profit
	}
	slices.Sort(results)

	n := len(results)
	return MonteCarloResult{
		Iterations: n,
		Best:       results[n-1],
		Worst:      results[0],
		Average:    sum / float64(n),
		P5:         results[n*5/100],
		P95:        results[n*95/100],
	}, nil
}
