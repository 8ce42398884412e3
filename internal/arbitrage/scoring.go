package arbitrage

import (
	"math"
	"slices"

	"crypto-arbitrage-scanner/internal/domain"
)

const minVolatilityHistory = 10

// Scorer computes the heuristic confidence/risk/success metrics. Everything
// but the liquidity bonus is deterministic.
type Scorer struct {
	Reliable []string
	Random   RandomSource
}

// CalculateConfidence scores an opportunity in [0, 100]. Very high ROI is
// treated as suspicious (likely stale prices); modest ROI is rewarded.
func (s Scorer) CalculateConfidence(asset, buyEx, sellEx string, roi, grossProfit float64, history *PriceHistory) float64 {
	score := 50.0

	switch {
	case roi > 2:
		score -= 20
	case roi > 1:
		score -= 10
	case roi > 0.5:
		score += 10
	case roi > 0:
		score += 20
	}

	if slices.Contains(s.Reliable, buyEx) {
		score += 10
	}
	if slices.Contains(s.Reliable, sellEx) {
		score += 10
	}

	if s.Random != nil {
		score += s.Random.Float64() * 10
	}

	if history != nil && history.Len(asset) >= minVolatilityHistory {
		volatility := Volatility(history.Points(asset))
		if volatility < 1 {
			score += 10
		} else if volatility > 3 {
			score -= 10
		}
	}

	return clamp(score, 0, 100)
}

// CalculateRiskLevel checks the high-risk conditions strictly before the medium ones.
func CalculateRiskLevel(roi, confidence, withdrawalFee, tradeAmount float64) domain.RiskLevel {
	if confidence < 30 || roi > 3 {
		return domain.RiskHigh
	}
	if confidence < 60 || withdrawalFee > tradeAmount*0.01 {
		return domain.RiskMedium
	}
	return domain.RiskLow
}

// CalculateSuccessProbability discounts confidence by risk and ROI, in [5, 95].
func CalculateSuccessProbability(roi, confidence float64, riskLevel domain.RiskLevel) float64 {
	prob := confidence

	switch riskLevel {
	case domain.RiskHigh:
		prob *= 0.5
	case domain.RiskMedium:
		prob *= 0.75
	}

	if roi > 1 {
		prob *= 0.8
	}
	if roi > 2 {
		prob *= 0.6
	}

	return clamp(prob, 5, 95)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
