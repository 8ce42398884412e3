package arbitrage

import "math"

const DefaultHistoryLength = 30

// PriceHistory is a bounded ring of cross-exchange average prices per asset.
type PriceHistory struct {
	capacity int
	points   map[string][]float64
}

func NewPriceHistory(capacity int) *PriceHistory {
	if capacity <= 0 {
		capacity = DefaultHistoryLength
	}
	return &PriceHistory{capacity: capacity, points: make(map[string][]float64)}
}

func (h *PriceHistory) Push(asset string, price float64) {
	pts := append(h.points[asset], price)
	if len(pts) > h.capacity {
		pts = pts[len(pts)-h.capacity:]
	}
	h.points[asset] = pts
}

// Points returns a copy of the asset's history, oldest first.
func (h *PriceHistory) Points(asset string) []float64 {
	return append([]float64(nil), h.points[asset]...)
}

func (h *PriceHistory) Len(asset string) int {
	return len(h.points[asset])
}

// Clone returns an independent copy, used as the read-only view of a scan.
func (h *PriceHistory) Clone() *PriceHistory {
	out := NewPriceHistory(h.capacity)
	for asset, pts := range h.points {
		out.points[asset] = append([]float64(nil), pts...)
	}
	return out
}

// Volatility is the population standard deviation of the percentage returns
// between consecutive points. Fewer than two points, or a zero price, yields 0.
func Volatility(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(data)-1)
	for i := 1; i < len(data); i++ {
		if data[i-1] == 0 {
			continue
		}
		returns = append(returns, (data[i]-data[i-1])/data[i-1]*100)
	}
	if len(returns) == 0 {
		return 0
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))
	return math.Sqrt(variance)
}
