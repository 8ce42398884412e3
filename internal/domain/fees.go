package domain

const DefaultTradingFee = 0.001

// FeeSchedule holds per-exchange trading fee rates and per-(exchange, asset)
// withdrawal fees expressed in asset units.
type FeeSchedule struct {
	TradingFees       map[string]float64
	WithdrawalFees    map[string]map[string]float64
	DefaultTradingFee float64
}

func (f FeeSchedule) TradingFee(exchange string) float64 {
	if rate, ok := f.TradingFees[exchange]; ok && rate > 0 {
		return rate
	}
	if f.DefaultTradingFee > 0 {
		return f.DefaultTradingFee
	}
	return DefaultTradingFee
}

func (f FeeSchedule) WithdrawalFee(exchange, asset string) float64 {
	return f.WithdrawalFees[exchange][asset]
}

// WithTradingFees returns a copy with the given rates layered on top.
func (f FeeSchedule) WithTradingFees(overrides map[string]float64) FeeSchedule {
	rates := make(map[string]float64, len(f.TradingFees)+len(overrides))
	for ex, rate := range f.TradingFees {
		rates[ex] = rate
	}
	for ex, rate := range overrides {
		rates[ex] = rate
	}
	f.TradingFees = rates
	return f
}
