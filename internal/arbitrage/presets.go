package arbitrage

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownPreset = errors.New("unknown preset")

type Preset struct {
	Name               string  `json:"name"`
	MinProfit          float64 `json:"minProfit"`
	Slippage           float64 `json:"slippage"`
	ShowProfitableOnly bool    `json:"showProfitableOnly"`
}

var presets = map[string]Preset{
	"conservative": {Name: "conservative", MinProfit: 1, Slippage: 0.05, ShowProfitableOnly: true},
	"balanced":     {Name: "balanced", MinProfit: 0.5, Slippage: 0.1},
	"aggressive":   {Name: "aggressive", MinProfit: -5, Slippage: 0.2},
}

func LookupPreset(name string) (Preset, error) {
	p, ok := presets[strings.ToLower(name)]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return p, nil
}

// ApplyPreset overwrites the minimum ROI, slippage and profitable-only view.
func (s *Session) ApplyPreset(name string) (Preset, error) {
	p, err := LookupPreset(name)
	if err != nil {
		return Preset{}, err
	}

	settings := s.Settings()
	settings.MinProfit = p.MinProfit
	settings.Slippage = p.Slippage
	if err := s.ApplySettings(settings); err != nil {
		return Preset{}, err
	}
	s.SetShowProfitableOnly(p.ShowProfitableOnly)
	return p, nil
}
