package domain

import (
	"fmt"
	"strings"
)

type ExchangeEnum int

const (
	Binance ExchangeEnum = iota
	Coinbase
	Kraken
	Bybit
	Okx
	Kucoin
	Luno
	Hata
)

var exchangeNames = []string{"binance", "coinbase", "kraken", "bybit", "okx", "kucoin", "luno", "hata"}

func (e ExchangeEnum) String() string {
	return exchangeNames[e]
}

// ParseExchange resolves a case-insensitive exchange name.
func ParseExchange(name string) (ExchangeEnum, error) {
	for i, n := range exchangeNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return ExchangeEnum(i), nil
		}
	}
	return 0, fmt.Errorf("unknown exchange: %q", name)
}

// SimulatedExchanges are the venues served by the synthetic price feed.
func SimulatedExchanges() []string {
	return []string{
		Binance.String(),
		Coinbase.String(),
		Kraken.String(),
		Bybit.String(),
		Okx.String(),
		Kucoin.String(),
	}
}
