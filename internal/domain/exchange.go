package domain

import "context"

// PriceFeed is a source of quotes for a single exchange.
type PriceFeed interface {
	Name() string
	FetchQuotes(ctx context.Context) (ExchangeQuotes, error)
}

// Streamer is implemented by feeds that keep an in-memory book updated from
// a socket. FetchQuotes then reads that book instead of polling.
type Streamer interface {
	Subscribe(ctx context.Context) error
}
