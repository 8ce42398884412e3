package luno

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
	"time"
)

// streamBook is the order book of one pair rebuilt from the websocket feed.
// Asks are kept lowest first, bids highest first.
type streamBook struct {
	mu        sync.Mutex
	ready     bool
	sequence  int
	asks      []LunoOrderBookPriceFeed
	bids      []LunoOrderBookPriceFeed
	updatedAt time.Time
}

func (book *streamBook) applySnapshot(snapshot *LunoOrderBookFeedSnapshot, at time.Time) {
	book.mu.Lock()
	defer book.mu.Unlock()

	book.asks = slices.Clone(snapshot.Asks)
	book.bids = slices.Clone(snapshot.Bids)
	slices.SortStableFunc(book.asks, func(a, b LunoOrderBookPriceFeed) int { return cmp.Compare(a.Price, b.Price) })
	slices.SortStableFunc(book.bids, func(a, b LunoOrderBookPriceFeed) int { return cmp.Compare(b.Price, a.Price) })
	book.sequence = snapshot.Sequence
	book.ready = true
	book.updatedAt = at
}

func (book *streamBook) reset() {
	book.mu.Lock()
	defer book.mu.Unlock()
	book.ready = false
	book.asks, book.bids = nil, nil
	book.sequence = 0
}

func (book *streamBook) isReady() bool {
	book.mu.Lock()
	defer book.mu.Unlock()
	return book.ready
}

// applyUpdate applies one feed message. A gap in sequence numbers leaves the
// book untouched and returns a *SequenceIncorrectError.
func (book *streamBook) applyUpdate(message *LunoOrderBookFeedMessage, at time.Time) error {
	book.mu.Lock()
	defer book.mu.Unlock()

	if !book.ready {
		return fmt.Errorf("order book has no snapshot yet")
	}
	if message.Sequence != book.sequence+1 {
		return &SequenceIncorrectError{ExpectedSequence: book.sequence + 1, ActualSequence: message.Sequence}
	}
	book.sequence = message.Sequence

	for _, trade := range message.TradeUpdates {
		if !fill(&book.asks, trade) {
			fill(&book.bids, trade)
		}
	}

	if create := message.CreateUpdate; create != nil {
		order := LunoOrderBookPriceFeed{Id: create.OrderId, Price: create.Price, Volume: create.Volume}
		if create.Type == "ASK" {
			book.asks = insertSorted(book.asks, order, func(a, b LunoOrderBookPriceFeed) int { return cmp.Compare(a.Price, b.Price) })
		} else {
			book.bids = insertSorted(book.bids, order, func(a, b LunoOrderBookPriceFeed) int { return cmp.Compare(b.Price, a.Price) })
		}
	}

	if del := message.DeleteUpdate; del != nil {
		if !remove(&book.asks, del.OrderId) {
			remove(&book.bids, del.OrderId)
		}
	}

	book.updatedAt = at
	return nil
}

func fill(side *[]LunoOrderBookPriceFeed, trade LunoOrderBookFeedTradeUpdate) bool {
	i := slices.IndexFunc(*side, func(o LunoOrderBookPriceFeed) bool { return o.Id == trade.MakerOrderId })
	if i < 0 {
		return false
	}
	(*side)[i].Volume -= trade.Base
	if (*side)[i].Volume <= 0 {
		*side = slices.Delete(*side, i, i+1)
	}
	return true
}

func remove(side *[]LunoOrderBookPriceFeed, id string) bool {
	i := slices.IndexFunc(*side, func(o LunoOrderBookPriceFeed) bool { return o.Id == id })
	if i < 0 {
		return false
	}
	*side = slices.Delete(*side, i, i+1)
	return true
}

func insertSorted(side []LunoOrderBookPriceFeed, order LunoOrderBookPriceFeed, compare func(a, b LunoOrderBookPriceFeed) int) []LunoOrderBookPriceFeed {
	i, _ := slices.BinarySearchFunc(side, order, compare)
	for i < len(side) && compare(side[i], order) == 0 {
		i++
	}
	return slices.Insert(side, i, order)
}

type topOfBook struct {
	Bid       float64
	Ask       float64
	Volume    float64
	UpdatedAt time.Time
}

// top returns the best bid and ask and the total resting volume.
func (book *streamBook) top() (topOfBook, error) {
	book.mu.Lock()
	defer book.mu.Unlock()

	if !book.ready {
		return topOfBook{}, fmt.Errorf("order book has no snapshot yet")
	}
	if len(book.asks) == 0 || len(book.bids) == 0 {
		return topOfBook{}, fmt.Errorf("order book has an empty side")
	}

	var volume float64
	for _, o := range book.asks {
		volume += o.Volume
	}
	for _, o := range book.bids {
		volume += o.Volume
	}
	return topOfBook{Bid: book.bids[0].Price, Ask: book.asks[0].Price, Volume: volume, UpdatedAt: book.updatedAt}, nil
}
