package luno

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/coder/websocket"
	"github.com/luno/luno-go"
	"go.uber.org/zap"

	"crypto-arbitrage-scanner/internal/domain"
)

type LunoExchange struct {
	lunoClient       *luno.Client
	websocketBaseUrl string
	apiKeyId         string
	apiKeySecret     string
	pairs            map[string]string
	books            map[string]*streamBook
	log              *zap.Logger
	stateLog         *zap.Logger
}

const lunoWebsocketBaseUrl = "wss://ws.luno.com/api/1/stream/"

// CreateClient builds a Luno feed. pairs maps each tracked asset to its Luno
// pair symbol, e.g. BTC to XBTMYR.
func CreateClient(id string, secret string, pairs map[string]string, log *zap.Logger, stateLog *zap.Logger) *LunoExchange {
	lunoClient := luno.NewClient()
	lunoClient.SetAuth(id, secret)

	books := make(map[string]*streamBook, len(pairs))
	for _, pair := range pairs {
		books[pair] = &streamBook{}
	}

	log.Info("Luno client created")

	return &LunoExchange{
		lunoClient:       lunoClient,
		websocketBaseUrl: lunoWebsocketBaseUrl,
		apiKeyId:         id,
		apiKeySecret:     secret,
		pairs:            pairs,
		books:            books,
		log:              log,
		stateLog:         stateLog,
	}
}

func (lunoExchange *LunoExchange) SetBaseURL(url string) {
	lunoExchange.lunoClient.SetBaseURL(url)
}

func (lunoExchange *LunoExchange) SetWebsocketBaseURL(url string) {
	lunoExchange.websocketBaseUrl = url
}

func (lunoExchange *LunoExchange) Name() string {
	return domain.Luno.String()
}

func (lunoExchange *LunoExchange) assets() []string {
	assets := make([]string, 0, len(lunoExchange.pairs))
	for asset := range lunoExchange.pairs {
		assets = append(assets, asset)
	}
	slices.Sort(assets)
	return assets
}

// FetchQuotes reads the streamed book for pairs that have one and falls back
// to the REST order book otherwise.
func (lunoExchange *LunoExchange) FetchQuotes(ctx context.Context) (domain.ExchangeQuotes, error) {
	start := time.Now()
	quotes := make(map[string]domain.Quote, len(lunoExchange.pairs))

	for _, asset := range lunoExchange.assets() {
		pair := lunoExchange.pairs[asset]

		var (
			top topOfBook
			err error
		)
		if book := lunoExchange.books[pair]; book != nil && book.isReady() {
			top, err = book.top()
		} else {
			top, err = lunoExchange.getOrderBookTop(ctx, pair)
		}
		if err != nil {
			return domain.ExchangeQuotes{}, fmt.Errorf("luno %s: %w", pair, err)
		}

		quotes[asset] = domain.Quote{
			Exchange:  lunoExchange.Name(),
			Asset:     asset,
			Mid:       (top.Bid + top.Ask) / 2,
			Bid:       top.Bid,
			Ask:       top.Ask,
			Volume:    top.Volume,
			Timestamp: top.UpdatedAt,
		}
	}

	return domain.ExchangeQuotes{Exchange: lunoExchange.Name(), Quotes: quotes, Latency: time.Since(start)}, nil
}

func (lunoExchange *LunoExchange) getOrderBookTop(ctx context.Context, pair string) (topOfBook, error) {
	req := luno.GetOrderBookRequest{Pair: pair}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	lunoExchange.log.Debug("Getting Luno order book for pair: " + req.Pair)

	res, err := lunoExchange.lunoClient.GetOrderBook(ctx, &req)
	if err != nil {
		return topOfBook{}, err
	}
	if len(res.Asks) == 0 || len(res.Bids) == 0 {
		return topOfBook{}, fmt.Errorf("empty order book")
	}

	var volume float64
	for _, ask := range res.Asks {
		volume += ask.Volume.Float64()
	}
	for _, bid := range res.Bids {
		volume += bid.Volume.Float64()
	}

	return topOfBook{
		Bid:       res.Bids[0].Price.Float64(), //<-- highest bid price
		Ask:       res.Asks[0].Price.Float64(), //<-- lowest ask price
		Volume:    volume,
		UpdatedAt: time.Now(),
	}, nil
}

// Subscribe opens one websocket per pair. Books fill in as snapshots arrive.
func (lunoExchange *LunoExchange) Subscribe(ctx context.Context) error {
	var errs []error
	for _, asset := range lunoExchange.assets() {
		if err := lunoExchange.subscribeSocket(ctx, lunoExchange.pairs[asset]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (lunoExchange *LunoExchange) subscribeSocket(ctx context.Context, pair string) error {
	lunoExchange.log.Info("Subscribing to Luno websocket for pair: " + pair)

	c, _, err := websocket.Dial(ctx, lunoExchange.websocketBaseUrl+pair, nil)
	if err != nil {
		lunoExchange.log.Error("Failed to dial Luno websocket: " + err.Error())
		return err
	}
	c.SetReadLimit(-1) //Disable read limit

	if err := lunoExchange.sendAuthenticationMessage(ctx, c); err != nil {
		c.CloseNow()
		return err
	}

	go lunoExchange.readSocket(ctx, c, pair)
	return nil
}

func (lunoExchange *LunoExchange) readSocket(ctx context.Context, c *websocket.Conn, pair string) {
	book := lunoExchange.books[pair]
	// After a resubscribe the book belongs to the new reader.
	resubscribed := false
	defer func() {
		if !resubscribed {
			book.reset()
		}
	}()

	for {
		messageType, message, err := c.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				lunoExchange.log.Info("Closing Luno websocket connection for pair: " + pair)
				c.Close(websocket.StatusNormalClosure, "")
				return
			}
			lunoExchange.log.Error("Failed to read message from Luno websocket: " + err.Error())
			return
		}
		if messageType != websocket.MessageText {
			lunoExchange.log.Error(fmt.Sprintf("Received unknown message type from Luno websocket: %d", messageType))
			continue
		}

		err = lunoExchange.processOrderBookFeed(book, message)
		var sequenceErr *SequenceIncorrectError
		switch {
		case errors.As(err, &sequenceErr):
			lunoExchange.log.Error(sequenceErr.Error())
			resubscribed = true
			lunoExchange.resubscribeSocket(ctx, c, pair)
			return
		case err != nil:
			lunoExchange.log.Error("Failed to process Luno order book feed: " + err.Error())
		}
	}
}

func (lunoExchange *LunoExchange) resubscribeSocket(ctx context.Context, c *websocket.Conn, pair string) {
	lunoExchange.log.Info("Resubscribing to Luno websocket for pair: " + pair)

	c.Close(websocket.StatusNormalClosure, "")
	lunoExchange.books[pair].reset()

	if err := lunoExchange.subscribeSocket(ctx, pair); err != nil {
		lunoExchange.log.Error("Failed to resubscribe to Luno websocket: " + err.Error())
	}
}

func (lunoExchange *LunoExchange) sendAuthenticationMessage(ctx context.Context, c *websocket.Conn) error {
	authMessage := LunoWebsocketAuthenticationRequest{
		ApiKeyId:     lunoExchange.apiKeyId,
		ApiKeySecret: lunoExchange.apiKeySecret,
	}
	authMessageBytes, err := json.Marshal(authMessage)
	if err != nil {
		return err
	}

	if err := c.Write(ctx, websocket.MessageText, authMessageBytes); err != nil {
		lunoExchange.log.Error("Failed to send authentication message to Luno websocket: " + err.Error())
		return err
	}
	return nil
}

// processOrderBookFeed treats the first message after connecting as the
// snapshot and everything after as incremental updates. Empty keep-alive
// messages are ignored.
func (lunoExchange *LunoExchange) processOrderBookFeed(book *streamBook, message []byte) error {
	if string(message) == `""` || len(message) == 0 {
		return nil
	}

	if !book.isReady() {
		var snapshot LunoOrderBookFeedSnapshot
		if err := json.Unmarshal(message, &snapshot); err != nil {
			return fmt.Errorf("failed to unmarshal Luno order book feed snapshot: %w", err)
		}
		book.applySnapshot(&snapshot, time.Now())
		lunoExchange.stateLog.Debug("Luno snapshot applied", zap.Int("sequence", snapshot.Sequence), zap.Int("asks", len(snapshot.Asks)), zap.Int("bids", len(snapshot.Bids)))
		return nil
	}

	var update LunoOrderBookFeedMessage
	if err := json.Unmarshal(message, &update); err != nil {
		return fmt.Errorf("failed to unmarshal Luno order book feed: %w", err)
	}
	return book.applyUpdate(&update, time.Now())
}
