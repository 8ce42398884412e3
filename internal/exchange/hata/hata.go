package hata

import (
	"cmp"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"go.uber.org/zap"

	"crypto-arbitrage-scanner/internal/domain"
)

type HataExchange struct {
	apiBaseUrl     string
	apiKeyId       string
	apiKeySecret   string
	pairs          map[string]string
	httpClient     *http.Client
	log            *zap.Logger
	scrapingLogger *zap.Logger
}

type HataOrderBookPriceFeed struct {
	Price  float64 `json:"price,string"`
	Volume float64 `json:"qty,string"`
}

type HataOrderBookResponse struct {
	Data struct {
		Asks []HataOrderBookPriceFeed `json:"asks"`
		Bids []HataOrderBookPriceFeed `json:"bids"`
	} `json:"data"`
	Status string `json:"status"`
}

const hataApiBaseUrl = "https://my-api.hata.io"

// CreateClient builds a Hata feed. pairs maps each tracked asset to its Hata
// pair name, e.g. BTC to BTCMYR.
func CreateClient(id string, secret string, pairs map[string]string, log *zap.Logger, scrapingLogger *zap.Logger) *HataExchange {
	return &HataExchange{
		apiBaseUrl:     hataApiBaseUrl,
		apiKeyId:       id,
		apiKeySecret:   secret,
		pairs:          pairs,
		httpClient:     &http.Client{Timeout: 10 * time.Second},
		log:            log,
		scrapingLogger: scrapingLogger,
	}
}

func (exchange *HataExchange) SetBaseURL(url string) {
	exchange.apiBaseUrl = url
}

func (exchange *HataExchange) Name() string {
	return domain.Hata.String()
}

func (exchange *HataExchange) FetchQuotes(ctx context.Context) (domain.ExchangeQuotes, error) {
	start := time.Now()

	assets := make([]string, 0, len(exchange.pairs))
	for asset := range exchange.pairs {
		assets = append(assets, asset)
	}
	slices.Sort(assets)

	quotes := make(map[string]domain.Quote, len(assets))
	for _, asset := range assets {
		quote, err := exchange.getTopOfBook(ctx, exchange.pairs[asset])
		if err != nil {
			return domain.ExchangeQuotes{}, fmt.Errorf("hata %s: %w", exchange.pairs[asset], err)
		}
		quote.Asset = asset
		quotes[asset] = quote
	}

	return domain.ExchangeQuotes{Exchange: exchange.Name(), Quotes: quotes, Latency: time.Since(start)}, nil
}

func (exchange *HataExchange) sign(queryString string) string {
	mac := hmac.New(sha256.New, []byte(exchange.apiKeySecret))
	mac.Write([]byte(queryString))
	return hex.EncodeToString(mac.Sum(nil))
}

func (exchange *HataExchange) getTopOfBook(ctx context.Context, pair string) (domain.Quote, error) {
	params := url.Values{}
	params.Set("pair_name", pair)
	queryString := params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exchange.apiBaseUrl+"/orderbook/api/orderbook?"+queryString, nil)
	if err != nil {
		return domain.Quote{}, err
	}
	req.Header.Set("X-API-Key", exchange.apiKeyId)
	req.Header.Set("Signature", exchange.sign(queryString))

	exchange.log.Debug("Getting Hata order book for pair: " + pair)

	resp, err := exchange.httpClient.Do(req)
	if err != nil {
		return domain.Quote{}, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Quote{}, err
	}
	exchange.scrapingLogger.Info(string(respBody))

	if resp.StatusCode != http.StatusOK {
		return domain.Quote{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var respData HataOrderBookResponse
	if err := json.Unmarshal(respBody, &respData); err != nil {
		return domain.Quote{}, fmt.Errorf("unmarshal order book: %w", err)
	}

	asks := respData.Data.Asks
	bids := respData.Data.Bids
	if len(asks) == 0 || len(bids) == 0 {
		return domain.Quote{}, fmt.Errorf("empty order book")
	}

	// Sort asks by price in ascending order (lowest first)
	slices.SortFunc(asks, func(a, b HataOrderBookPriceFeed) int {
		return cmp.Compare(a.Price, b.Price)
	})

	// Sort bids by price in descending order (highest first)
	slices.SortFunc(bids, func(a, b HataOrderBookPriceFeed) int {
		return cmp.Compare(b.Price, a.Price)
	})

	var volume float64
	for _, level := range asks {
		volume += level.Volume
	}
	for _, level := range bids {
		volume += level.Volume
	}

	exchange.log.Debug(fmt.Sprintf("[%s] Ask: [{%f %f}] => Bid: [{%f %f}]", pair,
		asks[0].Price, asks[0].Volume,
		bids[0].Price, bids[0].Volume,
	))

	return domain.Quote{
		Exchange:  exchange.Name(),
		Mid:       (asks[0].Price + bids[0].Price) / 2,
		Bid:       bids[0].Price,
		Ask:       asks[0].Price,
		Volume:    volume,
		Timestamp: time.Now(),
	}, nil
}
