package hata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFetchQuotes(t *testing.T) {
	ex := CreateClient("key-id", "secret", map[string]string{"BTC": "BTCMYR"}, zap.NewNop(), zap.NewNop())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orderbook/api/orderbook", r.URL.Path)
		assert.Equal(t, "BTCMYR", r.URL.Query().Get("pair_name"))
		assert.Equal(t, "key-id", r.Header.Get("X-API-Key"))
		assert.Equal(t, ex.sign(r.URL.RawQuery), r.Header.Get("Signature"))

		_, _ = w.Write([]byte(`{"status":"ok","data":{
			"asks":[{"price":"190200.00","qty":"1"},{"price":"190100.00","qty":"0.5"}],
			"bids":[{"price":"189800.00","qty":"2"},{"price":"189900.00","qty":"0.25"}]}}`))
	}))
	defer srv.Close()
	ex.SetBaseURL(srv.URL)

	res, err := ex.FetchQuotes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hata", res.Exchange)

	btc := res.Quotes["BTC"]
	assert.Equal(t, "BTC", btc.Asset)
	assert.Equal(t, 190100.0, btc.Ask)
	assert.Equal(t, 189900.0, btc.Bid)
	assert.Equal(t, 190000.0, btc.Mid)
	assert.InDelta(t, 3.75, btc.Volume, 1e-9)
}

func TestFetchQuotes_Errors(t *testing.T) {
	ex := CreateClient("key-id", "secret", map[string]string{"BTC": "BTCMYR"}, zap.NewNop(), zap.NewNop())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()
	ex.SetBaseURL(srv.URL)

	_, err := ex.FetchQuotes(context.Background())
	assert.ErrorContains(t, err, "429")

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","data":{"asks":[],"bids":[]}}`))
	}))
	defer empty.Close()
	ex.SetBaseURL(empty.URL)

	_, err = ex.FetchQuotes(context.Background())
	assert.ErrorContains(t, err, "empty order book")
}
