package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-arbitrage-scanner/internal/domain"
)

func sampleAlert() Alert {
	return FromOpportunity(domain.Opportunity{
		Asset:        "ETH",
		BuyExchange:  "kraken",
		SellExchange: "coinbase",
		NetProfit:    179.8,
		ROI:          1.798,
		Confidence:   71.6,
	})
}

func TestAlertMessage(t *testing.T) {
	msg := sampleAlert().Message()

	assert.Contains(t, msg, "Coin: ETH")
	assert.Contains(t, msg, "Route: Kraken → Coinbase")
	assert.Contains(t, msg, "Net Profit: $179.80")
	assert.Contains(t, msg, "ROI: 1.798%")
	assert.Contains(t, msg, "Confidence: 72%")
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$67500.00", FormatPrice(67500))
	assert.Equal(t, "$0.1250", FormatPrice(0.125))
	assert.Equal(t, "$0.00002400", FormatPrice(0.000024))
	assert.Equal(t, "$-12.50", FormatPrice(-12.5))
	assert.Equal(t, "$0.00", FormatPrice(0))
}

func TestWebhookSink_Send(t *testing.T) {
	var got webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	err := NewWebhookSink(server.URL).Send(context.Background(), sampleAlert())
	require.NoError(t, err)

	assert.Equal(t, "ETH", got.Alert.Asset)
	assert.Contains(t, got.Content, "Arbitrage Alert")
}

func TestWebhookSink_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	err := NewWebhookSink(server.URL).Send(context.Background(), sampleAlert())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestWebhookSink_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	assert.Error(t, NewWebhookSink(url).Send(context.Background(), sampleAlert()))
}

func TestTelegramSink_Send(t *testing.T) {
	var sent atomic.Int32
	var text atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"arb","username":"arb_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			require.NoError(t, r.ParseForm())
			text.Store(r.FormValue("text"))
			sent.Add(1)
			w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	sink := NewTelegramSink("token", 42).WithEndpoint(server.URL + "/bot%s/%s")
	require.NoError(t, sink.Send(context.Background(), sampleAlert()))

	assert.Equal(t, int32(1), sent.Load())
	assert.Contains(t, text.Load(), "Coin: ETH")
}

func TestTelegramSink_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewTelegramSink("token", 42).Send(ctx, sampleAlert())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDiscordSink_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewDiscordSink("https://discord.com/api/webhooks/1234567890/token").Send(ctx, sampleAlert())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBellSink_Send(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewBellSink(&buf).Send(context.Background(), sampleAlert()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\a"))
	assert.Contains(t, out, "Buy on Kraken, Sell on Coinbase")
}

func TestCommandSink(t *testing.T) {
	assert.Nil(t, NewCommandSink(nil))

	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true not available")
	}
	assert.NoError(t, NewCommandSink([]string{"true"}).Send(context.Background(), sampleAlert()))

	if _, err := exec.LookPath("false"); err == nil {
		assert.Error(t, NewCommandSink([]string{"false"}).Send(context.Background(), sampleAlert()))
	}
}
