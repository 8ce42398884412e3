// Package papertrade keeps a virtual balance that opportunities can be
// executed against without touching an exchange.
package papertrade

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"crypto-arbitrage-scanner/internal/domain"
)

var ErrInsufficientBalance = errors.New("insufficient virtual balance")

type Account struct {
	mu       sync.RWMutex
	initial  float64
	balance  float64
	pnl      float64
	executed int
	trades   []domain.PaperTrade
	now      func() time.Time
}

type Summary struct {
	Balance        float64             `json:"balance"`
	PnL            float64             `json:"pnl"`
	TradesExecuted int                 `json:"tradesExecuted"`
	Trades         []domain.PaperTrade `json:"trades"`
}

func NewAccount(initial float64) *Account {
	if initial <= 0 {
		initial = domain.DefaultPaperBalance
	}
	return &Account{initial: initial, balance: initial, trades: []domain.PaperTrade{}, now: time.Now}
}

// Restore seeds the account from persisted balances.
func (a *Account) Restore(balance, pnl float64, executed int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if balance > 0 {
		a.balance = balance
	}
	a.pnl = pnl
	a.executed = executed
}

// Execute books the opportunity's net profit. The balance must cover the
// trade amount.
func (a *Account) Execute(o domain.Opportunity, tradeAmount float64) (domain.PaperTrade, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.balance < tradeAmount {
		return domain.PaperTrade{}, fmt.Errorf("%w: have %.2f, need %.2f", ErrInsufficientBalance, a.balance, tradeAmount)
	}

	a.balance += o.NetProfit
	a.pnl += o.NetProfit
	a.executed++

	trade := domain.PaperTrade{
		ID:           uuid.NewString(),
		Asset:        o.Asset,
		BuyExchange:  o.BuyExchange,
		SellExchange: o.SellExchange,
		TradeAmount:  tradeAmount,
		NetProfit:    o.NetProfit,
		BalanceAfter: a.balance,
		ExecutedAt:   a.now(),
	}
	a.trades = append([]domain.PaperTrade{trade}, a.trades...)
	return trade, nil
}

func (a *Account) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balance = a.initial
	a.pnl = 0
	a.executed = 0
	a.trades = []domain.PaperTrade{}
}

func (a *Account) Summary() Summary {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return Summary{
		Balance:        a.balance,
		PnL:            a.pnl,
		TradesExecuted: a.executed,
		Trades:         append([]domain.PaperTrade{}, a.trades...),
	}
}
