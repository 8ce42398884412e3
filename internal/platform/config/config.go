package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"crypto-arbitrage-scanner/internal/domain"
)

type CryptoConfig struct {
	Address           string
	Memo              string
	WithdrawFee       float64
	WithdrawMinAmount float64
	DepositMinAmount  float64
}

type ExchangeConfig struct {
	Enabled   bool
	Feed      string // simulated, luno or hata
	Reliable  bool
	ApiKey    string
	ApiSecret string
	TakerFee  float64
	// PriceOffset shifts simulated mid prices relative to the market base price.
	PriceOffset float64
	LatencyMs   int
	// Pairs maps a tracked asset to the exchange's own pair symbol.
	Pairs  map[string]string
	Crypto map[string]CryptoConfig
}

type NetworkConfig struct {
	Name string
	Fee  float64
	Gwei float64
}

type ArbitrageConfig struct {
	TradeAmount       float64
	MinProfit         float64
	Slippage          float64 // percentage
	UseBidAsk         bool
	IncludeLatency    bool
	DynamicGas        bool
	RefreshIntervalMs int
	OpportunityWindow int // seconds
	HistoryLength     int
	GasNetwork        string
	GasAssets         []string
	WatcherMode       string
}

type AlertConfig struct {
	ProfitThreshold float64
	ROIThreshold    float64
	CooldownSeconds int
	HistorySize     int
	Sound           bool
	Banner          bool
	Command         []string
}

type Config struct {
	Assets []string

	Market map[string]struct {
		Enabled   bool
		BasePrice float64
	}

	Arbitrage ArbitrageConfig

	Exchange map[string]ExchangeConfig

	Network map[string]NetworkConfig

	Alert AlertConfig

	Discord struct {
		WebhookUrl string
	}

	Telegram struct {
		Token  string
		ChatId int64
	}

	Webhook struct {
		Url string
	}

	Server struct {
		Port int
	}

	Database struct {
		Path string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
		Channel  string
	}
}

var once sync.Once
var config *Config

// GetConfig loads the config file named by CONFIG_PATH (default config.json)
// once. A missing file yields the built-in defaults; a malformed one panics.
func GetConfig() *Config {
	once.Do(func() {
		path := os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "config.json"
		}
		cfg, err := Load(path)
		if err != nil {
			panic(err)
		}
		config = cfg
	})

	return config
}

// Load decodes path over Default and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	configBytes, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := json.Unmarshal(configBytes, cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v, err := strconv.Atoi(os.Getenv("PORT")); err == nil && v > 0 {
		c.Server.Port = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		c.Discord.WebhookUrl = v
	}
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v, err := strconv.ParseInt(os.Getenv("TELEGRAM_CHAT_ID"), 10, 64); err == nil {
		c.Telegram.ChatId = v
	}
	if v := os.Getenv("WEBHOOK_URL"); v != "" {
		c.Webhook.Url = v
	}
	for name, ex := range c.Exchange {
		prefix := strings.ToUpper(name)
		if v := os.Getenv(prefix + "_API_KEY"); v != "" {
			ex.ApiKey = v
		}
		if v := os.Getenv(prefix + "_API_SECRET"); v != "" {
			ex.ApiSecret = v
		}
		c.Exchange[name] = ex
	}
}

// EnabledExchanges lists enabled exchanges in a stable order: known
// exchanges first in enum order, then any others sorted by name.
func (c *Config) EnabledExchanges() []string {
	names := make([]string, 0, len(c.Exchange))
	seen := make(map[string]bool)
	for i := domain.Binance; i <= domain.Hata; i++ {
		name := i.String()
		if ex, ok := c.Exchange[name]; ok && ex.Enabled {
			names = append(names, name)
			seen[name] = true
		}
	}
	var rest []string
	for name, ex := range c.Exchange {
		if ex.Enabled && !seen[name] {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	return append(names, rest...)
}

// TrackedAssets lists assets whose market entry is enabled, in Assets order.
func (c *Config) TrackedAssets() []string {
	assets := make([]string, 0, len(c.Assets))
	for _, asset := range c.Assets {
		if m, ok := c.Market[asset]; !ok || m.Enabled {
			assets = append(assets, asset)
		}
	}
	return assets
}

func (c *Config) ReliableExchanges() []string {
	var out []string
	for _, name := range c.EnabledExchanges() {
		if c.Exchange[name].Reliable {
			out = append(out, name)
		}
	}
	return out
}

func (c *Config) FeeSchedule() domain.FeeSchedule {
	fees := domain.FeeSchedule{
		TradingFees:       make(map[string]float64, len(c.Exchange)),
		WithdrawalFees:    make(map[string]map[string]float64, len(c.Exchange)),
		DefaultTradingFee: domain.DefaultTradingFee,
	}
	for name, ex := range c.Exchange {
		fees.TradingFees[name] = ex.TakerFee
		withdraw := make(map[string]float64, len(ex.Crypto))
		for asset, crypto := range ex.Crypto {
			withdraw[asset] = crypto.WithdrawFee
		}
		fees.WithdrawalFees[name] = withdraw
	}
	return fees
}

func (c *Config) BasePrices() map[string]float64 {
	prices := make(map[string]float64, len(c.Market))
	for asset, m := range c.Market {
		prices[asset] = m.BasePrice
	}
	return prices
}

// GasNetworkFee returns the flat network fee charged for gas-metered assets.
func (c *Config) GasNetworkFee() float64 {
	return c.Network[c.Arbitrage.GasNetwork].Fee
}

func (c *Config) RefreshInterval() time.Duration {
	if c.Arbitrage.RefreshIntervalMs <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Arbitrage.RefreshIntervalMs) * time.Millisecond
}

func (c *Config) OpportunityWindow() time.Duration {
	if c.Arbitrage.OpportunityWindow <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Arbitrage.OpportunityWindow) * time.Second
}

func (c *Config) AlertCooldown() time.Duration {
	if c.Alert.CooldownSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Alert.CooldownSeconds) * time.Second
}
