package config

// withdrawalFees are per-asset withdrawal fees in asset units.
var withdrawalFees = map[string]map[string]float64{
	"binance":  {"BTC": 0.0005, "ETH": 0.005, "XRP": 0.25, "SOL": 0.01, "DOGE": 5, "ADA": 1, "AVAX": 0.01, "DOT": 0.1, "MATIC": 0.1, "LINK": 0.3, "UNI": 0.5, "ATOM": 0.01, "LTC": 0.001, "BCH": 0.0001, "SHIB": 500000, "ARB": 0.1},
	"coinbase": {"BTC": 0.0006, "ETH": 0.008, "XRP": 0.5, "SOL": 0.02, "DOGE": 8, "ADA": 2, "AVAX": 0.02, "DOT": 0.2, "MATIC": 5, "LINK": 0.5, "UNI": 1, "ATOM": 0.02, "LTC": 0.002, "BCH": 0.0002, "SHIB": 800000, "ARB": 0.2},
	"kraken":   {"BTC": 0.0004, "ETH": 0.004, "XRP": 0.02, "SOL": 0.01, "DOGE": 4, "ADA": 0.6, "AVAX": 0.01, "DOT": 0.05, "MATIC": 10, "LINK": 0.2, "UNI": 0.3, "ATOM": 0.005, "LTC": 0.001, "BCH": 0.0001, "SHIB": 400000, "ARB": 0.08},
	"bybit":    {"BTC": 0.0005, "ETH": 0.005, "XRP": 0.25, "SOL": 0.01, "DOGE": 5, "ADA": 1, "AVAX": 0.01, "DOT": 0.1, "MATIC": 0.1, "LINK": 0.3, "UNI": 0.5, "ATOM": 0.01, "LTC": 0.001, "BCH": 0.0001, "SHIB": 500000, "ARB": 0.1},
	"okx":      {"BTC": 0.0004, "ETH": 0.004, "XRP": 0.2, "SOL": 0.008, "DOGE": 4, "ADA": 0.8, "AVAX": 0.008, "DOT": 0.08, "MATIC": 0.08, "LINK": 0.25, "UNI": 0.4, "ATOM": 0.008, "LTC": 0.001, "BCH": 0.0001, "SHIB": 400000, "ARB": 0.08},
	"kucoin":   {"BTC": 0.0005, "ETH": 0.005, "XRP": 0.25, "SOL": 0.01, "DOGE": 5, "ADA": 1, "AVAX": 0.01, "DOT": 0.1, "MATIC": 0.1, "LINK": 0.3, "UNI": 0.5, "ATOM": 0.01, "LTC": 0.001, "BCH": 0.0001, "SHIB": 500000, "ARB": 0.1},
}

var basePrices = map[string]float64{
	"BTC": 67500, "ETH": 3450, "XRP": 0.52, "SOL": 145, "DOGE": 0.125,
	"ADA": 0.45, "AVAX": 35.5, "DOT": 7.2, "MATIC": 0.58, "LINK": 14.5,
	"UNI": 7.8, "ATOM": 8.5, "LTC": 85, "BCH": 380, "SHIB": 0.000024, "ARB": 1.15,
}

type simulatedVenue struct {
	name     string
	fee      float64
	offset   float64
	latency  int
	reliable bool
}

var simulatedVenues = []simulatedVenue{
	{"binance", 0.001, 0, 45, true},
	{"coinbase", 0.005, 0.002, 62, true},
	{"kraken", 0.0026, -0.001, 78, false},
	{"bybit", 0.001, 0.0005, 55, false},
	{"okx", 0.001, -0.0005, 48, false},
	{"kucoin", 0.001, 0.001, 52, false},
}

// Default mirrors the dashboard's built-in tables: sixteen assets across six
// simulated exchanges. Luno and Hata are present but disabled.
func Default() *Config {
	cfg := &Config{
		Assets: []string{"BTC", "ETH", "XRP", "SOL", "DOGE", "ADA", "AVAX", "DOT", "MATIC", "LINK", "UNI", "ATOM", "LTC", "BCH", "SHIB", "ARB"},
		Market: make(map[string]struct {
			Enabled   bool
			BasePrice float64
		}),
		Exchange: make(map[string]ExchangeConfig),
		Network: map[string]NetworkConfig{
			"ERC20": {Name: "Ethereum", Fee: 15.50, Gwei: 45},
			"BEP20": {Name: "BSC", Fee: 0.15, Gwei: 5},
			"TRC20": {Name: "Tron", Fee: 1.00},
			"SOL":   {Name: "Solana", Fee: 0.02},
			"AVAX":  {Name: "Avalanche", Fee: 0.50},
			"MATIC": {Name: "Polygon", Fee: 0.05},
			"ARB":   {Name: "Arbitrum", Fee: 0.30},
		},
		Arbitrage: ArbitrageConfig{
			TradeAmount:       10000,
			MinProfit:         -100,
			UseBidAsk:         true,
			IncludeLatency:    true,
			RefreshIntervalMs: 5000,
			OpportunityWindow: 30,
			HistoryLength:     30,
			GasNetwork:        "ERC20",
			GasAssets:         []string{"ETH", "UNI", "LINK"},
			WatcherMode:       "scheduled",
		},
		Alert: AlertConfig{
			ProfitThreshold: 50,
			ROIThreshold:    0.5,
			CooldownSeconds: 10,
			HistorySize:     50,
			Sound:           true,
			Banner:          true,
		},
	}
	cfg.Server.Port = 8080
	cfg.Database.Path = "data/arbitrage.db"
	cfg.Redis.Channel = "arbitrage:cycles"

	for asset, price := range basePrices {
		cfg.Market[asset] = struct {
			Enabled   bool
			BasePrice float64
		}{Enabled: true, BasePrice: price}
	}

	for _, v := range simulatedVenues {
		crypto := make(map[string]CryptoConfig, len(withdrawalFees[v.name]))
		for asset, fee := range withdrawalFees[v.name] {
			crypto[asset] = CryptoConfig{WithdrawFee: fee}
		}
		cfg.Exchange[v.name] = ExchangeConfig{
			Enabled:     true,
			Feed:        "simulated",
			Reliable:    v.reliable,
			TakerFee:    v.fee,
			PriceOffset: v.offset,
			LatencyMs:   v.latency,
			Crypto:      crypto,
		}
	}

	cfg.Exchange["luno"] = ExchangeConfig{
		Feed:     "luno",
		TakerFee: 0.006,
		Pairs:    map[string]string{"BTC": "XBTMYR", "ETH": "ETHMYR", "XRP": "XRPMYR", "SOL": "SOLMYR"},
		Crypto: map[string]CryptoConfig{
			"BTC": {WithdrawFee: 0.00006},
			"ETH": {WithdrawFee: 0.003},
		},
	}
	cfg.Exchange["hata"] = ExchangeConfig{
		Feed:     "hata",
		TakerFee: 0.0015,
		Pairs:    map[string]string{"BTC": "BTCMYR", "ETH": "ETHMYR", "XRP": "XRPMYR", "SOL": "SOLMYR"},
		Crypto: map[string]CryptoConfig{
			"BTC": {WithdrawFee: 0.0001},
			"ETH": {WithdrawFee: 0.002},
		},
	}

	return cfg
}
