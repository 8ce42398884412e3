package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"crypto-arbitrage-scanner/internal/arbitrage"
	"crypto-arbitrage-scanner/internal/cache/redis"
	"crypto-arbitrage-scanner/internal/database"
	"crypto-arbitrage-scanner/internal/domain"
	"crypto-arbitrage-scanner/internal/exchange/hata"
	"crypto-arbitrage-scanner/internal/exchange/luno"
	"crypto-arbitrage-scanner/internal/exchange/simulated"
	"crypto-arbitrage-scanner/internal/notify"
	"crypto-arbitrage-scanner/internal/papertrade"
	"crypto-arbitrage-scanner/internal/platform/config"
	"crypto-arbitrage-scanner/internal/platform/logger"
	"crypto-arbitrage-scanner/internal/server"
)

func gracefulShutdown(fiberServer *server.FiberServer, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log := logger.Get()
	log.Info("shutting down gracefully, press Ctrl+C again to force")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fiberServer.ShutdownWithContext(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func buildFeeds(cfg *config.Config, rnd arbitrage.RandomSource) []domain.PriceFeed {
	log := logger.Get()
	assets := cfg.TrackedAssets()
	feeds := make([]domain.PriceFeed, 0)

	for _, name := range cfg.EnabledExchanges() {
		ex := cfg.Exchange[name]
		switch ex.Feed {
		case "luno":
			feeds = append(feeds, luno.CreateClient(ex.ApiKey, ex.ApiSecret, ex.Pairs, log, logger.GetStateLogger()))
		case "hata":
			feeds = append(feeds, hata.CreateClient(ex.ApiKey, ex.ApiSecret, ex.Pairs, log, logger.GetScrapingLogger()))
		case "", "simulated":
			feed := simulated.CreateClient(name, assets, cfg.BasePrices(), ex.PriceOffset, rnd, log)
			if ex.LatencyMs > 0 {
				feed.MinDelay = time.Duration(ex.LatencyMs) * time.Millisecond
			}
			feeds = append(feeds, feed)
		default:
			log.Warn("Unknown feed type, exchange skipped", zap.String("exchange", name), zap.String("feed", ex.Feed))
		}
	}
	return feeds
}

func buildSinks(cfg *config.Config, hub *server.Hub) []notify.Sink {
	sinks := make([]notify.Sink, 0)
	if cfg.Discord.WebhookUrl != "" {
		sinks = append(sinks, notify.NewDiscordSink(cfg.Discord.WebhookUrl))
	}
	if cfg.Telegram.Token != "" && cfg.Telegram.ChatId != 0 {
		sinks = append(sinks, notify.NewTelegramSink(cfg.Telegram.Token, cfg.Telegram.ChatId))
	}
	if cfg.Webhook.Url != "" {
		sinks = append(sinks, notify.NewWebhookSink(cfg.Webhook.Url))
	}
	if cfg.Alert.Sound {
		sinks = append(sinks, notify.NewBellSink(os.Stdout))
	}
	if len(cfg.Alert.Command) > 0 {
		sinks = append(sinks, notify.NewCommandSink(cfg.Alert.Command))
	}
	if cfg.Alert.Banner {
		sinks = append(sinks, hub)
	}
	return sinks
}

// restoreState loads persisted settings, paper balances and alert history.
// Every failure here is logged and the defaults are kept.
func restoreState(ctx context.Context, db database.Service, session *arbitrage.Session, alerter *arbitrage.Alerter, paper *papertrade.Account, historySize int) {
	log := logger.Get()

	blob, err := db.LoadSettings(ctx)
	if err != nil {
		log.Warn("Failed to load settings", zap.Error(err))
	}
	// Anything the blob lacks keeps the value derived from config.
	settings, err := domain.DecodeSettingsOver(session.Settings(), blob)
	if err != nil {
		log.Warn("Stored settings are corrupt, keeping configured values", zap.Error(err))
	}
	if blob != nil {
		if err := session.ApplySettings(settings); err != nil {
			log.Warn("Stored settings rejected", zap.Error(err))
		}
		paper.Restore(settings.PaperBalance, settings.PaperPnL, settings.TradesExecuted)
	}

	records, err := db.RecentAlerts(ctx, historySize)
	if err != nil {
		log.Warn("Failed to load alert history", zap.Error(err))
		return
	}
	alerter.RestoreHistory(records)
}

func main() {
	cfg := config.GetConfig()
	log := logger.Get()
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	rnd := arbitrage.NewRandomSource()
	params := arbitrage.ScanParams{
		TradeAmount:     cfg.Arbitrage.TradeAmount,
		SlippagePercent: cfg.Arbitrage.Slippage,
		MinProfitFilter: cfg.Arbitrage.MinProfit,
		UseBidAsk:       cfg.Arbitrage.UseBidAsk,
		IncludeLatency:  cfg.Arbitrage.IncludeLatency,
		DynamicGas:      cfg.Arbitrage.DynamicGas,
	}

	feeds := buildFeeds(cfg, rnd)
	exchanges := make([]string, 0, len(feeds))
	for _, feed := range feeds {
		exchanges = append(exchanges, feed.Name())
	}

	session := arbitrage.NewSession(arbitrage.SessionConfig{
		Assets:        cfg.TrackedAssets(),
		Exchanges:     exchanges,
		Fees:          cfg.FeeSchedule(),
		Params:        params,
		HistoryLength: cfg.Arbitrage.HistoryLength,
	})
	scanner := arbitrage.NewScanner(
		cfg.ReliableExchanges(),
		arbitrage.GasPolicy{Assets: cfg.Arbitrage.GasAssets, NetworkFee: cfg.GasNetworkFee()},
		rnd,
		cfg.OpportunityWindow(),
	)

	hub := server.NewHub(log)
	alerter := arbitrage.NewAlerter(
		log,
		arbitrage.AlertThresholds{Profit: cfg.Alert.ProfitThreshold, ROI: cfg.Alert.ROIThreshold},
		cfg.AlertCooldown(),
		cfg.Alert.HistorySize,
		buildSinks(cfg, hub)...,
	)
	alerter.SetRecorder(db)

	paper := papertrade.NewAccount(domain.DefaultPaperBalance)
	restoreState(ctx, db, session, alerter, paper, cfg.Alert.HistorySize)

	engine := arbitrage.NewEngine(session, scanner, alerter, log, logger.GetArbitrageLogger())
	engine.AddObserver(hub)

	var snapshots server.SnapshotStore
	if cfg.Redis.Addr != "" {
		publisher, err := redis.New(ctx, redis.ClientConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Channel:  cfg.Redis.Channel,
			TTL:      cfg.OpportunityWindow(),
		}, log)
		if err != nil {
			log.Warn("Redis unavailable, cycle publishing disabled", zap.Error(err))
		} else {
			defer publisher.Close()
			engine.AddObserver(publisher)
			snapshots = publisher
		}
	}

	watcher := arbitrage.NewArbitrageScheduledWatcher(feeds, engine, cfg.RefreshInterval(), domain.ParseWatcherMode(cfg.Arbitrage.WatcherMode), log)
	go watcher.Start(ctx)

	server := server.New(server.Deps{
		DB:        db,
		Snapshots: snapshots,
		Engine:    engine,
		Watcher:   watcher,
		Paper:     paper,
		Hub:       hub,
		Random:    rnd,
		Log:       log,
	})

	server.RegisterFiberRoutes()

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	go func() {
		err := server.Listen(fmt.Sprintf(":%d", cfg.Server.Port))
		if err != nil {
			panic(fmt.Sprintf("http server error: %s", err))
		}
	}()

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(server, done)

	// Wait for the graceful shutdown to complete
	<-done
	cancel()
	alerter.Wait()
	log.Info("Graceful shutdown complete.")
}
