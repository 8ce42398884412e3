package server

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"crypto-arbitrage-scanner/internal/arbitrage"
	"crypto-arbitrage-scanner/internal/domain"
	"crypto-arbitrage-scanner/internal/papertrade"
)

const paperTradeListLimit = 100

func (s *FiberServer) RegisterFiberRoutes() {
	s.App.Get("/health", s.healthHandler)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := s.App.Group("/api")
	api.Get("/prices", s.pricesHandler)
	api.Get("/opportunities", s.opportunitiesHandler)
	api.Get("/opportunities/export", s.exportHandler)
	api.Get("/stats", s.statsHandler)
	api.Post("/sort/:field", s.sortHandler)

	api.Get("/alerts", s.alertsHandler)
	api.Put("/alerts", s.updateAlertsHandler)
	api.Post("/alerts/test", s.testAlertHandler)

	api.Get("/settings", s.settingsHandler)
	api.Put("/settings", s.updateSettingsHandler)
	api.Post("/presets/:name", s.presetHandler)
	api.Post("/pins/:asset", s.pinHandler)
	api.Post("/watchlist/:asset", s.watchlistHandler)

	api.Post("/refresh", s.refreshHandler)
	api.Put("/refresh/interval", s.intervalHandler)
	api.Post("/refresh/pause", s.pauseHandler)
	api.Post("/refresh/resume", s.resumeHandler)

	api.Get("/triangular", s.triangularHandler)
	api.Get("/whatif", s.whatIfHandler)
	api.Get("/montecarlo", s.monteCarloHandler)

	api.Get("/paper", s.paperHandler)
	api.Post("/paper/execute/:index", s.executePaperHandler)
	api.Post("/paper/reset", s.resetPaperHandler)

	s.App.Use("/ws", s.hub.Upgrade)
	s.App.Get("/ws", s.hub.Handler())
}

func (s *FiberServer) healthHandler(c *fiber.Ctx) error {
	health := map[string]string{"status": "up"}
	if s.db != nil {
		health = s.db.Health()
	}
	return c.JSON(health)
}

// pricesHandler serves the session's quotes. Until the first local cycle
// commits it falls back to the last snapshot in the shared store.
func (s *FiberServer) pricesHandler(c *fiber.Ctx) error {
	session := s.engine.Session()
	if s.snapshots != nil && session.Stats().Cycles == 0 {
		report, err := s.snapshots.Latest(c.UserContext())
		if err == nil {
			return c.JSON(fiber.Map{
				"prices":   report.Prices,
				"previous": domain.QuoteTable{},
				"history":  map[string][]float64{},
				"source":   "snapshot",
				"at":       report.At,
			})
		}
		s.log.Debug("No shared snapshot available", zap.Error(err))
	}

	history := make(map[string][]float64)
	for _, asset := range session.Assets() {
		history[asset] = session.History(asset)
	}
	return c.JSON(fiber.Map{
		"prices":   session.Prices(),
		"previous": session.PreviousPrices(),
		"history":  history,
		"source":   "live",
	})
}

// opportunitiesHandler serves the ranked set. Query parameters reorder and
// filter the response only; the session's own sort is left alone.
func (s *FiberServer) opportunitiesHandler(c *fiber.Ctx) error {
	session := s.engine.Session()
	opps := session.Opportunities()

	if field := c.Query("sort"); field != "" {
		if !arbitrage.IsSortField(field) {
			return fiber.NewError(fiber.StatusBadRequest, "unknown sort field: "+field)
		}
		opps = arbitrage.SortOpportunities(opps, field, domain.ParseSortDirection(c.Query("dir")))
	}
	if c.QueryBool("profitable", session.ShowProfitableOnly()) {
		opps = arbitrage.FilterProfitable(opps)
	}
	if assets := c.Query("assets"); assets != "" {
		opps = arbitrage.FilterAssets(opps, strings.Split(strings.ToUpper(assets), ","))
	}
	if c.QueryBool("pinned") {
		opps = arbitrage.FilterAssets(opps, session.Settings().PinnedAssets)
	}
	if c.QueryBool("watchlist") {
		opps = arbitrage.FilterAssets(opps, session.Settings().Watchlist)
	}
	opps = arbitrage.Limit(opps, c.QueryInt("limit", 0))

	return c.JSON(opps)
}

func (s *FiberServer) exportHandler(c *fiber.Ctx) error {
	data, err := arbitrage.Export(s.engine.Session().View())
	if err != nil {
		return err
	}
	c.Attachment(arbitrage.ExportFilename(s.engine.Now()))
	c.Type("json")
	return c.Send(data)
}

func (s *FiberServer) statsHandler(c *fiber.Ctx) error {
	session := s.engine.Session()
	opps := session.Opportunities()
	field, direction := session.Sort()

	resp := fiber.Map{
		"stats":     session.Stats(),
		"risk":      arbitrage.CountRisk(opps),
		"topAssets": arbitrage.TopAssets(opps, 5),
		"sort":      fiber.Map{"field": field, "direction": direction.String()},
		"clients":   s.hub.Clients(),
	}
	if s.watcher != nil {
		resp["paused"] = s.watcher.Paused()
		resp["intervalMs"] = s.watcher.Interval().Milliseconds()
	}
	return c.JSON(resp)
}

func (s *FiberServer) sortHandler(c *fiber.Ctx) error {
	field := c.Params("field")
	if !arbitrage.IsSortField(field) {
		return fiber.NewError(fiber.StatusBadRequest, "unknown sort field: "+field)
	}
	session := s.engine.Session()
	session.SetSort(field)
	if _, err := s.engine.Rescan(c.UserContext()); err != nil {
		return err
	}
	field, direction := session.Sort()
	return c.JSON(fiber.Map{"field": field, "direction": direction.String()})
}

func (s *FiberServer) alertsHandler(c *fiber.Ctx) error {
	alerter := s.engine.Alerter()
	return c.JSON(fiber.Map{
		"thresholds": alerter.Thresholds(),
		"history":    alerter.History(),
	})
}

// updateAlertsHandler replaces the alert thresholds; omitted fields keep
// their current value.
func (s *FiberServer) updateAlertsHandler(c *fiber.Ctx) error {
	alerter := s.engine.Alerter()
	thresholds := alerter.Thresholds()
	if err := c.BodyParser(&thresholds); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if thresholds.Profit < 0 || thresholds.ROI < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "alert thresholds must not be negative")
	}
	alerter.SetThresholds(thresholds)
	return c.JSON(thresholds)
}

func (s *FiberServer) testAlertHandler(c *fiber.Ctx) error {
	s.engine.Alerter().SendTest(c.UserContext())
	return c.SendStatus(fiber.StatusAccepted)
}

func (s *FiberServer) settingsHandler(c *fiber.Ctx) error {
	return c.JSON(s.engine.Session().Settings())
}

// updateSettingsHandler merges the body over the current settings, rescans
// and persists the result.
func (s *FiberServer) updateSettingsHandler(c *fiber.Ctx) error {
	session := s.engine.Session()
	settings := session.Settings()
	if err := c.BodyParser(&settings); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := session.ApplySettings(settings); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if _, err := s.engine.Rescan(c.UserContext()); err != nil {
		return err
	}
	if err := s.saveSettings(c); err != nil {
		return err
	}
	return c.JSON(session.Settings())
}

func (s *FiberServer) presetHandler(c *fiber.Ctx) error {
	preset, err := s.engine.Session().ApplyPreset(c.Params("name"))
	if errors.Is(err, arbitrage.ErrUnknownPreset) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if _, err := s.engine.Rescan(c.UserContext()); err != nil {
		return err
	}
	if err := s.saveSettings(c); err != nil {
		return err
	}
	return c.JSON(preset)
}

func (s *FiberServer) pinHandler(c *fiber.Ctx) error {
	pinned := s.engine.Session().TogglePin(strings.ToUpper(c.Params("asset")))
	if err := s.saveSettings(c); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"pinnedAssets": pinned})
}

func (s *FiberServer) watchlistHandler(c *fiber.Ctx) error {
	watchlist := s.engine.Session().ToggleWatchlist(strings.ToUpper(c.Params("asset")))
	if err := s.saveSettings(c); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"watchlist": watchlist})
}

func (s *FiberServer) saveSettings(c *fiber.Ctx) error {
	if s.db == nil {
		return nil
	}
	blob, err := domain.EncodeSettings(s.engine.Session().Settings())
	if err != nil {
		return err
	}
	if err := s.db.SaveSettings(c.UserContext(), blob); err != nil {
		s.log.Error("Failed to persist settings", zap.Error(err))
		return err
	}
	return nil
}

func (s *FiberServer) refreshHandler(c *fiber.Ctx) error {
	if s.watcher == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "watcher not running")
	}
	s.watcher.Trigger()
	return c.SendStatus(fiber.StatusAccepted)
}

func (s *FiberServer) intervalHandler(c *fiber.Ctx) error {
	if s.watcher == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "watcher not running")
	}
	var body struct {
		IntervalMs int64 `json:"intervalMs"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := s.watcher.SetInterval(msToDuration(body.IntervalMs)); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(fiber.Map{"intervalMs": s.watcher.Interval().Milliseconds()})
}

func (s *FiberServer) pauseHandler(c *fiber.Ctx) error {
	if s.watcher == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "watcher not running")
	}
	s.watcher.Pause()
	return c.JSON(fiber.Map{"paused": true})
}

func (s *FiberServer) resumeHandler(c *fiber.Ctx) error {
	if s.watcher == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "watcher not running")
	}
	s.watcher.Resume()
	return c.JSON(fiber.Map{"paused": false})
}

func (s *FiberServer) triangularHandler(c *fiber.Ctx) error {
	session := s.engine.Session()
	return c.JSON(arbitrage.FindTriangular(session.Prices(), session.Exchanges()))
}

func (s *FiberServer) whatIfHandler(c *fiber.Ctx) error {
	var in arbitrage.WhatIfInput
	if err := c.QueryParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	result, err := arbitrage.WhatIf(in)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(result)
}

func (s *FiberServer) monteCarloHandler(c *fiber.Ctx) error {
	amount := c.QueryFloat("amount", s.engine.Session().Params().TradeAmount)
	iterations := c.QueryInt("iterations", arbitrage.DefaultMonteCarloRun)
	result, err := arbitrage.MonteCarlo(amount, iterations, s.random)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(result)
}

func (s *FiberServer) paperHandler(c *fiber.Ctx) error {
	summary := s.paper.Summary()
	if s.db != nil {
		trades, err := s.db.PaperTrades(c.UserContext(), paperTradeListLimit)
		if err != nil {
			return err
		}
		summary.Trades = trades
	}
	return c.JSON(summary)
}

// executePaperHandler books the opportunity at :index of the displayed list.
func (s *FiberServer) executePaperHandler(c *fiber.Ctx) error {
	index, err := c.ParamsInt("index")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "index must be a number")
	}
	session := s.engine.Session()
	view := session.View()
	if index < 0 || index >= len(view) {
		return fiber.NewError(fiber.StatusNotFound, "no opportunity at that index")
	}

	trade, err := s.paper.Execute(view[index], session.Params().TradeAmount)
	if errors.Is(err, papertrade.ErrInsufficientBalance) {
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	if err != nil {
		return err
	}

	if err := s.syncPaperAccount(c); err != nil {
		return err
	}
	if s.db != nil {
		if err := s.db.RecordPaperTrade(c.UserContext(), trade); err != nil {
			s.log.Error("Failed to record paper trade", zap.Error(err))
			return err
		}
	}
	return c.Status(fiber.StatusCreated).JSON(trade)
}

func (s *FiberServer) resetPaperHandler(c *fiber.Ctx) error {
	s.paper.Reset()
	if s.db != nil {
		if err := s.db.ClearPaperTrades(c.UserContext()); err != nil {
			return err
		}
	}
	if err := s.syncPaperAccount(c); err != nil {
		return err
	}
	return c.JSON(s.paper.Summary())
}

func (s *FiberServer) syncPaperAccount(c *fiber.Ctx) error {
	summary := s.paper.Summary()
	s.engine.Session().SetPaperAccount(summary.Balance, summary.PnL, summary.TradesExecuted)
	return s.saveSettings(c)
}
