package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"crypto-arbitrage-scanner/internal/arbitrage"
	"crypto-arbitrage-scanner/internal/database"
	"crypto-arbitrage-scanner/internal/papertrade"
)

// SnapshotStore serves the last cycle published by any instance.
type SnapshotStore interface {
	Latest(ctx context.Context) (arbitrage.CycleReport, error)
}

type Deps struct {
	DB        database.Service
	Snapshots SnapshotStore
	Engine    *arbitrage.Engine
	Watcher   *arbitrage.ArbitrageScheduledWatcher
	Paper     *papertrade.Account
	Hub       *Hub
	Random    arbitrage.RandomSource
	Log       *zap.Logger
}

type FiberServer struct {
	*fiber.App

	db        database.Service
	snapshots SnapshotStore
	engine    *arbitrage.Engine
	watcher   *arbitrage.ArbitrageScheduledWatcher
	paper     *papertrade.Account
	hub       *Hub
	random    arbitrage.RandomSource
	log       *zap.Logger
}

func New(deps Deps) *FiberServer {
	if deps.Random == nil {
		deps.Random = arbitrage.NewRandomSource()
	}
	if deps.Hub == nil {
		deps.Hub = NewHub(deps.Log)
	}

	server := &FiberServer{
		App: fiber.New(fiber.Config{
			ServerHeader: "crypto-arbitrage-scanner",
			AppName:      "crypto-arbitrage-scanner",
			ErrorHandler: errorHandler,
		}),

		db:        deps.DB,
		snapshots: deps.Snapshots,
		engine:    deps.Engine,
		watcher:   deps.Watcher,
		paper:     deps.Paper,
		hub:       deps.Hub,
		random:    deps.Random,
		log:       deps.Log,
	}

	return server
}

func (s *FiberServer) Hub() *Hub {
	return s.hub
}

// errorHandler renders every error as {"error": "..."}.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func msToDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
