package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"crypto-arbitrage-scanner/internal/domain"
)

const settingsKey = "settings"

// Service is the persistence layer: the settings blob, the alert log and the
// paper trade log.
type Service interface {
	// Health returns a map of health status information.
	Health() map[string]string

	LoadSettings(ctx context.Context) ([]byte, error)
	SaveSettings(ctx context.Context, blob []byte) error

	RecordAlert(ctx context.Context, record domain.AlertRecord) error
	RecentAlerts(ctx context.Context, limit int) ([]domain.AlertRecord, error)

	RecordPaperTrade(ctx context.Context, trade domain.PaperTrade) error
	PaperTrades(ctx context.Context, limit int) ([]domain.PaperTrade, error)
	ClearPaperTrades(ctx context.Context) error

	// Close terminates the database connection.
	Close() error
}

type service struct {
	db *sql.DB
}

// New opens (and creates if needed) the sqlite database at path.
func New(path string) (Service, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &service{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *service) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT NOT NULL);`,
		`CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			asset TEXT NOT NULL,
			buy_exchange TEXT NOT NULL,
			sell_exchange TEXT NOT NULL,
			net_profit REAL NOT NULL,
			roi REAL NOT NULL,
			opportunity TEXT NOT NULL,
			alerted_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS paper_trades (
			id TEXT PRIMARY KEY,
			asset TEXT NOT NULL,
			buy_exchange TEXT NOT NULL,
			sell_exchange TEXT NOT NULL,
			trade_amount REAL NOT NULL,
			net_profit REAL NOT NULL,
			balance_after REAL NOT NULL,
			executed_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_alerted_at ON alerts(alerted_at);`,
		`CREATE INDEX IF NOT EXISTS idx_paper_trades_executed_at ON paper_trades(executed_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Health checks the health of the database connection by pinging the database.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	err := s.db.PingContext(ctx)
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := s.db.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()

	return stats
}

// LoadSettings returns the stored settings blob, or nil if none was saved yet.
func (s *service) LoadSettings(ctx context.Context) ([]byte, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key=?`, settingsKey).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(v), nil
}

func (s *service) SaveSettings(ctx context.Context, blob []byte) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO meta(key,value) VALUES(?,?) ON CONFLICT(key) DO UPDATE SET value=excluded.value`, settingsKey, string(blob))
	return err
}

func (s *service) RecordAlert(ctx context.Context, record domain.AlertRecord) error {
	payload, err := json.Marshal(record.Opportunity)
	if err != nil {
		return err
	}
	o := record.Opportunity
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO alerts(id,asset,buy_exchange,sell_exchange,net_profit,roi,opportunity,alerted_at) VALUES(?,?,?,?,?,?,?,?)`,
		record.ID, o.Asset, o.BuyExchange, o.SellExchange, o.NetProfit, o.ROI, string(payload), record.AlertedAt.UnixMilli())
	return err
}

// RecentAlerts returns up to limit alerts, most recent first.
func (s *service) RecentAlerts(ctx context.Context, limit int) ([]domain.AlertRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, opportunity, alerted_at FROM alerts ORDER BY alerted_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.AlertRecord{}
	for rows.Next() {
		var (
			r       domain.AlertRecord
			payload string
			at      int64
		)
		if err := rows.Scan(&r.ID, &payload, &at); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payload), &r.Opportunity); err != nil {
			return nil, fmt.Errorf("decode alert %s: %w", r.ID, err)
		}
		r.AlertedAt = time.UnixMilli(at).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *service) RecordPaperTrade(ctx context.Context, t domain.PaperTrade) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO paper_trades(id,asset,buy_exchange,sell_exchange,trade_amount,net_profit,balance_after,executed_at) VALUES(?,?,?,?,?,?,?,?)`,
		t.ID, t.Asset, t.BuyExchange, t.SellExchange, t.TradeAmount, t.NetProfit, t.BalanceAfter, t.ExecutedAt.UnixMilli())
	return err
}

// PaperTrades returns up to limit trades, most recent first.
func (s *service) PaperTrades(ctx context.Context, limit int) ([]domain.PaperTrade, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, asset, buy_exchange, sell_exchange, trade_amount, net_profit, balance_after, executed_at FROM paper_trades ORDER BY executed_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.PaperTrade{}
	for rows.Next() {
		var (
			t  domain.PaperTrade
			at int64
		)
		if err := rows.Scan(&t.ID, &t.Asset, &t.BuyExchange, &t.SellExchange, &t.TradeAmount, &t.NetProfit, &t.BalanceAfter, &at); err != nil {
			return nil, err
		}
		t.ExecutedAt = time.UnixMilli(at).UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *service) ClearPaperTrades(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM paper_trades`)
	return err
}

// Close closes the database connection.
func (s *service) Close() error {
	return s.db.Close()
}
