package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/lumberjack.v3"
)

var once sync.Once
var appLogger *zap.Logger
var arbitrageLogger *zap.Logger
var stateLogger *zap.Logger
var scrapingLogger *zap.Logger

type Config struct {
	Filename   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// Get returns the main application logger
func Get() *zap.Logger {
	once.Do(initLoggers)
	return appLogger
}

// GetArbitrageLogger returns the logger that records every refresh cycle's result
func GetArbitrageLogger() *zap.Logger {
	once.Do(initLoggers)
	return arbitrageLogger
}

// GetStateLogger returns the internal state logger
func GetStateLogger() *zap.Logger {
	once.Do(initLoggers)
	return stateLogger
}

// GetScrapingLogger returns the logger for raw exchange responses
func GetScrapingLogger() *zap.Logger {
	once.Do(initLoggers)
	return scrapingLogger
}

func logDir() string {
	if dir := os.Getenv("LOG_DIR"); dir != "" {
		return dir
	}
	return "logs"
}

func newLogger(config Config, useConsole bool) (*zap.Logger, error) {
	fileHandler, err := lumberjack.New(
		lumberjack.WithFileName(config.Filename),
		lumberjack.WithMaxBytes(int64(config.MaxSize*1024*1024)),
		lumberjack.WithMaxBackups(config.MaxBackups),
		lumberjack.WithMaxDays(config.MaxAge),
		lumberjack.WithCompress(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create file handler: %w", err)
	}

	level := zap.InfoLevel
	if levelEnv := os.Getenv("LOG_LEVEL"); levelEnv != "" {
		if parsedLevel, err := zapcore.ParseLevel(levelEnv); err == nil {
			level = parsedLevel
		}
	}
	logLevel := zap.NewAtomicLevelAt(level)

	productionCfg := zap.NewProductionEncoderConfig()
	productionCfg.TimeKey = "timestamp"
	productionCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	developmentCfg := zap.NewDevelopmentEncoderConfig()
	developmentCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(developmentCfg)
	fileEncoder := zapcore.NewJSONEncoder(productionCfg)

	var cores []zapcore.Core
	if useConsole {
		cores = append(cores, zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), logLevel))
	}
	cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(fileHandler), logLevel))

	return zap.New(zapcore.NewTee(cores...)), nil
}

func rotated(name string) Config {
	return Config{
		Filename:   filepath.Join(logDir(), name),
		MaxSize:    5,
		MaxBackups: 10,
		MaxAge:     14,
	}
}

func initLoggers() {
	var err error
	appLogger, err = newLogger(rotated("app.log"), true) // with console output
	if err != nil {
		log.Fatalf("failed to create app logger: %v", err)
	}

	arbitrageLogger, err = newLogger(rotated("arbitrage.log"), false)
	if err != nil {
		log.Fatalf("failed to create arbitrage logger: %v", err)
	}

	stateLogger, err = newLogger(rotated("internal_state.log"), false) // without console output
	if err != nil {
		log.Fatalf("failed to create state logger: %v", err)
	}

	scrapingLogger, err = newLogger(rotated("scraping.log"), false)
	if err != nil {
		log.Fatalf("failed to create scraping logger: %v", err)
	}
}
