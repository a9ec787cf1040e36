// Package logging provides structured logging functionality.
package logging

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"news-backtester/internal/config"
)

// NewLogger creates a new logger with the default configuration.
func NewLogger() zerolog.Logger {
	return NewLoggerWithConfig(config.Default().Logging)
}

// NewLoggerWithConfig creates a new logger with the specified configuration.
func NewLoggerWithConfig(cfg config.LoggingConfig) zerolog.Logger {
	var writers []io.Writer

	if cfg.Console {
		consoleWriter := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		writers = append(writers, consoleWriter)
	}

	if cfg.File {
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err == nil {
			fileWriter := &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSizeMB,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAgeDays,
				Compress:   true,
			}
			writers = append(writers, fileWriter)
		}
	}

	var writer io.Writer
	if len(writers) == 0 {
		writer = os.Stdout
	} else if len(writers) == 1 {
		writer = writers[0]
	} else {
		writer = zerolog.MultiLevelWriter(writers...)
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	return zerolog.New(writer).
		With().
		Timestamp().
		Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ContextKey is the type for context keys.
type ContextKey string

// LoggerKey is the context key for the logger.
const LoggerKey ContextKey = "logger"

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context.
func FromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(zerolog.Logger); ok {
		return logger
	}
	return zerolog.Nop()
}

// WithRun adds a backtest run ID to the logger context.
func WithRun(logger zerolog.Logger, runID string) zerolog.Logger {
	return logger.With().Str("run_id", runID).Logger()
}

// WithSymbol adds a symbol to the logger context.
func WithSymbol(logger zerolog.Logger, symbol string) zerolog.Logger {
	return logger.With().Str("symbol", symbol).Logger()
}

// LogSignal logs an approved entry signal.
func LogSignal(logger zerolog.Logger, symbol string, day time.Time, newsID int64, score float64) {
	logger.Debug().
		Str("event", "signal").
		Str("symbol", symbol).
		Time("day", day).
		Int64("news_id", newsID).
		Float64("score", score).
		Msg("Entry signal approved")
}

// LogTradeOpen logs a simulated trade entry.
func LogTradeOpen(logger zerolog.Logger, symbol string, day time.Time, price float64) {
	logger.Debug().
		Str("event", "trade_open").
		Str("symbol", symbol).
		Time("day", day).
		Float64("entry_price", price).
		Msg("Trade opened")
}

// LogTradeClose logs a simulated trade exit.
func LogTradeClose(logger zerolog.Logger, symbol string, day time.Time, price, pnl float64, forced bool) {
	logger.Debug().
		Str("event", "trade_close").
		Str("symbol", symbol).
		Time("day", day).
		Float64("exit_price", price).
		Float64("pnl", pnl).
		Bool("forced", forced).
		Msg("Trade closed")
}

// LogRun logs a completed backtest run summary.
func LogRun(logger zerolog.Logger, runID string, trades int, winRate, totalPnL float64, duration time.Duration) {
	logger.Info().
		Str("event", "backtest_run").
		Str("run_id", runID).
		Int("trades", trades).
		Float64("win_rate", winRate).
		Float64("total_pnl", totalPnL).
		Dur("duration", duration).
		Msg("Backtest completed")
}
