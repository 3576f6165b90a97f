// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is a thin layer over go-ethereum's slog based logger.
// Package level loggers created with WithContext always write through the current root logger,
// so they may be declared in var blocks before the root is configured.
package log

import (
	"log/slog"

	ethlog "github.com/ethereum/go-ethereum/log"
)

const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = ethlog.LevelDebug
	LevelInfo  = ethlog.LevelInfo
	LevelWarn  = ethlog.LevelWarn
	LevelError = ethlog.LevelError
	LevelCrit  = ethlog.LevelCrit
)

// Logger writes key/value pairs at a given level.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
	New(ctx ...any) Logger
}

type ethLogger struct {
	l ethlog.Logger
}

func (e *ethLogger) Trace(msg string, ctx ...any) { e.l.Trace(msg, ctx...) }
func (e *ethLogger) Debug(msg string, ctx ...any) { e.l.Debug(msg, ctx...) }
func (e *ethLogger) Info(msg string, ctx ...any)  { e.l.Info(msg, ctx...) }
func (e *ethLogger) Warn(msg string, ctx ...any)  { e.l.Warn(msg, ctx...) }
func (e *ethLogger) Error(msg string, ctx ...any) { e.l.Error(msg, ctx...) }
func (e *ethLogger) Crit(msg string, ctx ...any)  { e.l.Crit(msg, ctx...) }
func (e *ethLogger) New(ctx ...any) Logger        { return &ethLogger{e.l.New(ctx...)} }

// contextLogger binds ctx lazily to whatever the root logger is at write time.
type contextLogger struct {
	ctx []any
}

func (c *contextLogger) root() ethlog.Logger { return ethlog.Root().New(c.ctx...) }

func (c *contextLogger) Trace(msg string, ctx ...any) { c.root().Trace(msg, ctx...) }
func (c *contextLogger) Debug(msg string, ctx ...any) { c.root().Debug(msg, ctx...) }
func (c *contextLogger) Info(msg string, ctx ...any)  { c.root().Info(msg, ctx...) }
func (c *contextLogger) Warn(msg string, ctx ...any)  { c.root().Warn(msg, ctx...) }
func (c *contextLogger) Error(msg string, ctx ...any) { c.root().Error(msg, ctx...) }
func (c *contextLogger) Crit(msg string, ctx ...any)  { c.root().Crit(msg, ctx...) }
func (c *contextLogger) New(ctx ...any) Logger {
	return &contextLogger{append(append([]any{}, c.ctx...), ctx...)}
}

// WithContext returns a logger carrying the given key/value pairs.
func WithContext(ctx ...any) Logger {
	return &contextLogger{ctx}
}

// Root returns the root logger.
func Root() Logger {
	return &ethLogger{ethlog.Root()}
}

// SetDefault replaces the root logger with one writing to h.
func SetDefault(h slog.Handler) {
	ethlog.SetDefault(ethlog.NewLogger(h))
}

// DiscardHandler returns a handler dropping every record.
func DiscardHandler() slog.Handler {
	return ethlog.DiscardHandler()
}

// FromVerbosity converts the legacy 0-5 verbosity (crit..trace) to a slog level.
func FromVerbosity(v int) slog.Level {
	return ethlog.FromLegacyLevel(v)
}
