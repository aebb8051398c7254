// Package logger provides the process-wide leveled system log plus an
// opt-in, per-agent structured debug stream. One Logger is constructed
// in main and passed by reference to every subsystem; there are no
// package-level logging globals.
package logger

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// Logger wraps the system log and the per-agent debug stream.
type Logger struct {
	sys zerolog.Logger
	nop zerolog.Logger

	debugAgents bool
	limiter     *keyLimiter
}

// New creates a Logger writing to w at the given level ("debug", "info",
// "warn", "error"). debugAgents enables the per-agent debug stream.
func New(w io.Writer, level string, debugAgents bool) *Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return &Logger{
		sys:         zerolog.New(w).With().Timestamp().Logger().Level(lvl),
		nop:         zerolog.Nop(),
		debugAgents: debugAgents,
		limiter:     newKeyLimiter(defaultDebugBurst, defaultDebugWindow),
	}
}

// System returns the leveled system log.
func (l *Logger) System() *zerolog.Logger {
	return &l.sys
}

// Info starts an info-level system log event.
func (l *Logger) Info() *zerolog.Event { return l.sys.Info() }

// Warn starts a warn-level system log event.
func (l *Logger) Warn() *zerolog.Event { return l.sys.Warn() }

// Error starts an error-level system log event.
func (l *Logger) Error() *zerolog.Event { return l.sys.Error() }

// Agent starts a debug event on the per-agent stream, keyed by
// (agent id, category) and rate-limited per key. When the stream is
// disabled or the key is out of tokens, the returned event discards
// everything written to it.
func (l *Logger) Agent(id uint64, category string) *zerolog.Event {
	if !l.debugAgents {
		return l.nop.Debug()
	}
	if !l.limiter.allow(id, category) {
		return l.nop.Debug()
	}
	return l.sys.Debug().Uint64("agent", id).Str("category", category)
}

// SweepLimiter drops stale rate-limit buckets. Call it from a periodic
// maintenance layer, not every tick.
func (l *Logger) SweepLimiter() {
	l.limiter.sweep()
}
