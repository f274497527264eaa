// Package logging provides the executor's leveled logging facade, backed
// by zap's SugaredLogger.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the available log levels.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Config holds logging configuration.
type Config struct {
	Level LogLevel
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() *Config {
	return &Config{Level: LevelInfo}
}

// Logger wraps a zap.SugaredLogger with the level-gated facade the rest of
// the executor depends on (internal/interfaces.Logger).
type Logger struct {
	sugar *zap.SugaredLogger
	level LogLevel
}

// NewLogger creates a new logger at the given config. Construction (like
// the teacher's) happens outside the spin loop.
func NewLogger(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(config.Level.zapLevel())
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.TimeKey = "ts"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zl, err := zcfg.Build()
	if err != nil {
		// Build only fails on a malformed config; fall back to a no-op
		// core rather than panicking inside a library constructor.
		zl = zap.NewNop()
	}

	return &Logger{sugar: zl.Sugar(), level: config.Level}
}

var (
	defaultMu     sync.RWMutex
	defaultLogger *Logger
)

// Default returns the process-wide default logger, creating it lazily.
func Default() *Logger {
	defaultMu.RLock()
	if defaultLogger != nil {
		defer defaultMu.RUnlock()
		return defaultLogger
	}
	defaultMu.RUnlock()

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewLogger(nil)
	}
	return defaultLogger
}

// SetDefault overrides the process-wide default logger.
func SetDefault(logger *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// Sync flushes any buffered log entries; callers should defer it after
// construction, matching zap's own convention.
func (l *Logger) Sync() error { return l.sugar.Sync() }
