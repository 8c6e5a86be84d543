package util

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"cq-suite/src/config"
)

// Logger provides leveled printf-style logging on top of zap
type Logger struct {
	level zap.AtomicLevel
	sugar *zap.SugaredLogger
	file  *os.File
}

// NewLogger creates a new logger from config. Unknown levels fall back to info
// and an unwritable log file falls back to stderr.
func NewLogger(cfg config.LoggingConfig) *Logger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
			level.SetLevel(zapcore.InfoLevel)
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	if !cfg.IncludeTimestamp {
		encCfg.TimeKey = ""
	}

	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	output := zapcore.Lock(os.Stderr)
	var file *os.File
	if cfg.File != "" {
		if f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err == nil {
			file = f
			output = zapcore.AddSync(f)
		}
	}

	opts := []zap.Option{zap.AddCallerSkip(2)}
	if cfg.IncludeCaller {
		opts = append(opts, zap.AddCaller())
	}

	core := zapcore.NewCore(encoder, output, level)
	return &Logger{
		level: level,
		sugar: zap.New(core, opts...).Sugar(),
		file:  file,
	}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...any) {
	l.sugar.Debugf(msg, args...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...any) {
	l.sugar.Infof(msg, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...any) {
	l.sugar.Warnf(msg, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...any) {
	l.sugar.Errorf(msg, args...)
}

// SetLevel changes the level at runtime
func (l *Logger) SetLevel(level string) error {
	return l.level.UnmarshalText([]byte(strings.ToLower(level)))
}

// GetLevel returns the current log level as a string
func (l *Logger) GetLevel() string {
	return l.level.Level().String()
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

// Close flushes the logger and closes its log file, if any
func (l *Logger) Close() error {
	// syncing stderr fails on some terminals
	_ = l.sugar.Sync()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// DefaultLogger is the package-level default logger
var DefaultLogger = NewLogger(config.LoggingConfig{
	Level:            "info",
	IncludeTimestamp: true,
})

// SetDefaultLogger updates the default logger with new configuration
// and closes the previous one
func SetDefaultLogger(cfg config.LoggingConfig) {
	previous := DefaultLogger
	DefaultLogger = NewLogger(cfg)
	if previous != nil {
		_ = previous.Close()
	}
}

// Debug logs using the default logger
func Debug(msg string, args ...any) {
	DefaultLogger.Debug(msg, args...)
}

// Info logs using the default logger
func Info(msg string, args ...any) {
	DefaultLogger.Info(msg, args...)
}

// Warn logs using the default logger
func Warn(msg string, args ...any) {
	DefaultLogger.Warn(msg, args...)
}

// Error logs using the default logger
func Error(msg string, args ...any) {
	DefaultLogger.Error(msg, args...)
}
