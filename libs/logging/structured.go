// Package logging provides structured logging utilities for routegen runs
package logging

import (
	"go.uber.org/zap"
)

// Logger wraps zap.Logger with run-specific helpers
type Logger struct {
	*zap.Logger
}

// Config holds logging configuration
type Config struct {
	Level      string
	Format     string // "json" or "console"
	OutputPath string
	Fields     map[string]string
}

// NewLogger creates a new structured logger. An unknown level logs at info.
func NewLogger(config Config) (*Logger, error) {
	zapConfig := zap.NewProductionConfig()

	level, err := zap.ParseAtomicLevel(config.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapConfig.Level = level

	if config.Format == "console" {
		zapConfig.Encoding = "console"
	}

	if config.OutputPath != "" {
		zapConfig.OutputPaths = []string{config.OutputPath}
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	zapFields := make([]zap.Field, 0, len(config.Fields))
	for k, v := range config.Fields {
		zapFields = append(zapFields, zap.String(k, v))
	}

	return &Logger{Logger: logger.With(zapFields...)}, nil
}

// NewNop returns a logger that discards everything, for tests
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// WithField adds a field to the logger context
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{Logger: l.Logger.With(zap.Any(key, value))}
}

// LogRunEvent logs a batch lifecycle event
func (l *Logger) LogRunEvent(event string, fields ...zap.Field) {
	l.Info("Run event", append([]zap.Field{zap.String("event", event)}, fields...)...)
}

// LogPerformanceMetric logs performance-related metrics
func (l *Logger) LogPerformanceMetric(metric string, value int64, unit string) {
	l.Info("Performance metric",
		zap.String("metric", metric),
		zap.Int64("value", value),
		zap.String("unit", unit),
		zap.String("type", "performance"),
	)
}

// LogDataQualityEvent logs data quality issues found in the input tables
func (l *Logger) LogDataQualityEvent(parentKey, issue, severity string) {
	l.Warn("Data quality issue",
		zap.String("parent_key", parentKey),
		zap.String("issue", issue),
		zap.String("severity", severity),
		zap.String("type", "data_quality"),
	)
}
