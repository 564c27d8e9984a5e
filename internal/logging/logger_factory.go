// Package logging builds the zap loggers used across credaudit
package logging

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel enumerates supported logging granularities
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat enumerates supported logger output encodings
type LogFormat string

const (
	LogFormatStructured LogFormat = "structured"
	LogFormatConsole    LogFormat = "console"
)

var logLevelMapping = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

var logFormatEncodingMapping = map[LogFormat]string{
	LogFormatStructured: "json",
	LogFormatConsole:    "console",
}

// LoggerFactory builds zap.Logger instances with consistent configuration
type LoggerFactory struct{}

// NewLoggerFactory creates a new logger factory
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{}
}

// CreateLogger builds a logger writing to stderr
func (f *LoggerFactory) CreateLogger(level LogLevel, format LogFormat) (*zap.Logger, error) {
	zapLevel, encoding, err := resolve(level, format)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.Encoding = encoding
	cfg.Sampling = nil
	return cfg.Build()
}

// CreateLoggerTo builds a logger writing to w
func (f *LoggerFactory) CreateLoggerTo(level LogLevel, format LogFormat, w io.Writer) (*zap.Logger, error) {
	zapLevel, encoding, err := resolve(level, format)
	if err != nil {
		return nil, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if encoding == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zap.NewAtomicLevelAt(zapLevel))
	return zap.New(core), nil
}

func resolve(level LogLevel, format LogFormat) (zapcore.Level, string, error) {
	zapLevel, ok := logLevelMapping[level]
	if !ok {
		return 0, "", fmt.Errorf("unsupported log level: %s", level)
	}
	encoding, ok := logFormatEncodingMapping[format]
	if !ok {
		return 0, "", fmt.Errorf("unsupported log format: %s", format)
	}
	return zapLevel, encoding, nil
}

// OrNop returns logger, or a no-op logger when it is nil
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// IsValidLevel reports whether level names a supported log level
func IsValidLevel(level string) bool {
	_, ok := logLevelMapping[LogLevel(level)]
	return ok
}

// IsValidFormat reports whether format names a supported log format
func IsValidFormat(format string) bool {
	_, ok := logFormatEncodingMapping[LogFormat(format)]
	return ok
}
