// Package logger provides the shared zap sugared logger for the server and feedbackctl.
// Level comes from LOG_LEVEL; ENVIRONMENT=production switches to the JSON encoder.
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.SugaredLogger
	once   sync.Once
)

// IsTest should be set to true by tests so output goes to stdout with the development encoder.
var IsTest bool

func initLoggerInternal() {
	var zapLogger *zap.Logger
	var err error

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(os.Getenv("LOG_LEVEL"))); err != nil {
		level = zapcore.InfoLevel
	}

	if IsTest {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(level)
		cfg.OutputPaths = []string{"stdout"}
		zapLogger, err = cfg.Build()
	} else if os.Getenv("ENVIRONMENT") == "production" {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(level)
		cfg.OutputPaths = []string{"stdout"}
		cfg.ErrorOutputPaths = []string{"stderr"}
		zapLogger, err = cfg.Build()
	} else {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(level)
		zapLogger, err = cfg.Build()
	}

	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	logger = zapLogger.Sugar()
}

// InitLogger initializes the global logger once.
func InitLogger() {
	once.Do(initLoggerInternal)
}

// GetLogger returns the shared logger, initializing it on first use.
func GetLogger() *zap.SugaredLogger {
	once.Do(initLoggerInternal)
	return logger
}

// SetLogger replaces the shared logger. Tests use it to capture output.
func SetLogger(l *zap.SugaredLogger) {
	once.Do(func() {})
	logger = l
}

// Close flushes buffered entries. Call before the process exits.
func Close() error {
	if logger != nil && !IsTest {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "Error syncing logger: %v\n", err)
			return err
		}
	}
	return nil
}

// MaskSensitiveString keeps the first prefixLen and last suffixLen characters of s.
// Short strings are fully masked so their length is not revealed.
func MaskSensitiveString(s string, prefixLen, suffixLen int) string {
	if s == "" {
		return ""
	}
	if len(s) < prefixLen+suffixLen+3 {
		return strings.Repeat("*", len(s))
	}
	return s[:prefixLen] + "..." + s[len(s)-suffixLen:]
}
