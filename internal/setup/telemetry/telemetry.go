// Package telemetry handles creation of the application loggers.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// GetLoggers initializes the main and database loggers. Both log to
// stderr and to their own file under logDir; the database logger is
// kept separate so query noise can be filtered independently.
func GetLoggers(logDir, level string) (*zap.Logger, *zap.Logger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	mainLogger, err := initLogger(filepath.Join(logDir, "main.log"), level)
	if err != nil {
		return nil, nil, err
	}

	dbLogger, err := initLogger(filepath.Join(logDir, "database.log"), level)
	if err != nil {
		return nil, nil, err
	}

	return mainLogger, dbLogger.Named("database"), nil
}

// initLogger builds a logger writing to both the console and a file.
func initLogger(logPath, level string) (*zap.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.Lock(os.Stderr),
			zapLevel,
		),
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.AddSync(logFile),
			zapLevel,
		),
	}

	return zap.New(
		zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	), nil
}
