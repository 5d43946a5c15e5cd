package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// log stays a no-op until Initialize is called, so packages can log from tests.
var log = zap.NewNop()

type Configuration struct {
	LogFile   string `yaml:"logFile"   envconfig:"RAFFLE_LOG_FILE"`
	ErrorFile string `yaml:"errorFile" envconfig:"RAFFLE_ERROR_FILE"`
	Level     string `yaml:"level"     envconfig:"RAFFLE_LOG_LEVEL"`
	Console   bool   `yaml:"console"   envconfig:"RAFFLE_LOG_CONSOLE"`
}

var encoding = zapcore.EncoderConfig{
	MessageKey:     "message",
	LevelKey:       "level",
	TimeKey:        "timestamp",
	NameKey:        "logger",
	CallerKey:      "caller",
	StacktraceKey:  "stacktrace",
	LineEnding:     zapcore.DefaultLineEnding,
	EncodeLevel:    zapcore.LowercaseLevelEncoder,
	EncodeTime:     zapcore.ISO8601TimeEncoder,
	EncodeDuration: zapcore.SecondsDurationEncoder,
	EncodeCaller:   zapcore.ShortCallerEncoder,
}

// parseLevel falls back to debug for an empty or unknown level.
func parseLevel(value string) zapcore.Level {
	level := zapcore.DebugLevel
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return zapcore.DebugLevel
	}
	return level
}

func fileCore(path string, enabler zapcore.LevelEnabler) (zapcore.Core, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return zapcore.NewCore(zapcore.NewJSONEncoder(encoding), zapcore.AddSync(file), enabler), nil
}

// Initialize tees the configured sinks: a JSON log file at the configured level, a JSON file
// receiving errors only, and the console.
func Initialize(configuration Configuration) error {
	level := parseLevel(configuration.Level)
	cores := make([]zapcore.Core, 0, 3)

	if configuration.LogFile != "" {
		core, err := fileCore(configuration.LogFile, level)
		if err != nil {
			return err
		}
		cores = append(cores, core)
	}
	if configuration.ErrorFile != "" {
		core, err := fileCore(configuration.ErrorFile, zapcore.ErrorLevel)
		if err != nil {
			return err
		}
		cores = append(cores, core)
	}
	if configuration.Console {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoding), zapcore.Lock(os.Stdout), level))
	}

	log = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
	return nil
}

// Replace swaps the package logger and returns a function restoring the previous one.
func Replace(l *zap.Logger) func() {
	previous := log
	log = l.WithOptions(zap.AddCallerSkip(1))
	return func() {
		log = previous
	}
}

func Sync() {
	_ = log.Sync()
}

func Debug(message string, fields ...zap.Field) {
	log.Debug(message, fields...)
}

func Info(message string, fields ...zap.Field) {
	log.Info(message, fields...)
}

func Warn(message string, fields ...zap.Field) {
	log.Warn(message, fields...)
}

func Error(message string, fields ...zap.Field) {
	log.Error(message, fields...)
}

func Fatal(message string, fields ...zap.Field) {
	log.Fatal(message, fields...)
}
