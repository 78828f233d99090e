package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// default logger instance
	defaultLogger *zap.SugaredLogger
)

// controls how the default logger is built
type Options struct {
	// "production" switches to JSON output at info level
	Environment string

	// debug, info, warn, error (empty keeps the environment default)
	Level string

	// optional path of a rotated log file, written in JSON alongside the console
	File string

	// rotation settings for File
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// initializes the logger based on environment
func init() {
	l, err := build(Options{Environment: os.Getenv("ENVIRONMENT")})
	if err != nil {
		l = zap.NewNop()
	}

	defaultLogger = l.Sugar()
}

// rebuilds the default logger from explicit options
func Init(opts Options) error {
	l, err := build(opts)
	if err != nil {
		return err
	}

	SetDefault(l)
	return nil
}

// replaces the default logger (tests swap in an observer core here)
func SetDefault(l *zap.Logger) {
	if defaultLogger != nil {
		_ = defaultLogger.Sync() //nolint:errcheck // stderr sync errors are expected on some platforms
	}

	defaultLogger = l.Sugar()
}

func build(opts Options) (*zap.Logger, error) {
	production := opts.Environment == "production"

	level := zapcore.DebugLevel
	if production {
		level = zapcore.InfoLevel
	}

	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(opts.Level))); err != nil {
			return nil, err
		}
	}

	atomicLevel := zap.NewAtomicLevelAt(level)

	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	jsonCfg := encoderCfg
	jsonCfg.EncodeLevel = zapcore.LowercaseLevelEncoder

	var console zapcore.Core
	if production {
		// production: JSON output for structured logging
		console = zapcore.NewCore(zapcore.NewJSONEncoder(jsonCfg), zapcore.Lock(os.Stdout), atomicLevel)
	} else {
		// development: human-readable colored output
		consoleCfg := encoderCfg
		consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		console = zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), atomicLevel)
	}

	core := console

	if opts.File != "" {
		var file io.Writer = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    max(1, opts.MaxSizeMB),
			MaxBackups: max(0, opts.MaxBackups),
			MaxAge:     max(0, opts.MaxAgeDays),
			Compress:   true,
		}

		core = zapcore.NewTee(console, zapcore.NewCore(zapcore.NewJSONEncoder(jsonCfg), zapcore.AddSync(file), atomicLevel))
	}

	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)), nil
}

// returns the default logger instance
func Default() *zap.SugaredLogger {
	return defaultLogger
}

// creates a logger with additional context fields
func With(args ...any) *zap.SugaredLogger {
	return defaultLogger.With(args...)
}

// creates a logger with context
func FromContext(ctx context.Context) *zap.SugaredLogger {
	if ctx == nil {
		return defaultLogger
	}

	// extract any logger from context if present
	if logger, ok := ctx.Value(loggerKey{}).(*zap.SugaredLogger); ok {
		return logger
	}

	return defaultLogger
}

// returns the logger stored on ctx, if any
func Lookup(ctx context.Context) (*zap.SugaredLogger, bool) {
	if ctx == nil {
		return nil, false
	}

	logger, ok := ctx.Value(loggerKey{}).(*zap.SugaredLogger)
	return logger, ok
}

// adds logger to context
func WithContext(ctx context.Context, logger *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// helper type for context key
type loggerKey struct{}

// flushes buffered log entries
func Sync() {
	_ = defaultLogger.Sync() //nolint:errcheck // best-effort flush on shutdown
}

// convenience functions for common log levels

// logs a debug message
func Debug(msg string, args ...any) {
	defaultLogger.Debugw(msg, args...)
}

// logs an info message
func Info(msg string, args ...any) {
	defaultLogger.Infow(msg, args...)
}

// logs a warning message
func Warn(msg string, args ...any) {
	defaultLogger.Warnw(msg, args...)
}

// logs an error message
func Error(msg string, args ...any) {
	defaultLogger.Errorw(msg, args...)
}

// logs an error with context
func ErrorErr(err error, msg string, args ...any) {
	args = append(args, "error", err)
	defaultLogger.Errorw(msg, args...)
}

// logs a fatal error and exits (for CLI tools)
func Fatal(msg string, args ...any) {
	defaultLogger.Fatalw(msg, args...)
}

// logs a fatal error with error and exits (for CLI tools)
func FatalErr(err error, msg string, args ...any) {
	args = append(args, "error", err)
	defaultLogger.Fatalw(msg, args...)
}
