package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Interface -.
type Interface interface {
	Debug(message any, args ...any)
	Info(message string, args ...any)
	Warn(message string, args ...any)
	Error(message any, args ...any)
	Fatal(message any, args ...any)
}

// Logger -.
type Logger struct {
	logger *zap.Logger
}

var _ Interface = (*Logger)(nil)

// New -.
func New(level string) *Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		l = zap.NewExample()
	}

	return &Logger{logger: l}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{logger: zap.NewNop()}
}

func newWithZap(l *zap.Logger) *Logger {
	return &Logger{logger: l}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *Logger) Debug(message any, args ...any) {
	l.msg(zapcore.DebugLevel, message, args...)
}

func (l *Logger) Info(message string, args ...any) {
	l.log(zapcore.InfoLevel, message, args...)
}

func (l *Logger) Warn(message string, args ...any) {
	l.log(zapcore.WarnLevel, message, args...)
}

// Error accepts either a format string or an error; with an error the first
// argument, when a string, is the location the error is reported from.
func (l *Logger) Error(message any, args ...any) {
	l.msg(zapcore.ErrorLevel, message, args...)
}

func (l *Logger) Fatal(message any, args ...any) {
	l.msg(zapcore.FatalLevel, message, args...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.logger.Sync()
}

func (l *Logger) log(level zapcore.Level, message string, args ...any) {
	if len(args) == 0 {
		l.logger.Log(level, message)

		return
	}

	l.logger.Log(level, fmt.Sprintf(message, args...))
}

func (l *Logger) msg(level zapcore.Level, message any, args ...any) {
	switch msg := message.(type) {
	case error:
		if len(args) > 0 {
			if where, ok := args[0].(string); ok {
				text := where
				if len(args) > 1 {
					text = fmt.Sprintf(where, args[1:]...)
				}
				l.logger.Log(level, text, zap.Error(msg))

				return
			}
		}
		l.logger.Log(level, msg.Error())
	case string:
		l.log(level, msg, args...)
	default:
		l.log(level, fmt.Sprintf("%s message %v has unknown type %T", level, message, msg), args...)
	}
}
