// Package logging defines the small structured logger the pipeline reports
// non-fatal failures through, plus a zap-backed implementation.
package logging

import "go.uber.org/zap"

// Logger receives structured messages. Fields are key/value pairs:
// key1, value1, key2, value2, ...
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)
}

// Nop discards every message.
type Nop struct{}

func (Nop) Debug(string, ...any) {}
func (Nop) Info(string, ...any)  {}
func (Nop) Warn(string, ...any)  {}
func (Nop) Error(string, ...any) {}

// NewNop returns a Logger that discards all messages.
func NewNop() Logger {
	return Nop{}
}

// OrNop returns logger, or a Nop logger when logger is nil.
func OrNop(logger Logger) Logger {
	if logger == nil {
		return Nop{}
	}
	return logger
}

type zapLogger struct {
	logger *zap.SugaredLogger
}

// NewZap adapts a zap SugaredLogger. A nil logger yields a Nop logger.
func NewZap(logger *zap.SugaredLogger) Logger {
	if logger == nil {
		return Nop{}
	}
	return &zapLogger{logger: logger}
}

func (z *zapLogger) Debug(msg string, fields ...any) {
	z.logger.Debugw(msg, fields...)
}

func (z *zapLogger) Info(msg string, fields ...any) {
	z.logger.Infow(msg, fields...)
}

func (z *zapLogger) Warn(msg string, fields ...any) {
	z.logger.Warnw(msg, fields...)
}

func (z *zapLogger) Error(msg string, fields ...any) {
	z.logger.Errorw(msg, fields...)
}

// NewZapLogger builds a zap logger for command line use. Development mode
// logs at debug level with console encoding; otherwise production defaults
// apply.
func NewZapLogger(development bool) (*zap.SugaredLogger, error) {
	var (
		base *zap.Logger
		err  error
	)
	if development {
		base, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.DisableStacktrace = true
		base, err = cfg.Build()
	}
	if err != nil {
		return nil, err
	}
	return base.Sugar(), nil
}
