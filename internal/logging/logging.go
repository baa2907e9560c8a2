// Package logging builds the logr.Logger threaded through the engine,
// backed by zap.
package logging

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels for logger.V.
const (
	INFO  = 0
	DEBUG = 1
	TRACE = 2
)

// New returns a logger printing messages up to verbosity. Development
// loggers use the console encoder.
func New(verbosity int, development bool) (logr.Logger, error) {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-verbosity))
	cfg.DisableStacktrace = !development

	z, err := cfg.Build()
	if err != nil {
		return logr.Discard(), err
	}
	return zapr.NewLogger(z), nil
}

// NewTestLogger returns a development logger at DEBUG, or a discarding
// logger if zap cannot be built.
func NewTestLogger() logr.Logger {
	log, err := New(DEBUG, true)
	if err != nil {
		return logr.Discard()
	}
	return log
}
