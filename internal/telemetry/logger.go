// Package telemetry wraps zap behind a narrow interface, the same
// indirection the prior implementation uses for its own core.Logger (pkg/core/
// interfaces.go: a bare Printf contract implemented by DefaultLogger in
// pkg/renderer/progressive.go). This module widens the contract slightly
// to structured fields since zap is now the concrete backend, but keeps
// the same intent: integrator/renderer code never imports zap directly.
package telemetry

import "go.uber.org/zap"

// Logger is the logging contract the render pipeline depends on.
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
	Sync() error
}

// zapLogger adapts *zap.SugaredLogger to Logger.
type zapLogger struct {
	*zap.SugaredLogger
}

// New builds a production zap logger (JSON encoding, info level) wrapped
// behind Logger.
func New() (Logger, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &zapLogger{SugaredLogger: l.Sugar()}, nil
}

// NewDevelopment builds a human-readable console logger, used by the CLI
// driver's --verbose flag.
func NewDevelopment() (Logger, error) {
	l, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return &zapLogger{SugaredLogger: l.Sugar()}, nil
}

// Noop returns a Logger that discards everything, used by tests that
// exercise code paths taking a Logger without wanting zap's output.
func Noop() Logger {
	return &zapLogger{SugaredLogger: zap.NewNop().Sugar()}
}
