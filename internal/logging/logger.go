// Package logging builds the structured logger shared by peakscout's
// core and drivers.
package logging

import "go.uber.org/zap"

// New builds a human-readable console logger for CLI use.
func New(verbose bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg.DisableStacktrace = true
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

// NoOp returns a logger that discards everything, for callers that
// want no log output. Library code does not substitute it for a nil
// logger; callers pass it explicitly.
func NoOp() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
