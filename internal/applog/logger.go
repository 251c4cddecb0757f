// Package applog wires up the structured logger shared by every SwiftSweep
// component. Components accept a *zap.SugaredLogger constructor argument the
// way the teacher's collectors accept config structs — never a package
// global.
package applog

import (
	"github.com/go-logr/zapr"
	"github.com/go-logr/logr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production-profile zap logger. verbose raises the level to
// debug; otherwise info-and-above is logged.
func New(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		// Config is static and known-good; fall back to a no-op logger
		// rather than panicking on a logging setup failure.
		return zap.NewNop()
	}
	return logger
}

// Sugar returns the SugaredLogger form most SwiftSweep components take.
func Sugar(verbose bool) *zap.SugaredLogger {
	return New(verbose).Sugar()
}

// LogR adapts a zap logger to the logr.Logger interface, for components that
// want a vendor-neutral logging seam. No component in this module calls it;
// the helper client takes no logger.
func LogR(l *zap.Logger) logr.Logger {
	return zapr.NewLogger(l)
}

// Nop returns a logger that discards everything, for tests.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
