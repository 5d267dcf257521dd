package ref

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
	checks     atomic.Bool
)

// Logger returns the ref package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the ref package's logger.
// This must be called before any reference operations.
func SetLogger(l *zap.Logger) {
	logger = l
}

// SetChecks makes reference misuse panic instead of being logged.
func SetChecks(on bool) {
	checks.Store(on)
}

// Checks reports whether reference misuse panics.
func Checks() bool {
	return checks.Load()
}

func misuse(err error) {
	if checks.Load() {
		panic(err)
	}
	Logger().Warn("reference misuse", zap.Error(err))
}
