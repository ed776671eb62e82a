package database

import (
	"context"
	"time"

	"gorm.io/gorm/logger"
)

// metricsLogger sits between gorm and the zerolog-backed logger. Every failed
// statement is classified and counted in doghouse_storage_errors_total before
// it is logged.
type metricsLogger struct {
	inner logger.Interface
}

// LogMode keeps the wrapper when gorm switches levels for a session.
func (l metricsLogger) LogMode(level logger.LogLevel) logger.Interface {
	return metricsLogger{inner: l.inner.LogMode(level)}
}

func (l metricsLogger) Info(ctx context.Context, s string, args ...interface{}) {
	l.inner.Info(ctx, s, args...)
}

func (l metricsLogger) Warn(ctx context.Context, s string, args ...interface{}) {
	l.inner.Warn(ctx, s, args...)
}

func (l metricsLogger) Error(ctx context.Context, s string, args ...interface{}) {
	l.inner.Error(ctx, s, args...)
}

// Trace runs once per statement, so it is the one hook that sees every error.
func (l metricsLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if err != nil {
		recordStorageError(err)
	}
	l.inner.Trace(ctx, begin, fc, err)
}
