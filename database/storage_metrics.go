package database

import (
	"context"
	"doghouse/metrics"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// classifyStorageError buckets an ORM error into a metrics label.
// Not-found and cancellation are not storage faults and return "".
func classifyStorageError(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, context.Canceled) {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}

	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "sqlite_busy") || strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy timeout"):
		return "busy"
	case strings.Contains(msg, "sqlite_locked") || strings.Contains(msg, "database table is locked"):
		return "locked"
	case strings.Contains(msg, "timeout"):
		return "timeout"
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "failed to connect") || strings.Contains(msg, "bad connection"):
		return "connection"
	default:
		return "query"
	}
}

func recordStorageError(err error) {
	if kind := classifyStorageError(err); kind != "" {
		metrics.RecordStorageError(kind)
	}
}
