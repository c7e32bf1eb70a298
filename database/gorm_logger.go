package database

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"gorm.io/gorm/logger"
)

var sqliteBusyErrors uint64
var sqliteLockedErrors uint64

// contentionTrackingLogger wraps the configured gorm logger and counts
// SQLite busy/locked failures so the health endpoint can surface
// persistence contention without parsing log files.
type contentionTrackingLogger struct {
	inner logger.Interface
}

func (l contentionTrackingLogger) LogMode(level logger.LogLevel) logger.Interface {
	return contentionTrackingLogger{inner: l.inner.LogMode(level)}
}

func (l contentionTrackingLogger) Info(ctx context.Context, s string, args ...interface{}) {
	l.inner.Info(ctx, s, args...)
}

func (l contentionTrackingLogger) Warn(ctx context.Context, s string, args ...interface{}) {
	l.inner.Warn(ctx, s, args...)
}

func (l contentionTrackingLogger) Error(ctx context.Context, s string, args ...interface{}) {
	l.inner.Error(ctx, s, args...)
}

func (l contentionTrackingLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if err != nil {
		recordContentionError(err)
	}
	l.inner.Trace(ctx, begin, fc, err)
}

func recordContentionError(err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "sqlite_busy") || strings.Contains(msg, "database is locked") {
		atomic.AddUint64(&sqliteBusyErrors, 1)
	}
	if strings.Contains(msg, "sqlite_locked") || strings.Contains(msg, "database table is locked") {
		atomic.AddUint64(&sqliteLockedErrors, 1)
	}
}

func SQLiteBusyErrorsTotal() uint64 {
	return atomic.LoadUint64(&sqliteBusyErrors)
}

func SQLiteLockedErrorsTotal() uint64 {
	return atomic.LoadUint64(&sqliteLockedErrors)
}

// SQLiteUp reports whether the database answers a ping within the
// context deadline (200ms default when none is set).
func SQLiteUp(ctx context.Context) bool {
	if DB == nil {
		return false
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return false
	}

	if deadline, ok := ctx.Deadline(); !ok || time.Until(deadline) <= 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 200*time.Millisecond)
		defer cancel()
	}

	return sqlDB.PingContext(ctx) == nil
}
