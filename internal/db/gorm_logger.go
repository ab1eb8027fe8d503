package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowThreshold = 200 * time.Millisecond

// slogGormLogger forwards gorm's logging to slog so queries end up in the
// same stream as the rest of the application.
type slogGormLogger struct {
	logger *slog.Logger
	level  gormlogger.LogLevel
}

func newGormLogger(logger *slog.Logger) gormlogger.Interface {
	return &slogGormLogger{logger: logger, level: gormlogger.Warn}
}

func (l *slogGormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *slogGormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Info {
		l.logger.Log(ctx, slog.LevelInfo, fmt.Sprintf(msg, data...))
	}
}

func (l *slogGormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.logger.Log(ctx, slog.LevelWarn, fmt.Sprintf(msg, data...))
	}
}

func (l *slogGormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Error {
		l.logger.Log(ctx, slog.LevelError, fmt.Sprintf(msg, data...))
	}
}

func (l *slogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level == gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= gormlogger.Error:
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return
		}
		sql, rows := fc()
		l.logger.Log(ctx, slog.LevelError, "gorm query error", "elapsed", elapsed, "rows", rows, "sql", sql, "error", err)
	case elapsed > slowThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.logger.Log(ctx, slog.LevelWarn, "gorm slow query", "elapsed", elapsed, "rows", rows, "sql", sql)
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.logger.Log(ctx, slog.LevelInfo, "gorm query", "elapsed", elapsed, "rows", rows, "sql", sql)
	}
}
