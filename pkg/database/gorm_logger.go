package database

import (
	"context"
	"errors"
	"time"

	"github.com/gatherly/gatherly/pkg/log"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger routes gorm logs through the global zap logger.
type GormLogger struct {
	conf     gormlogger.Config
	logLevel gormlogger.LogLevel
}

func NewGormLogger(conf gormlogger.Config, level gormlogger.LogLevel) gormlogger.Interface {
	return &GormLogger{conf: conf, logLevel: level}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	newLogger := *l
	newLogger.logLevel = level
	return &newLogger
}

func (l *GormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= gormlogger.Info {
		log.Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= gormlogger.Warn {
		log.Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= gormlogger.Error {
		log.Errorf(msg, data...)
	}
}

func (l *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.logLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && l.logLevel >= gormlogger.Error:
		if l.conf.IgnoreRecordNotFoundError && errors.Is(err, gorm.ErrRecordNotFound) {
			return
		}
		sql, rows := fc()
		log.Errorw("sql error", "error", err, "elapsed", elapsed, "rows", rows, "sql", sql)
	case l.conf.SlowThreshold > 0 && elapsed > l.conf.SlowThreshold && l.logLevel >= gormlogger.Warn:
		sql, rows := fc()
		log.Warnw("slow sql", "threshold", l.conf.SlowThreshold, "elapsed", elapsed, "rows", rows, "sql", sql)
	case l.logLevel >= gormlogger.Info:
		sql, rows := fc()
		log.Debugw("sql", "elapsed", elapsed, "rows", rows, "sql", sql)
	}
}
