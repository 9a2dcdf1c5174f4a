package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(t *testing.T, level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	t.Helper()
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

func TestGormLoggerDefaults(t *testing.T) {
	gormLog, _ := newObservedGormLogger(t, gormlogger.Info)

	assert.Equal(t, gormlogger.Info, gormLog.logLevel)
	assert.Equal(t, 200*time.Millisecond, gormLog.slowThreshold)
	assert.True(t, gormLog.ignoreRecordNotFoundError)

	var _ gormlogger.Interface = gormLog
}

func TestGormLoggerOptionsOverrideDefaults(t *testing.T) {
	gormLog, _ := newObservedGormLogger(t, gormlogger.Info,
		WithSlowThreshold(50*time.Millisecond),
		WithIgnoreRecordNotFoundError(false),
	)

	assert.Equal(t, 50*time.Millisecond, gormLog.slowThreshold)
	assert.False(t, gormLog.ignoreRecordNotFoundError)
}

func TestGormLoggerLogModeCopies(t *testing.T) {
	gormLog, _ := newObservedGormLogger(t, gormlogger.Info)

	quieter, ok := gormLog.LogMode(gormlogger.Error).(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Error, quieter.logLevel)
	assert.Equal(t, gormlogger.Info, gormLog.logLevel)
}

func TestGormLoggerLevelGates(t *testing.T) {
	gormLog, recorded := newObservedGormLogger(t, gormlogger.Warn)

	gormLog.Info(context.Background(), "running %d migrations", 3)
	assert.Empty(t, recorded.All(), "info must be suppressed at warn level")

	gormLog.Warn(context.Background(), "cash balance row version drifted to %d", 7)
	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
	assert.Contains(t, logs[0].Message, "version drifted to 7")

	gormLog.Error(context.Background(), "tenant lookup failed")
	logs = recorded.All()
	require.Len(t, logs, 2)
	assert.Equal(t, zapcore.ErrorLevel, logs[1].Level)
}

func TestGormLoggerTrace(t *testing.T) {
	queryLedger := func() (string, int64) {
		return "SELECT * FROM sales_invoices WHERE tenant_id = ?", 12
	}

	t.Run("query error", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(t, gormlogger.Error)

		gormLog.Trace(context.Background(), time.Now(), queryLedger, errors.New("connection reset"))

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "SQL Error", logs[0].Message)
		assert.Equal(t, zapcore.ErrorLevel, logs[0].Level)
	})

	t.Run("record not found stays quiet", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(t, gormlogger.Error)

		gormLog.Trace(context.Background(), time.Now(), queryLedger, gormlogger.ErrRecordNotFound)

		assert.Empty(t, recorded.All())
	})

	t.Run("record not found surfaces when not ignored", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(t, gormlogger.Error,
			WithIgnoreRecordNotFoundError(false),
		)

		gormLog.Trace(context.Background(), time.Now(), queryLedger, gormlogger.ErrRecordNotFound)

		require.Len(t, recorded.All(), 1)
	})

	t.Run("slow query warns", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(t, gormlogger.Warn,
			WithSlowThreshold(time.Millisecond),
		)

		gormLog.Trace(context.Background(), time.Now().Add(-time.Second), queryLedger, nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Contains(t, logs[0].Message, "SLOW SQL")
	})

	t.Run("normal query is debug", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(t, gormlogger.Info)

		gormLog.Trace(context.Background(), time.Now(), queryLedger, nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "SQL Query", logs[0].Message)
		assert.Equal(t, zapcore.DebugLevel, logs[0].Level)
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(t, gormlogger.Silent)

		gormLog.Trace(context.Background(), time.Now(), queryLedger, nil)

		assert.Empty(t, recorded.All())
	})
}

func TestGormLoggerTraceCarriesRequestScope(t *testing.T) {
	gormLog, recorded := newObservedGormLogger(t, gormlogger.Info)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-456")
	ctx = context.WithValue(ctx, TenantIDKey, "11111111-2222-3333-4444-555555555555")

	gormLog.Trace(ctx, time.Now(), func() (string, int64) {
		return "UPDATE cash_balances SET version = version + 1 WHERE tenant_id = ?", 1
	}, nil)

	logs := recorded.All()
	require.Len(t, logs, 1)

	fields := map[string]string{}
	for _, f := range logs[0].Context {
		fields[f.Key] = f.String
	}
	assert.Equal(t, "req-456", fields["request_id"])
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", fields["tenant_id"])
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"", gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapGormLogLevel(tt.level))
		})
	}
}
