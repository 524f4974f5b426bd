package logger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestNew(t *testing.T) {
	t.Run("creates console logger", func(t *testing.T) {
		l, err := New(DefaultConfig())
		require.NoError(t, err)
		assert.NotNil(t, l)
	})

	t.Run("creates json logger", func(t *testing.T) {
		l, err := New(ProductionConfig())
		require.NoError(t, err)
		assert.NotNil(t, l)
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARNING"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("unknown"))
}

func TestContextHelpers(t *testing.T) {
	base := zap.NewNop()
	ctx := context.Background()

	t.Run("logger round trip", func(t *testing.T) {
		ctx := WithContext(ctx, base)
		assert.Same(t, base, FromContext(ctx))
	})

	t.Run("missing logger yields nop", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})

	t.Run("request ID", func(t *testing.T) {
		ctx, _ := WithRequestID(ctx, base, "req-123")
		assert.Equal(t, "req-123", GetRequestID(ctx))
	})

	t.Run("tenant ID", func(t *testing.T) {
		ctx, _ := WithTenantID(ctx, base, "tenant-1")
		assert.Equal(t, "tenant-1", GetTenantID(ctx))
	})

	t.Run("sync scope", func(t *testing.T) {
		ctx, _ := WithSyncScope(ctx, base, "conn-9", "TRENDYOL")
		assert.Equal(t, "conn-9", GetConnectionID(ctx))
		assert.Equal(t, "TRENDYOL", GetPlatform(ctx))
	})
}

func TestContextLoggerEnrichment(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := context.Background()
	ctx, _ = WithRequestID(ctx, base, "req-42")
	ctx, _ = WithSyncScope(ctx, FromContext(ctx), "conn-7", "N11")

	L(ctx).Info("pull complete", zap.Int("orders", 3))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "pull complete", entry.Message)

	fields := entry.ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "conn-7", fields["connection_id"])
	assert.Equal(t, "N11", fields["platform"])
	assert.Equal(t, int64(3), fields["orders"])
}

func TestGormLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info)

	t.Run("logs queries at debug", func(t *testing.T) {
		gl.Trace(context.Background(), time.Now(), func() (string, int64) {
			return "SELECT 1", 1
		}, nil)
		require.GreaterOrEqual(t, logs.Len(), 1)
		assert.Equal(t, "SQL Query", logs.All()[logs.Len()-1].Message)
	})

	t.Run("ignores record not found", func(t *testing.T) {
		before := logs.Len()
		gl.Trace(context.Background(), time.Now(), func() (string, int64) {
			return "SELECT 1", 0
		}, gormlogger.ErrRecordNotFound)
		assert.Equal(t, before, logs.Len())
	})

	t.Run("LogMode returns copy", func(t *testing.T) {
		silent := gl.LogMode(gormlogger.Silent)
		assert.NotSame(t, gl, silent)
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("anything"))
}
