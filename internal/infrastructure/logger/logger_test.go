package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func observed(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}

func fieldMap(entry observer.LoggedEntry) map[string]any {
	return entry.ContextMap()
}

func TestNew(t *testing.T) {
	t.Run("builds a JSON logger for production", func(t *testing.T) {
		cfg := ForEnvironment("production", "")
		assert.Equal(t, "json", cfg.Format)
		assert.Equal(t, "info", cfg.Level)

		l, err := New(cfg)
		require.NoError(t, err)
		assert.NotNil(t, l)
	})

	t.Run("writes to a file path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		l, err := New(&Config{Level: "debug", Format: "json", Output: path})
		require.NoError(t, err)
		l.Info("hello")
		require.NoError(t, l.Sync())
		assert.FileExists(t, path)
	})

	t.Run("reports an unopenable file", func(t *testing.T) {
		_, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "dir", "app.log")})
		assert.Error(t, err)
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("bogus"))
}

func TestFromContext(t *testing.T) {
	t.Run("returns a no-op logger when none is attached", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})

	t.Run("adds request and user ids", func(t *testing.T) {
		base, logs := observed(zapcore.InfoLevel)
		ctx := WithContext(context.Background(), base)
		ctx = WithRequestID(ctx, "req-1")
		ctx = WithUserID(ctx, "user-1")

		L(ctx).Info("saved invoice")

		require.Equal(t, 1, logs.Len())
		fields := fieldMap(logs.All()[0])
		assert.Equal(t, "req-1", fields["request_id"])
		assert.Equal(t, "user-1", fields["user_id"])
	})

	t.Run("falls back to the given logger", func(t *testing.T) {
		base, logs := observed(zapcore.InfoLevel)
		ctx := WithUserID(context.Background(), "user-2")

		WithFallback(ctx, base).Info("fallback")

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "user-2", fieldMap(logs.All()[0])["user_id"])
	})
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	base, logs := observed(zapcore.InfoLevel)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("request_id", "req-42") })
	r.Use(Recovery(base), GinMiddleware(base))
	r.GET("/ok", func(c *gin.Context) {
		GetGinLogger(c).Info("inside handler")
		c.Status(http.StatusOK)
	})
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	t.Run("logs successful requests at info", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok?q=INV", nil))
		assert.Equal(t, http.StatusOK, w.Code)

		entries := logs.TakeAll()
		require.Len(t, entries, 2)
		assert.Equal(t, "req-42", fieldMap(entries[0])["request_id"])
		assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
		assert.Equal(t, "q=INV", fieldMap(entries[1])["query"])
	})

	t.Run("logs client errors at warn", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

		entries := logs.TakeAll()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	})

	t.Run("recovers from panics", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)

		found := false
		for _, e := range logs.TakeAll() {
			if e.Message == "Panic recovered" {
				found = true
			}
		}
		assert.True(t, found)
	})
}

func TestGormLogger(t *testing.T) {
	base, logs := observed(zapcore.DebugLevel)
	gl := NewGormLogger(base, gormlogger.Warn, 50*time.Millisecond)
	ctx := WithUserID(context.Background(), "user-9")
	sql := func() (string, int64) { return "SELECT 1", 1 }

	t.Run("skips record not found", func(t *testing.T) {
		gl.Trace(ctx, time.Now(), sql, gormlogger.ErrRecordNotFound)
		assert.Equal(t, 0, logs.Len())
	})

	t.Run("logs errors with the user id", func(t *testing.T) {
		gl.Trace(ctx, time.Now(), sql, errors.New("connection reset"))
		entries := logs.TakeAll()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.Equal(t, "user-9", fieldMap(entries[0])["user_id"])
	})

	t.Run("flags slow queries", func(t *testing.T) {
		gl.Trace(ctx, time.Now().Add(-time.Second), sql, nil)
		entries := logs.TakeAll()
		require.Len(t, entries, 1)
		assert.Equal(t, "Slow SQL", entries[0].Message)
	})

	t.Run("silent mode logs nothing", func(t *testing.T) {
		gl.LogMode(gormlogger.Silent).Trace(ctx, time.Now(), sql, errors.New("x"))
		assert.Equal(t, 0, logs.Len())
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}
