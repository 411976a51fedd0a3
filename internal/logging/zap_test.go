package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(t *testing.T) (*ZapLogger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return NewZapLogger(zap.New(core)), logs
}

func TestZapLogger_Levels(t *testing.T) {
	log, logs := newObservedLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)

	tests := []struct {
		level zapcore.Level
		msg   string
		key   string
		val   int64
	}{
		{zapcore.DebugLevel, "dbg", "a", 1},
		{zapcore.InfoLevel, "inf", "b", 2},
		{zapcore.WarnLevel, "wrn", "c", 3},
		{zapcore.ErrorLevel, "err", "d", 4},
	}
	for i, tc := range tests {
		assert.Equal(t, tc.level, entries[i].Level)
		assert.Equal(t, tc.msg, entries[i].Message)
		assert.Equal(t, tc.val, entries[i].ContextMap()[tc.key])
	}
}

func TestZapLogger_With(t *testing.T) {
	log, logs := newObservedLogger(t)

	log.With("component", "tokens").Info(context.Background(), "hello", "k", "v")

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "tokens", fields["component"])
	assert.Equal(t, "v", fields["k"])
}

func TestZapLogger_RequestID(t *testing.T) {
	log, logs := newObservedLogger(t)

	ctx := WithRequestID(context.Background(), "req-42")
	log.Info(ctx, "handled")
	log.Info(context.TODO(), "no id")

	all := logs.All()
	assert.Equal(t, "req-42", all[0].ContextMap()["request_id"])
	assert.NotContains(t, all[1].ContextMap(), "request_id")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestNew_DoesNotPanic(t *testing.T) {
	for _, env := range []string{"dev", "prod"} {
		l := New(env, "debug", "stockroom")
		l.Info(context.Background(), "started")
	}
}
