package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Logger{SugaredLogger: zap.New(core).Sugar(), serviceName: "test"}, logs
}

func TestWithContextAddsRequestID(t *testing.T) {
	l, logs := observed()

	ctx := ContextWithRequestID(context.Background(), "req-1")
	l.WithContext(ctx).Info("hello")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
}

func TestWithContextWithoutRequestID(t *testing.T) {
	l, _ := observed()
	require.Same(t, l, l.WithContext(context.Background()))
}

func TestAuditMarksEntries(t *testing.T) {
	l, logs := observed()

	l.Audit("entry changed", "entry_id", uint(5))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, true, fields["audit"])
	require.EqualValues(t, 5, fields["entry_id"])
}
