package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&Config{Level: LevelWarn, Output: &buf})

	l.Debug("should not appear")
	l.Info("should not appear either")
	require.Empty(t, buf.String())

	l.Warn("table shard nearing high water mark")
	require.Contains(t, buf.String(), "[WARN]")
	require.Contains(t, buf.String(), "table shard nearing high water mark")
}

func TestLoggerFormatsKeyValueArgs(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&Config{Level: LevelDebug, Output: &buf})

	l.Error("stall timed out", "request_id", 42, "kind", "EXEC")
	out := buf.String()
	require.Contains(t, out, "[ERROR]")
	require.Contains(t, out, "request_id=42")
	require.Contains(t, out, "kind=EXEC")
}

func TestLoggerPrintfDelegatesToInfof(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&Config{Level: LevelInfo, Output: &buf})
	l.Printf("engine started with %d shards", 16)
	require.True(t, strings.Contains(buf.String(), "[INFO] engine started with 16 shards"))
}

func TestDefaultLoggerSetAndGet(t *testing.T) {
	var buf bytes.Buffer
	custom := NewLogger(&Config{Level: LevelDebug, Output: &buf})
	SetDefault(custom)
	defer SetDefault(NewLogger(nil))

	Info("configure applied")
	require.Contains(t, buf.String(), "configure applied")
}
