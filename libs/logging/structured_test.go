package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_WritesDataQualityEvents(t *testing.T) {
	out := filepath.Join(t.TempDir(), "run.log")

	logger, err := NewLogger(Config{
		Level:      "info",
		Format:     "json",
		OutputPath: out,
		Fields:     map[string]string{"service": "routegen"},
	})
	require.NoError(t, err)

	logger.WithField("run_id", "r-1").LogDataQualityEvent("W-1", "No resources found for WIDGET - ASSY", "warning")
	_ = logger.Sync()

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "routegen", entry["service"])
	assert.Equal(t, "r-1", entry["run_id"])
	assert.Equal(t, "W-1", entry["parent_key"])
	assert.Equal(t, "data_quality", entry["type"])
}

func TestNewLogger_InvalidLevelFallsBackToInfo(t *testing.T) {
	out := filepath.Join(t.TempDir(), "run.log")

	logger, err := NewLogger(Config{Level: "chatty", OutputPath: out})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("shown")
	_ = logger.Sync()

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestLogRunEvent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := &Logger{Logger: zap.New(core)}
	logger := base.WithField("run_id", "r-1")

	logger.LogRunEvent("completed", zap.Int("items", 3))
	base.LogPerformanceMetric("run_duration", 12, "ms")

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, map[string]interface{}{"run_id": "r-1", "event": "completed", "items": int64(3)}, entries[0].ContextMap())
	assert.Equal(t, map[string]interface{}{"metric": "run_duration", "value": int64(12), "unit": "ms", "type": "performance"}, entries[1].ContextMap())
}
