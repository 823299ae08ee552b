package verifylog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.level.String())
		})
	}
}

func TestStructuredLogger(t *testing.T) {
	t.Run("LogLevelFiltering", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf, WarnLevel)

		logger.Debug("debug message")
		assert.Empty(t, buf.String(), "debug message should be filtered")

		logger.Info("info message")
		assert.Empty(t, buf.String(), "info message should be filtered")

		logger.Warn("warn message")
		assert.NotEmpty(t, buf.String(), "warn message should be logged")
	})

	t.Run("StructuredFields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf, InfoLevel)

		logger.Info("sas commitment computed",
			String("flow_id", "txn-1"),
			Int("attempt", 1),
			Bool("we_started", true),
			Error(errors.New("boom")),
		)

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "txn-1", entry["flow_id"])
		assert.Equal(t, float64(1), entry["attempt"])
		assert.Equal(t, true, entry["we_started"])
		assert.Equal(t, "boom", entry["error"])
	})

	t.Run("WithFields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf, InfoLevel).WithFields(String("component", "sasstate"))
		logger.Info("transition")

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "sasstate", entry["component"])
	})

	t.Run("WithContext", func(t *testing.T) {
		var buf bytes.Buffer
		base := NewLogger(&buf, InfoLevel)
		ctx := WithFlowID(context.Background(), "txn-42")
		logger := base.WithContext(ctx)
		logger.Info("transition")

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "txn-42", entry["flow_id"])
	})
}
