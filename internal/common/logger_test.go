package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreDefaultLogger(t *testing.T) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "INFO", want: slog.LevelInfo},
		{input: "", want: slog.LevelInfo},
		{input: "warning", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetupLogger(t *testing.T) {
	restoreDefaultLogger(t)

	var buf bytes.Buffer
	require.NoError(t, SetupLogger(&buf, "info", "json"))

	LogDebug("hidden", Fields{"user_id": "u1"})
	LogError(errors.New("disk full"), "Failed to record score history", Fields{"user_id": "u1", "total": 640})
	Component("engine").Info("Scored user")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "disk full", entry["error"])
	assert.Equal(t, "u1", entry["user_id"])
	assert.InDelta(t, 640, entry["total"], 0.001)

	require.NoError(t, json.Unmarshal(lines[1], &entry))
	assert.Equal(t, "engine", entry["component"])

	assert.ErrorIs(t, SetupLogger(&buf, "info", "xml"), ErrInvalidConfig)
	assert.ErrorIs(t, SetupLogger(&buf, "chatty", "console"), ErrInvalidConfig)
}

func TestLogFields_KeyOrder(t *testing.T) {
	restoreDefaultLogger(t)

	var buf bytes.Buffer
	require.NoError(t, SetupLogger(&buf, "debug", "console"))

	LogInfo("Synced bank data", Fields{"transactions": 3, "accounts": 2, "user_id": "u1"})
	line := buf.String()

	a := strings.Index(line, "accounts=")
	tx := strings.Index(line, "transactions=")
	u := strings.Index(line, "user_id=")
	require.True(t, a >= 0 && tx >= 0 && u >= 0, line)
	assert.Less(t, a, tx)
	assert.Less(t, tx, u)
}
