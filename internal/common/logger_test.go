package common

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "", want: slog.LevelInfo},
		{input: "INFO", want: slog.LevelInfo},
		{input: "warn", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "verbose", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, level)
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, slog.LevelInfo, "json")
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("Selected analysis provider", "provider", "fallback")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Selected analysis provider", entry["msg"])
	assert.Equal(t, "fallback", entry["provider"])
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	_, err := NewLogger(&bytes.Buffer{}, slog.LevelInfo, "xml")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSetupLogger(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	require.NoError(t, SetupLogger(&buf, "warn", "console"))

	slog.Info("quiet")
	slog.Warn("loud")
	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")

	assert.Error(t, SetupLogger(&buf, "loud", "console"))
}

func TestUserError(t *testing.T) {
	err := NewUserError("no report with id 42", ErrNotFound)
	assert.Equal(t, "no report with id 42: not found", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, "plain", NewUserError("plain", nil).Error())
}
