//go:build !integration

package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		pretty   bool
		expected zerolog.Level
	}{
		{name: "debug level", level: "debug", expected: zerolog.DebugLevel},
		{name: "info level", level: "info", expected: zerolog.InfoLevel},
		{name: "warn level", level: "warn", expected: zerolog.WarnLevel},
		{name: "error level", level: "error", expected: zerolog.ErrorLevel},
		{name: "upper case", level: "DEBUG", expected: zerolog.DebugLevel},
		{name: "invalid level defaults to info", level: "invalid", expected: zerolog.InfoLevel},
		{name: "empty level defaults to info", level: "", expected: zerolog.InfoLevel},
		{name: "pretty output", level: "info", pretty: true, expected: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Init(tt.level, tt.pretty)
			assert.Equal(t, tt.expected, zerolog.GlobalLevel())
		})
	}
}

func TestForOrder(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("info", false, &buf)

	l := ForOrder("planner", "ORD-1")
	l.Info().Msg("opened")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "planner", entry["component"])
	assert.Equal(t, "ORD-1", entry["order_id"])
	assert.Equal(t, "pallet-service", entry["service"])
	assert.Equal(t, "opened", entry["message"])
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("warn", false, &buf)

	l := Logger()
	l.Info().Msg("filtered")
	assert.Empty(t, buf.String())

	l.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}
