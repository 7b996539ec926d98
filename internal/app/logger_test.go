//go:build !integration

package app

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/guttosm/pallet-service/config"
)

func TestInitializeLogger(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	tests := []struct {
		name     string
		cfg      config.LogConfig
		expected zerolog.Level
	}{
		{
			name:     "initializes with default log level",
			cfg:      config.LogConfig{},
			expected: zerolog.InfoLevel,
		},
		{
			name:     "initializes with custom log level",
			cfg:      config.LogConfig{Level: "debug"},
			expected: zerolog.DebugLevel,
		},
		{
			name:     "initializes with pretty output enabled",
			cfg:      config.LogConfig{Level: "warn", Pretty: true},
			expected: zerolog.WarnLevel,
		},
		{
			name:     "initializes with error log level",
			cfg:      config.LogConfig{Level: "error"},
			expected: zerolog.ErrorLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				InitializeLogger(tt.cfg)
			})
			assert.Equal(t, tt.expected, zerolog.GlobalLevel())
		})
	}
}
