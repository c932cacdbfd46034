package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "a", coalesce("", "a", "b"))
	assert.Equal(t, 3, coalesce(0, 0, 3))
	assert.Equal(t, "", coalesce[string]())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger("debug")
	assert.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}
