package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestFromSettings(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		dev       bool
		wantLevel zapcore.Level
		wantErr   bool
	}{
		{name: "production default", level: "", wantLevel: zapcore.InfoLevel},
		{name: "development default", level: "", dev: true, wantLevel: zapcore.DebugLevel},
		{name: "explicit warn", level: "warn", wantLevel: zapcore.WarnLevel},
		{name: "development error", level: "error", dev: true, wantLevel: zapcore.ErrorLevel},
		{name: "bad level", level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := FromSettings(tt.level, tt.dev)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer logger.Sync()

			assert.True(t, logger.Core().Enabled(tt.wantLevel))
			if tt.wantLevel > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.wantLevel-1))
			}
		})
	}
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	assert.False(t, logger.Core().Enabled(zapcore.ErrorLevel))

	named := logger.Named("tracing")
	assert.NotNil(t, named.Logger)
}

func TestNewDefault(t *testing.T) {
	logger := NewDefault()
	require.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewDevelopment(t *testing.T) {
	logger := NewDevelopment()
	require.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}
