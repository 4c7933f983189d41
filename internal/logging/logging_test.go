package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNewDefaultsToWarnLevel(t *testing.T) {
	log := New(false)
	assert.False(t, log.Desugar().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Desugar().Core().Enabled(zapcore.WarnLevel))
}

func TestNewVerboseLowersToDebug(t *testing.T) {
	log := New(true)
	assert.True(t, log.Desugar().Core().Enabled(zapcore.DebugLevel))
}

func TestGoscanLogEnvOverridesLevel(t *testing.T) {
	t.Setenv("GOSCAN_LOG", "error")
	log := New(false)
	assert.False(t, log.Desugar().Core().Enabled(zapcore.WarnLevel))
	assert.True(t, log.Desugar().Core().Enabled(zapcore.ErrorLevel))
}
