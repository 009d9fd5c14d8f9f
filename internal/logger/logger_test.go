package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger_Levels(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		l, err := NewLogger(lvl)
		require.NoError(t, err, lvl)
		require.NotNil(t, l)
	}
}

func TestNewLogger_BadLevel(t *testing.T) {
	_, err := NewLogger("loud")
	assert.Error(t, err)
}

func TestLogger_ZeroValueIsSafe(t *testing.T) {
	var l Logger
	assert.NotPanics(t, func() {
		l.Info("hello", zap.String("k", "v"))
		l.Named("child").With(zap.Int("n", 1)).Error("boom")
	})
}
