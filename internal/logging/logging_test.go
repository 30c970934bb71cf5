package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	for _, test := range []struct {
		level string
		dev   bool
		want  zapcore.Level
	}{
		{"", false, zapcore.InfoLevel},
		{"", true, zapcore.InfoLevel},
		{"debug", false, zapcore.DebugLevel},
		{"WARN", true, zapcore.WarnLevel},
		{"error", false, zapcore.ErrorLevel},
	} {
		log, err := New(test.level, test.dev)
		require.NoError(t, err, test.level)
		require.Equal(t, test.want, log.Level(), test.level)
	}
	_, err := New("loud", false)
	require.ErrorContains(t, err, "invalid log level")
}
