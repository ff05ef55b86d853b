package logging_test

import (
	"testing"

	"crudrouter/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	testCases := map[string]struct {
		level     string
		format    string
		wantLevel zapcore.Level
		wantErr   bool
	}{
		"json info":      {level: "info", format: logging.FormatJSON, wantLevel: zapcore.InfoLevel},
		"console debug":  {level: "debug", format: logging.FormatConsole, wantLevel: zapcore.DebugLevel},
		"default format": {level: "warn", format: "", wantLevel: zapcore.WarnLevel},
		"bad level":      {level: "chatty", format: logging.FormatJSON, wantErr: true},
		"bad format":     {level: "info", format: "xml", wantErr: true},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			logger, err := logging.New(tc.level, tc.format)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tc.wantLevel))
			assert.False(t, logger.Core().Enabled(tc.wantLevel-1))
		})
	}
}
