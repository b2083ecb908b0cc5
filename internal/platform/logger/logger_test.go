package logger

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/capture-worker/internal/config"
)

func TestSetupLevels(t *testing.T) {
	tests := []struct {
		name         string
		level        string
		debugEnabled bool
	}{
		{name: "debug", level: "debug", debugEnabled: true},
		{name: "info", level: "info", debugEnabled: false},
		{name: "warn", level: "warn", debugEnabled: false},
		{name: "uppercase accepted", level: "ERROR", debugEnabled: false},
		{name: "invalid falls back to info", level: "chatty", debugEnabled: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := Setup(config.WorkerConfig{LogLevel: tt.level})
			require.NoError(t, err)
			require.NotNil(t, log)
			assert.Equal(t, tt.debugEnabled, log.Enabled(context.Background(), slog.LevelDebug))
		})
	}
}

func TestFromContext(t *testing.T) {
	base := slog.New(slog.NewTextHandler(os.Stdout, nil))

	t.Run("returns attached logger", func(t *testing.T) {
		ctx := WithLogger(context.Background(), base)
		assert.Same(t, base, FromContext(ctx))
	})

	t.Run("falls back to default", func(t *testing.T) {
		assert.Same(t, slog.Default(), FromContext(context.Background()))
	})

	t.Run("explicit fallback", func(t *testing.T) {
		assert.Same(t, base, FromContextOrDefault(context.Background(), base))
	})
}
