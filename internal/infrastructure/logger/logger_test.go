package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/acrylic/tracker/internal/infrastructure/config"
)

func newObserved() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func TestLogCanvasRequest(t *testing.T) {
	l, logs := newObserved()
	canvasLog := l.WithComponent("canvas").WithPrefix("uni")

	canvasLog.LogCanvasRequest("todo", 200, 12.5, nil)
	canvasLog.LogCanvasRequest("todo", 401, 3, errors.New("not authorized"))

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)

	ok := entries[0]
	assert.Equal(t, zapcore.DebugLevel, ok.Level)
	assert.Equal(t, "uni", ok.ContextMap()["prefix"])
	assert.Equal(t, "canvas", ok.ContextMap()["component"])
	assert.EqualValues(t, 200, ok.ContextMap()["status_code"])

	failed := entries[1]
	assert.Equal(t, zapcore.WarnLevel, failed.Level)
	assert.Equal(t, "uni", failed.ContextMap()["prefix"])
	assert.Equal(t, "not authorized", failed.ContextMap()["error"])
}

func TestWithError(t *testing.T) {
	l, logs := newObserved()

	l.WithError(errors.New("boom")).Warnw("Avatar download failed", "avatar_url", "https://x/a.png")

	entries := logs.FilterMessage("Avatar download failed").AllUntimed()
	require.Len(t, entries, 1)
	assert.Equal(t, "boom", entries[0].ContextMap()["error"])
	assert.Equal(t, "https://x/a.png", entries[0].ContextMap()["avatar_url"])
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LoggerConfig
		wantErr bool
	}{
		{name: "console", cfg: config.LoggerConfig{Level: "info", Format: "console"}},
		{name: "json", cfg: config.LoggerConfig{Level: "debug", Format: "json", Output: "stdout"}},
		{name: "bad level", cfg: config.LoggerConfig{Level: "loud"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l.SugaredLogger)
		})
	}
}
