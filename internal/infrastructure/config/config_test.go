package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
canvas:
  prefixes: [uni, college]
  timeout: 10s
display:
  sort_mode: course
  timezone: Asia/Tokyo
  widget_limit: 3
storage:
  driver: memory
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"uni", "college"}, cfg.Canvas.Prefixes)
	assert.Equal(t, 10*time.Second, cfg.Canvas.Timeout)
	assert.Equal(t, "https://{prefix}.instructure.com", cfg.Canvas.Endpoint)
	assert.Equal(t, "course", cfg.Display.SortMode)
	assert.Equal(t, 3, cfg.Display.WidgetLimit)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "group.acrylic", cfg.Storage.Namespace)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.JWT.UsesDefaultJWTSecret())

	loc, err := cfg.Display.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", loc.String())
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "storage:\n  driver: memory\n")
	t.Setenv("CANVAS_PREFIXES", "a, b,,c ")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, cfg.Canvas.Prefixes)
	assert.False(t, cfg.JWT.UsesDefaultJWTSecret())
}

func TestLoadFile_SortModeAnyCase(t *testing.T) {
	path := writeConfig(t, "display:\n  sort_mode: Course\n")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "course", cfg.Display.SortMode)
}

func TestLoadFile_Environment(t *testing.T) {
	path := writeConfig(t, "app:\n  environment: production\n")

	_, err := LoadFile(path)
	assert.Error(t, err, "production needs a real JWT secret")

	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.False(t, cfg.App.IsDevelopment())

	cfg, err = LoadFile(writeConfig(t, ""))
	require.NoError(t, err)
	assert.True(t, cfg.App.IsDevelopment(), "development is the default")
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "unknown sort mode", body: "display:\n  sort_mode: alphabetical\n"},
		{name: "prefix moves host", body: "canvas:\n  prefixes: [\"evil.example#\"]\n"},
		{name: "dotted prefix from env", body: "", env: map[string]string{"CANVAS_PREFIXES": "uni,evil.example"}},
		{name: "prefix with slash", body: "canvas:\n  prefixes: [a/b]\n"},
		{name: "unknown driver", body: "storage:\n  driver: sqlite\n"},
		{name: "endpoint without prefix", body: "canvas:\n  endpoint: https://canvas.example.edu\n"},
		{name: "negative rate", body: "canvas:\n  requests_per_second: -1\n"},
		{name: "bad port from env", body: "", env: map[string]string{"SERVER_PORT": "70000"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadFile(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSplitPrefixes(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "nil", in: nil, want: nil},
		{name: "list", in: []string{"uni", "college"}, want: []string{"uni", "college"}},
		{name: "comma string", in: []string{" uni , college "}, want: []string{"uni", "college"}},
		{name: "blanks dropped", in: []string{"", " , "}, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitPrefixes(tt.in))
		})
	}
}

func TestDisplayLocation(t *testing.T) {
	local, err := (&DisplayConfig{Timezone: ""}).Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, local)

	_, err = (&DisplayConfig{Timezone: "Mars/Olympus"}).Location()
	assert.Error(t, err)
}
