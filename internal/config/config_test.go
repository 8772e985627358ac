package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWritesTemplateOnFirstRun(t *testing.T) {
	base := t.TempDir()
	cfg, err := Load(base)
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)

	_, err = os.Stat(filepath.Join(base, "config.json"))
	require.NoError(t, err)

	// The written template must parse back to the defaults.
	again, err := Load(base)
	require.NoError(t, err)
	assert.Equal(t, "file", again.Storage.Backend)
	assert.Equal(t, "v2", again.Export.Format)
	assert.Equal(t, 10, again.Remote.TimeoutSeconds)
	assert.Equal(t, "warn", again.Log.Level)
}

func TestTemplateIsValidJSON(t *testing.T) {
	var cfg Config
	require.NoError(t, sonic.Unmarshal(stripLineComments([]byte(configTemplate)), &cfg))
}

func TestLoadPartialFillsDefaults(t *testing.T) {
	base := t.TempDir()
	data := "// comment\n{\n  // storage\n  \"storage\": {\"backend\": \"sqlite\"},\n  \"remote\": {\"endpoint\": \"https://crm.test/customers\"}\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(base, "config.json"), []byte(data), 0o600))

	cfg, err := Load(base)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "https://crm.test/customers", cfg.Remote.Endpoint)
	assert.Equal(t, "v2", cfg.Export.Format)
	assert.Equal(t, DefaultTimeoutSeconds, cfg.Remote.TimeoutSeconds)
	assert.Equal(t, filepath.Join(base, "data"), cfg.DataDir(base))
}

func TestLoadMalformed(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "config.json"), []byte("{bad"), 0o600))
	cfg, err := Load(base)
	assert.Error(t, err)
	assert.Equal(t, defaultConfig(), cfg)
}

func TestBaseDirEnv(t *testing.T) {
	t.Setenv(HomeEnv, "/tmp/tsg-test")
	dir, err := BaseDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/tsg-test", dir)
}

func TestStripLineComments(t *testing.T) {
	got := string(stripLineComments([]byte("  // a\n{\"x\": 1}\n\t// b")))
	assert.Equal(t, "{\"x\": 1}\n", got)
}

func TestLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelWarn,
	}
	for in, want := range tests {
		assert.Equal(t, want, Config{Log: LogConfig{Level: in}}.LogLevel(), in)
	}
}
