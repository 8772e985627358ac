package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// HomeEnv overrides the base directory (~/.tsg).
const HomeEnv = "TSG_HOME"

// Config is the root configuration for tsg, stored in ~/.tsg/config.json.
// The file supports single-line // comments for documentation purposes.
type Config struct {
	Storage StorageConfig `json:"storage"`
	Export  ExportConfig  `json:"export"`
	Remote  RemoteConfig  `json:"remote"`
	Log     LogConfig     `json:"log"`
}

// StorageConfig selects the durable store backend.
type StorageConfig struct {
	// Backend is "file" (one JSON file per snapshot) or "sqlite".
	Backend string `json:"backend"`
	// Dir holds the data. Empty means <base>/data.
	Dir string `json:"dir"`
}

// ExportConfig controls generated CSV documents.
type ExportConfig struct {
	// Format is "v2" (ID,Customer,Company,Project,Date,Hours) or "v1".
	Format string `json:"format"`
	// Dir receives exported files. Empty means the current directory.
	Dir string `json:"dir"`
}

// RemoteConfig points at the optional customer service.
type RemoteConfig struct {
	Endpoint       string   `json:"endpoint"`
	TokenURL       string   `json:"token_url"`
	ClientID       string   `json:"client_id"`
	ClientSecret   string   `json:"client_secret"`
	Scopes         []string `json:"scopes"`
	TimeoutSeconds int      `json:"timeout_seconds"`
}

// Timeout returns the per-request timeout.
func (r RemoteConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// LogConfig sets the stderr log level.
type LogConfig struct {
	Level string `json:"level"`
}

const (
	DefaultBackend        = "file"
	DefaultFormat         = "v2"
	DefaultLogLevel       = "warn"
	DefaultTimeoutSeconds = 10
)

// defaultConfig returns a Config pre-filled with sensible defaults.
func defaultConfig() Config {
	return Config{
		Storage: StorageConfig{Backend: DefaultBackend},
		Export:  ExportConfig{Format: DefaultFormat},
		Remote:  RemoteConfig{TimeoutSeconds: DefaultTimeoutSeconds},
		Log:     LogConfig{Level: DefaultLogLevel},
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// tsg configuration - ~/.tsg/config.json
//
// All settings are optional; the built-in defaults shown below work offline
// out of the box.
{
  // ── Local storage ────────────────────────────────────────────────────────
  "storage": {
    // "file"   - one JSON file per snapshot (default)
    // "sqlite" - a single SQLite database
    "backend": "file",

    // Data directory. Leave empty for ~/.tsg/data.
    "dir": ""
  },

  // ── CSV export ───────────────────────────────────────────────────────────
  "export": {
    // "v2" - ID,Customer,Company,Project,Date,Hours (default)
    // "v1" - ID,Customer,Date,Hours (early single-entry exports)
    "format": "v2",

    // Target directory for exported files. Leave empty for the current directory.
    "dir": ""
  },

  // ── Customer service sync (optional) ─────────────────────────────────────
  "remote": {
    // URL receiving POSTed customers. Leave empty to disable tsg sync.
    "endpoint": "",

    // OAuth2 client credentials. Leave client_id empty for an open endpoint.
    "token_url": "",
    "client_id": "",
    "client_secret": "",
    "scopes": [],

    "timeout_seconds": 10
  },

  // ── Logging ──────────────────────────────────────────────────────────────
  "log": {
    // debug, info, warn or error
    "level": "warn"
  }
}
`

// BaseDir returns the root directory, $TSG_HOME or ~/.tsg.
func BaseDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".tsg"), nil
}

// DataDir returns the configured storage directory.
func (c Config) DataDir(base string) string {
	if c.Storage.Dir != "" {
		return c.Storage.Dir
	}
	return filepath.Join(base, "data")
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads <base>/config.json, creating it with annotated defaults on first
// run. Lines starting with // are treated as comments and stripped before
// JSON parsing.
func Load(base string) (Config, error) {
	path := filepath.Join(base, "config.json")

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return defaultConfig(), nil
	}
	if err != nil {
		return defaultConfig(), fmt.Errorf("reading config file %s: %w", path, err)
	}

	cleaned := stripLineComments(data)
	var cfg Config
	if err := sonic.Unmarshal(cleaned, &cfg); err != nil {
		return defaultConfig(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}

	// Fill zero-value fields with built-in defaults so callers always get
	// a usable Config even if the user only partially fills in the file.
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = DefaultBackend
	}
	if cfg.Export.Format == "" {
		cfg.Export.Format = DefaultFormat
	}
	if cfg.Remote.TimeoutSeconds <= 0 {
		cfg.Remote.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}

	return cfg, nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// LogLevel maps the configured level name to a slog.Level.
func (c Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
