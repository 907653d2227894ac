package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/Tiliavir/trackmytime/internal/aggregate"
	"github.com/Tiliavir/trackmytime/internal/storage"
)

// Environment variables that override the config file.
const (
	EnvHome    = "TMT_HOME"
	EnvBackend = "TMT_BACKEND"
	EnvWindow  = "TMT_WINDOW"
)

// Config is the root configuration for tmt, stored in ~/.tmt/config.json.
// The file supports single-line // comments for documentation purposes.
type Config struct {
	Storage  StorageConfig  `json:"storage"`
	List     ListConfig     `json:"list"`
	Chart    ChartConfig    `json:"chart"`
	Activity ActivityConfig `json:"activity"`
	Outlook  OutlookConfig  `json:"outlook"`
}

// StorageConfig selects the repository backend.
type StorageConfig struct {
	// Backend is "json" or "sqlite".
	Backend string `json:"backend"`
	// DataDir holds entries, catalogs and the indicator file. Empty = config directory.
	DataDir string `json:"data_dir"`
}

type ListConfig struct {
	NewestFirst bool `json:"newest_first"`
}

type ChartConfig struct {
	// DefaultWindow is one of week, month, 3months, all.
	DefaultWindow string `json:"default_window"`
}

type ActivityConfig struct {
	// Indicator enables the running.json indicator file.
	Indicator bool `json:"indicator"`
}

// OutlookConfig holds Microsoft Graph / Outlook calendar sync settings.
type OutlookConfig struct {
	// TenantID is the Azure AD tenant. Use "common" for personal/multi-tenant accounts.
	TenantID string `json:"tenant_id"`
	// ClientID is the Azure app (client) ID for the OAuth2 device code flow.
	ClientID string `json:"client_id"`
	// DefaultProject is the project name assigned to imported Outlook events.
	DefaultProject string `json:"default_project"`
	// Timezone is the IANA timezone for event times (e.g. "Europe/Berlin"). Empty = UTC.
	Timezone string `json:"timezone"`
}

const (
	// DefaultTenantID is the Microsoft "common" tenant (supports personal and
	// multi-tenant organisational accounts without additional registration).
	DefaultTenantID = "common"
	// DefaultClientID is the well-known public Azure CLI app ID.
	// It supports device code flow without a client secret and requires no
	// app registration.
	DefaultClientID = "04b07795-8542-4c4a-95af-30b2c573d5ab"
	// DefaultProject is the project name used for imported events.
	DefaultProject = "Meetings"
	DefaultWindow  = "week"
)

// Default returns a Config pre-filled with the built-in defaults.
func Default() Config {
	return Config{
		Storage:  StorageConfig{Backend: storage.BackendJSON},
		List:     ListConfig{NewestFirst: true},
		Chart:    ChartConfig{DefaultWindow: DefaultWindow},
		Activity: ActivityConfig{Indicator: true},
		Outlook: OutlookConfig{
			TenantID:       DefaultTenantID,
			ClientID:       DefaultClientID,
			DefaultProject: DefaultProject,
		},
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing.
const configTemplate = `// tmt configuration – ~/.tmt/config.json
//
// All settings are optional; missing keys fall back to the defaults shown
// below. TMT_HOME, TMT_BACKEND and TMT_WINDOW (also read from a .env file in
// the working directory) override this file.
{
  // ── Storage ──────────────────────────────────────────────────────────────
  "storage": {
    // "json"   – one human-readable file per day under entries/ (default)
    // "sqlite" – a single tmt.db database
    "backend": "json",

    // Directory holding your data. Empty = the directory of this file.
    "data_dir": ""
  },

  // Show the newest entries first in tmt list (tmt list --oldest flips it).
  "list": {
    "newest_first": true
  },

  // Default window for tmt chart and tmt report: week, month, 3months, all.
  "chart": {
    "default_window": "week"
  },

  // Keep running.json up to date for status bars (tmux, waybar, ...).
  "activity": {
    "indicator": true
  },

  // ── Microsoft Graph / Outlook calendar sync ──────────────────────────────
  "outlook": {
    // Azure AD tenant ID.
    // • "common"  – personal Microsoft accounts and any organisation (default)
    // • Your organisation's tenant GUID
    "tenant_id": "common",

    // Azure application (client) ID used for the OAuth2 device code flow.
    // The built-in value is the public Azure CLI app – no app registration needed.
    "client_id": "04b07795-8542-4c4a-95af-30b2c573d5ab",

    // Project assigned to imported calendar events; created when missing.
    // Can be overridden per-sync with: tmt outlook sync --project <name>
    "default_project": "Meetings",

    // IANA timezone for interpreting calendar event times, e.g. "Europe/Berlin".
    // Leave empty to use UTC.
    "timezone": ""
  }
}
`

// Home returns the tmt home directory: $TMT_HOME or ~/.tmt.
func Home() (string, error) {
	if h := os.Getenv(EnvHome); h != "" {
		return h, nil
	}
	return storage.DefaultBaseDir()
}

// DataDir returns the directory the repository lives in.
func (c Config) DataDir(home string) string {
	if c.Storage.DataDir != "" {
		return c.Storage.DataDir
	}
	return home
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

// Load reads .env from the working directory, then <home>/config.json.
// It returns the config and the resolved home directory.
func Load() (Config, string, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Default(), "", fmt.Errorf("reading .env: %w", err)
	}
	home, err := Home()
	if err != nil {
		return Default(), "", err
	}
	cfg, err := LoadFrom(filepath.Join(home, "config.json"))
	return cfg, home, err
}

// LoadFrom reads the config at path, creating it with annotated defaults on
// first run, and applies environment overrides.
func LoadFrom(path string) (Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return cfg, err
	}
	applyEnv(&cfg)

	if _, err := aggregate.ParseWindow(cfg.Chart.DefaultWindow); err != nil {
		return cfg, fmt.Errorf("chart.default_window: %w", err)
	}
	switch cfg.Storage.Backend {
	case storage.BackendJSON, storage.BackendSQLite:
	default:
		return cfg, fmt.Errorf("storage.backend: unknown backend %q", cfg.Storage.Backend)
	}
	return cfg, nil
}

func readFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("reading config file %s: %w", path, err)
	}

	// Keys missing from the file keep their default values.
	cfg := Default()
	if err := json.Unmarshal(stripLineComments(data), &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}

	// Explicitly empty strings are treated like missing keys.
	def := Default()
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = def.Storage.Backend
	}
	if cfg.Chart.DefaultWindow == "" {
		cfg.Chart.DefaultWindow = def.Chart.DefaultWindow
	}
	if cfg.Outlook.TenantID == "" {
		cfg.Outlook.TenantID = def.Outlook.TenantID
	}
	if cfg.Outlook.ClientID == "" {
		cfg.Outlook.ClientID = def.Outlook.ClientID
	}
	if cfg.Outlook.DefaultProject == "" {
		cfg.Outlook.DefaultProject = def.Outlook.DefaultProject
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvBackend); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv(EnvWindow); v != "" {
		cfg.Chart.DefaultWindow = v
	}
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
