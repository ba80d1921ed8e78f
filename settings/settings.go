// ABOUTME: Local client settings for the dashboard and CLI
// ABOUTME: JSON file at XDG config paths with LTVDASH_* environment variable overrides
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Defaults.
const (
	DefaultAPIURL       = "http://localhost:8000"
	DefaultFastInterval = 5 * time.Second
	DefaultSlowInterval = 30 * time.Second
	DefaultTimeout      = 15 * time.Second
	DefaultLogLevel     = "info"
)

// Duration is a time.Duration that reads and writes as "5s" in JSON.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"5s\": %w", err)
	}
	if s == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// Settings holds how this client reaches the backend and how it behaves.
// Nothing about sync jobs or history is stored here.
type Settings struct {
	APIURL       string   `json:"api_url"`
	FastInterval Duration `json:"poll_fast"`
	SlowInterval Duration `json:"poll_slow"`
	Timeout      Duration `json:"timeout"`
	LogLevel     string   `json:"log_level"`
	LogFile      string   `json:"log_file,omitempty"`
}

// Default returns settings with every field at its default.
func Default() *Settings {
	return &Settings{
		APIURL:       DefaultAPIURL,
		FastInterval: Duration{DefaultFastInterval},
		SlowInterval: Duration{DefaultSlowInterval},
		Timeout:      Duration{DefaultTimeout},
		LogLevel:     DefaultLogLevel,
	}
}

// Dir returns the XDG-compliant settings directory.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, "ltvdash")
}

// Path returns the settings file path.
func Path() string {
	return filepath.Join(Dir(), "config.json")
}

// StateDir is where the dashboard writes its log file.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "ltvdash")
}

// Load reads settings from Path. A missing file yields defaults.
// Environment variables override file values:
// - LTVDASH_API_URL
// - LTVDASH_POLL_FAST
// - LTVDASH_POLL_SLOW
// - LTVDASH_TIMEOUT
// - LTVDASH_LOG_LEVEL
// - LTVDASH_LOG_FILE.
func Load() (*Settings, error) {
	cfg := Default()

	f, err := os.Open(Path())
	switch {
	case err == nil:
		defer func() { _ = f.Close() }()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to decode settings: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to open settings file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	return cfg, nil
}

func applyEnvOverrides(cfg *Settings) error {
	if url := os.Getenv("LTVDASH_API_URL"); url != "" {
		cfg.APIURL = url
	}
	if level := os.Getenv("LTVDASH_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if file := os.Getenv("LTVDASH_LOG_FILE"); file != "" {
		cfg.LogFile = file
	}

	durations := []struct {
		env string
		dst *Duration
	}{
		{"LTVDASH_POLL_FAST", &cfg.FastInterval},
		{"LTVDASH_POLL_SLOW", &cfg.SlowInterval},
		{"LTVDASH_TIMEOUT", &cfg.Timeout},
	}
	for _, d := range durations {
		raw := os.Getenv(d.env)
		if raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", d.env, raw, err)
		}
		d.dst.Duration = parsed
	}
	return nil
}

// fillDefaults replaces zero or unusable values left by a partial file.
func (s *Settings) fillDefaults() {
	if strings.TrimSpace(s.APIURL) == "" {
		s.APIURL = DefaultAPIURL
	}
	if s.FastInterval.Duration <= 0 {
		s.FastInterval.Duration = DefaultFastInterval
	}
	if s.SlowInterval.Duration <= 0 {
		s.SlowInterval.Duration = DefaultSlowInterval
	}
	if s.Timeout.Duration <= 0 {
		s.Timeout.Duration = DefaultTimeout
	}
	if s.LogLevel == "" {
		s.LogLevel = DefaultLogLevel
	}
}

// Save writes settings to Path.
func Save(cfg *Settings) error {
	path := Path()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create settings file: %w", err)
	}
	defer func() { _ = f.Close() }()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return nil
}

// LogPath returns the configured log file, or the default under StateDir.
func (s *Settings) LogPath() string {
	if s.LogFile != "" {
		return s.LogFile
	}
	return filepath.Join(StateDir(), "ltvdash.log")
}
