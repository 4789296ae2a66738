package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// ConfigFileEnv names the environment variable that points at a TOML file.
const ConfigFileEnv = "WEBSHELL_CONFIG"

// Config holds all shell configuration.
type Config struct {
	App          AppConfig          `toml:"app"`
	Window       WindowConfig       `toml:"window"`
	Connectivity ConnectivityConfig `toml:"connectivity"`
	Instance     InstanceConfig     `toml:"instance"`
	Logging      LogConfig          `toml:"logging"`
	Screenshot   ScreenshotConfig   `toml:"screenshot"`
}

// AppConfig describes the hosted web application.
type AppConfig struct {
	ID           string   `envconfig:"APP_ID" toml:"id"`
	Name         string   `envconfig:"APP_NAME" toml:"name"`
	URL          string   `envconfig:"APP_URL" toml:"url"`
	AllowedHosts []string `envconfig:"APP_ALLOWED_HOSTS" toml:"allowed_hosts"`
}

// WindowConfig holds primary window geometry settings.
type WindowConfig struct {
	WidthRatio  float64 `envconfig:"WINDOW_WIDTH_RATIO" toml:"width_ratio"`
	HeightRatio float64 `envconfig:"WINDOW_HEIGHT_RATIO" toml:"height_ratio"`
	MinWidth    int     `envconfig:"WINDOW_MIN_WIDTH" toml:"min_width"`
	MinHeight   int     `envconfig:"WINDOW_MIN_HEIGHT" toml:"min_height"`
	StartHidden bool    `envconfig:"START_HIDDEN" toml:"start_hidden"`
}

// ConnectivityConfig controls the offline recovery probe.
type ConnectivityConfig struct {
	ProbeEnabled  bool          `envconfig:"PROBE_ENABLED" toml:"probe_enabled"`
	ProbeInterval time.Duration `envconfig:"PROBE_INTERVAL" toml:"probe_interval"`
	ProbeTimeout  time.Duration `envconfig:"PROBE_TIMEOUT" toml:"probe_timeout"`
}

// InstanceConfig holds single-instance lock settings.
type InstanceConfig struct {
	SocketPath string `envconfig:"INSTANCE_SOCKET" toml:"socket_path"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" toml:"development"`
}

// ScreenshotConfig is the automated capture mode pair. It is accepted at
// startup but capture itself is handled outside the shell.
type ScreenshotConfig struct {
	Enabled bool   `envconfig:"SCREENSHOT_MODE" toml:"enabled"`
	Path    string `envconfig:"SCREENSHOT_PATH" toml:"path"`
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		App: AppConfig{
			ID:   "ai.perplexity.webshell",
			Name: "Perplexity",
			URL:  "https://www.perplexity.ai/",
			AllowedHosts: []string{
				"perplexity.ai",
				"www.perplexity.ai",
				"accounts.google.com",
				"appleid.apple.com",
			},
		},
		Window: WindowConfig{
			WidthRatio:  0.6,
			HeightRatio: 0.8,
			MinWidth:    800,
			MinHeight:   600,
		},
		Connectivity: ConnectivityConfig{
			ProbeEnabled:  true,
			ProbeInterval: 15 * time.Second,
			ProbeTimeout:  5 * time.Second,
		},
		Logging: LogConfig{
			Level: "info",
		},
	}
}

// Load builds configuration from defaults, an optional TOML file, an
// optional .env file and finally the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := Default()

	path, explicit := filePath()
	if path != "" {
		if err := cfg.mergeFile(path, explicit); err != nil {
			return nil, err
		}
	}

	// No default tags: unset variables leave the layered values alone.
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string, explicit bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// filePath returns the TOML path and whether the user asked for it explicitly.
func filePath() (string, bool) {
	if p := os.Getenv(ConfigFileEnv); p != "" {
		return p, true
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(dir, "webshell", "config.toml"), false
}

// Validate checks the values the shell cannot run without.
func (c *Config) Validate() error {
	if c.App.ID == "" {
		return errors.New("APP_ID cannot be empty")
	}
	u, err := url.Parse(c.App.URL)
	if err != nil {
		return fmt.Errorf("APP_URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("APP_URL must be an absolute http(s) URL, got %q", c.App.URL)
	}
	if !validRatio(c.Window.WidthRatio) || !validRatio(c.Window.HeightRatio) {
		return errors.New("window ratios must be in (0, 1]")
	}
	if c.Window.MinWidth < 0 || c.Window.MinHeight < 0 {
		return errors.New("window minimum size cannot be negative")
	}
	if c.Connectivity.ProbeEnabled && c.Connectivity.ProbeInterval <= 0 {
		return errors.New("PROBE_INTERVAL must be > 0")
	}
	if c.Screenshot.Enabled && strings.TrimSpace(c.Screenshot.Path) == "" {
		return errors.New("SCREENSHOT_PATH is required when SCREENSHOT_MODE is set")
	}
	return nil
}

// SocketPath returns the instance socket, deriving a per-user default.
func (c *Config) SocketPath() string {
	if c.Instance.SocketPath != "" {
		return c.Instance.SocketPath
	}
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%d.sock", c.App.ID, os.Getuid()))
}

func validRatio(r float64) bool {
	return r > 0 && r <= 1
}
