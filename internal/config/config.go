// Package config loads the YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	appName = "surfvault"

	EnvConfigPath = "SURFVAULT_CONFIG"
	EnvDataDir    = "SURFVAULT_DATA_DIR"
	EnvAdminKey   = "SURFVAULT_ADMIN_KEY"
)

// Config holds the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Auth      AuthConfig      `yaml:"auth"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Transfer  TransferConfig  `yaml:"transfer"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// AdminKey guards the management API when set.
	AdminKey string `yaml:"admin_key"`
}

type StorageConfig struct {
	DataDir         string   `yaml:"data_dir"`
	MaxLogs         int      `yaml:"max_logs"`
	BackupInterval  Duration `yaml:"backup_interval"`
	BackupRetention int      `yaml:"backup_retention"`
}

type AuthConfig struct {
	TokenURL     string `yaml:"token_url"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	APIKey       string `yaml:"api_key"`
}

type UpstreamConfig struct {
	BaseURL      string   `yaml:"base_url"`
	AnalyticsURL string   `yaml:"analytics_url"`
	Timeout      Duration `yaml:"timeout"`
}

type AnalyticsConfig struct {
	TimeZone string `yaml:"time_zone"`
}

type TransferConfig struct {
	PollAttempts int      `yaml:"poll_attempts"`
	PollDelay    Duration `yaml:"poll_delay"`
}

// Duration is a time.Duration written as a Go duration string in YAML.
type Duration time.Duration

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q: %w", node.Line, s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// DefaultDataDir is $XDG_DATA_HOME/surfvault unless SURFVAULT_DATA_DIR is set.
func DefaultDataDir() string {
	if explicit := os.Getenv(EnvDataDir); explicit != "" {
		return explicit
	}
	xdg.Reload()
	dataHome := xdg.DataHome
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), appName)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, appName)
}

// DefaultPath is the config file location when none is given.
func DefaultPath() string {
	if explicit := os.Getenv(EnvConfigPath); explicit != "" {
		return explicit
	}
	return filepath.Join(DefaultDataDir(), "config.yaml")
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8097,
		},
		Storage: StorageConfig{
			DataDir:         DefaultDataDir(),
			MaxLogs:         1000,
			BackupInterval:  Duration(6 * time.Hour),
			BackupRetention: 20,
		},
		Auth: AuthConfig{
			TokenURL: "https://securetoken.googleapis.com/v1/token",
		},
		Upstream: UpstreamConfig{
			BaseURL:      "https://server.codeium.com",
			AnalyticsURL: "https://web-backend.windsurf.com",
			Timeout:      Duration(30 * time.Second),
		},
		Analytics: AnalyticsConfig{
			TimeZone: "UTC",
		},
		Transfer: TransferConfig{
			PollAttempts: 3,
			PollDelay:    Duration(time.Second),
		},
	}
}

// Load reads path over the defaults. A missing file is created with the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if key := os.Getenv(EnvAdminKey); key != "" {
		cfg.Server.AdminKey = key
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to file
func Save(path string, c *Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate rejects values the rest of the program cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Storage.DataDir == "" {
		return errors.New("storage.data_dir is required")
	}
	if c.Transfer.PollAttempts < 1 {
		return fmt.Errorf("transfer.poll_attempts must be at least 1, got %d", c.Transfer.PollAttempts)
	}
	if _, err := time.LoadLocation(c.Analytics.TimeZone); err != nil {
		return fmt.Errorf("analytics.time_zone: %w", err)
	}
	return nil
}

// Addr is the listen address of the management API.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
