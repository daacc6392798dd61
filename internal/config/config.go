package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the engine looks for its configuration when the
// caller does not name one.
const DefaultPath = "/etc/smartfile/config.yaml"

type SafetyCfg struct {
	ExtraSystemDirs      []string `yaml:"extra_system_dirs" json:"extra_system_dirs"`           // Additional protected path prefixes
	ConfirmFileThreshold int      `yaml:"confirm_file_threshold" json:"confirm_file_threshold"` // Entry count that triggers confirmation (default: 100)
}

type PrometheusCfg struct {
	Port int `yaml:"port" json:"port"` // 0 disables the metrics endpoint
}

type LoggingCfg struct {
	Directory    string `yaml:"directory" json:"directory"`         // Log directory (default: /var/log/smartfile)
	RotationDays int    `yaml:"rotation_days" json:"rotation_days"` // Days to keep logs before rotation
}

type ResourceLimits struct {
	MaxCPUPercent float64 `yaml:"max_cpu_percent" json:"max_cpu_percent"` // CPU ceiling for recursive scans, 0 = unlimited
}

type Config struct {
	Safety         SafetyCfg      `yaml:"safety" json:"safety"`
	Prometheus     PrometheusCfg  `yaml:"prometheus" json:"prometheus"`
	Logging        LoggingCfg     `yaml:"logging" json:"logging"`
	ResourceLimits ResourceLimits `yaml:"resource_limits" json:"resource_limits"`
	DatabasePath   string         `yaml:"database_path" json:"database_path"` // SQLite operation history, "" disables
}

var (
	errNegativeThreshold = errors.New("confirm_file_threshold cannot be negative")
	errInvalidPort       = errors.New("prometheus port must be between 0 and 65535")
	errRelativeDir       = errors.New("protected directory must be absolute")
)

// Default returns the configuration used when no file exists. A missing
// config is not an error: the engine runs fine with built-in settings.
func Default() *Config {
	cfg := &Config{}
	_ = cfg.validateAndDefault()
	return cfg
}

// Load reads the YAML config at path. A missing file yields the defaults;
// an unreadable or invalid file is an error.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateAndDefault(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

func (c *Config) validateAndDefault() error {
	if c.Safety.ConfirmFileThreshold < 0 {
		return errNegativeThreshold
	}
	if c.Safety.ConfirmFileThreshold == 0 {
		c.Safety.ConfirmFileThreshold = 100
	}

	for _, dir := range c.Safety.ExtraSystemDirs {
		if !filepath.IsAbs(dir) && !isWindowsAbs(dir) {
			return fmt.Errorf("%w: %s", errRelativeDir, dir)
		}
	}

	// Prometheus stays off unless explicitly configured. A one-shot CLI run
	// has nothing useful to scrape; daemon mode opts in via the config file.
	if c.Prometheus.Port < 0 || c.Prometheus.Port > 65535 {
		return errInvalidPort
	}

	if c.Logging.Directory == "" {
		c.Logging.Directory = "/var/log/smartfile"
	}
	if c.Logging.RotationDays <= 0 {
		c.Logging.RotationDays = 30
	}

	if c.ResourceLimits.MaxCPUPercent < 0 {
		c.ResourceLimits.MaxCPUPercent = 0
	}

	if c.DatabasePath == "" {
		c.DatabasePath = "/var/lib/smartfile/operations.db"
	}

	return nil
}

// isWindowsAbs recognizes drive-letter prefixes so configs written for
// Windows denylists validate on any platform.
func isWindowsAbs(p string) bool {
	return len(p) >= 3 && p[1] == ':' && (p[2] == '\\' || p[2] == '/')
}

func (c *Config) PrometheusAddress() string {
	return fmt.Sprintf(":%d", c.Prometheus.Port)
}

// MetricsEnabled reports whether a metrics endpoint should be served.
func (c *Config) MetricsEnabled() bool {
	return c.Prometheus.Port > 0
}
