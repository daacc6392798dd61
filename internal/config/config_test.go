package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

// TestLoadMissingFileUsesDefaults verifies a missing config is not fatal
func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v, expected defaults", err)
	}
	if cfg.Safety.ConfirmFileThreshold != 100 {
		t.Errorf("ConfirmFileThreshold = %d, expected 100", cfg.Safety.ConfirmFileThreshold)
	}
	if cfg.MetricsEnabled() {
		t.Error("metrics should be disabled by default")
	}
	if cfg.DatabasePath != "/var/lib/smartfile/operations.db" {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
	if cfg.Logging.RotationDays != 30 {
		t.Errorf("RotationDays = %d, expected 30", cfg.Logging.RotationDays)
	}
}

// TestLoadFullConfig verifies every section round-trips from YAML
func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
safety:
  extra_system_dirs:
    - /data/critical
  confirm_file_threshold: 50
prometheus:
  port: 9091
logging:
  directory: /tmp/smartfile-logs
  rotation_days: 7
resource_limits:
  max_cpu_percent: 25.0
database_path: /tmp/test-operations.db
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Safety.ExtraSystemDirs) != 1 || cfg.Safety.ExtraSystemDirs[0] != "/data/critical" {
		t.Errorf("ExtraSystemDirs = %v", cfg.Safety.ExtraSystemDirs)
	}
	if cfg.Safety.ConfirmFileThreshold != 50 {
		t.Errorf("ConfirmFileThreshold = %d, expected 50", cfg.Safety.ConfirmFileThreshold)
	}
	if !cfg.MetricsEnabled() || cfg.PrometheusAddress() != ":9091" {
		t.Errorf("PrometheusAddress = %q, enabled = %v", cfg.PrometheusAddress(), cfg.MetricsEnabled())
	}
	if cfg.Logging.Directory != "/tmp/smartfile-logs" || cfg.Logging.RotationDays != 7 {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.ResourceLimits.MaxCPUPercent != 25.0 {
		t.Errorf("MaxCPUPercent = %v", cfg.ResourceLimits.MaxCPUPercent)
	}
	if cfg.DatabasePath != "/tmp/test-operations.db" {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
}

// TestLoadRejectsInvalidValues covers validation errors
func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		errPart string
	}{
		{"negative threshold", "safety:\n  confirm_file_threshold: -1\n", "confirm_file_threshold"},
		{"bad port", "prometheus:\n  port: 70000\n", "port"},
		{"relative protected dir", "safety:\n  extra_system_dirs: [relative/dir]\n", "absolute"},
		{"malformed yaml", "safety: [not a map\n", "decode yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.yaml)
			_, err := Load(path)
			if err == nil {
				t.Fatal("Load() succeeded, expected error")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("error %q does not mention %q", err, tt.errPart)
			}
		})
	}
}

// TestWindowsDenylistEntriesValidate verifies drive-letter prefixes pass
func TestWindowsDenylistEntriesValidate(t *testing.T) {
	path := writeConfig(t, "safety:\n  extra_system_dirs: ['C:\\Temp']\n")
	if _, err := Load(path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}
