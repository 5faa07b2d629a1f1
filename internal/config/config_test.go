package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config failed validation: %v", err)
	}

	if cfg.PollInterval() != 500*time.Millisecond {
		t.Errorf("expected 500ms poll interval, got %v", cfg.PollInterval())
	}
	if cfg.SettleDelay() != 2*time.Second {
		t.Errorf("expected 2s settle delay, got %v", cfg.SettleDelay())
	}
	if cfg.ActivationThreshold != 24 {
		t.Errorf("expected activation threshold 24, got %d", cfg.ActivationThreshold)
	}
	if cfg.BarrierHeight != 70 {
		t.Errorf("expected barrier height 70, got %d", cfg.BarrierHeight)
	}
	if len(cfg.ExemptClasses) == 0 {
		t.Errorf("expected default exempt classes")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"zero poll interval", func(c *Config) { c.PollIntervalMs = 0 }, "poll_interval_ms"},
		{"negative settle delay", func(c *Config) { c.SettleDelayMs = -1 }, "settle_delay_ms"},
		{"negative threshold", func(c *Config) { c.ActivationThreshold = -5 }, "activation_threshold"},
		{"zero barrier height", func(c *Config) { c.BarrierHeight = 0 }, "barrier_height"},
		{"negative tolerance", func(c *Config) { c.OverlapTolerance = -1 }, "overlap_tolerance"},
		{"zero window floor", func(c *Config) { c.MinWindowHeight = 0 }, "min_window_height"},
		{"blank exempt class", func(c *Config) { c.ExemptClasses = []string{"nautilus", "  "} }, "exempt_classes[1]"},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "log_level"},
		{"negative retention", func(c *Config) { c.History.RetentionDays = -1 }, "history.retention_days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T: %v", err, err)
			}
			if verr.Path != tt.path {
				t.Fatalf("expected error path %q, got %q", tt.path, verr.Path)
			}
		})
	}
}

func TestLoadFromPath_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PollIntervalMs != 500 || cfg.BarrierHeight != 70 {
		t.Fatalf("expected defaults for a missing file, got %+v", cfg)
	}
}

func TestLoadFromPath_OverridesMergeOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
barrier_height: 90
secondary_display: HDMI-1
exempt_classes:
  - nautilus
history:
  enabled: true
  retention_days: 7
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.BarrierHeight != 90 {
		t.Errorf("expected barrier_height 90, got %d", cfg.BarrierHeight)
	}
	if cfg.SecondaryDisplay != "HDMI-1" {
		t.Errorf("expected secondary_display HDMI-1, got %q", cfg.SecondaryDisplay)
	}
	if len(cfg.ExemptClasses) != 1 || cfg.ExemptClasses[0] != "nautilus" {
		t.Errorf("expected exempt list replaced, got %v", cfg.ExemptClasses)
	}
	if !cfg.History.Enabled || cfg.History.RetentionDays != 7 {
		t.Errorf("expected history enabled with 7 day retention, got %+v", cfg.History)
	}

	// Untouched keys keep their defaults.
	if cfg.PollIntervalMs != 500 {
		t.Errorf("expected default poll_interval_ms 500, got %d", cfg.PollIntervalMs)
	}
	if cfg.PauseHotkey != "Mod4-Mod1-p" {
		t.Errorf("expected default pause hotkey, got %q", cfg.PauseHotkey)
	}
}

func TestLoadFromPath_UnknownKeyRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("barier_height: 90\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected strict decoding to reject a misspelled key")
	}
	if !strings.Contains(err.Error(), "barier_height") {
		t.Fatalf("expected the unknown key in the error, got: %v", err)
	}
}

func TestLoadFromPath_InvalidValuesRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("barrier_height: -10\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	if verr.Path != "barrier_height" {
		t.Fatalf("expected barrier_height error, got %q", verr.Path)
	}
}

func TestGetHistoryAppliesDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.History = HistoryConfig{Enabled: true}

	h := cfg.GetHistory()
	if h.Path == "" {
		t.Fatalf("expected a default history path")
	}
	if !strings.Contains(h.Path, "dockguard") {
		t.Fatalf("expected history path under dockguard, got %q", h.Path)
	}
	if h.RetentionDays != 14 {
		t.Fatalf("expected default retention of 14 days, got %d", h.RetentionDays)
	}
}
