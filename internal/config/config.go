package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// HistoryConfig configures the optional correction history store.
type HistoryConfig struct {
	// Enabled turns correction/topology recording on/off
	Enabled bool `yaml:"enabled,omitempty"`
	// Path is the sqlite database file (default: ~/.local/share/dockguard/history.db)
	Path string `yaml:"path,omitempty"`
	// RetentionDays is how long records are kept before pruning (default: 14)
	RetentionDays int `yaml:"retention_days,omitempty"`
}

// Config holds the application configuration.
type Config struct {
	// PollIntervalMs is the guardian's enforcement cadence.
	PollIntervalMs int `yaml:"poll_interval_ms"`
	// SettleDelayMs is how long the display topology must stay quiet
	// after a change before the barrier is recomputed.
	SettleDelayMs int `yaml:"settle_delay_ms"`
	// ActivationThreshold is the reserved bottom gap, in pixels, beyond
	// which a display is treated as already having a dock gap.
	ActivationThreshold int `yaml:"activation_threshold"`
	// BarrierHeight is the strip height used when no display carries a
	// gap deeper than the threshold.
	BarrierHeight int `yaml:"barrier_height"`
	// OverlapTolerance is how far a window may dip past the barrier top
	// before it is corrected.
	OverlapTolerance int `yaml:"overlap_tolerance"`
	// MinWindowHeight is the floor below which windows are never shrunk.
	MinWindowHeight int `yaml:"min_window_height"`
	// SecondaryDisplay optionally names the output to protect; empty
	// protects the first non-primary display.
	SecondaryDisplay string `yaml:"secondary_display,omitempty"`
	// ExemptClasses lists WM_CLASS values the guardian never touches.
	ExemptClasses []string `yaml:"exempt_classes"`
	// DebugHighlight paints the barrier in the highlight tint at startup.
	DebugHighlight bool `yaml:"debug_highlight"`
	// PauseHotkey toggles enforcement; empty disables the binding.
	PauseHotkey string `yaml:"pause_hotkey"`
	// HighlightHotkey toggles the debug tint; empty disables the binding.
	HighlightHotkey string        `yaml:"highlight_hotkey"`
	LogLevel        string        `yaml:"log_level"`
	Display         string        `yaml:"display,omitempty"`
	XAuthority      string        `yaml:"xauthority,omitempty"`
	History         HistoryConfig `yaml:"history,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		PollIntervalMs:      500,
		SettleDelayMs:       2000,
		ActivationThreshold: 24,
		BarrierHeight:       70,
		OverlapTolerance:    3,
		MinWindowHeight:     100,
		ExemptClasses:       defaultExemptClasses(),
		PauseHotkey:         "Mod4-Mod1-p", // Super+Alt+P for pause
		HighlightHotkey:     "Mod4-Mod1-b", // Super+Alt+B for barrier highlight
		LogLevel:            "info",
		History: HistoryConfig{
			RetentionDays: 14,
		},
	}
}

// defaultExemptClasses covers the processes that legitimately paint
// desktop-sized windows: desktop shells and the file managers that
// draw desktop icons.
func defaultExemptClasses() []string {
	return []string{
		"nautilus",
		"org.gnome.nautilus",
		"plasmashell",
		"pcmanfm",
		"pcmanfm-qt",
		"caja",
		"nemo",
		"xfdesktop",
		"thunar",
	}
}

// PollInterval returns the guardian cadence as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// SettleDelay returns the debounce settle delay as a duration.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMs) * time.Millisecond
}

// GetHistory returns the history configuration with defaults applied.
func (c *Config) GetHistory() HistoryConfig {
	if c == nil {
		return HistoryConfig{}
	}
	cfg := c.History
	if cfg.Path == "" {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			home = os.Getenv("HOME")
		}
		if home == "" {
			// Last resort fallback - use current directory
			home = "."
		}
		cfg.Path = filepath.Join(home, ".local/share/dockguard/history.db")
	}
	if cfg.RetentionDays == 0 {
		cfg.RetentionDays = 14
	}
	return cfg
}

// Save writes the configuration to the standard location.
//
// Note: this marshals the effective config and will not preserve
// comments from the original YAML.
func (c *Config) Save() error {
	if err := c.Validate(); err != nil {
		return err
	}

	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ValidationError reports an invalid configuration value.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if c.PollIntervalMs <= 0 {
		return &ValidationError{Path: "poll_interval_ms", Err: fmt.Errorf("poll_interval_ms must be > 0")}
	}
	if c.SettleDelayMs < 0 {
		return &ValidationError{Path: "settle_delay_ms", Err: fmt.Errorf("settle_delay_ms must be >= 0")}
	}
	if c.ActivationThreshold < 0 {
		return &ValidationError{Path: "activation_threshold", Err: fmt.Errorf("activation_threshold must be >= 0")}
	}
	if c.BarrierHeight <= 0 {
		return &ValidationError{Path: "barrier_height", Err: fmt.Errorf("barrier_height must be > 0")}
	}
	if c.OverlapTolerance < 0 {
		return &ValidationError{Path: "overlap_tolerance", Err: fmt.Errorf("overlap_tolerance must be >= 0")}
	}
	if c.MinWindowHeight <= 0 {
		return &ValidationError{Path: "min_window_height", Err: fmt.Errorf("min_window_height must be > 0")}
	}
	for i, class := range c.ExemptClasses {
		if strings.TrimSpace(class) == "" {
			return &ValidationError{Path: fmt.Sprintf("exempt_classes[%d]", i), Err: fmt.Errorf("exempt class must not be empty")}
		}
	}
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warning" && c.LogLevel != "error" {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if c.History.RetentionDays < 0 {
		return &ValidationError{Path: "history.retention_days", Err: fmt.Errorf("retention_days must be >= 0")}
	}

	if warnings := c.validationWarnings(); len(warnings) > 0 {
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}
	}

	return nil
}

func (c *Config) validationWarnings() []string {
	if c == nil {
		return nil
	}

	var warnings []string

	if c.PollIntervalMs < 100 {
		warnings = append(warnings, fmt.Sprintf("poll_interval_ms %d polls the X server very aggressively", c.PollIntervalMs))
	}
	if c.SettleDelayMs > 0 && c.SettleDelayMs < 500 {
		warnings = append(warnings, fmt.Sprintf("settle_delay_ms %d may recompute mid-transition; displays emit several change events in a burst", c.SettleDelayMs))
	}
	if len(c.ExemptClasses) == 0 {
		warnings = append(warnings, "exempt_classes is empty; desktop shells may be shrunk")
	}

	return warnings
}
