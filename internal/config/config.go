// Package config loads and validates the zonetile YAML configuration:
// engine tuning knobs, authored layouts, context bindings and global
// appearance defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/zonetile/internal/resolver"
	"github.com/1broseidon/zonetile/internal/zone"
)

// OverlapPolicy values accepted in the config file.
const (
	OverlapSmallestArea = "smallest-area"
	OverlapTopmost      = "topmost"
)

const (
	DefaultTriggerDistance = 20
	DefaultEdgeMargin      = 0
	DefaultPollIntervalMS  = 50
	DefaultPadding         = 0
)

// ValidationError carries the config path that failed, so the CLI can
// point the user at the offending key.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Config is the on-disk configuration. Pointer fields distinguish
// "unset, use the default" from an explicit zero.
type Config struct {
	// Pointer travel in pixels before a window drag arms.
	TriggerDistance *int `yaml:"trigger_distance,omitempty"`
	// Width of the screen-edge band that arms a drag immediately;
	// 0 disables edge triggering.
	EdgeMargin *int `yaml:"edge_margin,omitempty"`
	// Pointer polling interval in milliseconds.
	PollIntervalMS *int `yaml:"poll_interval_ms,omitempty"`
	// Winner among overlapping zones under the pointer:
	// smallest-area or topmost.
	OverlapPolicy string `yaml:"overlap_policy,omitempty"`

	Padding     *int  `yaml:"padding,omitempty"`
	ShowNumbers *bool `yaml:"show_numbers,omitempty"`

	LogLevel string `yaml:"log_level,omitempty"`

	// DefaultLayout is the global fallback layout id; it must name a
	// builtin or authored layout.
	DefaultLayout string `yaml:"default_layout"`

	// Layouts authored by the user, in addition to the builtins.
	Layouts []zone.Layout `yaml:"layouts,omitempty"`

	// ScreenDefaults maps a screen id to its default layout.
	ScreenDefaults map[string]string `yaml:"screen_defaults,omitempty"`

	// Bindings attach layouts to (screen, desktop, activity) contexts.
	Bindings []resolver.Binding `yaml:"bindings,omitempty"`
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		TriggerDistance: intPtr(DefaultTriggerDistance),
		EdgeMargin:      intPtr(DefaultEdgeMargin),
		PollIntervalMS:  intPtr(DefaultPollIntervalMS),
		OverlapPolicy:   OverlapSmallestArea,
		Padding:         intPtr(DefaultPadding),
		ShowNumbers:     boolPtr(true),
		LogLevel:        "info",
		DefaultLayout:   "halves",
	}
}

func (c *Config) GetTriggerDistance() int {
	if c.TriggerDistance == nil {
		return DefaultTriggerDistance
	}
	return *c.TriggerDistance
}

func (c *Config) GetEdgeMargin() int {
	if c.EdgeMargin == nil {
		return DefaultEdgeMargin
	}
	return *c.EdgeMargin
}

func (c *Config) GetPollIntervalMS() int {
	if c.PollIntervalMS == nil {
		return DefaultPollIntervalMS
	}
	return *c.PollIntervalMS
}

func (c *Config) GetPadding() int {
	if c.Padding == nil {
		return DefaultPadding
	}
	return *c.Padding
}

func (c *Config) GetShowNumbers() bool {
	if c.ShowNumbers == nil {
		return true
	}
	return *c.ShowNumbers
}

// AllLayouts returns the builtin layouts plus the authored ones. An
// authored layout with a builtin's id replaces it.
func (c *Config) AllLayouts() []zone.Layout {
	byID := make(map[string]int)
	out := BuiltinLayouts()
	for i, l := range out {
		byID[l.ID] = i
	}
	for _, l := range c.Layouts {
		if i, ok := byID[l.ID]; ok {
			out[i] = l
			continue
		}
		byID[l.ID] = len(out)
		out = append(out, l)
	}
	return out
}

// DefaultConfigPath returns ~/.config/zonetile/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "zonetile", "config.yaml"), nil
}

// Load reads the config from the standard location. A missing file
// yields the defaults.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads and validates a config file.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to the standard location, creating the
// directory if needed.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to an explicit path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks the whole config, returning a ValidationError with
// the path of the first offending key.
func (c *Config) Validate() error {
	if c.GetTriggerDistance() < 0 {
		return &ValidationError{Path: "trigger_distance", Err: fmt.Errorf("must be >= 0")}
	}
	if c.GetEdgeMargin() < 0 {
		return &ValidationError{Path: "edge_margin", Err: fmt.Errorf("must be >= 0")}
	}
	if c.GetPollIntervalMS() <= 0 {
		return &ValidationError{Path: "poll_interval_ms", Err: fmt.Errorf("must be > 0")}
	}
	if c.GetPadding() < 0 {
		return &ValidationError{Path: "padding", Err: fmt.Errorf("must be >= 0")}
	}
	switch c.OverlapPolicy {
	case "", OverlapSmallestArea, OverlapTopmost:
	default:
		return &ValidationError{Path: "overlap_policy", Err: fmt.Errorf("must be one of: %s, %s", OverlapSmallestArea, OverlapTopmost)}
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}

	if c.DefaultLayout == "" {
		return &ValidationError{Path: "default_layout", Err: fmt.Errorf("default_layout is required")}
	}
	all := c.AllLayouts()
	ids := make(map[string]bool, len(all))
	for i, l := range all {
		if l.ID == "" {
			return &ValidationError{Path: fmt.Sprintf("layouts[%d].id", i), Err: fmt.Errorf("id is required")}
		}
		if ids[l.ID] {
			return &ValidationError{Path: "layouts." + l.ID, Err: fmt.Errorf("duplicate layout id")}
		}
		ids[l.ID] = true
		if err := l.Validate(); err != nil {
			return &ValidationError{Path: "layouts." + l.ID, Err: err}
		}
	}
	if !ids[c.DefaultLayout] {
		return &ValidationError{Path: "default_layout", Err: fmt.Errorf("layout %q not found", c.DefaultLayout)}
	}
	for screen, id := range c.ScreenDefaults {
		if !ids[id] {
			return &ValidationError{Path: "screen_defaults." + screen, Err: fmt.Errorf("layout %q not found", id)}
		}
	}
	for i, b := range c.Bindings {
		if b.Screen == "" {
			return &ValidationError{Path: fmt.Sprintf("bindings[%d].screen", i), Err: fmt.Errorf("screen is required")}
		}
		if !ids[b.LayoutID] {
			return &ValidationError{Path: fmt.Sprintf("bindings[%d].layout", i), Err: fmt.Errorf("layout %q not found", b.LayoutID)}
		}
	}
	return nil
}
