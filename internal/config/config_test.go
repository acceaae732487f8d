package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/1broseidon/zonetile/internal/geometry"
	"github.com/1broseidon/zonetile/internal/resolver"
	"github.com/1broseidon/zonetile/internal/zone"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.GetTriggerDistance() != DefaultTriggerDistance {
		t.Fatalf("trigger distance = %d", cfg.GetTriggerDistance())
	}
	if !cfg.GetShowNumbers() {
		t.Fatal("show_numbers should default to true")
	}
}

func TestLoadFromPath_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DefaultLayout != "halves" {
		t.Fatalf("default layout = %q", cfg.DefaultLayout)
	}
}

func TestLoadFromPath_ParsesAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
trigger_distance: 35
overlap_policy: topmost
padding: 12
default_layout: editor
layouts:
  - id: editor
    name: Editor
    zones:
      - id: main
        rect: {x: 0, y: 0, w: 0.7, h: 1}
        display_index: 1
      - id: side
        rect: {x: 0.7, y: 0, w: 0.3, h: 1}
        display_index: 2
bindings:
  - screen: DP-1
    desktop: "2"
    layout: editor
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GetTriggerDistance() != 35 {
		t.Fatalf("trigger distance = %d, want 35", cfg.GetTriggerDistance())
	}
	if cfg.OverlapPolicy != OverlapTopmost {
		t.Fatalf("overlap policy = %q", cfg.OverlapPolicy)
	}
	// Unset keys keep their defaults.
	if cfg.GetPollIntervalMS() != DefaultPollIntervalMS {
		t.Fatalf("poll interval = %d", cfg.GetPollIntervalMS())
	}
	if len(cfg.Layouts) != 1 || cfg.Layouts[0].Zones[0].Rect.W != 0.7 {
		t.Fatalf("layouts parsed wrong: %+v", cfg.Layouts)
	}
	if len(cfg.Bindings) != 1 || cfg.Bindings[0].Desktop != "2" {
		t.Fatalf("bindings parsed wrong: %+v", cfg.Bindings)
	}
}

func TestLoadFromPath_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		path string
	}{
		{"negative trigger", "trigger_distance: -5\ndefault_layout: halves\n", "trigger_distance"},
		{"bad policy", "overlap_policy: biggest\ndefault_layout: halves\n", "overlap_policy"},
		{"bad log level", "log_level: verbose\ndefault_layout: halves\n", "log_level"},
		{"unknown default layout", "default_layout: nope\n", "default_layout"},
		{"binding without screen", "default_layout: halves\nbindings:\n  - layout: halves\n", "bindings[0].screen"},
		{"binding unknown layout", "default_layout: halves\nbindings:\n  - screen: DP-1\n    layout: nope\n", "bindings[0].layout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.doc), 0644); err != nil {
				t.Fatalf("write: %v", err)
			}
			_, err := LoadFromPath(path)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("path = %q, want %q", verr.Path, tt.path)
			}
		})
	}
}

func TestValidate_RejectsInvalidZoneRect(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Layouts = []zone.Layout{{
		ID:   "broken",
		Name: "Broken",
		Zones: []zone.Zone{
			// Collapses to zero width once clamped to the unit square.
			{ID: "z", Rect: geometry.Frac{X: 1, Y: 0, W: 0.5, H: 1}, DisplayIndex: 1},
		},
	}}
	var verr *ValidationError
	if err := cfg.Validate(); !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestAllLayouts_AuthoredOverridesBuiltin(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Layouts = []zone.Layout{{
		ID:   "halves",
		Name: "My Halves",
		Zones: []zone.Zone{
			{ID: "only", Rect: geometry.Frac{X: 0, Y: 0, W: 1, H: 1}, DisplayIndex: 1},
		},
	}}
	var found *zone.Layout
	for _, l := range cfg.AllLayouts() {
		if l.ID == "halves" {
			l := l
			found = &l
		}
	}
	if found == nil || found.Name != "My Halves" {
		t.Fatalf("builtin not overridden: %+v", found)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := DefaultConfig()
	cfg.TriggerDistance = intPtr(42)
	cfg.ScreenDefaults = map[string]string{"DP-1": "thirds"}
	cfg.Bindings = []resolver.Binding{{Screen: "DP-1", Desktop: "2", LayoutID: "quarters"}}

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.GetTriggerDistance() != 42 {
		t.Fatalf("trigger distance = %d", loaded.GetTriggerDistance())
	}
	if loaded.ScreenDefaults["DP-1"] != "thirds" {
		t.Fatalf("screen defaults = %v", loaded.ScreenDefaults)
	}
	if len(loaded.Bindings) != 1 || loaded.Bindings[0].LayoutID != "quarters" {
		t.Fatalf("bindings = %v", loaded.Bindings)
	}
}
