package mcp

import "github.com/1broseidon/zonetile/internal/geometry"

// ListLayoutsInput is the input for the list_layouts tool.
type ListLayoutsInput struct{}

// LayoutSummary describes one stored layout.
type LayoutSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ZoneCount int    `json:"zone_count"`
}

// ListLayoutsOutput is the output for the list_layouts tool.
type ListLayoutsOutput struct {
	Layouts []LayoutSummary `json:"layouts"`
}

// GetLayoutInput is the input for the get_layout tool.
type GetLayoutInput struct {
	LayoutID string `json:"layout_id" jsonschema:"required,The layout id to fetch"`
}

// ZoneDetail is one zone of a layout with its fractional rectangle.
type ZoneDetail struct {
	ID     string  `json:"id"`
	Number int     `json:"number,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	W      float64 `json:"w"`
	H      float64 `json:"h"`
}

// GetLayoutOutput is the output for the get_layout tool.
type GetLayoutOutput struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Zones []ZoneDetail `json:"zones"`
}

// GenerateLayoutInput is the input for the generate_layout tool.
type GenerateLayoutInput struct {
	Kind  string `json:"kind" jsonschema:"required,Generator kind: columns, rows or grid"`
	Count int    `json:"count,omitempty" jsonschema:"Zone count for columns/rows generators (default: 2)"`
	Cols  int    `json:"cols,omitempty" jsonschema:"Column count for the grid generator (default: 2)"`
	Rows  int    `json:"rows,omitempty" jsonschema:"Row count for the grid generator (default: 2)"`
}

// GenerateLayoutOutput is the output for the generate_layout tool.
type GenerateLayoutOutput struct {
	LayoutID  string `json:"layout_id"`
	Name      string `json:"name"`
	ZoneCount int    `json:"zone_count"`
}

// SnapWindowInput is the input for the snap_window tool.
type SnapWindowInput struct {
	ZoneIDs  []string `json:"zone_ids,omitempty" jsonschema:"Zone ids to snap to. Multiple ids span the union of the zones."`
	Number   int      `json:"number,omitempty" jsonschema:"Zone number to snap to. Used when zone_ids is empty."`
	WindowID string   `json:"window_id,omitempty" jsonschema:"Target window id (default: the focused window)"`
}

// SnapWindowOutput is the output for the snap_window tool.
type SnapWindowOutput struct {
	WindowID string        `json:"window_id"`
	Target   geometry.Rect `json:"target"`
}

// NavigateWindowInput is the input for the navigate_window tool.
type NavigateWindowInput struct {
	Direction string `json:"direction" jsonschema:"required,Direction to move: up, down, left or right"`
	WindowID  string `json:"window_id,omitempty" jsonschema:"Target window id (default: the focused window)"`
}

// NavigateWindowOutput is the output for the navigate_window tool.
type NavigateWindowOutput struct {
	Moved bool `json:"moved"`
}

// ToggleFloatInput is the input for the toggle_float tool.
type ToggleFloatInput struct {
	WindowID string `json:"window_id,omitempty" jsonschema:"Target window id (default: the focused window)"`
}

// ToggleFloatOutput is the output for the toggle_float tool.
type ToggleFloatOutput struct {
	WindowID string        `json:"window_id"`
	Target   geometry.Rect `json:"target"`
}

// QueryWindowInput is the input for the query_window tool.
type QueryWindowInput struct {
	WindowID string `json:"window_id,omitempty" jsonschema:"Target window id (default: the focused window)"`
}

// QueryWindowOutput is the output for the query_window tool.
type QueryWindowOutput struct {
	WindowID string   `json:"window_id"`
	ZoneIDs  []string `json:"zone_ids"`
	LayoutID string   `json:"layout_id"`
	ScreenID string   `json:"screen_id"`
	Stale    bool     `json:"stale"`
}

// ZoneOccupantsInput is the input for the zone_occupants tool.
type ZoneOccupantsInput struct {
	LayoutID string `json:"layout_id" jsonschema:"required,The layout whose zone occupancy to report"`
}

// ZoneOccupantsOutput is the output for the zone_occupants tool.
type ZoneOccupantsOutput struct {
	LayoutID  string              `json:"layout_id"`
	Occupants map[string][]string `json:"occupants"`
}

// BindContextInput is the input for the bind_context tool.
type BindContextInput struct {
	Screen   string `json:"screen" jsonschema:"required,Screen id the binding applies to"`
	LayoutID string `json:"layout_id" jsonschema:"required,Layout to activate in this context"`
	Desktop  string `json:"desktop,omitempty" jsonschema:"Virtual desktop the binding applies to (empty matches any)"`
	Activity string `json:"activity,omitempty" jsonschema:"Activity the binding applies to (empty matches any)"`
}

// BindContextOutput is the output for the bind_context tool.
type BindContextOutput struct {
	Bound bool `json:"bound"`
}

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	LayoutCount    int   `json:"layout_count"`
	TrackedWindows int   `json:"tracked_windows"`
	UptimeSeconds  int64 `json:"uptime_seconds"`
}
