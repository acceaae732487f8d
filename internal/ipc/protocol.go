package ipc

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/1broseidon/zonetile/internal/drag"
	"github.com/1broseidon/zonetile/internal/engine"
	"github.com/1broseidon/zonetile/internal/geometry"
	"github.com/1broseidon/zonetile/internal/tracker"
	"github.com/1broseidon/zonetile/internal/zone"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload         CommandType = "RELOAD"
	CommandGetStatus      CommandType = "GET_STATUS"
	CommandGetScreens     CommandType = "GET_SCREENS"
	CommandListLayouts    CommandType = "LIST_LAYOUTS"
	CommandGetLayout      CommandType = "GET_LAYOUT"
	CommandCreateLayout   CommandType = "CREATE_LAYOUT"
	CommandUpdateZones    CommandType = "UPDATE_ZONES"
	CommandDeleteLayout   CommandType = "DELETE_LAYOUT"
	CommandGenerateLayout CommandType = "GENERATE_LAYOUT"
	CommandBindContext    CommandType = "BIND_CONTEXT"
	CommandSnap           CommandType = "SNAP"
	CommandSnapNumber     CommandType = "SNAP_NUMBER"
	CommandNavigate       CommandType = "NAVIGATE"
	CommandToggleFloat    CommandType = "TOGGLE_FLOAT"
	CommandQueryWindow    CommandType = "QUERY_WINDOW"
	CommandOccupants      CommandType = "OCCUPANTS"
)

// Stable error codes, one per entry in the engine's error taxonomy.
const (
	CodeInvalidGeometry  = "INVALID_GEOMETRY"
	CodeLayoutInUse      = "LAYOUT_IN_USE"
	CodeSessionConflict  = "SESSION_CONFLICT"
	CodeNothingToRestore = "NOTHING_TO_RESTORE"
	CodeStaleAssignment  = "STALE_ASSIGNMENT"
	CodeNotFound         = "NOT_FOUND"
	CodeInternal         = "INTERNAL"
)

// ErrorCode maps an engine error to its stable wire code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, geometry.ErrInvalidGeometry):
		return CodeInvalidGeometry
	case errors.Is(err, zone.ErrLayoutInUse):
		return CodeLayoutInUse
	case errors.Is(err, drag.ErrSessionConflict):
		return CodeSessionConflict
	case errors.Is(err, engine.ErrNothingToRestore):
		return CodeNothingToRestore
	case errors.Is(err, tracker.ErrStaleAssignment):
		return CodeStaleAssignment
	case errors.Is(err, zone.ErrNotFound), errors.Is(err, tracker.ErrNotFound):
		return CodeNotFound
	default:
		return CodeInternal
	}
}

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Code   string          `json:"code,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	LayoutCount    int   `json:"layout_count"`
	TrackedWindows int   `json:"tracked_windows"`
	UptimeSeconds  int64 `json:"uptime_seconds"`
	DaemonRunning  bool  `json:"daemon_running"`
}

// ScreenInfo describes one screen's available area.
type ScreenInfo struct {
	ID     string `json:"id"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ScreensData represents the data returned by GET_SCREENS
type ScreensData struct {
	Screens []ScreenInfo `json:"screens"`
}

// LayoutsData represents the data returned by LIST_LAYOUTS
type LayoutsData struct {
	Layouts []zone.Layout `json:"layouts"`
}

type LayoutPayload struct {
	LayoutID string `json:"layout_id"`
}

type CreateLayoutPayload struct {
	Layout zone.Layout `json:"layout"`
}

type UpdateZonesPayload struct {
	LayoutID string      `json:"layout_id"`
	Zones    []zone.Zone `json:"zones"`
}

// GenerateLayoutPayload requests a generated layout: kind is columns,
// rows or grid.
type GenerateLayoutPayload struct {
	Kind  string `json:"kind"`
	Count int    `json:"count,omitempty"`
	Cols  int    `json:"cols,omitempty"`
	Rows  int    `json:"rows,omitempty"`
}

type BindContextPayload struct {
	Screen   string `json:"screen"`
	Desktop  string `json:"desktop,omitempty"`
	Activity string `json:"activity,omitempty"`
	LayoutID string `json:"layout"`
}

// SnapPayload snaps a window to one or more zones. An empty WindowID
// means the currently focused window.
type SnapPayload struct {
	WindowID string   `json:"window_id,omitempty"`
	ZoneIDs  []string `json:"zone_ids"`
}

type SnapNumberPayload struct {
	WindowID string `json:"window_id,omitempty"`
	Number   int    `json:"number"`
}

type NavigatePayload struct {
	WindowID  string `json:"window_id,omitempty"`
	Direction string `json:"direction"`
}

type WindowPayload struct {
	WindowID string `json:"window_id,omitempty"`
}

// SnapResult is the applied target rectangle.
type SnapResult struct {
	WindowID string        `json:"window_id"`
	Target   geometry.Rect `json:"target"`
}

// NavigateResult reports whether the window moved.
type NavigateResult struct {
	Moved bool `json:"moved"`
}

// WindowZoneData is the tracked state of one window.
type WindowZoneData struct {
	WindowID string   `json:"window_id"`
	ZoneIDs  []string `json:"zone_ids"`
	LayoutID string   `json:"layout_id"`
	ScreenID string   `json:"screen_id"`
	Stale    bool     `json:"stale"`
}

// OccupantsData maps zone ids to the windows assigned to them.
type OccupantsData struct {
	LayoutID  string              `json:"layout_id"`
	Occupants map[string][]string `json:"occupants"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response carrying the stable code
// for the given engine error.
func NewErrorResponse(err error) *Response {
	return &Response{
		Status: "ERROR",
		Code:   ErrorCode(err),
		Error:  err.Error(),
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
