package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/zonetile/internal/runtimepath"
	"github.com/1broseidon/zonetile/internal/zone"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, &RemoteError{Code: resp.Code, Message: resp.Error}
	}

	return &resp, nil
}

// RemoteError is a daemon-side failure with its stable error code.
type RemoteError struct {
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("daemon error [%s]: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("daemon error: %s", e.Message)
}

func (c *Client) call(cmd CommandType, payload interface{}, out interface{}) error {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		req.Payload = data
	}
	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out != nil {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return fmt.Errorf("failed to parse response data: %w", err)
		}
	}
	return nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetScreens retrieves the screen list
func (c *Client) GetScreens() ([]ScreenInfo, error) {
	var data ScreensData
	if err := c.call(CommandGetScreens, nil, &data); err != nil {
		return nil, err
	}
	return data.Screens, nil
}

// ListLayouts retrieves all layouts
func (c *Client) ListLayouts() ([]zone.Layout, error) {
	var data LayoutsData
	if err := c.call(CommandListLayouts, nil, &data); err != nil {
		return nil, err
	}
	return data.Layouts, nil
}

// GetLayout retrieves one layout by id
func (c *Client) GetLayout(layoutID string) (*zone.Layout, error) {
	var l zone.Layout
	if err := c.call(CommandGetLayout, LayoutPayload{LayoutID: layoutID}, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateLayout stores a new layout and returns it with its assigned id
func (c *Client) CreateLayout(l zone.Layout) (*zone.Layout, error) {
	var created zone.Layout
	if err := c.call(CommandCreateLayout, CreateLayoutPayload{Layout: l}, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateZones replaces a layout's zone set
func (c *Client) UpdateZones(layoutID string, zones []zone.Zone) error {
	return c.call(CommandUpdateZones, UpdateZonesPayload{LayoutID: layoutID, Zones: zones}, nil)
}

// DeleteLayout removes a layout
func (c *Client) DeleteLayout(layoutID string) error {
	return c.call(CommandDeleteLayout, LayoutPayload{LayoutID: layoutID}, nil)
}

// GenerateLayout creates a generated layout: kind columns, rows or grid
func (c *Client) GenerateLayout(p GenerateLayoutPayload) (*zone.Layout, error) {
	var l zone.Layout
	if err := c.call(CommandGenerateLayout, p, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// BindContext attaches a layout to a (screen, desktop, activity) context
func (c *Client) BindContext(p BindContextPayload) error {
	return c.call(CommandBindContext, p, nil)
}

// Snap snaps a window to one or more zones
func (c *Client) Snap(windowID string, zoneIDs []string) (*SnapResult, error) {
	var res SnapResult
	if err := c.call(CommandSnap, SnapPayload{WindowID: windowID, ZoneIDs: zoneIDs}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SnapNumber snaps a window to the zone with the given display index
func (c *Client) SnapNumber(windowID string, n int) (*SnapResult, error) {
	var res SnapResult
	if err := c.call(CommandSnapNumber, SnapNumberPayload{WindowID: windowID, Number: n}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Navigate moves a window to its neighbor zone in the given direction
func (c *Client) Navigate(windowID, direction string) (bool, error) {
	var res NavigateResult
	if err := c.call(CommandNavigate, NavigatePayload{WindowID: windowID, Direction: direction}, &res); err != nil {
		return false, err
	}
	return res.Moved, nil
}

// ToggleFloat floats or re-snaps a window
func (c *Client) ToggleFloat(windowID string) (*SnapResult, error) {
	var res SnapResult
	if err := c.call(CommandToggleFloat, WindowPayload{WindowID: windowID}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// QueryWindow retrieves a window's tracked zone state
func (c *Client) QueryWindow(windowID string) (*WindowZoneData, error) {
	var data WindowZoneData
	if err := c.call(CommandQueryWindow, WindowPayload{WindowID: windowID}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Occupants retrieves the zone occupancy of a layout
func (c *Client) Occupants(layoutID string) (*OccupantsData, error) {
	var data OccupantsData
	if err := c.call(CommandOccupants, LayoutPayload{LayoutID: layoutID}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}
