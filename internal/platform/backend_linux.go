//go:build linux

package platform

import (
	"fmt"
	"strconv"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/zonetile/internal/geometry"
	"github.com/1broseidon/zonetile/internal/x11"
)

// LinuxCompositor implements Compositor over an X11 connection. Window
// ids are xproto window ids rendered as decimal strings.
type LinuxCompositor struct {
	conn *x11.Connection
}

var _ Compositor = (*LinuxCompositor)(nil)

// NewLinuxCompositor wraps an existing X11 connection.
func NewLinuxCompositor(conn *x11.Connection) *LinuxCompositor {
	return &LinuxCompositor{conn: conn}
}

// NewLinuxCompositorFromDisplay opens a fresh X11 connection.
func NewLinuxCompositorFromDisplay() (*LinuxCompositor, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxCompositor{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxCompositor) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// Connection returns the underlying X11 connection for hotkey binding.
func (b *LinuxCompositor) Connection() *x11.Connection {
	return b.conn
}

func windowIDString(w xproto.Window) string {
	return strconv.FormatUint(uint64(w), 10)
}

func parseWindowID(id string) (xproto.Window, error) {
	v, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid window id %q: %w", id, err)
	}
	return xproto.Window(v), nil
}

// Screens returns all monitors with their usable work areas.
func (b *LinuxCompositor) Screens() ([]Screen, error) {
	monitors, err := b.conn.GetUsableMonitors()
	if err != nil {
		return nil, err
	}
	screens := make([]Screen, len(monitors))
	for i, m := range monitors {
		screens[i] = Screen{
			ID:   m.Name,
			Area: geometry.Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height},
		}
	}
	return screens, nil
}

// ActiveContext returns the active screen and virtual desktop. X11 has
// no activity concept, so Activity stays empty.
func (b *LinuxCompositor) ActiveContext() (Context, error) {
	monitors, err := b.conn.GetUsableMonitors()
	if err != nil {
		return Context{}, err
	}
	mon := b.conn.ActiveMonitor(monitors)
	if mon == nil {
		return Context{}, fmt.Errorf("no active monitor")
	}

	ctx := Context{ScreenID: mon.Name}
	if desktop, err := b.conn.GetCurrentDesktop(); err == nil {
		ctx.Desktop = strconv.Itoa(desktop)
	}
	return ctx, nil
}

// ActiveWindow returns the focused window id.
func (b *LinuxCompositor) ActiveWindow() (string, error) {
	win, err := b.conn.GetActiveWindow()
	if err != nil {
		return "", fmt.Errorf("failed to get active window: %w", err)
	}
	if win == 0 {
		return "", fmt.Errorf("no active window")
	}
	return windowIDString(win), nil
}

// ListWindows returns the ids of all normal application windows.
func (b *LinuxCompositor) ListWindows() ([]string, error) {
	wins, err := b.conn.ListNormalWindows()
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(wins))
	for i, w := range wins {
		ids[i] = windowIDString(w)
	}
	return ids, nil
}

// WindowGeometry returns a window's root-relative geometry.
func (b *LinuxCompositor) WindowGeometry(windowID string) (geometry.Rect, error) {
	win, err := parseWindowID(windowID)
	if err != nil {
		return geometry.Rect{}, err
	}
	x, y, w, h, err := b.conn.GetWindowGeometry(win)
	if err != nil {
		return geometry.Rect{}, err
	}
	return geometry.Rect{X: x, Y: y, Width: w, Height: h}, nil
}

// Apply moves and resizes a window to the target rectangle.
func (b *LinuxCompositor) Apply(windowID string, r geometry.Rect) error {
	win, err := parseWindowID(windowID)
	if err != nil {
		return err
	}
	return b.conn.MoveResizeWindow(win, r.X, r.Y, r.Width, r.Height)
}

// Focus activates and raises a window.
func (b *LinuxCompositor) Focus(windowID string) error {
	win, err := parseWindowID(windowID)
	if err != nil {
		return err
	}
	return b.conn.FocusWindow(win)
}

// Pointer returns one pointer sample. The shift modifier doubles as the
// span-selection modifier.
func (b *LinuxCompositor) Pointer() (PointerState, error) {
	info, err := b.conn.QueryPointer()
	if err != nil {
		return PointerState{}, err
	}
	return PointerState{
		Pos:          geometry.Point{X: info.X, Y: info.Y},
		ButtonDown:   info.Button1,
		SpanModifier: info.Shift,
	}, nil
}
