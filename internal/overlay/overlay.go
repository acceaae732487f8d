// Package overlay draws the zone highlight shown while a window is
// dragged: a border around every zone of the active layout, with the
// candidate zones in a stronger color and optional number badges.
package overlay

import (
	"strconv"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/1broseidon/zonetile/internal/geometry"
)

// Border colors
const (
	ColorZone      = 0x7f8c8d // Gray - idle zone outline
	ColorCandidate = 0x3498db // Blue - zone(s) the drop would land in
	ColorBadgeText = 0xf5f7fa
	ColorBadgeBg   = 0x1f2933
)

// Border thickness in pixels
const BorderThickness = 4

const (
	badgeWidth  = 28
	badgeHeight = 20
)

// ZoneBox is one zone to draw.
type ZoneBox struct {
	Rect      geometry.Rect
	Number    int
	Candidate bool
}

// borderOverlay represents a rectangular border made of 4 thin windows.
type borderOverlay struct {
	Top     xproto.Window
	Bottom  xproto.Window
	Left    xproto.Window
	Right   xproto.Window
	created bool
	mapped  bool
}

// numberBadge is a small text panel showing a zone's number.
type numberBadge struct {
	Window   xproto.Window
	GC       xproto.Gcontext
	Font     xproto.Font
	created  bool
	mapped   bool
	disabled bool
}

// Manager owns the overlay windows. Windows are created lazily and
// reused across drags.
type Manager struct {
	xu   *xgbutil.XUtil
	root xproto.Window

	borders []*borderOverlay
	badges  []*numberBadge
}

// NewManager creates an overlay manager drawing on the root window.
func NewManager(xu *xgbutil.XUtil, root xproto.Window) *Manager {
	return &Manager{
		xu:   xu,
		root: root,
	}
}

// Render draws a border for every zone. Candidate zones get the
// highlight color and are drawn last so they sit on top.
func (m *Manager) Render(zones []ZoneBox, showNumbers bool) error {
	if err := m.ensureBorders(len(zones)); err != nil {
		return err
	}

	idx := 0
	for _, z := range zones {
		if z.Candidate {
			continue
		}
		if err := m.showBorder(m.borders[idx], z.Rect, ColorZone); err != nil {
			return err
		}
		idx++
	}
	for _, z := range zones {
		if !z.Candidate {
			continue
		}
		if err := m.showBorder(m.borders[idx], z.Rect, ColorCandidate); err != nil {
			return err
		}
		idx++
	}

	if showNumbers {
		m.renderBadges(zones)
	} else {
		m.hideBadges()
	}
	return nil
}

// HideAll hides all overlays without destroying them.
func (m *Manager) HideAll() {
	for _, border := range m.borders {
		m.hideBorder(border)
	}
	m.hideBadges()
}

// Cleanup destroys all overlay windows.
func (m *Manager) Cleanup() {
	for _, border := range m.borders {
		m.destroyBorder(border)
	}
	m.borders = nil
	for _, badge := range m.badges {
		m.destroyBadge(badge)
	}
	m.badges = nil
}

func (m *Manager) ensureBorders(count int) error {
	if count <= len(m.borders) {
		for i := count; i < len(m.borders); i++ {
			m.hideBorder(m.borders[i])
		}
		return nil
	}
	for len(m.borders) < count {
		border := &borderOverlay{}
		if err := m.createBorderWindows(border); err != nil {
			return err
		}
		m.borders = append(m.borders, border)
	}
	return nil
}

// showBorder creates or updates a border around the given rectangle.
func (m *Manager) showBorder(border *borderOverlay, rect geometry.Rect, color uint32) error {
	if !border.created {
		if err := m.createBorderWindows(border); err != nil {
			return err
		}
	}

	x, y := rect.X, rect.Y
	w, h := rect.Width, rect.Height
	t := BorderThickness

	m.updateWindow(border.Top, x, y, w, t, color)
	m.updateWindow(border.Bottom, x, y+h-t, w, t, color)
	m.updateWindow(border.Left, x, y+t, t, h-2*t, color)
	m.updateWindow(border.Right, x+w-t, y+t, t, h-2*t, color)

	xproto.MapWindow(m.xu.Conn(), border.Top)
	xproto.MapWindow(m.xu.Conn(), border.Bottom)
	xproto.MapWindow(m.xu.Conn(), border.Left)
	xproto.MapWindow(m.xu.Conn(), border.Right)

	border.mapped = true
	return nil
}

func (m *Manager) hideBorder(border *borderOverlay) {
	if !border.mapped {
		return
	}
	xproto.UnmapWindow(m.xu.Conn(), border.Top)
	xproto.UnmapWindow(m.xu.Conn(), border.Bottom)
	xproto.UnmapWindow(m.xu.Conn(), border.Left)
	xproto.UnmapWindow(m.xu.Conn(), border.Right)
	border.mapped = false
}

func (m *Manager) destroyBorder(border *borderOverlay) {
	for _, wid := range []xproto.Window{border.Top, border.Bottom, border.Left, border.Right} {
		if wid != 0 {
			xproto.DestroyWindow(m.xu.Conn(), wid)
		}
	}
	border.Top = 0
	border.Bottom = 0
	border.Left = 0
	border.Right = 0
	border.created = false
	border.mapped = false
}

func (m *Manager) createBorderWindows(border *borderOverlay) error {
	var err error
	if border.Top, err = m.createOverrideRedirectWindow(); err != nil {
		return err
	}
	if border.Bottom, err = m.createOverrideRedirectWindow(); err != nil {
		return err
	}
	if border.Left, err = m.createOverrideRedirectWindow(); err != nil {
		return err
	}
	if border.Right, err = m.createOverrideRedirectWindow(); err != nil {
		return err
	}
	border.created = true
	return nil
}

// createOverrideRedirectWindow creates a single override-redirect
// window, bypassing the window manager.
func (m *Manager) createOverrideRedirectWindow() (xproto.Window, error) {
	conn := m.xu.Conn()
	screen := m.xu.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}

	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		m.root,
		0, 0, // x, y (updated on show)
		1, 1, // width, height (updated on show)
		0, // border_width
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwOverrideRedirect|xproto.CwBackPixel,
		// Value list order follows the bit positions of the mask.
		// CwBackPixel comes before CwOverrideRedirect, so it must be first.
		[]uint32{0, 1}, // back_pixel=black, override_redirect=true
	).Check()
	if err != nil {
		return 0, err
	}
	return wid, nil
}

// updateWindow moves, resizes, and recolors a window.
func (m *Manager) updateWindow(wid xproto.Window, x, y, width, height int, color uint32) {
	conn := m.xu.Conn()

	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	xproto.ConfigureWindow(
		conn,
		wid,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
		[]uint32{
			uint32(x),
			uint32(y),
			uint32(width),
			uint32(height),
			xproto.StackModeAbove,
		},
	)
	xproto.ChangeWindowAttributes(conn, wid, xproto.CwBackPixel, []uint32{color})
	xproto.ClearArea(conn, false, wid, 0, 0, 0, 0)
}

func (m *Manager) renderBadges(zones []ZoneBox) {
	numbered := zones[:0:0]
	for _, z := range zones {
		if z.Number > 0 {
			numbered = append(numbered, z)
		}
	}
	if len(numbered) == 0 {
		m.hideBadges()
		return
	}

	for len(m.badges) < len(numbered) {
		m.badges = append(m.badges, &numberBadge{})
	}
	for i := len(numbered); i < len(m.badges); i++ {
		m.hideBadge(m.badges[i])
	}

	for i, z := range numbered {
		m.showBadge(m.badges[i], z)
	}
}

func (m *Manager) showBadge(badge *numberBadge, z ZoneBox) {
	if !m.ensureBadgeResources(badge) {
		return
	}
	conn := m.xu.Conn()

	x := z.Rect.X + z.Rect.Width/2 - badgeWidth/2
	y := z.Rect.Y + z.Rect.Height/2 - badgeHeight/2

	xproto.ConfigureWindow(
		conn,
		badge.Window,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
		[]uint32{
			uint32(x),
			uint32(y),
			badgeWidth,
			badgeHeight,
			xproto.StackModeAbove,
		},
	)
	xproto.ChangeWindowAttributes(conn, badge.Window, xproto.CwBackPixel, []uint32{ColorBadgeBg})
	xproto.ClearArea(conn, false, badge.Window, 0, 0, 0, 0)

	label := strconv.Itoa(z.Number)
	xproto.ImageText8(
		conn,
		byte(len(label)),
		xproto.Drawable(badge.Window),
		badge.GC,
		int16(badgeWidth/2-len(label)*4),
		int16(badgeHeight-6),
		label,
	)

	xproto.MapWindow(conn, badge.Window)
	badge.mapped = true
}

func (m *Manager) ensureBadgeResources(badge *numberBadge) bool {
	if badge.disabled {
		return false
	}
	if badge.created {
		return true
	}

	conn := m.xu.Conn()

	window, err := m.createOverrideRedirectWindow()
	if err != nil {
		badge.disabled = true
		return false
	}

	font, err := xproto.NewFontId(conn)
	if err != nil {
		xproto.DestroyWindow(conn, window)
		badge.disabled = true
		return false
	}

	fontNames := []string{"fixed", "9x15", "8x13", "6x13"}
	opened := false
	for _, fontName := range fontNames {
		if xproto.OpenFontChecked(conn, font, uint16(len(fontName)), fontName).Check() == nil {
			opened = true
			break
		}
	}
	if !opened {
		xproto.DestroyWindow(conn, window)
		badge.disabled = true
		return false
	}

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		xproto.CloseFont(conn, font)
		xproto.DestroyWindow(conn, window)
		badge.disabled = true
		return false
	}

	err = xproto.CreateGCChecked(
		conn,
		gc,
		xproto.Drawable(window),
		xproto.GcForeground|xproto.GcBackground|xproto.GcFont|xproto.GcGraphicsExposures,
		[]uint32{
			ColorBadgeText,
			ColorBadgeBg,
			uint32(font),
			0, // graphics_exposures=false
		},
	).Check()
	if err != nil {
		xproto.FreeGC(conn, gc)
		xproto.CloseFont(conn, font)
		xproto.DestroyWindow(conn, window)
		badge.disabled = true
		return false
	}

	badge.Window = window
	badge.Font = font
	badge.GC = gc
	badge.created = true
	return true
}

func (m *Manager) hideBadges() {
	for _, badge := range m.badges {
		m.hideBadge(badge)
	}
}

func (m *Manager) hideBadge(badge *numberBadge) {
	if !badge.mapped {
		return
	}
	xproto.UnmapWindow(m.xu.Conn(), badge.Window)
	badge.mapped = false
}

func (m *Manager) destroyBadge(badge *numberBadge) {
	conn := m.xu.Conn()
	if badge.GC != 0 {
		xproto.FreeGC(conn, badge.GC)
	}
	if badge.Font != 0 {
		xproto.CloseFont(conn, badge.Font)
	}
	if badge.Window != 0 {
		xproto.DestroyWindow(conn, badge.Window)
	}
	badge.created = false
	badge.mapped = false
}
