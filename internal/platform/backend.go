package platform

import "github.com/1broseidon/zonetile/internal/geometry"

// Screen describes one output and its available area in pixels.
type Screen struct {
	ID   string
	Area geometry.Rect
}

// Context is the runtime placement context used for layout resolution.
// Activity is empty on window systems without an activity concept.
type Context struct {
	ScreenID string
	Desktop  string
	Activity string
}

// PointerState is one pointer sample. SpanModifier reports whether the
// span modifier key is held.
type PointerState struct {
	Pos          geometry.Point
	ButtonDown   bool
	SpanModifier bool
}

// Compositor abstracts the window system. The engine computes
// rectangles; only this layer moves windows.
type Compositor interface {
	Screens() ([]Screen, error)
	ActiveContext() (Context, error)
	ActiveWindow() (string, error)
	ListWindows() ([]string, error)
	WindowGeometry(windowID string) (geometry.Rect, error)
	Apply(windowID string, r geometry.Rect) error
	Focus(windowID string) error
	Pointer() (PointerState, error)
}
