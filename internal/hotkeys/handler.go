package hotkeys

import (
	"fmt"
	"log"
	"strconv"
	"sync"

	"github.com/1broseidon/zonetile/internal/engine"
	"github.com/1broseidon/zonetile/internal/platform"
	"github.com/1broseidon/zonetile/internal/x11"
	"github.com/1broseidon/zonetile/internal/zone"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// x11Accessor is an optional interface for backends that expose X11
// internals.
type x11Accessor interface {
	Connection() *x11.Connection
}

// Bindings are the key sequences registered as global hotkeys. Empty
// sequences are skipped.
type Bindings struct {
	NavigateLeft  string
	NavigateRight string
	NavigateUp    string
	NavigateDown  string
	ToggleFloat   string
	// SnapPrefix is combined with digits 1-9 to snap the focused
	// window to a numbered zone, e.g. "mod4-" registers mod4-1..mod4-9.
	SnapPrefix string
}

// DefaultBindings returns the stock super-key bindings.
func DefaultBindings() Bindings {
	return Bindings{
		NavigateLeft:  "mod4-shift-left",
		NavigateRight: "mod4-shift-right",
		NavigateUp:    "mod4-shift-up",
		NavigateDown:  "mod4-shift-down",
		ToggleFloat:   "mod4-shift-f",
		SnapPrefix:    "mod4-",
	}
}

// Handler manages global keyboard shortcuts.
type Handler struct {
	xu   *xgbutil.XUtil
	root xproto.Window
	eng  *engine.Engine
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler. The compositor must expose X11
// internals; otherwise hotkeys are unavailable.
func NewHandler(comp platform.Compositor, eng *engine.Engine) (*Handler, error) {
	accessor, ok := comp.(x11Accessor)
	if !ok {
		return nil, fmt.Errorf("compositor does not expose X11 internals")
	}
	conn := accessor.Connection()

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(conn.XUtil)
	})

	return &Handler{
		xu:   conn.XUtil,
		root: conn.Root,
		eng:  eng,
	}, nil
}

// RegisterAll registers every non-empty binding.
func (h *Handler) RegisterAll(b Bindings) error {
	dirs := []struct {
		seq string
		dir zone.Direction
	}{
		{b.NavigateLeft, zone.DirLeft},
		{b.NavigateRight, zone.DirRight},
		{b.NavigateUp, zone.DirUp},
		{b.NavigateDown, zone.DirDown},
	}
	for _, d := range dirs {
		if d.seq == "" {
			continue
		}
		dir := d.dir
		if err := h.RegisterFunc(d.seq, func() { h.navigate(dir) }); err != nil {
			return fmt.Errorf("bind %q: %w", d.seq, err)
		}
	}
	if b.ToggleFloat != "" {
		if err := h.RegisterFunc(b.ToggleFloat, h.toggleFloat); err != nil {
			return fmt.Errorf("bind %q: %w", b.ToggleFloat, err)
		}
	}
	if b.SnapPrefix != "" {
		for n := 1; n <= 9; n++ {
			num := n
			seq := b.SnapPrefix + strconv.Itoa(n)
			if err := h.RegisterFunc(seq, func() { h.snapNumber(num) }); err != nil {
				return fmt.Errorf("bind %q: %w", seq, err)
			}
		}
	}
	return nil
}

func (h *Handler) navigate(dir zone.Direction) {
	win, err := h.eng.ActiveWindow()
	if err != nil || win == "" {
		return
	}
	moved, err := h.eng.Navigate(win, dir)
	if err != nil {
		log.Printf("Navigate %s failed: %v", dir, err)
		return
	}
	if !moved {
		log.Printf("No zone %s of current one", dir)
	}
}

func (h *Handler) toggleFloat() {
	win, err := h.eng.ActiveWindow()
	if err != nil || win == "" {
		return
	}
	if _, err := h.eng.ToggleFloat(win); err != nil {
		log.Printf("Toggle float failed: %v", err)
	}
}

func (h *Handler) snapNumber(n int) {
	win, err := h.eng.ActiveWindow()
	if err != nil || win == "" {
		return
	}
	if _, err := h.eng.SnapToZoneNumber(win, n); err != nil {
		log.Printf("Snap to zone %d failed: %v", n, err)
	}
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
