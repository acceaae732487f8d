package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

// PointerInfo is one pointer sample with the button and modifier state
// relevant to drag tracking.
type PointerInfo struct {
	X       int
	Y       int
	Button1 bool
	Shift   bool
}

// QueryPointer returns the pointer position in root coordinates plus
// the primary-button and shift-modifier state from the same reply, so
// position and modifiers are always consistent within a sample.
func (c *Connection) QueryPointer() (PointerInfo, error) {
	reply, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return PointerInfo{}, fmt.Errorf("failed to query pointer: %w", err)
	}
	return PointerInfo{
		X:       int(reply.RootX),
		Y:       int(reply.RootY),
		Button1: reply.Mask&xproto.ButtonMask1 != 0,
		Shift:   reply.Mask&xproto.KeyButMaskShift != 0,
	}, nil
}
