package x11

import (
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// _NET_MOVERESIZE_WINDOW flag bits: gravity occupies the low byte,
// bits 8-11 mark which of x/y/width/height are supplied, bits 12-15
// carry the source indication (2 = pager/tool).
const (
	moveResizeFlagWidth  = 1 << 10
	moveResizeFlagHeight = 1 << 11
	moveResizeSourceTool = 2 << 12
)

// GetActiveWindow returns the currently focused top-level window
func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// WindowClass returns the window's WM_CLASS class name. Results are
// cached per window id; WM_CLASS does not change after mapping.
func (c *Connection) WindowClass(windowID xproto.Window) (string, error) {
	if class, ok := c.classCache.Get(windowID); ok {
		return class, nil
	}
	wmClass, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return "", err
	}
	class := strings.TrimSpace(wmClass.Class)
	c.classCache.Add(windowID, class)
	return class, nil
}

// WindowTitle returns the window title, preferring the EWMH name over
// the legacy ICCCM one
func (c *Connection) WindowTitle(windowID xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.XUtil, windowID); err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	if title, err := icccm.WmNameGet(c.XUtil, windowID); err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	return ""
}

// WindowPID returns the process id advertised by the window, or 0
func (c *Connection) WindowPID(windowID xproto.Window) int {
	if pid, err := ewmh.WmPidGet(c.XUtil, windowID); err == nil {
		return int(pid)
	}
	return 0
}

// WindowGeometry returns the window's position and size in root
// coordinates. Position comes from TranslateCoordinates because the
// raw geometry is relative to the window manager's frame.
func (c *Connection) WindowGeometry(windowID xproto.Window) (x, y, width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}

	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), nil
}

// ResizeWindow changes only the window's size, leaving its position to
// the window manager. Vertically maximized windows have that state
// cleared first or the height change would be ignored; the horizontal
// state is left alone since the width is preserved.
func (c *Connection) ResizeWindow(windowID xproto.Window, width, height int) error {
	c.clearVerticalMaximize(windowID)

	flags := moveResizeFlagWidth | moveResizeFlagHeight | moveResizeSourceTool
	err := ewmh.ClientEvent(c.XUtil, windowID, "_NET_MOVERESIZE_WINDOW",
		flags, 0, 0, width, height)
	if err != nil {
		// Fallback to configuring the window directly
		mask := uint16(xproto.ConfigWindowWidth | xproto.ConfigWindowHeight)
		values := []uint32{uint32(width), uint32(height)}
		return xproto.ConfigureWindowChecked(c.XUtil.Conn(), windowID, mask, values).Check()
	}
	return nil
}

// clearVerticalMaximize removes _NET_WM_STATE_MAXIMIZED_VERT if set
func (c *Connection) clearVerticalMaximize(windowID xproto.Window) {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_MAXIMIZED_VERT" {
			ewmh.WmStateReq(c.XUtil, windowID, 0, "_NET_WM_STATE_MAXIMIZED_VERT")
			return
		}
	}
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	// Check for normal window type
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_NORMAL" {
			return true
		}
		// Reject desktop, dock, splash, etc.
		if t == "_NET_WM_WINDOW_TYPE_DESKTOP" ||
			t == "_NET_WM_WINDOW_TYPE_DOCK" ||
			t == "_NET_WM_WINDOW_TYPE_SPLASH" ||
			t == "_NET_WM_WINDOW_TYPE_NOTIFICATION" {
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}
