//go:build linux

package platform

import (
	"fmt"

	"github.com/dockguard/dockguard/internal/x11"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// StopEventLoop asks a running event loop to return.
func (b *LinuxBackend) StopEventLoop() {
	if b != nil && b.conn != nil {
		b.conn.StopEventLoop()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// Connection returns the underlying X11 connection.
func (b *LinuxBackend) Connection() *x11.Connection {
	if b == nil {
		return nil
	}
	return b.conn
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// SubscribeDisplayChanges registers a callback for display topology changes.
func (b *LinuxBackend) SubscribeDisplayChanges(onChange func()) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.SubscribeDisplayChanges(onChange)
}

// Capabilities probes the window manager's advertised EWMH support.
func (b *LinuxBackend) Capabilities() (*x11.Capabilities, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	return conn.QueryCapabilities()
}

// Displays returns all active displays, primary first, with the usable
// area of each computed from dock struts.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		usable := conn.UsableArea(m)
		displays = append(displays, Display{
			ID:      m.ID,
			Name:    m.Name,
			Primary: m.Primary,
			Bounds:  Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height},
			Usable:  Rect{X: usable.X, Y: usable.Y, Width: usable.Width, Height: usable.Height},
		})
	}

	return displays, nil
}

// ActiveWindow returns the currently active/focused window ID.
func (b *LinuxBackend) ActiveWindow() (WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}

	wid, err := conn.GetActiveWindow()
	if err != nil {
		return 0, err
	}
	if wid == 0 {
		return 0, fmt.Errorf("no active window")
	}
	return WindowID(wid), nil
}

// WindowClass returns the window's WM_CLASS class name.
func (b *LinuxBackend) WindowClass(id WindowID) (string, error) {
	conn, err := b.connection()
	if err != nil {
		return "", err
	}
	return conn.WindowClass(xproto.Window(id))
}

// WindowInfo returns metadata and root-space geometry for a window.
func (b *LinuxBackend) WindowInfo(id WindowID) (Window, error) {
	conn, err := b.connection()
	if err != nil {
		return Window{}, err
	}

	wid := xproto.Window(id)
	x, y, width, height, err := conn.WindowGeometry(wid)
	if err != nil {
		return Window{}, fmt.Errorf("window geometry unavailable: %w", err)
	}

	class, _ := conn.WindowClass(wid)

	return Window{
		ID:     id,
		PID:    conn.WindowPID(wid),
		Class:  class,
		Title:  conn.WindowTitle(wid),
		Bounds: Rect{X: x, Y: y, Width: width, Height: height},
	}, nil
}

// ResizeWindow changes a window's size, leaving its position alone.
func (b *LinuxBackend) ResizeWindow(id WindowID, width, height int) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.ResizeWindow(xproto.Window(id), width, height)
}

// IsNormalWindow reports whether the window is an ordinary application window.
func (b *LinuxBackend) IsNormalWindow(id WindowID) bool {
	if b == nil || b.conn == nil {
		return false
	}
	return b.conn.IsNormalWindow(xproto.Window(id))
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}
