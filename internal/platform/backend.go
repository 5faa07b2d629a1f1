package platform

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in root coordinates (origin
// top-left, y grows downward).
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// MaxY returns the rectangle's bottom edge.
func (r Rect) MaxY() int {
	return r.Y + r.Height
}

// Display describes a physical display. Bounds is the full frame;
// Usable excludes regions reserved by panels and docks.
type Display struct {
	ID      int
	Name    string
	Primary bool
	Bounds  Rect
	Usable  Rect
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID     WindowID
	PID    int
	Class  string
	Title  string
	Bounds Rect
}

// Backend abstracts the window-system operations the daemon needs.
// Implementations must tolerate stale window ids: every method may be
// called with a window that has since closed and should return an
// error rather than panic.
type Backend interface {
	// Displays enumerates attached displays, primary first.
	Displays() ([]Display, error)

	// ActiveWindow returns the focused top-level window.
	ActiveWindow() (WindowID, error)

	// WindowClass returns the window's application class.
	WindowClass(id WindowID) (string, error)

	// WindowInfo returns the window's metadata and root-space bounds.
	WindowInfo(id WindowID) (Window, error)

	// ResizeWindow changes a window's size without moving it.
	ResizeWindow(id WindowID, width, height int) error

	// IsNormalWindow reports whether the window is an ordinary
	// application window rather than a desktop, dock or popup.
	IsNormalWindow(id WindowID) bool
}
