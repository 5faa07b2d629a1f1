package surface

import (
	"github.com/dockguard/dockguard/internal/platform"

	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// Barrier tints
const (
	ColorBarrier   = 0x1f2933 // Dark slate - resting barrier
	ColorHighlight = 0xe67e22 // Orange - debug visualization
)

// Surface is the single barrier window: an override-redirect X window
// that bypasses the window manager, stays above normal windows and
// survives desktop switches. It is created once, at 1x1 and unmapped,
// and lives until Destroy at process exit; geometry changes and
// visibility toggles reuse the same window so the barrier never
// flickers through a destroy/create cycle.
//
// Surface is not safe for concurrent use; the owning controller
// serializes access.
type Surface struct {
	xu   *xgbutil.XUtil
	root xproto.Window

	wid     xproto.Window
	created bool
	mapped  bool
	frame   platform.Rect
	tint    uint32
}

// New creates the barrier window. The window starts hidden; callers
// position it with SetFrame and reveal it with Show.
func New(xu *xgbutil.XUtil, root xproto.Window) (*Surface, error) {
	s := &Surface{
		xu:   xu,
		root: root,
		tint: ColorBarrier,
	}
	if err := s.create(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Surface) create() error {
	conn := s.xu.Conn()
	screen := s.xu.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return err
	}

	// Create window with override_redirect=true
	// This makes it bypass the window manager
	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		s.root,
		0, 0, // x, y (positioned later by SetFrame)
		1, 1, // width, height (sized later by SetFrame)
		0, // border_width
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwOverrideRedirect|xproto.CwBackPixel,
		// Value list order follows the bit positions of the mask (low -> high).
		// CwBackPixel comes before CwOverrideRedirect, so it must be first.
		[]uint32{s.tint, 1},
	).Check()
	if err != nil {
		return err
	}

	s.wid = wid
	s.created = true
	s.passThroughInput()
	return nil
}

// passThroughInput gives the window an empty input region so clicks
// land on whatever sits underneath. Best effort: without the SHAPE
// extension the barrier still renders, it just swallows clicks.
func (s *Surface) passThroughInput() {
	conn := s.xu.Conn()
	if err := shape.Init(conn); err != nil {
		return
	}
	shape.RectanglesChecked(
		conn,
		shape.SoSet,
		shape.SkInput,
		0, // ordering: unsorted
		s.wid,
		0, 0,
		[]xproto.Rectangle{},
	).Check()
}

// SetFrame moves and resizes the barrier window, restacking it above
// normal windows. The frame is applied even while hidden so the next
// Show reveals current geometry.
func (s *Surface) SetFrame(frame platform.Rect) {
	if !s.created {
		return
	}

	// Ensure minimum dimensions
	width, height := frame.Width, frame.Height
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	xproto.ConfigureWindow(
		s.xu.Conn(),
		s.wid,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
		[]uint32{
			uint32(frame.X),
			uint32(frame.Y),
			uint32(width),
			uint32(height),
			xproto.StackModeAbove, // Keep on top
		},
	)
	s.frame = frame
}

// SetTint recolors the barrier window
func (s *Surface) SetTint(color uint32) {
	if !s.created {
		return
	}
	conn := s.xu.Conn()
	xproto.ChangeWindowAttributes(conn, s.wid, xproto.CwBackPixel, []uint32{color})
	// Clear window to show new color
	xproto.ClearArea(conn, false, s.wid, 0, 0, 0, 0)
	s.tint = color
}

// Show maps the barrier window. Showing an already-visible surface is
// a no-op.
func (s *Surface) Show() {
	if !s.created || s.mapped {
		return
	}
	conn := s.xu.Conn()
	xproto.MapWindow(conn, s.wid)
	// Restack: the map may have placed it below a recent window.
	xproto.ConfigureWindow(conn, s.wid,
		xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeAbove},
	)
	s.mapped = true
}

// Hide unmaps the barrier window without destroying it
func (s *Surface) Hide() {
	if !s.created || !s.mapped {
		return
	}
	xproto.UnmapWindow(s.xu.Conn(), s.wid)
	s.mapped = false
}

// Visible reports whether the barrier window is currently mapped
func (s *Surface) Visible() bool {
	return s.mapped
}

// Frame returns the last applied geometry
func (s *Surface) Frame() platform.Rect {
	return s.frame
}

// Tint returns the current color
func (s *Surface) Tint() uint32 {
	return s.tint
}

// Destroy releases the barrier window. Only called at shutdown.
func (s *Surface) Destroy() {
	if !s.created {
		return
	}
	xproto.DestroyWindow(s.xu.Conn(), s.wid)
	s.wid = 0
	s.created = false
	s.mapped = false
}
