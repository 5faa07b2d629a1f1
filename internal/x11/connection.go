package x11

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// classCacheSize bounds the WM_CLASS lookup cache. The guardian reads
// the focused window's class twice a second, so even a small cache
// removes nearly every round trip.
const classCacheSize = 128

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	classCache *lru.Cache[xproto.Window, string]
}

// NewConnection establishes a connection to the X11 server and initializes required extensions
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	// Initialize keybind module (required for global hotkeys)
	keybind.Initialize(xu)

	cache, err := lru.New[xproto.Window, string](classCacheSize)
	if err != nil {
		xu.Conn().Close()
		return nil, err
	}

	return &Connection{
		XUtil:      xu,
		Root:       xu.RootWin(),
		classCache: cache,
	}, nil
}

// EventLoop starts the main X11 event loop (blocking)
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// StopEventLoop asks a running event loop to return
func (c *Connection) StopEventLoop() {
	xevent.Quit(c.XUtil)
}

// Screen returns the setup info for the default screen
func (c *Connection) Screen() *xproto.ScreenInfo {
	return c.XUtil.Screen()
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
