package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// SubscribeDisplayChanges arranges for onChange to run from the event
// loop whenever the display topology changes: outputs appearing or
// disappearing, CRTCs reconfiguring, resolutions switching. The
// callback carries no payload; subscribers re-enumerate monitors
// themselves. Must be called before EventLoop.
func (c *Connection) SubscribeDisplayChanges(onChange func()) error {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return fmt.Errorf("randr init failed: %w", err)
	}

	mask := randr.NotifyMaskScreenChange |
		randr.NotifyMaskCrtcChange |
		randr.NotifyMaskOutputChange
	if err := randr.SelectInputChecked(c.XUtil.Conn(), c.Root, uint16(mask)).Check(); err != nil {
		return fmt.Errorf("randr select input failed: %w", err)
	}

	// RandR events are extension events, which the dispatch tables
	// don't know about; a hook sees every event before dispatch.
	xevent.HookFun(func(xu *xgbutil.XUtil, event interface{}) bool {
		switch event.(type) {
		case randr.ScreenChangeNotifyEvent, randr.NotifyEvent:
			onChange()
		}
		return true
	}).Connect(c.XUtil)

	// Root ConfigureNotify fires when the combined screen geometry
	// changes, covering servers that drop RandR notifications.
	root := xwindow.New(c.XUtil, c.Root)
	if err := root.Listen(xproto.EventMaskStructureNotify); err == nil {
		xevent.ConfigureNotifyFun(func(xu *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
			onChange()
		}).Connect(c.XUtil, c.Root)
	}

	return nil
}
