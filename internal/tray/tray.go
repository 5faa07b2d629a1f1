package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"log"
	"time"

	"github.com/getlantern/systray"

	"github.com/dockguard/dockguard/internal/autostart"
)

// Controls are the daemon operations the tray menu drives. Pure
// presentation: every action delegates to the daemon controller.
type Controls interface {
	SetPaused(paused bool)
	Paused() bool
	SetHighlight(enabled bool)
	Highlight() bool
	Recompute()
}

// Run serves the tray menu until Quit is chosen or Stop is called.
// systray requires the main goroutine on Linux, so the caller runs the
// daemon's event loops in the background and parks main here.
func Run(controls Controls, onQuit func()) {
	systray.Run(func() { onReady(controls) }, onQuit)
}

// Stop dismisses the tray icon and unblocks Run.
func Stop() {
	systray.Quit()
}

func onReady(controls Controls) {
	systray.SetIcon(iconBytes())
	systray.SetTitle("dockguard")
	systray.SetTooltip("Dock barrier guardian")

	startEnabled, err := autostart.Enabled()
	if err != nil {
		log.Printf("Tray: autostart state unavailable: %v", err)
	}

	mPause := systray.AddMenuItemCheckbox("Pause Guardian", "Suspend window corrections", controls.Paused())
	mHighlight := systray.AddMenuItemCheckbox("Debug Highlight", "Tint the barrier strip", controls.Highlight())
	systray.AddSeparator()
	mRecompute := systray.AddMenuItem("Recompute Now", "Recompute the barrier immediately")
	mAutostart := systray.AddMenuItemCheckbox("Launch at Login", "Start the daemon with the session", startEnabled)
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Stop the daemon")

	go func() {
		// Hotkeys and IPC can flip the same switches, so resync the
		// checkboxes periodically.
		sync := time.NewTicker(2 * time.Second)
		defer sync.Stop()

		for {
			select {
			case <-mPause.ClickedCh:
				next := !controls.Paused()
				controls.SetPaused(next)
				setChecked(mPause, next)
			case <-mHighlight.ClickedCh:
				next := !controls.Highlight()
				controls.SetHighlight(next)
				setChecked(mHighlight, next)
			case <-mRecompute.ClickedCh:
				controls.Recompute()
			case <-mAutostart.ClickedCh:
				toggleAutostart(mAutostart)
			case <-sync.C:
				setChecked(mPause, controls.Paused())
				setChecked(mHighlight, controls.Highlight())
			case <-mQuit.ClickedCh:
				systray.Quit()
				return
			}
		}
	}()
}

func toggleAutostart(item *systray.MenuItem) {
	enabled, err := autostart.Enabled()
	if err != nil {
		log.Printf("Tray: autostart state unavailable: %v", err)
		return
	}

	if enabled {
		if err := autostart.Disable(); err != nil {
			log.Printf("Tray: failed to disable autostart: %v", err)
			return
		}
		item.Uncheck()
	} else {
		if err := autostart.Enable(); err != nil {
			log.Printf("Tray: failed to enable autostart: %v", err)
			return
		}
		item.Check()
	}
}

func setChecked(item *systray.MenuItem, checked bool) {
	if checked == item.Checked() {
		return
	}
	if checked {
		item.Check()
	} else {
		item.Uncheck()
	}
}

// iconBytes renders the tray icon: a dark panel with an amber strip
// along the bottom edge, echoing the barrier colors.
func iconBytes() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			c := color.RGBA{R: 0x1f, G: 0x29, B: 0x33, A: 0xff}
			if y >= 12 {
				c = color.RGBA{R: 0xe6, G: 0x7e, B: 0x22, A: 0xff}
			}
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}
