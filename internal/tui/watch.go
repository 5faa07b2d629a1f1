package tui

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/dockguard/dockguard/internal/ipc"
)

// Client is the daemon surface the dashboard drives.
type Client interface {
	GetStatus() (*ipc.StatusData, error)
	GetDisplays() (*ipc.DisplaysData, error)
	Recompute() error
	SetPaused(paused bool) error
	SetHighlight(enabled, persist bool) error
}

// Watch is the live status dashboard behind `dockguard watch`.
type Watch struct {
	client   Client
	interval time.Duration

	status   *ipc.StatusData
	displays []ipc.DisplayInfo
	lastErr  string

	// Terminal state
	oldState *term.State
	width    int
	height   int
}

// New creates a new dashboard instance.
func New(client Client) *Watch {
	return &Watch{
		client:   client,
		interval: time.Second,
	}
}

// Run starts the dashboard main loop.
func (w *Watch) Run() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("watch requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	// Enter raw mode
	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	w.oldState = oldState
	defer w.restore()

	w.updateSize()
	w.refresh()
	w.render()

	// Keys arrive on their own goroutine so the poll ticker keeps the
	// view fresh while stdin is quiet.
	keys := make(chan []byte, 4)
	go func() {
		defer close(keys)
		buf := make([]byte, 32)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			keys <- chunk
		}
	}()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case input, ok := <-keys:
			if !ok {
				return nil
			}
			if w.handleInput(input) {
				return nil
			}
			w.render()
		case <-ticker.C:
			w.refresh()
			w.render()
		}
	}
}

func (w *Watch) restore() {
	if w.oldState != nil {
		term.Restore(int(os.Stdin.Fd()), w.oldState)
	}
	// Clear screen and show cursor on exit
	fmt.Print("\x1b[0m")   // reset
	fmt.Print("\x1b[?25h") // show cursor
	fmt.Print("\x1b[2J")   // clear screen
	fmt.Print("\x1b[H")    // home cursor
}

func (w *Watch) updateSize() {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		w.width = 80
		w.height = 24
		return
	}
	w.width = width
	w.height = height
}

func (w *Watch) refresh() {
	status, err := w.client.GetStatus()
	if err != nil {
		w.lastErr = err.Error()
		return
	}

	displays, err := w.client.GetDisplays()
	if err != nil {
		w.lastErr = err.Error()
		return
	}

	w.status = status
	w.displays = displays.Displays
	w.lastErr = ""
}

func (w *Watch) handleInput(input []byte) bool {
	for len(input) > 0 {
		// Swallow arrow keys and other CSI sequences
		if len(input) >= 3 && input[0] == 0x1b && input[1] == '[' {
			input = input[3:]
			continue
		}

		switch input[0] {
		case 'q', 0x1b: // q or Escape
			return true
		case 0x03: // Ctrl+C
			return true
		case 'p':
			w.togglePause()
		case 'b':
			w.toggleHighlight()
		case 'r':
			w.recompute()
		}

		input = input[1:]
	}

	return false
}

func (w *Watch) togglePause() {
	if w.status == nil {
		return
	}
	if err := w.client.SetPaused(!w.status.Paused); err != nil {
		w.lastErr = err.Error()
		return
	}
	w.refresh()
}

func (w *Watch) toggleHighlight() {
	if w.status == nil {
		return
	}
	if err := w.client.SetHighlight(!w.status.Highlight, false); err != nil {
		w.lastErr = err.Error()
		return
	}
	w.refresh()
}

func (w *Watch) recompute() {
	if err := w.client.Recompute(); err != nil {
		w.lastErr = err.Error()
		return
	}
	w.refresh()
}
