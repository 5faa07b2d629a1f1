package daemon

import (
	"log/slog"
	"math"
	"sync"

	"github.com/dockguard/dockguard/internal/barrier"
	"github.com/dockguard/dockguard/internal/platform"
	"github.com/dockguard/dockguard/internal/surface"
)

// Surface is the overlay the controller drives. *surface.Surface
// satisfies it; tests substitute a recorder.
type Surface interface {
	SetFrame(frame platform.Rect)
	SetTint(color uint32)
	Show()
	Hide()
	Visible() bool
}

// Snapshot is a point-in-time view of controller state for status
// reporting.
type Snapshot struct {
	Active    bool
	Visible   bool
	Frame     platform.Rect
	Highlight bool
	Displays  int
}

// Controller owns the barrier surface and the last computed barrier.
// It is the single writer of surface state; the debounce scheduler,
// IPC, hotkeys and the tray all funnel through it.
type Controller struct {
	backend platform.Backend
	surface Surface
	logger  *slog.Logger

	mu           sync.Mutex
	params       barrier.Params
	last         barrier.Barrier
	frame        platform.Rect
	displayCount int
	highlight    bool

	// OnTopology, when set, is invoked after every recomputation with
	// the display count and resulting barrier. Called outside the
	// controller lock; slow consumers should hand the event off.
	OnTopology func(displays int, b barrier.Barrier)
}

// NewController creates a controller over the given backend and surface.
func NewController(backend platform.Backend, surf Surface, params barrier.Params, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		backend: backend,
		surface: surf,
		params:  params,
		logger:  logger,
	}
}

// Recompute enumerates displays, recomputes the barrier and applies it
// to the surface. Every failure path converges on a hidden barrier.
func (c *Controller) Recompute() {
	var computed barrier.Barrier
	displayCount := 0

	displays, err := c.backend.Displays()
	if err != nil {
		c.logger.Warn("display enumeration failed, hiding barrier", "error", err)
	} else {
		displayCount = len(displays)
		computed = barrier.Compute(toBarrierDisplays(displays), c.paramsCopy())
	}

	c.mu.Lock()
	c.apply(computed, displayCount)
	hook := c.OnTopology
	result := c.last
	c.mu.Unlock()

	if hook != nil {
		hook(displayCount, result)
	}
}

// apply pushes a computed barrier to the surface. Caller holds c.mu.
func (c *Controller) apply(b barrier.Barrier, displays int) {
	c.displayCount = displays
	c.last = b

	if !b.Active {
		c.surface.Hide()
		c.frame = platform.Rect{}
		c.logger.Info("barrier inactive", "displays", displays)
		return
	}

	frame := rectFromBarrier(b.Rect)
	c.surface.SetFrame(frame)
	c.surface.Show()
	c.frame = frame
	c.logger.Info("barrier updated",
		"x", frame.X, "y", frame.Y,
		"width", frame.Width, "height", frame.Height,
		"displays", displays)
}

// HideSurface hides the overlay without recomputing. The debounce
// scheduler calls this the moment a display change is signalled, so a
// stale barrier never lingers on a rearranged desktop.
func (c *Controller) HideSurface() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.surface.Hide()
}

// SetHighlight switches the overlay between the resting tint and the
// debug highlight tint.
func (c *Controller) SetHighlight(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.highlight == enabled {
		return
	}
	c.highlight = enabled

	tint := uint32(surface.ColorBarrier)
	if enabled {
		tint = surface.ColorHighlight
	}
	c.surface.SetTint(tint)
	c.logger.Info("debug highlight", "enabled", enabled)
}

// Highlight reports whether the debug tint is active.
func (c *Controller) Highlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.highlight
}

// UpdateParams swaps the calculator parameters. The caller is expected
// to follow up with Recompute.
func (c *Controller) UpdateParams(params barrier.Params) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params = params
}

// BarrierVisible reports whether the overlay is mapped. Part of the
// guardian's read interface.
func (c *Controller) BarrierVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surface.Visible()
}

// BarrierFrame returns the applied barrier rectangle in root
// coordinates. Part of the guardian's read interface.
func (c *Controller) BarrierFrame() platform.Rect {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame
}

// Snapshot returns the current controller state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Active:    c.last.Active,
		Visible:   c.surface.Visible(),
		Frame:     c.frame,
		Highlight: c.highlight,
		Displays:  c.displayCount,
	}
}

func (c *Controller) paramsCopy() barrier.Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

func toBarrierDisplays(displays []platform.Display) []barrier.Display {
	out := make([]barrier.Display, len(displays))
	for i, d := range displays {
		out[i] = barrier.Display{
			Name:    d.Name,
			Primary: d.Primary,
			Frame:   floatRect(d.Bounds),
			Visible: floatRect(d.Usable),
		}
	}
	return out
}

func floatRect(r platform.Rect) barrier.Rect {
	return barrier.Rect{
		X:      float64(r.X),
		Y:      float64(r.Y),
		Width:  float64(r.Width),
		Height: float64(r.Height),
	}
}

func rectFromBarrier(r barrier.Rect) platform.Rect {
	return platform.Rect{
		X:      int(math.Round(r.X)),
		Y:      int(math.Round(r.Y)),
		Width:  int(math.Round(r.Width)),
		Height: int(math.Round(r.Height)),
	}
}
