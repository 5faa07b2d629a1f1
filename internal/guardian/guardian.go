package guardian

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dockguard/dockguard/internal/platform"
)

// BarrierState is the guardian's read-only view of the barrier. The
// guardian never computes barrier geometry itself; it polices whatever
// the controller last applied.
type BarrierState interface {
	BarrierVisible() bool
	BarrierFrame() platform.Rect
}

// Correction describes one applied window shrink.
type Correction struct {
	Window    platform.WindowID
	Class     string
	Title     string
	Overlap   int
	OldHeight int
	NewHeight int
	At        time.Time
}

// Config holds guardian tuning.
type Config struct {
	Interval         time.Duration
	OverlapTolerance int
	MinWindowHeight  int
	ExemptClasses    []string
	Logger           *slog.Logger

	// OnCorrection, when set, is invoked after every applied shrink.
	// It runs on the guardian's goroutine; slow consumers should hand
	// the event off.
	OnCorrection func(Correction)
}

// Guardian polls the focused window and shrinks it when its bottom
// edge crosses into the barrier. Each pass is stateless: nothing is
// remembered about a window between ticks, failures are silent skips
// retried on the next tick, and windows are only ever shrunk, never
// moved or grown.
type Guardian struct {
	backend      platform.Backend
	state        BarrierState
	logger       *slog.Logger
	interval     time.Duration
	onCorrection func(Correction)

	mu        sync.RWMutex
	tolerance int
	minHeight int
	exempt    map[string]bool

	paused      atomic.Bool
	ticks       atomic.Uint64
	corrections atomic.Uint64

	lastMu         sync.Mutex
	lastCorrection time.Time
}

// Stats is a point-in-time snapshot of guardian counters.
type Stats struct {
	Ticks          uint64
	Corrections    uint64
	LastCorrection time.Time
	Paused         bool
}

// New creates a guardian. Tolerance, floor and exemptions come from
// cfg verbatim; only a non-positive interval falls back to a default.
func New(cfg Config, backend platform.Backend, state BarrierState) *Guardian {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Guardian{
		backend:      backend,
		state:        state,
		logger:       logger,
		interval:     interval,
		onCorrection: cfg.OnCorrection,
		tolerance:    cfg.OverlapTolerance,
		minHeight:    cfg.MinWindowHeight,
		exempt:       exemptSet(cfg.ExemptClasses),
	}
}

// Run starts the polling loop. Blocks until context is cancelled.
func (g *Guardian) Run(ctx context.Context) {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	g.logger.Info("guardian started", "interval", g.interval)

	for {
		select {
		case <-ctx.Done():
			g.logger.Info("guardian stopped")
			return
		case <-ticker.C:
			g.tick()
		}
	}
}

// TickNow runs a single pass outside the regular cadence.
func (g *Guardian) TickNow() {
	g.tick()
}

// tick performs a single enforcement pass.
func (g *Guardian) tick() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			g.logger.Error("guardian panic recovered", "error", err)
		}
	}()

	g.ticks.Add(1)

	if g.paused.Load() || !g.state.BarrierVisible() {
		return
	}

	id, err := g.backend.ActiveWindow()
	if err != nil {
		// Nothing focused, or the query failed; try again next tick.
		return
	}

	class, err := g.backend.WindowClass(id)
	if err != nil {
		return
	}
	if g.isExempt(class) {
		// Desktop shells and file managers paint desktop-sized
		// windows that legitimately extend under the barrier. They
		// are skipped before any geometry is read.
		return
	}

	if !g.backend.IsNormalWindow(id) {
		return
	}

	win, err := g.backend.WindowInfo(id)
	if err != nil {
		return
	}

	barrier := g.state.BarrierFrame()

	// Windows on other displays are not candidates: the horizontal
	// center must fall within the barrier's span.
	centerX := win.Bounds.X + win.Bounds.Width/2
	if centerX < barrier.X || centerX >= barrier.X+barrier.Width {
		return
	}

	// The barrier's top edge is the line window bottoms must stay
	// above.
	overlap := win.Bounds.MaxY() - barrier.Y
	tolerance, minHeight := g.thresholds()
	if overlap <= tolerance {
		return
	}

	newHeight := win.Bounds.Height - overlap
	if newHeight <= minHeight {
		// Correcting would leave an unusably small window; better to
		// tolerate the overlap than to crush the window.
		g.logger.Debug("guardian: correction skipped at height floor",
			"window", win.ID, "class", class, "overlap", overlap, "height", win.Bounds.Height)
		return
	}

	// Height-only write. A failed write is ignored; the window still
	// overlaps, so the next tick retries.
	if err := g.backend.ResizeWindow(id, win.Bounds.Width, newHeight); err != nil {
		g.logger.Debug("guardian: resize failed", "window", win.ID, "error", err)
		return
	}

	g.corrections.Add(1)
	now := time.Now()
	g.lastMu.Lock()
	g.lastCorrection = now
	g.lastMu.Unlock()

	g.logger.Info("guardian: window corrected",
		"window", win.ID, "class", class,
		"overlap", overlap, "old_height", win.Bounds.Height, "new_height", newHeight)

	if g.onCorrection != nil {
		g.onCorrection(Correction{
			Window:    win.ID,
			Class:     class,
			Title:     win.Title,
			Overlap:   overlap,
			OldHeight: win.Bounds.Height,
			NewHeight: newHeight,
			At:        now,
		})
	}
}

// SetPaused toggles enforcement without stopping the loop.
func (g *Guardian) SetPaused(paused bool) {
	g.paused.Store(paused)
	if paused {
		g.logger.Info("guardian paused")
	} else {
		g.logger.Info("guardian resumed")
	}
}

// Paused reports whether enforcement is suspended.
func (g *Guardian) Paused() bool {
	return g.paused.Load()
}

// UpdateConfig applies new thresholds and exemptions. The poll
// interval is fixed at Run time and is not changed here.
func (g *Guardian) UpdateConfig(cfg Config) {
	g.mu.Lock()
	g.tolerance = cfg.OverlapTolerance
	g.minHeight = cfg.MinWindowHeight
	g.exempt = exemptSet(cfg.ExemptClasses)
	g.mu.Unlock()
}

// Stats returns a snapshot of the guardian's counters.
func (g *Guardian) Stats() Stats {
	g.lastMu.Lock()
	last := g.lastCorrection
	g.lastMu.Unlock()

	return Stats{
		Ticks:          g.ticks.Load(),
		Corrections:    g.corrections.Load(),
		LastCorrection: last,
		Paused:         g.paused.Load(),
	}
}

func (g *Guardian) thresholds() (tolerance, minHeight int) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.tolerance, g.minHeight
}

func (g *Guardian) isExempt(class string) bool {
	if class == "" {
		return false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.exempt[strings.ToLower(class)]
}

func exemptSet(classes []string) map[string]bool {
	set := make(map[string]bool, len(classes))
	for _, class := range classes {
		class = strings.ToLower(strings.TrimSpace(class))
		if class != "" {
			set[class] = true
		}
	}
	return set
}
