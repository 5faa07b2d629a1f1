package guardian

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/dockguard/dockguard/internal/platform"
)

type fakeBackend struct {
	active    platform.WindowID
	activeErr error
	class     string
	classErr  error
	window    platform.Window
	windowErr error
	normal    bool
	resizeErr error

	activeCalls   int
	classCalls    int
	infoCalls     int
	resizeCalls   int
	resizedWidth  int
	resizedHeight int
}

func (f *fakeBackend) Displays() ([]platform.Display, error) { return nil, nil }

func (f *fakeBackend) ActiveWindow() (platform.WindowID, error) {
	f.activeCalls++
	return f.active, f.activeErr
}

func (f *fakeBackend) WindowClass(id platform.WindowID) (string, error) {
	f.classCalls++
	return f.class, f.classErr
}

func (f *fakeBackend) WindowInfo(id platform.WindowID) (platform.Window, error) {
	f.infoCalls++
	return f.window, f.windowErr
}

func (f *fakeBackend) ResizeWindow(id platform.WindowID, width, height int) error {
	f.resizeCalls++
	f.resizedWidth = width
	f.resizedHeight = height
	return f.resizeErr
}

func (f *fakeBackend) IsNormalWindow(id platform.WindowID) bool { return f.normal }

type fakeState struct {
	visible bool
	frame   platform.Rect
}

func (s *fakeState) BarrierVisible() bool        { return s.visible }
func (s *fakeState) BarrierFrame() platform.Rect { return s.frame }

// testBarrier is an 80px strip at the bottom of a 1000px-tall display:
// its top edge sits at y=920.
var testBarrier = platform.Rect{X: 0, Y: 920, Width: 1000, Height: 80}

func newTestGuardian(backend *fakeBackend, state *fakeState) *Guardian {
	return New(Config{
		OverlapTolerance: 3,
		MinWindowHeight:  100,
		ExemptClasses:    []string{"nautilus", "plasmashell"},
		Logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, backend, state)
}

func overlappingWindow() platform.Window {
	// Bottom edge 80+850=930 crosses the 920 line by 10.
	return platform.Window{
		ID:     42,
		Class:  "Firefox",
		Bounds: platform.Rect{X: 100, Y: 80, Width: 800, Height: 850},
	}
}

func TestTick_ShrinksOverlappingWindow(t *testing.T) {
	backend := &fakeBackend{
		active: 42,
		class:  "Firefox",
		window: overlappingWindow(),
		normal: true,
	}
	state := &fakeState{visible: true, frame: testBarrier}
	g := newTestGuardian(backend, state)

	g.TickNow()

	if backend.resizeCalls != 1 {
		t.Fatalf("expected 1 resize, got %d", backend.resizeCalls)
	}
	// overlap = 930 - 920 = 10; new height = 850 - 10 = 840.
	if backend.resizedHeight != 840 {
		t.Fatalf("expected new height 840, got %d", backend.resizedHeight)
	}
	if backend.resizedWidth != 800 {
		t.Fatalf("expected width preserved at 800, got %d", backend.resizedWidth)
	}
	if got := g.Stats().Corrections; got != 1 {
		t.Fatalf("expected 1 correction recorded, got %d", got)
	}
}

func TestTick_SkipsAtHeightFloor(t *testing.T) {
	backend := &fakeBackend{
		active: 42,
		class:  "Firefox",
		// Bottom edge 840+90=930 overlaps by 10, but the corrected
		// height would be 90-10=80, at or below the 100px floor.
		window: platform.Window{
			ID:     42,
			Bounds: platform.Rect{X: 100, Y: 840, Width: 800, Height: 90},
		},
		normal: true,
	}
	state := &fakeState{visible: true, frame: testBarrier}
	g := newTestGuardian(backend, state)

	g.TickNow()

	if backend.resizeCalls != 0 {
		t.Fatalf("expected no resize at the height floor, got %d", backend.resizeCalls)
	}
}

func TestTick_ExemptClassQueriesNoGeometry(t *testing.T) {
	backend := &fakeBackend{
		active: 42,
		class:  "Nautilus", // exemption matching is case-insensitive
		window: overlappingWindow(),
		normal: true,
	}
	state := &fakeState{visible: true, frame: testBarrier}
	g := newTestGuardian(backend, state)

	g.TickNow()

	if backend.infoCalls != 0 {
		t.Fatalf("expected no geometry query for an exempt class, got %d", backend.infoCalls)
	}
	if backend.resizeCalls != 0 {
		t.Fatalf("expected no resize for an exempt class, got %d", backend.resizeCalls)
	}
}

func TestTick_HiddenBarrierSkipsAllQueries(t *testing.T) {
	backend := &fakeBackend{active: 42, class: "Firefox", window: overlappingWindow(), normal: true}
	state := &fakeState{visible: false, frame: testBarrier}
	g := newTestGuardian(backend, state)

	g.TickNow()

	if backend.activeCalls != 0 {
		t.Fatalf("expected no window queries while the barrier is hidden, got %d", backend.activeCalls)
	}
}

func TestTick_PausedSkipsAllQueries(t *testing.T) {
	backend := &fakeBackend{active: 42, class: "Firefox", window: overlappingWindow(), normal: true}
	state := &fakeState{visible: true, frame: testBarrier}
	g := newTestGuardian(backend, state)

	g.SetPaused(true)
	g.TickNow()

	if backend.activeCalls != 0 {
		t.Fatalf("expected no window queries while paused, got %d", backend.activeCalls)
	}

	g.SetPaused(false)
	g.TickNow()
	if backend.resizeCalls != 1 {
		t.Fatalf("expected enforcement to resume after unpause, got %d resizes", backend.resizeCalls)
	}
}

func TestTick_WindowOutsideSpanSkipped(t *testing.T) {
	backend := &fakeBackend{
		active: 42,
		class:  "Firefox",
		// Center at 1200+400/2=1400, outside the [0,1000) span.
		window: platform.Window{
			ID:     42,
			Bounds: platform.Rect{X: 1200, Y: 80, Width: 400, Height: 850},
		},
		normal: true,
	}
	state := &fakeState{visible: true, frame: testBarrier}
	g := newTestGuardian(backend, state)

	g.TickNow()

	if backend.resizeCalls != 0 {
		t.Fatalf("expected no resize for a window on another display, got %d", backend.resizeCalls)
	}
}

func TestTick_ToleranceBoundary(t *testing.T) {
	state := &fakeState{visible: true, frame: testBarrier}

	// Overlap of exactly 3 is tolerated: bottom 923 vs line 920.
	backend := &fakeBackend{
		active: 42,
		class:  "Firefox",
		window: platform.Window{ID: 42, Bounds: platform.Rect{X: 100, Y: 73, Width: 800, Height: 850}},
		normal: true,
	}
	g := newTestGuardian(backend, state)
	g.TickNow()
	if backend.resizeCalls != 0 {
		t.Fatalf("expected overlap of 3 to be tolerated, got %d resizes", backend.resizeCalls)
	}

	// Overlap of 4 is corrected: 850-4=846.
	backend = &fakeBackend{
		active: 42,
		class:  "Firefox",
		window: platform.Window{ID: 42, Bounds: platform.Rect{X: 100, Y: 74, Width: 800, Height: 850}},
		normal: true,
	}
	g = newTestGuardian(backend, state)
	g.TickNow()
	if backend.resizeCalls != 1 || backend.resizedHeight != 846 {
		t.Fatalf("expected overlap of 4 corrected to height 846, got %d resizes, height %d",
			backend.resizeCalls, backend.resizedHeight)
	}
}

func TestTick_QueryFailuresAreSilentSkips(t *testing.T) {
	state := &fakeState{visible: true, frame: testBarrier}

	backend := &fakeBackend{activeErr: errors.New("no active window")}
	g := newTestGuardian(backend, state)
	g.TickNow()
	if backend.resizeCalls != 0 {
		t.Fatalf("expected no resize after active-window failure")
	}

	backend = &fakeBackend{active: 42, classErr: errors.New("window gone")}
	g = newTestGuardian(backend, state)
	g.TickNow()
	if backend.infoCalls != 0 {
		t.Fatalf("expected no geometry query after class failure")
	}

	backend = &fakeBackend{active: 42, class: "Firefox", windowErr: errors.New("window gone"), normal: true}
	g = newTestGuardian(backend, state)
	g.TickNow()
	if backend.resizeCalls != 0 {
		t.Fatalf("expected no resize after geometry failure")
	}

	// Every failed pass still counts as a tick.
	if got := g.Stats().Ticks; got != 1 {
		t.Fatalf("expected 1 tick recorded, got %d", got)
	}
}

func TestTick_ResizeFailureRetriedNextTick(t *testing.T) {
	backend := &fakeBackend{
		active:    42,
		class:     "Firefox",
		window:    overlappingWindow(),
		normal:    true,
		resizeErr: errors.New("write refused"),
	}
	state := &fakeState{visible: true, frame: testBarrier}
	g := newTestGuardian(backend, state)

	g.TickNow()
	g.TickNow()

	// The write failure is swallowed; the window still overlaps, so
	// each tick attempts again.
	if backend.resizeCalls != 2 {
		t.Fatalf("expected 2 resize attempts, got %d", backend.resizeCalls)
	}
	if got := g.Stats().Corrections; got != 0 {
		t.Fatalf("expected no corrections counted for failed writes, got %d", got)
	}
}

func TestTick_NonNormalWindowSkipped(t *testing.T) {
	backend := &fakeBackend{
		active: 42,
		class:  "SomePanel",
		window: overlappingWindow(),
		normal: false,
	}
	state := &fakeState{visible: true, frame: testBarrier}
	g := newTestGuardian(backend, state)

	g.TickNow()

	if backend.infoCalls != 0 {
		t.Fatalf("expected no geometry query for a non-normal window, got %d", backend.infoCalls)
	}
}

func TestTick_CorrectionCallbackFires(t *testing.T) {
	backend := &fakeBackend{active: 42, class: "Firefox", window: overlappingWindow(), normal: true}
	state := &fakeState{visible: true, frame: testBarrier}

	var got []Correction
	g := New(Config{
		OverlapTolerance: 3,
		MinWindowHeight:  100,
		Logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		OnCorrection:     func(c Correction) { got = append(got, c) },
	}, backend, state)

	g.TickNow()

	if len(got) != 1 {
		t.Fatalf("expected 1 correction event, got %d", len(got))
	}
	c := got[0]
	if c.Window != 42 || c.Overlap != 10 || c.OldHeight != 850 || c.NewHeight != 840 {
		t.Fatalf("unexpected correction event: %+v", c)
	}
	if c.At.IsZero() {
		t.Fatalf("expected correction timestamp to be set")
	}
}

func TestUpdateConfig_AdjustsThresholds(t *testing.T) {
	backend := &fakeBackend{
		active: 42,
		class:  "Firefox",
		// Overlap of 2: tolerated by the default threshold of 3.
		window: platform.Window{ID: 42, Bounds: platform.Rect{X: 100, Y: 72, Width: 800, Height: 850}},
		normal: true,
	}
	state := &fakeState{visible: true, frame: testBarrier}
	g := newTestGuardian(backend, state)

	g.TickNow()
	if backend.resizeCalls != 0 {
		t.Fatalf("expected overlap of 2 tolerated before reconfig")
	}

	g.UpdateConfig(Config{OverlapTolerance: 0, MinWindowHeight: 100})
	g.TickNow()
	if backend.resizeCalls != 1 || backend.resizedHeight != 848 {
		t.Fatalf("expected overlap of 2 corrected to 848 after reconfig, got %d resizes, height %d",
			backend.resizeCalls, backend.resizedHeight)
	}
}
