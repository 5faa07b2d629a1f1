package barrier

import (
	"math"
	"testing"
)

// twoDisplays builds the standard test topology: a primary with a
// reserved bottom gap and a gapless secondary to the left of it.
func twoDisplays(primaryInset float64) []Display {
	return []Display{
		{
			Name:    "DP-1",
			Primary: true,
			Frame:   Rect{X: 1000, Y: 0, Width: 1440, Height: 900},
			Visible: Rect{X: 1000, Y: 0, Width: 1440, Height: 900 - primaryInset},
		},
		{
			Name:    "HDMI-1",
			Frame:   Rect{X: 0, Y: 0, Width: 1000, Height: 1000},
			Visible: Rect{X: 0, Y: 0, Width: 1000, Height: 1000},
		},
	}
}

func TestCompute_SingleDisplayInactive(t *testing.T) {
	displays := []Display{
		{Name: "eDP-1", Primary: true, Frame: Rect{Width: 1920, Height: 1080}, Visible: Rect{Width: 1920, Height: 1080}},
	}
	b := Compute(displays, DefaultParams())
	if b.Active {
		t.Fatalf("expected inactive barrier with one display, got %+v", b)
	}
}

func TestCompute_NoDisplaysInactive(t *testing.T) {
	if b := Compute(nil, DefaultParams()); b.Active {
		t.Fatalf("expected inactive barrier with no displays, got %+v", b)
	}
}

func TestCompute_SizedToDeepestInset(t *testing.T) {
	// Primary inset 80 exceeds the threshold 24, so the strip adopts
	// that depth on the secondary:
	// Y = 0 + 1000 - 80 = 920, spanning the secondary's full width.
	b := Compute(twoDisplays(80), DefaultParams())
	if !b.Active {
		t.Fatalf("expected active barrier, got %+v", b)
	}
	want := Rect{X: 0, Y: 920, Width: 1000, Height: 80}
	if b.Rect != want {
		t.Fatalf("expected rect %+v, got %+v", want, b.Rect)
	}
}

func TestCompute_DefaultHeightWhenNoDeepInset(t *testing.T) {
	// Every inset is at or below the threshold, so the fallback height
	// 70 applies: Y = 1000 - 70 = 930.
	b := Compute(twoDisplays(20), DefaultParams())
	if !b.Active {
		t.Fatalf("expected active barrier, got %+v", b)
	}
	want := Rect{X: 0, Y: 930, Width: 1000, Height: 70}
	if b.Rect != want {
		t.Fatalf("expected rect %+v, got %+v", want, b.Rect)
	}
}

func TestCompute_SecondaryOwnGapDeactivates(t *testing.T) {
	displays := twoDisplays(80)
	// Give the secondary its own 30px reserved gap, deeper than the
	// 24px threshold: the system already protects that edge.
	displays[1].Visible.Height = 970
	if b := Compute(displays, DefaultParams()); b.Active {
		t.Fatalf("expected inactive barrier when the secondary has a reserved gap, got %+v", b)
	}
}

func TestCompute_SecondaryInsetAtThresholdStillActive(t *testing.T) {
	displays := twoDisplays(80)
	// An inset of exactly the threshold is not "greater than" it, so
	// the barrier still applies.
	displays[1].Visible.Height = 976 // inset 24
	b := Compute(displays, DefaultParams())
	if !b.Active {
		t.Fatalf("expected active barrier at exactly the threshold inset, got %+v", b)
	}
}

func TestCompute_PreferredSecondaryByName(t *testing.T) {
	displays := append(twoDisplays(80), Display{
		Name:    "DVI-1",
		Frame:   Rect{X: 2440, Y: 0, Width: 800, Height: 600},
		Visible: Rect{X: 2440, Y: 0, Width: 800, Height: 600},
	})

	p := DefaultParams()
	p.PreferredSecondary = "DVI-1"
	b := Compute(displays, p)
	if !b.Active {
		t.Fatalf("expected active barrier, got %+v", b)
	}
	if b.Rect.X != 2440 || b.Rect.Width != 800 {
		t.Fatalf("expected barrier on DVI-1, got rect %+v", b.Rect)
	}
}

func TestCompute_PreferredNamingPrimaryFallsBack(t *testing.T) {
	p := DefaultParams()
	p.PreferredSecondary = "DP-1" // the primary; cannot be protected
	b := Compute(twoDisplays(80), p)
	if !b.Active {
		t.Fatalf("expected fallback to first non-primary, got %+v", b)
	}
	if b.Rect.X != 0 || b.Rect.Width != 1000 {
		t.Fatalf("expected barrier on HDMI-1, got rect %+v", b.Rect)
	}
}

func TestCompute_InvalidGeometryInactive(t *testing.T) {
	displays := twoDisplays(80)
	displays[1].Frame.Width = math.NaN()
	if b := Compute(displays, DefaultParams()); b.Active {
		t.Fatalf("expected inactive barrier for NaN frame, got %+v", b)
	}

	displays = twoDisplays(80)
	displays[1].Frame.Width = 0
	if b := Compute(displays, DefaultParams()); b.Active {
		t.Fatalf("expected inactive barrier for zero-width secondary, got %+v", b)
	}
}

func TestCompute_ActiveImpliesSafeRect(t *testing.T) {
	for _, inset := range []float64{0, 10, 24, 30, 80, 200} {
		b := Compute(twoDisplays(inset), DefaultParams())
		if b.Active && !b.Rect.IsSafe() {
			t.Fatalf("active barrier with unsafe rect %+v (inset %v)", b.Rect, inset)
		}
	}
}

func TestCompute_Idempotent(t *testing.T) {
	displays := twoDisplays(80)
	first := Compute(displays, DefaultParams())
	second := Compute(displays, DefaultParams())
	if first != second {
		t.Fatalf("expected identical results, got %+v then %+v", first, second)
	}
}
