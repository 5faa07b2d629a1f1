package barrier

// Display describes one attached output as the calculator sees it.
// Frame is the full pixel area; Visible is the area left after the
// window manager's reserved zones (panels, docks) are carved out.
// Callers enumerate displays primary-first.
type Display struct {
	Name    string
	Primary bool
	Frame   Rect
	Visible Rect
}

// BottomInset returns the height of the reserved gap along the
// display's bottom edge: the distance between the visible area's
// bottom and the frame's bottom.
func (d Display) BottomInset() float64 {
	return d.Frame.MaxY() - d.Visible.MaxY()
}

// Params tunes barrier placement.
type Params struct {
	// ActivationThreshold is the bottom inset, in pixels, beyond which
	// a display is considered to already have a reserved dock gap.
	ActivationThreshold float64

	// DefaultHeight is the strip height used when no display carries
	// an inset above the threshold.
	DefaultHeight float64

	// PreferredSecondary optionally names the output to protect. When
	// empty, or when it names the primary or a missing output, the
	// first non-primary display is protected.
	PreferredSecondary string
}

// DefaultParams returns the standard placement tuning.
func DefaultParams() Params {
	return Params{
		ActivationThreshold: 24,
		DefaultHeight:       70,
	}
}

// Barrier is a calculator result. Rect is meaningful only when Active
// is true.
type Barrier struct {
	Rect   Rect
	Active bool
}

// Compute derives the protective strip for the current display
// topology. The result is inactive when fewer than two displays are
// attached, when the protected display already has a reserved bottom
// gap deeper than the activation threshold, or when the derived
// rectangle fails validation. Compute is pure: equal inputs produce
// equal results, and callers re-enumerate displays on every call
// rather than caching them.
func Compute(displays []Display, p Params) Barrier {
	if len(displays) < 2 {
		return Barrier{}
	}

	primary := displays[0]
	secondary, ok := pickSecondary(displays, primary, p.PreferredSecondary)
	if !ok {
		return Barrier{}
	}

	// A deep inset means the system already reserves space at the
	// secondary's bottom edge and a barrier would be redundant.
	if secondary.BottomInset() > p.ActivationThreshold {
		return Barrier{}
	}

	// Size the strip to the deepest reserved gap anywhere in the
	// topology, so it covers the same band a dock occupies on the
	// display it lives on. With no qualifying gap, fall back to the
	// configured default.
	target := p.DefaultHeight
	if deepest := maxBottomInset(displays); deepest > p.ActivationThreshold {
		target = deepest
	}

	rect := Rect{
		X:      secondary.Frame.X,
		Y:      secondary.Frame.MaxY() - target,
		Width:  secondary.Frame.Width,
		Height: target,
	}
	if !rect.IsSafe() {
		return Barrier{}
	}
	return Barrier{Rect: rect, Active: true}
}

// pickSecondary chooses the display to protect: the preferred output
// when it names an attached non-primary display, otherwise the first
// display distinct from the primary.
func pickSecondary(displays []Display, primary Display, preferred string) (Display, bool) {
	if preferred != "" {
		for _, d := range displays {
			if d.Name == preferred && d.Name != primary.Name {
				return d, true
			}
		}
	}
	for _, d := range displays {
		if d.Name != primary.Name {
			return d, true
		}
	}
	return Display{}, false
}

func maxBottomInset(displays []Display) float64 {
	deepest := 0.0
	for _, d := range displays {
		if inset := d.BottomInset(); inset > deepest {
			deepest = inset
		}
	}
	return deepest
}
