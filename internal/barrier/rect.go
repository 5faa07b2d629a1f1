package barrier

import "math"

// Rect is a screen rectangle in root coordinates (origin top-left,
// y grows downward). Values are float64 so validation can catch the
// NaN/Inf results of bad scaled-display arithmetic before they reach
// the X server.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// IsSafe reports whether the rectangle can be handed to the window
// system: all fields finite and both extents strictly positive.
func (r Rect) IsSafe() bool {
	for _, v := range []float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return r.Width > 0 && r.Height > 0
}

// MaxY returns the bottom edge of the rectangle
func (r Rect) MaxY() float64 {
	return r.Y + r.Height
}
