package x11

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/BurntSushi/xgbutil/ewmh"
)

// Atoms the daemon depends on for full operation. Reading the focused
// window and resizing it both go through the window manager, so a WM
// that advertises neither leaves the guardian with nothing to do.
var requiredAtoms = []string{
	"_NET_ACTIVE_WINDOW",
	"_NET_MOVERESIZE_WINDOW",
}

// Capabilities is the window manager's advertised _NET_SUPPORTED set,
// probed once at startup.
type Capabilities struct {
	supported mapset.Set[string]
}

// QueryCapabilities reads _NET_SUPPORTED from the root window
func (c *Connection) QueryCapabilities() (*Capabilities, error) {
	atoms, err := ewmh.SupportedGet(c.XUtil)
	if err != nil {
		return nil, err
	}
	return &Capabilities{supported: mapset.NewSet(atoms...)}, nil
}

// Has reports whether the window manager advertises the named atom
func (s *Capabilities) Has(atom string) bool {
	return s.supported.Contains(atom)
}

// ActiveWindowTracking reports whether the focused window can be read
func (s *Capabilities) ActiveWindowTracking() bool {
	return s.Has("_NET_ACTIVE_WINDOW")
}

// Missing returns the required atoms the window manager does not
// advertise, for startup diagnostics
func (s *Capabilities) Missing() []string {
	var missing []string
	for _, atom := range requiredAtoms {
		if !s.Has(atom) {
			missing = append(missing, atom)
		}
	}
	return missing
}

// Count returns the number of advertised atoms
func (s *Capabilities) Count() int {
	return s.supported.Cardinality()
}
