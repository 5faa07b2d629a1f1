package palette

import (
	"fmt"
	"os/exec"
	"strings"
)

// Item is a single selectable entry in the quick-action menu.
type Item struct {
	Label     string // Display text
	Action    string // Action identifier returned on selection
	Icon      string // Icon name (e.g., "media-playback-pause") for rofi -show-icons
	Meta      string // Hidden search keywords (rofi meta field)
	IsHeader  bool   // Non-selectable section header (bold)
	IsDivider bool   // Non-selectable divider line (dim)
	IsActive  bool   // Highlighted as current/active (rofi active row)
	IsUrgent  bool   // Highlighted as needing attention (rofi urgent row)
}

// Capabilities describes what features a backend supports.
type Capabilities struct {
	Icons         bool // Supports icon display
	Markup        bool // Supports pango markup in labels
	NonSelectable bool // Supports non-selectable rows (headers)
	IndexOutput   bool // Can output selection index (not just text)
	MessageBar    bool // Supports message/prompt bar
	RowStates     bool // Supports active/urgent row highlighting
}

// Backend shows a menu to the user and returns the selected item.
type Backend interface {
	// Show displays the menu and returns the selected item.
	// prompt: the prompt text shown to the user
	// items: the list of items to display
	// message: optional context message (shown in rofi message bar)
	Show(prompt string, items []Item, message string) (Item, error)

	// Capabilities returns the features supported by this backend.
	Capabilities() Capabilities
}

// backendOrder is the auto-detection priority.
var backendOrder = []string{"rofi", "fuzzel", "wofi", "dmenu"}

var backendConstructors = map[string]func() Backend{
	"rofi":   NewRofiBackend,
	"fuzzel": NewFuzzelBackend,
	"wofi":   NewWofiBackend,
	"dmenu":  NewDmenuBackend,
}

// AutoDetect selects the first menu program found in PATH.
func AutoDetect() (Backend, error) {
	for _, name := range backendOrder {
		if _, err := exec.LookPath(name); err == nil {
			return backendConstructors[name](), nil
		}
	}
	return nil, fmt.Errorf("no menu program found in PATH (looked for: %s)", strings.Join(backendOrder, ", "))
}

// NewBackend creates a backend by name.
//
// Supported names: auto, rofi, fuzzel, wofi, dmenu.
func NewBackend(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		return AutoDetect()
	}

	construct, ok := backendConstructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown menu backend: %q (expected: auto, %s)", name, strings.Join(backendOrder, ", "))
	}
	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("menu backend %q not found in PATH", name)
	}
	return construct(), nil
}
