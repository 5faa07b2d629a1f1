package autostart

import (
	"fmt"
	"os"
	"path/filepath"
)

const desktopFileName = "dockguard.desktop"

// Path returns the XDG autostart entry location for the current user.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "autostart", desktopFileName), nil
}

// Enable writes an autostart entry that launches the daemon with the
// tray icon at session start. The entry points at the current binary.
func Enable() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to resolve executable path: %w", err)
	}

	path, err := Path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create autostart directory: %w", err)
	}

	entry := fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=dockguard
Comment=Dock barrier guardian
Exec=%s daemon --tray
Terminal=false
X-GNOME-Autostart-enabled=true
`, exe)

	if err := os.WriteFile(path, []byte(entry), 0644); err != nil {
		return fmt.Errorf("failed to write autostart entry: %w", err)
	}

	return nil
}

// Disable removes the autostart entry. Missing entries are not an error.
func Disable() error {
	path, err := Path()
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove autostart entry: %w", err)
	}

	return nil
}

// Enabled reports whether the autostart entry exists.
func Enabled() (bool, error) {
	path, err := Path()
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
