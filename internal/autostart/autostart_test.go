package autostart

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnableDisableCycle(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	enabled, err := Enabled()
	if err != nil {
		t.Fatal(err)
	}
	if enabled {
		t.Fatal("expected autostart disabled in fresh home")
	}

	if err := Enable(); err != nil {
		t.Fatalf("Enable: %v", err)
	}

	path, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected desktop entry at %s: %v", path, err)
	}

	content := string(data)
	if !strings.HasPrefix(content, "[Desktop Entry]") {
		t.Errorf("expected desktop entry header, got %q", content)
	}
	if !strings.Contains(content, "daemon --tray") {
		t.Errorf("expected daemon --tray exec line, got %q", content)
	}

	exe, err := os.Executable()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(content, exe) {
		t.Errorf("expected exec to reference %s", exe)
	}

	enabled, err = Enabled()
	if err != nil {
		t.Fatal(err)
	}
	if !enabled {
		t.Fatal("expected autostart enabled after Enable")
	}

	if err := Disable(); err != nil {
		t.Fatalf("Disable: %v", err)
	}

	enabled, err = Enabled()
	if err != nil {
		t.Fatal(err)
	}
	if enabled {
		t.Fatal("expected autostart disabled after Disable")
	}
}

func TestDisableWithoutEntry(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	// Removing a missing entry is not an error.
	if err := Disable(); err != nil {
		t.Fatalf("Disable on missing entry: %v", err)
	}
}

func TestPathUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(home, ".config", "autostart", desktopFileName)
	if path != want {
		t.Errorf("expected %s, got %s", want, path)
	}
}
