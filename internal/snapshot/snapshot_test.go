package snapshot

import (
	"strings"
	"testing"
)

func TestCaptureRegionRejectsEmptyRect(t *testing.T) {
	tests := []struct {
		name   string
		region Region
	}{
		{"zero size", Region{X: 0, Y: 0, Width: 0, Height: 0}},
		{"zero width", Region{X: 10, Y: 10, Width: 0, Height: 80}},
		{"negative height", Region{X: 0, Y: 920, Width: 1000, Height: -80}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CaptureRegion(tt.region); err == nil {
				t.Errorf("expected error for %+v", tt.region)
			}
		})
	}
}

func TestDefaultOutputPath(t *testing.T) {
	path := DefaultOutputPath()
	if !strings.HasPrefix(path, "dockguard-barrier-") {
		t.Errorf("unexpected prefix: %q", path)
	}
	if !strings.HasSuffix(path, ".png") {
		t.Errorf("unexpected suffix: %q", path)
	}
}
