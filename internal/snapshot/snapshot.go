package snapshot

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	"github.com/kbinani/screenshot"
)

// Region is a rectangle in virtual-screen coordinates.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// CaptureRegion grabs the region from the running X session and returns
// it encoded as PNG.
func CaptureRegion(region Region) ([]byte, error) {
	if region.Width <= 0 || region.Height <= 0 {
		return nil, fmt.Errorf("invalid region dimensions: width=%d, height=%d", region.Width, region.Height)
	}

	bounds := image.Rect(region.X, region.Y, region.X+region.Width, region.Y+region.Height)

	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("failed to capture region: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteRegion captures the region and writes the PNG to path.
func WriteRegion(region Region, path string) error {
	data, err := CaptureRegion(region)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	return nil
}

// DefaultOutputPath names a snapshot file after the current time, e.g.
// dockguard-barrier-20250310-090214.png.
func DefaultOutputPath() string {
	return fmt.Sprintf("dockguard-barrier-%s.png", time.Now().Format("20060102-150405"))
}
