package debug

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCapture(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	sc := NewScreenshotCapture(dir, "palview")
	sc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC) }

	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.Pix[0], img.Pix[3] = 200, 255

	first, err := sc.Capture(img)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if want := filepath.Join(dir, "palview_2024-03-01_12-30-45.png"); first != want {
		t.Errorf("filename = %q, want %q", first, want)
	}

	second, err := sc.Capture(img)
	if err != nil {
		t.Fatalf("second Capture: %v", err)
	}
	if want := filepath.Join(dir, "palview_2024-03-01_12-30-45_1.png"); second != want {
		t.Errorf("second filename = %q, want %q", second, want)
	}

	f, err := os.Open(first)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Errorf("decoded size = %v", b)
	}
	if r, _, _, _ := decoded.At(0, 0).RGBA(); r>>8 != 200 {
		t.Errorf("pixel red = %d, want 200", r>>8)
	}
}
