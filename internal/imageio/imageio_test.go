package imageio

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{uint8(x * 10), uint8(y * 10), 128, 255})
		}
	}
	return img
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "frame.png")
	src := testImage(8, 4)

	if err := SaveTo(path, src); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	img, format, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if format != "png" {
		t.Errorf("expected format png, got %s", format)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 4 {
		t.Errorf("expected 8x4, got %v", img.Bounds())
	}
	r, g, _, _ := img.At(3, 2).RGBA()
	if r>>8 != 30 || g>>8 != 20 {
		t.Errorf("pixel (3,2) = %d,%d, want 30,20", r>>8, g>>8)
	}
}

func TestDecodeJPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(16, 8), nil); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}
	_, format, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("expected format jpeg, got %s", format)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, _, err := Load(filepath.Join(t.TempDir(), "missing.jpg")); err == nil {
		t.Error("expected error for missing file")
	}

	junk := filepath.Join(t.TempDir(), "junk.jpg")
	if err := os.WriteFile(junk, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(junk); err == nil {
		t.Error("expected error for undecodable file")
	}
}

func TestToRGBA(t *testing.T) {
	src := testImage(5, 3)
	rgba := ToRGBA(src)
	if rgba.Bounds() != image.Rect(0, 0, 5, 3) {
		t.Fatalf("unexpected bounds %v", rgba.Bounds())
	}
	if got := rgba.RGBAAt(4, 2); got.R != 40 || got.G != 20 || got.B != 128 || got.A != 255 {
		t.Errorf("pixel (4,2) = %v", got)
	}

	// Already RGBA at the origin: returned as is.
	if again := ToRGBA(rgba); again != rgba {
		t.Error("expected the same *image.RGBA back")
	}

	// Offset bounds are rebased to the origin.
	sub := rgba.SubImage(image.Rect(1, 1, 4, 3))
	rebased := ToRGBA(sub)
	if rebased.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Errorf("unexpected bounds %v", rebased.Bounds())
	}
	if rebased.RGBAAt(0, 0) != rgba.RGBAAt(1, 1) {
		t.Error("sub-image pixels not rebased")
	}
}

func TestSnapshotter(t *testing.T) {
	dir := t.TempDir()
	s := NewSnapshotter(dir, "pano")
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 30, 45, 0, time.UTC) }

	name := s.GenerateFilename()
	want := filepath.Join(dir, "pano_2026-03-01_12-30-45.000.png")
	if name != want {
		t.Errorf("GenerateFilename() = %s, want %s", name, want)
	}

	path, err := s.Save(testImage(2, 2))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasSuffix(path, ".png") {
		t.Errorf("unexpected path %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("snapshot not written: %v", err)
	}
}
