package viewer

import (
	"image"
	"image/color"
	gomath "math"
	"testing"

	"github.com/Faultbox/panoview/internal/config"
	"github.com/Faultbox/panoview/internal/frame"
	"github.com/Faultbox/panoview/pkg/panorama"
)

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}
	return img
}

func newTestSession(t *testing.T, mode string) *Session {
	t.Helper()
	cfg := config.Default()
	cfg.Navigation.Mode = mode
	s, err := NewSession(cfg, nil, 64, 48)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func TestSessionPlaceholder(t *testing.T) {
	s := newTestSession(t, "drag")

	img, rendered, err := s.Frame()
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if !rendered {
		t.Fatal("first frame should render")
	}
	if got := img.RGBAAt(0, 0); got != frame.Background {
		t.Errorf("corner = %v, want placeholder background", got)
	}

	if _, rendered, _ := s.Frame(); rendered {
		t.Error("unchanged session rendered again")
	}

	// Navigation without a source does nothing.
	s.Press(10, 10)
	s.Move(40, 10)
	s.Release(40, 10)
	if s.Dirty() {
		t.Error("navigation without a source marked the frame dirty")
	}
}

func TestSessionDrag(t *testing.T) {
	s := newTestSession(t, "drag")
	s.SetSource(gradient(128, 64), true, "test")
	if !s.Navigable() {
		t.Fatal("panoramic source should be navigable")
	}
	if _, rendered, err := s.Frame(); err != nil || !rendered {
		t.Fatalf("Frame = %v, %v", rendered, err)
	}

	s.Press(10, 24)
	s.Move(30, 24)
	s.Release(30, 24)

	if o := s.Orientation(); o.Theta == 0 {
		t.Error("drag did not change yaw")
	}
	if _, rendered, _ := s.Frame(); !rendered {
		t.Error("drag did not request a frame")
	}
}

func TestSessionClickLooksAt(t *testing.T) {
	s := newTestSession(t, "drag")
	s.SetSource(gradient(128, 64), true, "test")

	s.Press(60, 24)
	s.Release(60, 24)

	if o := s.Orientation(); o.Theta <= 0 {
		t.Errorf("click right of center gave yaw %v, want > 0", o.Theta)
	}
}

func TestSessionAbsoluteIgnoresPointer(t *testing.T) {
	s := newTestSession(t, "drag")
	s.SetSource(gradient(128, 64), true, "test")
	if m := s.CycleMode(); m != panorama.Absolute {
		t.Fatalf("CycleMode = %v, want absolute", m)
	}
	s.Frame()

	s.Press(10, 24)
	s.Move(40, 24)
	s.Release(40, 24)
	if s.Dirty() {
		t.Error("drag changed the view in absolute mode")
	}

	s.Nudge(0.5, -0.25)
	o := s.Orientation()
	if o.Theta != 0.5 || o.Phi != -0.25 {
		t.Errorf("Nudge gave (%v, %v)", o.Theta, o.Phi)
	}
	s.Reset()
	if o := s.Orientation(); o.Theta != 0 || o.Phi != 0 {
		t.Errorf("Reset gave (%v, %v)", o.Theta, o.Phi)
	}
}

func TestSessionSmoothedSettles(t *testing.T) {
	s := newTestSession(t, "smoothed")
	s.SetSource(gradient(128, 64), true, "test")

	s.Move(60, 24)
	want := (60 - 32) * panorama.DefaultPointerGain

	for i := 0; s.Tick(); i++ {
		if i > 200 {
			t.Fatal("pointer following did not settle")
		}
	}
	if got := s.Orientation().Theta; gomath.Abs(got-want) > 1e-3 {
		t.Errorf("settled yaw = %v, want %v", got, want)
	}
	if s.Tick() {
		t.Error("Tick still moving after settling")
	}
}

func TestSessionZoom(t *testing.T) {
	s := newTestSession(t, "drag")
	nav := config.Default().Navigation

	changed, err := s.Zoom(1)
	if err != nil || !changed {
		t.Fatalf("Zoom(1) = %v, %v", changed, err)
	}
	if want := 110 - nav.ZoomStepDegrees; s.FOV() != want {
		t.Errorf("FOV = %v, want %v", s.FOV(), want)
	}

	s.Zoom(100)
	if s.FOV() != nav.MinFOVDegrees {
		t.Errorf("FOV = %v, want clamp to %v", s.FOV(), nav.MinFOVDegrees)
	}
	if changed, _ := s.Zoom(1); changed {
		t.Error("zoom past the limit reported a change")
	}

	s.Zoom(-100)
	if s.FOV() != nav.MaxFOVDegrees {
		t.Errorf("FOV = %v, want clamp to %v", s.FOV(), nav.MaxFOVDegrees)
	}
}

func TestSessionResize(t *testing.T) {
	s := newTestSession(t, "drag")
	s.Frame()

	if err := s.Resize(64, 48); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if s.Dirty() {
		t.Error("resize to the same size requested a frame")
	}

	if err := s.Resize(100, 50); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	img, rendered, err := s.Frame()
	if err != nil || !rendered {
		t.Fatalf("Frame = %v, %v", rendered, err)
	}
	if img.Bounds() != image.Rect(0, 0, 100, 50) {
		t.Errorf("frame bounds = %v", img.Bounds())
	}

	if err := s.Resize(0, 50); err == nil {
		t.Error("expected error for empty view")
	}
}

func TestSessionFlatSource(t *testing.T) {
	s := newTestSession(t, "drag")
	s.SetSource(gradient(32, 32), false, "flat")
	if s.Navigable() {
		t.Error("flat source should not be navigable")
	}
	img, _, err := s.Frame()
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	// 32x32 in 64x48 is letterboxed left and right.
	if got := img.RGBAAt(2, 24); got != frame.Background {
		t.Errorf("letterbox = %v, want background", got)
	}
	if got := img.RGBAAt(32, 24); got == frame.Background {
		t.Error("image area is background")
	}
}

func TestNewSessionInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Render.Trig = "cordic"
	if _, err := NewSession(cfg, nil, 64, 48); err == nil {
		t.Error("expected error for unknown trig strategy")
	}

	cfg = config.Default()
	cfg.Navigation.Mode = "orbit"
	if _, err := NewSession(cfg, nil, 64, 48); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestSessionSmoothedKeepsClick(t *testing.T) {
	s := newTestSession(t, "smoothed")
	s.SetSource(gradient(128, 64), true, "test")

	s.Move(10, 24)
	s.Press(10, 24)
	s.Release(10, 24)
	looked := s.Orientation()

	for i := 0; s.Tick(); i++ {
		if i > 200 {
			t.Fatal("pointer following did not settle")
		}
	}
	if o := s.Orientation(); gomath.Abs(o.Theta-looked.Theta) > 1e-6 || gomath.Abs(o.Phi-looked.Phi) > 1e-6 {
		t.Errorf("click at (%v, %v) eased back to (%v, %v)", looked.Theta, looked.Phi, o.Theta, o.Phi)
	}
}

func TestSessionCycleIntoSmoothedKeepsView(t *testing.T) {
	s := newTestSession(t, "absolute")
	s.SetSource(gradient(128, 64), true, "test")
	s.Nudge(0.5, 0.1)
	s.Move(60, 10)

	if m := s.CycleMode(); m != panorama.Smoothed {
		t.Fatalf("CycleMode = %v, want smoothed", m)
	}
	for i := 0; s.Tick(); i++ {
		if i > 200 {
			t.Fatal("pointer following did not settle")
		}
	}
	if o := s.Orientation(); gomath.Abs(o.Theta-0.5) > 1e-6 || gomath.Abs(o.Phi-0.1) > 1e-6 {
		t.Errorf("orientation = (%v, %v), want (0.5, 0.1)", o.Theta, o.Phi)
	}
}
