package viewer

import (
	"errors"
	"fmt"
	"image"
	gomath "math"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/panoview/internal/config"
	"github.com/Faultbox/panoview/internal/frame"
	"github.com/Faultbox/panoview/internal/gesture"
	"github.com/Faultbox/panoview/internal/imageio"
	"github.com/Faultbox/panoview/pkg/math"
	"github.com/Faultbox/panoview/pkg/panorama"
)

// settleEpsilon is the orientation change, in radians, below which
// pointer following counts as converged.
const settleEpsilon = 1e-4

// Session is the viewer state that does not depend on a display: the
// source image, the ray field for the current viewport and the orientation
// it is navigated with. Frames are only rendered when something changed.
// It is not safe for concurrent use.
type Session struct {
	cfg *config.Config
	log *zap.Logger

	projector *panorama.Projector
	state     *panorama.OrientationState
	nav       *panorama.Navigator
	gestures  *gesture.Recognizer

	fovDeg float64
	rf     *panorama.RayField
	frame  *image.RGBA

	source    *image.RGBA
	panoramic bool
	name      string

	pointer    math.Vec2
	hasPointer bool
	dirty      bool
}

// NewSession builds a session for a width x height view.
func NewSession(cfg *config.Config, log *zap.Logger, width, height int) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	trig, err := panorama.ParseTrig(cfg.Render.Trig, cfg.Render.AccuracyFactor)
	if err != nil {
		return nil, err
	}
	mode, err := panorama.ParseNavigationMode(cfg.Navigation.Mode)
	if err != nil {
		return nil, err
	}

	state := panorama.NewOrientationState()
	nav := panorama.NewNavigator(state, mode)
	nav.Smoothing = cfg.Navigation.Smoothing
	nav.PointerGain = cfg.Navigation.PointerGain

	s := &Session{
		cfg:       cfg,
		log:       log,
		projector: panorama.NewProjector(panorama.NewSphericalMapper(trig), cfg.Render.Workers),
		state:     state,
		nav:       nav,
		gestures:  gesture.New(gesture.DefaultSlop),
		fovDeg:    cfg.Viewport.FOVDegrees,
	}
	if err := s.rebuild(width, height); err != nil {
		return nil, err
	}

	log.Info("session ready",
		zap.String("trig", trig.Name()),
		zap.Stringer("mode", mode),
		zap.Int("workers", s.projector.Workers()),
	)
	return s, nil
}

func (s *Session) rebuild(width, height int) error {
	vp := s.cfg.ViewportFor(width, height)
	vp.FOV = panorama.Degrees(s.fovDeg)

	start := time.Now()
	rf, err := panorama.BuildRayField(vp)
	if err != nil {
		return fmt.Errorf("building ray field: %w", err)
	}
	s.rf = rf
	if s.frame == nil || s.frame.Bounds().Dx() != width || s.frame.Bounds().Dy() != height {
		s.frame = frame.New(width, height)
	}
	s.dirty = true

	s.log.Debug("ray field rebuilt",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Float64("fov", s.fovDeg),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// Resize rebuilds the ray field and frame for a new view size.
func (s *Session) Resize(width, height int) error {
	if width == s.rf.Width() && height == s.rf.Height() {
		return nil
	}
	return s.rebuild(width, height)
}

// Zoom changes the field of view by steps zoom increments; positive steps
// zoom in. It reports whether the field of view changed.
func (s *Session) Zoom(steps int) (bool, error) {
	nav := s.cfg.Navigation
	fov := s.fovDeg - float64(steps)*nav.ZoomStepDegrees
	fov = gomath.Max(nav.MinFOVDegrees, gomath.Min(nav.MaxFOVDegrees, fov))
	if fov == s.fovDeg {
		return false, nil
	}
	prev := s.fovDeg
	s.fovDeg = fov
	if err := s.rebuild(s.rf.Width(), s.rf.Height()); err != nil {
		s.fovDeg = prev
		return false, err
	}
	return true, nil
}

// SetSource replaces the image being viewed. A nil image shows the
// placeholder. Flat images are letterboxed and ignore navigation.
func (s *Session) SetSource(img image.Image, panoramic bool, name string) {
	s.gestures.Cancel()
	s.name = name
	s.panoramic = panoramic
	if img == nil {
		s.source = nil
	} else {
		s.source = imageio.ToRGBA(img)
	}
	s.dirty = true
	s.log.Info("source changed",
		zap.String("name", name),
		zap.Bool("panoramic", panoramic),
		zap.Bool("empty", img == nil),
	)
}

// Navigable reports whether pointer and key navigation applies.
func (s *Session) Navigable() bool {
	return s.source != nil && s.panoramic
}

// Press starts a pointer gesture.
func (s *Session) Press(x, y int) {
	s.gestures.Press(float64(x), float64(y))
}

// Move reports pointer motion.
func (s *Session) Move(x, y int) {
	s.pointer = math.Vec2{X: float64(x), Y: float64(y)}
	s.hasPointer = true
	if ev, ok := s.gestures.Move(float64(x), float64(y)); ok {
		s.apply(ev)
	}
}

// Release ends a pointer gesture.
func (s *Session) Release(x, y int) {
	if ev, ok := s.gestures.Release(float64(x), float64(y)); ok {
		s.apply(ev)
	}
}

// Tick advances pointer following in smoothed mode. It reports whether the
// view is still moving, so the caller keeps polling instead of blocking.
func (s *Session) Tick() bool {
	if s.nav.Mode != panorama.Smoothed || !s.hasPointer || s.gestures.Pressed() || !s.Navigable() {
		return false
	}
	before := s.state.Snapshot()
	s.apply(panorama.PointerMoved(s.pointer.X, s.pointer.Y))
	after := s.state.Snapshot()
	return gomath.Abs(after.Theta-before.Theta) > settleEpsilon ||
		gomath.Abs(after.Phi-before.Phi) > settleEpsilon
}

// CycleMode switches to the next navigation mode and returns it.
func (s *Session) CycleMode() panorama.NavigationMode {
	s.gestures.Cancel()
	s.nav.Mode = s.nav.Mode.Next()
	if s.nav.Mode == panorama.Smoothed {
		// pointer following starts from the current view
		s.nav.Anchor(s.rf)
	}
	s.log.Info("navigation mode", zap.Stringer("mode", s.nav.Mode))
	return s.nav.Mode
}

// Mode returns the current navigation mode.
func (s *Session) Mode() panorama.NavigationMode {
	return s.nav.Mode
}

// Reset looks straight ahead again.
func (s *Session) Reset() {
	s.apply(panorama.SetOrientationTo(0, 0))
}

// Nudge turns the view by the given yaw and pitch.
func (s *Session) Nudge(dTheta, dPhi float64) {
	o := s.state.Snapshot()
	s.apply(panorama.SetOrientationTo(o.Theta+dTheta, o.Phi+dPhi))
}

// Invalidate forces the next Frame call to render.
func (s *Session) Invalidate() {
	s.dirty = true
}

// Dirty reports whether a render is pending.
func (s *Session) Dirty() bool {
	return s.dirty
}

// Orientation returns the current orientation.
func (s *Session) Orientation() panorama.Orientation {
	return s.state.Snapshot()
}

// FOV returns the horizontal field of view in degrees.
func (s *Session) FOV() float64 {
	return s.fovDeg
}

// Size returns the view size.
func (s *Session) Size() (int, int) {
	return s.rf.Width(), s.rf.Height()
}

func (s *Session) apply(ev panorama.Event) {
	if !s.Navigable() {
		return
	}
	changed, err := s.nav.Apply(ev, s.rf)
	if err != nil {
		// Pointer events just outside the view happen during resizes.
		if errors.Is(err, panorama.ErrOutOfBounds) {
			s.log.Debug("navigation event ignored", zap.Stringer("kind", ev.Kind), zap.Error(err))
		} else {
			s.log.Warn("navigation event rejected", zap.Stringer("kind", ev.Kind), zap.Error(err))
		}
		return
	}
	if changed {
		s.dirty = true
	}
}

// Frame returns the current frame, rendering it first if anything changed.
// The boolean reports whether a render happened.
func (s *Session) Frame() (*image.RGBA, bool, error) {
	if !s.dirty {
		return s.frame, false, nil
	}
	start := time.Now()
	switch {
	case s.source == nil:
		frame.Placeholder(s.frame, frame.NoImageText)
	case !s.panoramic:
		frame.FitFlat(s.frame, s.source)
	default:
		ok, err := s.projector.Render(s.rf, s.state.Snapshot(), s.source, s.frame)
		if err != nil {
			return s.frame, false, fmt.Errorf("rendering frame: %w", err)
		}
		if !ok {
			frame.Placeholder(s.frame, frame.NoImageText)
		}
	}
	s.dirty = false
	s.log.Debug("frame rendered", zap.Duration("took", time.Since(start)))
	return s.frame, true, nil
}
