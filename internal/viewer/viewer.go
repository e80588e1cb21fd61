// Package viewer is the interactive SDL2 panorama viewer.
package viewer

import (
	"fmt"
	gomath "math"
	"path/filepath"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/panoview/internal/config"
	"github.com/Faultbox/panoview/internal/detect"
	"github.com/Faultbox/panoview/internal/imageio"
	"github.com/Faultbox/panoview/internal/input"
)

const (
	// idleWaitMS bounds how long the loop blocks when nothing is moving.
	idleWaitMS = 250
	// busyWaitMS is the poll interval while pointer following settles.
	busyWaitMS = 16
	// nudgeStep is the arrow key turn in radians.
	nudgeStep = gomath.Pi / 36
)

// Viewer owns the window, the input queue and the session.
type Viewer struct {
	cfg       *config.Config
	log       *zap.Logger
	window    *Window
	input     *input.Input
	session   *Session
	snapshots *imageio.Snapshotter
	running   bool
}

// New opens the window and prepares an empty session.
func New(cfg *config.Config, log *zap.Logger) (*Viewer, error) {
	win, err := NewWindow(WindowConfig{
		Title:      cfg.Window.Title,
		Width:      cfg.Viewport.Width,
		Height:     cfg.Viewport.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	}, log)
	if err != nil {
		return nil, err
	}

	w, h := win.DrawableSize()
	session, err := NewSession(cfg, log, w, h)
	if err != nil {
		win.Close()
		return nil, err
	}

	return &Viewer{
		cfg:       cfg,
		log:       log,
		window:    win,
		input:     input.New(),
		session:   session,
		snapshots: imageio.NewSnapshotter(cfg.Snapshot.OutputDir, cfg.Snapshot.Prefix),
	}, nil
}

// Close releases the window.
func (v *Viewer) Close() {
	v.window.Close()
}

// Open loads path and shows it. Load failures leave the placeholder up.
func (v *Viewer) Open(path string) error {
	panoramic, md, err := detect.DetectFile(path, v.cfg.Detect.MinWidth)
	if err != nil {
		v.session.SetSource(nil, false, "")
		return fmt.Errorf("loading image %s: %w", path, err)
	}
	img, _, err := imageio.Load(path)
	if err != nil {
		v.session.SetSource(nil, false, "")
		return fmt.Errorf("loading image %s: %w", path, err)
	}
	v.log.Info("image loaded",
		zap.String("path", path),
		zap.String("format", md.Format),
		zap.Int("width", md.Width),
		zap.Int("height", md.Height),
		zap.String("projection", md.ProjectionType),
	)
	v.session.SetSource(img, panoramic, filepath.Base(path))
	v.updateTitle()
	return nil
}

// Run processes events until the window is closed.
func (v *Viewer) Run() error {
	v.running = true
	v.updateTitle()

	for v.running {
		if err := v.present(); err != nil {
			return err
		}

		timeout := idleWaitMS
		if v.session.Tick() {
			timeout = busyWaitMS
		}
		if v.input.Wait(timeout) {
			v.running = false
		}
		v.handleEvents()
	}
	return nil
}

func (v *Viewer) present() error {
	img, rendered, err := v.session.Frame()
	if err != nil {
		return err
	}
	if !rendered {
		return nil
	}
	return v.window.Present(img)
}

func (v *Viewer) handleEvents() {
	for _, ev := range v.input.Events() {
		switch ev.Type {
		case input.EventQuit:
			v.running = false

		case input.EventWindowResize:
			w, h := v.window.DrawableSize()
			if err := v.session.Resize(w, h); err != nil {
				v.log.Warn("resize failed", zap.Int("width", w), zap.Int("height", h), zap.Error(err))
			}

		case input.EventExpose:
			v.session.Invalidate()

		case input.EventKeyDown:
			v.handleKey(ev.Key)

		case input.EventMouseDown:
			if ev.Button == sdl.BUTTON_LEFT {
				x, y := v.toDrawable(ev.MouseX, ev.MouseY)
				v.session.Press(x, y)
			}

		case input.EventMouseUp:
			if ev.Button == sdl.BUTTON_LEFT {
				x, y := v.toDrawable(ev.MouseX, ev.MouseY)
				v.session.Release(x, y)
			}

		case input.EventMouseMove:
			x, y := v.toDrawable(ev.MouseX, ev.MouseY)
			v.session.Move(x, y)

		case input.EventMouseWheel:
			v.zoom(ev.WheelY)

		case input.EventDropFile:
			if err := v.Open(ev.Path); err != nil {
				v.log.Error("open failed", zap.Error(err))
			}
		}
	}
}

func (v *Viewer) handleKey(key sdl.Keycode) {
	switch key {
	case sdl.K_ESCAPE, sdl.K_q:
		v.running = false
	case sdl.K_m:
		v.session.CycleMode()
		v.updateTitle()
	case sdl.K_r:
		v.session.Reset()
	case sdl.K_s:
		v.saveSnapshot()
	case sdl.K_LEFT:
		v.session.Nudge(-nudgeStep, 0)
	case sdl.K_RIGHT:
		v.session.Nudge(nudgeStep, 0)
	case sdl.K_UP:
		v.session.Nudge(0, -nudgeStep)
	case sdl.K_DOWN:
		v.session.Nudge(0, nudgeStep)
	case sdl.K_EQUALS, sdl.K_KP_PLUS:
		v.zoom(1)
	case sdl.K_MINUS, sdl.K_KP_MINUS:
		v.zoom(-1)
	}
}

func (v *Viewer) zoom(steps int) {
	changed, err := v.session.Zoom(steps)
	if err != nil {
		v.log.Warn("zoom failed", zap.Int("steps", steps), zap.Error(err))
		return
	}
	if changed {
		v.updateTitle()
	}
}

func (v *Viewer) saveSnapshot() {
	img, _, err := v.session.Frame()
	if err != nil {
		v.log.Error("snapshot render failed", zap.Error(err))
		return
	}
	path, err := v.snapshots.Save(img)
	if err != nil {
		v.log.Error("snapshot failed", zap.Error(err))
		return
	}
	v.log.Info("snapshot saved", zap.String("path", path))
}

// toDrawable converts window coordinates to drawable pixels, which differ
// on high-DPI displays.
func (v *Viewer) toDrawable(x, y int) (int, int) {
	ww, wh := v.window.window.GetSize()
	dw, dh := v.session.Size()
	if ww <= 0 || wh <= 0 {
		return x, y
	}
	return x * dw / int(ww), y * dh / int(wh)
}

func (v *Viewer) updateTitle() {
	title := v.cfg.Window.Title
	if v.session.name != "" {
		title = fmt.Sprintf("%s - %s", v.session.name, title)
	}
	if v.session.Navigable() {
		title = fmt.Sprintf("%s [%s, %.0f°]", title, v.session.Mode(), v.session.FOV())
	}
	v.window.SetTitle(title)
}
