package main

import (
	"fmt"
	"image"
	"strconv"
	"strings"
	"time"

	"github.com/Faultbox/panoview/internal/frame"
	"github.com/Faultbox/panoview/pkg/panorama"
)

type renderOptions struct {
	Width, Height  int
	FOVDegrees     float64
	YawDegrees     float64
	PitchDegrees   float64
	Look           bool
	LookX, LookY   float64
	Trig           string
	AccuracyFactor int
	Workers        int
}

// parseLook parses "x,y". An empty string means no look target.
func parseLook(s string) (x, y float64, ok bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, false, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, false, fmt.Errorf("look target %q: want x,y", s)
	}
	x, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("look target %q: %w", s, err)
	}
	y, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("look target %q: %w", s, err)
	}
	return x, y, true, nil
}

// renderFrame renders one view of src. A nil src renders the placeholder.
func renderFrame(opts renderOptions, src image.Image) (*image.RGBA, error) {
	rf, err := panorama.BuildRayField(panorama.ViewportConfig{
		Width:  opts.Width,
		Height: opts.Height,
		FOV:    panorama.Degrees(opts.FOVDegrees),
	})
	if err != nil {
		return nil, err
	}
	trig, err := panorama.ParseTrig(opts.Trig, opts.AccuracyFactor)
	if err != nil {
		return nil, err
	}

	state := panorama.NewOrientationState()
	nav := panorama.NewNavigator(state, panorama.Absolute)
	if _, err := nav.Apply(panorama.SetOrientationTo(
		panorama.Degrees(opts.YawDegrees),
		panorama.Degrees(opts.PitchDegrees),
	), rf); err != nil {
		return nil, err
	}
	if opts.Look {
		if _, err := nav.Apply(panorama.LookAt(opts.LookX, opts.LookY), rf); err != nil {
			return nil, err
		}
	}

	dst := frame.New(opts.Width, opts.Height)
	p := panorama.NewProjector(panorama.NewSphericalMapper(trig), opts.Workers)
	ok, err := p.Render(rf, state.Snapshot(), src, dst)
	if err != nil {
		return nil, err
	}
	if !ok {
		frame.Placeholder(dst, frame.NoImageText)
	}
	return dst, nil
}

type benchOptions struct {
	Viewport panorama.ViewportConfig
	Frames   int
	Accuracy int
	Workers  int
}

type benchResult struct {
	TableBuild   time.Duration
	Direct       time.Duration // per frame
	Table        time.Duration // per frame
	MaxDX, MaxDY int
}

// runBench renders the same sweep of orientations with both trig
// strategies and compares the texels they pick.
func runBench(opts benchOptions, src *image.RGBA) (benchResult, error) {
	var res benchResult

	rf, err := panorama.BuildRayField(opts.Viewport)
	if err != nil {
		return res, err
	}

	start := time.Now()
	table, err := panorama.NewTableLookup(opts.Accuracy)
	if err != nil {
		return res, err
	}
	res.TableBuild = time.Since(start)

	direct := panorama.NewSphericalMapper(panorama.DirectTrig{})
	lookup := panorama.NewSphericalMapper(table)
	dst := frame.New(rf.Width(), rf.Height())

	timeFrames := func(m *panorama.SphericalMapper) (time.Duration, error) {
		p := panorama.NewProjector(m, opts.Workers)
		start := time.Now()
		for i := 0; i < opts.Frames; i++ {
			if _, err := p.Render(rf, sweep(i, opts.Frames), src, dst); err != nil {
				return 0, err
			}
		}
		return time.Since(start) / time.Duration(opts.Frames), nil
	}

	if res.Direct, err = timeFrames(direct); err != nil {
		return res, err
	}
	if res.Table, err = timeFrames(lookup); err != nil {
		return res, err
	}

	sw, sh := src.Bounds().Dx(), src.Bounds().Dy()
	for i := 0; i < opts.Frames; i++ {
		dx, dy := texelDisagreement(rf, sweep(i, opts.Frames), direct, lookup, sw, sh)
		res.MaxDX = max(res.MaxDX, dx)
		res.MaxDY = max(res.MaxDY, dy)
	}
	return res, nil
}

// sweep returns the i-th of n orientations turning once around and
// tilting up and down.
func sweep(i, n int) panorama.Orientation {
	t := float64(i) / float64(n)
	return panorama.NewOrientation(panorama.Degrees(360*t), panorama.Degrees(60*t-30))
}

// texelDisagreement returns the largest texel offset between two mappers
// over every ray of rf. Horizontal offsets wrap around the seam.
func texelDisagreement(rf *panorama.RayField, o panorama.Orientation, a, b *panorama.SphericalMapper, w, h int) (int, int) {
	maxDX, maxDY := 0, 0
	for y := 0; y < rf.Height(); y++ {
		for x := 0; x < rf.Width(); x++ {
			r := panorama.Rotate(rf.At(x, y), o)
			au, av := a.ToUV(r)
			bu, bv := b.ToUV(r)
			ax, ay := panorama.ToTexel(au, av, w, h)
			bx, by := panorama.ToTexel(bu, bv, w, h)
			dx := abs(ax - bx)
			dx = min(dx, w-dx)
			maxDX = max(maxDX, dx)
			maxDY = max(maxDY, abs(ay-by))
		}
	}
	return maxDX, maxDY
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
