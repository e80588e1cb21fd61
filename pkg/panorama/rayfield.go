package panorama

import (
	"fmt"
	gomath "math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/panoview/pkg/math"
)

// RayField holds one camera-space unit vector per destination pixel, in a
// flat row-major buffer. It is immutable once built and may be shared by
// concurrent renders.
type RayField struct {
	cfg  ViewportConfig
	rays []math.Vec3
}

// BuildRayField precomputes the rays for cfg. Pixel (x, y) looks along
// normalize(x - width/2, y - height/2, cameraPlaneDistance).
func BuildRayField(cfg ViewportConfig) (*RayField, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rf := &RayField{
		cfg:  cfg,
		rays: make([]math.Vec3, cfg.Width*cfg.Height),
	}

	d := cfg.CameraPlaneDistance()
	halfW := float64(cfg.Width) / 2
	halfH := float64(cfg.Height) / 2

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for y := 0; y < cfg.Height; y++ {
		g.Go(func() error {
			row := rf.rays[y*cfg.Width : (y+1)*cfg.Width]
			vy := float64(y) - halfH
			for x := range row {
				row[x] = math.Vec3{X: float64(x) - halfW, Y: vy, Z: d}.Normalize()
			}
			return nil
		})
	}
	_ = g.Wait()

	return rf, nil
}

// Config returns the viewport the field was built for.
func (rf *RayField) Config() ViewportConfig {
	return rf.cfg
}

// Width returns the field width in pixels.
func (rf *RayField) Width() int {
	return rf.cfg.Width
}

// Height returns the field height in pixels.
func (rf *RayField) Height() int {
	return rf.cfg.Height
}

// At returns the unrotated ray for pixel (x, y). It panics if the pixel is
// outside the field, like a slice index would.
func (rf *RayField) At(x, y int) math.Vec3 {
	return rf.rays[y*rf.cfg.Width+x]
}

// RayAt returns the ray of the pixel under a pointer position.
func (rf *RayField) RayAt(px, py float64) (math.Vec3, error) {
	if !(math.Vec2{X: px, Y: py}).IsFinite() {
		return math.Vec3{}, fmt.Errorf("%w: pointer (%v, %v)", ErrNonFinite, px, py)
	}
	x := int(gomath.Floor(px))
	y := int(gomath.Floor(py))
	if x < 0 || y < 0 || x >= rf.cfg.Width || y >= rf.cfg.Height {
		return math.Vec3{}, fmt.Errorf("%w: pointer (%v, %v) outside %dx%d",
			ErrOutOfBounds, px, py, rf.cfg.Width, rf.cfg.Height)
	}
	return rf.At(x, y), nil
}

// row returns the rays of destination row y.
func (rf *RayField) row(y int) []math.Vec3 {
	return rf.rays[y*rf.cfg.Width : (y+1)*rf.cfg.Width]
}
