package panorama

import (
	"fmt"
	"image"
	"image/draw"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/panoview/pkg/math"
)

// bandRows is the number of destination rows handed to one worker at a time.
const bandRows = 16

// Projector renders destination frames from a ray field, an orientation
// snapshot and a source panorama.
type Projector struct {
	mapper  *SphericalMapper
	workers int
}

// NewProjector returns a projector using mapper. workers <= 0 uses
// GOMAXPROCS. A nil mapper uses DirectTrig.
func NewProjector(mapper *SphericalMapper, workers int) *Projector {
	if mapper == nil {
		mapper = NewSphericalMapper(nil)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Projector{mapper: mapper, workers: workers}
}

// Mapper returns the spherical mapper in use.
func (p *Projector) Mapper() *SphericalMapper {
	return p.mapper
}

// Workers returns the maximum number of concurrent row bands.
func (p *Projector) Workers() int {
	return p.workers
}

// Render overwrites every pixel of dst with the source texel seen through
// it at orientation o. It reports false without touching dst when there is
// no source to sample; drawing a placeholder is up to the caller.
//
// No pixel depends on another, so the output does not depend on how rows
// are split between workers.
func (p *Projector) Render(rf *RayField, o Orientation, src image.Image, dst draw.Image) (bool, error) {
	if src == nil || src.Bounds().Empty() {
		return false, nil
	}
	db := dst.Bounds()
	if db.Dx() != rf.Width() || db.Dy() != rf.Height() {
		return false, fmt.Errorf("%w: destination %dx%d, ray field %dx%d",
			ErrFrameSize, db.Dx(), db.Dy(), rf.Width(), rf.Height())
	}

	renderRows := p.genericRows
	srcRGBA, srcOK := src.(*image.RGBA)
	dstRGBA, dstOK := dst.(*image.RGBA)
	if srcOK && dstOK {
		renderRows = func(rf *RayField, o Orientation, _ image.Image, _ draw.Image, y0, y1 int) {
			p.rgbaRows(rf, o, srcRGBA, dstRGBA, y0, y1)
		}
	}

	var g errgroup.Group
	g.SetLimit(p.workers)
	for y0 := 0; y0 < rf.Height(); y0 += bandRows {
		y1 := min(y0+bandRows, rf.Height())
		g.Go(func() error {
			renderRows(rf, o, src, dst, y0, y1)
			return nil
		})
	}
	_ = g.Wait()

	return true, nil
}

// texel returns the source pixel, relative to the source bounds, seen
// along unrotated ray r.
func (p *Projector) texel(r math.Vec3, o Orientation, sw, sh int) (int, int) {
	u, v := p.mapper.ToUV(Rotate(r, o))
	return ToTexel(u, v, sw, sh)
}

func (p *Projector) genericRows(rf *RayField, o Orientation, src image.Image, dst draw.Image, y0, y1 int) {
	sb := src.Bounds()
	db := dst.Bounds()
	sw, sh := sb.Dx(), sb.Dy()
	for y := y0; y < y1; y++ {
		for x, r := range rf.row(y) {
			tx, ty := p.texel(r, o, sw, sh)
			dst.Set(db.Min.X+x, db.Min.Y+y, src.At(sb.Min.X+tx, sb.Min.Y+ty))
		}
	}
}

func (p *Projector) rgbaRows(rf *RayField, o Orientation, src, dst *image.RGBA, y0, y1 int) {
	sb := src.Bounds()
	db := dst.Bounds()
	sw, sh := sb.Dx(), sb.Dy()
	for y := y0; y < y1; y++ {
		di := dst.PixOffset(db.Min.X, db.Min.Y+y)
		for _, r := range rf.row(y) {
			tx, ty := p.texel(r, o, sw, sh)
			si := src.PixOffset(sb.Min.X+tx, sb.Min.Y+ty)
			copy(dst.Pix[di:di+4], src.Pix[si:si+4])
			di += 4
		}
	}
}
