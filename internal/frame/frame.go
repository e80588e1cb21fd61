// Package frame prepares destination images that are not panorama
// projections: the empty-viewer placeholder and the flat image fit.
package frame

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// NoImageText is drawn when the viewer has nothing to show.
const NoImageText = "No image selected"

var (
	// Background fills placeholder and letterbox areas.
	Background = color.RGBA{R: 32, G: 32, B: 32, A: 255}
	// Foreground is the placeholder text color.
	Foreground = color.RGBA{R: 220, G: 220, B: 220, A: 255}
)

// New returns a w x h RGBA frame. Non-positive sizes give an empty frame.
func New(w, h int) *image.RGBA {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

// Fill paints dst with c.
func Fill(dst draw.Image, c color.Color) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// Placeholder clears dst and draws msg centered. An empty msg draws
// NoImageText.
func Placeholder(dst draw.Image, msg string) {
	if msg == "" {
		msg = NoImageText
	}
	Fill(dst, Background)

	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(Foreground),
		Face: face,
	}
	b := dst.Bounds()
	width := d.MeasureString(msg)
	m := face.Metrics()
	textHeight := m.Ascent + m.Descent

	x := fixed.I(b.Min.X+b.Dx()/2) - width/2
	y := fixed.I(b.Min.Y+b.Dy()/2) - textHeight/2 + m.Ascent
	d.Dot = fixed.Point26_6{X: x, Y: y}
	d.DrawString(msg)
}

// FitRect returns the largest rectangle inside dst with the aspect ratio
// of a srcW x srcH image, centered.
func FitRect(dst image.Rectangle, srcW, srcH int) image.Rectangle {
	dw, dh := dst.Dx(), dst.Dy()
	if srcW <= 0 || srcH <= 0 || dw <= 0 || dh <= 0 {
		return image.Rectangle{Min: dst.Min, Max: dst.Min}
	}
	w, h := dw, dw*srcH/srcW
	if h > dh {
		w, h = dh*srcW/srcH, dh
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	x := dst.Min.X + (dw-w)/2
	y := dst.Min.Y + (dh-h)/2
	return image.Rect(x, y, x+w, y+h)
}

// FitFlat scales src into dst preserving its aspect ratio. The unused
// border is filled with Background. A nil or empty src leaves a plain
// background.
func FitFlat(dst draw.Image, src image.Image) {
	Fill(dst, Background)
	if src == nil || src.Bounds().Empty() {
		return
	}
	sb := src.Bounds()
	r := FitRect(dst.Bounds(), sb.Dx(), sb.Dy())
	if r.Empty() {
		return
	}
	draw.ApproxBiLinear.Scale(dst, r, src, sb, draw.Src, nil)
}
