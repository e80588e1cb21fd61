package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
)

// Truevision TGA, uncompressed (type 2) and RLE (type 10) true-color at
// 24 or 32 bits. TGA has no signature; the header bytes after the ID
// length identify it well enough for registration.
const (
	tgaHeaderSize   = 18
	tgaTypeRaw      = 2
	tgaTypeRLE      = 10
	tgaTopToBottom  = 0x20
	tgaRightToLeft  = 0x10
	tgaMaxDimension = 1 << 15
)

var errTGATruncated = errors.New("tga: pixel data truncated")

func init() {
	image.RegisterFormat("tga", "?\x00\x02", DecodeTGA, DecodeTGAConfig)
	image.RegisterFormat("tga", "?\x00\x0a", DecodeTGA, DecodeTGAConfig)
}

type tgaHeader struct {
	idLength   int
	imageType  byte
	width      int
	height     int
	bytesPP    int
	descriptor byte
}

func readTGAHeader(r io.Reader) (tgaHeader, error) {
	var b [tgaHeaderSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return tgaHeader{}, fmt.Errorf("tga: reading header: %w", err)
	}
	h := tgaHeader{
		idLength:   int(b[0]),
		imageType:  b[2],
		width:      int(b[12]) | int(b[13])<<8,
		height:     int(b[14]) | int(b[15])<<8,
		bytesPP:    int(b[16]) / 8,
		descriptor: b[17],
	}
	switch {
	case b[1] != 0:
		return h, errors.New("tga: color-mapped images not supported")
	case h.imageType != tgaTypeRaw && h.imageType != tgaTypeRLE:
		return h, fmt.Errorf("tga: unsupported image type %d", h.imageType)
	case b[16] != 24 && b[16] != 32:
		return h, fmt.Errorf("tga: unsupported bit depth %d", b[16])
	case h.width == 0 || h.height == 0 || h.width > tgaMaxDimension || h.height > tgaMaxDimension:
		return h, fmt.Errorf("tga: bad dimensions %dx%d", h.width, h.height)
	}
	return h, nil
}

// DecodeTGAConfig returns the dimensions of a TGA image.
func DecodeTGAConfig(r io.Reader) (image.Config, error) {
	h, err := readTGAHeader(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{ColorModel: color.RGBAModel, Width: h.width, Height: h.height}, nil
}

// DecodeTGA decodes a TGA image into an *image.RGBA.
func DecodeTGA(r io.Reader) (image.Image, error) {
	h, err := readTGAHeader(r)
	if err != nil {
		return nil, err
	}
	if _, err := io.CopyN(io.Discard, r, int64(h.idLength)); err != nil {
		return nil, errTGATruncated
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("tga: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, h.width, h.height))
	if h.imageType == tgaTypeRaw {
		err = h.decodeRaw(img, data)
	} else {
		err = h.decodeRLE(img, data)
	}
	if err != nil {
		return nil, err
	}
	return img, nil
}

// put stores the i-th pixel in file order, honoring the origin bits.
func (h tgaHeader) put(img *image.RGBA, i int, px []byte) {
	x, y := i%h.width, i/h.width
	if h.descriptor&tgaRightToLeft != 0 {
		x = h.width - 1 - x
	}
	if h.descriptor&tgaTopToBottom == 0 {
		y = h.height - 1 - y
	}
	o := img.PixOffset(x, y)
	img.Pix[o+0] = px[2]
	img.Pix[o+1] = px[1]
	img.Pix[o+2] = px[0]
	if h.bytesPP == 4 {
		img.Pix[o+3] = px[3]
	} else {
		img.Pix[o+3] = 0xff
	}
}

func (h tgaHeader) decodeRaw(img *image.RGBA, data []byte) error {
	n := h.width * h.height
	if len(data) < n*h.bytesPP {
		return errTGATruncated
	}
	for i := 0; i < n; i++ {
		h.put(img, i, data[i*h.bytesPP:])
	}
	return nil
}

func (h tgaHeader) decodeRLE(img *image.RGBA, data []byte) error {
	n := h.width * h.height
	i, p := 0, 0
	for i < n {
		if p >= len(data) {
			return errTGATruncated
		}
		packet := data[p]
		p++
		count := int(packet&0x7f) + 1
		if i+count > n {
			count = n - i
		}

		if packet&0x80 != 0 {
			if p+h.bytesPP > len(data) {
				return errTGATruncated
			}
			px := data[p : p+h.bytesPP]
			p += h.bytesPP
			for k := 0; k < count; k++ {
				h.put(img, i, px)
				i++
			}
			continue
		}

		if p+count*h.bytesPP > len(data) {
			return errTGATruncated
		}
		for k := 0; k < count; k++ {
			h.put(img, i, data[p:])
			p += h.bytesPP
			i++
		}
	}
	return nil
}
