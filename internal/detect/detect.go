// Package detect decides whether an image is an equirectangular panorama.
//
// An XMP GPano:ProjectionType tag is authoritative. Untagged images count
// as panoramas when they are exactly twice as wide as tall and at least
// a minimum width.
package detect

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	// decoders for DecodeConfig
	_ "github.com/Faultbox/panoview/internal/imageio"
)

// GPanoNamespace is the Google Photo Sphere XMP namespace.
const GPanoNamespace = "http://ns.google.com/photos/1.0/panorama/"

// Equirectangular is the GPano projection type this viewer renders.
const Equirectangular = "equirectangular"

// DefaultMinWidth is the narrowest untagged 2:1 image treated as a panorama.
const DefaultMinWidth = 2048

var (
	xmpStart = []byte("<x:xmpmeta")
	xmpEnd   = []byte("</x:xmpmeta>")
)

// Metadata is what detection needs to know about an image.
type Metadata struct {
	Format         string
	Width          int
	Height         int
	HasXMP         bool
	ProjectionType string
}

// ReadMetadata reads dimensions and the XMP projection type from r.
// Malformed XMP is ignored; undecodable images are an error.
func ReadMetadata(r io.Reader) (Metadata, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Metadata{}, fmt.Errorf("reading image: %w", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Metadata{}, fmt.Errorf("decoding image header: %w", err)
	}

	md := Metadata{Format: format, Width: cfg.Width, Height: cfg.Height}
	if packet := findXMP(data); packet != nil {
		md.HasXMP = true
		md.ProjectionType = projectionType(packet)
	}
	return md, nil
}

// IsEquirectangular applies the detection rule to md.
func IsEquirectangular(md Metadata, minWidth int) bool {
	if md.ProjectionType != "" {
		return strings.EqualFold(md.ProjectionType, Equirectangular)
	}
	return md.Width >= minWidth && md.Width == 2*md.Height
}

// DetectFile reads metadata from path and applies IsEquirectangular.
func DetectFile(path string, minWidth int) (bool, Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, Metadata{}, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	md, err := ReadMetadata(f)
	if err != nil {
		return false, Metadata{}, err
	}
	return IsEquirectangular(md, minWidth), md, nil
}

// findXMP returns the first x:xmpmeta element in data. JPEG APP1, PNG iTXt
// and WebP XMP chunks all embed the packet as plain text.
func findXMP(data []byte) []byte {
	start := bytes.Index(data, xmpStart)
	if start < 0 {
		return nil
	}
	end := bytes.Index(data[start:], xmpEnd)
	if end < 0 {
		return nil
	}
	return data[start : start+end+len(xmpEnd)]
}

// projectionType returns GPano:ProjectionType, written either as an
// rdf:Description attribute or as a child element.
func projectionType(packet []byte) string {
	dec := xml.NewDecoder(bytes.NewReader(packet))
	dec.Strict = false
	for {
		tok, err := dec.Token()
		if err != nil {
			return ""
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		for _, attr := range se.Attr {
			if attr.Name.Space == GPanoNamespace && attr.Name.Local == "ProjectionType" {
				return strings.TrimSpace(attr.Value)
			}
		}
		if se.Name.Space == GPanoNamespace && se.Name.Local == "ProjectionType" {
			var value string
			if err := dec.DecodeElement(&value, &se); err != nil {
				return ""
			}
			return strings.TrimSpace(value)
		}
	}
}
