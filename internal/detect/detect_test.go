package detect

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

const attrXMP = `<x:xmpmeta xmlns:x="adobe:ns:meta/">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about="" xmlns:GPano="http://ns.google.com/photos/1.0/panorama/"
    GPano:ProjectionType="%s" GPano:UsePanoramaViewer="True"/>
 </rdf:RDF>
</x:xmpmeta>`

const elemXMP = `<x:xmpmeta xmlns:x="adobe:ns:meta/">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about="" xmlns:GPano="http://ns.google.com/photos/1.0/panorama/">
   <GPano:ProjectionType> equirectangular </GPano:ProjectionType>
  </rdf:Description>
 </rdf:RDF>
</x:xmpmeta>`

// jpegWithXMP encodes a w x h JPEG and, if xmp is set, inserts it as an
// APP1 segment right after SOI.
func jpegWithXMP(t *testing.T, w, h int, xmp string) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h)), nil); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}
	data := buf.Bytes()
	if xmp == "" {
		return data
	}

	payload := append([]byte("http://ns.adobe.com/xap/1.0/\x00"), xmp...)
	seg := []byte{0xFF, 0xE1, 0, 0}
	binary.BigEndian.PutUint16(seg[2:], uint16(len(payload)+2))
	seg = append(seg, payload...)

	out := append([]byte{}, data[:2]...)
	out = append(out, seg...)
	return append(out, data[2:]...)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestReadMetadataXMP(t *testing.T) {
	tests := []struct {
		name string
		xmp  string
		want string
	}{
		{"attribute", sprintf(attrXMP, "equirectangular"), "equirectangular"},
		{"element", elemXMP, "equirectangular"},
		{"other projection", sprintf(attrXMP, "cylindrical"), "cylindrical"},
		{"no gpano", `<x:xmpmeta xmlns:x="adobe:ns:meta/"></x:xmpmeta>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, err := ReadMetadata(bytes.NewReader(jpegWithXMP(t, 64, 32, tt.xmp)))
			if err != nil {
				t.Fatalf("ReadMetadata: %v", err)
			}
			if !md.HasXMP {
				t.Error("expected HasXMP")
			}
			if md.ProjectionType != tt.want {
				t.Errorf("ProjectionType = %q, want %q", md.ProjectionType, tt.want)
			}
			if md.Width != 64 || md.Height != 32 || md.Format != "jpeg" {
				t.Errorf("unexpected metadata %+v", md)
			}
		})
	}
}

func TestIsEquirectangular(t *testing.T) {
	tests := []struct {
		name string
		md   Metadata
		want bool
	}{
		{"tagged small", Metadata{Width: 64, Height: 32, ProjectionType: "equirectangular"}, true},
		{"tagged odd aspect", Metadata{Width: 300, Height: 200, ProjectionType: "Equirectangular"}, true},
		{"tagged other", Metadata{Width: 4096, Height: 2048, ProjectionType: "cylindrical"}, false},
		{"untagged 2:1", Metadata{Width: 2048, Height: 1024}, true},
		{"untagged 2:1 too small", Metadata{Width: 1024, Height: 512}, false},
		{"untagged wide", Metadata{Width: 3000, Height: 1000}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEquirectangular(tt.md, DefaultMinWidth); got != tt.want {
				t.Errorf("IsEquirectangular(%+v) = %v, want %v", tt.md, got, tt.want)
			}
		})
	}
}

func TestDetectFile(t *testing.T) {
	dir := t.TempDir()
	files := []struct {
		name string
		data []byte
		want bool
	}{
		{"tagged.jpg", jpegWithXMP(t, 64, 32, sprintf(attrXMP, "equirectangular")), true},
		{"untagged.png", pngBytes(t, 2048, 1024), true},
		{"flat.png", pngBytes(t, 640, 480), false},
	}
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, f.data, 0644); err != nil {
			t.Fatal(err)
		}
		got, md, err := DetectFile(path, DefaultMinWidth)
		if err != nil {
			t.Fatalf("DetectFile(%s): %v", f.name, err)
		}
		if got != f.want {
			t.Errorf("DetectFile(%s) = %v (%+v), want %v", f.name, got, md, f.want)
		}
	}

	if _, _, err := DetectFile(filepath.Join(dir, "missing.jpg"), DefaultMinWidth); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReadMetadataNotAnImage(t *testing.T) {
	if _, err := ReadMetadata(bytes.NewReader([]byte("hello"))); err == nil {
		t.Error("expected error for non-image input")
	}
}

func sprintf(format, arg string) string {
	return string(bytes.Replace([]byte(format), []byte("%s"), []byte(arg), 1))
}
