package res

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func TestLoadDataURLImage(t *testing.T) {
	l := NewLoader("", zaptest.NewLogger(t))
	ref := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 30, 20))

	r, err := l.LoadImage(ref)
	if err != nil {
		t.Fatalf("LoadImage() error = %v", err)
	}
	w, h, err := r.ImageSize()
	if err != nil {
		t.Fatalf("ImageSize() error = %v", err)
	}
	if w != 30 || h != 20 {
		t.Errorf("ImageSize() = %vx%v, want 30x20", w, h)
	}
}

func TestLoadRelativeFileAndSniff(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pic"), pngBytes(t, 4, 8), 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewLoader(filepath.Join(dir, "doc.html"), zaptest.NewLogger(t))

	r, err := l.Load("pic")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if r.MimeType != "image/png" || r.Type != ResourceTypeImage {
		t.Errorf("resource = %s / %v, want image/png image", r.MimeType, r.Type)
	}

	if _, err := l.LoadCSS("pic"); !errors.Is(err, ErrUnexpectedType) {
		t.Errorf("LoadCSS() error = %v, want ErrUnexpectedType", err)
	}
	if _, err := l.Load("missing.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSVGSizeAndRaster(t *testing.T) {
	svg := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 120 60"><rect width="120" height="60" fill="red"/></svg>`
	r := &Resource{Data: []byte(svg), MimeType: "image/svg+xml", Type: ResourceTypeImage}

	w, h, err := r.ImageSize()
	if err != nil {
		t.Fatalf("ImageSize() error = %v", err)
	}
	if w != 120 || h != 60 {
		t.Errorf("ImageSize() = %vx%v, want 120x60", w, h)
	}

	data, kind, err := r.RasterPNG(0, 0)
	if err != nil {
		t.Fatalf("RasterPNG() error = %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil || kind != "PNG" {
		t.Fatalf("RasterPNG() produced %q, decode error %v", kind, err)
	}
	if cfg.Width != 120 || cfg.Height != 60 {
		t.Errorf("raster size = %dx%d", cfg.Width, cfg.Height)
	}
}

func TestParseDataURLPlain(t *testing.T) {
	r, err := parseDataURL("data:text/css,p%20%7B%20margin%3A%200%20%7D")
	if err != nil {
		t.Fatalf("parseDataURL() error = %v", err)
	}
	if r.GetString() != "p { margin: 0 }" || r.Type != ResourceTypeCSS {
		t.Errorf("parseDataURL() = %q (%v)", r.GetString(), r.Type)
	}
}

func TestLoaderImageHelpers(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "logo.png"), pngBytes(t, 12, 6), 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewLoader(dir+string(filepath.Separator), zaptest.NewLogger(t))

	w, h, err := l.ImageSize("logo.png")
	if err != nil || w != 12 || h != 6 {
		t.Errorf("ImageSize() = %vx%v, %v; want 12x6", w, h, err)
	}
	data, kind, err := l.RasterImage("logo.png", 12, 6)
	if err != nil || kind != "PNG" || len(data) == 0 {
		t.Errorf("RasterImage() = %d bytes, %q, %v", len(data), kind, err)
	}
	if _, _, err := l.ImageSize("nope.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ImageSize(missing) error = %v, want ErrNotFound", err)
	}
}
