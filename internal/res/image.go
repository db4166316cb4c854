package res

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// ErrNotImage is returned when image dimensions cannot be determined
var ErrNotImage = errors.New("not a decodable image")

// IsSVG reports whether the resource is an SVG image
func (r *Resource) IsSVG() bool {
	return r.MimeType == "image/svg+xml"
}

// ImageSize returns the intrinsic size of an image resource in CSS px. SVG
// images report their viewBox size.
func (r *Resource) ImageSize() (float64, float64, error) {
	if r.IsSVG() {
		icon, err := oksvg.ReadIconStream(bytes.NewReader(r.Data), oksvg.IgnoreErrorMode)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %v", ErrNotImage, err)
		}
		return icon.ViewBox.W, icon.ViewBox.H, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(r.Data))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	return float64(cfg.Width), float64(cfg.Height), nil
}

// RasterPNG returns PNG data for the image. PNG and JPEG data is returned as
// is with its fpdf type name; other formats are decoded and re-encoded, and
// SVG is rasterized at the given size in px.
func (r *Resource) RasterPNG(width, height int) ([]byte, string, error) {
	switch r.MimeType {
	case "image/png":
		return r.Data, "PNG", nil
	case "image/jpeg":
		return r.Data, "JPG", nil
	}

	var img image.Image
	if r.IsSVG() {
		icon, err := oksvg.ReadIconStream(bytes.NewReader(r.Data), oksvg.IgnoreErrorMode)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrNotImage, err)
		}
		if width <= 0 || height <= 0 {
			width, height = int(icon.ViewBox.W), int(icon.ViewBox.H)
		}
		if width <= 0 || height <= 0 {
			return nil, "", fmt.Errorf("%w: empty SVG viewBox", ErrNotImage)
		}
		rgba := image.NewRGBA(image.Rect(0, 0, width, height))
		icon.SetTarget(0, 0, float64(width), float64(height))
		scanner := rasterx.NewScannerGV(width, height, rgba, rgba.Bounds())
		icon.Draw(rasterx.NewDasher(width, height, scanner), 1)
		img = rgba
	} else {
		decoded, _, err := image.Decode(bytes.NewReader(r.Data))
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrNotImage, err)
		}
		img = decoded
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "PNG", nil
}

// ImageSize loads the image at ref and returns its intrinsic size in px
func (l *Loader) ImageSize(ref string) (float64, float64, error) {
	r, err := l.LoadImage(ref)
	if err != nil {
		return 0, 0, err
	}
	return r.ImageSize()
}

// RasterImage loads the image at ref and returns data fpdf can embed
func (l *Loader) RasterImage(ref string, width, height int) ([]byte, string, error) {
	r, err := l.LoadImage(ref)
	if err != nil {
		return nil, "", err
	}
	return r.RasterPNG(width, height)
}
