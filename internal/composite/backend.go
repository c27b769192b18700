package composite

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/opmodel/combogen/internal/combo"
)

// Format is an output encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return "png"
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// ParseFormat validates a format name. The empty string selects PNG.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	default:
		return "", fmt.Errorf("unknown output format %q (valid: png, jpeg)", s)
	}
}

// DefaultJPEGQuality is used when no quality is configured.
const DefaultJPEGQuality = 90

// Draw places one image into a rectangle of the canvas.
type Draw struct {
	Image *Image
	Rect  combo.Rect
}

// Raster is a composited canvas ready to encode.
type Raster interface {
	Encode(w io.Writer, f Format) error
	Image() image.Image
}

// Backend stacks draws in order, later draws on top.
type Backend interface {
	Name() string
	Composite(ctx context.Context, width, height int, draws []Draw) (Raster, error)
}

// BackendOptions configures a backend.
type BackendOptions struct {
	JPEGQuality int
}

// NewBackend returns the backend registered under name (default gg).
func NewBackend(name string, opts BackendOptions) (Backend, error) {
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = DefaultJPEGQuality
	}
	switch name {
	case "", "gg":
		return &GGBackend{quality: opts.JPEGQuality}, nil
	case "ximage":
		return &XImageBackend{quality: opts.JPEGQuality}, nil
	default:
		return nil, fmt.Errorf("unknown compositing backend %q (valid: gg, ximage)", name)
	}
}

// stdRaster encodes any image.Image with the standard codecs.
type stdRaster struct {
	img     image.Image
	quality int
}

func (r *stdRaster) Image() image.Image { return r.img }

func (r *stdRaster) Encode(w io.Writer, f Format) error {
	switch f {
	case FormatJPEG:
		return jpeg.Encode(w, r.img, &jpeg.Options{Quality: r.quality})
	default:
		return png.Encode(w, r.img)
	}
}

func checkCanvas(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	return nil
}
