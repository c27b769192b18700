package composite

import (
	"context"
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
)

// XImageBackend composites with x/image/draw, scaling with Catmull-Rom.
type XImageBackend struct {
	quality int
}

// Name implements Backend.
func (b *XImageBackend) Name() string { return "ximage" }

// Composite implements Backend.
func (b *XImageBackend) Composite(ctx context.Context, width, height int, draws []Draw) (Raster, error) {
	if err := checkCanvas(width, height); err != nil {
		return nil, err
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	for _, d := range draws {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src := d.Image.Std()
		if src == nil {
			return nil, fmt.Errorf("layer %q element %q has no pixels", d.Image.Layer, d.Image.Element)
		}
		dst := image.Rect(d.Rect.X, d.Rect.Y, d.Rect.X+d.Rect.W, d.Rect.Y+d.Rect.H)
		if dst.Eq(src.Bounds().Sub(src.Bounds().Min).Add(dst.Min)) {
			xdraw.Draw(canvas, dst, src, src.Bounds().Min, xdraw.Over)
			continue
		}
		xdraw.CatmullRom.Scale(canvas, dst, src, src.Bounds(), xdraw.Over, nil)
	}
	return &stdRaster{img: canvas, quality: b.quality}, nil
}
