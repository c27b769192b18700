package composite

import (
	"context"
	"fmt"
	"image"

	"github.com/gogpu/gg"
)

// GGBackend composites with the gg software renderer.
type GGBackend struct {
	quality int
}

// Name implements Backend.
func (b *GGBackend) Name() string { return "gg" }

// Composite implements Backend.
func (b *GGBackend) Composite(ctx context.Context, width, height int, draws []Draw) (Raster, error) {
	if err := checkCanvas(width, height); err != nil {
		return nil, err
	}

	dc := gg.NewContext(width, height)
	defer func() { _ = dc.Close() }()

	for _, d := range draws {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		buf := d.Image.Buffer()
		if buf == nil {
			return nil, fmt.Errorf("layer %q element %q has no pixels", d.Image.Layer, d.Image.Element)
		}
		dc.DrawImageEx(buf, gg.DrawImageOptions{
			X:             float64(d.Rect.X),
			Y:             float64(d.Rect.Y),
			DstWidth:      float64(d.Rect.W),
			DstHeight:     float64(d.Rect.H),
			Interpolation: gg.InterpBilinear,
			Opacity:       1,
			BlendMode:     gg.BlendNormal,
		})
	}
	return &stdRaster{img: snapshot(dc), quality: b.quality}, nil
}

// snapshot copies the canvas out of dc so the raster stays valid after the
// context is closed.
func snapshot(dc *gg.Context) image.Image {
	_ = dc.FlushGPU()
	return dc.Image()
}
