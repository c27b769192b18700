// Package composite loads layer images and stacks them onto output rasters.
package composite

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gogpu/gg"
	"golang.org/x/image/webp"
)

// ErrImageNotFound indicates a layer element has no image file.
var ErrImageNotFound = errors.New("image not found")

// Image is a decoded layer element. It converts lazily between the standard
// library representation and the gg buffer, once per direction.
type Image struct {
	Layer   string
	Element string
	Path    string

	std image.Image
	buf *gg.ImageBuf

	stdOnce sync.Once
	bufOnce sync.Once
}

// NewImage wraps an already-decoded image.
func NewImage(layer, element string, img image.Image) *Image {
	return &Image{Layer: layer, Element: element, std: img}
}

// Std returns the image as an image.Image.
func (i *Image) Std() image.Image {
	i.stdOnce.Do(func() {
		if i.std == nil && i.buf != nil {
			i.std = i.buf.ToStdImage()
		}
	})
	return i.std
}

// Buffer returns the image as a gg buffer.
func (i *Image) Buffer() *gg.ImageBuf {
	i.bufOnce.Do(func() {
		if i.buf == nil && i.std != nil {
			i.buf = gg.ImageBufFromImage(i.std)
		}
	})
	return i.buf
}

// Source loads the image for one element of one layer.
type Source interface {
	Load(ctx context.Context, layer, element string) (*Image, error)
}

// DirSource reads images from <Root>/<layer>/<element>.
type DirSource struct {
	Root string
}

// NewDirSource returns a source rooted at root.
func NewDirSource(root string) *DirSource {
	return &DirSource{Root: root}
}

// Load implements Source.
func (d *DirSource) Load(ctx context.Context, layer, element string) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(d.Root, layer, element)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrImageNotFound, path)
		}
		return nil, err
	}

	img, err := decodeFile(path)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	img.Layer, img.Element, img.Path = layer, element, path
	return img, nil
}

// decodeFile decodes PNG and JPEG through gg and WebP through x/image.
func decodeFile(path string) (*Image, error) {
	if strings.EqualFold(filepath.Ext(path), ".webp") {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		std, err := webp.Decode(f)
		if err != nil {
			return nil, err
		}
		return &Image{std: std}, nil
	}

	buf, err := gg.LoadImage(path)
	if err != nil {
		return nil, err
	}
	return &Image{buf: buf}, nil
}
