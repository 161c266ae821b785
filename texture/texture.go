package texture

import (
	"image"
	"image/draw"

	"github.com/nfnt/resize"
)

// Texture represents a decoded image ready to be rendered.
// Textures are immutable once created and shared by reference.
type Texture struct {
	// ID is the asset id the texture was created from
	ID string
	// Image holds the alpha-premultiplied RGBA pixels
	Image *image.RGBA
}

// Width returns the texture width in pixels
func (t *Texture) Width() int {
	return t.Image.Bounds().Dx()
}

// Height returns the texture height in pixels
func (t *Texture) Height() int {
	return t.Image.Bounds().Dy()
}

// FromImage converts a decoded image into a texture
// maxEdge bounds the longest edge of the texture, larger images are downscaled
// keeping their aspect ratio (0 keeps the original size)
func FromImage(id string, img image.Image, maxEdge uint) *Texture {
	b := img.Bounds()
	if maxEdge > 0 && (uint(b.Dx()) > maxEdge || uint(b.Dy()) > maxEdge) {
		img = resize.Thumbnail(maxEdge, maxEdge, img, resize.Lanczos3)
		b = img.Bounds()
	}

	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Bounds().Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}

	return &Texture{ID: id, Image: rgba}
}
