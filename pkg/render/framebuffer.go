// Package render provides the pixel targets, textures, cameras and
// terminal output used to display pipeline frames.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"

	xdraw "golang.org/x/image/draw"

	"github.com/taigrr/tinyrender/pkg/raster"
)

// Framebuffer is a 2D array of pixels. It implements pipeline.PixelSink.
// In the terminal each cell shows two framebuffer rows using half-block
// characters, so Height is usually twice the terminal row count.
type Framebuffer struct {
	Width  int          // Width in pixels
	Height int          // Height in pixels
	Pixels []color.RGBA // Row-major pixel data, straight alpha
}

// NewFramebuffer creates a new framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	fb := &Framebuffer{}
	fb.Resize(width, height)
	return fb
}

// Resize changes the dimensions. The contents are cleared to transparent
// black.
func (fb *Framebuffer) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	fb.Width, fb.Height = width, height
	if n := width * height; cap(fb.Pixels) >= n {
		fb.Pixels = fb.Pixels[:n]
		clear(fb.Pixels)
	} else {
		fb.Pixels = make([]color.RGBA, n)
	}
}

// Size returns the framebuffer dimensions.
func (fb *Framebuffer) Size() (width, height int) {
	return fb.Width, fb.Height
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c color.RGBA) {
	for i := range fb.Pixels {
		fb.Pixels[i] = c
	}
}

// SetPixel stores a colour given as channels in [0, 1]. Channels outside
// that range are clamped. Out-of-range coordinates are ignored.
func (fb *Framebuffer) SetPixel(x, y int, r, g, b, a float64) {
	fb.SetRGBA(x, y, color.RGBA{channel(r), channel(g), channel(b), channel(a)})
}

// SetRGBA sets a pixel at (x, y) to the given color.
// Bounds checking is performed.
func (fb *Framebuffer) SetRGBA(x, y int, c color.RGBA) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// GetPixel returns the color at (x, y).
// Returns transparent black if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return color.RGBA{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// channel converts a [0, 1] intensity to 8 bits, clamping first. NaN maps
// to 0.
func channel(c float64) uint8 {
	if !(c > 0) {
		return 0
	}
	if c >= 1 {
		return 255
	}
	return uint8(math.Round(c * 255))
}

// DrawLine draws a line from (x0, y0) to (x1, y1), both endpoints
// included.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c color.RGBA) {
	for x, y := range raster.Line(x0, y0, x1, y1) {
		fb.SetRGBA(x, y, c)
	}
}

// DrawRect draws a filled rectangle.
func (fb *Framebuffer) DrawRect(x, y, w, h int, c color.RGBA) {
	for py := max(y, 0); py < min(y+h, fb.Height); py++ {
		for px := max(x, 0); px < min(x+w, fb.Width); px++ {
			fb.Pixels[py*fb.Width+px] = c
		}
	}
}

// ToImage converts the framebuffer to a standard Go image. Pixels keep
// their straight alpha.
func (fb *Framebuffer) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for i, c := range fb.Pixels {
		copy(img.Pix[i*4:], []uint8{c.R, c.G, c.B, c.A})
	}
	return img
}

// EncodePNG writes the framebuffer as a PNG, each pixel enlarged to a
// scale×scale block. A scale below 1 is treated as 1.
func (fb *Framebuffer) EncodePNG(w io.Writer, scale int) error {
	var img image.Image = fb.ToImage()
	if scale > 1 {
		dst := image.NewNRGBA(image.Rect(0, 0, fb.Width*scale, fb.Height*scale))
		xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
		img = dst
	}
	return png.Encode(w, img)
}

// SavePNG saves the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string, scale int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fb.EncodePNG(f, scale); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
