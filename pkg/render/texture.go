package render

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"math"
	"os"

	// Additional texture formats
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	xdraw "golang.org/x/image/draw"
)

// WrapMode determines how texture coordinates outside [0,1] are handled.
type WrapMode int

const (
	WrapClamp  WrapMode = iota // Clamp to edge
	WrapRepeat                 // Tile the texture
)

// Texture holds a 2D image for texture mapping. It implements
// shaders.Sampler.
type Texture struct {
	Width  int
	Height int
	Pixels []color.RGBA // Row-major pixel data, straight alpha
	Wrap   WrapMode
}

// NewTexture creates an empty texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]color.RGBA, width*height),
	}
}

// LoadTexture loads a texture from a PNG, JPEG, BMP, TIFF or WebP file.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}
	return TextureFromImage(img), nil
}

// TextureFromImage creates a texture from an image.Image.
func TextureFromImage(img image.Image) *Texture {
	b := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || b.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		xdraw.Copy(nrgba, image.Point{}, img, b, xdraw.Src, nil)
	}
	return textureFromNRGBA(nrgba)
}

func textureFromNRGBA(img *image.NRGBA) *Texture {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	tex := NewTexture(w, h)
	for y := range h {
		row := img.Pix[y*img.Stride:]
		for x := range w {
			p := row[x*4 : x*4+4]
			tex.Pixels[y*w+x] = color.RGBA{p[0], p[1], p[2], p[3]}
		}
	}
	return tex
}

// Fit returns the texture resampled so neither side exceeds maxSize,
// keeping the aspect ratio. Textures that already fit are returned as is.
func (t *Texture) Fit(maxSize int) *Texture {
	if maxSize <= 0 || (t.Width <= maxSize && t.Height <= maxSize) {
		return t
	}
	scale := float64(maxSize) / float64(max(t.Width, t.Height))
	w := max(1, int(math.Round(float64(t.Width)*scale)))
	h := max(1, int(math.Round(float64(t.Height)*scale)))

	src := image.NewNRGBA(image.Rect(0, 0, t.Width, t.Height))
	for i, c := range t.Pixels {
		copy(src.Pix[i*4:], []uint8{c.R, c.G, c.B, c.A})
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	out := textureFromNRGBA(dst)
	out.Wrap = t.Wrap
	return out
}

// NewCheckerTexture creates a procedural checkerboard texture.
func NewCheckerTexture(width, height, checkSize int, c1, c2 color.RGBA) *Texture {
	tex := NewTexture(width, height)
	for y := range height {
		for x := range width {
			cx := x / checkSize
			cy := y / checkSize
			if (cx+cy)%2 == 0 {
				tex.SetPixel(x, y, c1)
			} else {
				tex.SetPixel(x, y, c2)
			}
		}
	}
	return tex
}

// SetPixel sets a pixel in the texture.
func (t *Texture) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = c
}

// GetPixel returns the pixel at (x, y) with bounds checking.
func (t *Texture) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return color.RGBA{}
	}
	return t.Pixels[y*t.Width+x]
}

// Sample returns the texel nearest to UV coordinate (u, v). V runs from
// the bottom of the image (v=0) to the top (v=1); the texel is found by
// rounding u·(width-1) and (1-v)·(height-1). Coordinates outside [0, 1]
// are handled by the wrap mode.
func (t *Texture) Sample(u, v float64) color.RGBA {
	if t.Width == 0 || t.Height == 0 {
		return color.RGBA{}
	}
	u = wrapCoord(u, t.Wrap)
	v = wrapCoord(v, t.Wrap)

	x := int(math.Round(u * float64(t.Width-1)))
	y := int(math.Round((1 - v) * float64(t.Height-1)))
	return t.Pixels[y*t.Width+x]
}

// wrapCoord maps a coordinate into [0, 1]. NaN maps to 0.
func wrapCoord(coord float64, mode WrapMode) float64 {
	if math.IsNaN(coord) {
		return 0
	}
	if mode == WrapRepeat && !math.IsInf(coord, 0) {
		coord -= math.Floor(coord)
	}
	return math.Max(0, math.Min(1, coord))
}
