package render

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// quadTexture is 2×2: red top-left, green top-right, blue bottom-left,
// white bottom-right.
func quadTexture() *Texture {
	tex := NewTexture(2, 2)
	tex.SetPixel(0, 0, ColorRed)
	tex.SetPixel(1, 0, ColorGreen)
	tex.SetPixel(0, 1, ColorBlue)
	tex.SetPixel(1, 1, ColorWhite)
	return tex
}

func TestTextureSample(t *testing.T) {
	tex := quadTexture()

	tests := []struct {
		name string
		u, v float64
		wrap WrapMode
		want color.RGBA
	}{
		{"bottom left", 0, 0, WrapClamp, ColorBlue},
		{"top right", 1, 1, WrapClamp, ColorGreen},
		{"rounds down", 0.49, 0.51, WrapClamp, ColorRed},
		{"rounds up", 0.5, 0.2, WrapClamp, ColorWhite},
		{"clamped", 1.5, -0.2, WrapClamp, ColorWhite},
		{"clamped negative", -3, 7, WrapClamp, ColorRed},
		{"repeat", 1.25, 2.9, WrapRepeat, ColorRed},
		{"repeat negative", -0.25, 0, WrapRepeat, ColorWhite},
		{"nan", math.NaN(), math.NaN(), WrapClamp, ColorBlue},
		{"inf", math.Inf(1), math.Inf(-1), WrapRepeat, ColorWhite},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tex.Wrap = tc.wrap
			if got := tex.Sample(tc.u, tc.v); got != tc.want {
				t.Errorf("Sample(%v, %v) = %v, want %v", tc.u, tc.v, got, tc.want)
			}
		})
	}
}

func TestTextureSampleEmpty(t *testing.T) {
	if got := NewTexture(0, 0).Sample(0.5, 0.5); got != (color.RGBA{}) {
		t.Errorf("empty texture sampled %v", got)
	}
}

func TestTextureFromImage(t *testing.T) {
	// A sub-image with a non-zero origin and translucent pixels.
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src.SetNRGBA(2, 1, color.NRGBA{200, 100, 50, 128})
	sub := src.SubImage(image.Rect(2, 1, 4, 3))

	tex := TextureFromImage(sub)
	if tex.Width != 2 || tex.Height != 2 {
		t.Fatalf("size = %d×%d, want 2×2", tex.Width, tex.Height)
	}
	if got := tex.GetPixel(0, 0); got != (color.RGBA{200, 100, 50, 128}) {
		t.Errorf("pixel = %v, want straight alpha preserved", got)
	}

	// Non-NRGBA sources are converted.
	gray := image.NewGray(image.Rect(0, 0, 1, 1))
	gray.SetGray(0, 0, color.Gray{77})
	if got := TextureFromImage(gray).GetPixel(0, 0); got != (color.RGBA{77, 77, 77, 255}) {
		t.Errorf("gray pixel = %v", got)
	}
}

func TestLoadTexture(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(1, 1, color.NRGBA{1, 2, 3, 255})
	path := filepath.Join(t.TempDir(), "tex.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	tex, err := LoadTexture(path)
	if err != nil {
		t.Fatal(err)
	}
	if tex.Width != 3 || tex.Height != 2 || tex.GetPixel(1, 1) != (color.RGBA{1, 2, 3, 255}) {
		t.Errorf("loaded %d×%d with pixel %v", tex.Width, tex.Height, tex.GetPixel(1, 1))
	}
	if tex.Wrap != WrapClamp {
		t.Errorf("default wrap = %v, want WrapClamp", tex.Wrap)
	}

	if _, err := LoadTexture(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestTextureFit(t *testing.T) {
	tex := NewCheckerTexture(64, 32, 8, ColorWhite, ColorBlack)
	tex.Wrap = WrapRepeat

	small := tex.Fit(16)
	if small.Width != 16 || small.Height != 8 {
		t.Errorf("Fit(16) = %d×%d, want 16×8", small.Width, small.Height)
	}
	if small.Wrap != WrapRepeat {
		t.Error("Fit dropped the wrap mode")
	}
	if tex.Fit(64) != tex || tex.Fit(0) != tex {
		t.Error("a texture that already fits should be returned unchanged")
	}
}

func TestCheckerTexture(t *testing.T) {
	tex := NewCheckerTexture(4, 4, 2, ColorWhite, ColorBlack)
	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{0, 0, ColorWhite},
		{2, 0, ColorBlack},
		{1, 3, ColorBlack},
		{3, 3, ColorWhite},
	}
	for _, tc := range tests {
		if got := tex.GetPixel(tc.x, tc.y); got != tc.want {
			t.Errorf("GetPixel(%d, %d) = %v, want %v", tc.x, tc.y, got, tc.want)
		}
	}
}
