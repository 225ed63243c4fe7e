package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// Compare returns the fraction of pixels that differ between two images.
// Images of different size are entirely different.
func Compare(img1, img2 image.Image) float64 {
	bounds1 := img1.Bounds()
	bounds2 := img2.Bounds()
	if bounds1.Size() != bounds2.Size() {
		return 1.0
	}

	totalPixels := bounds1.Dx() * bounds1.Dy()
	if totalPixels == 0 {
		return 0
	}
	differentPixels := 0
	off := bounds2.Min.Sub(bounds1.Min)

	for y := bounds1.Min.Y; y < bounds1.Max.Y; y++ {
		for x := bounds1.Min.X; x < bounds1.Max.X; x++ {
			r1, g1, b1, a1 := img1.At(x, y).RGBA()
			r2, g2, b2, a2 := img2.At(x+off.X, y+off.Y).RGBA()
			if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
				differentPixels++
			}
		}
	}

	return float64(differentPixels) / float64(totalPixels)
}

// DiffImage highlights differing pixels in red over a dimmed baseline.
func DiffImage(baseline, current image.Image) *image.RGBA {
	bounds := baseline.Bounds()
	diff := image.NewRGBA(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			baseColor := baseline.At(x, y)
			r, g, b, a := baseColor.RGBA()
			r2, g2, b2, a2 := current.At(x, y).RGBA()

			if r != r2 || g != g2 || b != b2 || a != a2 {
				diff.SetRGBA(x, y, color.RGBA{255, 0, 0, 255})
				continue
			}
			diff.SetRGBA(x, y, color.RGBA{
				uint8(r >> 9), // Dim by dividing by 2 (shift right)
				uint8(g >> 9),
				uint8(b >> 9),
				uint8(a >> 8),
			})
		}
	}
	return diff
}

// LoadPNG reads an image from file.
func LoadPNG(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// SavePNG writes img to path.
func SavePNG(img image.Image, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return png.Encode(file, img)
}
