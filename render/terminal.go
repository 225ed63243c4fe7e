package render

import (
	"fmt"
	"image"
	"strings"

	"github.com/muesli/termenv"
)

// upperHalf draws the top pixel in the foreground color and the bottom pixel
// in the background color of one cell.
const upperHalf = "▀"

// Terminal converts an image into rows of half-block cells, two pixel rows
// per text row. An odd last pixel row is dropped.
func Terminal(img image.Image, profile termenv.Profile) string {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h < 2 {
		return ""
	}

	var sb strings.Builder
	for y := b.Min.Y; y+1 < b.Min.Y+h; y += 2 {
		if y > b.Min.Y {
			sb.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Min.X+w; x++ {
			if profile == termenv.Ascii {
				sb.WriteString(asciiShade(img, x, y))
				continue
			}
			sb.WriteString(termenv.String(upperHalf).
				Foreground(profile.Color(hex(img, x, y))).
				Background(profile.Color(hex(img, x, y+1))).
				String())
		}
	}
	return sb.String()
}

func hex(img image.Image, x, y int) string {
	r, g, b, _ := img.At(x, y).RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

// asciiShade picks a character by luminance for terminals without color.
func asciiShade(img image.Image, x, y int) string {
	const ramp = " .:-=+*#%@"
	r, g, b, _ := img.At(x, y).RGBA()
	lum := (299*r + 587*g + 114*b) / 1000
	i := int(lum) * (len(ramp) - 1) / 0xffff
	return ramp[i : i+1]
}
