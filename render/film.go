package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"regexp"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// FilmConfig defines the look of captured frames.
type FilmConfig struct {
	Foreground color.RGBA // Caption text color
	Shade      color.RGBA // Band drawn behind the caption
	OutputDir  string     // Directory to save film frames
}

// DefaultFilmConfig writes white captions on a translucent black band.
func DefaultFilmConfig(outputDir string) FilmConfig {
	return FilmConfig{
		Foreground: color.RGBA{255, 255, 255, 255},
		Shade:      color.RGBA{0, 0, 0, 160},
		OutputDir:  outputDir,
	}
}

// Film captures rendered frames to PNG files with a caption overlay.
type Film struct {
	config     FilmConfig
	font       font.Face
	lineHeight int
	frames     int
}

// NewFilm creates a film writer. The output directory is created on demand.
func NewFilm(config FilmConfig) *Film {
	return &Film{
		config:     config,
		font:       basicfont.Face7x13,
		lineHeight: 16,
	}
}

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// stripANSI removes ANSI escape sequences so styled HUD text can be captioned.
func stripANSI(text string) string {
	return ansiRegex.ReplaceAllString(text, "")
}

// Caption draws lines of text along the bottom of img on a shaded band.
func (f *Film) Caption(img *image.RGBA, lines []string) {
	if len(lines) == 0 {
		return
	}
	b := img.Bounds()
	bandTop := b.Max.Y - len(lines)*f.lineHeight - 4
	if bandTop < b.Min.Y {
		bandTop = b.Min.Y
	}
	band := image.Rect(b.Min.X, bandTop, b.Max.X, b.Max.Y)
	draw.Draw(img, band, image.NewUniform(f.config.Shade), image.Point{}, draw.Over)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(f.config.Foreground),
		Face: f.font,
	}
	for i, line := range lines {
		y := bandTop + (i+1)*f.lineHeight
		drawer.Dot = fixed.Point26_6{
			X: fixed.I(b.Min.X + 4),
			Y: fixed.I(y),
		}
		drawer.DrawString(stripANSI(line))
	}
}

// CaptureFrame writes img as a PNG file named after label and returns its
// path.
func (f *Film) CaptureFrame(img image.Image, label string) (string, error) {
	if f.config.OutputDir != "" {
		if err := os.MkdirAll(f.config.OutputDir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create film directory: %w", err)
		}
	}

	filename := filepath.Join(f.config.OutputDir, fmt.Sprintf("frame_%03d_%s.png", f.frames, label))
	file, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("failed to encode frame: %w", err)
	}
	f.frames++
	return filename, nil
}

// Frames returns how many frames have been captured.
func (f *Film) Frames() int { return f.frames }
