package scene

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/teranos/orrery/trip"
)

// DefaultMaxTextureSize bounds the longest side of a loaded texture.
const DefaultMaxTextureSize = 512

var extensions = []string{".jpg", ".jpeg", ".png", ".webp", ".gif", ".bmp"}

// Textures maps asset names to decoded images.
type Textures map[string]image.Image

// Loader reads textures from a directory. Failures are reported once per
// asset as recoverable trips and never abort loading of the rest.
type Loader struct {
	Dir     string
	MaxSize int
	handler *trip.Handler
	logger  *zap.Logger
}

// NewLoader creates a loader for dir. A nil handler gets a private one.
func NewLoader(dir string, handler *trip.Handler, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if handler == nil {
		handler = trip.NewHandler("loader", nil, logger)
	}
	return &Loader{
		Dir:     dir,
		MaxSize: DefaultMaxTextureSize,
		handler: handler,
		logger:  logger,
	}
}

// Handler returns the trip handler failures are recorded in.
func (l *Loader) Handler() *trip.Handler { return l.handler }

// Resolve finds the file for an asset name, trying each known extension.
func (l *Loader) Resolve(name string) (string, error) {
	for _, ext := range extensions {
		path := filepath.Join(l.Dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", &trip.AssetLoadError{
		Asset: name,
		Path:  filepath.Join(l.Dir, name+".*"),
		Err:   fs.ErrNotExist,
	}
}

// Load decodes and downsamples one texture.
func (l *Loader) Load(name string) (image.Image, error) {
	path, err := l.Resolve(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &trip.AssetLoadError{Asset: name, Path: path, Err: err}
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, &trip.AssetLoadError{Asset: name, Path: path, Err: fmt.Errorf("decode: %w", err)}
	}
	l.logger.Debug("texture loaded",
		zap.String("asset", name),
		zap.String("format", format),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()))

	return downsample(img, l.MaxSize), nil
}

// LoadAll loads every texture the scene names. Missing or broken textures
// are logged once and left out of the result.
func (l *Loader) LoadAll(s *Scene) Textures {
	out := make(Textures)
	for _, name := range s.TextureNames() {
		if _, done := out[name]; done {
			continue
		}
		img, err := l.Load(name)
		if err != nil {
			l.report(name, err)
			continue
		}
		out[name] = img
	}
	return out
}

func (l *Loader) report(name string, err error) {
	var assetErr *trip.AssetLoadError
	if !errors.As(err, &assetErr) {
		assetErr = &trip.AssetLoadError{Asset: name, Path: l.Dir, Err: err}
	}
	l.handler.Once("asset:"+name, assetErr.Trip())
}

// TextureNames lists every asset name referenced by the scene, in scene order.
func (s *Scene) TextureNames() []string {
	var names []string
	add := func(m Material) {
		if m.TextureName != "" {
			names = append(names, m.TextureName)
		}
	}
	add(s.Background)
	for _, b := range s.Bodies {
		add(b.Material)
		for _, r := range b.Rings {
			add(r.Material)
		}
	}
	return names
}

// Apply attaches loaded textures to the scene's materials. Materials whose
// texture is missing keep their flat color.
func (t Textures) Apply(s *Scene) {
	attach := func(m *Material) {
		if img, ok := t[m.TextureName]; ok {
			m.Texture = img
		}
	}
	attach(&s.Background)
	for _, b := range s.Bodies {
		attach(&b.Material)
		for i := range b.Rings {
			attach(&b.Rings[i].Material)
		}
	}
}

func downsample(img image.Image, max int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if max <= 0 || (w <= max && h <= max) {
		rgba := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
		return rgba
	}

	if w >= h {
		h = h * max / w
		w = max
	} else {
		w = w * max / h
		h = max
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
