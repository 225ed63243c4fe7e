// Package config loads orrery settings from a TOML file.
//
// Every key is optional; anything left out keeps the value from Default,
// which mirrors the reference scene.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Camera CameraConfig `toml:"camera"`
	Frame  FrameConfig  `toml:"frame"`
	Spin   SpinConfig   `toml:"spin"`
	Stars  StarsConfig  `toml:"stars"`
	Assets AssetsConfig `toml:"assets"`
	Slides []SlideEntry `toml:"slides"`
}

// CameraConfig describes the viewpoint and how it travels between slides.
type CameraConfig struct {
	FOV         float64 `toml:"fov"`
	Near        float64 `toml:"near"`
	Far         float64 `toml:"far"`
	StartX      float64 `toml:"start_x"`
	Spacing     float64 `toml:"spacing"`
	Offset      float64 `toml:"offset"`
	MoveSeconds float64 `toml:"move_seconds"`
}

// MoveDuration returns the camera move duration.
func (c CameraConfig) MoveDuration() time.Duration {
	return time.Duration(c.MoveSeconds * float64(time.Second))
}

// FrameConfig controls the animation loop.
type FrameConfig struct {
	FPS int `toml:"fps"`
}

// Interval returns the time between frames.
func (f FrameConfig) Interval() time.Duration {
	if f.FPS <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(f.FPS)
}

// SpinConfig holds per-frame rotation increments in radians.
type SpinConfig struct {
	Body   float64 `toml:"body"`
	Clouds float64 `toml:"clouds"`
}

// StarsConfig shapes the background starfield.
type StarsConfig struct {
	Count  int     `toml:"count"`
	Spread float64 `toml:"spread"`
	Radius float64 `toml:"radius"`
	Seed   int64   `toml:"seed"`
}

// AssetsConfig locates textures.
type AssetsConfig struct {
	Dir string `toml:"dir"`
}

// SlideEntry is one slide of the deck.
type SlideEntry struct {
	Title string `toml:"title"`
	Body  string `toml:"body"`
}

// Default returns the configuration of the reference scene.
func Default() *Config {
	return &Config{
		Camera: CameraConfig{
			FOV:         75,
			Near:        0.1,
			Far:         1000,
			StartX:      -3,
			Spacing:     20,
			Offset:      4,
			MoveSeconds: 0.5,
		},
		Frame: FrameConfig{FPS: 30},
		Spin:  SpinConfig{Body: 0.005, Clouds: 0.008},
		Stars: StarsConfig{Count: 2000, Spread: 500, Radius: 0.25, Seed: 1},
		Assets: AssetsConfig{
			Dir: "assets",
		},
	}
}

// Load reads a TOML file over the defaults. A missing file is not an error
// and yields Default.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := Parse(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML data into cfg and validates the result.
func Parse(data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		return err
	}
	return cfg.Validate()
}

// Validate rejects settings the scene cannot be drawn with.
func (c *Config) Validate() error {
	var errs []error
	if c.Frame.FPS <= 0 {
		errs = append(errs, fmt.Errorf("frame.fps must be positive, got %d", c.Frame.FPS))
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		errs = append(errs, fmt.Errorf("camera.fov must be in (0, 180), got %g", c.Camera.FOV))
	}
	if c.Camera.Near <= 0 || c.Camera.Near >= c.Camera.Far {
		errs = append(errs, fmt.Errorf("camera.near must be positive and below camera.far (%g, %g)", c.Camera.Near, c.Camera.Far))
	}
	if c.Camera.MoveSeconds < 0 {
		errs = append(errs, fmt.Errorf("camera.move_seconds must not be negative, got %g", c.Camera.MoveSeconds))
	}
	if c.Stars.Count < 0 {
		errs = append(errs, fmt.Errorf("stars.count must not be negative, got %d", c.Stars.Count))
	}
	return errors.Join(errs...)
}

// Save writes cfg as TOML.
func Save(cfg *Config, path string) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
