package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/orrery/config"
	"github.com/teranos/orrery/render"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		assetsDir, logFile, verbose = "", "", false
		initForce, captureReport = false, false
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCapture_OneFramePerSlide(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "orrery.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[stars]\ncount = 50\n"), 0o644))
	out := filepath.Join(dir, "frames")

	stdout, err := execute(t, "capture",
		"--config", cfgPath,
		"--assets", filepath.Join(dir, "none"),
		"--log-file", filepath.Join(dir, "capture.log"),
		"--out", out, "--width", "64", "--height", "36")
	require.NoError(t, err)
	assert.Contains(t, stdout, "captured 10 frames")

	entries, err := filepath.Glob(filepath.Join(out, "frame_*.png"))
	require.NoError(t, err)
	require.Len(t, entries, 10)
	assert.Equal(t, "frame_000_sun.png", filepath.Base(entries[0]))
	assert.Equal(t, "frame_009_pluto.png", filepath.Base(entries[9]))
	assert.NoFileExists(t, filepath.Join(out, "index.html"))

	sun, err := render.LoadPNG(entries[0])
	require.NoError(t, err)
	assert.Equal(t, 64, sun.Bounds().Dx())
	assert.Equal(t, 36, sun.Bounds().Dy())

	log, err := os.ReadFile(filepath.Join(dir, "capture.log"))
	require.NoError(t, err)
	assert.Contains(t, string(log), "frame captured")
	assert.Contains(t, string(log), "captured with missing textures")
}

func TestCapture_Report(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "frames")

	_, err := execute(t, "capture",
		"--config", filepath.Join(dir, "missing.toml"),
		"--assets", dir,
		"--log-file", filepath.Join(dir, "capture.log"),
		"--out", out, "--width", "32", "--height", "18", "--report")
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	page := string(content)
	assert.Contains(t, page, "<strong>Frames:</strong> 10 captured")
	assert.Contains(t, page, "32x18")
	assert.Contains(t, page, "Stumbles:")
	assert.Contains(t, page, "load asset")
}

func TestCapture_RejectsBadSize(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "capture",
		"--config", filepath.Join(dir, "missing.toml"),
		"--log-file", filepath.Join(dir, "capture.log"),
		"--out", dir, "--width", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frame size must be positive")
}

func TestInit_WritesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orrery.toml")
	logPath := filepath.Join(dir, "init.log")

	stdout, err := execute(t, "init", "--config", path, "--log-file", logPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "wrote "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	def := config.Default()
	assert.Equal(t, def.Camera, cfg.Camera)
	assert.Equal(t, def.Frame, cfg.Frame)
	assert.Equal(t, def.Stars, cfg.Stars)
	assert.Equal(t, def.Assets, cfg.Assets)
	assert.Empty(t, cfg.Slides)

	_, err = execute(t, "init", "--config", path, "--log-file", logPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(t, "init", "--config", path, "--log-file", logPath, "--force")
	assert.NoError(t, err)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "sun", slug("Sun", 0))
	assert.Equal(t, "kuiper-belt", slug("Kuiper Belt!", 3))
	assert.Equal(t, "slide4", slug("☉", 4))
}
