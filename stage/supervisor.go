package stage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/teranos/orrery/render"
)

// ScriptSupervisor checks captured frames against baselines so a change in
// layout or shading shows up as a failing comparison.
type ScriptSupervisor struct {
	baselineDir string
	currentDir  string
	tolerance   float64 // fraction of pixels allowed to differ
}

// NewScriptSupervisor creates a frame comparer with a 5% tolerance.
func NewScriptSupervisor(baselineDir, currentDir string) *ScriptSupervisor {
	return &ScriptSupervisor{
		baselineDir: baselineDir,
		currentDir:  currentDir,
		tolerance:   0.05,
	}
}

// WithTolerance sets the fraction of pixels allowed to differ.
func (ss *ScriptSupervisor) WithTolerance(tolerance float64) *ScriptSupervisor {
	ss.tolerance = tolerance
	return ss
}

// ValidateConsistency compares name.png in the current directory with its
// baseline. On a mismatch a name_diff.png is written next to the current
// frame.
func (ss *ScriptSupervisor) ValidateConsistency(name string) error {
	baseline, err := render.LoadPNG(filepath.Join(ss.baselineDir, name+".png"))
	if err != nil {
		return fmt.Errorf("failed to load baseline: %w", err)
	}
	current, err := render.LoadPNG(filepath.Join(ss.currentDir, name+".png"))
	if err != nil {
		return fmt.Errorf("failed to load current: %w", err)
	}

	difference := render.Compare(baseline, current)
	if difference <= ss.tolerance {
		return nil
	}

	if baseline.Bounds() == current.Bounds() {
		diffPath := filepath.Join(ss.currentDir, name+"_diff.png")
		if err := render.SavePNG(render.DiffImage(baseline, current), diffPath); err != nil {
			return fmt.Errorf("visual regression detected: %.2f%% difference, and the diff could not be saved: %w",
				difference*100, err)
		}
	}
	return fmt.Errorf("visual regression detected: %.2f%% difference (tolerance: %.2f%%)",
		difference*100, ss.tolerance*100)
}

// SetBaseline copies a captured frame into the baseline directory as name.png.
func (ss *ScriptSupervisor) SetBaseline(name, framePath string) error {
	if err := os.MkdirAll(ss.baselineDir, 0o755); err != nil {
		return fmt.Errorf("failed to create baseline directory: %w", err)
	}

	input, err := os.Open(framePath)
	if err != nil {
		return err
	}
	defer input.Close()

	output, err := os.Create(filepath.Join(ss.baselineDir, name+".png"))
	if err != nil {
		return err
	}
	defer output.Close()

	_, err = io.Copy(output, input)
	return err
}
