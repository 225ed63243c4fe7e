// Package main is the orrery command: an animated solar system tour rendered
// in the terminal.
//
// Usage:
//
//	orrery                      # run the tour
//	orrery --assets ./textures  # use textures from another directory
//	orrery capture --out frames # render one PNG per slide
//	orrery init                 # write a default orrery.toml
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/teranos/orrery/config"
	"github.com/teranos/orrery/show"
)

const defaultLogFile = "orrery.log"

var (
	// Global flags
	configPath string
	assetsDir  string
	verbose    bool
	logFile    string

	// Logger
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "orrery",
	Short: "A solar system tour in your terminal",
	Long: `orrery renders the Sun, the planets and Pluto with a ray caster and
flies a camera between them, one slide per body.

Use the left and right arrow keys or the on-screen controls to move between
slides, and q to quit.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := logFile
		if path == "" && cmd == cmd.Root() {
			// The tour owns the terminal.
			path = defaultLogFile
		}
		var err error
		logger, err = newLogger(path, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runShow,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "orrery.toml", "Config file")
	rootCmd.PersistentFlags().StringVar(&assetsDir, "assets", "", "Texture directory (overrides assets.dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log destination (default orrery.log for the tour, stderr otherwise)")

	captureCmd.Flags().StringVarP(&captureOut, "out", "o", "frames", "Output directory")
	captureCmd.Flags().IntVar(&captureWidth, "width", 640, "Frame width in pixels")
	captureCmd.Flags().IntVar(&captureHeight, "height", 360, "Frame height in pixels")
	captureCmd.Flags().BoolVar(&captureReport, "report", false, "Also write an HTML report to the output directory")

	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing file")

	rootCmd.AddCommand(captureCmd, initCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds a production logger writing to path, or stderr when path
// is empty.
func newLogger(path string, debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if path != "" {
		cfg.OutputPaths = []string{path}
		cfg.ErrorOutputPaths = []string{path}
	}
	return cfg.Build()
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if assetsDir != "" {
		cfg.Assets.Dir = assetsDir
	}
	return cfg, nil
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	model, err := show.New(cfg,
		show.WithLogger(logger),
		show.WithProfile(termenv.NewOutput(os.Stdout).ColorProfile()))
	if err != nil {
		return err
	}

	logger.Info("starting tour",
		zap.String("config", configPath),
		zap.String("assets", cfg.Assets.Dir),
		zap.Int("slides", model.SlideCount()))

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tour failed: %w", err)
	}
	return nil
}
