package main

import (
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/physlayout/config"
	"github.com/milk9111/physlayout/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configFile string
	seed       uint64
	debug      bool
	watch      bool
	logLevel   string
	devLog     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "physlayout",
		Short:        "tumble, drag and settle labelled boxes in a physics-driven layout",
		SilenceUsage: true,
		RunE:         run,
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml); defaults to ./"+config.DefaultFile+" or the built-in defaults")
	rootCmd.Flags().Uint64Var(&seed, "seed", 0, "placement seed (0 picks a random one)")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "draw physics shapes, constraints and velocities")
	rootCmd.Flags().BoolVar(&watch, "watch", false, "restart the layout when the config file changes")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.Flags().BoolVar(&devLog, "dev", false, "human-readable console logs")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	logger, err := logging.New(logging.Options{Level: logLevel, Development: devLog})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("debug") {
		cfg.Debug = debug
	}

	var watcher *config.Watcher
	if watch {
		if configFile == "" {
			return fmt.Errorf("--watch needs --config")
		}
		watcher, err = config.NewWatcher(configFile, cfg)
		if err != nil {
			return fmt.Errorf("watch %s: %w", configFile, err)
		}
		defer watcher.Close()
	}

	game, err := NewGame(cfg, logger, watcher)
	if err != nil {
		return err
	}
	defer game.Close()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("physlayout")
	ebiten.SetTPS(cfg.Simulation.FrameRate)

	logger.Info("starting", zap.String("config", configFile), zap.Uint64("seed", cfg.Seed), zap.Bool("watch", watch))
	if err := ebiten.RunGame(game); err != nil && err != ebiten.Termination {
		return err
	}
	return nil
}
