package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/config"
	"github.com/Carmen-Shannon/oxy-anim/engine/loader"
	"github.com/Carmen-Shannon/oxy-anim/engine/skeleton"
)

// app is the state shared by every subcommand.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "oxyanim",
		Short: "Evaluate, bake and inspect skeletal and object animations",
		Long: `oxyanim loads animation assets (YAML or glTF), compiles their actions into
sampled curves and evaluates them through a fixed-rate tick loop.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "oxyanim.yaml", "path to the YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	root.AddCommand(
		newBakeCmd(a),
		newPlayCmd(a),
		newInspectCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", a.configPath, err)
	}

	logger, err := cfg.Logger()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// signalContext cancels on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func (a *app) newBaker() skeleton.Baker {
	return skeleton.NewBaker(
		skeleton.WithWorkers(a.cfg.Animation.BakeWorkers),
		skeleton.WithLogger(a.logger),
	)
}

func (a *app) newLoader() loader.Loader {
	return loader.NewLoader(
		loader.WithLogger(a.logger),
		loader.WithSamplerOptions(a.cfg.SamplerOptions()),
		loader.WithFramerate(a.cfg.Animation.Framerate),
	)
}

func (a *app) newAnimator(l loader.Loader) animator.Animator {
	return animator.NewAnimator(
		animator.WithStore(l.Store()),
		animator.WithBaker(a.newBaker()),
		animator.WithLogger(a.logger),
		animator.WithFramerate(a.cfg.Animation.Framerate),
		animator.WithTimeline(a.cfg.Timeline.Start, a.cfg.Timeline.End),
	)
}
