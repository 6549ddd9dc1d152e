package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/framepipe/framepipe/internal/pipeline"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	pipelineDir string
	settingsDir string
	debug       bool
}

// newRootCommand builds the framepipe command tree.
func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "framepipe",
		Short: "Lua frame-processing pipeline runtime",
		Long: `framepipe discovers, orders, and executes a chain of Lua
frame-processing plugins over a stream of image buffers, persisting their
configurable parameters across runs.`,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional; environment variables win when both exist.
			_ = godotenv.Load()
			if opts.pipelineDir == "" {
				opts.pipelineDir = os.Getenv("FRAMEPIPE_PIPELINE_DIR")
			}
			if opts.settingsDir == "" {
				opts.settingsDir = os.Getenv("FRAMEPIPE_SETTINGS_DIR")
			}
			if opts.settingsDir == "" {
				opts.settingsDir = "."
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.pipelineDir, "pipeline-dir", "p", "", "Pipelines directory (default: ./pipelines, ./framepipe/pipelines)")
	cmd.PersistentFlags().StringVarP(&opts.settingsDir, "settings-dir", "s", "", "Directory for the persisted configuration file (default: .)")
	cmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "Enable debug logging")

	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newFetchCommand(opts))

	return cmd
}

// newLogger builds the process-wide logger.
func newLogger(opts *rootOptions) (*zap.Logger, error) {
	if opts.debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// loadPipelines loads plugins and reconciles persisted configuration.
func loadPipelines(opts *rootOptions, logger *zap.Logger) (map[string]*pipeline.Descriptor, *pipeline.RuntimeData, error) {
	var loaderOpts []pipeline.LoaderOption
	if opts.pipelineDir != "" {
		loaderOpts = append(loaderOpts, pipeline.WithDirs(opts.pipelineDir))
	}

	descriptors, err := pipeline.NewLoader(logger, loaderOpts...).Load()
	if err != nil {
		return nil, nil, err
	}

	runtime, persisted := pipeline.LoadSettings(descriptors, opts.settingsDir)
	if persisted {
		logger.Info("loaded persisted configuration",
			zap.Int("pipelines", len(descriptors)),
			zap.Int("active", len(runtime.Active)))
	} else {
		logger.Info("no persisted configuration, using defaults",
			zap.Int("pipelines", len(descriptors)))
	}
	return descriptors, runtime, nil
}
