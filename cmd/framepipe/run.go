package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/framepipe/framepipe/internal/frame"
	"github.com/framepipe/framepipe/internal/pipeline"
	"github.com/framepipe/framepipe/internal/session"
)

// newRunCommand creates the run subcommand: a synthetic frame driver that
// exercises the active chain, useful for smoke-testing a plugin set.
func newRunCommand(opts *rootOptions) *cobra.Command {
	var (
		frames   int
		width    int
		height   int
		channels int
		activate []string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Drive synthetic frames through the active pipeline chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(opts)
			if err != nil {
				return err
			}
			defer logger.Sync()

			descriptors, runtime, err := loadPipelines(opts, logger)
			if err != nil {
				return err
			}

			engine := pipeline.NewEngine(descriptors, logger)
			sess := session.New(engine, runtime, opts.settingsDir, logger)
			defer sess.Close()

			for _, file := range activate {
				if err := sess.SetActive(file, true); err != nil {
					return err
				}
			}

			_, active := sess.Runtime()
			if len(active) == 0 {
				return fmt.Errorf("no active pipelines; use --activate or persist an active set")
			}

			start := time.Now()
			f := frame.New(width, height, channels)
			for n := 0; n < frames; n++ {
				out, err := sess.ProcessFrame(f, n)
				if err != nil {
					var shapeErr *pipeline.ShapeError
					if errors.As(err, &shapeErr) {
						logger.Error("frame shape violation",
							zap.String("pipeline", shapeErr.File),
							zap.Stringer("want", shapeErr.Want),
							zap.Stringer("got", shapeErr.Got))
					}
					return err
				}
				f = out
			}
			elapsed := time.Since(start)

			fmt.Fprintf(cmd.OutOrStdout(), "processed %d frames (%s) through %d pipelines in %s (%.1f fps)\n",
				frames, f.Shape(), len(active), elapsed.Round(time.Millisecond),
				float64(frames)/elapsed.Seconds())
			return nil
		},
	}

	cmd.Flags().IntVarP(&frames, "frames", "n", 60, "Number of frames to process")
	cmd.Flags().IntVar(&width, "width", 640, "Frame width in pixels")
	cmd.Flags().IntVar(&height, "height", 360, "Frame height in pixels")
	cmd.Flags().IntVar(&channels, "channels", 3, "Channels per pixel")
	cmd.Flags().StringSliceVarP(&activate, "activate", "a", nil, "Pipeline files to activate for this run")

	return cmd
}
