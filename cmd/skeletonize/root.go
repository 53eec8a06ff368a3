package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"image-skeleton/internal/config"
	"image-skeleton/internal/core"
	imageio "image-skeleton/internal/io"
)

func newRootCommand() *cobra.Command {
	var configFile string
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "skeletonize [flags] <input> <output>",
		Short: "Thin binary image blobs to one pixel wide skeletons",
		Long: "Loads <input> as grayscale, optionally binarizes it, thins the foreground with\n" +
			"Zhang-Suen or Guo-Hall and writes the skeleton to <output>.",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(v, configFile)
			if err != nil {
				return err
			}

			logger := initLogger(c.Log.Debug, cmd.ErrOrStderr())
			return run(cmd.Context(), c, logger, args[0], args[1], cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(versionCommand())
	cmd.AddCommand(confCommand(v, &configFile))

	flags := cmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "config file path")

	flags.String("method", "zhang_suen", "thinning method (zhang_suen|guo_hall)")
	bindPFlag(v, flags, "thinning.method", "method")
	flags.Int("workers", 1, "row-parallel workers per thinning pass (0 = all CPUs)")
	bindPFlag(v, flags, "thinning.workers", "workers")
	flags.Int("max-iterations", 0, "stop thinning after this many passes (0 = until convergence)")
	bindPFlag(v, flags, "thinning.max_iterations", "max-iterations")

	flags.String("binarize", "none", "binarization before thinning (none|otsu|niblack|sauvola|wolf|nick)")
	bindPFlag(v, flags, "binarization.method", "binarize")
	flags.Bool("invert", false, "treat dark pixels as foreground")
	bindPFlag(v, flags, "binarization.invert", "invert")
	flags.Int("window-size", 15, "local binarization window size (odd, >= 3)")
	bindPFlag(v, flags, "binarization.window_size", "window-size")
	flags.Float64("k", 0, "local binarization k (method default when unset)")
	bindPFlag(v, flags, "binarization.k", "k")

	flags.String("roi", "", `process only this region: "x,y,w,h" or a polygon "x1,y1;x2,y2;x3,y3"`)
	bindPFlag(v, flags, "region", "roi")

	flags.Bool("debug", false, "enable debug logging")
	bindPFlag(v, flags, "log.debug", "debug")
	flags.Bool("metrics", false, "print skeleton metrics as JSON")
	bindPFlag(v, flags, "metrics", "metrics")

	return cmd
}

func bindPFlag(v *viper.Viper, flags *pflag.FlagSet, key, name string) {
	if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
		panic(err)
	}
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}

// buildPipeline uses the configured steps, or binarization (if any) followed by thinning
func buildPipeline(c *config.Config, logger logrus.FieldLogger) (*core.Pipeline, error) {
	p := core.NewPipeline(logger)
	p.SetMetrics(c.Metrics)

	region, err := c.ParseRegion()
	if err != nil {
		return nil, err
	}
	p.SetRegion(region)

	if len(c.Pipeline) > 0 {
		for i, step := range c.Pipeline {
			add := p.AddStep
			if step.Disabled {
				add = p.AddDisabledStep
			}
			if err := add(step.Algorithm, step.Parameters); err != nil {
				return nil, fmt.Errorf("pipeline[%d]: %w", i, err)
			}
		}
		return p, nil
	}

	if c.Binarization.Method != "none" {
		if err := p.AddStep(c.Binarization.Method, c.BinarizationParams()); err != nil {
			return nil, err
		}
	}

	if err := p.AddStep("thinning", c.ThinningParams()); err != nil {
		return nil, err
	}
	return p, nil
}

type stepReport struct {
	Algorithm  string `json:"algorithm"`
	DurationMS int64  `json:"duration_ms"`
}

type runReport struct {
	Input   string             `json:"input"`
	Output  string             `json:"output"`
	Steps   []stepReport       `json:"steps"`
	Metrics map[string]float64 `json:"metrics"`
}

func run(ctx context.Context, c *config.Config, logger *logrus.Logger, input, output string, stdout io.Writer) error {
	if !imageio.IsSupportedImageFormat(output) {
		return fmt.Errorf("unsupported output format: %s", output)
	}

	p, err := buildPipeline(c, logger)
	if err != nil {
		return err
	}

	loader := imageio.NewImageLoader(logger)
	mat, err := loader.LoadImageGrayscale(input)
	if err != nil {
		return err
	}
	defer mat.Close()

	data := core.NewImageData()
	defer data.Close()
	if err := data.SetOriginal(mat, input); err != nil {
		return err
	}

	result, err := p.ProcessImage(ctx, data)
	if err != nil {
		return err
	}
	defer result.Output.Close()

	if err := loader.SaveImage(result.Output, output); err != nil {
		return err
	}

	if !c.Metrics {
		return nil
	}

	report := runReport{
		Input:  input,
		Output: output,
		Steps: lo.Map(result.Steps, func(step core.StepResult, _ int) stepReport {
			return stepReport{
				Algorithm:  step.Algorithm,
				DurationMS: step.Duration.Milliseconds(),
			}
		}),
		Metrics: result.Metrics,
	}

	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
