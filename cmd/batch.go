package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vidrop/application/batch"
	appscan "vidrop/application/scan"
	"vidrop/domain/scan"
	"vidrop/domain/video"
	"vidrop/infrastructure/imagefile"
	"vidrop/infrastructure/logging"
	"vidrop/infrastructure/metrics"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	batchOpts        scanFlags
	batchWorkers     int
	batchExtensions  []string
	batchMetricsPort int
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir> <image>...",
	Short: "Scan every video in a directory in parallel",
	Long: `Scan every video in a directory with the same reference images. Each video
is scanned by its own worker; the images are loaded once and shared.

With --output the trimmed videos are written to that directory instead of
next to their inputs. Existing outputs are only replaced with --overwrite.

Exit status is 0 when at least one video matched and none failed, 2 when
nothing matched and 1 when any video failed.

Example:
  vidrop batch ./recordings scoreboard.png --truncate --workers 4 --ext .mp4 --ext .mkv`,
	Args: cobra.MinimumNArgs(2),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	addScanFlags(batchCmd, &batchOpts)
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "number of videos scanned at once (default from config, else CPUs-1)")
	batchCmd.Flags().StringSliceVar(&batchExtensions, "ext", nil, "video file extensions to include (default from config)")
	batchCmd.Flags().IntVar(&batchMetricsPort, "metrics-port", 0, "serve Prometheus metrics on this port while the batch runs")
}

// BatchOptions are the batch-only settings
type BatchOptions struct {
	Workers     int
	Extensions  []string
	MetricsPort int
}

func runBatch(cmd *cobra.Command, args []string) error {
	c, err := GetConfig()
	if err != nil {
		return err
	}

	opts, err := resolveScanOptions(c, batchOpts)
	if err != nil {
		return err
	}

	bopts := BatchOptions{
		Workers:     c.Batch.Workers,
		Extensions:  c.Batch.Extensions,
		MetricsPort: c.Batch.MetricsPort,
	}
	if batchWorkers > 0 {
		bopts.Workers = batchWorkers
	}
	if len(batchExtensions) > 0 {
		bopts.Extensions = batchExtensions
	}
	if batchMetricsPort > 0 {
		bopts.MetricsPort = batchMetricsPort
	}

	logger, err := newLogger(c)
	if err != nil {
		return err
	}
	defer logger.Sync()
	logConfig(logger, c)

	deps, err := productionDependencies(cmd.Context(), c, opts.Decoder, logger)
	if err != nil {
		return err
	}

	if bopts.MetricsPort > 0 {
		metrics.StartMetricsServer(cmd.Context(), bopts.MetricsPort, logger)
	}

	return RunBatchWithDependencies(cmd.Context(), deps, opts, bopts, args[0], args[1:], os.Stdout)
}

// RunBatchWithDependencies runs the batch command with injected dependencies (for testing)
func RunBatchWithDependencies(
	ctx context.Context,
	deps ScanDependencies,
	opts ScanOptions,
	bopts BatchOptions,
	dir string,
	imagePaths []string,
	output OutputWriter,
) error {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	videos, err := batch.FindVideos(dir, bopts.Extensions)
	if err != nil {
		return err
	}
	if len(videos) == 0 {
		return fmt.Errorf("%w: no %s files in %s", scan.ErrNotFound, strings.Join(bopts.Extensions, "/"), dir)
	}

	// Prompts cannot be answered by several workers at once.
	deps.Confirmer = nil
	// A progress bar per worker would garble the terminal.
	opts.Progress = false

	observers := func(path string, info video.StreamInfo) []scan.Observer {
		obs := []scan.Observer{
			logging.NewScanObserver(logger.With(zap.String("video", filepath.Base(path))), info.FrameRate, info.TotalFrames),
			metrics.Observer{},
		}
		if opts.DebugDir != "" {
			dumpDir := filepath.Join(opts.DebugDir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
			if dumper, err := imagefile.NewDumper(dumpDir, logger); err == nil {
				obs = append(obs, dumper)
			} else {
				logger.Warn("debug images disabled", zap.Error(err))
			}
		}
		return obs
	}

	service := newScanService(deps, opts, observers)

	templates, err := imagefile.LoadTemplates(imagePaths, service.Preprocessor())
	if err != nil {
		return err
	}

	inputs := make([]appscan.Input, 0, len(videos))
	for _, v := range videos {
		inputs = append(inputs, appscan.Input{
			VideoPath:  v,
			Templates:  templates,
			Range:      opts.Range,
			Mode:       opts.Mode,
			OutputPath: batchOutputPath(v, opts),
			Overwrite:  opts.Overwrite,
			DryRun:     opts.DryRun,
		})
	}

	dispatcher := batch.NewDispatcher(service,
		batch.WithWorkers(bopts.Workers),
		batch.WithLogger(logger),
		batch.WithHooks(batch.Hooks{
			Started: func(batch.Job) { metrics.ActiveWorkers.Inc() },
			Finished: func(_ batch.Job, o batch.Outcome) {
				metrics.ActiveWorkers.Dec()
				var elapsed time.Duration
				if o.Result != nil {
					elapsed = o.Result.Duration
				}
				metrics.ObserveScan(metricsResult(o.Result, o.Err), elapsed)
			},
		}),
	)

	fmt.Fprintf(output, "%s\n", titleStyle.Render(fmt.Sprintf("Scanning %d videos with %d workers", len(videos), dispatcher.Workers())))

	summary := dispatcher.Dispatch(ctx, inputs)
	printSummary(output, summary)

	hits, _, failures := summary.Counts()
	switch {
	case failures > 0:
		return fmt.Errorf("%d of %d videos failed", failures, len(summary.Outcomes))
	case hits == 0:
		return ErrNoMatch
	default:
		return nil
	}
}

// batchOutputPath places the default output name inside --output when it is given
func batchOutputPath(videoPath string, opts ScanOptions) string {
	if opts.Output == "" {
		return video.ResolveOutputPath(videoPath, "", opts.Overwrite, opts.Suffix)
	}
	return filepath.Join(opts.Output, filepath.Base(video.DefaultOutputPath(videoPath, opts.Suffix)))
}

func printSummary(output OutputWriter, summary *batch.Summary) {
	for _, o := range summary.Outcomes {
		name := filepath.Base(o.VideoPath)
		switch {
		case o.Err != nil:
			fmt.Fprintf(output, "%s: %s\n", name, errorStyle.Render(o.Err.Error()))
		case o.Result.Matched():
			dst := "-"
			if o.Result.Output != nil {
				dst = o.Result.Output.OutputPath
			}
			fmt.Fprintf(output, "%s: %s -> %s\n", name, successStyle.Render(fmt.Sprintf("%d", o.Result.Match.Hit.FrameIndex)), dst)
		default:
			fmt.Fprintf(output, "%s: %s\n", name, warnStyle.Render("no match"))
		}
	}

	hits, misses, failures := summary.Counts()
	fmt.Fprintf(output, "%s %d hit, %d no match, %d failed in %s (run %s)\n",
		labelStyle.Render("Summary:"), hits, misses, failures, summary.Duration.Round(time.Millisecond), summary.RunID)
}
