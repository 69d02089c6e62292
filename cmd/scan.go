package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	appscan "vidrop/application/scan"
	appvideo "vidrop/application/video"
	"vidrop/domain/frame"
	"vidrop/domain/scan"
	"vidrop/domain/video"
	"vidrop/infrastructure/config"
	"vidrop/infrastructure/ffmpeg"
	"vidrop/infrastructure/filesystem"
	"vidrop/infrastructure/imagefile"
	"vidrop/infrastructure/logging"
	"vidrop/infrastructure/metrics"
	"vidrop/infrastructure/opencv"
	"vidrop/infrastructure/progress"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var scanOpts scanFlags

var scanCmd = &cobra.Command{
	Use:   "scan <video> <image>...",
	Short: "Find the first frame showing one of the images and cut the video there",
	Long: `Scan a video frame by frame and compare every frame with the reference
images. Images are tried in the given order; the first match wins. On a hit the
video is cut at the start of the second containing the hit frame, without
re-encoding.

Exit status is 0 on a hit, 2 when nothing matched and 1 on errors.

Example:
  vidrop scan match.mp4 scoreboard.png --truncate
  vidrop scan match.mp4 scoreboard.png replay.png -t --frames 300,,2 -o highlights.mp4`,
	Args: cobra.MinimumNArgs(2),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	addScanFlags(scanCmd, &scanOpts)
}

// OutputWriter allows capturing output in tests
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}

// ScanDependencies are the adapters a scan runs against
type ScanDependencies struct {
	Opener      scan.DecoderOpener
	Prober      video.Prober
	FileChecker video.FileChecker
	Copier      video.StreamCopier
	Publisher   video.Publisher
	Confirmer   video.Confirmer
	Logger      *zap.Logger
}

func runScan(cmd *cobra.Command, args []string) error {
	c, err := GetConfig()
	if err != nil {
		return err
	}

	opts, err := resolveScanOptions(c, scanOpts)
	if err != nil {
		return err
	}
	opts.Progress = !verbose && !veryVerbose && isatty.IsTerminal(os.Stderr.Fd())

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
	deps.Confirmer = DefaultPrompter

	return RunScanWithDependencies(cmd.Context(), deps, opts, args[0], args[1:], os.Stdout)
}

// productionDependencies wires the real adapters
func productionDependencies(ctx context.Context, c *config.Config, decoder string, logger *zap.Logger) (ScanDependencies, error) {
	trimmer := ffmpeg.NewTrimmer(ffmpeg.WithFFmpegPath(c.FFmpeg.Path))
	verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := trimmer.VerifyInstalled(verifyCtx); err != nil {
		return ScanDependencies{}, fmt.Errorf("ffmpeg verification failed: %w", err)
	}

	prober := ffmpeg.NewProber()

	var opener scan.DecoderOpener
	switch decoder {
	case config.DecoderGoCV:
		if !opencv.Available() {
			return ScanDependencies{}, opencv.ErrUnavailable
		}
		opener = opencv.NewCaptureOpener()
	default:
		opener = ffmpeg.NewDecoderOpener(prober, ffmpeg.WithDecoderFFmpegPath(c.FFmpeg.Path))
	}

	return ScanDependencies{
		Opener:      opener,
		Prober:      prober,
		FileChecker: filesystem.NewChecker(),
		Copier:      trimmer,
		Publisher:   filesystem.NewPublisher(),
		Logger:      logger,
	}, nil
}

// newScanService builds the scan service for the resolved options
func newScanService(deps ScanDependencies, opts ScanOptions, observers appscan.ObserverFactory) *appscan.Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	truncateOpts := []appvideo.TruncateServiceOption{appvideo.WithLogger(logger)}
	if deps.Confirmer != nil {
		truncateOpts = append(truncateOpts, appvideo.WithConfirmer(deps.Confirmer))
	}
	truncator := appvideo.NewTruncateService(deps.Copier, deps.FileChecker, deps.Publisher, truncateOpts...)

	return appscan.NewService(deps.Opener, deps.Prober, deps.FileChecker, truncator,
		appscan.WithPreprocessor(frame.NewPreprocessor(opts.QuantizeStep)),
		appscan.WithScorer(frame.NewScorer(opts.ScoreTolerance, opts.HitRatio)),
		appscan.WithObserverFactory(observers),
		appscan.WithLogger(logger),
	)
}

// RunScanWithDependencies runs the scan command with injected dependencies (for testing)
func RunScanWithDependencies(
	ctx context.Context,
	deps ScanDependencies,
	opts ScanOptions,
	videoPath string,
	imagePaths []string,
	output OutputWriter,
) error {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var dumper *imagefile.Dumper
	if opts.DebugDir != "" {
		var err error
		if dumper, err = imagefile.NewDumper(opts.DebugDir, logger); err != nil {
			return err
		}
	}

	var bar *progress.Bar
	observers := func(path string, info video.StreamInfo) []scan.Observer {
		obs := []scan.Observer{logging.NewScanObserver(logger, info.FrameRate, info.TotalFrames), metrics.Observer{}}
		if opts.Progress {
			bar = progress.NewBar("Processing "+path, info.TotalFrames)
			obs = append(obs, bar)
		}
		if dumper != nil {
			obs = append(obs, dumper)
		}
		return obs
	}

	service := newScanService(deps, opts, observers)

	templates, err := imagefile.LoadTemplates(imagePaths, service.Preprocessor())
	if err != nil {
		return err
	}

	input := appscan.Input{
		VideoPath:  videoPath,
		Templates:  templates,
		Range:      opts.Range,
		Mode:       opts.Mode,
		OutputPath: video.ResolveOutputPath(videoPath, opts.Output, opts.Overwrite, opts.Suffix),
		Overwrite:  opts.Overwrite,
		DryRun:     opts.DryRun,
	}

	fmt.Fprintf(output, "%s\n", titleStyle.Render("Scanning "+videoPath))

	started := time.Now()
	result, err := service.Run(ctx, input)
	if bar != nil {
		_ = bar.Finish()
	}
	metrics.ObserveScan(metricsResult(result, err), time.Since(started))

	if result != nil {
		printResult(output, result)
	}
	if err != nil {
		return err
	}
	if !result.Matched() {
		return ErrNoMatch
	}
	return nil
}

func printResult(output OutputWriter, result *appscan.Result) {
	if !result.Matched() {
		fmt.Fprintf(output, "%s\n", warnStyle.Render(fmt.Sprintf("No matching found in %s", result.VideoPath)))
		fmt.Fprintf(output, "  %s\n", field("Frames scanned:", result.Match.FramesScanned))
		return
	}

	hit := result.Match.Hit
	fmt.Fprintf(output, "%s\n", successStyle.Render(fmt.Sprintf("Hit at frame %d", hit.FrameIndex)))
	fmt.Fprintf(output, "  %s\n", field("Template:", hit.TemplatePath))
	fmt.Fprintf(output, "  %s\n", field("Offset:", hit.Offset))
	fmt.Fprintf(output, "  %s\n", field("Score:", hit.Score))
	fmt.Fprintf(output, "  %s\n", field("FPS:", result.Stream.FrameRate))

	if out := result.Output; out != nil {
		fmt.Fprintf(output, "  %s\n", field("Cut at:", out.End))
		if out.DryRun {
			fmt.Fprintf(output, "  %s\n", field("Command:", strings.Join(out.Command, " ")))
		} else {
			fmt.Fprintf(output, "  %s\n", field("Output:", out.OutputPath))
		}
	}
}

func metricsResult(result *appscan.Result, err error) string {
	switch {
	case err != nil && !errors.Is(err, video.ErrPublishDeclined):
		return metrics.ResultError
	case result != nil && result.Matched():
		return metrics.ResultHit
	default:
		return metrics.ResultNoMatch
	}
}
