package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"vidrop/infrastructure/config"
	"vidrop/infrastructure/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Exit codes
const (
	ExitOK      = 0
	ExitError   = 1
	ExitNoMatch = 2
)

// ErrNoMatch is returned by commands when no frame matched any template
var ErrNoMatch = errors.New("no matching frame found")

var (
	cfgFile        string
	cfg            *config.Config
	cfgErr         error
	logLevel       string
	verbose        bool
	veryVerbose    bool
	defaultsLoaded bool
)

var rootCmd = &cobra.Command{
	Use:   "vidrop",
	Short: "Cut a video at the first frame that shows a reference image",
	Long: `vidrop scans a video frame by frame and looks for the first frame that
matches one of the given reference images. The video is then cut at that
frame without re-encoding.

Example:
  vidrop scan match.mp4 scoreboard.png --truncate
  vidrop batch ./recordings scoreboard.png replay.png --truncate --workers 4`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with 0 on a hit, 2 when nothing matched and 1 on errors
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	code := ExitCode(err)
	if code == ExitError {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
	}
	os.Exit(code)
}

// ExitCode maps a command error to the process exit status
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrNoMatch):
		return ExitNoMatch
	default:
		return ExitError
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log", "l", "", "log level: debug, info, warn, error, off (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "alias for --log debug")
	rootCmd.PersistentFlags().BoolVar(&veryVerbose, "vv", false, "debug logging plus debug images of every compared window")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = config.DefaultPath
	}

	var found bool
	cfg, found, cfgErr = config.LoadOrDefault(cfgFile)
	defaultsLoaded = !found
}

// GetConfig returns the loaded configuration, or an error if the file exists but is invalid
func GetConfig() (*config.Config, error) {
	if cfgErr != nil {
		return nil, cfgErr
	}
	if cfg == nil {
		return config.Default(), nil
	}
	return cfg, nil
}

// newLogger builds the logger from the config level and the verbosity flags
func newLogger(c *config.Config) (*zap.Logger, error) {
	level := c.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	return logging.New(logging.Level(level, verbose, veryVerbose))
}

// logConfig prints the effective configuration at startup
func logConfig(logger *zap.Logger, c *config.Config) {
	source := cfgFile
	if defaultsLoaded {
		source = "defaults"
	}
	logger.Info("configuration",
		zap.String("source", source),
		zap.Int("frames_start", c.Scan.Frames.Start),
		zap.Int("frames_stop", c.Scan.Frames.Stop),
		zap.Int("frames_step", c.Scan.Frames.Step),
		zap.Float64("hit_ratio", c.Scan.HitRatio),
		zap.Int("score_tolerance", c.Scan.ScoreTolerance),
		zap.Int("quantize_step", c.Scan.QuantizeStep),
		zap.String("decoder", c.Scan.Decoder),
		zap.String("ffmpeg", c.FFmpeg.Path),
	)
}
