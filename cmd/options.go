package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"vidrop/domain/scan"
	"vidrop/domain/video"
	"vidrop/infrastructure/config"

	"github.com/spf13/cobra"
)

// scanFlags holds the flags shared by scan and batch
type scanFlags struct {
	frames    string
	truncate  bool
	drop      bool
	output    string
	overwrite bool
	decoder   string
	dryRun    bool
	debugDir  string
}

func addScanFlags(c *cobra.Command, f *scanFlags) {
	c.Flags().StringVar(&f.frames, "frames", "", "frame range start,stop,step; stop <= 0 scans to the end (default from config)")
	c.Flags().BoolVarP(&f.truncate, "truncate", "t", false, "cut the video at the hit frame")
	c.Flags().BoolVarP(&f.drop, "drop", "d", false, "drop the hit frames (not implemented)")
	c.Flags().StringVarP(&f.output, "output", "o", "", "output path (default <name>_vidrop<ext> next to the input)")
	c.Flags().BoolVar(&f.overwrite, "overwrite", false, "replace existing outputs; without --output the input itself is replaced")
	c.Flags().StringVar(&f.decoder, "decoder", "", "frame decoder: ffmpeg or gocv (default from config)")
	c.Flags().BoolVar(&f.dryRun, "dry-run", false, "print the ffmpeg command instead of running it")
	c.Flags().StringVar(&f.debugDir, "debug-dir", "", "where --vv writes debug images (default from config)")
}

// ScanOptions are the resolved settings of a scan
type ScanOptions struct {
	Range          scan.Range
	Mode           video.Mode
	Output         string
	Overwrite      bool
	DryRun         bool
	Suffix         string
	QuantizeStep   int
	ScoreTolerance int
	HitRatio       float64
	Decoder        string
	DebugDir       string // non-empty enables debug image dumps
	Progress       bool
}

// resolveScanOptions merges flags over the configuration. The mode is checked
// here so a missing --truncate/--drop fails before any frame is decoded.
func resolveScanOptions(c *config.Config, f scanFlags) (ScanOptions, error) {
	mode, err := video.SelectMode(f.truncate, f.drop)
	if err != nil {
		return ScanOptions{}, fmt.Errorf("%w: pass --truncate or --drop", err)
	}

	rng := scan.Range{Start: c.Scan.Frames.Start, Stop: c.Scan.Frames.Stop, Step: c.Scan.Frames.Step}
	if f.frames != "" {
		if rng, err = ParseFrames(f.frames); err != nil {
			return ScanOptions{}, err
		}
	}
	if err := rng.Validate(); err != nil {
		return ScanOptions{}, err
	}

	decoder := c.Scan.Decoder
	if f.decoder != "" {
		decoder = strings.ToLower(f.decoder)
	}
	if decoder != config.DecoderFFmpeg && decoder != config.DecoderGoCV {
		return ScanOptions{}, fmt.Errorf("unknown decoder %q: use %s or %s", decoder, config.DecoderFFmpeg, config.DecoderGoCV)
	}

	opts := ScanOptions{
		Range:          rng,
		Mode:           mode,
		Output:         f.output,
		Overwrite:      f.overwrite || c.Output.Overwrite,
		DryRun:         f.dryRun,
		Suffix:         c.Output.Suffix,
		QuantizeStep:   c.Scan.QuantizeStep,
		ScoreTolerance: c.Scan.ScoreTolerance,
		HitRatio:       c.Scan.HitRatio,
		Decoder:        decoder,
	}

	if veryVerbose {
		opts.DebugDir = c.Output.DebugDir
		if f.debugDir != "" {
			opts.DebugDir = f.debugDir
		}
		if opts.DebugDir == "" {
			opts.DebugDir = "tmp"
		}
	}

	return opts, nil
}

// ParseFrames parses "start", "start,stop" or "start,stop,step". Empty fields keep their defaults.
func ParseFrames(s string) (scan.Range, error) {
	rng := scan.DefaultRange()
	parts := strings.Split(s, ",")
	if len(parts) > 3 {
		return scan.Range{}, fmt.Errorf("%w: %q has more than three fields", scan.ErrInvalidRange, s)
	}

	targets := []*int{&rng.Start, &rng.Stop, &rng.Step}
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return scan.Range{}, fmt.Errorf("%w: %q is not a number", scan.ErrInvalidRange, part)
		}
		*targets[i] = n
	}

	if err := rng.Validate(); err != nil {
		return scan.Range{}, err
	}
	return rng, nil
}
