package progress

import (
	"io"
	"os"
	"time"

	"vidrop/domain/scan"

	"github.com/schollz/progressbar/v3"
)

// Bar is a scan.Observer that renders a terminal progress bar.
// With an unknown frame count it falls back to a spinner.
type Bar struct {
	bar *progressbar.ProgressBar
}

// BarOption is a functional option for configuring Bar
type BarOption func(*barConfig)

type barConfig struct {
	writer   io.Writer
	throttle time.Duration
}

// WithWriter sets where the bar is rendered (default stderr)
func WithWriter(w io.Writer) BarOption {
	return func(c *barConfig) {
		c.writer = w
	}
}

// WithThrottle limits how often the bar redraws
func WithThrottle(d time.Duration) BarOption {
	return func(c *barConfig) {
		c.throttle = d
	}
}

// NewBar creates a bar for a scan over totalFrames frames (0 when unknown)
func NewBar(description string, totalFrames int, opts ...BarOption) *Bar {
	cfg := &barConfig{writer: os.Stderr, throttle: 100 * time.Millisecond}
	for _, opt := range opts {
		opt(cfg)
	}

	total := totalFrames
	if total <= 0 {
		total = -1
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(cfg.writer),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("frames"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(cfg.throttle),
		progressbar.OptionClearOnFinish(),
	)

	return &Bar{bar: bar}
}

// FrameScanned implements scan.Observer
func (b *Bar) FrameScanned(p scan.FrameProgress) {
	_ = b.bar.Set(p.Index + 1)
}

// WindowCompared implements scan.Observer
func (b *Bar) WindowCompared(scan.Comparison) {}

// Finish completes the bar and clears it from the terminal
func (b *Bar) Finish() error {
	return b.bar.Finish()
}

// Ensure Bar implements scan.Observer
var _ scan.Observer = (*Bar)(nil)
