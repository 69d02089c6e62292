package ffmpeg

import (
	"context"
	"fmt"

	"vidrop/domain/video"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Trimmer implements video.StreamCopier using ffmpeg stream copy
type Trimmer struct {
	ffmpegPath string
	runner     CommandRunner
}

// TrimmerOption is a functional option for configuring Trimmer
type TrimmerOption func(*Trimmer)

// WithFFmpegPath sets a custom ffmpeg executable path
func WithFFmpegPath(path string) TrimmerOption {
	return func(t *Trimmer) {
		if path != "" {
			t.ffmpegPath = path
		}
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) TrimmerOption {
	return func(t *Trimmer) {
		t.runner = runner
	}
}

// NewTrimmer creates a new FFmpeg-based trimmer
func NewTrimmer(opts ...TrimmerOption) *Trimmer {
	t := &Trimmer{
		ffmpegPath: "ffmpeg",
		runner:     &ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// args builds the ffmpeg arguments for copying [0, req.End) of the source
func (t *Trimmer) args(req *video.TruncateRequest, outputPath string) []string {
	return ffmpeg.Input(req.SourcePath, ffmpeg.KwArgs{
		"ss": 0,
		"t":  req.End.String(),
	}).Output(outputPath, ffmpeg.KwArgs{
		"c:v": "copy",
		"c:a": "copy",
	}).OverWriteOutput().GetArgs()
}

// Command implements video.StreamCopier
func (t *Trimmer) Command(req *video.TruncateRequest, outputPath string) []string {
	return append([]string{t.ffmpegPath}, t.args(req, outputPath)...)
}

// CopyHead implements video.StreamCopier
func (t *Trimmer) CopyHead(ctx context.Context, req *video.TruncateRequest, outputPath string) error {
	if err := t.runner.Run(ctx, t.ffmpegPath, t.args(req, outputPath)...); err != nil {
		return fmt.Errorf("ffmpeg trim failed: %w", err)
	}
	return nil
}

// VerifyInstalled checks that ffmpeg is available
func (t *Trimmer) VerifyInstalled(ctx context.Context) error {
	_, err := t.runner.Output(ctx, t.ffmpegPath, "-version")
	if err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

// Ensure Trimmer implements video.StreamCopier
var _ video.StreamCopier = (*Trimmer)(nil)
