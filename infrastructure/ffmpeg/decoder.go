package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"

	"vidrop/domain/frame"
	"vidrop/domain/scan"
	"vidrop/domain/video"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// DecoderOpener implements scan.DecoderOpener by piping raw RGB frames out of ffmpeg
type DecoderOpener struct {
	ffmpegPath string
	runner     CommandRunner
	prober     video.Prober
}

// DecoderOption is a functional option for configuring DecoderOpener
type DecoderOption func(*DecoderOpener)

// WithDecoderFFmpegPath sets a custom ffmpeg executable path
func WithDecoderFFmpegPath(path string) DecoderOption {
	return func(o *DecoderOpener) {
		if path != "" {
			o.ffmpegPath = path
		}
	}
}

// WithDecoderCommandRunner sets a custom command runner (for testing)
func WithDecoderCommandRunner(runner CommandRunner) DecoderOption {
	return func(o *DecoderOpener) {
		o.runner = runner
	}
}

// NewDecoderOpener creates a raw-pipe decoder factory. The prober supplies frame dimensions.
func NewDecoderOpener(prober video.Prober, opts ...DecoderOption) *DecoderOpener {
	o := &DecoderOpener{
		ffmpegPath: "ffmpeg",
		runner:     &ExecCommandRunner{},
		prober:     prober,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// DecodeArgs returns the ffmpeg arguments that write every frame of videoPath to stdout as rgb24
func DecodeArgs(videoPath string) []string {
	return ffmpeg.Input(videoPath).
		Output("pipe:", ffmpeg.KwArgs{
			"format":  "rawvideo",
			"pix_fmt": "rgb24",
		}).
		GlobalArgs("-loglevel", "error", "-nostdin").
		GetArgs()
}

// Open implements scan.DecoderOpener
func (o *DecoderOpener) Open(ctx context.Context, videoPath string) (scan.Decoder, error) {
	info, err := o.prober.Probe(ctx, videoPath)
	if err != nil {
		return nil, err
	}
	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("%w: probe reported %dx%d for %s", frame.ErrInvalidFormat, info.Width, info.Height, videoPath)
	}

	ctx, cancel := context.WithCancel(ctx)
	stdout, wait, err := o.runner.Start(ctx, o.ffmpegPath, DecodeArgs(videoPath)...)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start ffmpeg decoder: %w", err)
	}

	return &RawDecoder{
		stdout: stdout,
		wait:   wait,
		cancel: cancel,
		width:  info.Width,
		height: info.Height,
	}, nil
}

// RawDecoder reads fixed-size rgb24 frames from an ffmpeg pipe
type RawDecoder struct {
	stdout io.ReadCloser
	wait   func() error
	cancel context.CancelFunc
	width  int
	height int
	ended  bool
	waited bool
}

// NewRawDecoder wraps an rgb24 stream of width x height frames
func NewRawDecoder(r io.ReadCloser, width, height int) *RawDecoder {
	return &RawDecoder{
		stdout: r,
		wait:   r.Close,
		cancel: func() {},
		width:  width,
		height: height,
	}
}

// Decode implements scan.Decoder. A trailing partial frame ends the stream.
func (d *RawDecoder) Decode() (frame.Frame, bool, error) {
	if d.ended {
		return frame.Frame{}, false, nil
	}

	buf := make([]uint8, d.width*d.height*3)
	if _, err := io.ReadFull(d.stdout, buf); err != nil {
		d.ended = true
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			d.waited = true
			if werr := d.wait(); werr != nil {
				return frame.Frame{}, false, fmt.Errorf("ffmpeg decoder exited: %w", werr)
			}
			return frame.Frame{}, false, nil
		}
		return frame.Frame{}, false, fmt.Errorf("failed to read frame: %w", err)
	}

	f, err := frame.NewRGB(d.height, d.width, buf)
	if err != nil {
		return frame.Frame{}, false, err
	}
	return f, true, nil
}

// Close stops ffmpeg if it is still running and releases the pipe
func (d *RawDecoder) Close() error {
	d.cancel()
	d.ended = true
	if d.waited {
		return nil
	}
	d.waited = true
	_ = d.stdout.Close()
	// The process was killed by cancel, so its exit status carries no information.
	_ = d.wait()
	return nil
}

// Ensure the adapters implement the scan ports
var (
	_ scan.DecoderOpener = (*DecoderOpener)(nil)
	_ scan.Decoder       = (*RawDecoder)(nil)
)
