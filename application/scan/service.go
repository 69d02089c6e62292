package scan

import (
	"context"
	"fmt"
	"time"

	appvideo "vidrop/application/video"
	"vidrop/domain/frame"
	"vidrop/domain/scan"
	"vidrop/domain/video"

	"go.uber.org/zap"
)

// Truncator modifies a video once a hit is known
type Truncator interface {
	Execute(ctx context.Context, input appvideo.TruncateInput) (*appvideo.TruncateResult, error)
	Drop(ctx context.Context, input appvideo.TruncateInput) (*appvideo.TruncateResult, error)
}

// ObserverFactory builds the observers for one scan once the stream is probed
type ObserverFactory func(videoPath string, info video.StreamInfo) []scan.Observer

// Service runs one video through probe, decode, match and truncate
type Service struct {
	opener       scan.DecoderOpener
	prober       video.Prober
	fileChecker  video.FileChecker
	truncator    Truncator
	preprocessor frame.Preprocessor
	scorer       frame.Scorer
	observers    ObserverFactory
	logger       *zap.Logger
}

// ServiceOption is a functional option for configuring Service
type ServiceOption func(*Service)

// WithPreprocessor overrides the default quantize step
func WithPreprocessor(p frame.Preprocessor) ServiceOption {
	return func(s *Service) {
		s.preprocessor = p
	}
}

// WithScorer overrides the default tolerance and hit ratio
func WithScorer(sc frame.Scorer) ServiceOption {
	return func(s *Service) {
		s.scorer = sc
	}
}

// WithObserverFactory attaches per-scan observers
func WithObserverFactory(f ObserverFactory) ServiceOption {
	return func(s *Service) {
		s.observers = f
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a new scan service
func NewService(opener scan.DecoderOpener, prober video.Prober, fileChecker video.FileChecker, truncator Truncator, opts ...ServiceOption) *Service {
	s := &Service{
		opener:       opener,
		prober:       prober,
		fileChecker:  fileChecker,
		truncator:    truncator,
		preprocessor: frame.NewPreprocessor(frame.DefaultQuantizeStep),
		scorer:       frame.NewScorer(frame.DefaultScoreTolerance, frame.DefaultHitRatio),
		logger:       zap.NewNop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Preprocessor returns the preprocessor templates must be built with
func (s *Service) Preprocessor() frame.Preprocessor {
	return s.preprocessor
}

// Input contains the parameters of a single video scan
type Input struct {
	VideoPath  string
	Templates  []*scan.Template
	Range      scan.Range
	Mode       video.Mode
	OutputPath string
	Overwrite  bool
	DryRun     bool
}

// Result contains the outcome of a single video scan
type Result struct {
	VideoPath string
	Stream    video.StreamInfo
	Match     scan.MatchResult
	Output    *appvideo.TruncateResult
	Duration  time.Duration
}

// Matched reports whether a hit was found
func (r *Result) Matched() bool {
	return r.Match.Matched()
}

// Run scans the video and, on a hit, modifies it according to the mode.
// A scan without a match returns a result with Status no_match and no error.
func (s *Service) Run(ctx context.Context, in Input) (*Result, error) {
	started := time.Now()

	if err := s.validate(in); err != nil {
		return nil, err
	}

	info, err := s.prober.Probe(ctx, in.VideoPath)
	if err != nil {
		s.logger.Warn("probe failed, assuming default frame rate",
			zap.String("video", in.VideoPath), zap.Int("fps", video.DefaultFrameRate), zap.Error(err))
		info = video.StreamInfo{}
	}
	if info.FrameRate <= 0 {
		info.FrameRate = video.DefaultFrameRate
	}
	s.logger.Info(fmt.Sprintf("%s fps: %d", in.VideoPath, info.FrameRate),
		zap.Int("total_frames", info.TotalFrames), zap.String("frames", in.Range.String()))

	dec, err := s.opener.Open(ctx, in.VideoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", in.VideoPath, err)
	}
	src, err := scan.NewFrameSource(dec, in.Range)
	if err != nil {
		dec.Close()
		return nil, err
	}
	defer src.Close()

	var opts []scan.DriverOption
	if s.observers != nil {
		opts = append(opts, scan.WithObserver(scan.MultiObserver(s.observers(in.VideoPath, info))))
	}
	driver := scan.NewDriver(s.preprocessor, s.scorer, opts...)

	match, err := driver.Scan(ctx, src, in.Templates)
	if err != nil {
		return nil, fmt.Errorf("scan of %s failed: %w", in.VideoPath, err)
	}

	result := &Result{VideoPath: in.VideoPath, Stream: info, Match: match}
	if !match.Matched() {
		s.logger.Warn(fmt.Sprintf("No matching found in %s", in.VideoPath), zap.Int("frames_scanned", match.FramesScanned))
		result.Duration = time.Since(started)
		return result, nil
	}

	// The decoder is done; release it before the stream copy reads the same file.
	src.Close()

	truncIn := appvideo.TruncateInput{
		VideoPath:  in.VideoPath,
		HitFrame:   match.Hit.FrameIndex,
		FPS:        info.FrameRate,
		OutputPath: in.OutputPath,
		Overwrite:  in.Overwrite,
		DryRun:     in.DryRun,
	}

	var out *appvideo.TruncateResult
	switch in.Mode {
	case video.ModeDrop:
		out, err = s.truncator.Drop(ctx, truncIn)
	default:
		out, err = s.truncator.Execute(ctx, truncIn)
	}
	if err != nil {
		return result, err
	}

	result.Output = out
	result.Duration = time.Since(started)
	return result, nil
}

func (s *Service) validate(in Input) error {
	switch in.Mode {
	case video.ModeTruncate, video.ModeDrop:
	default:
		return video.ErrNoMode
	}
	if len(in.Templates) == 0 {
		return scan.ErrNoTemplates
	}
	if err := in.Range.Validate(); err != nil {
		return err
	}
	if !s.fileChecker.Exists(in.VideoPath) {
		return fmt.Errorf("%w: %s", scan.ErrNotFound, in.VideoPath)
	}
	return nil
}
