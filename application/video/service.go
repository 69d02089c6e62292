package video

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vidrop/domain/video"

	"go.uber.org/zap"
)

// TruncateResult contains the result of a truncate operation
type TruncateResult struct {
	OutputPath string
	End        video.Timestamp
	Command    []string
	DryRun     bool
}

// TruncateService cuts a video at a hit frame and publishes the result
type TruncateService struct {
	copier      video.StreamCopier
	fileChecker video.FileChecker
	publisher   video.Publisher
	confirmer   video.Confirmer
	logger      *zap.Logger
	tempRoot    string
}

// TruncateServiceOption is a functional option for configuring TruncateService
type TruncateServiceOption func(*TruncateService)

// WithConfirmer sets who is asked before an existing output is replaced.
// Without one, existing outputs are never replaced unless Overwrite is set.
func WithConfirmer(c video.Confirmer) TruncateServiceOption {
	return func(s *TruncateService) {
		s.confirmer = c
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) TruncateServiceOption {
	return func(s *TruncateService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTempRoot sets the parent directory of the private work directory
func WithTempRoot(dir string) TruncateServiceOption {
	return func(s *TruncateService) {
		s.tempRoot = dir
	}
}

// NewTruncateService creates a new TruncateService
func NewTruncateService(copier video.StreamCopier, fileChecker video.FileChecker, publisher video.Publisher, opts ...TruncateServiceOption) *TruncateService {
	s := &TruncateService{
		copier:      copier,
		fileChecker: fileChecker,
		publisher:   publisher,
		logger:      zap.NewNop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// TruncateInput represents the input for a truncate operation
type TruncateInput struct {
	VideoPath  string
	HitFrame   int
	FPS        int
	OutputPath string
	Overwrite  bool
	DryRun     bool
}

// Execute writes [0, HitFrame/FPS seconds) of the video to OutputPath
func (s *TruncateService) Execute(ctx context.Context, input TruncateInput) (*TruncateResult, error) {
	if input.OutputPath == "" {
		return nil, fmt.Errorf("output path is required")
	}

	req, err := video.NewTruncateRequest(input.VideoPath, input.HitFrame, input.FPS)
	if err != nil {
		return nil, err
	}

	result := &TruncateResult{
		OutputPath: input.OutputPath,
		End:        req.End,
		Command:    s.copier.Command(req, input.OutputPath),
		DryRun:     input.DryRun,
	}

	if input.DryRun {
		s.logger.Info("dry run, not executing", zap.String("command", strings.Join(result.Command, " ")))
		return result, nil
	}

	workDir, err := os.MkdirTemp(s.tempRoot, "vidrop-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	tmpPath := filepath.Join(workDir, "vidrop"+filepath.Ext(input.VideoPath))
	s.logger.Debug("copying stream",
		zap.String("end", req.End.String()),
		zap.String("command", strings.Join(s.copier.Command(req, tmpPath), " ")))

	if err := s.copier.CopyHead(ctx, req, tmpPath); err != nil {
		return nil, err
	}

	if !s.fileChecker.Exists(tmpPath) || s.fileChecker.Size(tmpPath) == 0 {
		return nil, fmt.Errorf("%w: %s", video.ErrEmptyOutput, tmpPath)
	}

	if err := s.confirmReplace(input); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(tmpPath, input.OutputPath); err != nil {
		return nil, fmt.Errorf("failed to publish %s: %w", input.OutputPath, err)
	}

	s.logger.Info(fmt.Sprintf("Success: frame: %d, out: %s", input.HitFrame, absolute(input.OutputPath)))
	return result, nil
}

func (s *TruncateService) confirmReplace(input TruncateInput) error {
	if input.Overwrite || !s.fileChecker.Exists(input.OutputPath) {
		return nil
	}
	if s.confirmer == nil {
		return fmt.Errorf("%w: %s", video.ErrPublishDeclined, input.OutputPath)
	}

	ok, err := s.confirmer.Confirm(fmt.Sprintf("%s already exists. Overwrite?", input.OutputPath), false)
	if err != nil {
		return fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", video.ErrPublishDeclined, input.OutputPath)
	}
	return nil
}

// Drop removes the frames around the hit instead of truncating. It is not available.
func (s *TruncateService) Drop(ctx context.Context, input TruncateInput) (*TruncateResult, error) {
	return nil, fmt.Errorf("%w: drop mode", video.ErrNotImplemented)
}

func absolute(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
