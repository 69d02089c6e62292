package video

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultOutputSuffix is appended to the input file name to build the default output path
const DefaultOutputSuffix = "_vidrop"

// MinEndSeconds is the shortest clip that will be produced; shorter ones are rejected
const MinEndSeconds = 1

// TruncateRequest represents a request to cut a video at a hit frame
type TruncateRequest struct {
	SourcePath string
	HitFrame   int
	FPS        int
	End        Timestamp
}

// EndSeconds converts a frame index to whole seconds at the given frame rate
func EndSeconds(hitFrame, fps int) int {
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	return hitFrame / fps
}

// NewTruncateRequest creates a request ending at the second containing hitFrame
func NewTruncateRequest(sourcePath string, hitFrame, fps int) (*TruncateRequest, error) {
	if sourcePath == "" {
		return nil, fmt.Errorf("source path is required")
	}
	if hitFrame < 0 {
		return nil, fmt.Errorf("hit frame %d must not be negative", hitFrame)
	}
	if fps <= 0 {
		fps = DefaultFrameRate
	}

	end := EndSeconds(hitFrame, fps)
	if end <= MinEndSeconds {
		return nil, fmt.Errorf("%w: hit at frame %d is %ds into the video (%d fps); choose a different template or input",
			ErrInsufficientLength, hitFrame, end, fps)
	}

	return &TruncateRequest{
		SourcePath: sourcePath,
		HitFrame:   hitFrame,
		FPS:        fps,
		End:        TimestampFromSeconds(end),
	}, nil
}

// DefaultOutputPath returns <dir>/<stem><suffix><ext> next to the source video
func DefaultOutputPath(sourcePath, suffix string) string {
	if suffix == "" {
		suffix = DefaultOutputSuffix
	}
	ext := filepath.Ext(sourcePath)
	stem := strings.TrimSuffix(filepath.Base(sourcePath), ext)
	return filepath.Join(filepath.Dir(sourcePath), stem+suffix+ext)
}

// ResolveOutputPath picks the output location: an explicit path wins, then
// overwrite targets the source itself, otherwise the suffixed default is used
func ResolveOutputPath(sourcePath, explicit string, overwrite bool, suffix string) string {
	switch {
	case explicit != "":
		return explicit
	case overwrite:
		return sourcePath
	default:
		return DefaultOutputPath(sourcePath, suffix)
	}
}
