package video

import "context"

// DefaultFrameRate is used when the probe cannot report a frame rate
const DefaultFrameRate = 30

// StreamInfo describes the video stream of a file
type StreamInfo struct {
	FrameRate   int
	TotalFrames int // 0 when the container does not report it
	Width       int
	Height      int
}

// HasTotalFrames reports whether the frame count is known
func (s StreamInfo) HasTotalFrames() bool {
	return s.TotalFrames > 0
}

// Prober reads stream metadata from a video file
type Prober interface {
	Probe(ctx context.Context, videoPath string) (StreamInfo, error)
}

// StreamCopier writes the first part of a video to a new file without re-encoding.
// This is a port that can be implemented by different infrastructure adapters
type StreamCopier interface {
	// CopyHead copies [0, req.End) of the source into outputPath
	CopyHead(ctx context.Context, req *TruncateRequest, outputPath string) error

	// Command returns the command line CopyHead would run
	Command(req *TruncateRequest, outputPath string) []string
}

// FileChecker defines the interface for checking file existence
type FileChecker interface {
	// Exists returns true if the file exists
	Exists(path string) bool

	// Size returns the file size in bytes, or 0 if it does not exist
	Size(path string) int64
}

// Publisher moves a finished file to its final location
type Publisher interface {
	Publish(srcPath, dstPath string) error
}

// Confirmer asks the user a yes/no question
type Confirmer interface {
	Confirm(message string, defaultValue bool) (bool, error)
}
