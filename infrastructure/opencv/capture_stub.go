//go:build !detection

package opencv

import (
	"context"
	"errors"

	"vidrop/domain/scan"
)

// ErrUnavailable is returned when the binary was built without OpenCV
var ErrUnavailable = errors.New("gocv decoder not available: build with '-tags=detection' and install OpenCV/GoCV")

// CaptureOpener is a stub when GoCV/OpenCV is not available
type CaptureOpener struct{}

// NewCaptureOpener creates a stub opener (requires building with -tags=detection)
func NewCaptureOpener() *CaptureOpener {
	return &CaptureOpener{}
}

// Available reports whether this build carries OpenCV support
func Available() bool {
	return false
}

// Open returns an error indicating the gocv decoder is not available
func (o *CaptureOpener) Open(ctx context.Context, videoPath string) (scan.Decoder, error) {
	return nil, ErrUnavailable
}

// Ensure CaptureOpener implements scan.DecoderOpener
var _ scan.DecoderOpener = (*CaptureOpener)(nil)
