//go:build detection

package opencv

import (
	"context"
	"fmt"

	"vidrop/domain/frame"
	"vidrop/domain/scan"

	"gocv.io/x/gocv"
)

// CaptureOpener implements scan.DecoderOpener using an OpenCV VideoCapture
type CaptureOpener struct{}

// NewCaptureOpener creates a GoCV-backed decoder factory
func NewCaptureOpener() *CaptureOpener {
	return &CaptureOpener{}
}

// Available reports whether this build carries OpenCV support
func Available() bool {
	return true
}

// Open implements scan.DecoderOpener
func (o *CaptureOpener) Open(ctx context.Context, videoPath string) (scan.Decoder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vc, err := gocv.VideoCaptureFile(videoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open video %s: %w", videoPath, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("failed to open video %s", videoPath)
	}

	return &CaptureDecoder{
		capture: vc,
		bgr:     gocv.NewMat(),
		rgb:     gocv.NewMat(),
	}, nil
}

// CaptureDecoder reads BGR frames from OpenCV and hands them out as RGB
type CaptureDecoder struct {
	capture *gocv.VideoCapture
	bgr     gocv.Mat
	rgb     gocv.Mat
	ended   bool
}

// Decode implements scan.Decoder
func (d *CaptureDecoder) Decode() (frame.Frame, bool, error) {
	if d.ended {
		return frame.Frame{}, false, nil
	}

	if ok := d.capture.Read(&d.bgr); !ok || d.bgr.Empty() {
		d.ended = true
		return frame.Frame{}, false, nil
	}

	if d.bgr.Type() != gocv.MatTypeCV8UC3 {
		return frame.Frame{}, false, fmt.Errorf("%w: decoded mat type %d is not 8-bit 3-channel", frame.ErrInvalidFormat, d.bgr.Type())
	}

	gocv.CvtColor(d.bgr, &d.rgb, gocv.ColorBGRToRGB)

	// ToBytes copies out of the Mat, so the buffer survives the next Read.
	f, err := frame.NewRGB(d.rgb.Rows(), d.rgb.Cols(), d.rgb.ToBytes())
	if err != nil {
		return frame.Frame{}, false, err
	}
	return f, true, nil
}

// Close releases the capture and its scratch mats
func (d *CaptureDecoder) Close() error {
	d.ended = true
	d.bgr.Close()
	d.rgb.Close()
	return d.capture.Close()
}

// Ensure the adapters implement the scan ports
var (
	_ scan.DecoderOpener = (*CaptureOpener)(nil)
	_ scan.Decoder       = (*CaptureDecoder)(nil)
)
