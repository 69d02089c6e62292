//go:build !detection

package opencv

import (
	"context"
	"errors"
	"testing"
)

func TestCaptureOpener_Stub(t *testing.T) {
	if Available() {
		t.Fatal("Available() = true in a build without OpenCV")
	}

	_, err := NewCaptureOpener().Open(context.Background(), "/videos/match.mp4")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Open() error = %v, want ErrUnavailable", err)
	}
}
