package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"vidrop/domain/video"
)

const probeJSON = `{
  "streams": [
    {"codec_type": "audio", "r_frame_rate": "0/0"},
    {"codec_type": "video", "width": 1280, "height": 720, "r_frame_rate": "30000/1001", "avg_frame_rate": "30000/1001", "nb_frames": "1800"}
  ],
  "format": {"duration": "60.06"}
}`

func staticProbe(out string, err error) ProbeFunc {
	return func(string) (string, error) { return out, err }
}

func TestProber_Probe(t *testing.T) {
	p := NewProber(WithProbeFunc(staticProbe(probeJSON, nil)))

	info, err := p.Probe(context.Background(), "/videos/match.mp4")
	if err != nil {
		t.Fatalf("Probe() unexpected error: %v", err)
	}

	want := video.StreamInfo{FrameRate: 30, TotalFrames: 1800, Width: 1280, Height: 720}
	if info != want {
		t.Errorf("Probe() = %+v, want %+v", info, want)
	}
}

func TestProber_ProbeDefaults(t *testing.T) {
	raw := `{"streams": [{"codec_type": "video", "width": 640, "height": 360, "r_frame_rate": "0/0"}]}`
	p := NewProber(WithProbeFunc(staticProbe(raw, nil)))

	info, err := p.Probe(context.Background(), "/videos/live.mkv")
	if err != nil {
		t.Fatalf("Probe() unexpected error: %v", err)
	}
	if info.FrameRate != video.DefaultFrameRate {
		t.Errorf("FrameRate = %d, want default %d", info.FrameRate, video.DefaultFrameRate)
	}
	if info.HasTotalFrames() {
		t.Errorf("TotalFrames = %d, want unknown", info.TotalFrames)
	}
}

func TestProber_ProbeErrors(t *testing.T) {
	tests := []struct {
		name    string
		probe   ProbeFunc
		wantErr error
	}{
		{"ffprobe fails", staticProbe("", errBoom), errBoom},
		{"no video stream", staticProbe(`{"streams": [{"codec_type": "audio"}]}`, nil), ErrNoVideoStream},
		{"malformed json", staticProbe(`{"streams": [`, nil), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProber(WithProbeFunc(tt.probe)).Probe(context.Background(), "/videos/x.mp4")
			if err == nil {
				t.Fatal("Probe() expected error, got nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Probe() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"30/1", 30},
		{"30000/1001", 30},
		{"60000/1001", 60},
		{"24000/1001", 24},
		{"25/2", 13},
		{"25", 25},
		{"0/0", 0},
		{"", 0},
		{"abc/1", 0},
		{"30/0", 0},
	}

	for _, tt := range tests {
		if got := ParseFrameRate(tt.in); got != tt.want {
			t.Errorf("ParseFrameRate(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseFrameRateCutNeverPassesHit(t *testing.T) {
	rates := []struct {
		num, den int
	}{
		{30000, 1001},
		{60000, 1001},
		{24000, 1001},
		{25, 1},
	}
	hits := []int{150, 1799, 107892, 215784, 431568}

	for _, r := range rates {
		fps := ParseFrameRate(fmt.Sprintf("%d/%d", r.num, r.den))
		for _, hit := range hits {
			req, err := video.NewTruncateRequest("/v.mp4", hit, fps)
			if err != nil {
				t.Fatalf("NewTruncateRequest(%d, %d) error = %v", hit, fps, err)
			}
			hitSeconds := float64(hit) * float64(r.den) / float64(r.num)
			if end := float64(req.End.TotalSeconds()); end > hitSeconds {
				t.Errorf("%d/%d: hit %d at %.2fs, cut at %.0fs lands after it", r.num, r.den, hit, hitSeconds, end)
			}
		}
	}
}
