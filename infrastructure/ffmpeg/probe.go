package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"vidrop/domain/video"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ErrNoVideoStream is returned when a file has no video stream
var ErrNoVideoStream = errors.New("no video stream found")

// ProbeFunc returns the ffprobe JSON document for a file
type ProbeFunc func(fileName string) (string, error)

// probeOutput is the subset of ffprobe -show_streams JSON used here
type probeOutput struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
		NbFrames     string `json:"nb_frames"`
	} `json:"streams"`
}

// Prober implements video.Prober using ffprobe
type Prober struct {
	probe ProbeFunc
}

// ProberOption is a functional option for configuring Prober
type ProberOption func(*Prober)

// WithProbeFunc replaces the ffprobe call (for testing)
func WithProbeFunc(fn ProbeFunc) ProberOption {
	return func(p *Prober) {
		p.probe = fn
	}
}

// NewProber creates a new ffprobe-based prober
func NewProber(opts ...ProberOption) *Prober {
	p := &Prober{
		probe: func(fileName string) (string, error) {
			return ffmpeg.Probe(fileName)
		},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Probe implements video.Prober. The frame rate falls back to video.DefaultFrameRate
// when the stream does not report a usable one.
func (p *Prober) Probe(ctx context.Context, videoPath string) (video.StreamInfo, error) {
	if err := ctx.Err(); err != nil {
		return video.StreamInfo{}, err
	}

	raw, err := p.probe(videoPath)
	if err != nil {
		return video.StreamInfo{}, fmt.Errorf("ffprobe failed for %s: %w", videoPath, err)
	}

	var out probeOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return video.StreamInfo{}, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	for _, s := range out.Streams {
		if s.CodecType != "video" {
			continue
		}

		info := video.StreamInfo{
			FrameRate: ParseFrameRate(s.RFrameRate),
			Width:     s.Width,
			Height:    s.Height,
		}
		if info.FrameRate <= 0 {
			info.FrameRate = ParseFrameRate(s.AvgFrameRate)
		}
		if info.FrameRate <= 0 {
			info.FrameRate = video.DefaultFrameRate
		}
		if n, err := strconv.Atoi(s.NbFrames); err == nil && n > 0 {
			info.TotalFrames = n
		}
		return info, nil
	}

	return video.StreamInfo{}, fmt.Errorf("%w in %s", ErrNoVideoStream, videoPath)
}

// ParseFrameRate converts an ffprobe rational such as "30000/1001" to the nearest whole
// frames per second, so NTSC rates read as 30 and 60. It returns 0 when the value is
// missing or malformed.
func ParseFrameRate(rate string) int {
	num, den, found := strings.Cut(strings.TrimSpace(rate), "/")
	n, err := strconv.Atoi(num)
	if err != nil || n <= 0 {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.Atoi(den)
	if err != nil || d <= 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(d)))
}

// Ensure Prober implements video.Prober
var _ video.Prober = (*Prober)(nil)
