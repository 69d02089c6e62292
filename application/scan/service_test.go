package scan

import (
	"context"
	"errors"
	"testing"

	appvideo "vidrop/application/video"
	"vidrop/domain/frame"
	"vidrop/domain/scan"
	"vidrop/domain/video"
)

// --- Mock implementations for testing ---

const (
	testHeight = 4
	testWidth  = 8
)

// leftHalf returns an RGB frame whose left half is white
func leftHalf() frame.Frame {
	pix := make([]uint8, testHeight*testWidth*3)
	for r := 0; r < testHeight; r++ {
		for c := 0; c < testWidth/2; c++ {
			i := (r*testWidth + c) * 3
			pix[i], pix[i+1], pix[i+2] = 255, 255, 255
		}
	}
	f, _ := frame.NewRGB(testHeight, testWidth, pix)
	return f
}

func black() frame.Frame {
	f, _ := frame.NewRGB(testHeight, testWidth, make([]uint8, testHeight*testWidth*3))
	return f
}

// mockDecoder yields black frames with the logo frame at hitAt (-1 for never)
type mockDecoder struct {
	total  int
	hitAt  int
	pos    int
	closed int
}

func (m *mockDecoder) Decode() (frame.Frame, bool, error) {
	if m.pos >= m.total {
		return frame.Frame{}, false, nil
	}
	defer func() { m.pos++ }()
	if m.pos == m.hitAt {
		return leftHalf(), true, nil
	}
	return black(), true, nil
}

func (m *mockDecoder) Close() error {
	m.closed++
	return nil
}

// mockOpener implements scan.DecoderOpener
type mockOpener struct {
	decoder *mockDecoder
	err     error
	opened  int
}

func (m *mockOpener) Open(ctx context.Context, videoPath string) (scan.Decoder, error) {
	m.opened++
	if m.err != nil {
		return nil, m.err
	}
	return m.decoder, nil
}

// mockProber implements video.Prober
type mockProber struct {
	info video.StreamInfo
	err  error
}

func (m *mockProber) Probe(ctx context.Context, videoPath string) (video.StreamInfo, error) {
	return m.info, m.err
}

// mockFileChecker implements video.FileChecker
type mockFileChecker struct {
	existingFiles map[string]bool
}

func (m *mockFileChecker) Exists(path string) bool {
	return m.existingFiles[path]
}

func (m *mockFileChecker) Size(path string) int64 {
	return 0
}

// mockTruncator implements Truncator
type mockTruncator struct {
	inputs  []appvideo.TruncateInput
	dropped int
	err     error
}

func (m *mockTruncator) Execute(ctx context.Context, input appvideo.TruncateInput) (*appvideo.TruncateResult, error) {
	m.inputs = append(m.inputs, input)
	if m.err != nil {
		return nil, m.err
	}
	return &appvideo.TruncateResult{OutputPath: input.OutputPath}, nil
}

func (m *mockTruncator) Drop(ctx context.Context, input appvideo.TruncateInput) (*appvideo.TruncateResult, error) {
	m.dropped++
	return nil, video.ErrNotImplemented
}

// countingObserver implements scan.Observer
type countingObserver struct {
	frames  int
	windows int
}

func (c *countingObserver) FrameScanned(scan.FrameProgress) { c.frames++ }
func (c *countingObserver) WindowCompared(scan.Comparison) { c.windows++ }

type fixture struct {
	decoder   *mockDecoder
	opener    *mockOpener
	prober    *mockProber
	truncator *mockTruncator
	observer  *countingObserver
	service   *Service
}

func newFixture(t *testing.T, total, hitAt int) *fixture {
	t.Helper()
	f := &fixture{
		decoder:   &mockDecoder{total: total, hitAt: hitAt},
		prober:    &mockProber{info: video.StreamInfo{FrameRate: 5, TotalFrames: total, Width: testWidth, Height: testHeight}},
		truncator: &mockTruncator{},
		observer:  &countingObserver{},
	}
	f.opener = &mockOpener{decoder: f.decoder}
	checker := &mockFileChecker{existingFiles: map[string]bool{"/videos/match.mp4": true}}
	f.service = NewService(f.opener, f.prober, checker, f.truncator,
		WithObserverFactory(func(string, video.StreamInfo) []scan.Observer {
			return []scan.Observer{f.observer}
		}))
	return f
}

func (f *fixture) input(t *testing.T) Input {
	t.Helper()
	tmpl, err := scan.NewTemplate("/templates/logo.png", leftHalf(), f.service.Preprocessor())
	if err != nil {
		t.Fatalf("NewTemplate() unexpected error: %v", err)
	}
	return Input{
		VideoPath:  "/videos/match.mp4",
		Templates:  []*scan.Template{tmpl},
		Range:      scan.DefaultRange(),
		Mode:       video.ModeTruncate,
		OutputPath: "/videos/match_vidrop.mp4",
	}
}

func TestService_RunHitTruncates(t *testing.T) {
	f := newFixture(t, 30, 10)

	result, err := f.service.Run(context.Background(), f.input(t))
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	if !result.Matched() || result.Match.Hit.FrameIndex != 10 {
		t.Fatalf("Run() match = %+v, want hit at 10", result.Match)
	}
	if len(f.truncator.inputs) != 1 {
		t.Fatalf("truncator called %d times, want 1", len(f.truncator.inputs))
	}
	got := f.truncator.inputs[0]
	if got.HitFrame != 10 || got.FPS != 5 || got.OutputPath != "/videos/match_vidrop.mp4" {
		t.Errorf("truncate input = %+v", got)
	}
	if f.observer.frames != 11 {
		t.Errorf("observer saw %d frames, want 11 including the hit", f.observer.frames)
	}
	if f.decoder.closed != 1 {
		t.Errorf("decoder closed %d times, want 1", f.decoder.closed)
	}
}

func TestService_RunNoMatch(t *testing.T) {
	f := newFixture(t, 12, -1)

	result, err := f.service.Run(context.Background(), f.input(t))
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	if result.Matched() || result.Match.FramesScanned != 12 {
		t.Errorf("Run() match = %+v, want no match after 12 frames", result.Match)
	}
	if len(f.truncator.inputs) != 0 {
		t.Error("truncator called without a hit")
	}
}

func TestService_RunProbeFailureUsesDefaultFrameRate(t *testing.T) {
	f := newFixture(t, 100, 60)
	f.prober.err = errors.New("ffprobe: not found")

	result, err := f.service.Run(context.Background(), f.input(t))
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if result.Stream.FrameRate != video.DefaultFrameRate {
		t.Errorf("FrameRate = %d, want %d", result.Stream.FrameRate, video.DefaultFrameRate)
	}
	if f.truncator.inputs[0].FPS != video.DefaultFrameRate {
		t.Errorf("truncate FPS = %d, want default", f.truncator.inputs[0].FPS)
	}
}

func TestService_RunRange(t *testing.T) {
	f := newFixture(t, 30, 9)
	in := f.input(t)
	in.Range = scan.Range{Start: 0, Stop: -1, Step: 2}

	result, err := f.service.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if result.Matched() {
		t.Errorf("odd hit frame matched with step 2: %+v", result.Match)
	}
	if result.Match.FramesScanned != 15 {
		t.Errorf("FramesScanned = %d, want 15", result.Match.FramesScanned)
	}
}

func TestService_RunDropMode(t *testing.T) {
	f := newFixture(t, 30, 10)
	in := f.input(t)
	in.Mode = video.ModeDrop

	_, err := f.service.Run(context.Background(), in)
	if !errors.Is(err, video.ErrNotImplemented) {
		t.Errorf("Run() error = %v, want ErrNotImplemented", err)
	}
	if f.truncator.dropped != 1 {
		t.Errorf("Drop called %d times, want 1", f.truncator.dropped)
	}
}

func TestService_RunValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Input)
		wantErr error
	}{
		{"no mode", func(in *Input) { in.Mode = "" }, video.ErrNoMode},
		{"no templates", func(in *Input) { in.Templates = nil }, scan.ErrNoTemplates},
		{"bad range", func(in *Input) { in.Range = scan.Range{Start: 5, Stop: 2, Step: 1} }, scan.ErrInvalidRange},
		{"missing video", func(in *Input) { in.VideoPath = "/videos/missing.mp4" }, scan.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 30, 10)
			in := f.input(t)
			tt.mutate(&in)

			_, err := f.service.Run(context.Background(), in)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Run() error = %v, want %v", err, tt.wantErr)
			}
			if f.opener.opened != 0 {
				t.Error("decoder opened before validation passed")
			}
		})
	}
}

func TestService_RunOpenFailure(t *testing.T) {
	f := newFixture(t, 30, 10)
	f.opener.err = errors.New("failed to start ffmpeg decoder")

	if _, err := f.service.Run(context.Background(), f.input(t)); err == nil {
		t.Fatal("Run() expected error, got nil")
	}
}

func TestService_RunTruncateFailureKeepsMatch(t *testing.T) {
	f := newFixture(t, 30, 10)
	f.truncator.err = video.ErrInsufficientLength

	result, err := f.service.Run(context.Background(), f.input(t))
	if !errors.Is(err, video.ErrInsufficientLength) {
		t.Fatalf("Run() error = %v, want ErrInsufficientLength", err)
	}
	if result == nil || result.Match.Hit.FrameIndex != 10 {
		t.Errorf("Run() result = %+v, want the hit to be reported", result)
	}
}

func TestService_RunCancelled(t *testing.T) {
	f := newFixture(t, 30, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.service.Run(ctx, f.input(t)); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}
