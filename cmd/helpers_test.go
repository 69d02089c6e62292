package cmd

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"vidrop/domain/frame"
	"vidrop/domain/scan"
	"vidrop/domain/video"
	"vidrop/infrastructure/filesystem"

	"github.com/disintegration/imaging"
)

const (
	testHeight = 4
	testWidth  = 8
)

// logoPixels returns RGB bytes whose left half is white
func logoPixels() []uint8 {
	pix := make([]uint8, testHeight*testWidth*3)
	for r := 0; r < testHeight; r++ {
		for c := 0; c < testWidth/2; c++ {
			i := (r*testWidth + c) * 3
			pix[i], pix[i+1], pix[i+2] = 255, 255, 255
		}
	}
	return pix
}

// writeLogo saves the reference image used by the scan tests
func writeLogo(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, testWidth, testHeight))
	for y := 0; y < testHeight; y++ {
		for x := 0; x < testWidth; x++ {
			c := color.NRGBA{A: 255}
			if x < testWidth/2 {
				c = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// mockDecoder yields black frames with the logo at hitAt (-1 for never)
type mockDecoder struct {
	total int
	hitAt int
	pos   int
}

func (m *mockDecoder) Decode() (frame.Frame, bool, error) {
	if m.pos >= m.total {
		return frame.Frame{}, false, nil
	}
	pix := make([]uint8, testHeight*testWidth*3)
	if m.pos == m.hitAt {
		pix = logoPixels()
	}
	m.pos++
	f, err := frame.NewRGB(testHeight, testWidth, pix)
	return f, err == nil, err
}

func (m *mockDecoder) Close() error { return nil }

// mockOpener hands out a fresh decoder per video; hits maps base name to hit frame
type mockOpener struct {
	total int
	hits  map[string]int
}

func (m *mockOpener) Open(ctx context.Context, videoPath string) (scan.Decoder, error) {
	hitAt, ok := m.hits[filepath.Base(videoPath)]
	if !ok {
		hitAt = -1
	}
	return &mockDecoder{total: m.total, hitAt: hitAt}, nil
}

// mockProber implements video.Prober
type mockProber struct {
	fps int
}

func (m *mockProber) Probe(ctx context.Context, videoPath string) (video.StreamInfo, error) {
	return video.StreamInfo{FrameRate: m.fps, Width: testWidth, Height: testHeight}, nil
}

// mockCopier implements video.StreamCopier by writing a small file
type mockCopier struct {
	calls []*video.TruncateRequest
}

func (m *mockCopier) CopyHead(ctx context.Context, req *video.TruncateRequest, outputPath string) error {
	m.calls = append(m.calls, req)
	return os.WriteFile(outputPath, []byte("head of "+filepath.Base(req.SourcePath)), 0644)
}

func (m *mockCopier) Command(req *video.TruncateRequest, outputPath string) []string {
	return []string{"ffmpeg", "-ss", "0", "-t", req.End.String(), "-i", req.SourcePath, "-c:v", "copy", "-c:a", "copy", outputPath, "-y"}
}

// scanEnv is a temp directory with videos, a logo and mocked decoding
type scanEnv struct {
	dir    string
	logo   string
	opener *mockOpener
	copier *mockCopier
	deps   ScanDependencies
}

func newScanEnv(t *testing.T, videos ...string) *scanEnv {
	t.Helper()
	dir := t.TempDir()
	env := &scanEnv{
		dir:    dir,
		logo:   filepath.Join(dir, "logo.png"),
		opener: &mockOpener{total: 60, hits: map[string]int{}},
		copier: &mockCopier{},
	}
	writeLogo(t, env.logo)
	for _, v := range videos {
		if err := os.WriteFile(filepath.Join(dir, v), []byte("video"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	env.deps = ScanDependencies{
		Opener:      env.opener,
		Prober:      &mockProber{fps: 5},
		FileChecker: filesystem.NewChecker(),
		Copier:      env.copier,
		Publisher:   filesystem.NewPublisher(),
	}
	return env
}

func (e *scanEnv) path(name string) string {
	return filepath.Join(e.dir, name)
}

func defaultOptions() ScanOptions {
	return ScanOptions{
		Range:          scan.DefaultRange(),
		Mode:           video.ModeTruncate,
		Suffix:         video.DefaultOutputSuffix,
		QuantizeStep:   frame.DefaultQuantizeStep,
		ScoreTolerance: frame.DefaultScoreTolerance,
		HitRatio:       frame.DefaultHitRatio,
	}
}
